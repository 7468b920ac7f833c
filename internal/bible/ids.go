package bible

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// SortIDs orders ids the way the corpus is traversed: canonical non-negative
// integers ascending, then every other id lexicographically.
func SortIDs(ids []string) {
	sort.SliceStable(ids, func(i, j int) bool {
		return lessID(ids[i], ids[j])
	})
}

func lessID(a, b string) bool {
	na, aIdx := indexID(a)
	nb, bIdx := indexID(b)
	switch {
	case aIdx && bIdx:
		return na < nb
	case aIdx != bIdx:
		return aIdx
	default:
		return a < b
	}
}

// indexID reports whether s is a canonical array-index style id ("0", "12",
// not "012" or "+1") and returns its value.
func indexID(s string) (uint64, bool) {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return 0, false
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil || n == math.MaxUint32 {
		return 0, false
	}
	return n, true
}

// ParseLeadingInt parses the integer prefix of s after leading whitespace,
// accepting an optional sign: "12" → 12, " 7a" → 7, "x" → invalid.
func ParseLeadingInt(s string) (int, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}
