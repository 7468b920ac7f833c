package bible

import (
	"sort"
	"strconv"
)

// SortTitles orders titles ascending by book number in place (stable).
func SortTitles(titles []Title) {
	sort.SliceStable(titles, func(i, j int) bool {
		return titles[i].Number < titles[j].Number
	})
}

// FindTitle returns the first title whose number, rendered in decimal, equals bookID.
func FindTitle(titles []Title, bookID string) (Title, bool) {
	for _, t := range titles {
		if strconv.Itoa(t.Number) == bookID {
			return t, true
		}
	}
	return Title{}, false
}

// ID returns the book id this title matches in a Corpus.
func (t Title) ID() string {
	return strconv.Itoa(t.Number)
}
