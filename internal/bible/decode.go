package bible

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// flexID accepts a JSON string or number. Numbers are rendered in decimal.
type flexID struct {
	val string
	ok  bool
}

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		f.val, f.ok = s, s != ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		// bools, objects and arrays leave the id unset
		return nil
	}
	if fl, err := n.Float64(); err == nil && fl == math.Trunc(fl) && math.Abs(fl) < 1<<53 {
		f.val, f.ok = strconv.FormatInt(int64(fl), 10), true
		return nil
	}
	f.val, f.ok = n.String(), true
	return nil
}

// flexInt accepts a JSON number or a string with a leading integer.
type flexInt struct {
	val int
	ok  bool
}

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		f.val, f.ok = ParseLeadingInt(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return nil
	}
	fl, err := n.Float64()
	if err != nil || math.IsInf(fl, 0) || math.Abs(fl) > math.MaxInt32 {
		return nil
	}
	f.val, f.ok = int(math.Trunc(fl)), true
	return nil
}

type wireVerse struct {
	B flexID  `json:"b"`
	C flexID  `json:"c"`
	V flexInt `json:"v"`
	T string  `json:"t"`
}

type wireTitle struct {
	N  flexInt `json:"n"`
	BM string  `json:"bm"`
	BE string  `json:"be"`
	W  string  `json:"w"`
	D  string  `json:"d"`
	C  flexInt `json:"c"`
}

type wireHeading struct {
	B  flexID  `json:"b"`
	C  flexID  `json:"c"`
	V  flexInt `json:"v"`
	H  string  `json:"h"`
	SH string  `json:"sh"`
	T  string  `json:"t"`
}

// DecodeVerses parses a flat verse list. Records missing a book or chapter id,
// or whose verse number is not an integer, are dropped and counted in skipped.
// A valid JSON document that is not an array yields no records and no error.
func DecodeVerses(data []byte) (verses []Verse, skipped int, err error) {
	elems, err := decodeArray(data)
	if err != nil {
		return nil, 0, err
	}
	verses = make([]Verse, 0, len(elems))
	for _, raw := range elems {
		var w wireVerse
		if json.Unmarshal(raw, &w) != nil || !w.B.ok || !w.C.ok || !w.V.ok {
			skipped++
			continue
		}
		verses = append(verses, Verse{Book: w.B.val, Chapter: w.C.val, Verse: w.V.val, Text: w.T})
	}
	return verses, skipped, nil
}

// DecodeTitles parses the book title list. Entries without a numeric n are dropped.
// The result is not sorted; see SortTitles.
func DecodeTitles(data []byte) (titles []Title, skipped int, err error) {
	elems, err := decodeArray(data)
	if err != nil {
		return nil, 0, err
	}
	titles = make([]Title, 0, len(elems))
	for _, raw := range elems {
		var w wireTitle
		if json.Unmarshal(raw, &w) != nil || !w.N.ok {
			skipped++
			continue
		}
		titles = append(titles, Title{
			Number:      w.N.val,
			Name:        w.BM,
			EnglishName: w.BE,
			Author:      w.W,
			Date:        w.D,
			Chapters:    w.C.val,
		})
	}
	return titles, skipped, nil
}

// DecodeHeadings parses the heading list. Entries without a chapter id or an
// integer verse number are dropped.
func DecodeHeadings(data []byte) (headings []Heading, skipped int, err error) {
	elems, err := decodeArray(data)
	if err != nil {
		return nil, 0, err
	}
	headings = make([]Heading, 0, len(elems))
	for _, raw := range elems {
		var w wireHeading
		if json.Unmarshal(raw, &w) != nil || !w.C.ok || !w.V.ok {
			skipped++
			continue
		}
		headings = append(headings, Heading{
			Book:       w.B.val,
			Chapter:    w.C.val,
			Verse:      w.V.val,
			Heading:    w.H,
			Subheading: w.SH,
			Label:      w.T,
		})
	}
	return headings, skipped, nil
}

// DecodeCorpus parses an already structured corpus (the cached form).
// Chapters are re-sorted so a hand-edited cache still satisfies the ordering invariant.
func DecodeCorpus(data []byte) (Corpus, error) {
	var c Corpus
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode corpus: %w", err)
	}
	if c == nil {
		return nil, fmt.Errorf("decode corpus: not an object")
	}
	for _, book := range c {
		for id, ch := range book {
			book[id] = sortChapter(ch)
		}
	}
	return c, nil
}

// decodeArray splits a JSON array into raw elements. Invalid JSON is an error;
// valid JSON of any other shape is treated as an empty list.
func decodeArray(data []byte) ([]json.RawMessage, error) {
	if !json.Valid(data) {
		return nil, fmt.Errorf("invalid JSON")
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, err
	}
	return elems, nil
}
