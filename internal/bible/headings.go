package bible

import "strconv"

// HeadingIndex looks up headings by (chapter, verse).
type HeadingIndex map[string][]Heading

// IndexHeadings builds an index over headings, preserving their input order
// within each (chapter, verse) slot.
func IndexHeadings(headings []Heading) HeadingIndex {
	idx := make(HeadingIndex, len(headings))
	for _, h := range headings {
		k := headingKey(h.Chapter, h.Verse)
		idx[k] = append(idx[k], h)
	}
	return idx
}

// For returns the headings that precede the given verse. Headings carrying a
// book id only match that book.
func (idx HeadingIndex) For(bookID, chapterID string, verse int) []Heading {
	var out []Heading
	for _, h := range idx[headingKey(chapterID, verse)] {
		if h.Book != "" && h.Book != bookID {
			continue
		}
		out = append(out, h)
	}
	return out
}

func headingKey(chapter string, verse int) string {
	return chapter + ":" + strconv.Itoa(verse)
}
