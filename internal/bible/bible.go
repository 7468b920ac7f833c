// Package bible holds the corpus data model: verses, book titles, headings and
// the structured Book → Chapter → Verse lookup built from the flat verse list.
package bible

// Verse is one verse record. On the wire b/c may be strings or numbers and v may
// be a string; they are normalized at decode time.
type Verse struct {
	Book    string `json:"b"`
	Chapter string `json:"c"`
	Verse   int    `json:"v"`
	Text    string `json:"t"`
}

// Title is the metadata of one book.
type Title struct {
	Number      int    `json:"n"`
	Name        string `json:"bm"`
	EnglishName string `json:"be,omitempty"`
	Author      string `json:"w,omitempty"`
	Date        string `json:"d,omitempty"`
	Chapters    int    `json:"c"`
}

// Heading is a section heading attached to the verse at (Chapter, Verse).
// Book is optional; when empty the heading matches that chapter/verse in any book.
type Heading struct {
	Book       string `json:"b,omitempty"`
	Chapter    string `json:"c"`
	Verse      int    `json:"v"`
	Heading    string `json:"h"`
	Subheading string `json:"sh,omitempty"`
	Label      string `json:"t,omitempty"`
}

// Chapter is the ordered verse list of one chapter.
type Chapter []Verse

// Book maps chapter id to its verses.
type Book map[string]Chapter

// Corpus maps book id to its chapters.
type Corpus map[string]Book

// Ref addresses a single verse.
type Ref struct {
	Book    string `json:"book"`
	Chapter string `json:"chapter"`
	Verse   int    `json:"verse"`
}

// BookIDs returns the book ids in traversal order.
func (c Corpus) BookIDs() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	SortIDs(ids)
	return ids
}

// Chapter returns the verses of book/chapter.
func (c Corpus) Chapter(bookID, chapterID string) (Chapter, bool) {
	book, ok := c[bookID]
	if !ok {
		return nil, false
	}
	ch, ok := book[chapterID]
	return ch, ok
}

// VerseCount returns the total number of verses.
func (c Corpus) VerseCount() int {
	n := 0
	for _, book := range c {
		for _, ch := range book {
			n += len(ch)
		}
	}
	return n
}

// ChapterIDs returns the chapter ids in traversal order.
func (b Book) ChapterIDs() []string {
	ids := make([]string, 0, len(b))
	for id := range b {
		ids = append(ids, id)
	}
	SortIDs(ids)
	return ids
}
