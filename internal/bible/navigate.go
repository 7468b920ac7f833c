package bible

// Neighbors returns the previous and next chapter numbers around chapterID for
// a book with t.Chapters chapters. 0 means there is no such chapter.
func Neighbors(t Title, chapterID string) (prev, next int) {
	cur, ok := ParseLeadingInt(chapterID)
	if !ok {
		return 0, 0
	}
	if cur > 1 {
		prev = cur - 1
	}
	if cur < t.Chapters {
		next = cur + 1
	}
	return prev, next
}

// AdjacentBooks returns the books before and after bookID in titles, which
// must already be sorted. nil means bookID is first or last, or not listed.
func AdjacentBooks(titles []Title, bookID string) (prev, next *Title) {
	for i, t := range titles {
		if t.ID() != bookID {
			continue
		}
		if i > 0 {
			p := titles[i-1]
			prev = &p
		}
		if i+1 < len(titles) {
			n := titles[i+1]
			next = &n
		}
		return prev, next
	}
	return nil, nil
}

// Random picks a uniformly chosen book, then chapter, then verse. intn must
// return a value in [0, n). Returns false for an empty corpus.
func (c Corpus) Random(intn func(n int) int) (Ref, bool) {
	books := c.BookIDs()
	if len(books) == 0 {
		return Ref{}, false
	}
	bookID := books[intn(len(books))]

	chapters := c[bookID].ChapterIDs()
	if len(chapters) == 0 {
		return Ref{}, false
	}
	chapterID := chapters[intn(len(chapters))]

	verses := c[bookID][chapterID]
	if len(verses) == 0 {
		return Ref{}, false
	}
	v := verses[intn(len(verses))]
	return Ref{Book: bookID, Chapter: chapterID, Verse: v.Verse}, true
}
