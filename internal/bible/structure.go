package bible

import "sort"

// Structure groups a flat verse list into a Corpus. Records are appended to
// their (book, chapter) bucket in input order and each bucket is then sorted
// by verse number; equal verse numbers keep their input order.
// Nil or empty input yields an empty, non-nil corpus.
func Structure(verses []Verse) Corpus {
	corpus := make(Corpus)
	for _, v := range verses {
		book, ok := corpus[v.Book]
		if !ok {
			book = make(Book)
			corpus[v.Book] = book
		}
		book[v.Chapter] = append(book[v.Chapter], v)
	}

	for _, book := range corpus {
		for id, ch := range book {
			book[id] = sortChapter(ch)
		}
	}
	return corpus
}

func sortChapter(ch Chapter) Chapter {
	sort.SliceStable(ch, func(i, j int) bool {
		return ch[i].Verse < ch[j].Verse
	})
	return ch
}
