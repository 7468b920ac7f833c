package bible

import (
	"reflect"
	"testing"
)

func TestStructure_GroupsAndSortsVerses(t *testing.T) {
	verses, skipped, err := DecodeVerses([]byte(`[{"b":"1","c":"1","v":"2","t":"foo"},{"b":"1","c":"1","v":"1","t":"bar"}]`))
	if err != nil {
		t.Fatalf("DecodeVerses() error = %v", err)
	}
	if skipped != 0 {
		t.Fatalf("skipped = %d, want 0", skipped)
	}

	got := Structure(verses)
	want := Corpus{"1": Book{"1": Chapter{
		{Book: "1", Chapter: "1", Verse: 1, Text: "bar"},
		{Book: "1", Chapter: "1", Verse: 2, Text: "foo"},
	}}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Structure() = %+v, want %+v", got, want)
	}
}

func TestStructure_EmptyInput(t *testing.T) {
	for _, in := range [][]Verse{nil, {}} {
		got := Structure(in)
		if got == nil {
			t.Fatal("Structure() returned nil corpus")
		}
		if len(got) != 0 {
			t.Errorf("Structure() = %v, want empty", got)
		}
	}
}

func TestStructure_ConservesCount(t *testing.T) {
	var verses []Verse
	for b := 1; b <= 3; b++ {
		for c := 1; c <= 4; c++ {
			for v := 5; v >= 1; v-- {
				verses = append(verses, Verse{Book: itoa(b), Chapter: itoa(c), Verse: v, Text: "x"})
			}
		}
	}

	corpus := Structure(verses)
	if corpus.VerseCount() != len(verses) {
		t.Fatalf("VerseCount() = %d, want %d", corpus.VerseCount(), len(verses))
	}
	if len(corpus) != 3 {
		t.Errorf("books = %d, want 3", len(corpus))
	}
	for _, bookID := range corpus.BookIDs() {
		for _, chID := range corpus[bookID].ChapterIDs() {
			ch := corpus[bookID][chID]
			for i := 1; i < len(ch); i++ {
				if ch[i-1].Verse > ch[i].Verse {
					t.Fatalf("%s:%s not sorted: %v", bookID, chID, ch)
				}
			}
			for _, v := range ch {
				if v.Book != bookID || v.Chapter != chID {
					t.Fatalf("verse %+v filed under %s:%s", v, bookID, chID)
				}
			}
		}
	}
}

func TestStructure_StableForEqualVerseNumbers(t *testing.T) {
	corpus := Structure([]Verse{
		{Book: "1", Chapter: "1", Verse: 2, Text: "a"},
		{Book: "1", Chapter: "1", Verse: 1, Text: "b"},
		{Book: "1", Chapter: "1", Verse: 2, Text: "c"},
	})
	ch := corpus["1"]["1"]
	if ch[0].Text != "b" || ch[1].Text != "a" || ch[2].Text != "c" {
		t.Errorf("order = %v, want b a c", ch)
	}
}

func TestStructure_Deterministic(t *testing.T) {
	in := []Verse{
		{Book: "2", Chapter: "1", Verse: 3},
		{Book: "1", Chapter: "2", Verse: 1},
		{Book: "2", Chapter: "1", Verse: 1},
	}
	a := Structure(append([]Verse(nil), in...))
	b := Structure(append([]Verse(nil), in...))
	if !reflect.DeepEqual(a, b) {
		t.Errorf("Structure() not deterministic: %v vs %v", a, b)
	}
}

func TestDecodeVerses_SkipsInvalidRecords(t *testing.T) {
	data := `[
		{"b":1,"c":2,"v":3,"t":"numeric ids"},
		{"c":"1","v":"1","t":"no book"},
		{"b":"1","v":"1","t":"no chapter"},
		{"b":"1","c":"1","v":"x","t":"bad verse"},
		{"b":"1","c":"1","v":" 7a","t":"leading int"},
		"not an object",
		null
	]`
	verses, skipped, err := DecodeVerses([]byte(data))
	if err != nil {
		t.Fatalf("DecodeVerses() error = %v", err)
	}
	if len(verses) != 2 {
		t.Fatalf("len(verses) = %d, want 2: %+v", len(verses), verses)
	}
	if skipped != 5 {
		t.Errorf("skipped = %d, want 5", skipped)
	}
	if verses[0].Book != "1" || verses[0].Chapter != "2" || verses[0].Verse != 3 {
		t.Errorf("verses[0] = %+v", verses[0])
	}
	if verses[1].Verse != 7 {
		t.Errorf("verses[1].Verse = %d, want 7", verses[1].Verse)
	}
}

func TestDecodeVerses_NonArray(t *testing.T) {
	for _, in := range []string{`{}`, `null`, `"text"`, `42`} {
		verses, _, err := DecodeVerses([]byte(in))
		if err != nil {
			t.Errorf("DecodeVerses(%s) error = %v", in, err)
		}
		if len(verses) != 0 {
			t.Errorf("DecodeVerses(%s) = %v, want none", in, verses)
		}
	}
}

func TestDecodeVerses_InvalidJSON(t *testing.T) {
	if _, _, err := DecodeVerses([]byte(`[{"b":`)); err == nil {
		t.Fatal("DecodeVerses() expected error for truncated JSON")
	}
}

func TestDecodeCorpus(t *testing.T) {
	c, err := DecodeCorpus([]byte(`{"1":{"1":[{"b":"1","c":"1","v":2,"t":"b"},{"b":"1","c":"1","v":1,"t":"a"}]}}`))
	if err != nil {
		t.Fatalf("DecodeCorpus() error = %v", err)
	}
	ch, ok := c.Chapter("1", "1")
	if !ok || len(ch) != 2 || ch[0].Verse != 1 {
		t.Errorf("Chapter(1,1) = %v, %v", ch, ok)
	}

	if _, err := DecodeCorpus([]byte(`null`)); err == nil {
		t.Error("DecodeCorpus(null) expected error")
	}
	if _, err := DecodeCorpus([]byte(`[1,2]`)); err == nil {
		t.Error("DecodeCorpus(array) expected error")
	}
}

func itoa(n int) string {
	return string(rune('0' + n))
}
