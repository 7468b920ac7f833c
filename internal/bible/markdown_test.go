package bible

import (
	"strings"
	"testing"
)

func TestHeadingIndex_For(t *testing.T) {
	idx := IndexHeadings([]Heading{
		{Chapter: "1", Verse: 1, Heading: "Creation"},
		{Book: "2", Chapter: "1", Verse: 1, Heading: "Only book 2"},
		{Chapter: "1", Verse: 2, Heading: "Other"},
	})

	got := idx.For("1", "1", 1)
	if len(got) != 1 || got[0].Heading != "Creation" {
		t.Errorf("For(1,1,1) = %+v", got)
	}
	got = idx.For("2", "1", 1)
	if len(got) != 2 {
		t.Errorf("For(2,1,1) = %+v, want 2 headings", got)
	}
	if got := idx.For("1", "9", 9); len(got) != 0 {
		t.Errorf("For(1,9,9) = %+v, want none", got)
	}
}

func TestChapterMarkdown(t *testing.T) {
	title := Title{Number: 1, Name: "Genesis"}
	verses := Chapter{
		{Book: "1", Chapter: "1", Verse: 1, Text: "In the *beginning*"},
		{Book: "1", Chapter: "1", Verse: 2, Text: "And"},
	}
	idx := IndexHeadings([]Heading{{Chapter: "1", Verse: 1, Heading: "Creation", Subheading: "Day one"}})

	md := ChapterMarkdown(title, "1", verses, idx)

	for _, want := range []string{
		"## Genesis 1\n",
		"### Creation\n",
		"#### Day one\n",
		`**1** In the \*beginning\*`,
		"**2** And",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
	if strings.Index(md, "### Creation") > strings.Index(md, "**1**") {
		t.Error("heading should precede its verse")
	}
}

func TestBookMarkdown(t *testing.T) {
	title := Title{Number: 1, Name: "Genesis", EnglishName: "Genesis", Author: "Moses"}
	c := Structure([]Verse{
		{Book: "1", Chapter: "2", Verse: 1, Text: "second"},
		{Book: "1", Chapter: "1", Verse: 1, Text: "first"},
	})

	md := BookMarkdown(title, c["1"], nil)

	if !strings.HasPrefix(md, "# Genesis\n") {
		t.Errorf("BookMarkdown() should start with the book title:\n%s", md)
	}
	if !strings.Contains(md, "_Genesis · Moses_") {
		t.Errorf("BookMarkdown() missing metadata line:\n%s", md)
	}
	if strings.Index(md, "first") > strings.Index(md, "second") {
		t.Error("chapters out of order")
	}
}
