package bible

import (
	"fmt"
	"strings"
)

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", `*`, `\*`, `_`, `\_`, `[`, `\[`, `]`, `\]`,
	`<`, `\<`, `>`, `\>`, `#`, `\#`, `|`, `\|`, `~`, `\~`,
)

// EscapeMarkdown backslash-escapes characters that markdown would interpret.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// ChapterMarkdown renders one chapter with its headings as markdown.
func ChapterMarkdown(t Title, chapterID string, verses Chapter, headings HeadingIndex) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s %s\n\n", EscapeMarkdown(t.Name), EscapeMarkdown(chapterID))
	writeVerses(&sb, t.ID(), chapterID, verses, headings)
	return sb.String()
}

// BookMarkdown renders a whole book: title block followed by every chapter in order.
func BookMarkdown(t Title, book Book, headings HeadingIndex) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", EscapeMarkdown(t.Name))

	var meta []string
	if t.EnglishName != "" {
		meta = append(meta, EscapeMarkdown(t.EnglishName))
	}
	if t.Author != "" {
		meta = append(meta, EscapeMarkdown(t.Author))
	}
	if t.Date != "" {
		meta = append(meta, EscapeMarkdown(t.Date))
	}
	if len(meta) > 0 {
		fmt.Fprintf(&sb, "_%s_\n\n", strings.Join(meta, " · "))
	}

	for _, chapterID := range book.ChapterIDs() {
		fmt.Fprintf(&sb, "## %s %s\n\n", EscapeMarkdown(t.Name), EscapeMarkdown(chapterID))
		writeVerses(&sb, t.ID(), chapterID, book[chapterID], headings)
	}
	return sb.String()
}

func writeVerses(sb *strings.Builder, bookID, chapterID string, verses Chapter, headings HeadingIndex) {
	for _, v := range verses {
		for _, h := range headings.For(bookID, chapterID, v.Verse) {
			if h.Label != "" {
				fmt.Fprintf(sb, "_%s_\n\n", EscapeMarkdown(h.Label))
			}
			if h.Heading != "" {
				fmt.Fprintf(sb, "### %s\n\n", EscapeMarkdown(h.Heading))
			}
			if h.Subheading != "" {
				fmt.Fprintf(sb, "#### %s\n\n", EscapeMarkdown(h.Subheading))
			}
		}
		fmt.Fprintf(sb, "**%d** %s\n\n", v.Verse, EscapeMarkdown(v.Text))
	}
}
