package ops

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/hpungsan/lectio/internal/bible"
	"github.com/hpungsan/lectio/internal/errors"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Book    string // required
	Chapter string // optional; empty exports the whole book
	Path    string // optional, default: <exports>/<book>[-<chapter>]-<timestamp>.md
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string `json:"path"`
	Book       string `json:"book"`
	Chapter    string `json:"chapter,omitempty"`
	Verses     int    `json:"verses"`
	Bytes      int    `json:"bytes"`
	ExportedAt int64  `json:"exported_at"`
}

// Export writes a chapter, or a whole book, as markdown.
func (l *Library) Export(ctx context.Context, input ExportInput) (*ExportOutput, error) {
	bookID := strings.TrimSpace(input.Book)
	chapterID := strings.TrimSpace(input.Chapter)
	if bookID == "" {
		return nil, errors.NewInvalidRequest("book is required")
	}

	if err := l.ensureAll(ctx); err != nil {
		return nil, err
	}
	titles, headings, corpus := l.snapshot()

	title, ok := bible.FindTitle(titles, bookID)
	if !ok {
		return nil, errors.NewNotFound(fmt.Sprintf("book %s not found", bookID))
	}
	book, ok := corpus[bookID]
	if !ok {
		return nil, errors.NewNotFound(fmt.Sprintf("%s has no verses loaded", title.Name))
	}

	var (
		content string
		verses  int
	)
	if chapterID != "" {
		ch, ok := book[chapterID]
		if !ok {
			return nil, errors.NewNotFound(fmt.Sprintf("chapter %s not found in %s", chapterID, title.Name))
		}
		content = bible.ChapterMarkdown(title, chapterID, ch, headings)
		verses = len(ch)
	} else {
		content = bible.BookMarkdown(title, book, headings)
		for _, ch := range book {
			verses += len(ch)
		}
	}

	now := time.Now()
	exportPath := input.Path
	if exportPath == "" {
		exportPath = l.defaultExportPath(title, chapterID, now)
	}

	// Validate ALL paths (both user-provided and default)
	if err := ValidatePath(exportPath, l.exportsDir, l.cfg); err != nil {
		return nil, err
	}

	if err := writeFileAtomic(exportPath, []byte(content)); err != nil {
		return nil, err
	}

	l.logger.Info("exported markdown", "path", exportPath, "book", bookID, "chapter", chapterID)
	return &ExportOutput{
		Path:       exportPath,
		Book:       bookID,
		Chapter:    chapterID,
		Verses:     verses,
		Bytes:      len(content),
		ExportedAt: now.Unix(),
	}, nil
}

// writeFileAtomic writes data to a temp file next to path, then renames it into
// place so an existing file survives a failed write.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := file.Write(data); err != nil {
		return errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return errors.NewInternal(err)
	}

	// Close before atomic replace (required on Windows; fine elsewhere).
	if err := file.Close(); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlink at the destination
	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInternal(fmt.Errorf("export path is a symlink"))
	}

	// On Windows, os.Rename fails if the destination exists. Fail safely
	// rather than delete+rename.
	if err := os.Rename(tempPath, path); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(path); statErr == nil {
				return errors.NewInvalidRequest("export destination already exists; overwriting is not supported on Windows yet (choose a new path or delete the existing file)")
			}
		}
		return errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return nil
}

// defaultExportPath builds <exports>/<book>[-<chapter>]-<timestamp>.md.
func (l *Library) defaultExportPath(title bible.Title, chapterID string, now time.Time) string {
	name := SanitizeForFilename(strings.ToLower(title.Name))
	if title.Name == "" {
		name = title.ID()
	}
	if chapterID != "" {
		name += "-" + SanitizeForFilename(chapterID)
	}
	return filepath.Join(l.exportsDir, name+"-"+now.Format("2006-01-02T150405")+ExportExt)
}
