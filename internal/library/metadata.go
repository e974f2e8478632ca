package library

import (
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/tsultanov/flts/internal/book"
)

// BookSummary is the cheap, metadata-only view of a library book used for
// discovery/listing: it never deserializes paragraph bodies.
type BookSummary struct {
	ID              uuid.UUID
	Title           string
	ChaptersCount   int
	ParagraphsCount int
	Path            string
	LastModified    time.Time
	ConflictPaths   []string
}

// LoadBookSummary reads only the book's metadata section plus a
// conflict-sibling scan of its directory, without deserializing the body
// of the canonical file or any sibling.
//
// This is the resolution of the original's LibraryBook::load_from_metadata
// todo!() stub: metadata-only read of the canonical file, conflict-sibling
// paths recorded (but not merged, since merging requires full bodies),
// canonical file mtime recorded.
func LoadBookSummary(path string) (*BookSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	meta, err := book.ReadMetadata(f)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	siblings, err := conflictSiblings(dir, filepath.Base(path))
	if err != nil {
		return nil, err
	}

	return &BookSummary{
		ID:              meta.ID,
		Title:           meta.Title,
		ChaptersCount:   meta.ChaptersCount,
		ParagraphsCount: meta.ParagraphsCount,
		Path:            path,
		LastModified:    info.ModTime(),
		ConflictPaths:   siblings,
	}, nil
}
