package library

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ListBooks walks the library root and returns a metadata-only summary of
// every book directory found, including conflict-sibling paths.
func (l *Library) ListBooks() ([]*BookSummary, error) {
	entries, err := os.ReadDir(l.Root)
	if err != nil {
		return nil, err
	}

	var summaries []*BookSummary
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := uuid.Parse(e.Name()); err != nil {
			continue
		}
		path := filepath.Join(l.Root, e.Name(), "book.dat")
		if _, err := os.Stat(path); err != nil {
			continue
		}
		summary, err := LoadBookSummary(path)
		if err != nil {
			continue
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// ListTranslations returns the translation files present in the book
// directory for id.
func (l *Library) ListTranslations(id uuid.UUID) ([]*LibraryTranslation, error) {
	dir := bookDir(l.Root, id)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var out []*LibraryTranslation
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasPrefix(name, "translation_") || !strings.HasSuffix(name, ".dat") {
			continue
		}
		if strings.Contains(strings.TrimSuffix(strings.TrimPrefix(name, "translation_"), ".dat"), ".") {
			// a conflict-sibling file, not a canonical translation path
			continue
		}
		lt, err := loadLibraryTranslation(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		out = append(out, lt)
	}
	return out, nil
}

// ListDictionaries walks the library root and returns every distinct
// dictionary (source, target) pair found, deduplicated across conflict
// siblings.
func (l *Library) ListDictionaries() ([]*LibraryDictionary, error) {
	entries, err := os.ReadDir(l.Root)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var out []*LibraryDictionary
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasPrefix(name, "dictionary_") || !strings.HasSuffix(name, ".dat") {
			continue
		}
		path := filepath.Join(l.Root, name)
		ld, err := loadLibraryDictionary(path)
		if err != nil {
			continue
		}
		key := ld.Dictionary.SourceLanguage.String() + ">" + ld.Dictionary.TargetLanguage.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, ld)
	}
	return out, nil
}
