// Package library implements the on-disk library layout: a directory tree
// of book.dat/translation_<src>_<tgt>.dat files per book directory plus
// dictionary_<src>_<tgt>.dat files at the root, with discovery, conflict-
// sibling detection, and reconciling save/merge for concurrent writers.
package library

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/text/language"
)

// Library is a single library directory root.
type Library struct {
	Root string
}

// Open returns a Library rooted at root, creating the directory if it does
// not yet exist.
func Open(root string) (*Library, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("library: open %s: %w", root, err)
	}
	return &Library{Root: root}, nil
}

func bookDir(root string, id uuid.UUID) string {
	return filepath.Join(root, id.String())
}

func bookPath(root string, id uuid.UUID) string {
	return filepath.Join(bookDir(root, id), "book.dat")
}

func translationPath(root string, id uuid.UUID, source, target language.Tag) string {
	return filepath.Join(bookDir(root, id), fmt.Sprintf("translation_%s_%s.dat", source, target))
}

func dictionaryPath(root string, source, target language.Tag) string {
	return filepath.Join(root, fmt.Sprintf("dictionary_%s_%s.dat", source, target))
}

// CreateBook allocates a new book directory and writes an initial empty
// book.dat for it.
func (l *Library) CreateBook(title string) (*LibraryBook, error) {
	lb := newLibraryBook(l.Root, title)
	if err := os.MkdirAll(bookDir(l.Root, lb.Book.ID), 0o755); err != nil {
		return nil, fmt.Errorf("library: create book directory: %w", err)
	}
	if err := lb.Save(); err != nil {
		return nil, err
	}
	return lb, nil
}

// GetOrCreateTranslation loads the translation file for (source, target)
// under book uuid id if it exists, or creates a new empty one.
func (l *Library) GetOrCreateTranslation(id uuid.UUID, source, target language.Tag) (*LibraryTranslation, error) {
	path := translationPath(l.Root, id, source, target)
	if _, err := os.Stat(path); err == nil {
		return loadLibraryTranslation(path)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("library: stat %s: %w", path, err)
	}
	lt := newLibraryTranslation(path, source, target)
	if err := lt.Save(); err != nil {
		return nil, err
	}
	return lt, nil
}

// GetOrCreateDictionary loads the dictionary file for (source, target) at
// the library root if it exists, or creates a new empty one.
func (l *Library) GetOrCreateDictionary(source, target language.Tag) (*LibraryDictionary, error) {
	path := dictionaryPath(l.Root, source, target)
	if _, err := os.Stat(path); err == nil {
		return loadLibraryDictionary(path)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("library: stat %s: %w", path, err)
	}
	ld := newLibraryDictionary(path, source, target)
	if err := ld.Save(); err != nil {
		return nil, err
	}
	return ld, nil
}
