package library

import (
	"os"
	"path/filepath"
	"strings"
)

// isConflictSibling reports whether candidateName is a sync-conflict copy
// of canonicalName: both end in ".dat", candidateName is not byte-identical
// to canonicalName, and candidateName starts with canonicalName's stem
// followed by a ".", e.g. "book.dat" / "book.syncconflict-foobar.dat".
//
// This is the filename-pattern strategy used for books and translations.
// Dictionaries use a different strategy based on the language pair in each
// file's metadata — see dictionaryConflictSiblings in library_dictionary.go —
// because the original source
// itself treats the two cases differently; unifying them would silently
// change documented dictionary-conflict behavior.
func isConflictSibling(canonicalName, candidateName string) bool {
	if candidateName == canonicalName {
		return false
	}
	if !strings.HasSuffix(candidateName, ".dat") {
		return false
	}
	stem := strings.TrimSuffix(canonicalName, ".dat")
	return strings.HasPrefix(candidateName, stem+".")
}

// conflictSiblings scans dir for files that are conflict siblings of
// canonicalName, returning their full paths.
func conflictSiblings(dir, canonicalName string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var siblings []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if isConflictSibling(canonicalName, e.Name()) {
			siblings = append(siblings, filepath.Join(dir, e.Name()))
		}
	}
	return siblings, nil
}
