package library

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/avast/retry-go/v4"

	"github.com/tsultanov/flts/internal/dictionary"
)

// LibraryDictionary is a dictionary backed by a file at the library root,
// merged with any conflict-sibling copies found there.
type LibraryDictionary struct {
	Dictionary    *dictionary.Dictionary
	Path          string
	LastModified  time.Time
	ConflictPaths []string
}

func newLibraryDictionary(path string, source, target language.Tag) *LibraryDictionary {
	return &LibraryDictionary{Dictionary: dictionary.New(source, target), Path: path}
}

// dictionaryConflictSiblings scans the library root for dictionary_*.dat
// files whose metadata declares the same (source, target) pair as the
// dictionary at canonicalPath, but under a different filename.
//
// Unlike books and translations, the original source's
// LibraryDictionaryMetadata::load detects dictionary conflicts from parsed
// metadata rather than filename pattern — this compares the metadata's
// language pair (the dictionary ID is not compared), rather
// than reusing isConflictSibling, since dictionaries all live directly at
// the library root and a sync tool's renamed copy may not share the
// canonical "dictionary_<src>_<tgt>" stem at all.
func dictionaryConflictSiblings(root string, source, target language.Tag, canonicalPath string) ([]string, error) {
	entries, err := os.ReadDir(root)
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
		name := e.Name()
		if !strings.HasPrefix(name, "dictionary_") || !strings.HasSuffix(name, ".dat") {
			continue
		}
		path := filepath.Join(root, name)
		if path == canonicalPath {
			continue
		}

		f, err := os.Open(path)
		if err != nil {
			continue
		}
		meta, err := dictionary.ReadMetadata(f)
		f.Close()
		if err != nil {
			continue
		}
		if meta.SourceLanguage.String() == source.String() && meta.TargetLanguage.String() == target.String() {
			siblings = append(siblings, path)
		}
	}
	return siblings, nil
}

func loadLibraryDictionary(path string) (*LibraryDictionary, error) {
	ld := &LibraryDictionary{Path: path}
	if err := ld.reload(); err != nil {
		return nil, err
	}
	return ld, nil
}

func (ld *LibraryDictionary) reload() error {
	f, err := os.Open(ld.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	d, err := dictionary.Deserialize(f)
	if err != nil {
		return err
	}

	info, err := f.Stat()
	if err != nil {
		return err
	}

	root := filepath.Dir(ld.Path)
	siblings, err := dictionaryConflictSiblings(root, d.SourceLanguage, d.TargetLanguage, ld.Path)
	if err != nil {
		return err
	}

	for _, sibling := range siblings {
		sf, err := os.Open(sibling)
		if err != nil {
			continue
		}
		sd, err := dictionary.Deserialize(sf)
		sf.Close()
		if err != nil {
			continue
		}
		d = d.Merge(sd)
	}

	ld.Dictionary = d
	ld.LastModified = info.ModTime()
	ld.ConflictPaths = siblings
	return nil
}

// Save reconciles and writes the in-memory dictionary, following the same
// mtime-compare-and-rename protocol as LibraryBook.Save.
func (ld *LibraryDictionary) Save() error {
	return retry.Do(
		ld.saveOnce,
		retry.Attempts(saveRetryAttempts),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}

func (ld *LibraryDictionary) saveOnce() error {
	preInfo, preErr := os.Stat(ld.Path)
	existed := preErr == nil
	var preModTime time.Time
	if existed {
		preModTime = preInfo.ModTime()
		if preModTime.After(ld.LastModified) {
			onDisk, err := loadLibraryDictionary(ld.Path)
			if err == nil {
				ld.Dictionary = ld.Dictionary.Merge(onDisk.Dictionary)
			}
		}
	}

	tmpPath := ld.Path + "~"
	if err := writeDictionaryFile(tmpPath, ld.Dictionary); err != nil {
		return err
	}

	postInfo, postErr := os.Stat(ld.Path)
	postExisted := postErr == nil

	unchanged := existed == postExisted && (!existed || postInfo.ModTime().Equal(preModTime))
	if !unchanged {
		os.Remove(tmpPath)
		return ErrSaveConflictExhausted
	}

	if err := os.Rename(tmpPath, ld.Path); err != nil {
		return err
	}

	info, err := os.Stat(ld.Path)
	if err == nil {
		ld.LastModified = info.ModTime()
	}
	return nil
}

func writeDictionaryFile(path string, d *dictionary.Dictionary) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return dictionary.Serialize(f, d)
}
