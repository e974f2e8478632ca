package library

import (
	"os"
	"path/filepath"
	"time"

	"golang.org/x/text/language"

	"github.com/avast/retry-go/v4"

	"github.com/tsultanov/flts/internal/translation"
)

// LibraryTranslation is a translation backed by a file on disk, merged with
// any conflict-sibling copies found alongside it.
type LibraryTranslation struct {
	Translation   *translation.Translation
	Path          string
	LastModified  time.Time
	ConflictPaths []string
}

func newLibraryTranslation(path string, source, target language.Tag) *LibraryTranslation {
	return &LibraryTranslation{Translation: translation.New(source, target), Path: path}
}

// loadLibraryTranslation deserializes the canonical translation file and
// folds in every conflict sibling via Translation.Merge — the resolution
// of the original's LibraryTranslation::load_from_metadata todo!() stub,
// generalized here to also cover the full (non-metadata-only) load path.
func loadLibraryTranslation(path string) (*LibraryTranslation, error) {
	lt := &LibraryTranslation{Path: path}
	if err := lt.reload(); err != nil {
		return nil, err
	}
	return lt, nil
}

func (lt *LibraryTranslation) reload() error {
	f, err := os.Open(lt.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	tr, err := translation.Deserialize(f)
	if err != nil {
		return err
	}

	info, err := f.Stat()
	if err != nil {
		return err
	}

	dir := filepath.Dir(lt.Path)
	siblings, err := conflictSiblings(dir, filepath.Base(lt.Path))
	if err != nil {
		return err
	}

	for _, sibling := range siblings {
		sf, err := os.Open(sibling)
		if err != nil {
			continue
		}
		str, err := translation.Deserialize(sf)
		sf.Close()
		if err != nil {
			continue
		}
		tr = tr.Merge(str)
	}

	lt.Translation = tr
	lt.LastModified = info.ModTime()
	lt.ConflictPaths = siblings
	return nil
}

// Save reconciles and writes the in-memory translation, following the same
// mtime-compare-and-rename protocol as LibraryBook.Save.
func (lt *LibraryTranslation) Save() error {
	return retry.Do(
		lt.saveOnce,
		retry.Attempts(saveRetryAttempts),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}

func (lt *LibraryTranslation) saveOnce() error {
	preInfo, preErr := os.Stat(lt.Path)
	existed := preErr == nil
	var preModTime time.Time
	if existed {
		preModTime = preInfo.ModTime()
		if preModTime.After(lt.LastModified) {
			onDisk, err := loadLibraryTranslation(lt.Path)
			if err == nil {
				lt.Translation = lt.Translation.Merge(onDisk.Translation)
			}
		}
	}

	tmpPath := lt.Path + "~"
	if err := writeTranslationFile(tmpPath, lt.Translation); err != nil {
		return err
	}

	postInfo, postErr := os.Stat(lt.Path)
	postExisted := postErr == nil

	unchanged := existed == postExisted && (!existed || postInfo.ModTime().Equal(preModTime))
	if !unchanged {
		os.Remove(tmpPath)
		return ErrSaveConflictExhausted
	}

	if err := os.Rename(tmpPath, lt.Path); err != nil {
		return err
	}

	info, err := os.Stat(lt.Path)
	if err == nil {
		lt.LastModified = info.ModTime()
	}
	return nil
}

func writeTranslationFile(path string, tr *translation.Translation) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return translation.Serialize(f, tr)
}
