package library

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/tsultanov/flts/internal/book"
)

// ErrSaveConflictExhausted is returned when a reconciling save could not
// win the write race within the retry budget.
var ErrSaveConflictExhausted = errors.New("library: save conflict not resolved within retry budget")

const saveRetryAttempts = 5

// LibraryBook is a book backed by a file on disk, merged with any
// conflict-sibling copies a file-sync tool may have left next to it.
type LibraryBook struct {
	Book          *book.Book
	Path          string
	LastModified  time.Time
	ConflictPaths []string
}

func newLibraryBook(root, title string) *LibraryBook {
	b := book.New(title)
	return &LibraryBook{Book: b, Path: bookPath(root, b.ID)}
}

// LoadLibraryBook deserializes the canonical book file at path and folds
// in every conflict sibling found alongside it via Book.Merge.
//
// The original source leaves LibraryBook::load as a todo!() stub; this is
// its resolution, following the "deserialize main, merge conflict
// siblings, record mtime" rule the original's own design notes call for.
func LoadLibraryBook(path string) (*LibraryBook, error) {
	return loadLibraryBook(path)
}

func loadLibraryBook(path string) (*LibraryBook, error) {
	lb := &LibraryBook{Path: path}
	if err := lb.reload(); err != nil {
		return nil, err
	}
	return lb, nil
}

// reload re-reads the canonical file and its conflict siblings from disk.
func (lb *LibraryBook) reload() error {
	f, err := os.Open(lb.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	b, err := book.Deserialize(f)
	if err != nil {
		return err
	}

	info, err := f.Stat()
	if err != nil {
		return err
	}

	dir := filepath.Dir(lb.Path)
	siblings, err := conflictSiblings(dir, filepath.Base(lb.Path))
	if err != nil {
		return err
	}

	for _, sibling := range siblings {
		sf, err := os.Open(sibling)
		if err != nil {
			continue
		}
		sb, err := book.Deserialize(sf)
		sf.Close()
		if err != nil {
			continue
		}
		b = b.Merge(sb)
	}

	lb.Book = b
	lb.LastModified = info.ModTime()
	lb.ConflictPaths = siblings
	return nil
}

// Save writes the in-memory book to disk, reconciling against any
// concurrent writer: it records the file's pre-write mtime, merges in any
// newer on-disk version first, writes to a temp sibling, and atomically
// renames it in only if the canonical file's mtime did not change in the
// meantime. The whole cycle is retried up to saveRetryAttempts times with
// exponential backoff — the original source's equivalent loop retries
// unboundedly, which this resolves per the design note on bounded retry.
func (lb *LibraryBook) Save() error {
	return retry.Do(
		lb.saveOnce,
		retry.Attempts(saveRetryAttempts),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}

func (lb *LibraryBook) saveOnce() error {
	preInfo, preErr := os.Stat(lb.Path)
	existed := preErr == nil
	var preModTime time.Time
	if existed {
		preModTime = preInfo.ModTime()

		if preModTime.After(lb.LastModified) {
			onDisk, err := loadLibraryBook(lb.Path)
			if err == nil {
				lb.Book = lb.Book.Merge(onDisk.Book)
			}
		}
	}

	tmpPath := lb.Path + "~"
	if err := writeBookFile(tmpPath, lb.Book); err != nil {
		return err
	}

	postInfo, postErr := os.Stat(lb.Path)
	postExisted := postErr == nil

	unchanged := existed == postExisted && (!existed || postInfo.ModTime().Equal(preModTime))
	if !unchanged {
		os.Remove(tmpPath)
		return ErrSaveConflictExhausted
	}

	if err := os.Rename(tmpPath, lb.Path); err != nil {
		return err
	}

	info, err := os.Stat(lb.Path)
	if err == nil {
		lb.LastModified = info.ModTime()
	}
	return nil
}

func writeBookFile(path string, b *book.Book) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return book.Serialize(f, b)
}
