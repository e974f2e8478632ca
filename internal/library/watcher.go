package library

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"golang.org/x/text/language"
)

// Change is a debounced, classified filesystem event for a single library
// artifact. Exactly one of BookID or (Source, Target) is set, selected by
// Kind.
type Change struct {
	Kind   ChangeKind
	BookID uuid.UUID
	Source language.Tag
	Target language.Tag
}

// ChangeKind distinguishes the two kinds of Change event.
type ChangeKind int

const (
	// BookChanged reports that a book (or one of its translations) changed.
	BookChanged ChangeKind = iota
	// DictionaryChanged reports that a root-level dictionary file changed.
	DictionaryChanged
)

// DefaultDebounce is the quiescence window used when WatchConfig does not
// specify one.
const DefaultDebounce = 500 * time.Millisecond

// Watcher emits debounced, classified Change events for a library root.
type Watcher struct {
	root     string
	debounce time.Duration
	fsw      *fsnotify.Watcher
	events   chan Change
	errors   chan error
	done     chan struct{}

	mu      sync.Mutex
	timers  map[string]*time.Timer
	pending map[string]Change
}

// NewWatcher creates a Watcher over root and every directory directly under
// it (the per-book directories) with the given debounce window
// (DefaultDebounce if zero) and starts watching immediately. Book
// directories created after NewWatcher returns are not watched.
func NewWatcher(root string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(root); err != nil {
		fsw.Close()
		return nil, err
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		fsw.Close()
		return nil, err
	}
	for _, e := range entries {
		if e.IsDir() {
			if err := fsw.Add(filepath.Join(root, e.Name())); err != nil {
				fsw.Close()
				return nil, err
			}
		}
	}

	w := &Watcher{
		root:     root,
		debounce: debounce,
		fsw:      fsw,
		events:   make(chan Change, 16),
		errors:   make(chan error, 16),
		done:     make(chan struct{}),
		timers:   make(map[string]*time.Timer),
		pending:  make(map[string]Change),
	}
	go w.run()
	return w, nil
}

// Events returns the channel of debounced, classified changes.
func (w *Watcher) Events() <-chan Change {
	return w.events
}

// Errors returns the channel of underlying watch errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	name := filepath.Base(ev.Name)
	if strings.HasSuffix(name, "~") {
		return
	}
	change, ok := classifyEvent(ev.Name)
	if !ok {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	key := ev.Name
	w.pending[key] = change
	if t, exists := w.timers[key]; exists {
		t.Stop()
	}
	w.timers[key] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		c := w.pending[key]
		delete(w.pending, key)
		delete(w.timers, key)
		w.mu.Unlock()

		select {
		case w.events <- c:
		case <-w.done:
		}
	})
}

// classifyEvent determines the library Change implied by a change to path,
// following the naming convention of library artifacts. It returns ok=false
// for paths that don't match a recognized artifact name.
func classifyEvent(path string) (Change, bool) {
	name := filepath.Base(path)
	dir := filepath.Base(filepath.Dir(path))

	switch {
	case name == "book.dat":
		if id, err := uuid.Parse(dir); err == nil {
			return Change{Kind: BookChanged, BookID: id}, true
		}
	case strings.HasPrefix(name, "translation_") && strings.HasSuffix(name, ".dat"):
		if id, err := uuid.Parse(dir); err == nil {
			return Change{Kind: BookChanged, BookID: id}, true
		}
	case strings.HasPrefix(name, "dictionary_") && strings.HasSuffix(name, ".dat"):
		stem := strings.TrimSuffix(strings.TrimPrefix(name, "dictionary_"), ".dat")
		parts := strings.SplitN(stem, "_", 2)
		if len(parts) == 2 {
			src, err1 := language.Parse(parts[0])
			tgt, err2 := language.Parse(parts[1])
			if err1 == nil && err2 == nil {
				return Change{Kind: DictionaryChanged, Source: src, Target: tgt}, true
			}
		}
	}
	return Change{}, false
}
