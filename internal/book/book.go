// Package book implements the Book container: a structure-of-arrays
// representation of a book's chapters and paragraphs backed by a shared
// string arena, serialized to the self-describing BK01 binary format.
package book

import (
	"github.com/google/uuid"

	"github.com/tsultanov/flts/internal/arena"
)

// Paragraph is a single paragraph of a chapter's original text, plus the
// source markup it was extracted from, when available.
type Paragraph struct {
	Text string
	// OriginalHTML is the paragraph's original markup (e.g. "<p>Hello
	// <b>world</b></p>"), or "" if none was recorded.
	OriginalHTML string
}

// Chapter is a titled sequence of paragraphs.
type Chapter struct {
	Title      string
	MatterType string // "front_matter", "body", "back_matter"
	Paragraphs []Paragraph
}

// Book is a title plus an ordered sequence of chapters.
//
// In memory this is the plain-struct view; Serialize/Deserialize convert
// to and from the SoA arena representation that actually hits disk.
type Book struct {
	ID      uuid.UUID
	Title   string
	Chapters []Chapter
}

// TotalParagraphs returns the paragraph count across all chapters.
func (b *Book) TotalParagraphs() int {
	n := 0
	for _, ch := range b.Chapters {
		n += len(ch.Paragraphs)
	}
	return n
}

// FlatParagraph is one paragraph located within its chapter, tagged with
// the book-wide flat index Translation.Latest is keyed by.
type FlatParagraph struct {
	GlobalIndex    int
	ChapterIndex   int
	ParagraphIndex int
	Text           string
}

// FlattenParagraphs returns every paragraph across all chapters in book
// order, each tagged with the flat, book-wide paragraph index that
// spec.md's Translation.paragraphs array (internal/translation's
// Translation.Latest map) is indexed by.
func (b *Book) FlattenParagraphs() []FlatParagraph {
	var out []FlatParagraph
	global := 0
	for ci, ch := range b.Chapters {
		for pi, p := range ch.Paragraphs {
			out = append(out, FlatParagraph{
				GlobalIndex:    global,
				ChapterIndex:   ci,
				ParagraphIndex: pi,
				Text:           p.Text,
			})
			global++
		}
	}
	return out
}

// New creates an empty book with a freshly generated ID.
func New(title string) *Book {
	return &Book{ID: uuid.New(), Title: title}
}

// AddChapter appends a chapter and returns its index.
func (b *Book) AddChapter(title, matterType string) int {
	b.Chapters = append(b.Chapters, Chapter{Title: title, MatterType: matterType})
	return len(b.Chapters) - 1
}

// AddParagraph appends a paragraph to chapter chapterIndex and returns its
// index within that chapter. originalHTML is the paragraph's source markup,
// or "" if none should be recorded.
func (b *Book) AddParagraph(chapterIndex int, text, originalHTML string) int {
	ch := &b.Chapters[chapterIndex]
	ch.Paragraphs = append(ch.Paragraphs, Paragraph{Text: text, OriginalHTML: originalHTML})
	return len(ch.Paragraphs) - 1
}

// Merge resolves the otherwise-undefined Book::merge: the side with the
// larger total paragraph count wins, ties going to the receiver. Paragraph
// count is the only signal available to compare two independently-edited
// copies of a Book, which carries no version counter of its own.
func (b *Book) Merge(other *Book) *Book {
	if other == nil {
		return b
	}
	if other.TotalParagraphs() > b.TotalParagraphs() {
		merged := *other
		merged.ID = b.ID
		return &merged
	}
	return b
}

// soaArena is the append-rule-backed representation used only during
// serialization/deserialization.
type soaArena struct {
	bytes []byte
}

func (a *soaArena) push(s string) arena.SliceRef[byte] {
	var ref arena.SliceRef[byte]
	var ok bool
	a.bytes, ref, ok = arena.PushString(a.bytes, arena.SliceRef[byte]{Start: uint32(len(a.bytes))}, s)
	if !ok {
		panic("book: arena push invariant violated")
	}
	return ref
}

func (a *soaArena) view(ref arena.SliceRef[byte]) string {
	return arena.ViewString(a.bytes, ref)
}
