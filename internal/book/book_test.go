package book

import (
	"bytes"
	"errors"
	"testing"

	"github.com/tsultanov/flts/internal/codec"
)

func sampleBook() *Book {
	b := New("My Book")
	ch := b.AddChapter("Intro", "body")
	b.AddParagraph(ch, "Hello world", "<p>Hello <b>world</b></p>")
	b.AddParagraph(ch, "Second paragraph", "")
	return b
}

func TestCreateBook(t *testing.T) {
	b := New("My Book")
	if b.Title != "My Book" {
		t.Fatalf("got title %q", b.Title)
	}
	if len(b.Chapters) != 0 {
		t.Fatalf("expected no chapters")
	}
}

func TestCreateBookEmptyChapter(t *testing.T) {
	b := New("My Book")
	b.AddChapter("Intro", "body")
	if len(b.Chapters) != 1 {
		t.Fatalf("expected one chapter")
	}
	if len(b.Chapters[0].Paragraphs) != 0 {
		t.Fatalf("expected no paragraphs")
	}
}

func TestCreateBookOneChapterTwoParagraphs(t *testing.T) {
	b := sampleBook()
	if len(b.Chapters) != 1 {
		t.Fatalf("expected one chapter")
	}
	if len(b.Chapters[0].Paragraphs) != 2 {
		t.Fatalf("expected two paragraphs")
	}
	if b.Chapters[0].Paragraphs[0].Text != "Hello world" {
		t.Fatalf("got %q", b.Chapters[0].Paragraphs[0].Text)
	}
	if b.Chapters[0].Paragraphs[0].OriginalHTML != "<p>Hello <b>world</b></p>" {
		t.Fatalf("got %q", b.Chapters[0].Paragraphs[0].OriginalHTML)
	}
	if b.Chapters[0].Paragraphs[1].OriginalHTML != "" {
		t.Fatalf("expected no original html, got %q", b.Chapters[0].Paragraphs[1].OriginalHTML)
	}
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	b := sampleBook()

	var buf bytes.Buffer
	if err := Serialize(&buf, b); err != nil {
		t.Fatalf("serialize: %v", err)
	}

	got, err := Deserialize(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}

	if got.Title != "My Book" {
		t.Fatalf("got title %q", got.Title)
	}
	if got.ID != b.ID {
		t.Fatalf("id mismatch: got %v want %v", got.ID, b.ID)
	}
	if len(got.Chapters) != 1 || got.Chapters[0].Title != "Intro" {
		t.Fatalf("unexpected chapters: %+v", got.Chapters)
	}
	if got.Chapters[0].Paragraphs[0].Text != "Hello world" {
		t.Fatalf("got %q", got.Chapters[0].Paragraphs[0].Text)
	}
	if got.Chapters[0].Paragraphs[0].OriginalHTML != "<p>Hello <b>world</b></p>" {
		t.Fatalf("got %q", got.Chapters[0].Paragraphs[0].OriginalHTML)
	}
	if got.Chapters[0].Paragraphs[1].Text != "Second paragraph" {
		t.Fatalf("got %q", got.Chapters[0].Paragraphs[1].Text)
	}
	if got.Chapters[0].Paragraphs[1].OriginalHTML != "" {
		t.Fatalf("expected no original html, got %q", got.Chapters[0].Paragraphs[1].OriginalHTML)
	}
}

func TestSerializeDeserializeCorruption(t *testing.T) {
	b := sampleBook()

	var buf bytes.Buffer
	if err := Serialize(&buf, b); err != nil {
		t.Fatalf("serialize: %v", err)
	}

	data := buf.Bytes()
	data[12] ^= 0xFF

	_, err := Deserialize(bytes.NewReader(data))
	if !errors.Is(err, codec.ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

func TestReadMetadataDoesNotNeedValidBody(t *testing.T) {
	b := sampleBook()

	var buf bytes.Buffer
	if err := Serialize(&buf, b); err != nil {
		t.Fatalf("serialize: %v", err)
	}

	// Corrupt the tail (the whole-file hash / body area) but leave the
	// metadata section intact: metadata-only reads must still succeed.
	data := buf.Bytes()
	data[len(data)-1] ^= 0xFF

	meta, err := ReadMetadata(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("expected metadata read to succeed, got %v", err)
	}
	if meta.Title != "My Book" || meta.ChaptersCount != 1 || meta.ParagraphsCount != 2 {
		t.Fatalf("unexpected metadata: %+v", meta)
	}
}

func TestBookMergePrefersLargerParagraphCount(t *testing.T) {
	a := sampleBook()
	b := New(a.Title)
	b.ID = a.ID
	ch := b.AddChapter("Intro", "body")
	b.AddParagraph(ch, "Hello world", "")

	merged := a.Merge(b)
	if merged.TotalParagraphs() != 2 {
		t.Fatalf("expected a (2 paragraphs) to win, got %d", merged.TotalParagraphs())
	}

	merged2 := b.Merge(a)
	if merged2.TotalParagraphs() != 2 {
		t.Fatalf("expected the larger side to win regardless of receiver, got %d", merged2.TotalParagraphs())
	}
	if merged2.ID != b.ID {
		t.Fatalf("expected merged book to keep the receiver's id")
	}
}

func TestFlattenParagraphsAssignsBookWideIndices(t *testing.T) {
	b := New("My Book")
	ch1 := b.AddChapter("Ch1", "body")
	b.AddParagraph(ch1, "one", "")
	b.AddParagraph(ch1, "two", "")
	ch2 := b.AddChapter("Ch2", "body")
	b.AddParagraph(ch2, "three", "")

	flat := b.FlattenParagraphs()
	if len(flat) != 3 {
		t.Fatalf("expected 3 flattened paragraphs, got %d", len(flat))
	}
	for i, fp := range flat {
		if fp.GlobalIndex != i {
			t.Fatalf("expected global index %d, got %d", i, fp.GlobalIndex)
		}
	}
	if flat[2].ChapterIndex != 1 || flat[2].ParagraphIndex != 0 {
		t.Fatalf("expected third paragraph to be chapter 1 paragraph 0, got chapter %d paragraph %d",
			flat[2].ChapterIndex, flat[2].ParagraphIndex)
	}
	if flat[2].Text != "three" {
		t.Fatalf("unexpected text %q", flat[2].Text)
	}
}
