package epubimport

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/tsultanov/flts/internal/book"
	"github.com/tsultanov/flts/internal/epubexport"
)

func TestLoadBookRoundTripsExportedEPUB(t *testing.T) {
	b := book.New("My Book")
	ch1 := b.AddChapter("Introduction", "body")
	b.AddParagraph(ch1, "Hello world", "")
	b.AddParagraph(ch1, "Second paragraph", "")
	ch2 := b.AddChapter("Conclusion", "body")
	b.AddParagraph(ch2, "The end", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "book.epub")
	if err := epubexport.New(b, nil).Build(path); err != nil {
		t.Fatalf("export: %v", err)
	}

	loaded, err := LoadBook(path)
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	if loaded.TotalParagraphs() != 3 {
		t.Fatalf("expected 3 paragraphs, got %d", loaded.TotalParagraphs())
	}
	if len(loaded.Chapters) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(loaded.Chapters))
	}
	if loaded.Chapters[0].Title != "Introduction" {
		t.Fatalf("unexpected first chapter title %q", loaded.Chapters[0].Title)
	}
	if loaded.Chapters[1].Title != "Conclusion" {
		t.Fatalf("unexpected second chapter title %q", loaded.Chapters[1].Title)
	}
	if loaded.Chapters[0].Paragraphs[0].Text != "Hello world" {
		t.Fatalf("unexpected first paragraph text %q", loaded.Chapters[0].Paragraphs[0].Text)
	}
}

func TestParseChapterDocNoTOC(t *testing.T) {
	htmlDoc := []byte(`<html><head><title>Untitled</title></head><body><p>Only paragraph</p></body></html>`)
	chapters, err := parseChapterDoc(htmlDoc, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(chapters) != 1 {
		t.Fatalf("expected 1 chapter, got %d", len(chapters))
	}
	if chapters[0].Title != "Untitled" {
		t.Fatalf("unexpected title %q", chapters[0].Title)
	}
	if len(chapters[0].Paragraphs) != 1 || chapters[0].Paragraphs[0] != "Only paragraph" {
		t.Fatalf("unexpected paragraphs %v", chapters[0].Paragraphs)
	}
}

func TestParseChapterDocWithAnchors(t *testing.T) {
	htmlDoc := []byte(`<html><body>
		<h1 id="ch1">Chapter One</h1>
		<p>First paragraph</p>
		<h1 id="ch2">Chapter Two</h1>
		<p>Second paragraph</p>
	</body></html>`)
	toc := []tocEntry{
		{Href: "doc.xhtml", Anchor: "ch1", Title: "Chapter One"},
		{Href: "doc.xhtml", Anchor: "ch2", Title: "Chapter Two"},
	}
	chapters, err := parseChapterDoc(htmlDoc, toc)
	if err != nil {
		t.Fatal(err)
	}
	if len(chapters) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(chapters))
	}
	if len(chapters[0].Paragraphs) != 1 || chapters[0].Paragraphs[0] != "First paragraph" {
		t.Fatalf("unexpected first chapter paragraphs: %v", chapters[0].Paragraphs)
	}
	if len(chapters[1].Paragraphs) != 1 || chapters[1].Paragraphs[0] != "Second paragraph" {
		t.Fatalf("unexpected second chapter paragraphs: %v", chapters[1].Paragraphs)
	}
}

func TestLoadBookMissingContainerXML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.epub")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	w, _ := zw.Create("mimetype")
	w.Write([]byte("application/epub+zip"))
	zw.Close()
	f.Close()

	if _, err := LoadBook(path); err == nil {
		t.Fatal("expected error for archive with no container.xml")
	}
}
