package epubexport

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"golang.org/x/text/language"

	"github.com/tsultanov/flts/internal/book"
	"github.com/tsultanov/flts/internal/translation"
	"github.com/tsultanov/flts/internal/translationimport"
)

func TestExportMonolingual(t *testing.T) {
	b := book.New("My Book")
	ch := b.AddChapter("Intro", "body")
	b.AddParagraph(ch, "Hello world", "")

	buf, err := New(b, nil).BuildToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatal(err)
	}

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	wantFiles := []string{
		"mimetype", "META-INF/container.xml", "OEBPS/content.opf",
		"OEBPS/nav.xhtml", "OEBPS/toc.ncx", "OEBPS/styles/style.css",
		"OEBPS/chapters/ch_001.xhtml",
	}
	for _, want := range wantFiles {
		found := false
		for _, n := range names {
			if n == want {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("expected file %q in archive, got %v", want, names)
		}
	}

	for _, f := range zr.File {
		if f.Name == "mimetype" {
			if f.Method != zip.Store {
				t.Fatalf("expected mimetype to be stored uncompressed")
			}
		}
	}
}

func TestExportBilingualInterleavesTranslation(t *testing.T) {
	b := book.New("My Book")
	ch := b.AddChapter("Intro", "body")
	b.AddParagraph(ch, "Hello", "")

	tr := translation.New(language.English, language.Russian)
	tr.AddParagraphTranslation(0, &translationimport.ParagraphTranslation{
		Sentences: []translationimport.Sentence{{
			FullTranslation: "Привет",
			Words: []translationimport.Word{
				{Original: "Hello", Grammar: translationimport.Grammar{OriginalInitialForm: "hello", TargetInitialForm: "привет", PartOfSpeech: "interjection"}},
			},
		}},
		SourceLanguage: "en",
		TargetLanguage: "ru",
	}, 1000)

	buf, err := New(b, tr).BuildToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatal(err)
	}

	var chapterContent string
	for _, f := range zr.File {
		if f.Name == "OEBPS/chapters/ch_001.xhtml" {
			rc, err := f.Open()
			if err != nil {
				t.Fatal(err)
			}
			var sb strings.Builder
			buf2 := make([]byte, 4096)
			for {
				n, rerr := rc.Read(buf2)
				sb.Write(buf2[:n])
				if rerr != nil {
					break
				}
			}
			rc.Close()
			chapterContent = sb.String()
		}
	}

	if !strings.Contains(chapterContent, "Hello") || !strings.Contains(chapterContent, "Привет") {
		t.Fatalf("expected both original and translated text, got: %s", chapterContent)
	}
	if !strings.Contains(chapterContent, "class=\"translation\"") {
		t.Fatalf("expected translation paragraph to carry its css class")
	}
}
