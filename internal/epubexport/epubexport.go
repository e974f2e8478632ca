// Package epubexport renders a book.Book, optionally interleaved with a
// translation.Translation, to an EPUB 3 archive.
//
// Adapted from the teacher's internal/epub Builder: the container
// structure (mimetype, META-INF/container.xml, content.opf, nav.xhtml,
// toc.ncx, a stylesheet, one XHTML file per chapter) is unchanged, but
// the teacher's markdown-based Chapter.PolishedText has no equivalent in
// this domain (book/translation text is plain, never markdown) and is
// replaced by a direct paragraph walk that optionally interleaves each
// paragraph's latest translation.
package epubexport

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/tsultanov/flts/internal/book"
	"github.com/tsultanov/flts/internal/translation"
)

// paragraph is one rendered paragraph: its original text and, when a
// translation is attached and covers it, the rendered text of its latest
// version.
type paragraph struct {
	Original   string
	Translated string
}

// chapter is a titled, ordered sequence of rendered paragraphs.
type chapter struct {
	ID         string
	Title      string
	MatterType string
	Paragraphs []paragraph
}

// Exporter renders a Book, optionally bilingual, to an EPUB archive.
type Exporter struct {
	book        *book.Book
	translation *translation.Translation
	chapters    []chapter
	pubID       string // set on first use by generateUUID
}

// New creates an Exporter for b. If tr is non-nil, every paragraph's
// latest translated sentences are interleaved into the output.
func New(b *book.Book, tr *translation.Translation) *Exporter {
	e := &Exporter{book: b, translation: tr}
	e.chapters = e.buildChapters()
	return e
}

func (e *Exporter) buildChapters() []chapter {
	chapters := make([]chapter, len(e.book.Chapters))
	global := 0
	for ci, ch := range e.book.Chapters {
		out := chapter{
			ID:         fmt.Sprintf("ch_%03d", ci+1),
			Title:      ch.Title,
			MatterType: ch.MatterType,
		}
		for _, p := range ch.Paragraphs {
			out.Paragraphs = append(out.Paragraphs, paragraph{
				Original:   p.Text,
				Translated: e.latestTranslationText(global),
			})
			global++
		}
		chapters[ci] = out
	}
	return chapters
}

// latestTranslationText renders the latest ParagraphTranslation for
// globalParagraphIndex, joining its sentences' target text, or "" if no
// translation is attached or none covers this paragraph.
func (e *Exporter) latestTranslationText(globalParagraphIndex int) string {
	if e.translation == nil {
		return ""
	}
	idx, ok := e.translation.Latest[globalParagraphIndex]
	if !ok {
		return ""
	}
	pt := e.translation.ParagraphTranslations[idx]
	var out string
	for i, s := range pt.Sentences {
		if i > 0 {
			out += " "
		}
		out += s.FullTranslation
	}
	return out
}

// Build generates the EPUB and writes it to outputPath.
func (e *Exporter) Build(outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("epubexport: create output directory: %w", err)
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("epubexport: create output file: %w", err)
	}
	defer f.Close()
	return e.WriteTo(f)
}

// BuildToBuffer generates the EPUB and returns it as a byte buffer.
func (e *Exporter) BuildToBuffer() (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	if err := e.WriteTo(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteTo writes the EPUB archive to w.
func (e *Exporter) WriteTo(w io.Writer) error {
	zw := zip.NewWriter(w)
	defer zw.Close()

	if err := e.writeMimetype(zw); err != nil {
		return err
	}
	if err := e.writeContainer(zw); err != nil {
		return err
	}
	if err := e.writePackage(zw); err != nil {
		return err
	}
	if err := e.writeNavigation(zw); err != nil {
		return err
	}
	if err := e.writeNCX(zw); err != nil {
		return err
	}
	if err := e.writeStylesheet(zw); err != nil {
		return err
	}
	for i, ch := range e.chapters {
		if err := e.writeChapter(zw, i, ch); err != nil {
			return fmt.Errorf("epubexport: write chapter %s: %w", ch.ID, err)
		}
	}
	return nil
}

func (e *Exporter) writeMimetype(zw *zip.Writer) error {
	header := &zip.FileHeader{Name: "mimetype", Method: zip.Store}
	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("epubexport: create mimetype: %w", err)
	}
	_, err = w.Write([]byte("application/epub+zip"))
	return err
}

func (e *Exporter) writeContainer(zw *zip.Writer) error {
	content := `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

	w, err := zw.Create("META-INF/container.xml")
	if err != nil {
		return fmt.Errorf("epubexport: create container.xml: %w", err)
	}
	_, err = w.Write([]byte(content))
	return err
}

func (e *Exporter) writePackage(zw *zip.Writer) error {
	w, err := zw.Create("OEBPS/content.opf")
	if err != nil {
		return fmt.Errorf("epubexport: create content.opf: %w", err)
	}
	_, err = w.Write([]byte(e.generatePackage()))
	return err
}

func (e *Exporter) writeNavigation(zw *zip.Writer) error {
	w, err := zw.Create("OEBPS/nav.xhtml")
	if err != nil {
		return fmt.Errorf("epubexport: create nav.xhtml: %w", err)
	}
	_, err = w.Write([]byte(e.generateNavigation()))
	return err
}

func (e *Exporter) writeNCX(zw *zip.Writer) error {
	w, err := zw.Create("OEBPS/toc.ncx")
	if err != nil {
		return fmt.Errorf("epubexport: create toc.ncx: %w", err)
	}
	_, err = w.Write([]byte(e.generateNCX()))
	return err
}

func (e *Exporter) writeStylesheet(zw *zip.Writer) error {
	w, err := zw.Create("OEBPS/styles/style.css")
	if err != nil {
		return fmt.Errorf("epubexport: create style.css: %w", err)
	}
	_, err = w.Write([]byte(defaultStylesheet))
	return err
}

func (e *Exporter) writeChapter(zw *zip.Writer, index int, ch chapter) error {
	filename := fmt.Sprintf("OEBPS/chapters/%s.xhtml", ch.ID)
	w, err := zw.Create(filename)
	if err != nil {
		return fmt.Errorf("epubexport: create %s: %w", filename, err)
	}
	_, err = w.Write([]byte(e.generateChapterXHTML(ch)))
	return err
}

// generateUUID returns the publication identifier for this export: a
// freshly generated URN, since exported books have no ISBN concept.
func (e *Exporter) generateUUID() string {
	if e.pubID == "" {
		e.pubID = "urn:uuid:" + uuid.New().String()
	}
	return e.pubID
}

const defaultStylesheet = `/* flts EPUB export stylesheet */

body {
  font-family: Georgia, "Times New Roman", serif;
  font-size: 1em;
  line-height: 1.6;
  margin: 1em;
  text-align: justify;
}

h1, h2 {
  font-family: "Helvetica Neue", Helvetica, Arial, sans-serif;
  font-weight: bold;
  margin-top: 1.5em;
  margin-bottom: 0.5em;
  text-align: left;
}

h1 {
  font-size: 1.8em;
  border-bottom: 1px solid #ccc;
  padding-bottom: 0.3em;
}

p {
  margin: 0.5em 0;
  text-indent: 1.5em;
}

p:first-of-type {
  text-indent: 0;
}

p.translation {
  font-style: italic;
  color: #444;
  text-indent: 0;
  margin-bottom: 1em;
}

.front-matter, .back-matter {
  font-size: 0.95em;
}
`
