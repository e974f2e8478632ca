// Package epubimport reads an EPUB archive into a book.Book: the zip's
// package document gives reading order and metadata, its navigation
// document (or NCX) gives chapter titles, and each spine item's XHTML is
// walked for paragraph-like leaf elements.
//
// Grounded on original_source/library/src/epub_importer.rs, reimplemented
// against golang.org/x/net/html's node tree instead of the original's
// scraper::ElementRef.
package epubimport

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/tsultanov/flts/internal/book"
)

type containerXML struct {
	RootFiles struct {
		RootFile []struct {
			FullPath string `xml:"full-path,attr"`
		} `xml:"rootfile"`
	} `xml:"rootfiles"`
}

type manifestItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	Properties string `xml:"properties,attr"`
}

type opfPackage struct {
	Metadata struct {
		Title   []string `xml:"title"`
		Creator []string `xml:"creator"`
	} `xml:"metadata"`
	Manifest struct {
		Items []manifestItem `xml:"item"`
	} `xml:"manifest"`
	Spine struct {
		ItemRefs []struct {
			IDRef string `xml:"idref,attr"`
		} `xml:"itemref"`
	} `xml:"spine"`
}

// LoadBook opens the EPUB archive at path and returns the book it
// describes: chapter titles from the navigation document (or NCX),
// paragraphs from a tree walk of each spine item's XHTML body.
func LoadBook(path string) (*book.Book, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("epubimport: open %s: %w", path, err)
	}
	defer zr.Close()
	return loadBookFromZip(&zr.Reader)
}

func loadBookFromZip(zr *zip.Reader) (*book.Book, error) {
	containerData, err := readZipFile(zr, "META-INF/container.xml")
	if err != nil {
		return nil, fmt.Errorf("epubimport: read container.xml: %w", err)
	}
	var c containerXML
	if err := xml.Unmarshal(containerData, &c); err != nil {
		return nil, fmt.Errorf("epubimport: parse container.xml: %w", err)
	}
	if len(c.RootFiles.RootFile) == 0 {
		return nil, fmt.Errorf("epubimport: container.xml declares no rootfile")
	}
	opfPath := c.RootFiles.RootFile[0].FullPath
	opfDir := path.Dir(opfPath)

	opfData, err := readZipFile(zr, opfPath)
	if err != nil {
		return nil, fmt.Errorf("epubimport: read %s: %w", opfPath, err)
	}
	var pkg opfPackage
	if err := xml.Unmarshal(opfData, &pkg); err != nil {
		return nil, fmt.Errorf("epubimport: parse %s: %w", opfPath, err)
	}

	hrefByID := make(map[string]string, len(pkg.Manifest.Items))
	navHref := ""
	for _, item := range pkg.Manifest.Items {
		hrefByID[item.ID] = item.Href
		if strings.Contains(item.Properties, "nav") {
			navHref = item.Href
		}
	}

	var entries []tocEntry
	if navHref != "" {
		navData, err := readZipFile(zr, path.Join(opfDir, navHref))
		if err == nil {
			entries, _ = parseNav(navData)
		}
	}
	if len(entries) == 0 {
		if ncxHref, ok := findNCXHref(pkg.Manifest.Items); ok {
			ncxData, err := readZipFile(zr, path.Join(opfDir, ncxHref))
			if err == nil {
				entries, _ = parseNCX(ncxData)
			}
		}
	}

	title := strings.Join(append(append([]string{}, pkg.Metadata.Creator...), pkg.Metadata.Title...), " - ")
	b := book.New(title)

	for _, ref := range pkg.Spine.ItemRefs {
		href, ok := hrefByID[ref.IDRef]
		if !ok {
			continue
		}
		docPath := path.Join(opfDir, href)
		docData, err := readZipFile(zr, docPath)
		if err != nil {
			continue
		}

		tocForDoc := tocEntriesForDoc(entries, href)
		chapters, err := parseChapterDoc(docData, tocForDoc)
		if err != nil {
			continue
		}
		for _, ch := range chapters {
			if len(ch.Paragraphs) == 0 {
				continue
			}
			idx := b.AddChapter(ch.Title, "body")
			for _, p := range ch.Paragraphs {
				b.AddParagraph(idx, p, "")
			}
		}
	}

	return b, nil
}

func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name == name || strings.TrimPrefix(f.Name, "/") == strings.TrimPrefix(name, "/") {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("not found in archive: %s", name)
}

// tocEntry is one navigation entry: the document-relative href (without a
// "#anchor" fragment), the anchor within that document (may be empty),
// and its display title.
type tocEntry struct {
	Href   string
	Anchor string
	Title  string
}

func tocEntriesForDoc(entries []tocEntry, docHref string) []tocEntry {
	var out []tocEntry
	for _, e := range entries {
		if e.Href == docHref {
			out = append(out, e)
		}
	}
	return out
}

func findNCXHref(items []manifestItem) (string, bool) {
	for _, item := range items {
		if strings.HasSuffix(strings.ToLower(item.Href), ".ncx") {
			return item.Href, true
		}
	}
	return "", false
}
