package epubimport

import (
	"bytes"
	"encoding/xml"
	"strings"

	"golang.org/x/net/html"
)

// parseNav extracts a flat, document-order list of toc entries from an
// EPUB 3 navigation document's first <nav> element whose epub:type is "toc"
// or that carries no type at all. Nested
// <ol> structure is flattened; chapter titles are looked up by document
// href, not by outline depth, so flattening loses nothing this importer
// needs.
func parseNav(data []byte) ([]tocEntry, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	nav := findTOCNav(doc)
	if nav == nil {
		return nil, nil
	}

	var entries []tocEntry
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			href := attr(n, "href")
			if href != "" {
				docHref, anchor := splitFragment(href)
				entries = append(entries, tocEntry{
					Href:   docHref,
					Anchor: anchor,
					Title:  textContent(n),
				})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(nav)
	return entries, nil
}

func findTOCNav(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "nav" {
		epubType := attr(n, "epub:type")
		if epubType == "" {
			epubType = attr(n, "type")
		}
		if epubType == "toc" || epubType == "" {
			return n
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findTOCNav(c); found != nil {
			return found
		}
	}
	return nil
}

type ncxDoc struct {
	NavMap struct {
		NavPoints []ncxNavPoint `xml:"navPoint"`
	} `xml:"navMap"`
}

type ncxNavPoint struct {
	NavLabel struct {
		Text string `xml:"text"`
	} `xml:"navLabel"`
	Content struct {
		Src string `xml:"src,attr"`
	} `xml:"content"`
	NavPoints []ncxNavPoint `xml:"navPoint"`
}

// parseNCX extracts a flat, document-order list of toc entries from an
// EPUB 2 NCX document, for archives with no EPUB 3 navigation document.
func parseNCX(data []byte) ([]tocEntry, error) {
	var doc ncxDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	var entries []tocEntry
	var walk func([]ncxNavPoint)
	walk = func(points []ncxNavPoint) {
		for _, p := range points {
			docHref, anchor := splitFragment(p.Content.Src)
			entries = append(entries, tocEntry{
				Href:   docHref,
				Anchor: anchor,
				Title:  p.NavLabel.Text,
			})
			walk(p.NavPoints)
		}
	}
	walk(doc.NavMap.NavPoints)
	return entries, nil
}

func splitFragment(href string) (docHref, anchor string) {
	if i := strings.Index(href, "#"); i >= 0 {
		return href[:i], href[i+1:]
	}
	return href, ""
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name || a.Key == strings.TrimPrefix(name, "epub:") {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}
