package epubimport

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// chapterResult is one parsed chapter: a title and its paragraph texts.
type chapterResult struct {
	Title      string
	Paragraphs []string
}

var inlineTags = map[string]bool{
	"a": true, "abbr": true, "b": true, "bdi": true, "bdo": true, "br": true,
	"cite": true, "code": true, "data": true, "dfn": true, "em": true,
	"i": true, "kbd": true, "mark": true, "q": true, "s": true, "samp": true,
	"small": true, "span": true, "strong": true, "sub": true, "sup": true,
	"time": true, "u": true, "var": true,
}

// parseChapterDoc parses chapterHTML and splits it into chapters at the
// anchors named by toc, mirroring epub_importer.rs's parse_chapter: with
// no toc entries for this document, the whole body becomes a single
// chapter titled from the document's <title>; with toc entries, each
// entry's anchor begins a new chapter running up to the next entry's
// anchor (or the end of the document for the last one).
func parseChapterDoc(chapterHTML []byte, toc []tocEntry) ([]chapterResult, error) {
	doc, err := html.Parse(bytes.NewReader(chapterHTML))
	if err != nil {
		return nil, err
	}

	body := findElement(doc, "body")
	if body == nil {
		return nil, nil
	}

	if len(toc) == 0 {
		return []chapterResult{{
			Title:      documentTitle(doc),
			Paragraphs: paragraphsBetween(body, "", ""),
		}}, nil
	}

	var chapters []chapterResult
	for i, entry := range toc {
		endAnchor := ""
		if i+1 < len(toc) {
			endAnchor = toc[i+1].Anchor
		}
		chapters = append(chapters, chapterResult{
			Title:      entry.Title,
			Paragraphs: paragraphsBetween(body, entry.Anchor, endAnchor),
		})
	}
	return chapters, nil
}

func documentTitle(doc *html.Node) string {
	if n := findElement(doc, "title"); n != nil {
		return textContent(n)
	}
	return ""
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode && attr(n, "id") == id {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

// paragraphsBetween walks body's element tree in document order, starting
// at the element with id==startAnchor (or the body itself if
// startAnchor is empty) and stopping just before the element with
// id==endAnchor (or the end of the tree if endAnchor is empty), collecting
// the text of every paragraph-like leaf element encountered: one with no
// element children, or whose children are all inline elements.
func paragraphsBetween(body *html.Node, startAnchor, endAnchor string) []string {
	start := body
	if startAnchor != "" {
		if found := findByID(body, startAnchor); found != nil {
			start = found
		}
	}

	var paragraphs []string
	started := false
	stopped := false

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if stopped || n.Type != html.ElementNode {
			return
		}
		if !started {
			if n == start {
				started = true
			}
		}
		if endAnchor != "" && attr(n, "id") == endAnchor && n != start {
			stopped = true
			return
		}

		if started {
			if isParagraphLike(n) {
				text := strings.TrimSpace(textContent(n))
				if text != "" {
					paragraphs = append(paragraphs, text)
				}
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
			if stopped {
				return
			}
		}
	}
	walk(body)
	return paragraphs
}

var headingTags = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// isParagraphLike reports whether n has no element children, or only
// inline element children, and carries non-whitespace text — the same
// paragraph-leaf test epub_importer.rs's text_between applies. Headings are
// excluded outright: they carry the chapter title already captured via the
// navigation document, not body text.
func isParagraphLike(n *html.Node) bool {
	if headingTags[n.Data] {
		return false
	}
	hasText := false
	allInline := true
	hasElementChild := false
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if strings.TrimSpace(c.Data) != "" {
				hasText = true
			}
		case html.ElementNode:
			hasElementChild = true
			if !inlineTags[c.Data] {
				allInline = false
			}
		}
	}
	if !hasText {
		hasText = strings.TrimSpace(textContent(n)) != ""
	}
	return hasText && (!hasElementChild || allInline)
}
