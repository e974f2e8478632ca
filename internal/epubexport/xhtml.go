package epubexport

import "strings"

// generateChapterXHTML renders a chapter's title and paragraphs. Unlike the
// teacher's markdown-backed chapter text, book/translation paragraphs are
// plain text, so this writes one <p> per paragraph directly instead of
// running a markdown-to-XHTML pass; when a translation is attached, each
// original paragraph is immediately followed by a sibling <p class="translation">
// carrying its latest rendered translation.
func (e *Exporter) generateChapterXHTML(ch chapter) string {
	var sb strings.Builder

	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops">
<head>
  <title>`)
	sb.WriteString(escapeXML(ch.Title))
	sb.WriteString(`</title>
  <link rel="stylesheet" type="text/css" href="../styles/style.css"/>
</head>
<body>
`)

	class := ""
	if ch.MatterType == "front_matter" || ch.MatterType == "back_matter" {
		class = " class=\"" + ch.MatterType + "\""
	}
	sb.WriteString("  <div" + class + ">\n")
	sb.WriteString("    <h1 class=\"chapter-title\">")
	sb.WriteString(escapeXML(ch.Title))
	sb.WriteString("</h1>\n")

	for _, p := range ch.Paragraphs {
		sb.WriteString("    <p>")
		sb.WriteString(escapeXML(p.Original))
		sb.WriteString("</p>\n")
		if p.Translated != "" {
			sb.WriteString("    <p class=\"translation\">")
			sb.WriteString(escapeXML(p.Translated))
			sb.WriteString("</p>\n")
		}
	}

	sb.WriteString("  </div>\n</body>\n</html>\n")

	return sb.String()
}
