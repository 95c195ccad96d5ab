package docmerge

import (
	"bytes"
	"errors"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	mdhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"

	"github.com/benjaminschreck/go-docmerge/pkg/docmerge/ooxml"
)

var (
	officeParagraphPattern = regexp.MustCompile(`(?i)</?o:p\s*/?>`)
	slotOpenPattern        = regexp.MustCompile(`^<w:p\b[^>]*>`)
	slotPropsPattern       = regexp.MustCompile(`(?s)^<w:p\b[^>]*>\s*(<w:pPr\s*/>|<w:pPr\b[^>]*>.*?</w:pPr>)`)
	sectPrPattern          = regexp.MustCompile(`(?s)<w:sectPr\b.*?</w:sectPr>|<w:sectPr\b[^>]*/>`)
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(
		mdhtml.WithHardWraps(),
		mdhtml.WithXHTML(),
	),
)

// normalizeHTML rewrites input the converter would otherwise misread:
// CRLF line endings, markup that arrives entity-escaped, and the empty
// <o:p> elements left by pasting from Word.
func normalizeHTML(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if !strings.Contains(s, "<") && strings.Contains(s, "&lt;") {
		s = html.UnescapeString(s)
	}
	return officeParagraphPattern.ReplaceAllString(s, "")
}

// htmlParagraphs converts an HTML fragment into native paragraph XML, one
// string per paragraph.
func htmlParagraphs(fragment string) ([]string, error) {
	doc, err := ooxml.HTMLToDocument(normalizeHTML(fragment))
	if err != nil {
		return nil, NewTransformError(StageImport, err)
	}

	body := ooxml.ExtractBody(doc.String())
	spans, err := paragraphSpans(body)
	if err != nil {
		return nil, NewTransformError(StageTransform, err)
	}

	var paragraphs []string
	lastEnd := 0
	for _, s := range spans {
		// nested paragraphs travel with their parent
		if s.start < lastEnd {
			continue
		}
		paragraphs = append(paragraphs, body[s.start:s.end])
		lastEnd = s.end
	}
	return paragraphs, nil
}

// SetHTML replaces the paragraph holding ${search} with the paragraphs
// converted from an HTML fragment. The slot paragraph's attributes and
// properties carry over to each inserted paragraph unless it has its own.
// limit caps the number of paragraphs replaced across all parts.
func (t *Template) SetHTML(search, fragment string, limit int) error {
	if err := t.check(); err != nil {
		return err
	}
	if strings.TrimSpace(search) == "" || limit < Unlimited {
		return NewTransformError(StageParameters, errors.New("search must be set and limit must be -1 or more"))
	}

	paragraphs, err := htmlParagraphs(fragment)
	if err != nil {
		return err
	}

	token := macro(search)
	remaining := limit
	for _, part := range t.parts.all() {
		if remaining == 0 {
			break
		}
		n := t.replaceParagraphs(part, "setHtml", token, remaining, func(slot string) (string, bool) {
			return adoptSlot(slot, paragraphs), true
		})
		if remaining > 0 {
			remaining -= n
		}
		if n > 0 {
			t.logger.Debug("placeholder replaced by html",
				F("part", part.Name),
				F("token", token),
				F("paragraphs", len(paragraphs)),
				F("count", n))
		}
	}
	return nil
}

// SetMarkdown renders markdown to HTML and applies SetHTML.
func (t *Template) SetMarkdown(search, source string, limit int) error {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(source), &buf); err != nil {
		return NewTransformError(StageImport, err)
	}
	return t.SetHTML(search, buf.String(), limit)
}

// adoptSlot gives each paragraph the slot paragraph's attributes and, when
// it has no properties of its own, the slot's properties. A section break
// held by the slot stays on the last paragraph only. Paragraphs that are not
// well-formed are dropped.
func adoptSlot(slot string, paragraphs []string) string {
	open := slotOpenPattern.FindString(slot)
	if open == "" {
		open = "<w:p>"
	} else if strings.HasSuffix(open, "/>") {
		open = strings.TrimSuffix(open, "/>") + ">"
	}
	var props string
	if m := slotPropsPattern.FindStringSubmatch(slot); m != nil {
		props = m[1]
	}
	sectPr := sectPrPattern.FindString(props)
	shared := props
	if sectPr != "" {
		shared = strings.Replace(props, sectPr, "", 1)
	}

	var b strings.Builder
	for i, p := range paragraphs {
		if !wellFormed(p) {
			continue
		}
		rest := strings.TrimPrefix(p, "<w:p>")
		ownProps := strings.HasPrefix(rest, "<w:pPr")
		last := i == len(paragraphs)-1

		b.WriteString(open)
		switch {
		case !ownProps && last:
			b.WriteString(props)
		case !ownProps:
			b.WriteString(shared)
		case last && sectPr != "":
			rest = strings.Replace(rest, "</w:pPr>", sectPr+"</w:pPr>", 1)
		}
		b.WriteString(rest)
	}
	if b.Len() == 0 {
		// table cells need at least one paragraph
		return open + props + "</w:p>"
	}
	return b.String()
}
