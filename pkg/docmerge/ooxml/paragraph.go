package ooxml

import (
	"strconv"
	"strings"
)

// ParagraphProperties holds the formatting of a paragraph.
type ParagraphProperties struct {
	Style     string // paragraph style id, e.g. "Heading1"
	Alignment string // "left", "center", "right", "both"
	// Numbering is applied when NumID > 0.
	NumID    int
	NumLevel int
	// Raw, when set, is a complete <w:pPr> element written verbatim instead of
	// the fields above.
	Raw string
}

// IsEmpty reports whether no paragraph formatting is set.
func (p *ParagraphProperties) IsEmpty() bool {
	return p == nil || *p == ParagraphProperties{}
}

func (p *ParagraphProperties) writeProps(b *strings.Builder) {
	if p.IsEmpty() {
		return
	}
	if p.Raw != "" {
		b.WriteString(p.Raw)
		return
	}
	b.WriteString("<w:pPr>")
	if p.Style != "" {
		b.WriteString(`<w:pStyle w:val="` + escapeAttr(p.Style) + `"/>`)
	}
	if p.NumID > 0 {
		b.WriteString(`<w:numPr><w:ilvl w:val="` + strconv.Itoa(p.NumLevel) + `"/>`)
		b.WriteString(`<w:numId w:val="` + strconv.Itoa(p.NumID) + `"/></w:numPr>`)
	}
	if p.Alignment != "" {
		b.WriteString(`<w:jc w:val="` + escapeAttr(p.Alignment) + `"/>`)
	}
	b.WriteString("</w:pPr>")
}

// Paragraph is a block of runs.
type Paragraph struct {
	Properties *ParagraphProperties
	Runs       []Run
}

// NewParagraph creates a paragraph from runs.
func NewParagraph(runs ...Run) *Paragraph {
	return &Paragraph{Runs: runs}
}

// HasContent reports whether any run carries content.
func (p *Paragraph) HasContent() bool {
	for _, r := range p.Runs {
		if !r.Empty() {
			return true
		}
	}
	return false
}

// Text returns the concatenated text of the paragraph.
func (p *Paragraph) Text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		for _, c := range r.Content {
			switch v := c.(type) {
			case Text:
				b.WriteString(v.Value)
			case Break:
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

func (p *Paragraph) writeTo(b *strings.Builder) {
	b.WriteString("<w:p>")
	p.Properties.writeProps(b)
	for _, r := range p.Runs {
		if r.Empty() {
			continue
		}
		r.writeRun(b)
	}
	b.WriteString("</w:p>")
}

// String renders the paragraph.
func (p *Paragraph) String() string {
	var b strings.Builder
	p.writeTo(&b)
	return b.String()
}
