package ooxml

import (
	"strconv"
	"strings"
)

// RunProperties holds the formatting of a run.
type RunProperties struct {
	Bold          bool
	Italic        bool
	Underline     string // "single", "double", ... empty for none
	Strike        bool
	VerticalAlign string // "superscript" or "subscript"
	Color         string // hex RRGGBB without '#'
	Size          int    // half-points
	Font          string
	Style         string // character style id
}

// IsEmpty reports whether no formatting is set.
func (p *RunProperties) IsEmpty() bool {
	return p == nil || *p == RunProperties{}
}

// Clone returns a copy of p (nil stays nil).
func (p *RunProperties) Clone() *RunProperties {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func (p *RunProperties) writeProps(b *strings.Builder) {
	if p.IsEmpty() {
		return
	}
	b.WriteString("<w:rPr>")
	if p.Style != "" {
		b.WriteString(`<w:rStyle w:val="` + escapeAttr(p.Style) + `"/>`)
	}
	if p.Font != "" {
		f := escapeAttr(p.Font)
		b.WriteString(`<w:rFonts w:ascii="` + f + `" w:hAnsi="` + f + `" w:cs="` + f + `"/>`)
	}
	if p.Bold {
		b.WriteString("<w:b/>")
	}
	if p.Italic {
		b.WriteString("<w:i/>")
	}
	if p.Strike {
		b.WriteString("<w:strike/>")
	}
	if p.Color != "" {
		b.WriteString(`<w:color w:val="` + escapeAttr(p.Color) + `"/>`)
	}
	if p.Size > 0 {
		b.WriteString(`<w:sz w:val="` + strconv.Itoa(p.Size) + `"/>`)
	}
	if p.Underline != "" {
		b.WriteString(`<w:u w:val="` + escapeAttr(p.Underline) + `"/>`)
	}
	if p.VerticalAlign != "" {
		b.WriteString(`<w:vertAlign w:val="` + escapeAttr(p.VerticalAlign) + `"/>`)
	}
	b.WriteString("</w:rPr>")
}

// RunContent is an element inside a run.
type RunContent interface {
	writeRunContent(b *strings.Builder)
}

// Text is a text element; leading and trailing whitespace is preserved.
type Text struct {
	Value string
}

func (t Text) writeRunContent(b *strings.Builder) {
	if t.Value != strings.TrimSpace(t.Value) {
		b.WriteString(`<w:t xml:space="preserve">`)
	} else {
		b.WriteString("<w:t>")
	}
	b.WriteString(escapeText(t.Value))
	b.WriteString("</w:t>")
}

// Break is a line break (or a page break when Type is "page").
type Break struct {
	Type string
}

func (br Break) writeRunContent(b *strings.Builder) {
	if br.Type == "" {
		b.WriteString("<w:br/>")
		return
	}
	b.WriteString(`<w:br w:type="` + escapeAttr(br.Type) + `"/>`)
}

// Run is a contiguous sequence of content with one formatting.
type Run struct {
	Properties *RunProperties
	Content    []RunContent
}

// NewTextRun creates a run holding a single text element.
func NewTextRun(text string, props *RunProperties) Run {
	return Run{Properties: props, Content: []RunContent{Text{Value: text}}}
}

// Empty reports whether the run has no content.
func (r Run) Empty() bool {
	return len(r.Content) == 0
}

func (r Run) writeRun(b *strings.Builder) {
	b.WriteString("<w:r>")
	r.Properties.writeProps(b)
	for _, c := range r.Content {
		c.writeRunContent(b)
	}
	b.WriteString("</w:r>")
}

// String renders the run.
func (r Run) String() string {
	var b strings.Builder
	r.writeRun(&b)
	return b.String()
}
