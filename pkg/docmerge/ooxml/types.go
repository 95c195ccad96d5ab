package ooxml

import (
	"encoding/xml"
	"strings"
)

// Namespace URIs used by rendered markup.
const (
	NamespaceW   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	NamespaceR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	NamespaceWP  = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	NamespaceA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	NamespacePic = "http://schemas.openxmlformats.org/drawingml/2006/picture"
)

// EMUsPerInch is the number of English Metric Units in one inch.
const EMUsPerInch = 914400

// Block is an element that can appear directly inside a document body.
type Block interface {
	writeTo(b *strings.Builder)
}

// Render renders blocks back to back.
func Render(blocks ...Block) string {
	var b strings.Builder
	for _, blk := range blocks {
		blk.writeTo(&b)
	}
	return b.String()
}

// escapeText escapes character data for use inside <w:t>.
func escapeText(s string) string {
	var b strings.Builder
	// Builder writes never fail.
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// escapeAttr escapes an attribute value.
func escapeAttr(s string) string {
	r := strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `>`, "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
