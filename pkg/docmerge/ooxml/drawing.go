package ooxml

import (
	"strconv"
	"strings"
)

// Drawing is an inline picture referencing an image relationship.
//
// Namespace declarations are emitted on the drawing elements themselves so the
// markup stays valid in parts whose root does not declare the DrawingML prefixes.
type Drawing struct {
	RelID       string // relationship id, e.g. "rId4"
	ID          int    // unique docPr id within the part
	Name        string
	Description string
	Width       int64 // EMU
	Height      int64 // EMU
}

// PixelsToEMU converts a pixel length at the given DPI to EMUs.
func PixelsToEMU(px, dpi int) int64 {
	if dpi <= 0 {
		dpi = 96
	}
	return int64(px) * EMUsPerInch / int64(dpi)
}

func (d Drawing) writeRunContent(b *strings.Builder) {
	cx := strconv.FormatInt(d.Width, 10)
	cy := strconv.FormatInt(d.Height, 10)
	id := strconv.Itoa(d.ID)
	name := escapeAttr(d.Name)

	b.WriteString("<w:drawing>")
	b.WriteString(`<wp:inline distT="0" distB="0" distL="0" distR="0" xmlns:wp="` + NamespaceWP + `">`)
	b.WriteString(`<wp:extent cx="` + cx + `" cy="` + cy + `"/>`)
	b.WriteString(`<wp:effectExtent l="0" t="0" r="0" b="0"/>`)
	b.WriteString(`<wp:docPr id="` + id + `" name="` + name + `"`)
	if d.Description != "" {
		b.WriteString(` descr="` + escapeAttr(d.Description) + `"`)
	}
	b.WriteString("/>")
	b.WriteString(`<wp:cNvGraphicFramePr><a:graphicFrameLocks xmlns:a="` + NamespaceA + `" noChangeAspect="1"/></wp:cNvGraphicFramePr>`)
	b.WriteString(`<a:graphic xmlns:a="` + NamespaceA + `">`)
	b.WriteString(`<a:graphicData uri="` + NamespacePic + `">`)
	b.WriteString(`<pic:pic xmlns:pic="` + NamespacePic + `">`)
	b.WriteString(`<pic:nvPicPr><pic:cNvPr id="` + id + `" name="` + name + `"/><pic:cNvPicPr/></pic:nvPicPr>`)
	b.WriteString(`<pic:blipFill><a:blip r:embed="` + escapeAttr(d.RelID) + `" xmlns:r="` + NamespaceR + `"/>`)
	b.WriteString(`<a:stretch><a:fillRect/></a:stretch></pic:blipFill>`)
	b.WriteString(`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="` + cx + `" cy="` + cy + `"/></a:xfrm>`)
	b.WriteString(`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>`)
	b.WriteString("</pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing>")
}

// Run wraps the drawing in a run.
func (d Drawing) Run() Run {
	return Run{Content: []RunContent{d}}
}

// String renders the drawing as a run.
func (d Drawing) String() string {
	return d.Run().String()
}
