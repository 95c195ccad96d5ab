package ooxml

import (
	"regexp"
	"strconv"
	"strings"
)

// Section is a run of blocks sharing page settings.
type Section struct {
	Blocks []Block
	// PageWidth and PageHeight are in twentieths of a point; zero means A4.
	PageWidth  int
	PageHeight int
}

// Document is a minimal word-processing document.
type Document struct {
	Sections []Section
}

// AddSection appends a section and returns a pointer to it.
func (d *Document) AddSection() *Section {
	d.Sections = append(d.Sections, Section{})
	return &d.Sections[len(d.Sections)-1]
}

// String renders the complete word/document.xml content.
func (d *Document) String() string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(`<w:document xmlns:w="` + NamespaceW + `" xmlns:r="` + NamespaceR + `"`)
	b.WriteString(` xmlns:wp="` + NamespaceWP + `" xmlns:a="` + NamespaceA + `" xmlns:pic="` + NamespacePic + `">`)
	b.WriteString("<w:body>")
	for i, s := range d.Sections {
		for _, blk := range s.Blocks {
			blk.writeTo(&b)
		}
		if i < len(d.Sections)-1 {
			// a non-final section closes with a paragraph carrying its sectPr
			b.WriteString("<w:p><w:pPr>")
			s.writeSectPr(&b)
			b.WriteString("</w:pPr></w:p>")
		}
	}
	if n := len(d.Sections); n > 0 {
		d.Sections[n-1].writeSectPr(&b)
	}
	b.WriteString("</w:body></w:document>")
	return b.String()
}

func (s Section) writeSectPr(b *strings.Builder) {
	w, h := s.PageWidth, s.PageHeight
	if w == 0 || h == 0 {
		w, h = 11906, 16838
	}
	b.WriteString(`<w:sectPr><w:pgSz w:w="`)
	b.WriteString(strconv.Itoa(w))
	b.WriteString(`" w:h="`)
	b.WriteString(strconv.Itoa(h))
	b.WriteString(`"/></w:sectPr>`)
}

var (
	bodyContentPattern = regexp.MustCompile(`(?s)<w:body>(.*)</w:body>`)
	sectPrPattern      = regexp.MustCompile(`(?s)<w:sectPr\b.*?</w:sectPr>|<w:sectPr\b[^>]*/>`)
)

// ExtractBody returns the block markup inside <w:body> of a rendered
// document, without the trailing section properties.
func ExtractBody(documentXML string) string {
	m := bodyContentPattern.FindStringSubmatch(documentXML)
	if m == nil {
		return ""
	}
	body := m[1]
	if loc := lastIndex(sectPrPattern, body); loc != nil && loc[1] == len(body) {
		body = body[:loc[0]]
	}
	return body
}

func lastIndex(re *regexp.Regexp, s string) []int {
	all := re.FindAllStringIndex(s, -1)
	if len(all) == 0 {
		return nil
	}
	return all[len(all)-1]
}
