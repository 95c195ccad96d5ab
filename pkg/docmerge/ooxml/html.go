package ooxml

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Tab is a tab character inside a run.
type Tab struct{}

func (Tab) writeRunContent(b *strings.Builder) {
	b.WriteString("<w:tab/>")
}

type listState struct {
	ordered bool
	index   int
}

// htmlConverter turns an HTML node tree into paragraphs.
type htmlConverter struct {
	blocks []Block
	cur    *Paragraph
	lists  []listState
}

// FromHTML converts an HTML fragment into paragraphs. Supported markup covers
// block containers (p, div, h1-h6, li, pre, blockquote, table rows), inline
// formatting (b, strong, i, em, u, ins, s, strike, del, sup, sub, code, a,
// span and font with color/weight/style/decoration), line breaks and lists.
// Unknown elements contribute their text.
func FromHTML(fragment string) ([]Block, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), context)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	c := &htmlConverter{}
	for _, n := range nodes {
		c.walk(n, RunProperties{}, false)
	}
	c.flush()
	return c.blocks, nil
}

// HTMLToDocument builds a one-section document from an HTML fragment.
func HTMLToDocument(fragment string) (*Document, error) {
	blocks, err := FromHTML(fragment)
	if err != nil {
		return nil, err
	}
	doc := &Document{}
	doc.AddSection().Blocks = blocks
	return doc, nil
}

func (c *htmlConverter) paragraph() *Paragraph {
	if c.cur == nil {
		c.cur = &Paragraph{}
	}
	return c.cur
}

func (c *htmlConverter) flush() {
	if c.cur != nil && c.cur.HasContent() {
		c.blocks = append(c.blocks, c.cur)
	}
	c.cur = nil
}

// block starts a paragraph for a block-level element; explicit blocks are kept
// even when empty.
func (c *htmlConverter) block(props *ParagraphProperties, fn func()) {
	c.flush()
	p := &Paragraph{Properties: props}
	c.cur = p
	fn()
	if c.cur == p {
		c.blocks = append(c.blocks, p)
		c.cur = nil
		return
	}
	c.flush()
}

func (c *htmlConverter) addRun(r Run) {
	p := c.paragraph()
	p.Runs = append(p.Runs, r)
}

func (c *htmlConverter) walk(n *html.Node, rp RunProperties, pre bool) {
	switch n.Type {
	case html.TextNode:
		c.text(n.Data, rp, pre)
		return
	case html.DocumentNode:
		c.children(n, rp, pre)
		return
	case html.ElementNode:
	default:
		return
	}

	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Head, atom.Title:
		return
	case atom.Br:
		c.addRun(Run{Properties: runProps(rp), Content: []RunContent{Break{}}})
	case atom.P, atom.Div, atom.Blockquote, atom.Tr, atom.Dt, atom.Dd:
		c.block(alignment(n), func() { c.children(n, rp, pre) })
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		props := alignment(n)
		if props == nil {
			props = &ParagraphProperties{}
		}
		props.Style = "Heading" + n.Data[1:]
		c.block(props, func() { c.children(n, rp, pre) })
	case atom.Pre:
		rp.Font = "Courier New"
		c.block(nil, func() { c.children(n, rp, true) })
	case atom.Ul, atom.Ol:
		c.flush()
		c.lists = append(c.lists, listState{ordered: n.DataAtom == atom.Ol})
		c.children(n, rp, pre)
		c.lists = c.lists[:len(c.lists)-1]
	case atom.Li:
		prefix := "• "
		if len(c.lists) > 0 {
			top := &c.lists[len(c.lists)-1]
			top.index++
			if top.ordered {
				prefix = strconv.Itoa(top.index) + ". "
			}
		}
		c.block(&ParagraphProperties{Style: "ListParagraph"}, func() {
			c.addRun(NewTextRun(prefix, runProps(rp)))
			c.children(n, rp, pre)
		})
	case atom.Td, atom.Th:
		if n.PrevSibling != nil {
			c.addRun(Run{Content: []RunContent{Tab{}}})
		}
		if n.DataAtom == atom.Th {
			rp.Bold = true
		}
		c.children(n, rp, pre)
	case atom.B, atom.Strong:
		rp.Bold = true
		c.children(n, rp, pre)
	case atom.I, atom.Em, atom.Cite, atom.Var:
		rp.Italic = true
		c.children(n, rp, pre)
	case atom.U, atom.Ins:
		rp.Underline = "single"
		c.children(n, rp, pre)
	case atom.S, atom.Strike, atom.Del:
		rp.Strike = true
		c.children(n, rp, pre)
	case atom.Sup:
		rp.VerticalAlign = "superscript"
		c.children(n, rp, pre)
	case atom.Sub:
		rp.VerticalAlign = "subscript"
		c.children(n, rp, pre)
	case atom.Code, atom.Kbd, atom.Tt, atom.Samp:
		rp.Font = "Courier New"
		c.children(n, rp, pre)
	case atom.A:
		rp.Underline = "single"
		rp.Color = "0563C1"
		c.children(n, rp, pre)
	case atom.Img:
		if alt := attr(n, "alt"); alt != "" {
			c.text(alt, rp, pre)
		}
	case atom.Span, atom.Font:
		applyStyle(&rp, attr(n, "style"))
		if color := attr(n, "color"); color != "" {
			rp.Color = normalizeColor(color)
		}
		c.children(n, rp, pre)
	default:
		c.children(n, rp, pre)
	}
}

func (c *htmlConverter) children(n *html.Node, rp RunProperties, pre bool) {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.walk(child, rp, pre)
	}
}

func (c *htmlConverter) text(s string, rp RunProperties, pre bool) {
	if !pre {
		s = collapseSpace(s)
		if c.cur == nil || !c.cur.HasContent() {
			s = strings.TrimLeft(s, " ")
		}
		if s == "" {
			return
		}
		c.addRun(NewTextRun(s, runProps(rp)))
		return
	}

	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	run := Run{Properties: runProps(rp)}
	for i, line := range lines {
		if i > 0 {
			run.Content = append(run.Content, Break{})
		}
		if line != "" {
			run.Content = append(run.Content, Text{Value: line})
		}
	}
	if !run.Empty() {
		c.addRun(run)
	}
}

func runProps(rp RunProperties) *RunProperties {
	if rp.IsEmpty() {
		return nil
	}
	return rp.Clone()
}

func collapseSpace(s string) string {
	var b strings.Builder
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			if !space {
				b.WriteByte(' ')
			}
			space = true
		default:
			b.WriteRune(r)
			space = false
		}
	}
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func alignment(n *html.Node) *ParagraphProperties {
	align := attr(n, "align")
	for _, decl := range strings.Split(attr(n, "style"), ";") {
		k, v, ok := strings.Cut(decl, ":")
		if ok && strings.TrimSpace(strings.ToLower(k)) == "text-align" {
			align = strings.TrimSpace(strings.ToLower(v))
		}
	}
	switch align {
	case "left", "center", "right":
		return &ParagraphProperties{Alignment: align}
	case "justify":
		return &ParagraphProperties{Alignment: "both"}
	}
	return nil
}

// applyStyle maps a small subset of inline CSS onto run properties.
func applyStyle(rp *RunProperties, style string) {
	for _, decl := range strings.Split(style, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		k = strings.TrimSpace(strings.ToLower(k))
		v = strings.TrimSpace(strings.ToLower(v))
		switch k {
		case "font-weight":
			rp.Bold = v == "bold" || v == "bolder" || v == "600" || v == "700" || v == "800" || v == "900"
		case "font-style":
			rp.Italic = v == "italic" || v == "oblique"
		case "text-decoration", "text-decoration-line":
			if strings.Contains(v, "underline") {
				rp.Underline = "single"
			}
			if strings.Contains(v, "line-through") {
				rp.Strike = true
			}
		case "color":
			rp.Color = normalizeColor(v)
		case "font-size":
			if pt, err := strconv.ParseFloat(strings.TrimSuffix(v, "pt"), 64); err == nil && strings.HasSuffix(v, "pt") {
				rp.Size = int(pt * 2)
			}
		}
	}
}

var namedColors = map[string]string{
	"black": "000000", "white": "FFFFFF", "red": "FF0000", "green": "008000",
	"blue": "0000FF", "yellow": "FFFF00", "gray": "808080", "grey": "808080",
	"orange": "FFA500", "purple": "800080",
}

func normalizeColor(v string) string {
	v = strings.TrimSpace(strings.ToLower(v))
	if c, ok := namedColors[v]; ok {
		return c
	}
	v = strings.TrimPrefix(v, "#")
	if len(v) == 3 {
		v = string([]byte{v[0], v[0], v[1], v[1], v[2], v[2]})
	}
	if len(v) != 6 {
		return ""
	}
	if _, err := strconv.ParseUint(v, 16, 32); err != nil {
		return ""
	}
	return strings.ToUpper(v)
}
