package docmerge

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetHTML(t *testing.T) {
	slot := `<w:p w:rsidR="00C1"><w:pPr><w:pStyle w:val="Notes"/></w:pPr><w:r><w:t>${notes}</w:t></w:r></w:p>`
	tmpl := openTemplate(t, packageFiles(para("before")+slot+para("after")))

	require.NoError(t, tmpl.SetHTML("notes", "<p>Hello <b>World</b></p><p>Second</p>", Unlimited))

	want := para("before") +
		`<w:p w:rsidR="00C1"><w:pPr><w:pStyle w:val="Notes"/></w:pPr>` +
		`<w:r><w:t xml:space="preserve">Hello </w:t></w:r><w:r><w:rPr><w:b/></w:rPr><w:t>World</w:t></w:r></w:p>` +
		`<w:p w:rsidR="00C1"><w:pPr><w:pStyle w:val="Notes"/></w:pPr><w:r><w:t>Second</w:t></w:r></w:p>` +
		para("after")
	assert.Equal(t, documentXML(want), mainPart(t, tmpl))
}

func TestSetHTMLKeepsOwnParagraphStyle(t *testing.T) {
	slot := `<w:p><w:pPr><w:jc w:val="right"/></w:pPr><w:r><w:t>${body}</w:t></w:r></w:p>`
	tmpl := openTemplate(t, packageFiles(slot))

	require.NoError(t, tmpl.SetHTML("body", "<h2>Title</h2>", Unlimited))

	content := mainPart(t, tmpl)
	assert.Contains(t, content, `<w:pStyle w:val="Heading2"/>`)
	assert.NotContains(t, content, `<w:jc w:val="right"/>`)
	assert.NotContains(t, content, "${body}")
}

func TestSetHTMLSectionBreakStaysLast(t *testing.T) {
	sect := `<w:sectPr><w:pgSz w:w="12240" w:h="15840"/></w:sectPr>`
	slot := `<w:p><w:pPr><w:pStyle w:val="Body"/>` + sect + `</w:pPr><w:r><w:t>${x}</w:t></w:r></w:p>`
	tmpl := openTemplate(t, packageFiles(slot))

	require.NoError(t, tmpl.SetHTML("x", "<p>one</p><p>two</p><p>three</p>", Unlimited))

	content := mainPart(t, tmpl)
	assert.Equal(t, 1, strings.Count(content, sect))
	assert.Equal(t, 3, strings.Count(content, `<w:pStyle w:val="Body"/>`))
	assert.Less(t, strings.Index(content, "two"), strings.Index(content, sect))
}

func TestSetHTMLLimit(t *testing.T) {
	files := packageFiles(para("${n}") + para("${n}"))
	files["word/header1.xml"] = headerXML(para("${n}"))
	tmpl := openTemplate(t, files)

	require.NoError(t, tmpl.SetHTML("n", "<i>x</i>", 2))

	assert.NotContains(t, mainPart(t, tmpl), "${n}")
	header, _ := tmpl.Part("word/header1.xml")
	assert.Contains(t, header, "${n}", "the limit is shared across parts")
}

func TestSetHTMLEmptyFragmentKeepsParagraph(t *testing.T) {
	body := table(row(cell("", "${cellnote}")))
	tmpl := openTemplate(t, packageFiles(body))

	require.NoError(t, tmpl.SetHTML("cellnote", "", Unlimited))
	assert.Equal(t, documentXML(table(row(`<w:tc><w:p></w:p></w:tc>`))), mainPart(t, tmpl))
}

func TestSetHTMLParameters(t *testing.T) {
	tmpl := openTemplate(t, packageFiles(para("${n}")))

	err := tmpl.SetHTML("", "<p>x</p>", Unlimited)
	require.Error(t, err)
	var te *TransformError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, StageParameters, te.Stage)

	assert.True(t, IsTransformError(tmpl.SetHTML("n", "<p>x</p>", -2)))
}

func TestSetMarkdown(t *testing.T) {
	tmpl := openTemplate(t, packageFiles(para("${md}")))

	require.NoError(t, tmpl.SetMarkdown("md", "**bold** and *soft*\n\n- one\n- two", Unlimited))

	content := mainPart(t, tmpl)
	assert.Contains(t, content, `<w:r><w:rPr><w:b/></w:rPr><w:t>bold</w:t></w:r>`)
	assert.Contains(t, content, `<w:r><w:rPr><w:i/></w:rPr><w:t>soft</w:t></w:r>`)
	assert.Equal(t, 2, strings.Count(content, `<w:pStyle w:val="ListParagraph"/>`))
	assert.NotContains(t, content, "${md}")
}

func TestNormalizeHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"crlf", "<p>a</p>\r\n<p>b</p>", "<p>a</p>\n<p>b</p>"},
		{"escaped markup", "&lt;b&gt;x&lt;/b&gt;", "<b>x</b>"},
		{"escaped text inside markup stays", "<p>&lt;tag&gt;</p>", "<p>&lt;tag&gt;</p>"},
		{"word paste paragraphs", "<p>a<o:p></o:p></p>", "<p>a</p>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeHTML(tt.input))
		})
	}
}

func TestAdoptSlotDropsMalformedParagraphs(t *testing.T) {
	got := adoptSlot(`<w:p w:x="1"><w:r><w:t>${a}</w:t></w:r></w:p>`, []string{
		`<w:p><w:r><w:t>ok</w:t></w:r></w:p>`,
		`<w:p><w:r><w:t>broken</w:r></w:p>`,
	})
	assert.Equal(t, `<w:p w:x="1"><w:r><w:t>ok</w:t></w:r></w:p>`, got)
}
