package docmerge

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(cells ...string) string {
	return `<w:tr>` + strings.Join(cells, "") + `</w:tr>`
}

func TestRowRegion(t *testing.T) {
	nested := table(row(cell("", "${inner}")))
	tests := []struct {
		name    string
		content string
		token   string
		want    string
		found   bool
	}{
		{
			name:    "row with attributes",
			content: `<w:tbl><w:tr w:rsidR="00A1"><w:trPr/><w:tc>${a}</w:tc></w:tr>` + row(`<w:tc>${b}</w:tc>`) + `</w:tbl>`,
			token:   "${a}",
			want:    `<w:tr w:rsidR="00A1"><w:trPr/><w:tc>${a}</w:tc></w:tr>`,
			found:   true,
		},
		{
			name:    "plain row",
			content: `<w:tbl><w:tr w:rsidR="00A1"><w:tc>${a}</w:tc></w:tr>` + row(`<w:tc>${b}</w:tc>`) + `</w:tbl>`,
			token:   "${b}",
			want:    row(`<w:tc>${b}</w:tc>`),
			found:   true,
		},
		{
			name:    "outer row after a nested table",
			content: table(row(`<w:tc>` + nested + para("${outer}") + `</w:tc>`)),
			token:   "${outer}",
			want:    row(`<w:tc>` + nested + para("${outer}") + `</w:tc>`),
			found:   true,
		},
		{
			name:    "nested row",
			content: table(row(`<w:tc>` + nested + `</w:tc>`)),
			token:   "${inner}",
			want:    row(cell("", "${inner}")),
			found:   true,
		},
		{
			name:    "paragraph outside any row",
			content: `<w:body>` + para("${a}") + `</w:body>`,
			token:   "${a}",
		},
		{
			name:    "paragraph between tables",
			content: `<w:body>` + table(row(cell("", "a"))) + para("${x}") + table(row(cell("", "b"))) + `</w:body>`,
			token:   "${x}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at := strings.Index(tt.content, tt.token)
			region, found, err := rowRegion(tt.content, at, at+len(tt.token))
			require.NoError(t, err)
			assert.Equal(t, tt.found, found)
			if tt.found {
				assert.Equal(t, tt.want, tt.content[region.start:region.end])
			}
		})
	}

	_, _, err := rowRegion(`<w:tbl><w:tr>${a}</w:tbl>`, 13, 17)
	assert.Error(t, err)
}

func TestCloneRow(t *testing.T) {
	body := table(row(cell("", "${row}")))
	tmpl := openTemplate(t, packageFiles(para("${title}")+body))

	require.NoError(t, tmpl.CloneRow("row", 3))

	content := mainPart(t, tmpl)
	want := table(row(cell("", "${row#1}")) + row(cell("", "${row#2}")) + row(cell("", "${row#3}")))
	assert.Equal(t, documentXML(para("${title}")+want), content)
	assert.NotContains(t, content, "${row}")
	assert.Equal(t, 3, strings.Count(content, "<w:tr>"))
}

func TestCloneRowSuffixesEveryCell(t *testing.T) {
	body := table(
		row(cell("", "Name"), cell("", "Price")),
		row(cell("", "${item}"), cell("", "${price}")),
	)
	tmpl := openTemplate(t, packageFiles(body))

	require.NoError(t, tmpl.CloneRow("item", 2))

	assert.Equal(t,
		[]string{"item#1", "price#1", "item#2", "price#2"},
		tmpl.Variables())
}

func TestCloneRowVerticalMerge(t *testing.T) {
	tests := []struct {
		name   string
		marker string
	}{
		{"empty marker", `<w:vMerge/>`},
		{"explicit continue", `<w:vMerge w:val="continue"/>`},
		{"expanded empty marker", `<w:vMerge></w:vMerge>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := row(cell(`<w:vMerge w:val="restart"/>`, "${group}"), cell("", "${a}")) +
				"\n" + row(cell(tt.marker, ""), cell("", "${b}"))
			trailing := row(cell("", "total"), cell("", "${sum}"))
			tmpl := openTemplate(t, packageFiles(table(merged+trailing)))

			require.NoError(t, tmpl.CloneRow("group", 2))

			content := mainPart(t, tmpl)
			assert.Equal(t, 5, strings.Count(content, "<w:tr>"), "two spans of two rows plus the trailing row")
			assert.Equal(t, 2, strings.Count(content, `w:val="restart"`))
			assert.Equal(t, 2, strings.Count(content, tt.marker))
			assert.Less(t, strings.Index(content, "${b#1}"), strings.Index(content, "${group#2}"),
				"each span keeps its restart row first")
			assert.Contains(t, content, "${sum}", "rows after the span are not cloned")
		})
	}
}

func TestCloneRowMergeStopsAtUnmergedRow(t *testing.T) {
	body := table(
		row(cell(`<w:vMerge w:val="restart"/>`, "${r}")),
		row(cell("", "next")),
	)
	tmpl := openTemplate(t, packageFiles(body))

	require.NoError(t, tmpl.CloneRow("r", 2))
	assert.Equal(t, 3, strings.Count(mainPart(t, tmpl), "<w:tr>"))
}

func TestCloneRowZeroRemovesRow(t *testing.T) {
	body := table(row(cell("", "header")), row(cell("", "${row}")))
	tmpl := openTemplate(t, packageFiles(body))

	require.NoError(t, tmpl.CloneRow("row", 0))
	assert.Equal(t, documentXML(table(row(cell("", "header")))), mainPart(t, tmpl))
}

func TestCloneRowErrors(t *testing.T) {
	tmpl := openTemplate(t, packageFiles(para("${loose}")))

	err := tmpl.CloneRow("missing", 1)
	require.Error(t, err)
	assert.True(t, IsTokenNotFound(err))
	var notFound *TokenNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "${missing}", notFound.Token)

	assert.ErrorIs(t, tmpl.CloneRow("loose", 1), ErrNoRow)
	assert.Error(t, tmpl.CloneRow("loose", -1))
}

func TestCloneRowBetweenTables(t *testing.T) {
	body := table(row(cell("", "a"))) + para("${x}") + table(row(cell("", "b")))
	tmpl := openTemplate(t, packageFiles(body))

	assert.ErrorIs(t, tmpl.CloneRow("x", 2), ErrNoRow)

	content := mainPart(t, tmpl)
	assert.Equal(t, documentXML(body), content)
	assert.Equal(t, 2, strings.Count(content, "<w:tr>"))
	assert.Equal(t, 2, strings.Count(content, "<w:tbl>"))
}

func TestCloneRowMalformedMainPart(t *testing.T) {
	files := packageFiles(table(row(cell("", "${r}"))))
	files[mainPartName] = strings.Replace(files[mainPartName], "</w:tbl>", "", 1)
	tmpl := openTemplate(t, files)

	err := tmpl.CloneRow("r", 2)
	assert.True(t, IsXMLError(err))
}

func TestCloneRowAndSetValues(t *testing.T) {
	body := table(row(cell("", "${item}"), cell("", "${price}")))
	tmpl := openTemplate(t, packageFiles(body))

	require.NoError(t, tmpl.CloneRowAndSetValues("item", []map[string]string{
		{"item": "Widget", "price": "9.99"},
		{"item": "Gadget", "price": "19.99"},
	}))

	want := table(
		row(cell("", "Widget"), cell("", "9.99")),
		row(cell("", "Gadget"), cell("", "19.99")),
	)
	assert.Equal(t, documentXML(want), mainPart(t, tmpl))
	assert.Empty(t, tmpl.Variables())
}
