package docmerge

import (
	"encoding/xml"
	"regexp"
	"strings"
)

var lineBreakPattern = regexp.MustCompile(`\r\n|\r|\n`)

// lineBreakXML closes the current text element, breaks the line and reopens
// text inside the same run.
const lineBreakXML = `</w:t><w:br/><w:t xml:space="preserve">`

// tableFragmentPrefix marks replacement content that is a complete table.
const tableFragmentPrefix = "<w:tbl"

// escapeValue prepares replacement text for insertion inside <w:t>. With
// escape set each line is XML-escaped; line breaks always become <w:br/>.
func escapeValue(value string, escape bool) string {
	lines := lineBreakPattern.Split(value, -1)
	if escape {
		for i, line := range lines {
			lines[i] = escapeXMLText(line)
		}
	}
	return strings.Join(lines, lineBreakXML)
}

func escapeXMLText(s string) string {
	var b strings.Builder
	// Builder writes never fail.
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

func isTableFragment(value string) bool {
	return strings.HasPrefix(strings.TrimSpace(value), tableFragmentPrefix)
}
