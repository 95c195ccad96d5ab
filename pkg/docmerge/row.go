package docmerge

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	vMergeRestartPattern  = regexp.MustCompile(`<w:vMerge\s+w:val="restart"\s*(?:/>|>)`)
	vMergeContinuePattern = regexp.MustCompile(`<w:vMerge(?:\s+w:val="continue")?\s*(?:/>|></w:vMerge>)`)
)

// rowRegion resolves the innermost table row holding [from, to). A row
// starting a vertical merge is extended over the sibling rows that continue
// it. The content must be well-formed XML.
func rowRegion(content string, from, to int) (span, bool, error) {
	rows, err := elementSpans(content, "tr")
	if err != nil {
		return span{}, false, err
	}
	region, ok := innermost(rows, from, to)
	if !ok {
		return span{}, false, nil
	}
	if !vMergeRestartPattern.MatchString(content[region.start:region.end]) {
		return region, true, nil
	}

	for _, next := range rows {
		if next.start < region.end {
			continue
		}
		if strings.TrimSpace(content[region.end:next.start]) != "" ||
			!vMergeContinuePattern.MatchString(content[next.start:next.end]) {
			break
		}
		region.end = next.end
	}
	return region, true, nil
}

// CloneRow replaces the table row holding ${search} in the main part with
// clones copies. Placeholders in copy i become ${name#i}. A row that opens a
// vertical merge is cloned together with the rows continuing the merge.
// Zero clones removes the row.
func (t *Template) CloneRow(search string, clones int) error {
	if err := t.check(); err != nil {
		return err
	}
	if clones < 0 {
		return fmt.Errorf("clone count must not be negative, got %d", clones)
	}

	main := t.parts.main
	token := macro(search)
	at := strings.Index(main.Content, token)
	if at < 0 {
		return &TokenNotFoundError{Token: token, Part: main.Name}
	}
	region, ok, err := rowRegion(main.Content, at, at+len(token))
	if err != nil {
		return NewXMLError(main.Name, err)
	}
	if !ok {
		return WithContext(ErrNoRow, "clone row", map[string]interface{}{"token": token})
	}

	row := main.Content[region.start:region.end]
	var b strings.Builder
	b.Grow(len(main.Content) + (clones-1)*len(row))
	b.WriteString(main.Content[:region.start])
	for i := 1; i <= clones; i++ {
		b.WriteString(suffixMacros(row, i))
	}
	b.WriteString(main.Content[region.end:])
	main.Content = b.String()

	t.logger.Debug("row cloned",
		F("token", token),
		F("clones", clones),
		F("rows", strings.Count(row, "</w:tr>")))
	return nil
}

// CloneRowAndSetValues clones the row holding ${search} once per entry and
// fills copy i with the values of rows[i-1].
func (t *Template) CloneRowAndSetValues(search string, rows []map[string]string) error {
	if err := t.CloneRow(search, len(rows)); err != nil {
		return err
	}
	return t.fillClones(rows)
}

func (t *Template) fillClones(values []map[string]string) error {
	for i, row := range values {
		suffix := "#" + strconv.Itoa(i+1)
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		search := make([]string, len(keys))
		replace := make([]string, len(keys))
		for j, k := range keys {
			search[j] = bareName(k) + suffix
			replace[j] = row[k]
		}
		if err := t.SetValues(search, replace, Unlimited); err != nil {
			return err
		}
	}
	return nil
}
