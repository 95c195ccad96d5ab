package docmerge

import (
	"sort"
	"strings"
)

// SetValue replaces every occurrence of ${search} in every part.
func (t *Template) SetValue(search, replace string) error {
	return t.SetValues([]string{search}, []string{replace}, Unlimited)
}

// SetValueLimit replaces at most limit occurrences of ${search} per part.
func (t *Template) SetValueLimit(search, replace string, limit int) error {
	return t.SetValues([]string{search}, []string{replace}, limit)
}

// SetValueMap replaces each key with its value, keys in sorted order.
func (t *Template) SetValueMap(values map[string]string) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	replace := make([]string, len(keys))
	for i, k := range keys {
		replace[i] = values[k]
	}
	return t.SetValues(keys, replace, Unlimited)
}

// SetValues pairs search and replace positionally. Names are wrapped as
// ${name} unless already wrapped. A replacement that is a table (<w:tbl...)
// replaces the whole paragraph holding the placeholder.
func (t *Template) SetValues(search, replace []string, limit int) error {
	if err := t.check(); err != nil {
		return err
	}
	if len(search) != len(replace) {
		return ErrBatchLength
	}

	for i := range search {
		token := macro(search[i])
		value := replace[i]

		if isTableFragment(value) {
			for _, part := range t.parts.all() {
				n := t.replaceParagraphs(part, "setValue", token, limit, func(string) (string, bool) {
					return value, true
				})
				if n > 0 {
					t.logger.Debug("placeholder replaced by table", F("part", part.Name), F("token", token), F("count", n))
				}
			}
			continue
		}

		value = escapeValue(value, t.config.EscapeOutput)
		for _, part := range t.parts.all() {
			part.Content = replaceLimit(part.Content, token, value, limit)
		}
	}
	return nil
}

// replaceLimit replaces the first limit occurrences of old, or all of them
// when limit is Unlimited.
func replaceLimit(s, old, new string, limit int) string {
	if limit < 0 {
		return strings.ReplaceAll(s, old, new)
	}
	return strings.Replace(s, old, new, limit)
}
