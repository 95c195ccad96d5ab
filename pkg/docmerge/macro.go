package docmerge

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// A "$" followed by "{" directly or after markup, then a lazy name up
	// to the first "}". Authoring tools split placeholders across runs, so
	// the name may contain tags.
	fragmentedMacroPattern = regexp.MustCompile(`\$(?:\{|[^{$]*?>\{)[^}$]*?\}`)
	markupPattern          = regexp.MustCompile(`<[^>]*>`)

	macroPattern = regexp.MustCompile(`\$\{([^{}]+)\}`)
)

// repairMacros strips the markup that fragments placeholders so each becomes
// a contiguous ${name}. Clean input is returned unchanged. A placeholder never
// spans paragraphs, so a match crossing </w:p> is left alone.
func repairMacros(content string) string {
	return fragmentedMacroPattern.ReplaceAllStringFunc(content, func(m string) string {
		if !strings.Contains(m, "<") || strings.Contains(m, "</w:p>") {
			return m
		}
		return markupPattern.ReplaceAllString(m, "")
	})
}

// macro wraps a bare name as ${name}; already wrapped input is returned as is.
func macro(name string) string {
	if strings.HasPrefix(name, "${") && strings.HasSuffix(name, "}") {
		return name
	}
	return "${" + name + "}"
}

// bareName strips the ${ } wrapper from a placeholder.
func bareName(name string) string {
	if strings.HasPrefix(name, "${") && strings.HasSuffix(name, "}") {
		return name[2 : len(name)-1]
	}
	return name
}

// closingMacro returns the ${/name} delimiter for a block name.
func closingMacro(name string) string {
	return "${/" + bareName(name) + "}"
}

// suffixMacros appends #index to every placeholder in xml:
// ${name} -> ${name#index}.
func suffixMacros(xml string, index int) string {
	suffix := "#" + strconv.Itoa(index)
	return macroPattern.ReplaceAllStringFunc(xml, func(m string) string {
		return m[:len(m)-1] + suffix + "}"
	})
}

// variables collects placeholder names in first-seen order.
func variables(parts []*Part) []string {
	seen := make(map[string]bool)
	var names []string
	for _, p := range parts {
		for _, m := range macroPattern.FindAllStringSubmatch(p.Content, -1) {
			if !seen[m[1]] {
				seen[m[1]] = true
				names = append(names, m[1])
			}
		}
	}
	return names
}
