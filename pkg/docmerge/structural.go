package docmerge

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// span is a half-open byte range [start, end) of a part's content.
type span struct {
	start, end int
}

func (s span) contains(from, to int) bool {
	return s.start <= from && to <= s.end
}

// PartIssue records a part left unchanged because it could not be parsed.
type PartIssue struct {
	Part      string
	Operation string
	Err       error
}

func (i PartIssue) String() string {
	return fmt.Sprintf("%s: %s skipped: %v", i.Part, i.Operation, i.Err)
}

// paragraphSpans returns the byte span of every <w:p> element, outer
// paragraphs before the paragraphs nested inside them. The content must be
// well-formed XML.
func paragraphSpans(content string) ([]span, error) {
	return elementSpans(content, "p")
}

// elementSpans returns the byte span of every w:<local> element in document
// order of their start tags.
func elementSpans(content, local string) ([]span, error) {
	dec := xml.NewDecoder(strings.NewReader(content))

	type open struct {
		name  xml.Name
		start int
		match bool
	}
	var (
		stack []open
		spans []span
	)

	for {
		offset := int(dec.InputOffset())
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			match := t.Name.Space == "w" && t.Name.Local == local
			stack = append(stack, open{name: t.Name, start: offset, match: match})
			if match {
				spans = append(spans, span{start: offset})
			}
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("unexpected </%s> at offset %d", qualified(t.Name), offset)
			}
			top := stack[len(stack)-1]
			if top.name != t.Name {
				return nil, fmt.Errorf("element <%s> closed by </%s> at offset %d", qualified(top.name), qualified(t.Name), offset)
			}
			stack = stack[:len(stack)-1]
			if top.match {
				end := int(dec.InputOffset())
				for i := len(spans) - 1; i >= 0; i-- {
					if spans[i].start == top.start {
						spans[i].end = end
						break
					}
				}
			}
		}
	}

	if len(stack) > 0 {
		return nil, fmt.Errorf("unclosed element <%s>", qualified(stack[len(stack)-1].name))
	}
	return spans, nil
}

func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

// enclosingParagraphs resolves the innermost paragraph around each
// occurrence of search. A paragraph is returned once however many
// occurrences it holds; paragraphs nested inside an already selected one are
// dropped. At most limit spans are returned unless limit is Unlimited.
func enclosingParagraphs(content, search string, limit int) ([]span, error) {
	if search == "" || !strings.Contains(content, search) {
		return nil, nil
	}
	paragraphs, err := paragraphSpans(content)
	if err != nil {
		return nil, err
	}

	var found []span
	seen := make(map[span]bool)
	for from := 0; ; {
		idx := strings.Index(content[from:], search)
		if idx < 0 {
			break
		}
		at := from + idx
		from = at + len(search)

		best, ok := innermost(paragraphs, at, at+len(search))
		if ok && !seen[best] {
			seen[best] = true
			found = append(found, best)
		}
	}

	sort.Slice(found, func(i, j int) bool { return found[i].start < found[j].start })
	result := found[:0]
	lastEnd := -1
	for _, s := range found {
		if s.start < lastEnd {
			continue
		}
		result = append(result, s)
		lastEnd = s.end
	}

	if limit >= 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// innermost returns the smallest span containing [from, to).
func innermost(spans []span, from, to int) (span, bool) {
	best := span{start: -1}
	for _, s := range spans {
		if s.contains(from, to) && (best.start < 0 || s.end-s.start < best.end-best.start) {
			best = s
		}
	}
	return best, best.start >= 0
}

// splice rewrites each span of content with the output of replace. Spans
// must be sorted and disjoint.
func splice(content string, spans []span, replace func(s span) string) string {
	var b strings.Builder
	b.Grow(len(content))
	last := 0
	for _, s := range spans {
		b.WriteString(content[last:s.start])
		b.WriteString(replace(s))
		last = s.end
	}
	b.WriteString(content[last:])
	return b.String()
}

// replaceParagraphs substitutes every paragraph enclosing search in part.
// build receives the paragraph XML and returns its replacement; returning
// false keeps the paragraph as is. A part that cannot be parsed is left
// unchanged and reported through t.skip.
func (t *Template) replaceParagraphs(part *Part, op, search string, limit int, build func(paragraph string) (string, bool)) int {
	spans, err := enclosingParagraphs(part.Content, search, limit)
	if err != nil {
		t.skip(part, op, err)
		return 0
	}
	if len(spans) == 0 {
		return 0
	}

	count := 0
	part.Content = splice(part.Content, spans, func(s span) string {
		paragraph := part.Content[s.start:s.end]
		replacement, ok := build(paragraph)
		if !ok {
			return paragraph
		}
		count++
		return replacement
	})
	return count
}

func (t *Template) skip(part *Part, op string, err error) {
	issue := PartIssue{Part: part.Name, Operation: op, Err: NewXMLError(part.Name, err)}
	t.skipped = append(t.skipped, issue)
	t.logger.Warn("part left unchanged",
		F("part", part.Name),
		F("operation", op),
		F("error", err.Error()))
}

// wellFormed reports whether fragment parses as a sequence of XML elements.
// Prefixes need not be declared.
func wellFormed(fragment string) bool {
	dec := xml.NewDecoder(strings.NewReader("<root>" + fragment + "</root>"))
	var names []xml.Name
	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			return len(names) == 0
		}
		if err != nil {
			return false
		}
		switch tt := tok.(type) {
		case xml.StartElement:
			names = append(names, tt.Name)
		case xml.EndElement:
			if len(names) == 0 || names[len(names)-1] != tt.Name {
				return false
			}
			names = names[:len(names)-1]
		}
	}
}
