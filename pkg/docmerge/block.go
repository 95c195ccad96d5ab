package docmerge

import (
	"strings"
)

// blockRegion is a block found in the main part: body excludes the two
// delimiter paragraphs, outer includes them.
type blockRegion struct {
	outer span
	body  span
}

// findBlock locates the paragraphs holding ${name} and the following ${/name}
// in the main part.
func (t *Template) findBlock(op, name string) (blockRegion, bool) {
	main := t.parts.main
	content := main.Content
	open, closing := macro(bareName(name)), closingMacro(name)

	at := strings.Index(content, open)
	if at < 0 || !strings.Contains(content[at:], closing) {
		return blockRegion{}, false
	}
	paragraphs, err := paragraphSpans(content)
	if err != nil {
		t.skip(main, op, err)
		return blockRegion{}, false
	}

	openPara, ok := innermost(paragraphs, at, at+len(open))
	if !ok {
		return blockRegion{}, false
	}
	rel := strings.Index(content[openPara.end:], closing)
	if rel < 0 {
		return blockRegion{}, false
	}
	end := openPara.end + rel
	closePara, ok := innermost(paragraphs, end, end+len(closing))
	if !ok || closePara.start < openPara.end {
		return blockRegion{}, false
	}

	return blockRegion{
		outer: span{openPara.start, closePara.end},
		body:  span{openPara.end, closePara.start},
	}, true
}

// CloneBlock returns the XML between the paragraphs holding ${name} and
// ${/name}. With apply set, the block including both delimiter paragraphs is
// replaced by clones copies of that XML; placeholders in copy i become
// ${name#i}. The bool is false when either delimiter is missing.
func (t *Template) CloneBlock(name string, clones int, apply bool) (string, bool, error) {
	if err := t.check(); err != nil {
		return "", false, err
	}
	block, ok := t.findBlock("cloneBlock", name)
	if !ok {
		return "", false, nil
	}

	main := t.parts.main
	body := main.Content[block.body.start:block.body.end]
	if !apply {
		return body, true, nil
	}

	var b strings.Builder
	for i := 1; i <= clones; i++ {
		b.WriteString(suffixMacros(body, i))
	}
	main.Content = main.Content[:block.outer.start] + b.String() + main.Content[block.outer.end:]

	t.logger.Debug("block cloned", F("block", bareName(name)), F("clones", clones))
	return body, true, nil
}

// CloneBlockAndSetValues clones a block once per entry and fills copy i with
// the values of blocks[i-1].
func (t *Template) CloneBlockAndSetValues(name string, blocks []map[string]string) (bool, error) {
	_, ok, err := t.CloneBlock(name, len(blocks), true)
	if err != nil || !ok {
		return ok, err
	}
	return true, t.fillClones(blocks)
}

// ReplaceBlock replaces the block ${name} ... ${/name}, delimiters included,
// with xml.
func (t *Template) ReplaceBlock(name, xml string) (bool, error) {
	if err := t.check(); err != nil {
		return false, err
	}
	block, ok := t.findBlock("replaceBlock", name)
	if !ok {
		return false, nil
	}
	main := t.parts.main
	main.Content = main.Content[:block.outer.start] + xml + main.Content[block.outer.end:]
	return true, nil
}

// DeleteBlock removes the block ${name} ... ${/name}.
func (t *Template) DeleteBlock(name string) (bool, error) {
	return t.ReplaceBlock(name, "")
}
