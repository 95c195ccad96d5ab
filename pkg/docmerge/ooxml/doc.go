// Package ooxml is a small WordprocessingML writer.
//
// It models the handful of elements the merge engine has to produce from
// scratch (paragraphs, runs, text, breaks and inline drawings) and renders
// them to native XML with the conventional "w:", "wp:", "a:", "pic:" and
// "r:" prefixes, ready to be spliced into an existing document part.
//
// # Structure Organization
//
//   - types.go: namespace URIs and the Block interface
//   - document.go: Document and Section, full document rendering and body extraction
//   - paragraph.go: Paragraph and ParagraphProperties
//   - run.go: Run, RunProperties, Text and Break
//   - drawing.go: inline picture (DrawingML) rendering
//   - html.go: HTML fragment import into the model
//
// # Usage
//
//	doc := &ooxml.Document{Sections: []ooxml.Section{{
//	    Blocks: []ooxml.Block{
//	        ooxml.NewParagraph(ooxml.NewTextRun("Hello, world!", nil)),
//	    },
//	}}}
//	xml := doc.String()
//	body := ooxml.ExtractBody(xml)
package ooxml
