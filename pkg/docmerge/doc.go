// Package docmerge is a mail-merge engine for Microsoft Word documents (DOCX).
//
// A template is an ordinary document whose text holds ${name} placeholders.
// docmerge substitutes them with text, HTML, markdown or images, clones the
// table rows and paragraph blocks around them, and writes the result as a new
// package. Every part except the ones it rewrites is copied byte for byte.
//
// # Quick Start
//
//	tmpl, err := docmerge.Open("invoice.docx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tmpl.Close()
//
//	_ = tmpl.SetValue("customer", "ACME Corp")
//	_ = tmpl.CloneRowAndSetValues("item", []map[string]string{
//	    {"item": "Widget", "price": "9.99"},
//	    {"item": "Gadget", "price": "19.99"},
//	})
//	if err := tmpl.SaveAs("out.docx"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Placeholder Syntax
//
//	${name}              - value, HTML, markdown or image slot
//	${name}...${/name}   - block delimiters, each in its own paragraph
//	${name#2}            - placeholder in the second clone of a row or block
//
// Placeholders split across formatting runs by Word are repaired when the
// template is opened (see Config.MacroRepair).
//
// # Operations
//
//   - SetValue, SetValueLimit, SetValues, SetValueMap: text substitution in the
//     body, headers and footers. A replacement starting with <w:tbl replaces
//     the whole paragraph holding the placeholder.
//   - SetHTML, SetMarkdown: rich content replacing the placeholder paragraph.
//   - SetImage: inline picture replacing the placeholder paragraph.
//   - CloneRow: table row cloning, vertical merges included.
//   - CloneBlock, ReplaceBlock, DeleteBlock: paragraph block editing.
//   - Variables: placeholder discovery.
//   - Plan: all of the above driven by a YAML document.
//
// Parts whose XML cannot be parsed are left unchanged by paragraph-level
// operations and reported by Template.Skipped.
//
// # Configuration
//
// Defaults can be overridden through DOCMERGE_* environment variables or a
// config file loaded with LoadConfig:
//
//	DOCMERGE_ESCAPE_OUTPUT=true   - XML-escape SetValue replacements
//	DOCMERGE_LOG_LEVEL=debug      - debug, info, warn, error or off
//	DOCMERGE_TEMP_DIR=/var/tmp    - where session copies live
//	DOCMERGE_IMAGE_DPI=96         - pixel to drawing size conversion
//	DOCMERGE_MACRO_REPAIR=false   - leave split placeholders as authored
//	DOCMERGE_LOG_FILE=merge.log   - JSON log file with rotation (CLI)
//
// A Template is not safe for concurrent use; open one per document.
package docmerge
