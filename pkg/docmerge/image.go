package docmerge

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/benjaminschreck/go-docmerge/pkg/docmerge/ooxml"
)

// ImageOptions controls how an embedded image is drawn. Sizes are pixels;
// when one is zero it follows the image's aspect ratio, when both are zero
// the image's own size is used.
type ImageOptions struct {
	Width       int
	Height      int
	Name        string
	Description string
}

var docPrIDPattern = regexp.MustCompile(`<wp:docPr\b[^>]*\bid="(\d+)"`)

// SetImage replaces the paragraph holding ${search} with a paragraph showing
// the image at path. Every part that uses the image gets its own
// relationship. A path that does not exist is ignored.
func (t *Template) SetImage(search, path string, opts ImageOptions, limit int) error {
	if err := t.check(); err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		t.logger.Warn("image not found, nothing replaced", F("path", path))
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return NewDocumentError("read image", path, err)
	}

	width, height := t.imageSize(data, opts)
	base := filepath.Base(path)
	token := macro(search)
	name := opts.Name
	if name == "" {
		name = base
	}

	used := false
	remaining := limit
	for _, part := range t.parts.all() {
		if remaining == 0 {
			break
		}
		if !strings.Contains(part.Content, token) {
			continue
		}
		spans, err := enclosingParagraphs(part.Content, token, remaining)
		if err != nil {
			t.skip(part, "setImg", err)
			continue
		}
		if len(spans) == 0 {
			continue
		}

		if remaining > 0 {
			remaining -= len(spans)
		}

		relID, err := t.addImageRelationship(part, "media/"+base)
		if err != nil {
			return err
		}
		used = true

		nextID := maxDocPrID(part.Content) + 1
		part.Content = splice(part.Content, spans, func(s span) string {
			drawing := ooxml.Drawing{
				RelID:       relID,
				ID:          nextID,
				Name:        name,
				Description: opts.Description,
				Width:       width,
				Height:      height,
			}
			nextID++
			paragraph := ooxml.NewParagraph(drawing.Run()).String()
			return adoptSlot(part.Content[s.start:s.end], []string{paragraph})
		})
		t.logger.Debug("image embedded",
			F("part", part.Name),
			F("relationship", relID),
			F("image", base),
			F("count", len(spans)))
	}

	if !used {
		return nil
	}
	t.pkg.Set("word/media/"+base, data)
	if _, err := t.pkg.registerExtension(filepath.Ext(base)); err != nil {
		return err
	}
	return nil
}

// addImageRelationship appends an image relationship to the part's manifest
// and returns its id. A manifest that cannot be parsed is an error.
func (t *Template) addImageRelationship(part *Part, target string) (string, error) {
	m := t.parts.manifestFor(part)
	rels, err := parseRelationships(m.content)
	if err != nil {
		return "", NewXMLError(m.name, err)
	}

	id := getNextRelationshipID(rels)
	rels.Relationship = append(rels.Relationship, Relationship{
		ID:     id,
		Type:   imageRelationshipType,
		Target: target,
	})
	content, err := rels.marshal()
	if err != nil {
		return "", NewXMLError(m.name, fmt.Errorf("failed to marshal relationships: %w", err))
	}
	m.content = content
	return id, nil
}

// getNextRelationshipID returns rId<n> where n is one past the highest
// numeric id in use.
func getNextRelationshipID(rels *Relationships) string {
	maxID := 0
	for _, rel := range rels.Relationship {
		if strings.HasPrefix(rel.ID, "rId") {
			if id, err := strconv.Atoi(rel.ID[3:]); err == nil && id > maxID {
				maxID = id
			}
		}
	}
	return fmt.Sprintf("rId%d", maxID+1)
}

func maxDocPrID(content string) int {
	maxID := 0
	for _, m := range docPrIDPattern.FindAllStringSubmatch(content, -1) {
		if id, err := strconv.Atoi(m[1]); err == nil && id > maxID {
			maxID = id
		}
	}
	return maxID
}

// imageSize resolves the drawing extent in EMUs.
func (t *Template) imageSize(data []byte, opts ImageOptions) (int64, int64) {
	dpi := t.config.ImageDPI
	w, h := opts.Width, opts.Height
	if w == 0 || h == 0 {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		switch {
		case err != nil || cfg.Width == 0 || cfg.Height == 0:
			// unknown format, fall back to one inch
			if w == 0 {
				w = dpi
			}
			if h == 0 {
				h = dpi
			}
		case w == 0 && h == 0:
			w, h = cfg.Width, cfg.Height
		case w == 0:
			w = h * cfg.Width / cfg.Height
		default:
			h = w * cfg.Height / cfg.Width
		}
	}
	return ooxml.PixelsToEMU(w, dpi), ooxml.PixelsToEMU(h, dpi)
}
