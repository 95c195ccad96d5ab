package docmerge

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
)

const (
	mainPartName     = "word/document.xml"
	contentTypesName = "[Content_Types].xml"

	relationshipsNamespace = "http://schemas.openxmlformats.org/package/2006/relationships"
	contentTypesNamespace  = "http://schemas.openxmlformats.org/package/2006/content-types"
	imageRelationshipType  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"

	xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"
)

// Package is an opened DOCX container. Entries are read from the source
// archive on demand; entries set through Set are kept in memory until Write.
type Package struct {
	source  []byte
	files   []*zip.File
	index   map[string]*zip.File
	changed map[string][]byte
	added   []string
}

// OpenPackage reads a DOCX container from memory.
func OpenPackage(data []byte) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to read zip file: %w", err)
	}

	p := &Package{
		source:  data,
		files:   zr.File,
		index:   make(map[string]*zip.File, len(zr.File)),
		changed: make(map[string][]byte),
	}
	for _, f := range zr.File {
		p.index[f.Name] = f
	}

	if _, ok := p.index[mainPartName]; !ok {
		return nil, fmt.Errorf("not a valid DOCX file: missing %s", mainPartName)
	}
	return p, nil
}

// Has reports whether the package holds an entry with the given name.
func (p *Package) Has(name string) bool {
	if _, ok := p.changed[name]; ok {
		return true
	}
	_, ok := p.index[name]
	return ok
}

// Read returns the content of an entry.
func (p *Package) Read(name string) ([]byte, error) {
	if content, ok := p.changed[name]; ok {
		return content, nil
	}
	file, ok := p.index[name]
	if !ok {
		return nil, fmt.Errorf("part %s not found", name)
	}

	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open part %s: %w", name, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read part %s: %w", name, err)
	}
	return content, nil
}

// Set replaces or adds an entry.
func (p *Package) Set(name string, content []byte) {
	if _, ok := p.index[name]; !ok {
		if _, seen := p.changed[name]; !seen {
			p.added = append(p.added, name)
		}
	}
	p.changed[name] = content
}

// Names lists all entry names, sorted.
func (p *Package) Names() []string {
	names := make([]string, 0, len(p.files)+len(p.added))
	for _, f := range p.files {
		names = append(names, f.Name)
	}
	names = append(names, p.added...)
	sort.Strings(names)
	return names
}

// Write serializes the package. Entries that were never Set are copied
// without recompression, so they stay byte-identical to the source.
func (p *Package) Write(w io.Writer) error {
	zw := zip.NewWriter(w)

	for _, file := range p.files {
		content, ok := p.changed[file.Name]
		if !ok {
			if err := zw.Copy(file); err != nil {
				return fmt.Errorf("failed to copy %s: %w", file.Name, err)
			}
			continue
		}
		header := file.FileHeader
		header.Method = zip.Deflate
		if err := writeEntry(zw, &header, content); err != nil {
			return err
		}
	}

	for _, name := range p.added {
		header := &zip.FileHeader{Name: name, Method: zip.Deflate}
		if err := writeEntry(zw, header, p.changed[name]); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to close zip writer: %w", err)
	}
	return nil
}

func writeEntry(zw *zip.Writer, header *zip.FileHeader, content []byte) error {
	fw, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", header.Name, err)
	}
	if _, err := fw.Write(content); err != nil {
		return fmt.Errorf("failed to write %s: %w", header.Name, err)
	}
	return nil
}

// relationshipsPath maps a part to its relationship manifest,
// e.g. "word/header1.xml" -> "word/_rels/header1.xml.rels".
func relationshipsPath(partName string) string {
	dir, base := path.Split(partName)
	return dir + "_rels/" + base + ".rels"
}

// Relationship is one entry of a relationship manifest.
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

// Relationships is a relationship manifest (a .rels part).
type Relationships struct {
	XMLName      xml.Name       `xml:"Relationships"`
	Namespace    string         `xml:"xmlns,attr"`
	Relationship []Relationship `xml:"Relationship"`
}

func parseRelationships(content string) (*Relationships, error) {
	var rels Relationships
	if err := xml.Unmarshal([]byte(content), &rels); err != nil {
		return nil, err
	}
	if rels.Namespace == "" {
		rels.Namespace = relationshipsNamespace
	}
	return &rels, nil
}

func (r *Relationships) marshal() (string, error) {
	// the namespace is written from the Namespace field only
	r.XMLName = xml.Name{}
	output, err := xml.Marshal(r)
	if err != nil {
		return "", err
	}
	return xmlHeader + string(output), nil
}

func emptyRelationships() string {
	return xmlHeader + `<Relationships xmlns="` + relationshipsNamespace + `"></Relationships>`
}

// ContentTypes mirrors [Content_Types].xml.
type ContentTypes struct {
	XMLName   xml.Name              `xml:"Types"`
	Namespace string                `xml:"xmlns,attr"`
	Defaults  []ContentTypeDefault  `xml:"Default"`
	Overrides []ContentTypeOverride `xml:"Override"`
}

// ContentTypeDefault maps a file extension to a content type.
type ContentTypeDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// ContentTypeOverride maps a single part to a content type.
type ContentTypeOverride struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

var extensionContentTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"tiff": "image/tiff",
	"tif":  "image/tiff",
	"svg":  "image/svg+xml",
	"webp": "image/webp",
	"emf":  "image/x-emf",
	"wmf":  "image/x-wmf",
}

// registerExtension adds a Default entry for ext to [Content_Types].xml
// unless one exists. It reports whether the manifest changed.
func (p *Package) registerExtension(ext string) (bool, error) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" {
		return false, nil
	}

	content, err := p.Read(contentTypesName)
	if err != nil {
		return false, err
	}
	var types ContentTypes
	if err := xml.Unmarshal(content, &types); err != nil {
		return false, NewXMLError(contentTypesName, err)
	}
	for _, def := range types.Defaults {
		if strings.EqualFold(def.Extension, ext) {
			return false, nil
		}
	}

	contentType, ok := extensionContentTypes[ext]
	if !ok {
		contentType = "image/" + ext
	}
	types.Defaults = append(types.Defaults, ContentTypeDefault{Extension: ext, ContentType: contentType})
	if types.Namespace == "" {
		types.Namespace = contentTypesNamespace
	}
	types.XMLName = xml.Name{}

	output, err := xml.Marshal(&types)
	if err != nil {
		return false, fmt.Errorf("failed to marshal content types: %w", err)
	}
	p.Set(contentTypesName, append([]byte(xmlHeader), output...))
	return true, nil
}
