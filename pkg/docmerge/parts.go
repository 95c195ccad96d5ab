package docmerge

import (
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// PartKind distinguishes the document parts the engine rewrites.
type PartKind int

const (
	MainPart PartKind = iota
	HeaderPart
	FooterPart
)

func (k PartKind) String() string {
	switch k {
	case MainPart:
		return "main"
	case HeaderPart:
		return "header"
	case FooterPart:
		return "footer"
	default:
		return "unknown"
	}
}

const (
	headerGlob = "word/header*.xml"
	footerGlob = "word/footer*.xml"
)

// Part is the XML text of one document part, mutated in place by every
// operation and written back on save.
type Part struct {
	Name    string
	Kind    PartKind
	Content string

	loaded string
}

func (p *Part) modified() bool {
	return p.Content != p.loaded
}

// manifest is the relationship manifest companion of a part.
type manifest struct {
	name    string
	content string
	loaded  string
	exists  bool
}

// partStore owns the text of the main part, headers and footers plus their
// relationship manifests for the lifetime of a template session.
type partStore struct {
	main    *Part
	headers []*Part
	footers []*Part
	rels    map[string]*manifest
}

func loadParts(pkg *Package, repair bool) (*partStore, error) {
	store := &partStore{rels: make(map[string]*manifest)}

	var headers, footers []string
	for _, name := range pkg.Names() {
		if ok, _ := doublestar.Match(headerGlob, name); ok {
			headers = append(headers, name)
		} else if ok, _ := doublestar.Match(footerGlob, name); ok {
			footers = append(footers, name)
		}
	}
	sortPartNames(headers)
	sortPartNames(footers)

	load := func(name string, kind PartKind) (*Part, error) {
		content, err := pkg.Read(name)
		if err != nil {
			return nil, NewDocumentError("extract", name, err)
		}
		text := string(content)
		part := &Part{Name: name, Kind: kind, loaded: text}
		if repair {
			text = repairMacros(text)
		}
		part.Content = text

		relsName := relationshipsPath(name)
		m := &manifest{name: relsName}
		if pkg.Has(relsName) {
			rels, err := pkg.Read(relsName)
			if err != nil {
				return nil, NewDocumentError("extract", relsName, err)
			}
			m.content, m.loaded, m.exists = string(rels), string(rels), true
		}
		store.rels[name] = m
		return part, nil
	}

	var err error
	if store.main, err = load(mainPartName, MainPart); err != nil {
		return nil, err
	}
	for _, name := range headers {
		part, err := load(name, HeaderPart)
		if err != nil {
			return nil, err
		}
		store.headers = append(store.headers, part)
	}
	for _, name := range footers {
		part, err := load(name, FooterPart)
		if err != nil {
			return nil, err
		}
		store.footers = append(store.footers, part)
	}
	return store, nil
}

// sortPartNames orders header1, header2, ..., header10 numerically.
func sortPartNames(names []string) {
	sort.Slice(names, func(i, j int) bool {
		ni, nj := partNumber(names[i]), partNumber(names[j])
		if ni != nj {
			return ni < nj
		}
		return names[i] < names[j]
	})
}

func partNumber(name string) int {
	base := strings.TrimSuffix(name[strings.LastIndex(name, "/")+1:], ".xml")
	digits := strings.TrimLeft(base, "abcdefghijklmnopqrstuvwxyz")
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}

// all returns every part: main first, then headers, then footers.
func (s *partStore) all() []*Part {
	parts := make([]*Part, 0, 1+len(s.headers)+len(s.footers))
	parts = append(parts, s.main)
	parts = append(parts, s.headers...)
	parts = append(parts, s.footers...)
	return parts
}

func (s *partStore) get(name string) *Part {
	for _, p := range s.all() {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// manifestFor returns the relationship manifest of a part, creating an empty
// one when the package has none.
func (s *partStore) manifestFor(part *Part) *manifest {
	m, ok := s.rels[part.Name]
	if !ok {
		m = &manifest{name: relationshipsPath(part.Name)}
		s.rels[part.Name] = m
	}
	if !m.exists {
		m.content = emptyRelationships()
		m.exists = true
	}
	return m
}

// flush writes modified parts and manifests back into the package.
func (s *partStore) flush(pkg *Package) []string {
	var written []string
	for _, p := range s.all() {
		if p.modified() {
			pkg.Set(p.Name, []byte(p.Content))
			p.loaded = p.Content
			written = append(written, p.Name)
		}
		if m := s.rels[p.Name]; m != nil && m.exists && m.content != m.loaded {
			pkg.Set(m.name, []byte(m.content))
			m.loaded = m.content
			written = append(written, m.name)
		}
	}
	return written
}
