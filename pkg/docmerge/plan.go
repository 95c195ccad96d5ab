package docmerge

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Plan is a declarative set of merge operations, usually read from YAML:
//
//	values:
//	  customer: ACME
//	html:
//	  notes: "<p><b>Paid</b> in full</p>"
//	images:
//	  logo: logo.png
//	rows:
//	  item:
//	    - {item: Widget, price: "9.99"}
//	blocks:
//	  offer:
//	    - {offer_title: Spring}
//	delete_blocks: [draft]
type Plan struct {
	Values       map[string]string              `yaml:"values"`
	HTML         map[string]string              `yaml:"html"`
	Markdown     map[string]string              `yaml:"markdown"`
	Images       map[string]PlanImage           `yaml:"images"`
	Rows         map[string][]map[string]string `yaml:"rows"`
	Blocks       map[string][]map[string]string `yaml:"blocks"`
	DeleteBlocks []string                       `yaml:"delete_blocks"`
}

// PlanImage is an image entry of a plan. In YAML it is either a path or a
// mapping with path, width, height, name and description.
type PlanImage struct {
	Path        string `yaml:"path"`
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// UnmarshalYAML accepts a bare path as shorthand.
func (p *PlanImage) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&p.Path)
	}
	type plain PlanImage
	return node.Decode((*plain)(p))
}

// ParsePlan decodes a YAML plan.
func ParsePlan(data []byte) (*Plan, error) {
	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}
	return &plan, nil
}

// LoadPlan reads a YAML plan file. Relative image paths are resolved against
// the file's directory.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	plan, err := ParsePlan(data)
	if err != nil {
		return nil, err
	}
	plan.resolveImages(filepath.Dir(path))
	return plan, nil
}

// resolveImages joins relative image paths onto dir. Entries merged in later
// keep their own paths.
func (p *Plan) resolveImages(dir string) {
	for search, img := range p.Images {
		if img.Path != "" && !filepath.IsAbs(img.Path) {
			img.Path = filepath.Join(dir, img.Path)
			p.Images[search] = img
		}
	}
}

// Validate reports every entry that cannot be applied.
func (p *Plan) Validate() error {
	errs := NewMultiError()
	for search, img := range p.Images {
		if img.Path == "" {
			errs.Add(fmt.Errorf("image %q has no path", search))
		}
	}
	for _, name := range p.DeleteBlocks {
		if _, ok := p.Blocks[name]; ok {
			errs.Add(fmt.Errorf("block %q is both cloned and deleted", name))
		}
	}
	if _, ok := p.Values[""]; ok {
		errs.Add(errors.New("value with empty name"))
	}
	return errs.Err()
}

// Merge copies entries of other into p; entries of other win.
func (p *Plan) Merge(other *Plan) {
	if other == nil {
		return
	}
	p.Values = mergeMap(p.Values, other.Values)
	p.HTML = mergeMap(p.HTML, other.HTML)
	p.Markdown = mergeMap(p.Markdown, other.Markdown)
	p.Images = mergeMap(p.Images, other.Images)
	p.Rows = mergeMap(p.Rows, other.Rows)
	p.Blocks = mergeMap(p.Blocks, other.Blocks)
	p.DeleteBlocks = append(p.DeleteBlocks, other.DeleteBlocks...)
}

func mergeMap[V any](dst, src map[string]V) map[string]V {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]V, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Apply runs the plan against t. Structure is expanded first so values can
// target cloned placeholders: blocks, deleted blocks, rows, then HTML,
// markdown, images and finally plain values.
func (p *Plan) Apply(t *Template) error {
	if err := p.Validate(); err != nil {
		return err
	}
	log := t.logger.WithField("stage", "plan")

	for _, name := range sortedKeys(p.Blocks) {
		ok, err := t.CloneBlockAndSetValues(name, p.Blocks[name])
		if err != nil {
			return WithContext(err, "plan block", map[string]interface{}{"block": name})
		}
		if !ok {
			log.Warn("block not found", F("block", name))
		}
	}
	for _, name := range p.DeleteBlocks {
		ok, err := t.DeleteBlock(name)
		if err != nil {
			return WithContext(err, "plan delete block", map[string]interface{}{"block": name})
		}
		if !ok {
			log.Warn("block not found", F("block", name))
		}
	}
	for _, search := range sortedKeys(p.Rows) {
		if err := t.CloneRowAndSetValues(search, p.Rows[search]); err != nil {
			return WithContext(err, "plan row", map[string]interface{}{"row": search})
		}
	}
	for _, search := range sortedKeys(p.HTML) {
		if err := t.SetHTML(search, p.HTML[search], Unlimited); err != nil {
			return WithContext(err, "plan html", map[string]interface{}{"search": search})
		}
	}
	for _, search := range sortedKeys(p.Markdown) {
		if err := t.SetMarkdown(search, p.Markdown[search], Unlimited); err != nil {
			return WithContext(err, "plan markdown", map[string]interface{}{"search": search})
		}
	}
	for _, search := range sortedKeys(p.Images) {
		img := p.Images[search]
		opts := ImageOptions{Width: img.Width, Height: img.Height, Name: img.Name, Description: img.Description}
		if err := t.SetImage(search, img.Path, opts, Unlimited); err != nil {
			return WithContext(err, "plan image", map[string]interface{}{"search": search})
		}
	}
	if err := t.SetValueMap(p.Values); err != nil {
		return WithContext(err, "plan values", nil)
	}

	log.Info("plan applied",
		F("values", len(p.Values)),
		F("rows", len(p.Rows)),
		F("blocks", len(p.Blocks)+len(p.DeleteBlocks)))
	return nil
}
