package docmerge

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Unlimited removes the per-part cap on replacements.
const Unlimited = -1

// Template is an opened DOCX template. It owns a session copy of the source
// file until Close. A Template is not safe for concurrent use.
type Template struct {
	config *Config
	logger *Logger

	source  string
	tmpPath string
	pkg     *Package
	parts   *partStore
	skipped []PartIssue
	closed  bool
}

// Option configures a Template.
type Option func(*Template)

// WithConfig replaces the global configuration for one template.
func WithConfig(cfg *Config) Option {
	return func(t *Template) {
		if cfg != nil {
			c := *cfg
			t.config = &c
		}
	}
}

// WithLogger sets the logger used by one template.
func WithLogger(l *Logger) Option {
	return func(t *Template) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithEscaping toggles XML escaping of SetValue replacement text.
func WithEscaping(escape bool) Option {
	return func(t *Template) {
		t.config.EscapeOutput = escape
	}
}

// WithTempDir sets where the session copy is kept.
func WithTempDir(dir string) Option {
	return func(t *Template) {
		t.config.TempDir = dir
	}
}

// Open copies the template at path into a session file and loads its
// document parts.
func Open(path string, opts ...Option) (*Template, error) {
	t := &Template{
		config: GetGlobalConfig(),
		logger: GetLogger(),
		source: path,
	}
	for _, opt := range opts {
		opt(t)
	}
	if err := t.config.Validate(); err != nil {
		return nil, NewDocumentError("setup", path, fmt.Errorf("invalid config: %w", err))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewDocumentError("setup", path, err)
	}

	dir := t.config.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	t.tmpPath = filepath.Join(dir, "docmerge-"+uuid.NewString()+".docx")
	if err := os.WriteFile(t.tmpPath, data, 0o600); err != nil {
		return nil, NewDocumentError("setup", t.tmpPath, err)
	}

	t.pkg, err = OpenPackage(data)
	if err != nil {
		_ = os.Remove(t.tmpPath)
		return nil, NewDocumentError("setup", path, err)
	}
	t.parts, err = loadParts(t.pkg, t.config.MacroRepair)
	if err != nil {
		_ = os.Remove(t.tmpPath)
		return nil, err
	}

	t.logger.Debug("template opened",
		F("source", path),
		F("session", t.tmpPath),
		F("headers", len(t.parts.headers)),
		F("footers", len(t.parts.footers)))
	return t, nil
}

func (t *Template) check() error {
	if t == nil || t.closed {
		return ErrClosed
	}
	return nil
}

// Variables returns the placeholder names referenced by the main part,
// headers and footers, without duplicates, in first-seen order.
func (t *Template) Variables() []string {
	if t.check() != nil {
		return nil
	}
	return variables(t.parts.all())
}

// Skipped lists the parts left unchanged because their XML could not be
// parsed during a structural replacement.
func (t *Template) Skipped() []PartIssue {
	out := make([]PartIssue, len(t.skipped))
	copy(out, t.skipped)
	return out
}

// Part returns the current XML text of the main part, a header or a footer.
func (t *Template) Part(name string) (string, bool) {
	if t.check() != nil {
		return "", false
	}
	p := t.parts.get(name)
	if p == nil {
		return "", false
	}
	return p.Content, true
}

// PartNames lists the parts the engine rewrites: main, headers, footers.
func (t *Template) PartNames() []string {
	if t.check() != nil {
		return nil
	}
	var names []string
	for _, p := range t.parts.all() {
		names = append(names, p.Name)
	}
	return names
}

// Save writes all parts into the session file and returns its path.
func (t *Template) Save() (string, error) {
	if err := t.check(); err != nil {
		return "", err
	}

	written := t.parts.flush(t.pkg)
	var buf bytes.Buffer
	if err := t.pkg.Write(&buf); err != nil {
		return "", NewDocumentError("save", t.tmpPath, err)
	}
	if err := os.WriteFile(t.tmpPath, buf.Bytes(), 0o600); err != nil {
		return "", NewDocumentError("save", t.tmpPath, err)
	}

	t.logger.Info("template saved",
		F("path", t.tmpPath),
		F("rewritten", written))
	return t.tmpPath, nil
}

// SaveAs saves and moves the result to path, replacing any existing file.
// The template is closed afterwards.
func (t *Template) SaveAs(path string) error {
	tmp, err := t.Save()
	if err != nil {
		return err
	}
	if err := moveFile(tmp, path); err != nil {
		return NewDocumentError("save", path, err)
	}
	t.closed = true
	t.logger.Info("template written", F("path", path))
	return nil
}

// Close discards the session file. Unsaved changes are lost.
func (t *Template) Close() error {
	if t == nil || t.closed {
		return nil
	}
	t.closed = true
	if err := os.Remove(t.tmpPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return NewDocumentError("close", t.tmpPath, err)
	}
	return nil
}

// moveFile renames src to dst, falling back to copy and remove across
// filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	in.Close()
	return os.Remove(src)
}
