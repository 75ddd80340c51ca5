// Package config assembles the site configuration from the org
// document's whole-document keywords, an optional sorg.yaml next to it,
// and CLI options. Document keywords are the primary source; the yaml
// file overrides them for deployments that cannot edit the document.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/annieversary/sorg/internal/errors"
	"github.com/annieversary/sorg/internal/orgdoc"
)

// OverridesFile is looked up next to the org document.
const OverridesFile = "sorg.yaml"

// Options carries the CLI surface into config assembly.
type Options struct {
	Path       string // org document path
	Release    bool   // exclude not-done headings
	HotReload  bool   // append the reload script to rendered pages
	Verbose    bool
	Port       int // dev server port
	ReloadPort int // websocket reload port
}

// Config is the fully resolved site configuration.
type Config struct {
	DocPath string // source org document
	RootDir string // directory containing the document

	BuildDir     string // output root, cleared on every build
	StaticDir    string // assets copied verbatim into the build root
	TemplatesDir string

	// static folder name as authored, used to strip link prefixes
	StaticName string

	URL         string
	Title       string
	Description string

	HighlightStyle string

	Release    bool
	HotReload  bool
	Verbose    bool
	Port       int
	ReloadPort int

	Keywords orgdoc.Keywords
}

// overrides mirrors the optional sorg.yaml file.
type overrides struct {
	Title          string `yaml:"title,omitempty"`
	Description    string `yaml:"description,omitempty"`
	URL            string `yaml:"url,omitempty"`
	Static         string `yaml:"static,omitempty"`
	Build          string `yaml:"build,omitempty"`
	Templates      string `yaml:"templates,omitempty"`
	HighlightStyle string `yaml:"highlight_style,omitempty"`
}

// FromDocument derives the configuration for a parsed document.
// Missing site-wide title, description, or url is fatal: nothing is
// rendered without them.
func FromDocument(doc *orgdoc.Document, opts Options) (*Config, error) {
	// Best effort; a missing .env is the normal case.
	_ = godotenv.Load()

	root := filepath.Dir(opts.Path)

	cfg := &Config{
		DocPath:        opts.Path,
		RootDir:        root,
		Title:          doc.Setting("title"),
		Description:    doc.Setting("description"),
		URL:            doc.Setting("url"),
		StaticName:     firstNonEmpty(doc.Setting("static"), "static"),
		HighlightStyle: firstNonEmpty(doc.Setting("highlight_style"), "friendly"),
		Release:        opts.Release,
		HotReload:      opts.HotReload,
		Verbose:        opts.Verbose,
		Port:           opts.Port,
		ReloadPort:     opts.ReloadPort,
		Keywords:       orgdoc.ParseKeywords(doc.Setting("todo")),
	}

	buildName := firstNonEmpty(doc.Setting("build"), doc.Setting("out"), "build")
	templatesName := firstNonEmpty(doc.Setting("templates"), "templates")

	ov, err := loadOverrides(filepath.Join(root, OverridesFile))
	if err != nil {
		return nil, err
	}
	if ov != nil {
		cfg.Title = firstNonEmpty(ov.Title, cfg.Title)
		cfg.Description = firstNonEmpty(ov.Description, cfg.Description)
		cfg.URL = firstNonEmpty(ov.URL, cfg.URL)
		cfg.StaticName = firstNonEmpty(ov.Static, cfg.StaticName)
		buildName = firstNonEmpty(ov.Build, buildName)
		templatesName = firstNonEmpty(ov.Templates, templatesName)
		cfg.HighlightStyle = firstNonEmpty(ov.HighlightStyle, cfg.HighlightStyle)
	}

	cfg.BuildDir = filepath.Join(root, buildName)
	cfg.StaticDir = filepath.Join(root, cfg.StaticName)
	cfg.TemplatesDir = filepath.Join(root, templatesName)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate enforces the required site-wide metadata.
func (c *Config) validate() error {
	for _, req := range []struct{ key, value string }{
		{"title", c.Title},
		{"description", c.Description},
		{"url", c.URL},
	} {
		if req.value == "" {
			return errors.ConfigError(fmt.Sprintf("missing required #+%s keyword (set it in the document or %s)", req.key, OverridesFile))
		}
	}
	return nil
}

func loadOverrides(path string) (*overrides, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.CategoryConfig, errors.SeverityFatal, "reading %s", path)
	}

	var ov overrides
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &ov); err != nil {
		return nil, errors.Wrapf(err, errors.CategoryConfig, errors.SeverityFatal, "unmarshalling %s", path)
	}
	return &ov, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
