package templates

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed *.yaml
var templateFiles embed.FS

// Name identifies one of the four fixed templates.
type Name string

// The fixed template set. Anything else is rejected at load time.
const (
	Professional Name = "professional"
	Modern       Name = "modern"
	Executive    Name = "executive"
	Creative     Name = "creative"
)

// DefaultName is used whenever a selection is missing or invalid.
const DefaultName = Professional

// All returns the fixed template identifiers in display order.
func All() []Name {
	return []Name{Professional, Modern, Executive, Creative}
}

// Valid reports whether n is one of the four fixed identifiers.
func Valid(n Name) bool {
	switch n {
	case Professional, Modern, Executive, Creative:
		return true
	}
	return false
}

// Clamp returns n if valid, otherwise the default.
func Clamp(n Name) Name {
	if Valid(n) {
		return n
	}
	return DefaultName
}

// Design holds the visual parameters handed to the renderer.
type Design struct {
	Theme          string `yaml:"theme" validate:"required"`
	FontFamily     string `yaml:"font_family" validate:"required"`
	FontSize       string `yaml:"font_size" validate:"required"`
	PageMargin     string `yaml:"page_margin" validate:"required"`
	AccentColor    string `yaml:"accent_color" validate:"required,hexcolor"`
	HeaderStyle    string `yaml:"header_style" validate:"required,oneof=classic banner minimal sidebar"`
	SectionSpacing string `yaml:"section_spacing" validate:"required"`
}

// Config is the typed, validated template configuration. Loading replaces
// the previous config wholesale; there are no partial merges.
type Config struct {
	Name        Name     `yaml:"name" validate:"required"`
	DisplayName string   `yaml:"display_name" validate:"required"`
	Description string   `yaml:"description" validate:"required"`
	TargetRoles []string `yaml:"target_roles" validate:"required,min=1"`
	Sections    []string `yaml:"sections" validate:"required,min=3"`
	Design      Design   `yaml:"design" validate:"required"`
	MaxPages    int      `yaml:"max_pages" validate:"required,min=1,max=3"`
}

// Structure renders the configuration back to YAML for prompt embedding.
func (c *Config) Structure() (string, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to render template structure: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

var (
	cache   = make(map[Name]*Config)
	cacheMu sync.RWMutex

	validate = validator.New()
)

// Load looks up the embedded configuration for name. Unknown names fail
// with NotFoundError; malformed resources fail loudly with ParseError
// rather than propagating an unchecked mapping downstream.
func Load(name Name) (*Config, error) {
	if !Valid(name) {
		return nil, &NotFoundError{Name: string(name)}
	}

	cacheMu.RLock()
	if cfg, ok := cache[name]; ok {
		cacheMu.RUnlock()
		return cfg, nil
	}
	cacheMu.RUnlock()

	data, err := templateFiles.ReadFile(string(name) + ".yaml")
	if err != nil {
		return nil, &NotFoundError{Name: string(name)}
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Name: string(name), Cause: err}
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, &ParseError{Name: string(name), Cause: err}
	}
	if cfg.Name != name {
		return nil, &ParseError{Name: string(name), Cause: fmt.Errorf("template declares name %q", cfg.Name)}
	}

	cacheMu.Lock()
	cache[name] = &cfg
	cacheMu.Unlock()

	return &cfg, nil
}

// ClearCache clears the template cache. Useful for testing.
func ClearCache() {
	cacheMu.Lock()
	cache = make(map[Name]*Config)
	cacheMu.Unlock()
}
