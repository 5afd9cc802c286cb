// Package site holds the portal's navigation config and its documentation
// library.
package site

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"docs-portal/internal/render"
)

//go:embed content
var content embed.FS

// Config describes the site: title, navbar, sidebar and redirects.
type Config struct {
	Title     string               `yaml:"title"`
	URL       string               `yaml:"url"`
	BaseURL   string               `yaml:"base_url"`
	Locale    string               `yaml:"locale"`
	Navbar    Navbar               `yaml:"navbar"`
	Sidebar   []SidebarItem        `yaml:"sidebar"`
	Redirects []Redirect           `yaml:"redirects"`
	Mermaid   render.MermaidThemes `yaml:"mermaid"`
}

// Navbar is the top navigation bar. The auth-status widget is always
// appended on the right.
type Navbar struct {
	Title string    `yaml:"title"`
	Items []NavItem `yaml:"items"`
}

// NavItem is a navbar link.
type NavItem struct {
	Label    string `yaml:"label"`
	To       string `yaml:"to"`
	Position string `yaml:"position"`
}

// SidebarItem is either a single doc or a category of docs.
type SidebarItem struct {
	Doc       string   `yaml:"doc,omitempty"`
	Category  string   `yaml:"category,omitempty"`
	Collapsed bool     `yaml:"collapsed,omitempty"`
	Items     []string `yaml:"items,omitempty"`
}

// Redirect sends requests for From to To.
type Redirect struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// LoadConfig reads the site config at path, or the built-in one when path
// is empty.
func LoadConfig(path string) (*Config, error) {
	var (
		data []byte
		err  error
	)
	if path == "" {
		data, err = content.ReadFile("content/site.yaml")
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read site config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes and validates a YAML site config.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse site config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Locale == "" {
		cfg.Locale = "zh-Hans"
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, errors.New("site config: title is required"))
	}
	for i, item := range c.Sidebar {
		switch {
		case item.Doc != "" && item.Category != "":
			errs = append(errs, fmt.Errorf("site config: sidebar[%d] has both doc and category", i))
		case item.Doc == "" && item.Category == "":
			errs = append(errs, fmt.Errorf("site config: sidebar[%d] needs a doc or a category", i))
		case item.Category != "" && len(item.Items) == 0:
			errs = append(errs, fmt.Errorf("site config: category %q is empty", item.Category))
		}
	}
	for i, r := range c.Redirects {
		if !strings.HasPrefix(r.From, "/") || !strings.HasPrefix(r.To, "/") {
			errs = append(errs, fmt.Errorf("site config: redirects[%d] must use absolute paths", i))
		}
	}
	return errors.Join(errs...)
}

// DocIDs returns every doc the sidebar references, once each, in sidebar
// order.
func (c *Config) DocIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, item := range c.Sidebar {
		add(item.Doc)
		for _, id := range item.Items {
			add(id)
		}
	}
	return ids
}

// RedirectFor returns the redirect target for path, if one is configured.
func (c *Config) RedirectFor(path string) (string, bool) {
	for _, r := range c.Redirects {
		if r.From == path {
			return r.To, true
		}
	}
	return "", false
}

// LeftNav returns navbar items positioned on the left.
func (c *Config) LeftNav() []NavItem { return c.navAt("left") }

// RightNav returns navbar items positioned on the right.
func (c *Config) RightNav() []NavItem { return c.navAt("right") }

func (c *Config) navAt(position string) []NavItem {
	var items []NavItem
	for _, item := range c.Navbar.Items {
		p := item.Position
		if p == "" {
			p = "left"
		}
		if p == position {
			items = append(items, item)
		}
	}
	return items
}
