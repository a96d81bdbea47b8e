// Package content holds the copy rendered on the landing page.
package content

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Site is everything the landing page template renders
type Site struct {
	Brand        Brand         `yaml:"brand" json:"brand"`
	Meta         Meta          `yaml:"meta" json:"meta"`
	Hero         Hero          `yaml:"hero" json:"hero"`
	USPs         []Feature     `yaml:"usps" json:"usps"`
	Advantages   []Feature     `yaml:"advantages" json:"advantages"`
	Process      []Feature     `yaml:"process" json:"process"`
	Pricing      []Package     `yaml:"pricing" json:"pricing"`
	Portfolio    []Project     `yaml:"portfolio" json:"portfolio"`
	Testimonials []Testimonial `yaml:"testimonials" json:"testimonials"`
	FAQ          []FAQ         `yaml:"faq" json:"faq"`
	CTA          CTA           `yaml:"cta" json:"cta"`
}

type Brand struct {
	Name    string `yaml:"name" json:"name"`
	Tagline string `yaml:"tagline" json:"tagline"`
}

// Meta feeds the document head
type Meta struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	Keywords    string `yaml:"keywords" json:"keywords"`
	Author      string `yaml:"author" json:"author"`
	URL         string `yaml:"url" json:"url"`
	Image       string `yaml:"image" json:"image"`
	ThemeColor  string `yaml:"theme_color" json:"themeColor"`
}

type Hero struct {
	Headline    string `yaml:"headline" json:"headline"`
	Subheadline string `yaml:"subheadline" json:"subheadline"`
	Subtitle    string `yaml:"subtitle" json:"subtitle"`
	Action      string `yaml:"action" json:"action"`
}

type Feature struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
}

// Package is one pricing tier; ID is what the form submits as pricing type
type Package struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Price       string   `yaml:"price" json:"price"`
	Description string   `yaml:"description" json:"description"`
	Features    []string `yaml:"features" json:"features"`
}

type Project struct {
	Title       string `yaml:"title" json:"title"`
	Category    string `yaml:"category" json:"category"`
	Description string `yaml:"description" json:"description"`
}

type Testimonial struct {
	Name    string `yaml:"name" json:"name"`
	Company string `yaml:"company" json:"company"`
	Review  string `yaml:"review" json:"review"`
	Rating  int    `yaml:"rating" json:"rating"`
}

// Initials returns the avatar letters for the reviewer
func (t Testimonial) Initials() string {
	var sb strings.Builder
	for _, part := range strings.Fields(t.Name) {
		r, _ := utf8.DecodeRuneInString(part)
		sb.WriteRune(unicode.ToUpper(r))
	}
	return sb.String()
}

type FAQ struct {
	Question string `yaml:"question" json:"question"`
	Answer   string `yaml:"answer" json:"answer"`
}

type CTA struct {
	Headline    string `yaml:"headline" json:"headline"`
	Subheadline string `yaml:"subheadline" json:"subheadline"`
	Action      string `yaml:"action" json:"action"`
}

// PricingIDs lists the pricing type identifiers offered by the form
func (s *Site) PricingIDs() []string {
	ids := make([]string, 0, len(s.Pricing))
	for _, p := range s.Pricing {
		ids = append(ids, p.ID)
	}
	return ids
}

// FAQMarkdown renders the FAQ as a markdown document
func (s *Site) FAQMarkdown() string {
	var sb strings.Builder
	sb.WriteString("# Frequently asked questions\n\n")
	for _, f := range s.FAQ {
		fmt.Fprintf(&sb, "## %s\n\n%s\n\n", f.Question, f.Answer)
	}
	return sb.String()
}

// Validate rejects content the page cannot render sensibly
func (s *Site) Validate() error {
	if s.Brand.Name == "" {
		return fmt.Errorf("brand.name is required")
	}
	if s.Meta.Title == "" {
		return fmt.Errorf("meta.title is required")
	}
	seen := map[string]bool{}
	for i, p := range s.Pricing {
		if p.ID == "" {
			return fmt.Errorf("pricing[%d].id is required", i)
		}
		if seen[p.ID] {
			return fmt.Errorf("duplicate pricing id %q", p.ID)
		}
		seen[p.ID] = true
	}
	return nil
}

// Load reads a YAML content file. Sections absent from the file keep
// their built-in values.
func Load(path string) (*Site, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content file: %w", err)
	}
	site := Default()
	if err := yaml.Unmarshal(data, site); err != nil {
		return nil, fmt.Errorf("parse content file %s: %w", path, err)
	}
	if err := site.Validate(); err != nil {
		return nil, fmt.Errorf("invalid content file %s: %w", path, err)
	}
	return site, nil
}

// Provider hands out the current content; Store swaps it atomically
type Provider struct {
	site atomic.Pointer[Site]
}

// NewProvider returns a provider serving site
func NewProvider(site *Site) *Provider {
	p := &Provider{}
	p.site.Store(site)
	return p
}

func (p *Provider) Site() *Site      { return p.site.Load() }
func (p *Provider) Store(site *Site) { p.site.Store(site) }
