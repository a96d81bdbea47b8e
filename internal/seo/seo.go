// Package seo inspects rendered HTML for search and social meta tags.
package seo

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MetaName is a meta tag identified by its name or property attribute
type MetaName string

const (
	Description        MetaName = "description"
	Keywords           MetaName = "keywords"
	Author             MetaName = "author"
	Robots             MetaName = "robots"
	Viewport           MetaName = "viewport"
	ThemeColor         MetaName = "theme-color"
	OGTitle            MetaName = "og:title"
	OGDescription      MetaName = "og:description"
	OGImage            MetaName = "og:image"
	OGType             MetaName = "og:type"
	OGURL              MetaName = "og:url"
	TwitterCard        MetaName = "twitter:card"
	TwitterTitle       MetaName = "twitter:title"
	TwitterDescription MetaName = "twitter:description"
	TwitterImage       MetaName = "twitter:image"
)

// Known lists every meta tag the report tracks, in display order
var Known = []MetaName{
	Description, Keywords, Author, Robots, Viewport, ThemeColor,
	OGTitle, OGDescription, OGImage, OGType, OGURL,
	TwitterCard, TwitterTitle, TwitterDescription, TwitterImage,
}

// Recommended are the tags a landing page should not ship without
var Recommended = []MetaName{
	Description, Viewport, OGTitle, OGDescription, OGImage, OGURL, TwitterCard,
}

func known(name MetaName) bool {
	for _, k := range Known {
		if k == name {
			return true
		}
	}
	return false
}

// Report is the SEO summary of one document
type Report struct {
	Title     string              `json:"title"`
	Charset   string              `json:"charset,omitempty"`
	Canonical string              `json:"canonical,omitempty"`
	Meta      map[MetaName]string `json:"meta"`
	// JSONLD is nil without a structured data block
	JSONLD      *bool  `json:"jsonLdValid,omitempty"`
	JSONLDError string `json:"jsonLdError,omitempty"`
}

// Value returns the content of a meta tag
func (r *Report) Value(name MetaName) (string, bool) {
	v, ok := r.Meta[name]
	return v, ok
}

// Missing lists the absent recommended elements; "title" and "canonical"
// are included when missing
func (r *Report) Missing() []string {
	var out []string
	if r.Title == "" {
		out = append(out, "title")
	}
	if r.Canonical == "" {
		out = append(out, "canonical")
	}
	for _, name := range Recommended {
		if v, ok := r.Meta[name]; !ok || v == "" {
			out = append(out, string(name))
		}
	}
	if r.JSONLD != nil && !*r.JSONLD {
		out = append(out, "json-ld")
	}
	return out
}

// Inspect parses an HTML document and collects its SEO metadata.
// Unknown meta names are ignored.
func Inspect(r io.Reader) (*Report, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	rep := &Report{Meta: map[MetaName]string{}}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Title:
				if rep.Title == "" {
					rep.Title = strings.TrimSpace(text(n))
				}
			case atom.Meta:
				inspectMeta(rep, n)
			case atom.Link:
				if strings.EqualFold(attr(n, "rel"), "canonical") && rep.Canonical == "" {
					rep.Canonical = attr(n, "href")
				}
			case atom.Script:
				if attr(n, "type") == "application/ld+json" && rep.JSONLD == nil {
					valid := json.Valid([]byte(text(n)))
					rep.JSONLD = &valid
					if !valid {
						rep.JSONLDError = "invalid JSON"
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return rep, nil
}

func inspectMeta(rep *Report, n *html.Node) {
	if cs := attr(n, "charset"); cs != "" {
		rep.Charset = cs
	}
	name := attr(n, "name")
	if name == "" {
		name = attr(n, "property")
	}
	content := attr(n, "content")
	if name == "" || content == "" {
		return
	}
	key := MetaName(strings.ToLower(name))
	if known(key) {
		rep.Meta[key] = content
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func text(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}
