// Package catalog holds the fixed set of segment templates the track generator picks from
package catalog

import (
	"errors"
	"fmt"
)

// ErrDuplicateName is returned when two templates share a name
var ErrDuplicateName = errors.New("duplicate template name")

// Template is one spawnable track segment
// The generator never looks past its index; Name and Tags are for hosts and views
type Template struct {
	Name string   `toml:"name" json:"name"`
	Tags []string `toml:"tags,omitempty" json:"tags,omitempty"`
}

// Catalog is an immutable, index-addressed list of templates
type Catalog struct {
	templates []Template
	byName    map[string]int
}

// New builds a catalog from templates in the given order
// An empty catalog is valid; the generator reports a spawn failure against it
func New(templates ...Template) (*Catalog, error) {
	c := &Catalog{
		templates: make([]Template, len(templates)),
		byName:    make(map[string]int, len(templates)),
	}

	for i, t := range templates {
		if t.Name == "" {
			t.Name = fmt.Sprintf("segment-%d", i)
		}
		if _, ok := c.byName[t.Name]; ok {
			return nil, fmt.Errorf("catalog: %w: %q", ErrDuplicateName, t.Name)
		}
		c.byName[t.Name] = i
		t.Tags = append([]string(nil), t.Tags...)
		c.templates[i] = t
	}

	return c, nil
}

// MustNew is New for static catalogs
func MustNew(templates ...Template) *Catalog {
	c, err := New(templates...)
	if err != nil {
		panic(err)
	}
	return c
}

// Sized returns a catalog of n anonymous templates
func Sized(n int) *Catalog {
	if n < 0 {
		n = 0
	}
	return MustNew(make([]Template, n)...)
}

// Default is the three-segment set the game ships with
func Default() *Catalog {
	return MustNew(
		Template{Name: "straight", Tags: []string{"easy"}},
		Template{Name: "hurdles", Tags: []string{"jump"}},
		Template{Name: "slalom", Tags: []string{"dodge"}},
	)
}

// Len returns the number of templates; nil catalog has none
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.templates)
}

// Contains reports whether index addresses a template
func (c *Catalog) Contains(index int) bool {
	return index >= 0 && index < c.Len()
}

// Template returns the template at index
func (c *Catalog) Template(index int) (Template, bool) {
	if !c.Contains(index) {
		return Template{}, false
	}
	return c.templates[index], true
}

// Index resolves a template name
func (c *Catalog) Index(name string) (int, bool) {
	if c == nil {
		return 0, false
	}
	i, ok := c.byName[name]
	return i, ok
}

// Templates returns a copy of all templates in index order
func (c *Catalog) Templates() []Template {
	if c == nil {
		return nil
	}
	out := make([]Template, len(c.templates))
	copy(out, c.templates)
	return out
}
