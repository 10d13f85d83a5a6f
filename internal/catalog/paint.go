// Package catalog loads, cleans and stores the paint catalogue.
package catalog

import (
	"sort"
	"strings"

	"miniscan/pkg/colorutil"
)

// Category is the paint range a product belongs to.
type Category string

const (
	CategoryBase      Category = "base"
	CategoryLayer     Category = "layer"
	CategoryWash      Category = "wash"
	CategoryShade     Category = "shade"
	CategoryContrast  Category = "contrast"
	CategoryInk       Category = "ink"
	CategoryGlaze     Category = "glaze"
	CategoryMetallic  Category = "metallic"
	CategoryDry       Category = "dry"
	CategoryAir       Category = "air"
	CategoryTechnical Category = "technical"
	CategoryEdge      Category = "edge"
)

var categories = map[Category]bool{
	CategoryBase: true, CategoryLayer: true, CategoryWash: true, CategoryShade: true,
	CategoryContrast: true, CategoryInk: true, CategoryGlaze: true, CategoryMetallic: true,
	CategoryDry: true, CategoryAir: true, CategoryTechnical: true, CategoryEdge: true,
}

// ParseCategory accepts any case; ok is false for unknown values.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	return c, categories[c]
}

// Transparent reports whether the category is a see-through range.
func (c Category) Transparent() bool {
	switch c {
	case CategoryWash, CategoryShade, CategoryContrast, CategoryInk, CategoryGlaze:
		return true
	}
	return false
}

// Finish is the dried surface of a paint.
type Finish string

const (
	FinishMatte    Finish = "matte"
	FinishSatin    Finish = "satin"
	FinishMetallic Finish = "metallic"
	FinishGloss    Finish = "gloss"
)

// ParseFinish accepts any case and the "matt" spelling.
func ParseFinish(s string) (Finish, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "matte", "matt":
		return FinishMatte, true
	case "satin":
		return FinishSatin, true
	case "metallic", "metal":
		return FinishMetallic, true
	case "gloss":
		return FinishGloss, true
	}
	return "", false
}

// WashTransparency is the threshold above which a paint counts as a wash.
const WashTransparency = 0.3

// Paint is a cleaned catalogue entry. Colour fields are derived from Hex.
type Paint struct {
	ID           int           `json:"id"`
	Name         string        `json:"name"`
	Brand        string        `json:"brand"`
	Hex          string        `json:"hex"`
	Category     Category      `json:"category"`
	Finish       Finish        `json:"finish"`
	Transparency float64       `json:"transparency"`
	Family       string        `json:"color_family"`
	Tags         []string      `json:"tags,omitempty"`
	RGB          colorutil.RGB `json:"-"`
	LAB          colorutil.LAB `json:"-"`
	HSV          colorutil.HSV `json:"-"`
	Chroma       float64       `json:"-"`
}

// IsWash reports whether the paint is transparent enough to be a wash.
func (p Paint) IsWash() bool {
	return p.Transparency > WashTransparency || p.Category.Transparent()
}

// IsMetallic reports a metallic finish.
func (p Paint) IsMetallic() bool {
	return p.Finish == FinishMetallic
}

// IsOpaque is the complement of IsWash.
func (p Paint) IsOpaque() bool {
	return !p.IsWash()
}

// derive fills the colour fields from rgb.
func (p *Paint) derive(rgb colorutil.RGB) {
	p.RGB = rgb
	p.Hex = rgb.Hex()
	p.LAB = rgb.LAB()
	p.HSV = rgb.HSV()
	p.Chroma = p.LAB.Chroma()
}

// Catalog is an immutable, cleaned set of paints with brand lookups.
type Catalog struct {
	paints  []Paint
	byBrand map[string][]int
	brands  []string
}

// New builds a catalogue. Paint IDs are reassigned to their position.
func New(paints []Paint) *Catalog {
	c := &Catalog{
		paints:  make([]Paint, len(paints)),
		byBrand: make(map[string][]int),
	}
	for i, p := range paints {
		p.ID = i
		c.paints[i] = p
		key := brandKey(p.Brand)
		if _, ok := c.byBrand[key]; !ok {
			c.brands = append(c.brands, p.Brand)
		}
		c.byBrand[key] = append(c.byBrand[key], i)
	}
	sort.Strings(c.brands)
	return c
}

// Len returns the number of paints.
func (c *Catalog) Len() int {
	return len(c.paints)
}

// Paints returns every paint. The slice must not be modified.
func (c *Catalog) Paints() []Paint {
	return c.paints
}

// Paint returns the paint with the given ID.
func (c *Catalog) Paint(id int) Paint {
	return c.paints[id]
}

// Brands returns the brand names, sorted.
func (c *Catalog) Brands() []string {
	return c.brands
}

// HasBrand reports whether any paint belongs to brand (case-insensitive).
func (c *Catalog) HasBrand(brand string) bool {
	_, ok := c.byBrand[brandKey(brand)]
	return ok
}

// ByBrand returns the brand's paints in catalogue order.
func (c *Catalog) ByBrand(brand string) []Paint {
	ids := c.byBrand[brandKey(brand)]
	out := make([]Paint, len(ids))
	for i, id := range ids {
		out[i] = c.paints[id]
	}
	return out
}

// FindByName returns the first paint of brand whose name contains name,
// case-insensitively, preferring exact matches. Only paints accepted by
// filter are considered; a nil filter accepts all.
func (c *Catalog) FindByName(brand, name string, filter func(Paint) bool) (Paint, bool) {
	want := strings.ToLower(strings.TrimSpace(name))
	if want == "" {
		return Paint{}, false
	}

	var partial *Paint
	for _, id := range c.byBrand[brandKey(brand)] {
		p := c.paints[id]
		if filter != nil && !filter(p) {
			continue
		}
		got := strings.ToLower(p.Name)
		if got == want {
			return p, true
		}
		if partial == nil && strings.Contains(got, want) {
			partial = &c.paints[id]
		}
	}
	if partial != nil {
		return *partial, true
	}
	return Paint{}, false
}

func brandKey(brand string) string {
	return strings.ToLower(strings.TrimSpace(brand))
}
