// Package match resolves detected colours to catalogue paints and builds
// base/layer/shade/highlight triads per brand.
package match

import (
	"errors"
	"log/slog"
	"math"
	"sort"
	"strings"

	"miniscan/internal/catalog"
	"miniscan/pkg/colorutil"
)

// ErrNoMatch is returned when the catalogue has no opaque paint at all.
var ErrNoMatch = errors.New("no opaque paint in catalogue")

// Target is a detected colour to be matched.
type Target struct {
	LAB      colorutil.LAB
	Metallic bool
	Family   string
}

// Match is a paint with its ΔE2000 distance to the target colour.
// Alternatives are measured against Paint, not the target.
type Match struct {
	Paint        catalog.Paint `json:"paint"`
	DeltaE       float64       `json:"delta_e"`
	Alternatives []Match       `json:"alternatives,omitempty"`
}

// Triad is the painting recipe for one colour in one brand. Any role may be
// nil when the catalogue has nothing suitable.
type Triad struct {
	Brand     string `json:"brand"`
	Base      *Match `json:"base"`
	Layer     *Match `json:"layer,omitempty"`
	Shade     *Match `json:"shade,omitempty"`
	Highlight *Match `json:"highlight,omitempty"`
}

// Roles returns the filled roles in recipe order.
func (t Triad) Roles() []Role {
	var out []Role
	for _, r := range []Role{
		{"base", t.Base},
		{"layer", t.Layer},
		{"shade", t.Shade},
		{"highlight", t.Highlight},
	} {
		if r.Match != nil {
			out = append(out, r)
		}
	}
	return out
}

// Role names one paint of a triad.
type Role struct {
	Name  string
	Match *Match
}

// Matcher answers base, triad and alternative queries against an Index. It
// is safe for concurrent use.
type Matcher struct {
	index  *Index
	washes catalog.WashTable
	params Params
}

// NewMatcher creates a matcher.
func NewMatcher(index *Index, washes catalog.WashTable, params Params) *Matcher {
	if params.CandidatePool <= 0 {
		params.CandidatePool = DefaultParams().CandidatePool
	}
	return &Matcher{index: index, washes: washes, params: params}
}

// Index returns the underlying index.
func (m *Matcher) Index() *Index {
	return m.index
}

// rank returns the candidate pool of the first non-empty fallback partition,
// ordered by adjusted score. Only opaque paints are ever considered.
func (m *Matcher) rank(t Target, brand string) ([]Match, error) {
	if !m.index.HasOpaque() {
		return nil, ErrNoMatch
	}

	tex := textureOf(t.Metallic)
	chain := []partKey{
		{brand, tex},
		{"", tex},
		{brand, anyTexture},
		{"", anyTexture},
	}

	var part *partition
	for i, k := range chain {
		if part = m.index.opaquePartition(k.brand, k.texture); part != nil {
			if i > 0 {
				slog.Debug("base match fell back", "brand", brand, "metallic", t.Metallic, "step", i)
			}
			break
		}
	}

	ids := part.nearest(t.LAB, m.params.CandidatePool)
	type scored struct {
		Match
		score float64
	}
	ranked := make([]scored, len(ids))
	for i, id := range ids {
		p := m.index.catalog.Paint(id)
		d := colorutil.DeltaE2000(t.LAB, p.LAB)
		ranked[i] = scored{Match: Match{Paint: p, DeltaE: d}, score: d + m.adjustment(t, p)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score < ranked[j].score
		}
		return ranked[i].Paint.ID < ranked[j].Paint.ID
	})

	out := make([]Match, len(ranked))
	for i, r := range ranked {
		out[i] = r.Match
	}
	return out, nil
}

// adjustment biases ranking towards paints whose finish suits the target.
func (m *Matcher) adjustment(t Target, p catalog.Paint) float64 {
	metallicLike := p.IsMetallic() || m.metallicName(p.Name)
	switch {
	case !t.Metallic && metallicLike:
		return m.params.MetallicMismatchPenalty
	case t.Metallic && metallicLike:
		return -m.params.MetallicBonus
	case t.Metallic:
		return m.params.NonMetallicPenalty
	}
	return 0
}

func (m *Matcher) metallicName(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range m.params.MetallicKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// Base returns the best opaque paint for t, preferring brand and the
// target's finish.
func (m *Matcher) Base(t Target, brand string) (Match, error) {
	ranked, err := m.rank(t, brand)
	if err != nil {
		return Match{}, err
	}
	return ranked[0], nil
}

// Alternatives returns up to n paints of brand closest to p by ΔE2000. Only
// paints of p's kind qualify: washes for a wash, metallics for a metallic,
// other opaque paints otherwise. p itself is never returned.
func (m *Matcher) Alternatives(p catalog.Paint, brand string, n int) []Match {
	if n <= 0 {
		return nil
	}
	kind := kindOf(p)
	var out []Match
	for _, c := range m.index.catalog.ByBrand(brand) {
		if c.ID == p.ID || kindOf(c) != kind {
			continue
		}
		out = append(out, Match{Paint: c, DeltaE: colorutil.DeltaE2000(p.LAB, c.LAB)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DeltaE != out[j].DeltaE {
			return out[i].DeltaE < out[j].DeltaE
		}
		return out[i].Paint.ID < out[j].Paint.ID
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

type paintKind int

const (
	opaqueKind paintKind = iota
	metallicKind
	washKind
)

func kindOf(p catalog.Paint) paintKind {
	switch {
	case p.IsWash():
		return washKind
	case p.IsMetallic():
		return metallicKind
	}
	return opaqueKind
}

// Triad builds the full recipe for t in brand.
func (m *Matcher) Triad(t Target, brand string) (Triad, error) {
	ranked, err := m.rank(t, brand)
	if err != nil {
		return Triad{}, err
	}

	base := ranked[0]
	triad := Triad{Brand: brand, Base: &base}

	if layer, ok := m.lighter(base.Paint, m.params.LayerCap); ok {
		layer.DeltaE = colorutil.DeltaE2000(t.LAB, layer.Paint.LAB)
		triad.Layer = &layer
		if hl, ok := m.lighter(layer.Paint, m.params.HighlightCap); ok {
			hl.DeltaE = colorutil.DeltaE2000(t.LAB, hl.Paint.LAB)
			triad.Highlight = &hl
		}
	}

	if shade, ok := m.Shade(t, brand); ok {
		triad.Shade = &shade
	}

	for _, r := range triad.Roles() {
		r.Match.Alternatives = m.Alternatives(r.Match.Paint, brand, m.params.Alternatives)
	}
	return triad, nil
}

// lighter picks the paint of from's brand whose lightness is closest to
// min(limit, from.L+offset) while exceeding from.L by at least the minimum
// step. Same family beats similar hue; same finish beats any.
func (m *Matcher) lighter(from catalog.Paint, limit float64) (Match, bool) {
	p := m.params
	target := math.Min(limit, from.LAB.L+p.LightnessOffset)

	var family, hue, familyAny, hueAny []catalog.Paint
	for _, c := range m.siblings(from) {
		if c.LAB.L < from.LAB.L+p.MinLightnessStep {
			continue
		}
		sameFamily := from.Family != "" && strings.EqualFold(c.Family, from.Family)
		sameHue := colorutil.HueDistance(c.HSV.H, from.HSV.H) <= p.HueTolerance
		sameFinish := c.IsMetallic() == from.IsMetallic()
		switch {
		case sameFamily && sameFinish:
			family = append(family, c)
		case sameHue && sameFinish:
			hue = append(hue, c)
		case sameFamily:
			familyAny = append(familyAny, c)
		case sameHue:
			hueAny = append(hueAny, c)
		}
	}

	for _, group := range [][]catalog.Paint{family, hue, familyAny, hueAny} {
		if len(group) == 0 {
			continue
		}
		best := group[0]
		for _, c := range group[1:] {
			if math.Abs(c.LAB.L-target) < math.Abs(best.LAB.L-target) {
				best = c
			}
		}
		return Match{Paint: best}, true
	}
	return Match{}, false
}

// siblings are the opaque paints of from's brand other than from.
func (m *Matcher) siblings(from catalog.Paint) []catalog.Paint {
	var out []catalog.Paint
	for _, c := range m.index.catalog.ByBrand(from.Brand) {
		if c.ID != from.ID && c.IsOpaque() {
			out = append(out, c)
		}
	}
	return out
}

// Shade resolves the recommended wash for t's family in brand. It falls
// back to the closest wash of the brand, then to the closest wash overall.
func (m *Matcher) Shade(t Target, brand string) (Match, bool) {
	cat := m.index.catalog
	for _, name := range m.washes.Recommend(t.Family, brand) {
		if p, ok := cat.FindByName(brand, name, catalog.Paint.IsWash); ok {
			return Match{Paint: p, DeltaE: colorutil.DeltaE2000(t.LAB, p.LAB)}, true
		}
	}

	for _, part := range []*partition{m.index.washPartition(brand), m.index.washPartition("")} {
		if ids := part.nearest(t.LAB, 1); len(ids) > 0 {
			p := cat.Paint(ids[0])
			return Match{Paint: p, DeltaE: colorutil.DeltaE2000(t.LAB, p.LAB)}, true
		}
	}
	return Match{}, false
}
