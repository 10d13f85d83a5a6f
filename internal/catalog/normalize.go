package catalog

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"miniscan/pkg/colorutil"
)

// DefaultHex replaces missing or malformed colours.
const DefaultHex = "#808080"

// Record is a raw catalogue entry as found in JSON or the database. Name is
// a pointer so that an explicit null can be told apart from a missing key.
type Record struct {
	Name         *string  `json:"name"`
	Brand        string   `json:"brand"`
	Hex          string   `json:"hex"`
	Category     string   `json:"category"`
	Finish       string   `json:"finish"`
	Transparency float64  `json:"transparency"`
	ColorFamily  string   `json:"color_family"`
	Tags         []string `json:"tags,omitempty"`
}

// RecordOf converts a paint back to its raw form.
func RecordOf(p Paint) Record {
	name := p.Name
	return Record{
		Name:         &name,
		Brand:        p.Brand,
		Hex:          p.Hex,
		Category:     string(p.Category),
		Finish:       string(p.Finish),
		Transparency: p.Transparency,
		ColorFamily:  p.Family,
		Tags:         p.Tags,
	}
}

// Fix kinds reported by Normalize.
const (
	FixInvalidHex      = "invalid_hex"
	FixNullName        = "null_name"
	FixWrongCategory   = "wrong_category"
	FixTransparency    = "transparency"
	FixColorFamily     = "color_family"
	FixUnknownCategory = "unknown_category"
	FixUnknownFinish   = "unknown_finish"
)

// Fix records one correction applied to a record.
type Fix struct {
	Index int    `json:"index"`
	Paint string `json:"paint"`
	Kind  string `json:"kind"`
	From  string `json:"from"`
	To    string `json:"to"`
}

// Report summarises the corrections made while normalising.
type Report struct {
	Total  int            `json:"total"`
	Counts map[string]int `json:"counts"`
	Fixes  []Fix          `json:"fixes"`
}

// TotalFixes returns the number of corrections.
func (r Report) TotalFixes() int {
	return len(r.Fixes)
}

func (r *Report) add(f Fix) {
	r.Fixes = append(r.Fixes, f)
	r.Counts[f.Kind]++
}

// KnownWashes lists product names that are washes whatever their metadata
// says.
var KnownWashes = map[string]bool{
	// Citadel
	"nuln oil": true, "agrax earthshade": true, "reikland fleshshade": true, "drakenhof nightshade": true,
	"biel-tan green": true, "carroburg crimson": true, "seraphim sepia": true, "casandora yellow": true,
	"fuegan orange": true, "druchii violet": true, "coelia greenshade": true, "athonian camoshade": true,
	"nuln oil gloss": true, "agrax earthshade gloss": true, "reikland fleshshade gloss": true,
	// Army Painter
	"red tone": true, "blue tone": true, "green tone": true, "dark tone": true, "strong tone": true,
	"soft tone": true, "flesh wash": true, "purple tone": true, "light tone": true, "military shader": true,
	"quickshade wash": true, "dark quickshade": true, "strong quickshade": true, "soft quickshade": true,
	// Vallejo
	"red wash": true, "blue wash": true, "green wash": true, "black wash": true, "sepia wash": true,
	"umber shade": true, "oiled earth": true, "dark grey wash": true,
}

// WashKeywords mark a wash when they appear as a whole word in the name.
var WashKeywords = []string{"wash", "shade", "shader", "tone", "ink", "glaze", "quickshade"}

// achromaticFamilies are left alone by the achromatic correction.
var achromaticFamilies = map[string]bool{
	"grey": true, "gray": true, "black": true, "white": true, "silver": true, "gunmetal": true,
}

// Normalize turns raw records into paints, applying deterministic upgrade
// rules instead of dropping bad entries.
func Normalize(records []Record) ([]Paint, Report) {
	report := Report{Total: len(records), Counts: make(map[string]int)}
	paints := make([]Paint, 0, len(records))

	for i, rec := range records {
		p := Paint{
			Brand:        strings.TrimSpace(rec.Brand),
			Transparency: clamp01(rec.Transparency),
			Family:       strings.ToLower(strings.TrimSpace(rec.ColorFamily)),
			Tags:         rec.Tags,
		}
		if p.Brand == "" {
			p.Brand = "Unknown"
		}

		rgb, err := colorutil.ParseHex(rec.Hex)
		if err != nil {
			rgb, _ = colorutil.ParseHex(DefaultHex)
			report.add(Fix{Index: i, Kind: FixInvalidHex, From: rec.Hex, To: DefaultHex})
		}
		p.derive(rgb)

		p.Name = nameOf(rec)
		if p.Name == "" {
			family := p.Family
			if family == "" {
				family = "unknown"
			}
			p.Name = fmt.Sprintf("%s %s (%s)", p.Brand, titleCase(family), p.Hex)
			report.add(Fix{Index: i, Paint: p.Name, Kind: FixNullName, To: p.Name})
		}

		if cat, ok := ParseCategory(rec.Category); ok {
			p.Category = cat
		} else {
			p.Category = CategoryLayer
			report.add(Fix{Index: i, Paint: p.Name, Kind: FixUnknownCategory, From: rec.Category, To: string(p.Category)})
		}

		if fin, ok := ParseFinish(rec.Finish); ok {
			p.Finish = fin
		} else {
			p.Finish = FinishMatte
			if p.Category == CategoryMetallic {
				p.Finish = FinishMetallic
			}
			if rec.Finish != "" {
				report.add(Fix{Index: i, Paint: p.Name, Kind: FixUnknownFinish, From: rec.Finish, To: string(p.Finish)})
			}
		}

		if IsWashName(p.Name) {
			if !p.Category.Transparent() {
				report.add(Fix{Index: i, Paint: p.Name, Kind: FixWrongCategory, From: string(p.Category), To: string(CategoryWash)})
				p.Category = CategoryWash
			}
			if p.Transparency < 0.5 {
				report.add(Fix{Index: i, Paint: p.Name, Kind: FixTransparency, From: fmt.Sprintf("%.2f", p.Transparency), To: "0.85"})
				p.Transparency = 0.85
			}
		}

		if fam, ok := achromaticFamily(p); ok {
			report.add(Fix{Index: i, Paint: p.Name, Kind: FixColorFamily, From: p.Family, To: fam})
			p.Family = fam
		}

		paints = append(paints, p)
	}

	if n := report.TotalFixes(); n > 0 {
		slog.Info("catalogue normalised", "paints", len(paints), "fixes", n)
	}
	return paints, report
}

// IsWashName reports whether a product name identifies a wash.
func IsWashName(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	if KnownWashes[lower] {
		return true
	}
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '-'
	})
	for _, w := range words {
		for _, kw := range WashKeywords {
			if w == kw {
				return true
			}
		}
	}
	return false
}

// achromaticFamily returns the corrected family for a near-neutral paint
// labelled with a chromatic family.
func achromaticFamily(p Paint) (string, bool) {
	if p.HSV.S >= 0.12 || achromaticFamilies[p.Family] || p.IsMetallic() {
		return "", false
	}
	switch {
	case p.HSV.V < 0.15:
		return "black", true
	case p.HSV.V > 0.85:
		return "white", true
	default:
		return "grey", true
	}
}

func nameOf(rec Record) string {
	if rec.Name == nil {
		return ""
	}
	name := strings.TrimSpace(*rec.Name)
	switch strings.ToLower(name) {
	case "null", "none":
		return ""
	}
	return name
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}
