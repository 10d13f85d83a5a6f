package catalog

import (
	"sort"

	"miniscan/pkg/colorutil"
)

// Issue is one suspicious catalogue entry.
type Issue struct {
	Index   int    `json:"index"`
	Paint   string `json:"paint"`
	Problem string `json:"problem"`
}

// Stats describes a raw catalogue without changing it.
type Stats struct {
	Total              int            `json:"total"`
	NullNames          int            `json:"null_names"`
	InvalidHex         int            `json:"invalid_hex"`
	ByBrand            map[string]int `json:"by_brand"`
	ByCategory         map[string]int `json:"by_category"`
	ByFamily           map[string]int `json:"by_family"`
	WashesAsOpaque     []Issue        `json:"washes_as_opaque"`
	AchromaticMislabel []Issue        `json:"achromatic_mislabeled"`
}

// Clean reports whether Normalize would change nothing of substance.
func (s Stats) Clean() bool {
	return s.NullNames == 0 && s.InvalidHex == 0 && len(s.WashesAsOpaque) == 0 && len(s.AchromaticMislabel) == 0
}

// TopFamilies returns up to n families ordered by count, then name.
func (s Stats) TopFamilies(n int) []string {
	families := make([]string, 0, len(s.ByFamily))
	for f := range s.ByFamily {
		families = append(families, f)
	}
	sort.Slice(families, func(i, j int) bool {
		a, b := s.ByFamily[families[i]], s.ByFamily[families[j]]
		if a != b {
			return a > b
		}
		return families[i] < families[j]
	})
	if len(families) > n {
		families = families[:n]
	}
	return families
}

// Validate inspects raw records and reports what Normalize would fix.
func Validate(records []Record) Stats {
	st := Stats{
		Total:      len(records),
		ByBrand:    make(map[string]int),
		ByCategory: make(map[string]int),
		ByFamily:   make(map[string]int),
	}

	for i, rec := range records {
		name := nameOf(rec)
		if name == "" {
			st.NullNames++
		}
		st.ByBrand[rec.Brand]++
		st.ByCategory[rec.Category]++
		st.ByFamily[rec.ColorFamily]++

		if name != "" && IsWashName(name) {
			if cat, _ := ParseCategory(rec.Category); !cat.Transparent() {
				st.WashesAsOpaque = append(st.WashesAsOpaque, Issue{Index: i, Paint: name, Problem: "wash stored as " + rec.Category})
			}
		}

		rgb, err := colorutil.ParseHex(rec.Hex)
		if err != nil {
			st.InvalidHex++
			continue
		}
		p := Paint{Family: rec.ColorFamily}
		p.Finish, _ = ParseFinish(rec.Finish)
		p.derive(rgb)
		if fam, ok := achromaticFamily(p); ok {
			st.AchromaticMislabel = append(st.AchromaticMislabel, Issue{Index: i, Paint: name, Problem: rec.ColorFamily + " should be " + fam})
		}
	}
	return st
}
