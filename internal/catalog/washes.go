package catalog

import "strings"

// FamilyWashes lists recommended washes for one colour family, best first.
type FamilyWashes struct {
	Family string   `mapstructure:"family" yaml:"family"`
	Washes []string `mapstructure:"washes" yaml:"washes"`
}

// WashTable maps colour families to wash names and wash names to each
// brand's own product name. Families are tried in order.
type WashTable struct {
	Families   []FamilyWashes               `mapstructure:"families" yaml:"families"`
	BrandNames map[string]map[string]string `mapstructure:"brand_names" yaml:"brand_names"`
	Universal  []string                     `mapstructure:"universal" yaml:"universal"`
}

// DefaultWashTable returns the built-in recommendations.
func DefaultWashTable() WashTable {
	return WashTable{
		Families: []FamilyWashes{
			{"red", []string{"Carroburg Crimson", "Red Tone", "Reikland Fleshshade"}},
			{"orange", []string{"Reikland Fleshshade", "Seraphim Sepia", "Soft Tone"}},
			{"yellow", []string{"Casandora Yellow", "Seraphim Sepia", "Soft Tone"}},
			{"brown", []string{"Agrax Earthshade", "Seraphim Sepia", "Strong Tone"}},
			{"green", []string{"Biel-Tan Green", "Athonian Camoshade", "Green Tone"}},
			{"cyan", []string{"Coelia Greenshade", "Drakenhof Nightshade", "Blue Tone"}},
			{"blue", []string{"Drakenhof Nightshade", "Blue Tone", "Nuln Oil"}},
			{"purple", []string{"Druchii Violet", "Purple Tone", "Drakenhof Nightshade"}},
			{"pink", []string{"Carroburg Crimson", "Druchii Violet", "Red Tone"}},
			{"flesh", []string{"Reikland Fleshshade", "Flesh Wash", "Soft Tone"}},
			{"black", []string{"Nuln Oil", "Dark Tone", "Nuln Oil Gloss"}},
			{"grey", []string{"Nuln Oil", "Dark Tone", "Agrax Earthshade"}},
			{"white", []string{"Nuln Oil", "Agrax Earthshade", "Seraphim Sepia"}},
			{"gold", []string{"Reikland Fleshshade", "Agrax Earthshade", "Seraphim Sepia"}},
			{"silver", []string{"Nuln Oil", "Dark Tone", "Agrax Earthshade"}},
			{"bronze", []string{"Agrax Earthshade", "Reikland Fleshshade", "Strong Tone"}},
			{"copper", []string{"Agrax Earthshade", "Reikland Fleshshade", "Strong Tone"}},
			{"bone", []string{"Seraphim Sepia", "Agrax Earthshade", "Soft Tone"}},
		},
		BrandNames: map[string]map[string]string{
			"Vallejo": {
				"Carroburg Crimson":    "Red Shade",
				"Reikland Fleshshade":  "Flesh Wash",
				"Casandora Yellow":     "Yellow Shade",
				"Seraphim Sepia":       "Sepia Shade",
				"Agrax Earthshade":     "Umber Shade",
				"Biel-Tan Green":       "Green Shade",
				"Athonian Camoshade":   "Green Shade",
				"Coelia Greenshade":    "Green Shade",
				"Drakenhof Nightshade": "Blue Shade",
				"Druchii Violet":       "Violet Shade",
				"Nuln Oil":             "Black Shade",
				"Dark Tone":            "Black Shade",
				"Soft Tone":            "Sepia Shade",
				"Strong Tone":          "Umber Shade",
				"Blue Tone":            "Blue Shade",
				"Green Tone":           "Green Shade",
				"Red Tone":             "Red Shade",
				"Purple Tone":          "Violet Shade",
			},
			"Army Painter": {
				"Carroburg Crimson":    "Red Tone",
				"Reikland Fleshshade":  "Flesh Wash",
				"Casandora Yellow":     "Soft Tone",
				"Seraphim Sepia":       "Soft Tone",
				"Agrax Earthshade":     "Strong Tone",
				"Biel-Tan Green":       "Green Tone",
				"Athonian Camoshade":   "Military Shader",
				"Coelia Greenshade":    "Green Tone",
				"Drakenhof Nightshade": "Blue Tone",
				"Druchii Violet":       "Purple Tone",
				"Nuln Oil":             "Dark Tone",
				"Nuln Oil Gloss":       "Dark Tone",
			},
		},
		Universal: []string{"Nuln Oil", "Agrax Earthshade"},
	}
}

// ForFamily returns up to limit generic wash names for family. Composite
// labels such as "Gold/Brass" match on any contained key.
func (t WashTable) ForFamily(family string, limit int) []string {
	f := strings.ToLower(strings.TrimSpace(family))
	washes := t.Universal
	if f != "" {
		for _, fw := range t.Families {
			if strings.Contains(f, fw.Family) || strings.Contains(fw.Family, f) {
				washes = fw.Washes
				break
			}
		}
	}
	if limit > 0 && len(washes) > limit {
		washes = washes[:limit]
	}
	return washes
}

// BrandName translates a generic wash name into brand's product name.
func (t WashTable) BrandName(generic, brand string) string {
	for b, names := range t.BrandNames {
		if !strings.EqualFold(b, brand) {
			continue
		}
		if name, ok := names[generic]; ok {
			return name
		}
		// Keys read through viper arrive lowercased.
		for g, name := range names {
			if strings.EqualFold(g, generic) {
				return name
			}
		}
	}
	return generic
}

// Recommend returns brand's candidate wash names for family, best first,
// followed by the universal washes.
func (t WashTable) Recommend(family, brand string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(generic string) {
		name := t.BrandName(generic, brand)
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	for _, w := range t.ForFamily(family, 0) {
		add(w)
	}
	for _, w := range t.Universal {
		add(w)
	}
	return out
}
