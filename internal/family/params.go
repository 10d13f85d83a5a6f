package family

import "miniscan/pkg/colorutil"

// NamedColor is one entry of the nearest-named-colour palette.
type NamedColor struct {
	Name string
	RGB  colorutil.RGB
}

// Params configures the classifier. The numbers were calibrated against
// Citadel, Vallejo and Army Painter swatches under daylight photography.
type Params struct {
	// Ensemble weights
	HueWeightScale   float64 `mapstructure:"hue_weight_scale"` // × saturation when saturated
	HueWeightLow     float64 `mapstructure:"hue_weight_low"`
	HueSatThreshold  float64 `mapstructure:"hue_sat_threshold"`
	LABWeight        float64 `mapstructure:"lab_weight"`
	NamedWeight      float64 `mapstructure:"named_weight"`
	BlueOverrideSat  float64 `mapstructure:"blue_override_sat"`
	BlueOverrideConf float64 `mapstructure:"blue_override_conf"`

	// Achromatic pre-classification
	AchromaticSat     float64 `mapstructure:"achromatic_sat"`
	DarkAchromaticSat float64 `mapstructure:"dark_achromatic_sat"`
	DarkAchromaticVal float64 `mapstructure:"dark_achromatic_val"`
	ExceptionConf     float64 `mapstructure:"exception_conf"`

	// Hue voter
	GoldChroma      float64 `mapstructure:"gold_chroma"`
	BrownChroma     float64 `mapstructure:"brown_chroma"`
	ShadowValue     float64 `mapstructure:"shadow_value"`
	MinChromaticSat float64 `mapstructure:"min_chromatic_sat"`

	// Colour temperature: score = 0.7·b + 0.3·a
	WarmScore float64 `mapstructure:"warm_score"`
	CoolScore float64 `mapstructure:"cool_score"`

	Palette []NamedColor `mapstructure:"-"`
}

// DefaultParams returns the default classifier calibration.
func DefaultParams() Params {
	return Params{
		// LAB is the most lighting-invariant signal
		HueWeightScale:   20,
		HueWeightLow:     5,
		HueSatThreshold:  0.2,
		LABWeight:        30,
		NamedWeight:      10,
		BlueOverrideSat:  0.05,
		BlueOverrideConf: 0.70,

		AchromaticSat:     0.15,
		DarkAchromaticSat: 0.25,
		DarkAchromaticVal: 0.4,
		ExceptionConf:     0.75,

		GoldChroma:      22,
		BrownChroma:     15,
		ShadowValue:     0.10,
		MinChromaticSat: 0.10,

		WarmScore: 15,
		CoolScore: -15,

		Palette: DefaultPalette(),
	}
}

// DefaultPalette returns the canonical named colours.
func DefaultPalette() []NamedColor {
	return []NamedColor{
		{Name: Pink, RGB: colorutil.RGB{R: 255, G: 192, B: 203}},
		{Name: Red, RGB: colorutil.RGB{R: 255, G: 0, B: 0}},
		{Name: Gold, RGB: colorutil.RGB{R: 255, G: 215, B: 0}},
		{Name: Yellow, RGB: colorutil.RGB{R: 255, G: 255, B: 0}},
		{Name: Green, RGB: colorutil.RGB{R: 0, G: 128, B: 0}},
		{Name: Cyan, RGB: colorutil.RGB{R: 0, G: 255, B: 255}},
		{Name: Blue, RGB: colorutil.RGB{R: 0, G: 0, B: 255}},
		{Name: Purple, RGB: colorutil.RGB{R: 128, G: 0, B: 128}},
		{Name: Brown, RGB: colorutil.RGB{R: 139, G: 69, B: 19}},
		{Name: White, RGB: colorutil.RGB{R: 255, G: 255, B: 255}},
		{Name: Grey, RGB: colorutil.RGB{R: 128, G: 128, B: 128}},
		{Name: Black, RGB: colorutil.RGB{R: 0, G: 0, B: 0}},
	}
}
