package stand

import "miniscan/pkg/colorutil"

// Band is an HSV range (hue in degrees, saturation/value 0-1) of a common
// base material.
type Band struct {
	Name string        `mapstructure:"name"`
	Min  colorutil.HSV `mapstructure:"min"`
	Max  colorutil.HSV `mapstructure:"max"`
}

// Params configures stand detection. Every threshold is a tuned starting
// calibration, not a physical constant.
type Params struct {
	// Geometric search zone: bottom fraction of the subject bounding box.
	BottomZone float64 `mapstructure:"bottom_zone"`

	// Seed validation
	MinRegularity float64 `mapstructure:"min_regularity"` // area / bbox area
	MinAspect     float64 `mapstructure:"min_aspect"`     // bbox width / height
	MinWidthFrac  float64 `mapstructure:"min_width_frac"` // bbox width / subject width

	// Directional growth
	SafetyMargin  int `mapstructure:"safety_margin"` // pixels above the seed top
	MaxIterations int `mapstructure:"max_iterations"`

	// Colour-band exclusion only applies below this fraction of the bounding box.
	ExclusionZoneTop float64 `mapstructure:"exclusion_zone_top"`
	Bands            []Band  `mapstructure:"bands"`

	// Cleanup
	CloseKernel int `mapstructure:"close_kernel"`
}

// DefaultParams returns default stand detection parameters.
// These are tuned for miniatures photographed upright on round or square bases.
func DefaultParams() Params {
	return Params{
		// 30-70% of the height reaches the legs; 15% only sees the base rim
		BottomZone: 0.15,

		MinRegularity: 0.3,
		MinAspect:     1.2,  // bases are wide, legs are tall
		MinWidthFrac:  0.15, // a base spans a good part of the frame

		SafetyMargin:  40,
		MaxIterations: 15,

		ExclusionZoneTop: 0.6,
		Bands:            DefaultBands(),

		CloseKernel: 5,
	}
}

// DefaultBands returns the common base materials.
func DefaultBands() []Band {
	return []Band{
		{Name: "stone_grey", Min: colorutil.HSV{H: 0, S: 0, V: 0.3}, Max: colorutil.HSV{H: 360, S: 0.3, V: 0.6}},
		{Name: "dirt_brown", Min: colorutil.HSV{H: 18, S: 0.3, V: 0.2}, Max: colorutil.HSV{H: 43.2, S: 0.7, V: 0.5}},
		{Name: "grass_green", Min: colorutil.HSV{H: 90, S: 0.4, V: 0.2}, Max: colorutil.HSV{H: 126, S: 0.9, V: 0.5}},
		{Name: "sand_tan", Min: colorutil.HSV{H: 36, S: 0.2, V: 0.5}, Max: colorutil.HSV{H: 54, S: 0.5, V: 0.8}},
		{Name: "black_base", Min: colorutil.HSV{H: 0, S: 0, V: 0}, Max: colorutil.HSV{H: 360, S: 0.3, V: 0.15}},
	}
}

// WithoutBands returns a copy of params with colour-band exclusion disabled.
func (p Params) WithoutBands() Params {
	p.Bands = nil
	return p
}

// WithSafetyMargin returns a copy of params with a different safety margin.
func (p Params) WithSafetyMargin(px int) Params {
	p.SafetyMargin = px
	return p
}
