package cluster

import "runtime"

// Partition backends.
const (
	BackendOpenCV = "opencv"
	BackendGo     = "go"
)

// Params configures extraction. Coverage values are percentages of the
// sampled pixels.
type Params struct {
	MinPixels        int `mapstructure:"min_pixels"`
	MinClusterPixels int `mapstructure:"min_cluster_pixels"`
	K                int `mapstructure:"k"` // 0 picks K from the pixel count

	// k-means
	Backend       string  `mapstructure:"backend"`
	Attempts      int     `mapstructure:"attempts"`
	MaxIterations int     `mapstructure:"max_iterations"`
	Epsilon       float64 `mapstructure:"epsilon"`

	// Perceptual merge: clamp(MergeFactor * mean pairwise ΔE, MergeFloor, MergeCap)
	MergeFactor float64 `mapstructure:"merge_factor"`
	MergeFloor  float64 `mapstructure:"merge_floor"`
	MergeCap    float64 `mapstructure:"merge_cap"`

	// Shadow filter
	ShadowMaxCoverage float64 `mapstructure:"shadow_max_coverage"`
	ShadowMinValue    float64 `mapstructure:"shadow_min_value"`
	ShadowMaxValue    float64 `mapstructure:"shadow_max_value"`
	ShadowDeltaE      float64 `mapstructure:"shadow_delta_e"`
	ShadowValueGap    float64 `mapstructure:"shadow_value_gap"`

	MinConfidence float64 `mapstructure:"min_confidence"`

	// Major/detail split
	FewClusters     int     `mapstructure:"few_clusters"`
	MajorFew        float64 `mapstructure:"major_few"`
	MajorMany       float64 `mapstructure:"major_many"`
	AccentChroma    float64 `mapstructure:"accent_chroma"`
	AccentThreshold float64 `mapstructure:"accent_threshold"`
	DetailFloor     float64 `mapstructure:"detail_floor"`

	// Detail uniqueness against accepted majors
	UniqueHigh          float64 `mapstructure:"unique_high"`
	UniqueMid           float64 `mapstructure:"unique_mid"`
	UniqueLow           float64 `mapstructure:"unique_low"`
	UniqueHighChroma    float64 `mapstructure:"unique_high_chroma"`
	UniqueMidChroma     float64 `mapstructure:"unique_mid_chroma"`
	UniqueCoverageScale float64 `mapstructure:"unique_coverage_scale"`
	UniqueFloor         float64 `mapstructure:"unique_floor"`

	Workers int `mapstructure:"workers"`
}

// DefaultParams returns the default extraction parameters.
func DefaultParams() Params {
	return Params{
		MinPixels:        100,
		MinClusterPixels: 10,

		Backend:       BackendOpenCV,
		Attempts:      3,
		MaxIterations: 100,
		Epsilon:       0.2,

		MergeFactor: 0.5,
		MergeFloor:  5,
		MergeCap:    15,

		ShadowMaxCoverage: 5,
		ShadowMinValue:    0.05,
		ShadowMaxValue:    0.20,
		ShadowDeltaE:      40,
		ShadowValueGap:    0.20,

		MinConfidence: 0.20,

		FewClusters:     3,
		MajorFew:        2.0,
		MajorMany:       3.0,
		AccentChroma:    40,
		AccentThreshold: 1.5,
		DetailFloor:     0.2,

		UniqueHigh:          25,
		UniqueMid:           20,
		UniqueLow:           15,
		UniqueHighChroma:    40,
		UniqueMidChroma:     25,
		UniqueCoverageScale: 1.5,
		UniqueFloor:         10,

		Workers: runtime.NumCPU(),
	}
}

// WithBackend returns a copy using the named partition backend.
func (p Params) WithBackend(backend string) Params {
	p.Backend = backend
	return p
}

// AdaptiveK picks the number of initial clusters from the pixel count.
func AdaptiveK(n int) int {
	switch {
	case n < 5000:
		return 8
	case n < 20000:
		return 10
	case n < 50000:
		return 12
	default:
		return 15
	}
}
