package match

// Params configures paint matching.
type Params struct {
	// Nearest LAB neighbours fetched from the index before ΔE2000 ranking.
	CandidatePool int `mapstructure:"candidate_pool"`
	Alternatives  int `mapstructure:"alternatives"`

	// Context adjustments added to ΔE2000 when ranking.
	MetallicMismatchPenalty float64  `mapstructure:"metallic_mismatch_penalty"` // plain target, metallic paint
	MetallicBonus           float64  `mapstructure:"metallic_bonus"`            // metallic target, metallic paint
	NonMetallicPenalty      float64  `mapstructure:"non_metallic_penalty"`      // metallic target, plain paint
	MetallicKeywords        []string `mapstructure:"metallic_keywords"`

	// Triad construction
	LightnessOffset  float64 `mapstructure:"lightness_offset"`
	LayerCap         float64 `mapstructure:"layer_cap"`
	HighlightCap     float64 `mapstructure:"highlight_cap"`
	MinLightnessStep float64 `mapstructure:"min_lightness_step"`
	HueTolerance     float64 `mapstructure:"hue_tolerance"` // degrees
}

// DefaultParams returns the default matching parameters.
func DefaultParams() Params {
	return Params{
		CandidatePool: 24,
		Alternatives:  3,

		MetallicMismatchPenalty: 100,
		MetallicBonus:           30,
		NonMetallicPenalty:      50,
		MetallicKeywords: []string{
			"silver", "steel", "gold", "bronze", "metal", "retributor", "leadbelcher", "iron",
		},

		LightnessOffset:  15,
		LayerCap:         95,
		HighlightCap:     98,
		MinLightnessStep: 5,
		HueTolerance:     30,
	}
}
