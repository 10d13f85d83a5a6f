package metallic

// Params configures metallic detection.
type Params struct {
	// Signal thresholds
	SpecularStd      float64 `mapstructure:"specular_std"`      // brightness std (0-255)
	EdgeResponse     float64 `mapstructure:"edge_response"`     // |Laplacian| counted as an edge
	EdgeDensity      float64 `mapstructure:"edge_density"`      // edge fraction for the texture signal
	TexturePatch     int     `mapstructure:"texture_patch"`     // max side of the sampled square patch
	AnomalySatMax    float64 `mapstructure:"anomaly_sat_max"`   // saturation ceiling for chroma anomaly
	AnomalyChromaMin float64 `mapstructure:"anomaly_chroma_min"`
	AnomalySatScale  float64 `mapstructure:"anomaly_sat_scale"` // chroma must exceed S × scale
	DarkValueMax     float64 `mapstructure:"dark_value_max"`
	DarkSatMax       float64 `mapstructure:"dark_sat_max"`
	MinVotes         int     `mapstructure:"min_votes"`

	// Subtype bands
	GoldHueMin     float64 `mapstructure:"gold_hue_min"`
	GoldHueMax     float64 `mapstructure:"gold_hue_max"`
	CopperHueMin   float64 `mapstructure:"copper_hue_min"`
	CopperHueMax   float64 `mapstructure:"copper_hue_max"`
	CopperHueWrap  float64 `mapstructure:"copper_hue_wrap"` // hues above this are copper too
	WarmSatMin     float64 `mapstructure:"warm_sat_min"`
	NeutralSatMax  float64 `mapstructure:"neutral_sat_max"`
	SilverValueMin float64 `mapstructure:"silver_value_min"`

	// Surface type by brightness std
	SurfaceMetallic  float64 `mapstructure:"surface_metallic"`
	SurfaceWeathered float64 `mapstructure:"surface_weathered"`
	SurfaceSmooth    float64 `mapstructure:"surface_smooth"`
}

// DefaultParams returns default metallic detection parameters.
func DefaultParams() Params {
	return Params{
		// Metallic flecks swing brightness far more than matte paint
		SpecularStd: 25,

		// 3x3 Laplacian on a grey patch; pigment grain produces many edges
		EdgeResponse: 30,
		EdgeDensity:  0.15,
		TexturePatch: 64,

		// Metallics read as low saturation yet carry LAB chroma
		AnomalySatMax:    0.30,
		AnomalyChromaMin: 6,
		AnomalySatScale:  40,

		// Gunmetal is too dark for the specular signal
		DarkValueMax: 0.45,
		DarkSatMax:   0.25,

		MinVotes: 2,

		GoldHueMin:     30,
		GoldHueMax:     60,
		CopperHueMin:   5,
		CopperHueMax:   30,
		CopperHueWrap:  340,
		WarmSatMin:     0.25,
		NeutralSatMax:  0.20,
		SilverValueMin: 0.45,

		SurfaceMetallic:  35,
		SurfaceWeathered: 20,
		SurfaceSmooth:    10,
	}
}
