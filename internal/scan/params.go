package scan

import (
	"runtime"

	"miniscan/internal/cluster"
	"miniscan/internal/family"
	img "miniscan/internal/image"
	"miniscan/internal/match"
	"miniscan/internal/metallic"
	"miniscan/internal/shade"
	"miniscan/internal/stand"
)

// Params gathers the configuration of every pipeline stage.
type Params struct {
	Prepare  img.PrepareParams `mapstructure:"analysis"`
	Stand    stand.Params      `mapstructure:"stand"`
	Cluster  cluster.Params    `mapstructure:"cluster"`
	Metallic metallic.Params   `mapstructure:"metallic"`
	Family   family.Params     `mapstructure:"family"`
	Shade    shade.Params      `mapstructure:"shade"`
	Match    match.Params      `mapstructure:"match"`

	// Brands to build triads for; empty means every catalogue brand.
	Brands []string `mapstructure:"brands"`

	// SkipStand analyses the whole foreground.
	SkipStand bool `mapstructure:"skip_stand"`

	// AnchorSkipBottom is the fraction of rows ignored when placing anchors.
	AnchorSkipBottom float64 `mapstructure:"anchor_skip_bottom"`

	Workers int `mapstructure:"workers"`
}

// DefaultParams returns defaults for the whole pipeline.
func DefaultParams() Params {
	return Params{
		Prepare:          img.DefaultPrepareParams(),
		Stand:            stand.DefaultParams(),
		Cluster:          cluster.DefaultParams(),
		Metallic:         metallic.DefaultParams(),
		Family:           family.DefaultParams(),
		Shade:            shade.DefaultParams(),
		Match:            match.DefaultParams(),
		AnchorSkipBottom: 0.2,
		Workers:          runtime.NumCPU(),
	}
}
