// Package shade decides whether a detected colour is best reproduced with a
// wash over a basecoat or with layered opaque paint.
package shade

import (
	"strings"

	"miniscan/internal/metallic"
)

// Type is the recommended shading technique.
type Type string

const (
	Wash  Type = "wash"
	Paint Type = "paint"
)

// Params configures the analyser.
type Params struct {
	HighTexture   float64  `mapstructure:"high_texture"` // brightness std
	DarkValue     float64  `mapstructure:"dark_value"`   // median HSV value
	MetalKeywords []string `mapstructure:"metal_keywords"`
	WashKeywords  []string `mapstructure:"wash_keywords"`
}

// DefaultParams returns default shade-type rules.
func DefaultParams() Params {
	return Params{
		HighTexture:   45,
		DarkValue:     0.2,
		MetalKeywords: []string{"silver", "gold", "bronze", "gunmetal", "iron", "rust"},
		WashKeywords: []string{
			"skin", "flesh", "bone",
			"brown", "tan", "leather",
			"gold", "brass", "copper",
		},
	}
}

// Input describes one colour cluster.
type Input struct {
	Family        string
	BrightnessStd float64
	Value         float64 // median HSV value, 0-1
	Metallic      bool
	Surface       metallic.Surface
}

// Decision is the analyser verdict with the rule that produced it.
type Decision struct {
	Type   Type   `json:"type"`
	Reason string `json:"reason"`
}

// Analyze applies the rules in order; the first match wins.
func Analyze(in Input, params Params) Decision {
	family := strings.ToLower(in.Family)

	switch {
	case in.Metallic || in.Surface == metallic.SurfaceMetallic || in.Surface == metallic.SurfaceWeathered:
		return Decision{Type: Wash, Reason: "metallic or weathered surface"}
	case containsAny(family, params.MetalKeywords):
		return Decision{Type: Wash, Reason: "metal family"}
	case in.BrightnessStd > params.HighTexture:
		return Decision{Type: Wash, Reason: "high texture"}
	case containsAny(family, params.WashKeywords):
		return Decision{Type: Wash, Reason: "wash-friendly family"}
	case in.Value < params.DarkValue:
		return Decision{Type: Wash, Reason: "dark"}
	}
	return Decision{Type: Paint, Reason: "flat colour"}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
