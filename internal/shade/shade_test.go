package shade

import (
	"testing"

	"miniscan/internal/metallic"

	"github.com/stretchr/testify/assert"
)

func TestAnalyze(t *testing.T) {
	p := DefaultParams()
	tests := []struct {
		name string
		in   Input
		want Type
	}{
		{name: "metallic flag", in: Input{Family: "Blue", Metallic: true, Value: 0.6}, want: Wash},
		{name: "weathered surface", in: Input{Family: "Blue", Surface: metallic.SurfaceWeathered, Value: 0.6}, want: Wash},
		{name: "metal family", in: Input{Family: "Silver/Steel", Value: 0.7}, want: Wash},
		{name: "rust family", in: Input{Family: "Gunmetal/Rust", Value: 0.4}, want: Wash},
		{name: "high texture", in: Input{Family: "Green", BrightnessStd: 50, Value: 0.5}, want: Wash},
		{name: "leather", in: Input{Family: "Brown", Value: 0.4}, want: Wash},
		{name: "bone", in: Input{Family: "Off-White", Value: 0.8}, want: Paint},
		{name: "bone family", in: Input{Family: "Bone", Value: 0.8}, want: Wash},
		{name: "dark", in: Input{Family: "Purple", Value: 0.1}, want: Wash},
		{name: "flat red", in: Input{Family: "Red", BrightnessStd: 8, Value: 0.6, Surface: metallic.SurfaceSmooth}, want: Paint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Analyze(tt.in, p)
			assert.Equal(t, tt.want, got.Type)
			assert.NotEmpty(t, got.Reason)
		})
	}
}
