package colorutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRGBToLAB(t *testing.T) {
	tests := []struct {
		name string
		rgb  RGB
		want LAB
	}{
		{name: "white", rgb: RGB{255, 255, 255}, want: LAB{L: 100, A: 0, B: 0}},
		{name: "black", rgb: RGB{0, 0, 0}, want: LAB{L: 0, A: 0, B: 0}},
		{name: "red", rgb: RGB{255, 0, 0}, want: LAB{L: 53.24, A: 80.09, B: 67.20}},
		{name: "mid grey", rgb: RGB{128, 128, 128}, want: LAB{L: 53.59, A: 0, B: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.rgb.LAB()
			assert.InDelta(t, tt.want.L, got.L, 0.5)
			assert.InDelta(t, tt.want.A, got.A, 0.5)
			assert.InDelta(t, tt.want.B, got.B, 0.5)
		})
	}
}

func TestRGBHSV(t *testing.T) {
	hsv := RGB{198, 152, 67}.HSV()
	assert.InDelta(t, 38.9, hsv.H, 0.5)
	assert.InDelta(t, 0.66, hsv.S, 0.01)
	assert.InDelta(t, 0.776, hsv.V, 0.01)

	grey := RGB{50, 50, 50}.HSV()
	assert.Zero(t, grey.S)
	assert.InDelta(t, 50.0/255, grey.V, 1e-9)

	h, s, v := RGB{0, 0, 255}.HSV().OpenCV()
	assert.InDelta(t, 120, h, 1e-9)
	assert.InDelta(t, 255, s, 1e-9)
	assert.InDelta(t, 255, v, 1e-9)
}

func TestDeltaE2000(t *testing.T) {
	a := LAB{L: 50, A: 2.6772, B: -79.7751}
	b := LAB{L: 50, A: 0, B: -82.7485}
	// Reference pair 1 from Sharma et al. (2005).
	assert.InDelta(t, 2.0425, DeltaE2000(a, b), 0.01)

	assert.InDelta(t, 0, DeltaE2000(a, a), 1e-9)
	assert.InDelta(t, DeltaE2000(a, b), DeltaE2000(b, a), 1e-9)
}

func TestChroma(t *testing.T) {
	assert.InDelta(t, 5, LAB{L: 40, A: 3, B: 4}.Chroma(), 1e-9)
	assert.InDelta(t, 0, RGB{90, 90, 90}.LAB().Chroma(), 0.01)
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    RGB
		wantErr bool
	}{
		{name: "with hash", in: "#C6983F", want: RGB{198, 152, 63}},
		{name: "without hash", in: "0a0b0c", want: RGB{10, 11, 12}},
		{name: "shorthand", in: "#fff", want: RGB{255, 255, 255}},
		{name: "garbage", in: "#zzzzzz", wantErr: true},
		{name: "empty", in: "", wantErr: true},
		{name: "five digits", in: "#12345", wantErr: true},
		{name: "seven digits", in: "#1234567", wantErr: true},
		{name: "trailing garbage", in: "12345z", wantErr: true},
		{name: "double hash", in: "##123456", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHex(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidHex)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLABRoundTrip(t *testing.T) {
	for _, c := range []RGB{{198, 152, 67}, {94, 66, 49}, {12, 200, 140}} {
		assert.Equal(t, c, c.LAB().RGB(), c.Hex())
	}
}

func TestHueDistance(t *testing.T) {
	assert.InDelta(t, 20, HueDistance(350, 10), 1e-9)
	assert.InDelta(t, 180, HueDistance(0, 180), 1e-9)
	assert.InDelta(t, 30, HueDistance(40, 10), 1e-9)
}
