// Package colorutil provides the colour-space conversions shared by the
// analysis and matching packages: RGB, CIE LAB, HSV, chroma and Delta-E 2000.
package colorutil

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrInvalidHex is returned when a string is not a #RRGGBB colour.
var ErrInvalidHex = errors.New("invalid hex colour")

// colorful.Hex scans with fmt.Sscanf and accepts trailing or short input.
var hexPattern = regexp.MustCompile(`^#?([0-9a-fA-F]{6}|[0-9a-fA-F]{3})$`)

// RGB is an 8-bit sRGB colour.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// LAB is a CIE L*a*b* colour (D65). L is 0-100, a and b roughly -128..127.
type LAB struct {
	L float64 `json:"l"`
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// HSV holds hue in degrees (0-360) and saturation/value normalised to 0-1.
type HSV struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	V float64 `json:"v"`
}

// Colorful returns the go-colorful representation of c.
func (c RGB) Colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// LAB converts c to CIE LAB on the conventional 0-100 lightness scale.
func (c RGB) LAB() LAB {
	l, a, b := c.Colorful().Lab()
	return LAB{L: l * 100, A: a * 100, B: b * 100}
}

// HSV converts c to normalised HSV.
func (c RGB) HSV() HSV {
	h, s, v := RGBToHSV(float64(c.R), float64(c.G), float64(c.B))
	return HSV{H: h * 2, S: s / 255, V: v / 255}
}

// Hex formats c as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Brightness is the mean of the three channels (0-255).
func (c RGB) Brightness() float64 {
	return (float64(c.R) + float64(c.G) + float64(c.B)) / 3
}

// Chroma is the colourfulness sqrt(a²+b²).
func (l LAB) Chroma() float64 {
	return math.Hypot(l.A, l.B)
}

// Colorful returns the go-colorful colour for l. The result may be outside
// the sRGB gamut; use Clamped before rendering it.
func (l LAB) Colorful() colorful.Color {
	return colorful.Lab(l.L/100, l.A/100, l.B/100)
}

// RGB converts l back to sRGB, clamping out-of-gamut values.
func (l LAB) RGB() RGB {
	c := l.Colorful().Clamped()
	r, g, b := c.RGB255()
	return RGB{R: r, G: g, B: b}
}

// OpenCV returns h, s, v on OpenCV's 8-bit scale (H 0-180, S and V 0-255).
func (h HSV) OpenCV() (float64, float64, float64) {
	return h.H / 2, h.S * 255, h.V * 255
}

// DeltaE2000 returns the CIEDE2000 colour difference between two LAB colours.
func DeltaE2000(a, b LAB) float64 {
	return a.Colorful().DistanceCIEDE2000(b.Colorful()) * 100
}

// HueDistance returns the angular distance between two hues in degrees (0-180).
func HueDistance(a, b float64) float64 {
	d := math.Abs(math.Mod(a-b, 360))
	if d > 180 {
		d = 360 - d
	}
	return d
}

// ParseHex parses #rrggbb or rrggbb (case-insensitive). Shorthand #rgb is
// accepted as well.
func ParseHex(s string) (RGB, error) {
	s = strings.TrimSpace(s)
	if !hexPattern.MatchString(s) {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(strings.ToLower(s))
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	r, g, b := c.RGB255()
	return RGB{R: r, G: g, B: b}, nil
}

// RGBToHSV converts RGB (0-255) to HSV (OpenCV convention: H 0-180, S 0-255, V 0-255).
func RGBToHSV(r, g, b float64) (h, s, v float64) {
	r /= 255.0
	g /= 255.0
	b /= 255.0

	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	diff := maxC - minC

	v = maxC * 255.0

	if maxC == 0 {
		s = 0
	} else {
		s = (diff / maxC) * 255.0
	}

	if diff == 0 {
		h = 0
	} else if maxC == r {
		h = 60 * math.Mod((g-b)/diff, 6)
	} else if maxC == g {
		h = 60 * ((b-r)/diff + 2)
	} else {
		h = 60 * ((r-g)/diff + 4)
	}

	if h < 0 {
		h += 360
	}

	h = h / 2 // OpenCV's 0-180 range

	return h, s, v
}
