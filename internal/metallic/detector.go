// Package metallic decides whether a colour cluster was painted with a
// metallic paint, and which kind, from four independent visual signals.
package metallic

import (
	"math"

	"miniscan/pkg/colorutil"

	"gocv.io/x/gocv"
)

// Subtype identifies the metal a metallic cluster resembles.
type Subtype string

const (
	SubtypeNone     Subtype = ""
	SubtypeGold     Subtype = "gold"
	SubtypeCopper   Subtype = "copper"
	SubtypeSilver   Subtype = "silver"
	SubtypeGunmetal Subtype = "gunmetal"
	SubtypeUnknown  Subtype = "unknown"
)

// Surface is a coarse texture class derived from brightness variation.
type Surface string

const (
	SurfaceSmooth    Surface = "smooth"
	SurfaceTextured  Surface = "textured"
	SurfaceWeathered Surface = "weathered"
	SurfaceMetallic  Surface = "metallic"
)

// Features are the per-cluster measurements the detector votes on.
type Features struct {
	HSV           colorutil.HSV // of the median colour
	Chroma        float64
	BrightnessStd float64
	EdgeDensity   float64 // fraction of strong Laplacian responses, 0-1
}

// Signals records which of the four signals fired.
type Signals struct {
	Specular      bool `json:"specular"`
	Texture       bool `json:"texture"`
	ChromaAnomaly bool `json:"chroma_anomaly"`
	Dark          bool `json:"dark"`
}

// Votes counts the signals that fired.
func (s Signals) Votes() int {
	n := 0
	for _, v := range []bool{s.Specular, s.Texture, s.ChromaAnomaly, s.Dark} {
		if v {
			n++
		}
	}
	return n
}

// Result is the detector verdict for one cluster.
type Result struct {
	Metallic bool    `json:"metallic"`
	Subtype  Subtype `json:"subtype,omitempty"`
	Signals  Signals `json:"signals"`
	Surface  Surface `json:"surface"`
}

// Detector scores clusters. It holds no mutable state and is safe for
// concurrent use.
type Detector struct {
	params Params
}

// NewDetector creates a detector with the given parameters.
func NewDetector(params Params) *Detector {
	return &Detector{params: params}
}

// Params returns the detector's parameters.
func (d *Detector) Params() Params {
	return d.params
}

// Detect measures edge density on the cluster's pixels and classifies it.
// f.EdgeDensity is ignored and recomputed.
func (d *Detector) Detect(pixels []colorutil.RGB, f Features) Result {
	f.EdgeDensity = d.EdgeDensity(pixels)
	return d.Classify(f)
}

// Classify votes on precomputed features.
func (d *Detector) Classify(f Features) Result {
	signals := d.Signals(f)
	res := Result{
		Signals: signals,
		Surface: d.Surface(f.BrightnessStd),
	}
	if signals.Votes() >= d.params.MinVotes {
		res.Metallic = true
		res.Subtype = d.Subtype(f.HSV)
	}
	return res
}

// Signals evaluates the four signals. Only the specular signal depends on
// brightness std, and it only ever switches on as the std grows.
func (d *Detector) Signals(f Features) Signals {
	p := d.params
	anomaly := f.HSV.S < p.AnomalySatMax &&
		f.Chroma > math.Max(p.AnomalyChromaMin, f.HSV.S*p.AnomalySatScale)

	return Signals{
		Specular:      f.BrightnessStd > p.SpecularStd,
		Texture:       f.EdgeDensity > p.EdgeDensity,
		ChromaAnomaly: anomaly,
		Dark:          f.HSV.V < p.DarkValueMax && f.HSV.S < p.DarkSatMax && anomaly,
	}
}

// Votes is Signals(f).Votes().
func (d *Detector) Votes(f Features) int {
	return d.Signals(f).Votes()
}

// Subtype resolves the metal from hue and saturation.
func (d *Detector) Subtype(hsv colorutil.HSV) Subtype {
	p := d.params
	warm := hsv.S > p.WarmSatMin
	switch {
	case warm && hsv.H >= p.GoldHueMin && hsv.H <= p.GoldHueMax:
		return SubtypeGold
	case warm && ((hsv.H >= p.CopperHueMin && hsv.H < p.CopperHueMax) || hsv.H > p.CopperHueWrap):
		return SubtypeCopper
	case hsv.S < p.NeutralSatMax && hsv.V >= p.SilverValueMin:
		return SubtypeSilver
	case hsv.S < p.NeutralSatMax:
		return SubtypeGunmetal
	default:
		return SubtypeUnknown
	}
}

// Surface classifies texture from brightness std.
func (d *Detector) Surface(brightnessStd float64) Surface {
	switch {
	case brightnessStd > d.params.SurfaceMetallic:
		return SurfaceMetallic
	case brightnessStd > d.params.SurfaceWeathered:
		return SurfaceWeathered
	case brightnessStd < d.params.SurfaceSmooth:
		return SurfaceSmooth
	default:
		return SurfaceTextured
	}
}

// EdgeDensity reshapes an evenly spaced subset of pixels into a square grey
// patch and returns the fraction of pixels whose 3x3 Laplacian magnitude
// exceeds EdgeResponse. Fewer than 9 pixels yield 0.
func (d *Detector) EdgeDensity(pixels []colorutil.RGB) float64 {
	side := int(math.Sqrt(float64(len(pixels))))
	side = min(side, d.params.TexturePatch)
	if side < 3 {
		return 0
	}

	n := side * side
	step := float64(len(pixels)) / float64(n)
	gray := make([]byte, n)
	for i := range gray {
		gray[i] = uint8(math.Round(pixels[int(float64(i)*step)].Brightness()))
	}

	patch, err := gocv.NewMatFromBytes(side, side, gocv.MatTypeCV8UC1, gray)
	if err != nil {
		return 0
	}
	defer patch.Close()

	lap := gocv.NewMat()
	defer lap.Close()
	gocv.Laplacian(patch, &lap, gocv.MatTypeCV16S, 3, 1, 0, gocv.BorderDefault)

	abs := gocv.NewMat()
	defer abs.Close()
	gocv.ConvertScaleAbs(lap, &abs, 1, 0)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Threshold(abs, &edges, float32(d.params.EdgeResponse), 255, gocv.ThresholdBinary)

	return float64(gocv.CountNonZero(edges)) / float64(n)
}
