// Package family names the colour of a cluster ("Red", "Gold/Brass",
// "Gunmetal") by weighted voting across three independent heuristics.
package family

import (
	"log/slog"
	"math"

	"miniscan/internal/metallic"
	"miniscan/pkg/colorutil"
)

// Family labels.
const (
	Red      = "Red"
	Pink     = "Pink"
	Magenta  = "Magenta"
	Purple   = "Purple"
	Blue     = "Blue"
	Cyan     = "Cyan"
	Green    = "Green"
	Yellow   = "Yellow"
	Bone     = "Bone"
	Gold     = "Gold"
	Bronze   = "Bronze"
	Brown    = "Brown"
	White    = "White"
	OffWhite = "Off-White"
	Grey     = "Grey"
	Gunmetal = "Gunmetal"
	Black    = "Black"
	Shadow   = "Shadow"
	Deep     = "Deep Shadow"
	Unknown  = "Unknown"

	GoldBrass    = "Gold/Brass"
	BronzeCopper = "Bronze/Copper"
	SilverSteel  = "Silver/Steel"
	GunmetalIron = "Gunmetal/Iron"
)

// Input is what the classifier needs to know about one cluster.
type Input struct {
	RGB      colorutil.RGB
	HSV      colorutil.HSV
	LAB      colorutil.LAB
	Chroma   float64
	Metallic bool
	Subtype  metallic.Subtype
}

// InputFromRGB fills the colour fields of an Input from a single colour.
func InputFromRGB(c colorutil.RGB) Input {
	lab := c.LAB()
	return Input{RGB: c, HSV: c.HSV(), LAB: lab, Chroma: lab.Chroma()}
}

// Result is a family label with a 0-1 confidence.
type Result struct {
	Family     string             `json:"family"`
	Confidence float64            `json:"confidence"`
	Tally      map[string]float64 `json:"tally,omitempty"`
}

// Classifier is stateless and safe for concurrent use.
type Classifier struct {
	params Params
}

// New creates a classifier.
func New(params Params) *Classifier {
	if len(params.Palette) == 0 {
		params.Palette = DefaultPalette()
	}
	return &Classifier{params: params}
}

// Classify always returns a label; Unknown at zero confidence is the floor.
func (c *Classifier) Classify(in Input) Result {
	if in.Metallic {
		return c.metallicFamily(in)
	}
	if res, ok := c.achromatic(in); ok {
		return res
	}
	return c.Ensemble(in)
}

func (c *Classifier) metallicFamily(in Input) Result {
	switch in.Subtype {
	case metallic.SubtypeGold:
		return Result{Family: GoldBrass, Confidence: 0.95}
	case metallic.SubtypeCopper:
		return Result{Family: BronzeCopper, Confidence: 0.92}
	case metallic.SubtypeSilver:
		return Result{Family: SilverSteel, Confidence: 0.95}
	case metallic.SubtypeGunmetal:
		return Result{Family: GunmetalIron, Confidence: 0.95}
	}

	h, v := in.HSV.H, in.HSV.V
	switch {
	case in.Chroma > 20 && v > 0.65 && h > 35 && h < 65:
		return Result{Family: GoldBrass, Confidence: 0.95}
	case in.Chroma > 20:
		return Result{Family: BronzeCopper, Confidence: 0.90}
	case v > 0.65:
		return Result{Family: SilverSteel, Confidence: 0.95}
	default:
		return Result{Family: GunmetalIron, Confidence: 0.95}
	}
}

// achromatic handles near-neutral colours. Desaturated blues, greens and
// purples keep their hue family.
func (c *Classifier) achromatic(in Input) (Result, bool) {
	p := c.params
	h, s, v := in.HSV.H, in.HSV.S, in.HSV.V
	if !(s < p.AchromaticSat || (s < p.DarkAchromaticSat && v < p.DarkAchromaticVal)) {
		return Result{}, false
	}

	if fam, ok := desaturatedException(h, s, in.Chroma); ok {
		return Result{Family: fam, Confidence: p.ExceptionConf}, true
	}

	switch {
	case v > 0.90:
		return Result{Family: White, Confidence: 0.95}, true
	case v > 0.75:
		return Result{Family: OffWhite, Confidence: 0.85}, true
	case v > 0.60:
		return Result{Family: Grey, Confidence: 0.90}, true
	case v > 0.15:
		return Result{Family: Gunmetal, Confidence: 0.85}, true
	case v > 0.10:
		return Result{Family: Black, Confidence: 0.95}, true
	default:
		return Result{Family: Deep, Confidence: 0.30}, true
	}
}

func desaturatedException(h, s, chroma float64) (string, bool) {
	switch {
	case isBlueHue(h) && s > 0.05 && chroma > 3:
		return Blue, true
	case isGreenHue(h) && s > 0.06 && chroma > 4:
		return Green, true
	case isPurpleHue(h) && s > 0.05 && chroma > 3:
		return Purple, true
	}
	return "", false
}

func isBlueHue(h float64) bool   { return h > 180 && h < 260 }
func isGreenHue(h float64) bool  { return h > 70 && h < 170 }
func isPurpleHue(h float64) bool { return h > 270 && h < 320 }

// Ensemble runs the three voters and returns the weighted winner.
func (c *Classifier) Ensemble(in Input) Result {
	p := c.params
	s := in.HSV.S

	hueWeight := p.HueWeightLow
	if s > p.HueSatThreshold {
		hueWeight = s * p.HueWeightScale
	}

	type vote struct {
		family string
		weight float64
	}
	votes := []vote{
		{c.HueVote(in.HSV, in.Chroma), hueWeight},
		{c.LABVote(in.LAB), p.LABWeight},
		{c.NamedVote(in.RGB), p.NamedWeight},
	}

	tally := make(map[string]float64, len(votes))
	total := 0.0
	for _, v := range votes {
		tally[v.family] += v.weight
		total += v.weight
	}

	// Ties go to the earliest voter.
	winner, best := Unknown, 0.0
	for _, v := range votes {
		if tally[v.family] > best {
			winner, best = v.family, tally[v.family]
		}
	}

	if winner == Grey && s > p.BlueOverrideSat {
		for _, v := range votes {
			if v.family == Blue {
				return Result{Family: Blue, Confidence: p.BlueOverrideConf, Tally: tally}
			}
		}
	}

	if total == 0 {
		return Result{Family: Unknown, Tally: tally}
	}

	slog.Debug("family ensemble", "winner", winner, "tally", tally)
	return Result{Family: winner, Confidence: best / total, Tally: tally}
}

// HueVote classifies by hue band, using value and chroma inside the warm
// bands where hue alone cannot separate red, brown and gold.
func (c *Classifier) HueVote(hsv colorutil.HSV, chroma float64) string {
	p := c.params
	h, s, v := hsv.H, hsv.S, hsv.V

	minSat := p.MinChromaticSat
	if isBlueHue(h) || isGreenHue(h) || isPurpleHue(h) {
		minSat = 0.05
	}

	if s < minSat || chroma < 5 {
		if fam, ok := desaturatedException(h, s, chroma); ok {
			return fam
		}
		switch {
		case v > 0.90:
			return White
		case v < p.ShadowValue:
			return Black
		case v < 0.20 && chroma < 3:
			return Shadow
		default:
			return Grey
		}
	}

	switch {
	case h < 30 || h > 330:
		if h > 20 && h < 30 && v > 0.50 && chroma > 25 && s > 0.40 {
			return Gold
		}
		pink := (s > 0.35 && v > 0.55) || (s < 0.5 && v > 0.8)
		if h < 30 && (h < 20 || !pink) {
			// Chroma separates dark red armour from brown leather.
			if chroma < p.BrownChroma || (s < 0.6 && v < 0.4) {
				return Brown
			}
			return Red
		}
		if pink {
			return Pink
		}
		if h > 300 {
			return Magenta
		}
		return Red
	case h < 70:
		if chroma > p.GoldChroma && v > 0.45 && s > 0.35 {
			if v > 0.50 {
				return Gold
			}
			return Bronze
		}
		return Brown
	case h < 95:
		if (s > 0.50 && v > 0.65) || (s > 0.30 && v > 0.75) {
			return Yellow
		}
		return Bone
	case h < 170:
		return Green
	case h < 190:
		return Cyan
	case h < 260:
		return Blue
	case h < 320:
		if v < 0.6 {
			return Purple
		}
		return Pink
	default:
		return Magenta
	}
}

// LABVote classifies by LAB quadrant after checking the gold, cyan and pink
// signatures.
func (c *Classifier) LABVote(lab colorutil.LAB) string {
	l, a, b := lab.L, lab.A, lab.B

	switch {
	case l > 50 && l < 85 && a > -8 && a < 20 && b > 25:
		return Gold
	case a < -5 && b < -10 && l > 40:
		return Cyan
	case l > 60 && a > 20 && b > -5:
		return Pink
	case math.Abs(a) < 5 && math.Abs(b) < 5:
		return Grey
	case a > math.Abs(b):
		if l > 75 {
			return Pink
		}
		return Red
	case a < -math.Abs(b):
		return Green
	case b > math.Abs(a):
		switch {
		case l < 45:
			// Dark yellow-red is leather and earth, not gold.
			return Brown
		case l > 85:
			return Yellow
		case b > 25 && a > -5:
			return Gold
		case a < 0:
			return Yellow
		default:
			return Gold
		}
	case b < -math.Abs(a):
		return Blue
	}
	return Unknown
}

// NamedVote returns the nearest palette colour by RGB distance.
func (c *Classifier) NamedVote(rgb colorutil.RGB) string {
	best, bestDist := Unknown, math.Inf(1)
	for _, nc := range c.params.Palette {
		dr := float64(rgb.R) - float64(nc.RGB.R)
		dg := float64(rgb.G) - float64(nc.RGB.G)
		db := float64(rgb.B) - float64(nc.RGB.B)
		d := dr*dr + dg*dg + db*db
		if d < bestDist {
			best, bestDist = nc.Name, d
		}
	}
	return best
}
