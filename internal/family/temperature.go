package family

import "miniscan/pkg/colorutil"

// Temperature is the perceived warmth of a colour.
type Temperature string

const (
	Warm    Temperature = "warm"
	Cool    Temperature = "cool"
	Neutral Temperature = "neutral"
)

// Temperature scores warmth as 0.7·b + 0.3·a: yellow dominates, red helps.
func (c *Classifier) Temperature(lab colorutil.LAB) Temperature {
	score := 0.7*lab.B + 0.3*lab.A
	switch {
	case score > c.params.WarmScore:
		return Warm
	case score < c.params.CoolScore:
		return Cool
	default:
		return Neutral
	}
}
