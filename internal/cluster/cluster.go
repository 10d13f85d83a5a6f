// Package cluster groups an image's pixels into perceptually distinct
// colours and turns them into classified colour entries.
package cluster

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"miniscan/internal/metallic"
	"miniscan/pkg/colorutil"
)

// Cluster is a group of samples with its summary statistics. Values are
// never modified after construction; merging builds new clusters.
type Cluster struct {
	Coverage      float64       `json:"coverage"` // percent of all samples
	RGB           colorutil.RGB `json:"rgb"`      // median
	LAB           colorutil.LAB `json:"lab"`      // median
	HSV           colorutil.HSV `json:"hsv"`      // of the median RGB
	MeanLAB       colorutil.LAB `json:"mean_lab"`
	StdLAB        colorutil.LAB `json:"std_lab"`
	Chroma        float64       `json:"chroma"`
	BrightnessStd float64       `json:"brightness_std"`
	Indices       []int         `json:"-"` // into the sample slice, ascending
}

// Size is the number of member samples.
func (c Cluster) Size() int {
	return len(c.Indices)
}

// Pixels returns the member samples.
func (c Cluster) Pixels(samples []colorutil.RGB) []colorutil.RGB {
	out := make([]colorutil.RGB, len(c.Indices))
	for i, idx := range c.Indices {
		out[i] = samples[idx]
	}
	return out
}

// Label is what a Classifier says about a cluster.
type Label struct {
	Family     string           `json:"family"`
	Confidence float64          `json:"confidence"`
	Metallic   bool             `json:"metallic"`
	Subtype    metallic.Subtype `json:"metallic_subtype,omitempty"`
	Surface    metallic.Surface `json:"surface,omitempty"`
}

// Classifier labels clusters. Implementations must be safe for concurrent
// use and must always return a label.
type Classifier interface {
	Classify(c Cluster, pixels []colorutil.RGB) Label
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(c Cluster, pixels []colorutil.RGB) Label

// Classify calls f.
func (f ClassifierFunc) Classify(c Cluster, pixels []colorutil.RGB) Label {
	return f(c, pixels)
}

// Entry is a classified colour of the final result.
type Entry struct {
	Cluster
	Label
	IsDetail bool `json:"is_detail"`
}

// newCluster computes the statistics of the samples at indices. lab holds
// the LAB value of every sample.
func newCluster(samples []colorutil.RGB, lab []colorutil.LAB, indices []int) Cluster {
	n := len(indices)
	r := make([]float64, n)
	g := make([]float64, n)
	b := make([]float64, n)
	l := make([]float64, n)
	la := make([]float64, n)
	lb := make([]float64, n)
	brightness := make([]float64, n)

	for i, idx := range indices {
		s := samples[idx]
		r[i], g[i], b[i] = float64(s.R), float64(s.G), float64(s.B)
		brightness[i] = s.Brightness()
		c := lab[idx]
		l[i], la[i], lb[i] = c.L, c.A, c.B
	}

	c := Cluster{Indices: append([]int(nil), indices...)}
	sort.Ints(c.Indices)

	// median sorts in place, so the moments go first.
	c.MeanLAB.L, c.StdLAB.L = stat.PopMeanStdDev(l, nil)
	c.MeanLAB.A, c.StdLAB.A = stat.PopMeanStdDev(la, nil)
	c.MeanLAB.B, c.StdLAB.B = stat.PopMeanStdDev(lb, nil)
	c.BrightnessStd = stat.PopStdDev(brightness, nil)

	c.RGB = colorutil.RGB{R: toByte(median(r)), G: toByte(median(g)), B: toByte(median(b))}
	c.LAB = colorutil.LAB{L: median(l), A: median(la), B: median(lb)}
	c.HSV = c.RGB.HSV()
	c.Chroma = c.LAB.Chroma()
	return c
}

// median sorts x in place.
func median(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	sort.Float64s(x)
	return stat.Quantile(0.5, stat.Empirical, x, nil)
}

func toByte(v float64) uint8 {
	return uint8(math.Round(max(0, min(255, v))))
}

// combine merges clusters, weighting colours by coverage.
func combine(group []Cluster) Cluster {
	if len(group) == 1 {
		return group[0]
	}

	var total float64
	for _, c := range group {
		total += c.Coverage
	}

	var (
		out        Cluster
		r, g, b    float64
		lab, mean  colorutil.LAB
		std        colorutil.LAB
		chroma     float64
		brightness float64
	)
	for _, c := range group {
		w := 1 / float64(len(group))
		if total > 0 {
			w = c.Coverage / total
		}
		r += w * float64(c.RGB.R)
		g += w * float64(c.RGB.G)
		b += w * float64(c.RGB.B)
		lab = addLAB(lab, c.LAB, w)
		mean = addLAB(mean, c.MeanLAB, w)
		std = addLAB(std, c.StdLAB, w)
		chroma += w * c.Chroma
		brightness += w * c.BrightnessStd
		out.Indices = append(out.Indices, c.Indices...)
	}
	sort.Ints(out.Indices)

	out.Coverage = total
	out.RGB = colorutil.RGB{R: toByte(r), G: toByte(g), B: toByte(b)}
	out.HSV = out.RGB.HSV()
	out.LAB = lab
	out.MeanLAB = mean
	out.StdLAB = std
	out.Chroma = chroma
	out.BrightnessStd = brightness
	return out
}

func addLAB(acc, c colorutil.LAB, w float64) colorutil.LAB {
	return colorutil.LAB{L: acc.L + w*c.L, A: acc.A + w*c.A, B: acc.B + w*c.B}
}
