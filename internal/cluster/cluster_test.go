package cluster

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"miniscan/pkg/colorutil"
)

// roundRobin spreads points over k labels regardless of colour.
type roundRobin struct{}

func (roundRobin) Partition(points []colorutil.LAB, k int) ([]int, error) {
	out := make([]int, len(points))
	for i := range out {
		out[i] = i % k
	}
	return out, nil
}

// byColour gives every distinct colour its own label.
type byColour struct{}

func (byColour) Partition(points []colorutil.LAB, k int) ([]int, error) {
	seen := make(map[colorutil.LAB]int)
	out := make([]int, len(points))
	for i, p := range points {
		l, ok := seen[p]
		if !ok {
			l = len(seen) % k
			seen[p] = l
		}
		out[i] = l
	}
	return out, nil
}

func constLabel(family string, conf float64) Classifier {
	return ClassifierFunc(func(Cluster, []colorutil.RGB) Label {
		return Label{Family: family, Confidence: conf}
	})
}

func repeat(c colorutil.RGB, n int) []colorutil.RGB {
	out := make([]colorutil.RGB, n)
	for i := range out {
		out[i] = c
	}
	return out
}

func clusterOf(c colorutil.RGB, n int, coverage float64) Cluster {
	samples := repeat(c, n)
	lab := make([]colorutil.LAB, n)
	idx := make([]int, n)
	for i := range samples {
		lab[i] = samples[i].LAB()
		idx[i] = i
	}
	cl := newCluster(samples, lab, idx)
	cl.Coverage = coverage
	return cl
}

func testExtractor(t *testing.T, part Partitioner, cls Classifier) *Extractor {
	t.Helper()
	x, err := NewExtractor(DefaultParams().WithBackend(BackendGo), cls)
	require.NoError(t, err)
	return x.WithPartitioner(part)
}

func TestExtractSingleColour(t *testing.T) {
	x := testExtractor(t, roundRobin{}, constLabel("Red", 0.9))

	entries, err := x.Extract(context.Background(), repeat(colorutil.RGB{R: 160, G: 20, B: 25}, 4000))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.False(t, e.IsDetail)
	assert.InDelta(t, 100, e.Coverage, 1e-6)
	assert.Equal(t, "Red", e.Family)
	assert.Equal(t, colorutil.RGB{R: 160, G: 20, B: 25}, e.RGB)
	assert.Equal(t, 4000, e.Size())
}

func TestExtractTooFewPixels(t *testing.T) {
	x := testExtractor(t, roundRobin{}, constLabel("Red", 0.9))
	entries, err := x.Extract(context.Background(), repeat(colorutil.RGB{R: 1}, 99))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExtractCancelled(t *testing.T) {
	x := testExtractor(t, roundRobin{}, constLabel("Red", 0.9))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := x.Extract(ctx, repeat(colorutil.RGB{R: 200}, 500))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractTwoColours(t *testing.T) {
	samples := append(repeat(colorutil.RGB{R: 200, G: 30, B: 30}, 700), repeat(colorutil.RGB{R: 30, G: 60, B: 200}, 300)...)
	cls := ClassifierFunc(func(c Cluster, _ []colorutil.RGB) Label {
		if c.RGB.R > c.RGB.B {
			return Label{Family: "Red", Confidence: 0.8}
		}
		return Label{Family: "Blue", Confidence: 0.8}
	})
	x := testExtractor(t, byColour{}, cls)

	entries, err := x.Extract(context.Background(), samples)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Red", entries[0].Family)
	assert.InDelta(t, 70, entries[0].Coverage, 1e-6)
	assert.Equal(t, "Blue", entries[1].Family)
	assert.Equal(t, 300, entries[1].Size())
	for _, idx := range entries[1].Indices {
		assert.GreaterOrEqual(t, idx, 700)
	}
}

func TestExtractDropsLowConfidence(t *testing.T) {
	x := testExtractor(t, roundRobin{}, constLabel("Unknown", 0.1))
	entries, err := x.Extract(context.Background(), repeat(colorutil.RGB{R: 90, G: 90, B: 200}, 1000))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExtractClassifiesShadowsBeforeDropping(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	// A small dark cluster next to a much lighter one of the same hue.
	samples := append(repeat(colorutil.RGB{R: 80, G: 80, B: 200}, 960), repeat(colorutil.RGB{R: 15, G: 15, B: 40}, 40)...)
	cls := ClassifierFunc(func(c Cluster, _ []colorutil.RGB) Label {
		if c.HSV.V < 0.3 {
			return Label{Family: "Black", Confidence: 0.9}
		}
		return Label{Family: "Blue", Confidence: 0.9}
	})
	x := testExtractor(t, byColour{}, cls)

	entries, err := x.Extract(context.Background(), samples)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Blue", entries[0].Family)
	assert.Contains(t, buf.String(), `msg="cluster marked as shadow" family=Black`)
}

func TestCombineWeightsBrightnessByCoverage(t *testing.T) {
	a := clusterOf(colorutil.RGB{R: 180, G: 40, B: 40}, 20, 90)
	b := clusterOf(colorutil.RGB{R: 186, G: 44, B: 41}, 20, 10)
	a.BrightnessStd = 10
	b.BrightnessStd = 50

	got := combine([]Cluster{a, b})
	assert.InDelta(t, 14, got.BrightnessStd, 1e-9)
	assert.InDelta(t, 100, got.Coverage, 1e-9)
}

func TestMergeNearbyClusters(t *testing.T) {
	p := DefaultParams()
	a := clusterOf(colorutil.RGB{R: 180, G: 40, B: 40}, 20, 50)
	b := clusterOf(colorutil.RGB{R: 190, G: 47, B: 42}, 20, 50)
	require.InDelta(t, 3, colorutil.DeltaE2000(a.LAB, b.LAB), 2)

	merged := Merge([]Cluster{a, b}, p)
	require.Len(t, merged, 1)
	assert.InDelta(t, 100, merged[0].Coverage, 1e-9)
	assert.Len(t, merged[0].Indices, 40)
}

func TestMergeIdempotent(t *testing.T) {
	p := DefaultParams()
	cs := []Cluster{
		clusterOf(colorutil.RGB{R: 180, G: 40, B: 40}, 20, 30),
		clusterOf(colorutil.RGB{R: 184, G: 42, B: 41}, 20, 10),
		clusterOf(colorutil.RGB{R: 40, G: 60, B: 180}, 20, 25),
		clusterOf(colorutil.RGB{R: 45, G: 62, B: 176}, 20, 5),
		clusterOf(colorutil.RGB{R: 230, G: 220, B: 200}, 20, 20),
		clusterOf(colorutil.RGB{R: 30, G: 140, B: 50}, 20, 10),
	}

	once := Merge(cs, p)
	twice := Merge(once, p)
	assert.Equal(t, once, twice)
	assert.Less(t, len(once), len(cs))
}

func TestMergeThreshold(t *testing.T) {
	p := DefaultParams()
	near := []Cluster{
		clusterOf(colorutil.RGB{R: 100, G: 100, B: 100}, 10, 50),
		clusterOf(colorutil.RGB{R: 104, G: 104, B: 104}, 10, 50),
	}
	assert.Equal(t, p.MergeFloor, p.MergeThreshold(near))

	far := []Cluster{
		clusterOf(colorutil.RGB{R: 255}, 10, 50),
		clusterOf(colorutil.RGB{B: 255}, 10, 50),
	}
	assert.Equal(t, p.MergeCap, p.MergeThreshold(far))
}

func TestIsShadow(t *testing.T) {
	p := DefaultParams()
	cs := []Cluster{
		clusterOf(colorutil.RGB{R: 60, G: 60, B: 140}, 10, 90),
		clusterOf(colorutil.RGB{R: 15, G: 15, B: 35}, 10, 4),
		clusterOf(colorutil.RGB{R: 15, G: 15, B: 35}, 10, 8),
	}

	assert.False(t, p.IsShadow(cs, 0), "bright cluster")
	assert.True(t, p.IsShadow(cs, 1), "small dark cluster near a lighter one")
	assert.False(t, p.IsShadow(cs, 2), "too much coverage")
	assert.False(t, p.IsShadow(cs[1:2], 0), "nothing lighter to shadow")
}

func TestDedup(t *testing.T) {
	a := Entry{Cluster: clusterOf(colorutil.RGB{R: 200, G: 170, B: 60}, 10, 30), Label: Label{Family: "Gold/Brass", Confidence: 0.9, Metallic: true, Subtype: "gold"}}
	b := Entry{Cluster: clusterOf(colorutil.RGB{R: 150, G: 120, B: 40}, 10, 40), Label: Label{Family: "Gold/Brass", Confidence: 0.5}}
	c := Entry{Cluster: clusterOf(colorutil.RGB{R: 20, G: 20, B: 20}, 10, 20), Label: Label{Family: "Black", Confidence: 0.8}}

	out := Dedup([]Entry{c, a, b})
	require.Len(t, out, 2)
	assert.Equal(t, "Gold/Brass", out[0].Family)
	assert.InDelta(t, 70, out[0].Coverage, 1e-9)
	assert.InDelta(t, 0.7, out[0].Confidence, 1e-9)
	assert.True(t, out[0].Metallic)
	assert.Equal(t, "gold", string(out[0].Subtype))
	assert.Len(t, out[0].Indices, 20)
	assert.Equal(t, "Black", out[1].Family)
}

func TestSplit(t *testing.T) {
	p := DefaultParams()
	entry := func(rgb colorutil.RGB, coverage float64, family string) Entry {
		return Entry{Cluster: clusterOf(rgb, 10, coverage), Label: Label{Family: family, Confidence: 0.9}}
	}

	entries := []Entry{
		entry(colorutil.RGB{R: 60, G: 60, B: 140}, 80, "Blue"),
		entry(colorutil.RGB{R: 120, G: 120, B: 120}, 15, "Grey"),
		entry(colorutil.RGB{R: 200, G: 20, B: 20}, 2, "Red"),    // accent chroma: major at 1.5%
		entry(colorutil.RGB{R: 64, G: 62, B: 142}, 1, "Purple"), // too close to Blue
		entry(colorutil.RGB{R: 240, G: 230, B: 40}, 1, "Yellow"),
		entry(colorutil.RGB{R: 30, G: 200, B: 30}, 0.1, "Green"), // below the detail floor
	}

	out := Split(entries, p)
	var families []string
	for _, e := range out {
		families = append(families, e.Family)
	}
	assert.Equal(t, []string{"Blue", "Grey", "Red", "Yellow"}, families)
	assert.False(t, out[2].IsDetail)
	assert.True(t, out[3].IsDetail)
}

func TestSplitFewClusters(t *testing.T) {
	p := DefaultParams()
	entries := []Entry{
		{Cluster: clusterOf(colorutil.RGB{R: 90, G: 90, B: 90}, 10, 97.5), Label: Label{Family: "Grey"}},
		{Cluster: clusterOf(colorutil.RGB{R: 30, G: 120, B: 40}, 10, 2.5), Label: Label{Family: "Green"}},
	}
	out := Split(entries, p)
	require.Len(t, out, 2)
	assert.False(t, out[1].IsDetail, "2.5 percent is major when few colours remain")
}

func TestUniquenessThreshold(t *testing.T) {
	p := DefaultParams()
	assert.InDelta(t, 25, p.UniquenessThreshold(50, 0), 1e-9)
	assert.InDelta(t, 20, p.UniquenessThreshold(30, 0), 1e-9)
	assert.InDelta(t, 13.5, p.UniquenessThreshold(10, 1), 1e-9)
	assert.InDelta(t, 10, p.UniquenessThreshold(10, 5), 1e-9)
}

func TestAdaptiveK(t *testing.T) {
	assert.Equal(t, 8, AdaptiveK(4999))
	assert.Equal(t, 10, AdaptiveK(5000))
	assert.Equal(t, 12, AdaptiveK(20000))
	assert.Equal(t, 15, AdaptiveK(90000))
}

func TestGoPartitioner(t *testing.T) {
	var points []colorutil.LAB
	for i := 0; i < 60; i++ {
		d := float64(i%5) * 0.3
		points = append(points, colorutil.LAB{L: 20 + d, A: 5, B: -d})
	}
	for i := 0; i < 40; i++ {
		d := float64(i%5) * 0.3
		points = append(points, colorutil.LAB{L: 80 - d, A: 30, B: 40 + d})
	}

	labels, err := GoPartitioner{}.Partition(points, 2)
	require.NoError(t, err)
	require.Len(t, labels, 100)
	for i := 1; i < 60; i++ {
		assert.Equal(t, labels[0], labels[i])
	}
	for i := 61; i < 100; i++ {
		assert.Equal(t, labels[60], labels[i])
	}
	assert.NotEqual(t, labels[0], labels[60])
}

func TestOpenCVPartitioner(t *testing.T) {
	part, err := NewPartitioner(DefaultParams())
	require.NoError(t, err)

	var points []colorutil.LAB
	for i := 0; i < 50; i++ {
		points = append(points, colorutil.LAB{L: 30, A: float64(i % 3), B: 0})
		points = append(points, colorutil.LAB{L: 85, A: 40, B: float64(i % 3)})
	}
	labels, err := part.Partition(points, 2)
	require.NoError(t, err)
	for i := 0; i < len(points); i += 2 {
		assert.Equal(t, labels[0], labels[i])
		assert.Equal(t, labels[1], labels[i+1])
	}
	assert.NotEqual(t, labels[0], labels[1])

	_, err = NewPartitioner(DefaultParams().WithBackend("quantum"))
	assert.ErrorIs(t, err, ErrUnknownBackend)
}
