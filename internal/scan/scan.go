// Package scan runs the full analysis of one photo: stand removal, colour
// extraction and classification, shade-type decisions and paint matching.
package scan

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"miniscan/internal/cluster"
	"miniscan/internal/family"
	img "miniscan/internal/image"
	"miniscan/internal/match"
	"miniscan/internal/metallic"
	"miniscan/internal/shade"
	"miniscan/internal/stand"
	"miniscan/pkg/colorutil"
	"miniscan/pkg/geometry"
)

// Request is one analysis job.
type Request struct {
	Frame img.Frame
	// Brands overrides Params.Brands when set.
	Brands []string
	// QualityFailed marks a photo rejected by an upstream quality check.
	QualityFailed bool
}

// Colour is one detected colour with everything derived from it.
type Colour struct {
	cluster.Entry
	Temperature family.Temperature `json:"temperature"`
	ShadeType   shade.Decision     `json:"shade_type"`
	Triads      []match.Triad      `json:"triads,omitempty"`

	// Spatial outputs in frame coordinates.
	Positions []int              `json:"positions,omitempty"` // row-major pixel offsets
	Position  geometry.Point2D   `json:"position"`            // normalised centroid
	Anchor    *geometry.PointInt `json:"anchor,omitempty"`
}

// Mask returns the colour's pixels as a frame-sized mask.
func (c Colour) Mask(width, height int) img.Mask {
	return img.MaskFromPositions(width, height, c.Positions)
}

// Result is the outcome of one analysis.
type Result struct {
	Colours []Colour `json:"colours"`
	Width   int      `json:"width"`
	Height  int      `json:"height"`
	Pixels  int      `json:"pixels"` // analysed after stand removal
	Gated   bool     `json:"gated,omitempty"`

	StandValidated bool    `json:"stand_validated"`
	StandReason    string  `json:"stand_reason,omitempty"`
	StandRemoved   float64 `json:"stand_removed_pct"`
}

// Engine runs analyses. It is immutable after construction and safe for
// concurrent use; the catalogue index is shared by all requests.
type Engine struct {
	params    Params
	extractor *cluster.Extractor
	metal     *metallic.Detector
	families  *family.Classifier
	matcher   *match.Matcher
}

// New creates an engine. matcher may be nil, in which case no triads are
// produced.
func New(params Params, matcher *match.Matcher) (*Engine, error) {
	if params.Workers <= 0 {
		params.Workers = 1
	}
	if params.Cluster.Workers <= 0 {
		params.Cluster.Workers = params.Workers
	}

	e := &Engine{
		params:   params,
		metal:    metallic.NewDetector(params.Metallic),
		families: family.New(params.Family),
		matcher:  matcher,
	}
	extractor, err := cluster.NewExtractor(params.Cluster, e)
	if err != nil {
		return nil, fmt.Errorf("failed to create colour extractor: %w", err)
	}
	e.extractor = extractor
	return e, nil
}

// WithPartitioner returns a copy of e whose extractor uses part.
func (e *Engine) WithPartitioner(part cluster.Partitioner) *Engine {
	cp := *e
	cp.extractor = e.extractor.WithPartitioner(part)
	return &cp
}

// Params returns the engine parameters.
func (e *Engine) Params() Params {
	return e.params
}

// Classify labels one cluster with the metallic detector and the family
// classifier. It implements cluster.Classifier.
func (e *Engine) Classify(c cluster.Cluster, pixels []colorutil.RGB) cluster.Label {
	m := e.metal.Detect(pixels, metallic.Features{
		HSV:           c.HSV,
		Chroma:        c.Chroma,
		BrightnessStd: c.BrightnessStd,
	})
	fam := e.families.Classify(family.Input{
		RGB:      c.RGB,
		HSV:      c.HSV,
		LAB:      c.LAB,
		Chroma:   c.Chroma,
		Metallic: m.Metallic,
		Subtype:  m.Subtype,
	})
	return cluster.Label{
		Family:     fam.Family,
		Confidence: fam.Confidence,
		Metallic:   m.Metallic,
		Subtype:    m.Subtype,
		Surface:    m.Surface,
	}
}

// AnalyzeImage prepares a decoded image and analyses it.
func (e *Engine) AnalyzeImage(ctx context.Context, src image.Image, brands []string) (*Result, error) {
	frame, err := img.Prepare(src, e.params.Prepare)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare image: %w", err)
	}
	return e.Analyze(ctx, Request{Frame: frame, Brands: brands})
}

// AnalyzeFile loads, prepares and analyses an image file.
func (e *Engine) AnalyzeFile(ctx context.Context, path string, brands []string) (*Result, error) {
	src, err := img.Load(path)
	if err != nil {
		return nil, err
	}
	return e.AnalyzeImage(ctx, src, brands)
}

// Analyze runs the pipeline on a prepared frame.
func (e *Engine) Analyze(ctx context.Context, req Request) (*Result, error) {
	frame := req.Frame
	result := &Result{Width: frame.Width, Height: frame.Height}
	if req.QualityFailed {
		slog.Info("photo failed quality check, skipping analysis")
		result.Gated = true
		return result, nil
	}
	if frame.Width == 0 || frame.Height == 0 {
		return nil, img.ErrEmptyFrame
	}

	// Step 1: remove the stand
	mask := frame.Mask
	if !e.params.SkipStand {
		st, err := stand.Detect(frame, e.params.Stand)
		if err != nil {
			return nil, fmt.Errorf("stand detection failed: %w", err)
		}
		mask = st.Mask
		result.StandValidated = st.Validated
		result.StandReason = st.Reason
		result.StandRemoved = st.RemovedPct
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Step 2: extract and classify colours
	samples, positions := frame.Samples(mask)
	result.Pixels = len(samples)
	entries, err := e.extractor.Extract(ctx, samples)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return result, nil
	}

	// Step 3: per-colour decisions, matching and spatial outputs
	brands := req.Brands
	if len(brands) == 0 {
		brands = e.params.Brands
	}
	if len(brands) == 0 && e.matcher != nil {
		brands = e.matcher.Index().Catalog().Brands()
	}

	colours := make([]Colour, len(entries))
	errs := make([]error, len(entries))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < min(e.params.Workers, len(entries)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				colours[i], errs[i] = e.describe(entries[i], positions, frame, brands)
			}
		}()
	}
	for i := range entries {
		if ctx.Err() != nil {
			break
		}
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	result.Colours = colours
	slog.Info("analysis complete",
		"colours", len(colours),
		"pixels", result.Pixels,
		"stand_removed_pct", result.StandRemoved)
	return result, nil
}

func (e *Engine) describe(entry cluster.Entry, positions []int, frame img.Frame, brands []string) (Colour, error) {
	c := Colour{
		Entry:       entry,
		Temperature: e.families.Temperature(entry.LAB),
		ShadeType: shade.Analyze(shade.Input{
			Family:        entry.Family,
			BrightnessStd: entry.BrightnessStd,
			Value:         entry.HSV.V,
			Metallic:      entry.Metallic,
			Surface:       entry.Surface,
		}, e.params.Shade),
	}

	c.Positions = make([]int, len(entry.Indices))
	for i, idx := range entry.Indices {
		c.Positions[i] = positions[idx]
	}
	mask := c.Mask(frame.Width, frame.Height)
	if p, ok := mask.Centroid(); ok {
		c.Position = p
	}
	if a, ok := mask.Anchor(e.params.AnchorSkipBottom); ok {
		c.Anchor = &a
	}

	if e.matcher == nil {
		return c, nil
	}
	target := match.Target{LAB: entry.LAB, Metallic: entry.Metallic, Family: entry.Family}
	for _, brand := range brands {
		triad, err := e.matcher.Triad(target, brand)
		if err != nil {
			return c, fmt.Errorf("failed to match %s for %s: %w", entry.Family, brand, err)
		}
		c.Triads = append(c.Triads, triad)
	}
	return c, nil
}
