package cluster

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"miniscan/pkg/colorutil"
)

// Extractor turns pixel samples into classified colour entries. It is safe
// for concurrent use when its Partitioner and Classifier are.
type Extractor struct {
	params      Params
	partitioner Partitioner
	classifier  Classifier
}

// NewExtractor builds an extractor using the partition backend named in
// params.
func NewExtractor(params Params, classifier Classifier) (*Extractor, error) {
	part, err := NewPartitioner(params)
	if err != nil {
		return nil, err
	}
	return &Extractor{params: params, partitioner: part, classifier: classifier}, nil
}

// WithPartitioner returns a copy of x using part.
func (x *Extractor) WithPartitioner(part Partitioner) *Extractor {
	cp := *x
	cp.partitioner = part
	return &cp
}

// Params returns the extraction parameters.
func (x *Extractor) Params() Params {
	return x.params
}

// Extract clusters samples and returns the final colour entries, majors
// first, each group by descending coverage. Too few samples is not an
// error and yields no entries.
func (x *Extractor) Extract(ctx context.Context, samples []colorutil.RGB) ([]Entry, error) {
	p := x.params
	n := len(samples)
	if n < p.MinPixels {
		slog.Warn("too few pixels to analyse", "pixels", n, "min", p.MinPixels)
		return nil, nil
	}

	// Step 1: partition in LAB
	lab := make([]colorutil.LAB, n)
	parallel(n, p.Workers, func(start, end int) {
		for i := start; i < end; i++ {
			lab[i] = samples[i].LAB()
		}
	})

	k := p.K
	if k <= 0 {
		k = AdaptiveK(n)
	}
	labels, err := x.partitioner.Partition(lab, k)
	if err != nil {
		return nil, fmt.Errorf("failed to partition colours: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clusters := x.initialClusters(samples, lab, labels, k)
	slog.Debug("initial clusters", "k", k, "kept", len(clusters))

	// Step 2: perceptual merge
	clusters = Merge(clusters, p)

	// Step 3: drop shadows. They are still classified so the debug log says
	// which colour was lost to shading.
	var lit []Cluster
	for i, c := range clusters {
		if p.IsShadow(clusters, i) {
			label := x.classifier.Classify(c, c.Pixels(samples))
			slog.Debug("cluster marked as shadow",
				"family", label.Family,
				"confidence", label.Confidence,
				"coverage", c.Coverage,
				"value", c.HSV.V)
			continue
		}
		lit = append(lit, c)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Step 4: classify
	entries := make([]Entry, len(lit))
	parallel(len(lit), p.Workers, func(start, end int) {
		for i := start; i < end; i++ {
			c := lit[i]
			entries[i] = Entry{Cluster: c, Label: x.classifier.Classify(c, c.Pixels(samples))}
		}
	})

	// Step 5: one entry per family
	entries = Dedup(entries)

	// Step 6: confidence floor, then major/detail split
	confident := entries[:0]
	for _, e := range entries {
		if e.Confidence < p.MinConfidence {
			slog.Debug("filtered low confidence colour", "family", e.Family, "confidence", e.Confidence)
			continue
		}
		confident = append(confident, e)
	}
	out := Split(confident, p)

	slog.Info("colour extraction complete", "pixels", n, "clusters", len(clusters), "colours", len(out))
	return out, nil
}

func (x *Extractor) initialClusters(samples []colorutil.RGB, lab []colorutil.LAB, labels []int, k int) []Cluster {
	members := make([][]int, k)
	for i, l := range labels {
		if l >= 0 && l < k {
			members[l] = append(members[l], i)
		}
	}

	n := float64(len(samples))
	var out []Cluster
	for _, idx := range members {
		if len(idx) < x.params.MinClusterPixels {
			continue
		}
		c := newCluster(samples, lab, idx)
		c.Coverage = float64(len(idx)) / n * 100
		out = append(out, c)
	}
	return out
}

// parallel splits [0, n) into contiguous stripes, one per worker.
func parallel(n, workers int, fn func(start, end int)) {
	if n == 0 {
		return
	}
	workers = max(1, min(workers, n))
	per := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * per
		if start >= n {
			break
		}
		end := min(start+per, n)

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(start, end)
	}
	wg.Wait()
}
