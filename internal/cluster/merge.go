package cluster

import (
	"log/slog"
	"sort"

	"miniscan/pkg/colorutil"
)

// MergeThreshold returns the ΔE below which two of cs are merged: half the
// mean positive pairwise distance, clamped to [MergeFloor, MergeCap].
func (p Params) MergeThreshold(cs []Cluster) float64 {
	var sum float64
	var n int
	for i := range cs {
		for j := i + 1; j < len(cs); j++ {
			if d := colorutil.DeltaE2000(cs[i].LAB, cs[j].LAB); d > 0 {
				sum += d
				n++
			}
		}
	}
	if n == 0 {
		return p.MergeFloor
	}
	return max(p.MergeFloor, min(p.MergeCap, p.MergeFactor*sum/float64(n)))
}

// Merge combines perceptually similar clusters. Passes repeat until nothing
// merges, so Merge(Merge(x)) == Merge(x).
func Merge(cs []Cluster, p Params) []Cluster {
	out := cs
	for pass := 0; pass < len(cs); pass++ {
		next, merged := mergePass(out, p)
		out = next
		if !merged {
			break
		}
	}
	return out
}

func mergePass(cs []Cluster, p Params) ([]Cluster, bool) {
	n := len(cs)
	if n <= 1 {
		return cs, false
	}
	threshold := p.MergeThreshold(cs)

	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}

	merged := false
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if colorutil.DeltaE2000(cs[i].LAB, cs[j].LAB) >= threshold {
				continue
			}
			ri, rj := find(i), find(j)
			if ri == rj {
				continue
			}
			// Lower index wins so output order follows input order.
			if rj < ri {
				ri, rj = rj, ri
			}
			parent[rj] = ri
			merged = true
		}
	}
	if !merged {
		return cs, false
	}

	groups := make(map[int][]Cluster)
	var roots []int
	for i, c := range cs {
		r := find(i)
		if _, ok := groups[r]; !ok {
			roots = append(roots, r)
		}
		groups[r] = append(groups[r], c)
	}

	out := make([]Cluster, 0, len(roots))
	for _, r := range roots {
		out = append(out, combine(groups[r]))
	}
	slog.Debug("merged similar clusters", "before", n, "after", len(out), "threshold", threshold)
	return out, true
}

// IsShadow reports whether cs[i] looks like a shadowed copy of a brighter
// cluster: small, dark, and perceptually close to something lighter.
func (p Params) IsShadow(cs []Cluster, i int) bool {
	c := cs[i]
	v := c.HSV.V
	if c.Coverage > p.ShadowMaxCoverage || v < p.ShadowMinValue || v > p.ShadowMaxValue {
		return false
	}
	for j, other := range cs {
		if j == i {
			continue
		}
		if colorutil.DeltaE2000(c.LAB, other.LAB) < p.ShadowDeltaE && other.HSV.V > v+p.ShadowValueGap {
			return true
		}
	}
	return false
}

// Dedup merges entries with the same family. Confidence is averaged and
// the metallic flag survives if any member had it. The result is ordered by
// descending coverage.
func Dedup(entries []Entry) []Entry {
	groups := make(map[string][]Entry)
	var order []string
	for _, e := range entries {
		if _, ok := groups[e.Family]; !ok {
			order = append(order, e.Family)
		}
		groups[e.Family] = append(groups[e.Family], e)
	}

	out := make([]Entry, 0, len(order))
	for _, fam := range order {
		group := groups[fam]
		if len(group) == 1 {
			out = append(out, group[0])
			continue
		}

		cs := make([]Cluster, len(group))
		lead := group[0]
		var conf float64
		var isMetallic bool
		for i, e := range group {
			cs[i] = e.Cluster
			conf += e.Confidence
			isMetallic = isMetallic || e.Metallic
			if e.Coverage > lead.Coverage {
				lead = e
			}
		}

		label := lead.Label
		label.Confidence = conf / float64(len(group))
		label.Metallic = isMetallic
		if isMetallic && !lead.Metallic {
			for _, e := range group {
				if e.Metallic {
					label.Subtype = e.Subtype
					break
				}
			}
		}
		slog.Debug("deduplicated family", "family", fam, "clusters", len(group))
		out = append(out, Entry{Cluster: combine(cs), Label: label})
	}

	sortByCoverage(out)
	return out
}

// Split marks entries as major or detail and drops details that are not
// distinct from an accepted major. Input must be ordered by descending
// coverage.
func Split(entries []Entry, p Params) []Entry {
	base := p.MajorMany
	if len(entries) <= p.FewClusters {
		base = p.MajorFew
	}

	var majors, details []Entry
	for _, e := range entries {
		threshold := base
		if e.Chroma > p.AccentChroma {
			threshold = p.AccentThreshold
		}

		switch {
		case e.Coverage >= threshold:
			e.IsDetail = false
			majors = append(majors, e)
		case e.Coverage >= p.DetailFloor:
			e.IsDetail = true
			if p.uniqueFromMajors(e, majors) {
				details = append(details, e)
			} else {
				slog.Debug("dropped detail close to a major", "family", e.Family, "coverage", e.Coverage)
			}
		}
	}

	out := append(majors, details...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.IsDetail != b.IsDetail {
			return !a.IsDetail
		}
		if a.Coverage != b.Coverage {
			return a.Coverage > b.Coverage
		}
		return a.Family < b.Family
	})
	return out
}

// UniquenessThreshold is the ΔE a detail must keep from every major.
func (p Params) UniquenessThreshold(chroma, coverage float64) float64 {
	t := p.UniqueLow
	switch {
	case chroma > p.UniqueHighChroma:
		t = p.UniqueHigh
	case chroma > p.UniqueMidChroma:
		t = p.UniqueMid
	}
	return max(p.UniqueFloor, t-p.UniqueCoverageScale*coverage)
}

func (p Params) uniqueFromMajors(detail Entry, majors []Entry) bool {
	threshold := p.UniquenessThreshold(detail.Chroma, detail.Coverage)
	for _, m := range majors {
		if colorutil.DeltaE2000(detail.LAB, m.LAB) < threshold {
			return false
		}
	}
	return true
}

func sortByCoverage(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Coverage != entries[j].Coverage {
			return entries[i].Coverage > entries[j].Coverage
		}
		return entries[i].Family < entries[j].Family
	})
}
