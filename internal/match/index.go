package match

import (
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/spatial/kdtree"

	"miniscan/internal/catalog"
	"miniscan/pkg/colorutil"
)

// labPoint is a paint's LAB centroid in the tree.
type labPoint struct {
	lab [3]float64
	id  int
}

func (p labPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	return p.lab[d] - c.(labPoint).lab[d]
}

func (p labPoint) Dims() int { return 3 }

func (p labPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(labPoint)
	var sum float64
	for i := range p.lab {
		d := p.lab[i] - q.lab[i]
		sum += d * d
	}
	return sum
}

type labPoints []labPoint

func (p labPoints) Index(i int) kdtree.Comparable { return p[i] }
func (p labPoints) Len() int                      { return len(p) }
func (p labPoints) Slice(start, end int) kdtree.Interface {
	return p[start:end]
}
func (p labPoints) Pivot(d kdtree.Dim) int {
	return kdtree.Partition(plane{labPoints: p, dim: d}, kdtree.MedianOfMedians(plane{labPoints: p, dim: d}))
}

type plane struct {
	labPoints
	dim kdtree.Dim
}

func (p plane) Less(i, j int) bool { return p.labPoints[i].lab[p.dim] < p.labPoints[j].lab[p.dim] }
func (p plane) Swap(i, j int)      { p.labPoints[i], p.labPoints[j] = p.labPoints[j], p.labPoints[i] }
func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.labPoints = p.labPoints[start:end]
	return p
}

func pointOf(p catalog.Paint) labPoint {
	return labPoint{lab: [3]float64{p.LAB.L, p.LAB.A, p.LAB.B}, id: p.ID}
}

// partition is a KD-tree over a subset of the catalogue.
type partition struct {
	tree *kdtree.Tree
	size int
}

func newPartition(paints []catalog.Paint) *partition {
	if len(paints) == 0 {
		return nil
	}
	pts := make(labPoints, len(paints))
	for i, p := range paints {
		pts[i] = pointOf(p)
	}
	return &partition{tree: kdtree.New(pts, false), size: len(pts)}
}

// nearest returns the IDs of up to n paints closest to lab in Euclidean LAB
// distance, closest first.
func (p *partition) nearest(lab colorutil.LAB, n int) []int {
	if p == nil || n <= 0 {
		return nil
	}
	keep := kdtree.NewNKeeper(min(n, p.size))
	p.tree.NearestSet(keep, labPoint{lab: [3]float64{lab.L, lab.A, lab.B}})

	found := make([]kdtree.ComparableDist, 0, len(keep.Heap))
	for _, cd := range keep.Heap {
		if cd.Comparable == nil || math.IsInf(cd.Dist, 1) {
			continue
		}
		found = append(found, cd)
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].Dist != found[j].Dist {
			return found[i].Dist < found[j].Dist
		}
		return found[i].Comparable.(labPoint).id < found[j].Comparable.(labPoint).id
	})

	ids := make([]int, len(found))
	for i, cd := range found {
		ids[i] = cd.Comparable.(labPoint).id
	}
	return ids
}

// texture selects opaque paints by finish.
type texture int

const (
	anyTexture texture = iota
	plainTexture
	metallicTexture
)

func textureOf(metallic bool) texture {
	if metallic {
		return metallicTexture
	}
	return plainTexture
}

type partKey struct {
	brand   string // lower case; "" for every brand
	texture texture
}

// Index holds KD-trees over the catalogue's opaque paints, partitioned by
// brand and finish, plus a separate set over washes. It is read-only after
// construction and safe for concurrent queries.
type Index struct {
	catalog *catalog.Catalog
	opaque  map[partKey]*partition
	washes  map[string]*partition // by lower-case brand; "" for every brand
}

// NewIndex builds the partitions for c.
func NewIndex(c *catalog.Catalog) *Index {
	groups := make(map[partKey][]catalog.Paint)
	washGroups := make(map[string][]catalog.Paint)

	for _, p := range c.Paints() {
		brand := strings.ToLower(strings.TrimSpace(p.Brand))
		if p.IsWash() {
			washGroups[brand] = append(washGroups[brand], p)
			washGroups[""] = append(washGroups[""], p)
			continue
		}
		tex := textureOf(p.IsMetallic())
		for _, k := range []partKey{
			{brand, tex}, {brand, anyTexture}, {"", tex}, {"", anyTexture},
		} {
			groups[k] = append(groups[k], p)
		}
	}

	idx := &Index{
		catalog: c,
		opaque:  make(map[partKey]*partition, len(groups)),
		washes:  make(map[string]*partition, len(washGroups)),
	}
	for k, paints := range groups {
		idx.opaque[k] = newPartition(paints)
	}
	for k, paints := range washGroups {
		idx.washes[k] = newPartition(paints)
	}
	return idx
}

// Catalog returns the indexed catalogue.
func (x *Index) Catalog() *catalog.Catalog {
	return x.catalog
}

// HasOpaque reports whether any opaque paint exists.
func (x *Index) HasOpaque() bool {
	return x.opaque[partKey{"", anyTexture}] != nil
}

func (x *Index) opaquePartition(brand string, tex texture) *partition {
	return x.opaque[partKey{strings.ToLower(strings.TrimSpace(brand)), tex}]
}

func (x *Index) washPartition(brand string) *partition {
	return x.washes[strings.ToLower(strings.TrimSpace(brand))]
}
