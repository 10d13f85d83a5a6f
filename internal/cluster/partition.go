package cluster

import (
	"errors"
	"fmt"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"gocv.io/x/gocv"

	"miniscan/pkg/colorutil"
)

// ErrUnknownBackend is returned for an unrecognised Params.Backend.
var ErrUnknownBackend = errors.New("unknown partition backend")

// Partitioner splits LAB points into at most k groups and returns one label
// per point.
type Partitioner interface {
	Partition(points []colorutil.LAB, k int) ([]int, error)
}

// NewPartitioner returns the backend named in params.
func NewPartitioner(params Params) (Partitioner, error) {
	switch params.Backend {
	case "", BackendOpenCV:
		return &OpenCVPartitioner{
			Attempts:      max(1, params.Attempts),
			MaxIterations: max(1, params.MaxIterations),
			Epsilon:       params.Epsilon,
		}, nil
	case BackendGo:
		return GoPartitioner{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, params.Backend)
}

// OpenCVPartitioner runs cv::kmeans with k-means++ seeding.
type OpenCVPartitioner struct {
	Attempts      int
	MaxIterations int
	Epsilon       float64
}

// Partition implements Partitioner.
func (p *OpenCVPartitioner) Partition(points []colorutil.LAB, k int) ([]int, error) {
	n := len(points)
	k = min(k, n)
	if k <= 0 {
		return nil, nil
	}

	data := gocv.NewMatWithSize(n, 3, gocv.MatTypeCV32F)
	defer data.Close()
	for i, c := range points {
		data.SetFloatAt(i, 0, float32(c.L))
		data.SetFloatAt(i, 1, float32(c.A))
		data.SetFloatAt(i, 2, float32(c.B))
	}

	labels := gocv.NewMat()
	defer labels.Close()
	centers := gocv.NewMat()
	defer centers.Close()

	criteria := gocv.NewTermCriteria(gocv.EPS+gocv.MaxIter, p.MaxIterations, p.Epsilon)
	gocv.KMeans(data, k, &labels, criteria, p.Attempts, gocv.KMeansPPCenters, &centers)

	if labels.Rows() != n {
		return nil, fmt.Errorf("kmeans returned %d labels for %d points", labels.Rows(), n)
	}
	out := make([]int, n)
	for i := range out {
		out[i] = int(labels.GetIntAt(i, 0))
	}
	return out, nil
}

// GoPartitioner runs Lloyd's algorithm in pure Go with random seeding.
type GoPartitioner struct{}

type labObservation colorutil.LAB

func (o labObservation) Coordinates() clusters.Coordinates {
	return clusters.Coordinates{o.L, o.A, o.B}
}

func (o labObservation) Distance(point clusters.Coordinates) float64 {
	dl, da, db := o.L-point[0], o.A-point[1], o.B-point[2]
	return dl*dl + da*da + db*db
}

// Partition implements Partitioner.
func (GoPartitioner) Partition(points []colorutil.LAB, k int) ([]int, error) {
	k = min(k, len(points))
	if k <= 0 {
		return nil, nil
	}

	obs := make(clusters.Observations, len(points))
	for i, c := range points {
		obs[i] = labObservation(c)
	}

	cc, err := kmeans.New().Partition(obs, k)
	if err != nil {
		return nil, fmt.Errorf("kmeans partition failed: %w", err)
	}

	out := make([]int, len(points))
	for i, o := range obs {
		out[i] = cc.Nearest(o)
	}
	return out, nil
}
