package image

import (
	"image/color"

	"miniscan/pkg/geometry"

	"gocv.io/x/gocv"
)

// Centroid returns the mean position of the set pixels, normalised to 0-1 on
// both axes. ok is false for an empty mask.
func (m Mask) Centroid() (p geometry.Point2D, ok bool) {
	var sumX, sumY float64
	n := 0
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.Bits[y*m.Width+x] {
				sumX += float64(x)
				sumY += float64(y)
				n++
			}
		}
	}
	if n == 0 || m.Width == 0 || m.Height == 0 {
		return geometry.Point2D{}, false
	}
	return geometry.Point2D{
		X: sumX / float64(n) / float64(m.Width),
		Y: sumY / float64(n) / float64(m.Height),
	}, true
}

// Anchor returns the most interior point of the mask: the maximum of its
// distance transform. The bottom skipBottom fraction of rows is ignored so
// the point lands on the subject rather than on whatever remains of a base.
// ok is false when no eligible pixel exists.
func (m Mask) Anchor(skipBottom float64) (geometry.PointInt, bool) {
	work := m.Clone()
	cutoff := int(float64(m.Height) * (1 - skipBottom))
	work.SetRect(geometry.RectInt{X: 0, Y: cutoff, Width: m.Width, Height: m.Height - cutoff}, false)
	if work.Count() == 0 {
		// Everything sits in the skipped band; fall back to the full mask.
		work = m
		if work.Count() == 0 {
			return geometry.PointInt{}, false
		}
	}

	mat, err := work.ToMat()
	if err != nil {
		return geometry.PointInt{}, false
	}
	defer mat.Close()

	// Pad by one pixel so regions touching the border still get a finite
	// distance to the background.
	padded := gocv.NewMat()
	defer padded.Close()
	gocv.CopyMakeBorder(mat, &padded, 1, 1, 1, 1, gocv.BorderConstant, color.RGBA{})

	dist := gocv.NewMat()
	defer dist.Close()
	labels := gocv.NewMat()
	defer labels.Close()
	gocv.DistanceTransform(padded, &dist, &labels, gocv.DistL2, gocv.DistanceMask5, gocv.DistanceLabelCComp)

	_, maxVal, _, maxLoc := gocv.MinMaxLoc(dist)
	if maxVal <= 0 {
		return geometry.PointInt{}, false
	}
	return geometry.PointInt{X: maxLoc.X - 1, Y: maxLoc.Y - 1}, true
}
