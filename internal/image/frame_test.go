package image

import (
	"image"
	"image/color"
	"testing"

	"miniscan/pkg/colorutil"
	"miniscan/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskOps(t *testing.T) {
	a := NewMask(4, 4)
	a.SetRect(geometry.RectInt{X: 0, Y: 0, Width: 2, Height: 4}, true)
	b := NewMask(4, 4)
	b.SetRect(geometry.RectInt{X: 1, Y: 0, Width: 3, Height: 2}, true)

	assert.Equal(t, 8, a.Count())
	assert.Equal(t, 2, a.And(b).Count())
	assert.Equal(t, 6, a.AndNot(b).Count())
	assert.False(t, a.At(-1, 0))
	assert.Equal(t, 4, a.CountIn(geometry.RectInt{X: 0, Y: 2, Width: 4, Height: 2}))

	bounds, ok := b.Bounds()
	require.True(t, ok)
	assert.Equal(t, geometry.RectInt{X: 1, Y: 0, Width: 3, Height: 2}, bounds)

	_, ok = NewMask(3, 3).Bounds()
	assert.False(t, ok)
}

func TestMaskMatRoundTrip(t *testing.T) {
	m := NewMask(5, 3)
	m.Set(0, 0, true)
	m.Set(4, 2, true)

	mat, err := m.ToMat()
	require.NoError(t, err)
	defer mat.Close()

	assert.Equal(t, 3, mat.Rows())
	assert.Equal(t, 5, mat.Cols())
	assert.Equal(t, m, MaskFromMat(mat))
}

func TestFromImageAlpha(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	src.Set(1, 0, color.NRGBA{R: 200, G: 10, B: 10, A: 255})
	src.Set(2, 1, color.NRGBA{R: 10, G: 10, B: 10, A: 20})

	f := FromImage(src, 50)
	assert.Equal(t, 1, f.Mask.Count())
	assert.True(t, f.Mask.At(1, 0))
	assert.Equal(t, colorutil.RGB{R: 200, G: 10, B: 10}, f.At(1, 0))
}

func TestFrameMatRoundTrip(t *testing.T) {
	f := NewFrame(3, 2)
	f.Fill(0, 0, 3, 2, colorutil.RGB{R: 10, G: 20, B: 30})
	f.Set(2, 1, colorutil.RGB{R: 250, G: 0, B: 5})

	mat, err := f.ToMat()
	require.NoError(t, err)
	defer mat.Close()

	back := FrameFromMat(mat, f.Mask)
	assert.Equal(t, f.Pix, back.Pix)
}

func TestPrepareCropsAndResizes(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 100, 100))
	for y := 20; y < 80; y++ {
		for x := 40; x < 60; x++ {
			src.Set(x, y, color.NRGBA{R: 120, G: 30, B: 30, A: 255})
		}
	}

	f, err := Prepare(src, PrepareParams{Width: 40, AlphaThreshold: 50})
	require.NoError(t, err)
	assert.Equal(t, 40, f.Width)
	assert.Equal(t, 120, f.Height)
	assert.Equal(t, 40*120, f.Mask.Count())

	_, err = Prepare(image.NewNRGBA(image.Rect(0, 0, 10, 10)), DefaultPrepareParams())
	assert.ErrorIs(t, err, ErrEmptyFrame)
}

func TestSamples(t *testing.T) {
	f := NewFrame(3, 3)
	f.Fill(1, 1, 3, 2, colorutil.RGB{R: 1, G: 2, B: 3})

	pixels, positions := f.Samples(f.Mask)
	assert.Len(t, pixels, 2)
	assert.Equal(t, []int{4, 5}, positions)
}

func TestCentroidAndAnchor(t *testing.T) {
	m := NewMask(100, 100)
	m.SetRect(geometry.RectInt{X: 20, Y: 10, Width: 40, Height: 40}, true)
	// A thin strip in the bottom band that must not win the anchor.
	m.SetRect(geometry.RectInt{X: 0, Y: 85, Width: 100, Height: 15}, true)

	c, ok := m.Centroid()
	require.True(t, ok)
	assert.Greater(t, c.Y, 0.3)

	p, ok := m.Anchor(0.2)
	require.True(t, ok)
	assert.InDelta(t, 40, p.X, 2)
	assert.InDelta(t, 30, p.Y, 2)

	_, ok = NewMask(10, 10).Anchor(0.2)
	assert.False(t, ok)
}
