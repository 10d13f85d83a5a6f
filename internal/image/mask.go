package image

import (
	"fmt"

	"miniscan/pkg/geometry"

	"gocv.io/x/gocv"
)

// Mask is a boolean grid the size of a frame, stored row-major.
type Mask struct {
	Width  int
	Height int
	Bits   []bool
}

// NewMask creates an all-false mask.
func NewMask(width, height int) Mask {
	return Mask{Width: width, Height: height, Bits: make([]bool, width*height)}
}

// FullMask creates an all-true mask.
func FullMask(width, height int) Mask {
	m := NewMask(width, height)
	for i := range m.Bits {
		m.Bits[i] = true
	}
	return m
}

// At reports whether (x, y) is set. Out-of-range coordinates are unset.
func (m Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Bits[y*m.Width+x]
}

// Set sets (x, y) to v.
func (m Mask) Set(x, y int, v bool) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	m.Bits[y*m.Width+x] = v
}

// SetRect sets every pixel inside r to v.
func (m Mask) SetRect(r geometry.RectInt, v bool) {
	for y := r.Y; y < r.Bottom(); y++ {
		for x := r.X; x < r.X+r.Width; x++ {
			m.Set(x, y, v)
		}
	}
}

// Count returns the number of set pixels.
func (m Mask) Count() int {
	n := 0
	for _, b := range m.Bits {
		if b {
			n++
		}
	}
	return n
}

// CountIn returns the number of set pixels inside r.
func (m Mask) CountIn(r geometry.RectInt) int {
	n := 0
	for y := r.Y; y < r.Bottom(); y++ {
		for x := r.X; x < r.X+r.Width; x++ {
			if m.At(x, y) {
				n++
			}
		}
	}
	return n
}

// Clone returns a deep copy.
func (m Mask) Clone() Mask {
	bits := make([]bool, len(m.Bits))
	copy(bits, m.Bits)
	return Mask{Width: m.Width, Height: m.Height, Bits: bits}
}

// And returns m ∧ other. Both masks must share dimensions.
func (m Mask) And(other Mask) Mask {
	out := NewMask(m.Width, m.Height)
	for i := range m.Bits {
		out.Bits[i] = m.Bits[i] && other.Bits[i]
	}
	return out
}

// AndNot returns m ∧ ¬other.
func (m Mask) AndNot(other Mask) Mask {
	out := NewMask(m.Width, m.Height)
	for i := range m.Bits {
		out.Bits[i] = m.Bits[i] && !other.Bits[i]
	}
	return out
}

// Bounds returns the bounding rectangle of the set pixels. ok is false for
// an empty mask.
func (m Mask) Bounds() (r geometry.RectInt, ok bool) {
	minX, minY := m.Width, m.Height
	maxX, maxY := -1, -1
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if !m.Bits[y*m.Width+x] {
				continue
			}
			minX = min(minX, x)
			maxX = max(maxX, x)
			minY = min(minY, y)
			maxY = max(maxY, y)
		}
	}
	if maxX < 0 {
		return geometry.RectInt{}, false
	}
	return geometry.RectInt{X: minX, Y: minY, Width: maxX - minX + 1, Height: maxY - minY + 1}, true
}

// ToMat converts the mask to a single-channel 8-bit Mat (0 or 255).
// The caller owns the returned Mat.
func (m Mask) ToMat() (gocv.Mat, error) {
	data := make([]byte, len(m.Bits))
	for i, b := range m.Bits {
		if b {
			data[i] = 255
		}
	}
	mat, err := gocv.NewMatFromBytes(m.Height, m.Width, gocv.MatTypeCV8UC1, data)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to create mask mat: %w", err)
	}
	defer mat.Close()
	return mat.Clone(), nil
}

// MaskFromMat converts a single-channel 8-bit Mat to a Mask; any non-zero
// pixel is set.
func MaskFromMat(mat gocv.Mat) Mask {
	m := NewMask(mat.Cols(), mat.Rows())
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			m.Bits[y*m.Width+x] = mat.GetUCharAt(y, x) != 0
		}
	}
	return m
}

// MaskFromPositions builds a mask with the given row-major positions set.
func MaskFromPositions(width, height int, positions []int) Mask {
	m := NewMask(width, height)
	for _, p := range positions {
		if p >= 0 && p < len(m.Bits) {
			m.Bits[p] = true
		}
	}
	return m
}
