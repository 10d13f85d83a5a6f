// Package image provides frame loading, foreground masks, spatial outputs
// and the OpenCV conversions used by the analysis pipeline.
package image

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"miniscan/pkg/colorutil"

	"gocv.io/x/gocv"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrEmptyFrame is returned for zero-sized images or masks with no pixels.
var ErrEmptyFrame = errors.New("empty frame")

// Frame is an RGB pixel buffer with the foreground mask supplied by
// segmentation (or derived from the alpha channel).
type Frame struct {
	Width  int
	Height int
	Pix    []colorutil.RGB
	Mask   Mask
}

// NewFrame creates a black frame with an empty mask.
func NewFrame(width, height int) Frame {
	return Frame{
		Width:  width,
		Height: height,
		Pix:    make([]colorutil.RGB, width*height),
		Mask:   NewMask(width, height),
	}
}

// At returns the pixel at (x, y).
func (f Frame) At(x, y int) colorutil.RGB {
	return f.Pix[y*f.Width+x]
}

// Set writes the pixel at (x, y).
func (f Frame) Set(x, y int, c colorutil.RGB) {
	f.Pix[y*f.Width+x] = c
}

// Fill paints the rectangle [x0,x1)×[y0,y1) and marks it as foreground.
func (f Frame) Fill(x0, y0, x1, y1 int, c colorutil.RGB) {
	for y := max(0, y0); y < min(f.Height, y1); y++ {
		for x := max(0, x0); x < min(f.Width, x1); x++ {
			f.Pix[y*f.Width+x] = c
			f.Mask.Bits[y*f.Width+x] = true
		}
	}
}

// Samples returns the pixels selected by mask in raster order, together with
// their row-major positions in the frame.
func (f Frame) Samples(mask Mask) ([]colorutil.RGB, []int) {
	n := mask.Count()
	pixels := make([]colorutil.RGB, 0, n)
	positions := make([]int, 0, n)
	for i, on := range mask.Bits {
		if on {
			pixels = append(pixels, f.Pix[i])
			positions = append(positions, i)
		}
	}
	return pixels, positions
}

// FromImage converts a decoded image to a Frame. Pixels whose alpha exceeds
// alphaThreshold are foreground; a fully opaque image is entirely foreground.
func FromImage(src image.Image, alphaThreshold uint8) Frame {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	f := NewFrame(w, h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, a := src.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			f.Pix[y*w+x] = colorutil.RGB{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
			f.Mask.Bits[y*w+x] = uint8(a>>8) > alphaThreshold
		}
	}

	return f
}

// ToMat converts the frame to an 8-bit BGR Mat. The caller owns the Mat.
func (f Frame) ToMat() (gocv.Mat, error) {
	if f.Width == 0 || f.Height == 0 {
		return gocv.NewMat(), ErrEmptyFrame
	}
	data := make([]byte, 0, len(f.Pix)*3)
	for _, c := range f.Pix {
		data = append(data, c.B, c.G, c.R)
	}
	mat, err := gocv.NewMatFromBytes(f.Height, f.Width, gocv.MatTypeCV8UC3, data)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to create frame mat: %w", err)
	}
	defer mat.Close()
	return mat.Clone(), nil
}

// FrameFromMat converts an 8-bit BGR Mat and a mask back to a Frame.
func FrameFromMat(bgr gocv.Mat, mask Mask) Frame {
	w, h := bgr.Cols(), bgr.Rows()
	f := Frame{Width: w, Height: h, Pix: make([]colorutil.RGB, w*h), Mask: mask}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := bgr.GetVecbAt(y, x)
			f.Pix[y*w+x] = colorutil.RGB{R: v[2], G: v[1], B: v[0]}
		}
	}
	return f
}

// Load decodes an image file (PNG, JPEG, TIFF or WebP).
func Load(path string) (image.Image, error) {
	if !IsSupportedFormat(path) {
		return nil, fmt.Errorf("unsupported image format: %s", filepath.Ext(path))
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// SupportedFormats returns the list of supported image formats.
func SupportedFormats() []string {
	return []string{".tiff", ".tif", ".png", ".jpg", ".jpeg", ".webp"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}
