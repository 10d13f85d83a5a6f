package image

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// PrepareParams controls how a decoded image becomes an analysis frame.
type PrepareParams struct {
	// Width is the analysis width in pixels; 0 keeps the native size.
	Width int `mapstructure:"width"`
	// AlphaThreshold separates foreground from transparent background.
	AlphaThreshold uint8 `mapstructure:"alpha_threshold"`
}

// DefaultPrepareParams returns the analysis defaults.
func DefaultPrepareParams() PrepareParams {
	return PrepareParams{
		Width:          300,
		AlphaThreshold: 50,
	}
}

// Prepare converts a decoded image into an analysis frame: the foreground is
// taken from the alpha channel, the frame is cropped to the foreground
// bounding box and resized to the analysis width.
func Prepare(src image.Image, params PrepareParams) (Frame, error) {
	frame := FromImage(src, params.AlphaThreshold)
	if frame.Width == 0 || frame.Height == 0 {
		return Frame{}, ErrEmptyFrame
	}

	bounds, ok := frame.Mask.Bounds()
	if !ok {
		return Frame{}, fmt.Errorf("%w: no foreground pixels", ErrEmptyFrame)
	}
	frame = frame.Crop(bounds.X, bounds.Y, bounds.Width, bounds.Height)

	if params.Width <= 0 || params.Width == frame.Width {
		return frame, nil
	}
	return frame.Resize(params.Width)
}

// Crop returns the sub-frame [x, x+w) × [y, y+h).
func (f Frame) Crop(x, y, w, h int) Frame {
	out := NewFrame(w, h)
	for row := 0; row < h; row++ {
		copy(out.Pix[row*w:(row+1)*w], f.Pix[(y+row)*f.Width+x:(y+row)*f.Width+x+w])
		copy(out.Mask.Bits[row*w:(row+1)*w], f.Mask.Bits[(y+row)*f.Width+x:(y+row)*f.Width+x+w])
	}
	return out
}

// Resize scales the frame to the given width, preserving aspect ratio.
// Pixels use area interpolation when shrinking; the mask uses nearest
// neighbour so it stays binary.
func (f Frame) Resize(width int) (Frame, error) {
	height := max(1, f.Height*width/f.Width)

	src, err := f.ToMat()
	if err != nil {
		return Frame{}, err
	}
	defer src.Close()

	maskMat, err := f.Mask.ToMat()
	if err != nil {
		return Frame{}, err
	}
	defer maskMat.Close()

	interp := gocv.InterpolationArea
	if width > f.Width {
		interp = gocv.InterpolationLinear
	}

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Resize(src, &dst, image.Point{X: width, Y: height}, 0, 0, interp)

	dstMask := gocv.NewMat()
	defer dstMask.Close()
	gocv.Resize(maskMat, &dstMask, image.Point{X: width, Y: height}, 0, 0, gocv.InterpolationNearestNeighbor)

	return FrameFromMat(dst, MaskFromMat(dstMask)), nil
}
