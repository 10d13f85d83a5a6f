// Package stand finds the physical base a miniature is mounted on and removes
// it from the analysis mask without eating into the subject's legs.
package stand

import (
	"fmt"
	"image"
	"log/slog"

	img "miniscan/internal/image"
	"miniscan/pkg/geometry"

	"gocv.io/x/gocv"
)

// Rejection reasons reported when no geometric base is accepted.
const (
	ReasonEmptyZone   = "empty_zone"
	ReasonIrregular   = "irregular"
	ReasonNotWide     = "aspect_ratio"
	ReasonTooNarrow   = "too_narrow"
	ReasonNoSafeSpace = "no_safe_space"
)

// Result holds stand detection output.
type Result struct {
	Mask       img.Mask         // refined analysis mask
	Base       img.Mask         // foreground pixels removed as base
	Seed       geometry.RectInt // bounding box of the accepted seed component
	Validated  bool             // a geometric base was accepted
	Reason     string           // why the geometric base was rejected
	SafetyLine int              // rows above this are never excluded; -1 if no base
	RemovedPct float64          // share of the foreground removed
}

var zeroScalar = gocv.NewScalar(0, 0, 0, 0)

// Detect refines frame.Mask by excluding the base. It never widens the mask
// and defaults to excluding nothing when the geometry is not convincing.
func Detect(frame img.Frame, params Params) (*Result, error) {
	if frame.Width == 0 || frame.Height == 0 {
		return nil, img.ErrEmptyFrame
	}
	w, h := frame.Width, frame.Height

	bgr, err := frame.ToMat()
	if err != nil {
		return nil, fmt.Errorf("failed to convert frame: %w", err)
	}
	defer bgr.Close()

	fg, err := frame.Mask.ToMat()
	if err != nil {
		return nil, fmt.Errorf("failed to convert mask: %w", err)
	}
	defer fg.Close()

	result := &Result{SafetyLine: -1}

	// The zones are measured on the subject's bounding box, so an uncropped
	// canvas behaves like a cropped one.
	bounds, ok := frame.Mask.Bounds()
	if !ok {
		result.Reason = ReasonEmptyZone
		result.Mask = frame.Mask.Clone()
		result.Base = img.NewMask(w, h)
		return result, nil
	}

	// Step 1: Largest component in the bottom zone, validated as a base.
	seed, seedRect, reason := findSeed(fg, bounds, params)
	defer seed.Close()
	result.Seed = seedRect
	result.Reason = reason
	result.Validated = reason == ""

	geometric := gocv.NewMatWithSizeFromScalar(zeroScalar, h, w, gocv.MatTypeCV8U)
	defer geometric.Close()

	// Step 2: Grow the seed downward and sideways, never above the safety line.
	if result.Validated {
		result.SafetyLine = max(0, seedRect.Y-params.SafetyMargin)
		grown := growDownward(seed, fg, result.SafetyLine, params.MaxIterations)
		grown.CopyTo(&geometric)
		grown.Close()
	}

	// Step 3: Base-material colour bands, restricted to the lower frame.
	bandTop := bounds.Y + int(float64(bounds.Height)*params.ExclusionZoneTop)
	if result.Validated {
		bandTop = max(bandTop, result.SafetyLine)
	}
	bands := colorBandMask(bgr, fg, bandTop, params.Bands)
	defer bands.Close()

	// Step 4: foreground ∧ ¬geometric ∧ ¬bands, then a closing for cleanup.
	exclude := gocv.NewMat()
	defer exclude.Close()
	gocv.BitwiseOr(geometric, bands, &exclude)

	notExclude := gocv.NewMat()
	defer notExclude.Close()
	gocv.BitwiseNot(exclude, &notExclude)

	final := gocv.NewMat()
	defer final.Close()
	gocv.BitwiseAnd(fg, notExclude, &final)

	if params.CloseKernel > 1 {
		kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Point{X: params.CloseKernel, Y: params.CloseKernel})
		defer kernel.Close()
		gocv.MorphologyEx(final, &final, gocv.MorphClose, kernel)
		gocv.BitwiseAnd(final, fg, &final)
	}

	result.Mask = img.MaskFromMat(final)
	result.Base = frame.Mask.AndNot(result.Mask)
	if total := frame.Mask.Count(); total > 0 {
		result.RemovedPct = 100 * float64(result.Base.Count()) / float64(total)
	}

	slog.Info("stand detection complete",
		"validated", result.Validated,
		"reason", result.Reason,
		"seed", result.Seed,
		"safety_line", result.SafetyLine,
		"removed_pct", result.RemovedPct)

	return result, nil
}

// findSeed labels the bottom zone of the foreground's bounding box and
// validates its largest component. The returned seed Mat is full-frame sized
// and empty when the component is rejected; reason is empty on success.
func findSeed(fg gocv.Mat, bounds geometry.RectInt, params Params) (gocv.Mat, geometry.RectInt, string) {
	h, w := fg.Rows(), fg.Cols()
	seed := gocv.NewMatWithSizeFromScalar(zeroScalar, h, w, gocv.MatTypeCV8U)

	zoneBottom := bounds.Bottom()
	zoneTop := zoneBottom - int(float64(bounds.Height)*params.BottomZone)
	if zoneTop >= zoneBottom {
		return seed, geometry.RectInt{}, ReasonEmptyZone
	}

	region := fg.Region(image.Rect(0, zoneTop, w, zoneBottom))
	zone := region.Clone()
	region.Close()
	defer zone.Close()

	labels := gocv.NewMat()
	defer labels.Close()
	stats := gocv.NewMat()
	defer stats.Close()
	centroids := gocv.NewMat()
	defer centroids.Close()

	n := gocv.ConnectedComponentsWithStats(zone, &labels, &stats, &centroids)

	// Label 0 is the background.
	best, bestArea := -1, 0
	for i := 1; i < n; i++ {
		area := int(stats.GetIntAt(i, int(gocv.CC_STAT_AREA)))
		if area > bestArea {
			best, bestArea = i, area
		}
	}
	if best < 0 {
		return seed, geometry.RectInt{}, ReasonEmptyZone
	}

	rect := geometry.RectInt{
		X:      int(stats.GetIntAt(best, int(gocv.CC_STAT_LEFT))),
		Y:      int(stats.GetIntAt(best, int(gocv.CC_STAT_TOP))) + zoneTop,
		Width:  int(stats.GetIntAt(best, int(gocv.CC_STAT_WIDTH))),
		Height: int(stats.GetIntAt(best, int(gocv.CC_STAT_HEIGHT))),
	}

	if reason := validateSeed(rect, bestArea, bounds, params); reason != "" {
		slog.Debug("stand seed rejected", "reason", reason, "rect", rect, "area", bestArea)
		return seed, rect, reason
	}

	for y := 0; y < zone.Rows(); y++ {
		for x := 0; x < w; x++ {
			if int(labels.GetIntAt(y, x)) == best {
				seed.SetUCharAt(y+zoneTop, x, 255)
			}
		}
	}
	return seed, rect, ""
}

// validateSeed applies the regularity, aspect ratio and width checks. Width
// and headroom are relative to the subject's bounding box.
func validateSeed(rect geometry.RectInt, area int, bounds geometry.RectInt, params Params) string {
	if rect.Empty() {
		return ReasonEmptyZone
	}
	if float64(area)/float64(rect.Area()) < params.MinRegularity {
		return ReasonIrregular
	}
	if rect.AspectRatio() < params.MinAspect {
		return ReasonNotWide
	}
	if float64(rect.Width) < params.MinWidthFrac*float64(bounds.Width) {
		return ReasonTooNarrow
	}
	if rect.Y-params.SafetyMargin < bounds.Y {
		// The base fills the frame; excluding it would leave no subject.
		return ReasonNoSafeSpace
	}
	return ""
}

// growDownward repeatedly dilates seed within fg using a kernel that only
// samples the current row and the row above. OpenCV's dilate switches a pixel
// on when any kernel-selected source pixel is set; kernel rows map to source
// offsets dy = -1, 0, +1, and the +1 row is zero, so nothing grows upward.
// Rows above safetyLine are cleared after every iteration.
func growDownward(seed, fg gocv.Mat, safetyLine, maxIter int) gocv.Mat {
	kernel := gocv.NewMatWithSizeFromScalar(zeroScalar, 3, 3, gocv.MatTypeCV8U)
	defer kernel.Close()
	for row := 0; row < 2; row++ {
		for col := 0; col < 3; col++ {
			kernel.SetUCharAt(row, col, 1)
		}
	}

	current := seed.Clone()
	prev := gocv.CountNonZero(current)

	for i := 0; i < maxIter; i++ {
		next := gocv.NewMat()
		gocv.Dilate(current, &next, kernel)
		gocv.BitwiseAnd(next, fg, &next)
		clearAbove(next, safetyLine)

		current.Close()
		current = next

		count := gocv.CountNonZero(current)
		if count == prev {
			break
		}
		prev = count
	}
	return current
}

// colorBandMask marks foreground pixels in any base-material band at or
// below row top.
func colorBandMask(bgr, fg gocv.Mat, top int, bands []Band) gocv.Mat {
	h, w := bgr.Rows(), bgr.Cols()
	acc := gocv.NewMatWithSizeFromScalar(zeroScalar, h, w, gocv.MatTypeCV8U)
	if len(bands) == 0 || top >= h {
		return acc
	}

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(bgr, &hsv, gocv.ColorBGRToHSV)

	inBand := gocv.NewMat()
	defer inBand.Close()
	for _, band := range bands {
		lh, ls, lv := band.Min.OpenCV()
		uh, us, uv := band.Max.OpenCV()
		gocv.InRangeWithScalar(hsv,
			gocv.NewScalar(lh, ls, lv, 0),
			gocv.NewScalar(uh, us, uv, 0),
			&inBand)
		gocv.BitwiseOr(acc, inBand, &acc)
	}

	clearAbove(acc, top)
	gocv.BitwiseAnd(acc, fg, &acc)
	return acc
}

// clearAbove zeroes rows [0, line).
func clearAbove(m gocv.Mat, line int) {
	if line <= 0 {
		return
	}
	line = min(line, m.Rows())
	roi := m.Region(image.Rect(0, 0, m.Cols(), line))
	roi.SetTo(zeroScalar)
	roi.Close()
}
