// Command standtest runs stand detection on a miniature photo and writes the
// refined mask for inspection.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	img "miniscan/internal/image"
	"miniscan/internal/stand"
)

func main() {
	imagePath := flag.String("image", "", "Path to miniature photo (PNG, TIFF, or WebP with alpha)")
	outPath := flag.String("out", "mask.png", "Where to write the refined mask")
	width := flag.Int("width", img.DefaultPrepareParams().Width, "Analysis width in pixels (0 keeps native size)")
	margin := flag.Int("margin", stand.DefaultParams().SafetyMargin, "Safety margin above the base in pixels")
	noBands := flag.Bool("no-bands", false, "Disable colour-band exclusion")
	flag.Parse()

	if *imagePath == "" {
		fmt.Println("Usage: standtest -image <path> [-out mask.png] [-width 300] [-margin 40] [-no-bands]")
		os.Exit(1)
	}

	src, err := img.Load(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load image: %v\n", err)
		os.Exit(1)
	}
	bounds := src.Bounds()
	fmt.Printf("Loaded image: %dx%d pixels\n", bounds.Dx(), bounds.Dy())

	prep := img.DefaultPrepareParams()
	prep.Width = *width
	frame, err := img.Prepare(src, prep)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to prepare frame: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Analysis frame: %dx%d, %d foreground pixels\n", frame.Width, frame.Height, frame.Mask.Count())

	params := stand.DefaultParams().WithSafetyMargin(*margin)
	if *noBands {
		params = params.WithoutBands()
	}
	fmt.Printf("\nDetection parameters:\n")
	fmt.Printf("  Bottom zone: %.0f%%\n", params.BottomZone*100)
	fmt.Printf("  Seed: regularity >= %.2f, aspect >= %.2f, width >= %.0f%%\n",
		params.MinRegularity, params.MinAspect, params.MinWidthFrac*100)
	fmt.Printf("  Growth: margin %d px, %d iterations\n", params.SafetyMargin, params.MaxIterations)
	fmt.Printf("  Colour bands: %d below %.0f%%\n", len(params.Bands), params.ExclusionZoneTop*100)

	result, err := stand.Detect(frame, params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Detection failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nValidated: %v\n", result.Validated)
	if result.Reason != "" {
		fmt.Printf("Reason:    %s\n", result.Reason)
	}
	if result.Validated {
		fmt.Printf("Seed:      %dx%d at (%d,%d)\n", result.Seed.Width, result.Seed.Height, result.Seed.X, result.Seed.Y)
		fmt.Printf("Safety:    row %d\n", result.SafetyLine)
	}
	fmt.Printf("Removed:   %d pixels (%.1f%%)\n", result.Base.Count(), result.RemovedPct)
	fmt.Printf("Kept:      %d pixels\n", result.Mask.Count())

	if err := writeMask(*outPath, result.Mask, result.Base); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write mask: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nWrote %s\n", *outPath)
}

// writeMask saves kept pixels as white and removed base pixels as grey.
func writeMask(path string, kept, base img.Mask) error {
	out := image.NewGray(image.Rect(0, 0, kept.Width, kept.Height))
	for y := 0; y < kept.Height; y++ {
		for x := 0; x < kept.Width; x++ {
			switch {
			case kept.At(x, y):
				out.SetGray(x, y, color.Gray{Y: 255})
			case base.At(x, y):
				out.SetGray(x, y, color.Gray{Y: 96})
			}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, out); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
