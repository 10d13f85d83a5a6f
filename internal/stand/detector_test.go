package stand

import (
	"bytes"
	"log/slog"
	"testing"

	img "miniscan/internal/image"
	"miniscan/pkg/colorutil"
	"miniscan/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	armourRed = colorutil.RGB{R: 160, G: 20, B: 25}
	legGrey   = colorutil.RGB{R: 128, G: 128, B: 128}
	baseGrey  = colorutil.RGB{R: 100, G: 100, B: 100}
)

// miniature builds a 300x400 frame filled by the subject: a red torso, grey
// legs in rows 240-340 and a wide base in rows 340-400.
func miniature() img.Frame {
	return miniatureAt(300, 400, 0)
}

// miniatureAt draws the same subject on a width x height canvas, dy rows down.
func miniatureAt(width, height, dy int) img.Frame {
	f := img.NewFrame(width, height)
	f.Fill(110, dy, 190, dy+240, armourRed)
	f.Fill(120, dy+240, 180, dy+340, legGrey)
	f.Fill(50, dy+340, 250, dy+400, baseGrey)
	return f
}

func TestDetectRemovesBase(t *testing.T) {
	f := miniature()

	result, err := Detect(f, DefaultParams())
	require.NoError(t, err)

	assert.True(t, result.Validated)
	assert.Empty(t, result.Reason)
	assert.Equal(t, geometry.RectInt{X: 50, Y: 340, Width: 200, Height: 60}, result.Seed)
	assert.Equal(t, 300, result.SafetyLine)

	base := geometry.RectInt{X: 50, Y: 340, Width: 200, Height: 60}
	assert.Zero(t, result.Mask.CountIn(base), "base pixels must be excluded")

	torso := geometry.RectInt{X: 110, Y: 0, Width: 80, Height: 240}
	assert.Equal(t, torso.Area(), result.Mask.CountIn(torso))
	assert.Greater(t, result.RemovedPct, 0.0)
}

func TestDetectSubjectInsideLargerCanvas(t *testing.T) {
	// Same subject in rows 100-500 of an 800-row canvas; the bottom of the
	// canvas is empty.
	f := miniatureAt(300, 800, 100)

	result, err := Detect(f, DefaultParams())
	require.NoError(t, err)

	assert.True(t, result.Validated, result.Reason)
	assert.Equal(t, geometry.RectInt{X: 50, Y: 440, Width: 200, Height: 60}, result.Seed)
	assert.Equal(t, 400, result.SafetyLine)

	base := geometry.RectInt{X: 50, Y: 440, Width: 200, Height: 60}
	assert.Zero(t, result.Mask.CountIn(base))

	torso := geometry.RectInt{X: 110, Y: 100, Width: 80, Height: 240}
	assert.Equal(t, torso.Area(), result.Mask.CountIn(torso))

	above := geometry.RectInt{X: 0, Y: 0, Width: f.Width, Height: result.SafetyLine}
	assert.Equal(t, f.Mask.CountIn(above), result.Mask.CountIn(above))
}

func TestDetectLogsSummaryAtInfo(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	_, err := Detect(miniature(), DefaultParams())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `level=INFO msg="stand detection complete"`)
	assert.Contains(t, out, "validated=true")
}

func TestDetectPreservesLegsAboveSafetyLine(t *testing.T) {
	f := miniature()

	result, err := Detect(f, DefaultParams())
	require.NoError(t, err)

	legs := geometry.RectInt{X: 120, Y: 240, Width: 60, Height: 60}
	kept := float64(result.Mask.CountIn(legs)) / float64(legs.Area())
	assert.GreaterOrEqual(t, kept, 0.8)

	// Nothing above the safety line is ever removed.
	above := geometry.RectInt{X: 0, Y: 0, Width: f.Width, Height: result.SafetyLine}
	assert.Equal(t, f.Mask.CountIn(above), result.Mask.CountIn(above))
}

func TestDetectRejectsTallComponent(t *testing.T) {
	// Only legs reach the bottom: tall and narrow, not a base.
	f := img.NewFrame(300, 400)
	f.Fill(110, 40, 190, 300, armourRed)
	f.Fill(130, 300, 170, 400, armourRed)

	result, err := Detect(f, DefaultParams().WithoutBands())
	require.NoError(t, err)

	assert.False(t, result.Validated)
	assert.Equal(t, ReasonNotWide, result.Reason)
	assert.Equal(t, -1, result.SafetyLine)
	assert.Equal(t, f.Mask.Count(), result.Mask.Count())
}

func TestDetectEmptyForeground(t *testing.T) {
	f := img.NewFrame(200, 200)

	result, err := Detect(f, DefaultParams())
	require.NoError(t, err)

	assert.False(t, result.Validated)
	assert.Equal(t, ReasonEmptyZone, result.Reason)
	assert.Zero(t, result.Mask.Count())
	assert.Zero(t, result.RemovedPct)
}

func TestDetectColorBandOnlyBelowZoneTop(t *testing.T) {
	// Only a narrow foot reaches the bottom, so there is no geometric base;
	// grey in the upper frame is subject paint, grey low down is terrain.
	f := img.NewFrame(200, 200)
	f.Fill(60, 10, 140, 60, legGrey)
	f.Fill(60, 150, 80, 170, legGrey)
	f.Fill(60, 60, 140, 150, armourRed)
	f.Fill(95, 150, 105, 200, armourRed)

	result, err := Detect(f, DefaultParams())
	require.NoError(t, err)
	assert.False(t, result.Validated)

	upper := geometry.RectInt{X: 60, Y: 10, Width: 80, Height: 50}
	lower := geometry.RectInt{X: 60, Y: 150, Width: 20, Height: 20}
	assert.Equal(t, upper.Area(), result.Mask.CountIn(upper))
	assert.Zero(t, result.Mask.CountIn(lower))
}

func TestValidateSeed(t *testing.T) {
	p := DefaultParams()
	tests := []struct {
		name string
		rect geometry.RectInt
		area int
		want string
	}{
		{name: "wide solid base", rect: geometry.RectInt{X: 10, Y: 100, Width: 60, Height: 20}, area: 1100, want: ""},
		{name: "jagged", rect: geometry.RectInt{X: 10, Y: 100, Width: 60, Height: 20}, area: 200, want: ReasonIrregular},
		{name: "tall", rect: geometry.RectInt{X: 10, Y: 100, Width: 20, Height: 20}, area: 400, want: ReasonNotWide},
		{name: "tiny", rect: geometry.RectInt{X: 10, Y: 100, Width: 12, Height: 5}, area: 60, want: ReasonTooNarrow},
		{name: "no room above", rect: geometry.RectInt{X: 10, Y: 20, Width: 60, Height: 20}, area: 1200, want: ReasonNoSafeSpace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bounds := geometry.RectInt{X: 0, Y: 0, Width: 100, Height: 120}
			assert.Equal(t, tt.want, validateSeed(tt.rect, tt.area, bounds, p))
		})
	}
}
