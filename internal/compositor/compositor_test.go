package compositor

import (
	"bytes"
	"image"
	"image/color"
	_ "image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSigmoid_HalfAtZero(t *testing.T) {
	assert.Equal(t, float32(0.5), Sigmoid(0))
}

func TestSigmoid_RangeAndMonotonicity(t *testing.T) {
	prev := float32(-1)
	for x := float32(-80); x <= 80; x += 0.5 {
		s := Sigmoid(x)
		require.Greater(t, s, float32(0), "x=%v", x)
		require.Less(t, s, float32(1), "x=%v", x)
		require.Greater(t, s, prev, "not increasing at x=%v", x)
		prev = s
	}
}

func TestSigmoid_LargeNegativeDoesNotOverflow(t *testing.T) {
	// The branched form must stay finite and near zero instead of
	// computing exp(+large).
	s := Sigmoid(-80)
	assert.Greater(t, s, float32(0))
	assert.Less(t, s, float32(1e-30))
}

func TestBuildMask_MinMaxEndpoints(t *testing.T) {
	raw := []float32{0.5, -1, 2, 0}
	mask, w, h, err := BuildMask(raw, []int64{1, 1, 2, 2})
	require.NoError(t, err)
	assert.Equal(t, 2, w)
	assert.Equal(t, 2, h)

	// Sigmoid is monotonic, so the raw min/max are the activated
	// min/max: they must quantize to exactly 0 and 255.
	assert.Equal(t, byte(0), mask[1])
	assert.Equal(t, byte(255), mask[2])
}

func TestBuildMask_DegenerateRangeIsZero(t *testing.T) {
	raw := make([]float32, 16)
	mask, _, _, err := BuildMask(raw, []int64{1, 1, 4, 4})
	require.NoError(t, err)
	for i, v := range mask {
		require.Equal(t, byte(0), v, "pixel %d", i)
	}
}

func TestBuildMask_ShapeHandling(t *testing.T) {
	// Rank below 2 is rejected outright.
	_, _, _, err := BuildMask(make([]float32, 4), []int64{4})
	assert.ErrorIs(t, err, ErrOutput)

	// Rank 2 falls back to the fixed model resolution, which this
	// tiny tensor cannot cover.
	_, _, _, err = BuildMask(make([]float32, 4), []int64{2, 2})
	assert.ErrorIs(t, err, ErrOutput)

	// Rank 4 takes the mask dims from the trailing axes.
	mask, w, h, err := BuildMask(make([]float32, 6), []int64{1, 1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 3, w)
	assert.Equal(t, 2, h)
	assert.Len(t, mask, 6)

	// Non-positive trailing axes are invalid.
	_, _, _, err = BuildMask(make([]float32, 6), []int64{1, 1, 0, 3})
	assert.ErrorIs(t, err, ErrOutput)
}

func TestBuildMask_Undersized(t *testing.T) {
	_, _, _, err := BuildMask(make([]float32, 5), []int64{1, 1, 2, 3})
	assert.ErrorIs(t, err, ErrOutput)
}

func TestMergeAlpha(t *testing.T) {
	rgba := []byte{
		1, 2, 3, 255,
		4, 5, 6, 255,
	}
	merged, err := MergeAlpha(rgba, []byte{9, 7})
	require.NoError(t, err)

	assert.Equal(t, []byte{1, 2, 3, 9, 4, 5, 6, 7}, merged)
	// Source stays untouched.
	assert.Equal(t, byte(255), rgba[3])
}

func TestMergeAlpha_Mismatch(t *testing.T) {
	_, err := MergeAlpha(make([]byte, 8), make([]byte, 3))
	assert.ErrorIs(t, err, ErrOutput)
}

// decodePNG decodes encoded result bytes back into an NRGBA image.
func decodePNG(t *testing.T, data []byte) *image.NRGBA {
	t.Helper()
	img, _, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	nrgba, ok := img.(*image.NRGBA)
	require.True(t, ok, "expected NRGBA, got %T", img)
	return nrgba
}

func TestPostprocess_AllZeroOutputIsFullyTransparent(t *testing.T) {
	// 2×2 all-white opaque source, model output all zeros: sigmoid
	// collapses to a constant 0.5, the range floors to epsilon and
	// every mask byte becomes 0.
	rgba := make([]byte, 2*2*4)
	for i := range rgba {
		rgba[i] = 255
	}

	out, err := Postprocess(make([]float32, 4), []int64{1, 1, 2, 2}, rgba, 2, 2)
	require.NoError(t, err)

	img := decodePNG(t, out)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			c := img.NRGBAAt(x, y)
			assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 0}, c, "(%d,%d)", x, y)
		}
	}
}

func TestPostprocess_MaskUpscaledToSource(t *testing.T) {
	// 2×2 mask driving a 4×4 source: a uniform high-contrast output
	// exercises the resample path without depending on filter values.
	rgba := make([]byte, 4*4*4)
	for i := 0; i < len(rgba); i += 4 {
		rgba[i], rgba[i+1], rgba[i+2], rgba[i+3] = 10, 20, 30, 255
	}
	raw := []float32{5, 5, 5, -5} // one clear background corner

	out, err := Postprocess(raw, []int64{1, 1, 2, 2}, rgba, 4, 4)
	require.NoError(t, err)

	img := decodePNG(t, out)
	b := img.Bounds()
	require.Equal(t, 4, b.Dx())
	require.Equal(t, 4, b.Dy())

	// RGB survives untouched everywhere.
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			c := img.NRGBAAt(x, y)
			assert.Equal(t, uint8(10), c.R, "(%d,%d)", x, y)
			assert.Equal(t, uint8(20), c.G, "(%d,%d)", x, y)
			assert.Equal(t, uint8(30), c.B, "(%d,%d)", x, y)
		}
	}
	// Foreground corner fully opaque, background corner fully
	// transparent (corner preservation of the mask resample).
	assert.Equal(t, uint8(255), img.NRGBAAt(0, 0).A)
	assert.Equal(t, uint8(0), img.NRGBAAt(3, 3).A)
}

func TestPostprocess_BadRGBA(t *testing.T) {
	_, err := Postprocess(make([]float32, 4), []int64{1, 1, 2, 2}, make([]byte, 7), 2, 2)
	assert.ErrorIs(t, err, ErrOutput)
}
