package resample

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checkerboard builds a w×h opaque RGBA buffer alternating white and
// black pixels, white at (0,0).
func checkerboard(w, h int) []byte {
	buf := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := byte(0)
			if (x+y)%2 == 0 {
				v = 255
			}
			i := (y*w + x) * 4
			buf[i], buf[i+1], buf[i+2], buf[i+3] = v, v, v, 255
		}
	}
	return buf
}

func gradientRGBA(w, h int) []byte {
	buf := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			buf[i] = byte(x * 255 / (w - 1))
			buf[i+1] = byte(y * 255 / (h - 1))
			buf[i+2] = byte((x * y) % 256)
			buf[i+3] = 255
		}
	}
	return buf
}

func TestResizeRGBA_SameSizeIsByteIdentical(t *testing.T) {
	src := gradientRGBA(7, 5)
	dst, err := ResizeRGBA(src, 7, 5, 7, 5)
	require.NoError(t, err)
	require.Equal(t, src, dst)

	// The copy must not share the source's backing array.
	dst[0] ^= 0xff
	assert.NotEqual(t, src[0], dst[0])
}

func TestResizeRGBA_DoesNotMutateSource(t *testing.T) {
	src := gradientRGBA(6, 6)
	orig := make([]byte, len(src))
	copy(orig, src)

	_, err := ResizeRGBA(src, 6, 6, 12, 3)
	require.NoError(t, err)
	assert.Equal(t, orig, src)
}

func TestResizeRGBA_Deterministic(t *testing.T) {
	src := gradientRGBA(16, 9)
	a, err := ResizeRGBA(src, 16, 9, 40, 23)
	require.NoError(t, err)
	b, err := ResizeRGBA(src, 16, 9, 40, 23)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestResizeRGBA_CheckerboardCornerPreservation(t *testing.T) {
	src := checkerboard(4, 4)
	dst, err := ResizeRGBA(src, 4, 4, 8, 8)
	require.NoError(t, err)
	require.Len(t, dst, 8*8*4)

	corner := func(buf []byte, w, x, y int) byte { return buf[(y*w+x)*4] }

	// Upscaling doubles each axis; destination corners must reproduce
	// the source corner pixel values exactly.
	assert.Equal(t, corner(src, 4, 0, 0), corner(dst, 8, 0, 0), "top-left")
	assert.Equal(t, corner(src, 4, 3, 0), corner(dst, 8, 7, 0), "top-right")
	assert.Equal(t, corner(src, 4, 0, 3), corner(dst, 8, 0, 7), "bottom-left")
	assert.Equal(t, corner(src, 4, 3, 3), corner(dst, 8, 7, 7), "bottom-right")
}

func TestResizeRGBA_NonAspectPreserving(t *testing.T) {
	src := gradientRGBA(8, 4)
	dst, err := ResizeRGBA(src, 8, 4, 5, 9)
	require.NoError(t, err)
	assert.Len(t, dst, 5*9*4)
}

func TestResizeRGBA_Errors(t *testing.T) {
	src := gradientRGBA(4, 4)

	_, err := ResizeRGBA(src, 0, 4, 8, 8)
	assert.ErrorIs(t, err, ErrResize)

	_, err = ResizeRGBA(src, 4, 4, 8, 0)
	assert.ErrorIs(t, err, ErrResize)

	_, err = ResizeRGBA(src[:10], 4, 4, 8, 8)
	assert.ErrorIs(t, err, ErrResize)
}

func TestResizeMask_SameSizeIsByteIdentical(t *testing.T) {
	src := make([]byte, 6*4)
	for i := range src {
		src[i] = byte(i * 11 % 256)
	}
	dst, err := ResizeMask(src, 6, 4, 6, 4)
	require.NoError(t, err)
	assert.Equal(t, src, dst)
}

func TestResizeMask_Upscale(t *testing.T) {
	// Uniform mask stays uniform under any resize.
	src := make([]byte, 3*3)
	for i := range src {
		src[i] = 200
	}
	dst, err := ResizeMask(src, 3, 3, 10, 7)
	require.NoError(t, err)
	require.Len(t, dst, 10*7)
	for i, v := range dst {
		require.Equal(t, byte(200), v, "pixel %d", i)
	}
}

func TestResizeMask_Errors(t *testing.T) {
	src := make([]byte, 9)

	_, err := ResizeMask(src, 3, 3, 0, 3)
	assert.ErrorIs(t, err, ErrResize)

	_, err = ResizeMask(src, 4, 4, 2, 2)
	assert.ErrorIs(t, err, ErrResize)
}
