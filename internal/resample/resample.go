// Package resample resizes flat pixel buffers between arbitrary
// resolutions using Lanczos filtering. Axes scale independently; no
// aspect-ratio policy is applied here.
package resample

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ErrResize reports a malformed source buffer or zero-dimension input.
var ErrResize = errors.New("resize")

// ResizeRGBA resizes a flat RGBA8 buffer from srcW×srcH to dstW×dstH.
// The source buffer is never mutated; a resize to the source dimensions
// returns a byte-identical copy.
func ResizeRGBA(src []byte, srcW, srcH, dstW, dstH int) ([]byte, error) {
	if err := checkDims(len(src), srcW, srcH, dstW, dstH, 4); err != nil {
		return nil, err
	}

	img := &image.NRGBA{
		Pix:    src,
		Stride: srcW * 4,
		Rect:   image.Rect(0, 0, srcW, srcH),
	}
	dst := imaging.Resize(img, dstW, dstH, imaging.Lanczos)
	return dst.Pix, nil
}

// ResizeMask resizes a flat single-channel byte mask from srcW×srcH to
// dstW×dstH. Same guarantees as ResizeRGBA.
func ResizeMask(src []byte, srcW, srcH, dstW, dstH int) ([]byte, error) {
	if err := checkDims(len(src), srcW, srcH, dstW, dstH, 1); err != nil {
		return nil, err
	}

	img := &image.Gray{
		Pix:    src,
		Stride: srcW,
		Rect:   image.Rect(0, 0, srcW, srcH),
	}
	dst := imaging.Resize(img, dstW, dstH, imaging.Lanczos)

	// The resampler yields interleaved RGBA; a gray source keeps all
	// color channels equal, so the mask is the R plane.
	out := make([]byte, dstW*dstH)
	for i := range out {
		out[i] = dst.Pix[i*4]
	}
	return out, nil
}

func checkDims(srcLen, srcW, srcH, dstW, dstH, channels int) error {
	if srcW <= 0 || srcH <= 0 || dstW <= 0 || dstH <= 0 {
		return fmt.Errorf("%w: invalid dimensions %dx%d -> %dx%d", ErrResize, srcW, srcH, dstW, dstH)
	}
	if want := srcW * srcH * channels; srcLen != want {
		return fmt.Errorf("%w: source buffer %d bytes, want %d (%dx%dx%d)",
			ErrResize, srcLen, want, srcW, srcH, channels)
	}
	return nil
}
