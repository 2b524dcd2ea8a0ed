// Package compositor turns the raw segmentation output into an alpha
// mask and merges it with the original-resolution image, producing the
// final transparent PNG bytes.
package compositor

import (
	"errors"
	"fmt"
	"math"

	"github.com/AnyUserName/cutout-cli/internal/imgio"
	"github.com/AnyUserName/cutout-cli/internal/resample"
	"github.com/AnyUserName/cutout-cli/internal/tensor"
)

// ErrOutput reports a malformed or undersized raw inference output.
var ErrOutput = errors.New("model output")

// rangeFloor keeps min-max normalization defined when every activation
// is identical; the normalized value then collapses to zero.
const rangeFloor = 1e-6

// Sigmoid is the numerically stable logistic function: the expression
// is branched on sign so large negative inputs never overflow exp.
func Sigmoid(x float32) float32 {
	if x >= 0 {
		return float32(1 / (1 + math.Exp(-float64(x))))
	}
	e := math.Exp(float64(x))
	return float32(e / (1 + e))
}

// maskDims extracts the mask height/width from the raw output shape.
// Rank ≥ 4 outputs carry them in the last two axes; lower ranks fall
// back to the fixed model resolution.
func maskDims(shape []int64) (int, int, error) {
	if len(shape) < 2 {
		return 0, 0, fmt.Errorf("%w: shape %v has rank %d, want at least 2", ErrOutput, shape, len(shape))
	}
	h, w := tensor.InputSize, tensor.InputSize
	if len(shape) >= 4 {
		h = int(shape[len(shape)-2])
		w = int(shape[len(shape)-1])
	}
	if h <= 0 || w <= 0 {
		return 0, 0, fmt.Errorf("%w: invalid mask dimensions %dx%d", ErrOutput, w, h)
	}
	return w, h, nil
}

// BuildMask activates the raw output with a stable sigmoid and
// quantizes it into a single-channel byte mask using per-image min-max
// normalization: the darkest activation maps to 0 and the brightest to
// 255, maximizing alpha contrast for this image.
func BuildMask(raw []float32, shape []int64) ([]byte, int, int, error) {
	w, h, err := maskDims(shape)
	if err != nil {
		return nil, 0, 0, err
	}
	n := w * h
	if len(raw) < n {
		return nil, 0, 0, fmt.Errorf("%w: %d floats, want at least %d (%dx%d)", ErrOutput, len(raw), n, w, h)
	}

	activated := make([]float32, n)
	minV := float32(math.Inf(1))
	maxV := float32(math.Inf(-1))
	for i := 0; i < n; i++ {
		a := Sigmoid(raw[i])
		activated[i] = a
		if a < minV {
			minV = a
		}
		if a > maxV {
			maxV = a
		}
	}

	rng := maxV - minV
	if rng < rangeFloor {
		rng = rangeFloor
	}

	mask := make([]byte, n)
	for i, a := range activated {
		v := math.Round(float64((a-minV)/rng) * 255)
		if v < 0 {
			v = 0
		} else if v > 255 {
			v = 255
		}
		mask[i] = byte(v)
	}
	return mask, w, h, nil
}

// MergeAlpha overwrites the alpha byte of every pixel in rgba with the
// corresponding mask byte, leaving R/G/B untouched. The merged buffer
// is a new allocation; rgba is not modified.
func MergeAlpha(rgba []byte, mask []byte) ([]byte, error) {
	if len(rgba) != len(mask)*4 {
		return nil, fmt.Errorf("%w: mask %d pixels does not cover image %d bytes", ErrOutput, len(mask), len(rgba))
	}
	out := make([]byte, len(rgba))
	copy(out, rgba)
	for i, a := range mask {
		out[i*4+3] = a
	}
	return out, nil
}

// Postprocess converts the raw inference output into the final
// transparent image: sigmoid activation, min-max quantization, mask
// upscale to the original resolution, alpha merge with the original
// RGBA buffer and lossless PNG encoding.
func Postprocess(raw []float32, shape []int64, rgba []byte, w, h int) ([]byte, error) {
	mask, mw, mh, err := BuildMask(raw, shape)
	if err != nil {
		return nil, err
	}

	if mw != w || mh != h {
		mask, err = resample.ResizeMask(mask, mw, mh, w, h)
		if err != nil {
			return nil, err
		}
	}

	merged, err := MergeAlpha(rgba, mask)
	if err != nil {
		return nil, err
	}
	return imgio.EncodeLosslessRGBA(merged, w, h)
}
