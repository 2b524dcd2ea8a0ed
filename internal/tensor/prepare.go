// Package tensor converts model-resolution RGBA buffers into the
// channel-planar normalized float32 input the segmentation network
// expects.
package tensor

import (
	"errors"
	"fmt"
)

// InputSize is the fixed square model input resolution.
const InputSize = 1024

// ImageNet-style channel statistics used by the network.
var (
	Mean = [3]float32{0.485, 0.456, 0.406}
	Std  = [3]float32{0.229, 0.224, 0.225}
)

// divisorFloor keeps the adaptive divisor away from zero on an
// all-black image.
const divisorFloor = 1e-6

// ErrTensor reports an input buffer that does not match the expected
// model-resolution RGBA layout.
var ErrTensor = errors.New("prepare tensor")

// Prepare converts a w×h RGBA8 buffer into a planar [1,3,h,w] float32
// tensor. Normalization is two-pass: the first pass finds the maximum
// raw R/G/B byte value across the whole image, the second divides every
// channel byte by that maximum before applying the per-channel
// mean/std. The adaptive divisor (instead of a fixed 255) matches the
// network's training-time preprocessing and must not be simplified.
func Prepare(rgba []byte, w, h int) ([]float32, []int64, error) {
	if w <= 0 || h <= 0 || len(rgba) != w*h*4 {
		return nil, nil, fmt.Errorf("%w: buffer %d bytes does not match %dx%dx4", ErrTensor, len(rgba), w, h)
	}

	var maxPixel byte
	for i := 0; i < len(rgba); i += 4 {
		if v := rgba[i]; v > maxPixel {
			maxPixel = v
		}
		if v := rgba[i+1]; v > maxPixel {
			maxPixel = v
		}
		if v := rgba[i+2]; v > maxPixel {
			maxPixel = v
		}
	}
	divisor := float32(maxPixel)
	if divisor < divisorFloor {
		divisor = divisorFloor
	}

	plane := w * h
	data := make([]float32, 3*plane)
	red := data[:plane]
	green := data[plane : 2*plane]
	blue := data[2*plane:]

	for p := 0; p < plane; p++ {
		i := p * 4
		red[p] = (float32(rgba[i])/divisor - Mean[0]) / Std[0]
		green[p] = (float32(rgba[i+1])/divisor - Mean[1]) / Std[1]
		blue[p] = (float32(rgba[i+2])/divisor - Mean[2]) / Std[2]
	}

	return data, []int64{1, 3, int64(h), int64(w)}, nil
}
