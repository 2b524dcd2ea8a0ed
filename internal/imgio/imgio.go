// Package imgio decodes source photographs into flat RGBA8 buffers and
// encodes result buffers back to lossless PNG.
//
// All buffers are row-major, 4 bytes per pixel (R,G,B,A), straight
// alpha. Decoding always applies the embedded EXIF orientation so
// downstream stages only ever see upright pixel order.
package imgio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"

	"github.com/disintegration/imaging"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	// ErrDecode reports an unreadable or invalid source image.
	ErrDecode = errors.New("decode image")
	// ErrEncode reports a buffer/dimension mismatch or encoder failure.
	ErrEncode = errors.New("encode image")
)

// DecodeOriented reads an image file, applies any embedded EXIF
// orientation and returns the upright pixels as a flat RGBA8 buffer
// plus its dimensions.
func DecodeOriented(path string) ([]byte, int, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	// Orientation is read from a separate pass over the raw bytes;
	// a missing or malformed EXIF block falls back to Unspecified.
	orient := ReadOrientation(bytes.NewReader(data))

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%w: %s: %v", ErrDecode, path, err)
	}

	img = ApplyOrientation(img, orient)

	nrgba := imaging.Clone(img)
	b := nrgba.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, 0, 0, fmt.Errorf("%w: %s: zero dimensions %dx%d", ErrDecode, path, w, h)
	}
	return nrgba.Pix, w, h, nil
}

// EncodeLosslessRGBA serializes a flat RGBA8 buffer to PNG bytes,
// preserving the alpha channel bit-exactly.
func EncodeLosslessRGBA(buf []byte, w, h int) ([]byte, error) {
	if w <= 0 || h <= 0 || len(buf) != w*h*4 {
		return nil, fmt.Errorf("%w: buffer %d bytes does not match %dx%dx4", ErrEncode, len(buf), w, h)
	}

	img := &image.NRGBA{
		Pix:    buf,
		Stride: w * 4,
		Rect:   image.Rect(0, 0, w, h),
	}

	var out bytes.Buffer
	out.Grow(256 * 1024)
	enc := &png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&out, img); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return out.Bytes(), nil
}
