package imgio

import (
	"encoding/binary"
	"image"
	"io"

	"github.com/disintegration/imaging"
)

// Orientation is the EXIF orientation flag describing the transform
// needed to display the decoded pixels upright.
type Orientation int

const (
	OrientationUnspecified Orientation = 0
	OrientationNormal      Orientation = 1
	OrientationFlipH       Orientation = 2
	OrientationRotate180   Orientation = 3
	OrientationFlipV       Orientation = 4
	OrientationTranspose   Orientation = 5
	OrientationRotate270   Orientation = 6
	OrientationTransverse  Orientation = 7
	OrientationRotate90    Orientation = 8
)

// ApplyOrientation returns img transformed so that its pixels are in
// upright order for the given orientation flag. Unknown or normal
// orientations return img unchanged.
func ApplyOrientation(img image.Image, o Orientation) image.Image {
	switch o {
	case OrientationFlipH:
		return imaging.FlipH(img)
	case OrientationRotate180:
		return imaging.Rotate180(img)
	case OrientationFlipV:
		return imaging.FlipV(img)
	case OrientationTranspose:
		return imaging.Transpose(img)
	case OrientationRotate270:
		return imaging.Rotate270(img)
	case OrientationTransverse:
		return imaging.Transverse(img)
	case OrientationRotate90:
		return imaging.Rotate90(img)
	}
	return img
}

// ReadOrientation walks the JPEG APP1/EXIF structure in r and returns
// the orientation tag. Any parse failure, non-JPEG input or missing tag
// yields OrientationUnspecified; orientation is best-effort and never
// an error.
func ReadOrientation(r io.Reader) Orientation {
	const (
		markerSOI      = 0xffd8
		markerAPP1     = 0xffe1
		exifHeader     = 0x45786966
		byteOrderBE    = 0x4d4d
		byteOrderLE    = 0x4949
		orientationTag = 0x0112
	)

	var soi uint16
	if err := binary.Read(r, binary.BigEndian, &soi); err != nil || soi != markerSOI {
		return OrientationUnspecified
	}

	// Scan segments until APP1.
	for {
		var marker, size uint16
		if err := binary.Read(r, binary.BigEndian, &marker); err != nil {
			return OrientationUnspecified
		}
		if err := binary.Read(r, binary.BigEndian, &size); err != nil {
			return OrientationUnspecified
		}
		if marker>>8 != 0xff {
			return OrientationUnspecified
		}
		if marker == markerAPP1 {
			break
		}
		if size < 2 {
			return OrientationUnspecified
		}
		if _, err := io.CopyN(io.Discard, r, int64(size-2)); err != nil {
			return OrientationUnspecified
		}
	}

	var header uint32
	if err := binary.Read(r, binary.BigEndian, &header); err != nil || header != exifHeader {
		return OrientationUnspecified
	}
	if _, err := io.CopyN(io.Discard, r, 2); err != nil {
		return OrientationUnspecified
	}

	var byteOrderTag uint16
	var byteOrder binary.ByteOrder
	if err := binary.Read(r, binary.BigEndian, &byteOrderTag); err != nil {
		return OrientationUnspecified
	}
	switch byteOrderTag {
	case byteOrderBE:
		byteOrder = binary.BigEndian
	case byteOrderLE:
		byteOrder = binary.LittleEndian
	default:
		return OrientationUnspecified
	}
	if _, err := io.CopyN(io.Discard, r, 2); err != nil {
		return OrientationUnspecified
	}

	var offset uint32
	if err := binary.Read(r, byteOrder, &offset); err != nil || offset < 8 {
		return OrientationUnspecified
	}
	if _, err := io.CopyN(io.Discard, r, int64(offset-8)); err != nil {
		return OrientationUnspecified
	}

	var numTags uint16
	if err := binary.Read(r, byteOrder, &numTags); err != nil {
		return OrientationUnspecified
	}

	for i := 0; i < int(numTags); i++ {
		var tag uint16
		if err := binary.Read(r, byteOrder, &tag); err != nil {
			return OrientationUnspecified
		}
		if tag != orientationTag {
			if _, err := io.CopyN(io.Discard, r, 10); err != nil {
				return OrientationUnspecified
			}
			continue
		}
		if _, err := io.CopyN(io.Discard, r, 6); err != nil {
			return OrientationUnspecified
		}
		var val uint16
		if err := binary.Read(r, byteOrder, &val); err != nil {
			return OrientationUnspecified
		}
		if val < 1 || val > 8 {
			return OrientationUnspecified
		}
		return Orientation(val)
	}
	return OrientationUnspecified
}
