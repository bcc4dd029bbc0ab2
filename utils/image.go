package utils

import (
	"bytes"
	"errors"

	"github.com/disintegration/imaging"
)

const MaxPhotoSide = 1024

var ErrInvalidPhoto = errors.New("photo is not a supported image")

// NormalizePhoto decodes an uploaded photo, fits it into MaxPhotoSide x MaxPhotoSide
// and re-encodes it as JPEG so stored blobs stay bounded.
func NormalizePhoto(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, ErrInvalidPhoto
	}
	bounds := img.Bounds()
	if bounds.Dx() > MaxPhotoSide || bounds.Dy() > MaxPhotoSide {
		img = imaging.Fit(img, MaxPhotoSide, MaxPhotoSide, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
