package tile

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
)

// Encoder serialises rendered tiles. The zero value encodes JPEG at
// quality 0; use NewEncoder for the configured quality.
type Encoder struct {
	quality int
}

// NewEncoder creates an encoder applying quality (0-100) to JPEG tiles.
// PNG tiles are lossless and ignore it.
func NewEncoder(quality int) *Encoder {
	return &Encoder{quality: quality}
}

// Encode renders img in format. The pixel dimensions are kept as is and the
// output is byte-for-byte reproducible for identical input.
func (e *Encoder) Encode(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.EncodeTo(&buf, img, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeTo writes img in format to w.
func (e *Encoder) EncodeTo(w io.Writer, img image.Image, format string) error {
	var err error
	switch format {
	case FormatJPEG:
		err = imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(e.quality))
	case FormatPNG:
		err = imaging.Encode(w, img, imaging.PNG)
	default:
		return &AddressError{Field: "format", Value: format, Err: ErrUnsupportedFormat}
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrEncode, format, err)
	}
	return nil
}
