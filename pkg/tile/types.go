package tile

import (
	"fmt"
	"strings"
)

// Tile formats defined by Deep Zoom.
const (
	FormatJPEG = "jpeg"
	FormatPNG  = "png"
)

// Address identifies one tile of the pyramid
type Address struct {
	Level  int
	Column int
	Row    int
	Format string
}

func (a Address) String() string {
	return fmt.Sprintf("%d/%d_%d.%s", a.Level, a.Column, a.Row, a.Format)
}

// MimeType returns the Content-Type of the encoded tile
func (a Address) MimeType() string {
	return MimeType(a.Format)
}

// MimeType returns the Content-Type for a tile format
func MimeType(format string) string {
	return "image/" + format
}

// ParseFormat normalises a tile format name, accepting any letter case
func ParseFormat(s string) (string, error) {
	format := strings.ToLower(s)
	switch format {
	case FormatJPEG, FormatPNG:
		return format, nil
	}
	return "", &AddressError{Field: "format", Value: s, Err: ErrUnsupportedFormat}
}
