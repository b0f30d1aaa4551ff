package slide

import (
	"errors"
	"fmt"
	"os"

	"github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
)

// ErrNoResolution indicates the file carries no usable resolution tags.
var ErrNoResolution = errors.New("no resolution metadata")

// TIFF ResolutionUnit values.
const (
	resolutionUnitInch       = 2
	resolutionUnitCentimeter = 3
)

// readResolution returns microns per pixel from the XResolution,
// YResolution and ResolutionUnit tags of a TIFF or EXIF-bearing file.
func readResolution(path string) (float64, float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, err
	}

	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrNoResolution, err)
	}

	im := exifcommon.NewIfdMapping()
	if err := exifcommon.LoadStandardIfds(im); err != nil {
		return 0, 0, err
	}
	ti := exif.NewTagIndex()

	_, index, err := exif.Collect(im, ti, rawExif)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrNoResolution, err)
	}

	resX, okX := rationalTag(index.RootIfd, "XResolution")
	resY, okY := rationalTag(index.RootIfd, "YResolution")
	if !okX || !okY || resX <= 0 || resY <= 0 {
		return 0, 0, ErrNoResolution
	}

	// Microns per resolution unit. The TIFF default unit is the inch.
	unit := 25400.0
	if tags, err := index.RootIfd.FindTagWithName("ResolutionUnit"); err == nil {
		if val, err := tags[0].Value(); err == nil {
			var u uint16
			switch v := val.(type) {
			case []uint16:
				if len(v) > 0 {
					u = v[0]
				}
			case uint16:
				u = v
			}
			switch u {
			case resolutionUnitCentimeter:
				unit = 10000
			case resolutionUnitInch, 0:
			default:
				return 0, 0, ErrNoResolution
			}
		}
	}

	return unit / resX, unit / resY, nil
}

func rationalTag(ifd *exif.Ifd, name string) (float64, bool) {
	tags, err := ifd.FindTagWithName(name)
	if err != nil || len(tags) == 0 {
		return 0, false
	}
	val, err := tags[0].Value()
	if err != nil {
		return 0, false
	}
	rats, ok := val.([]exifcommon.Rational)
	if !ok || len(rats) == 0 || rats[0].Denominator == 0 {
		return 0, false
	}
	return float64(rats[0].Numerator) / float64(rats[0].Denominator), true
}
