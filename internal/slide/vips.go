//go:build vips

package slide

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"math"
	"os"
	"sync"

	"github.com/davidbyttow/govips/v2/vips"
	"github.com/disintegration/imaging"
)

var vipsStartup sync.Once

// vipsSlide reads slides through libvips. libvips picks its OpenSlide loader
// for vendor formats (SVS, NDPI, MRXS, ...) when it was built with it.
//
// Levels below level 0 are loaded with the thumbnail operation, which
// shrinks on load: for OpenSlide and pyramidal TIFF it starts from the
// nearest stored pyramid level, so reading a low-resolution level never
// decodes the full-resolution plane.
// Reads copy the shared ImageRefs and are serialised by the caller.
type vipsSlide struct {
	levels      []*vips.ImageRef
	sizes       []image.Point
	downsamples []float64
	props       Properties
}

func openBackend(path string) (Slide, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	vipsStartup.Do(func() {
		vips.LoggingSettings(nil, vips.LogLevelWarning)
		vips.Startup(nil)
	})

	ref, err := vips.NewImageFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}

	sizes := levelSizes(image.Pt(ref.Width(), ref.Height()))
	s := &vipsSlide{
		levels:      []*vips.ImageRef{ref},
		sizes:       sizes,
		downsamples: []float64{1},
		props:       Properties{Vendor: "vips"},
	}
	for _, size := range sizes[1:] {
		level, err := vips.NewThumbnailWithSizeFromFile(path, size.X, size.Y, vips.InterestingNone, vips.SizeForce)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("%w: level %dx%d: %v", ErrUnsupported, size.X, size.Y, err)
		}
		s.levels = append(s.levels, level)
		s.downsamples = append(s.downsamples, downsample(sizes[0], size))
	}

	// libvips reports resolution in pixels per millimetre.
	if rx, ry := ref.ResX(), ref.ResY(); rx > 0 && ry > 0 {
		s.props.MppX = 1000 / rx
		s.props.MppY = 1000 / ry
	}
	return s, nil
}

func (s *vipsSlide) Dimensions() image.Point { return s.sizes[0] }

func (s *vipsSlide) LevelCount() int { return len(s.sizes) }

func (s *vipsSlide) LevelDimensions(level int) image.Point {
	if level < 0 || level >= len(s.sizes) {
		return image.Point{}
	}
	return s.sizes[level]
}

func (s *vipsSlide) LevelDownsample(level int) float64 {
	if level < 0 || level >= len(s.downsamples) {
		return 0
	}
	return s.downsamples[level]
}

func (s *vipsSlide) BestLevelForDownsample(d float64) int {
	return bestLevel(s.downsamples, d)
}

func (s *vipsSlide) ReadRegion(x0, y0, level, w, h int) (image.Image, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidRegion, w, h)
	}
	if level < 0 || level >= len(s.sizes) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLevel, level)
	}
	if s.levels == nil {
		return nil, ErrClosed
	}

	ds := s.downsamples[level]
	lx := int(math.Floor(float64(x0) / ds))
	ly := int(math.Floor(float64(y0) / ds))
	region := image.Rect(lx, ly, lx+w, ly+h)
	inside := region.Intersect(image.Rectangle{Max: s.sizes[level]})
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	if inside.Empty() {
		return dst, nil
	}

	area, err := s.levels[level].Copy()
	if err != nil {
		return nil, err
	}
	defer area.Close()

	if err := area.ExtractArea(inside.Min.X, inside.Min.Y, inside.Dx(), inside.Dy()); err != nil {
		return nil, err
	}
	piece, err := area.ToImage(nil)
	if err != nil {
		return nil, err
	}
	if inside == region {
		return piece, nil
	}
	return imaging.Paste(dst, piece, inside.Min.Sub(region.Min)), nil
}

func (s *vipsSlide) Properties() Properties { return s.props }

func (s *vipsSlide) ConcurrentReads() bool { return false }

func (s *vipsSlide) Close() error {
	for _, ref := range s.levels {
		ref.Close()
	}
	s.levels = nil
	return nil
}
