// Package slide opens whole-slide images and reads pixel regions from them.
//
// A Slide is a multi-resolution image: level 0 is the full-resolution
// plane and every further level is a downsampled copy of it. Region
// coordinates are always given in level-0 pixels, the size in pixels of
// the level being read. This matches the OpenSlide read_region contract so
// the Deep Zoom generator can run over any backend.
//
// Two backends exist. The default one is pure Go and decodes the formats
// registered with the image package (TIFF, JPEG, PNG, GIF, BMP, WebP).
// Building with -tags vips swaps in a libvips backend, which can open the
// vendor formats libvips understands through OpenSlide.
package slide

import (
	"errors"
	"fmt"
	"image"
)

var (
	// ErrNotFound indicates the slide file does not exist.
	ErrNotFound = errors.New("slide file not found")
	// ErrUnsupported indicates the file exists but no decoder understands it.
	ErrUnsupported = errors.New("unsupported slide format")
	// ErrClosed indicates a read on a slide that was already closed.
	ErrClosed = errors.New("slide closed")
	// ErrInvalidLevel indicates a slide level outside [0, LevelCount).
	ErrInvalidLevel = errors.New("invalid slide level")
	// ErrInvalidRegion indicates a region with a non-positive size.
	ErrInvalidRegion = errors.New("invalid region size")
)

// Properties holds descriptive slide metadata.
type Properties struct {
	// Vendor names the backend that decoded the slide, e.g. "tiff" or "vips".
	Vendor string
	// MppX and MppY are microns per pixel at level 0, zero when unknown.
	MppX float64
	MppY float64
}

// Slide is an open whole-slide image.
type Slide interface {
	// Dimensions returns the level-0 width and height.
	Dimensions() image.Point
	LevelCount() int
	LevelDimensions(level int) image.Point
	LevelDownsample(level int) float64
	// BestLevelForDownsample returns the level whose downsample is the
	// largest one not exceeding d.
	BestLevelForDownsample(d float64) int
	// ReadRegion reads a w x h block from level, with the top-left corner
	// given in level-0 coordinates. Pixels outside the slide are
	// transparent.
	ReadRegion(x0, y0, level, w, h int) (image.Image, error)
	Properties() Properties
	// ConcurrentReads reports whether ReadRegion may be called from several
	// goroutines at once.
	ConcurrentReads() bool
	Close() error
}

// Open opens the slide at path with the backend selected at build time.
func Open(path string) (Slide, error) {
	s, err := openBackend(path)
	if err != nil {
		return nil, fmt.Errorf("open slide %s: %w", path, err)
	}
	return s, nil
}

// levelMinSide stops the level stack once the longer side of a level is at
// or below this many pixels.
const levelMinSide = 1024

// levelSizes returns the level-0 size followed by its successive halvings,
// rounding up, until the longer side is at most levelMinSide.
func levelSizes(size image.Point) []image.Point {
	sizes := []image.Point{size}
	for max(size.X, size.Y) > levelMinSide {
		size = image.Pt((size.X+1)/2, (size.Y+1)/2)
		sizes = append(sizes, size)
	}
	return sizes
}

// downsample is the mean of the horizontal and vertical scale factors
// between level 0 and a level.
func downsample(base, level image.Point) float64 {
	return (float64(base.X)/float64(level.X) + float64(base.Y)/float64(level.Y)) / 2
}

// bestLevel picks the deepest level whose downsample does not exceed d.
func bestLevel(downsamples []float64, d float64) int {
	if d < downsamples[0] {
		return 0
	}
	best := 0
	for i, ds := range downsamples {
		if ds > d {
			break
		}
		best = i
	}
	return best
}
