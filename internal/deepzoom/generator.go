// Package deepzoom cuts a multi-resolution slide into a Deep Zoom tile
// pyramid.
//
// Deep Zoom level 0 is a 1x1 pixel image; each following level doubles the
// resolution (rounding up) until the last level matches the slide's
// full-resolution size. Every level is divided into square tiles of
// TileSize pixels, and each tile carries Overlap extra pixels on every side
// that has a neighbouring tile.
package deepzoom

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// ErrInvalidAddress indicates a level, column or row outside the pyramid.
var ErrInvalidAddress = errors.New("invalid Deep Zoom address")

// Reader is the part of a slide the generator reads from.
type Reader interface {
	Dimensions() image.Point
	LevelDownsample(level int) float64
	LevelDimensions(level int) image.Point
	BestLevelForDownsample(d float64) int
	ReadRegion(x0, y0, level, w, h int) (image.Image, error)
}

// Region locates the slide pixels that make up one tile.
type Region struct {
	// Location is the top-left corner in level-0 coordinates.
	Location image.Point
	// Level is the slide level read from.
	Level int
	// Size is the region size in pixels of Level.
	Size image.Point
}

// Generator maps Deep Zoom tile addresses onto slide regions.
type Generator struct {
	slide    Reader
	tileSize int
	overlap  int

	// Indexed by Deep Zoom level, 0 being the 1x1 level.
	levelDims       []image.Point
	levelTiles      []image.Point
	slideLevels     []int
	levelDownsample []float64

	background color.Color
}

// New builds the level geometry of a Deep Zoom pyramid over slide.
func New(slide Reader, tileSize, overlap int) (*Generator, error) {
	if tileSize <= 0 {
		return nil, fmt.Errorf("tile size must be positive, got %d", tileSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("overlap must not be negative, got %d", overlap)
	}
	size := slide.Dimensions()
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("slide has no pixels: %dx%d", size.X, size.Y)
	}

	dims := []image.Point{size}
	for size.X > 1 || size.Y > 1 {
		size = image.Pt(max(1, ceilDiv(size.X, 2)), max(1, ceilDiv(size.Y, 2)))
		dims = append(dims, size)
	}
	for i, j := 0, len(dims)-1; i < j; i, j = i+1, j-1 {
		dims[i], dims[j] = dims[j], dims[i]
	}

	g := &Generator{
		slide:           slide,
		tileSize:        tileSize,
		overlap:         overlap,
		levelDims:       dims,
		levelTiles:      make([]image.Point, len(dims)),
		slideLevels:     make([]int, len(dims)),
		levelDownsample: make([]float64, len(dims)),
		background:      color.White,
	}
	for level, d := range dims {
		g.levelTiles[level] = image.Pt(ceilDiv(d.X, tileSize), ceilDiv(d.Y, tileSize))

		l0Downsample := math.Exp2(float64(len(dims) - level - 1))
		sl := slide.BestLevelForDownsample(l0Downsample)
		g.slideLevels[level] = sl
		g.levelDownsample[level] = l0Downsample / slide.LevelDownsample(sl)
	}
	return g, nil
}

// TileSize returns the tile edge length without overlap.
func (g *Generator) TileSize() int { return g.tileSize }

// Overlap returns the overlap added to each interior tile edge.
func (g *Generator) Overlap() int { return g.overlap }

// Dimensions returns the full-resolution image size.
func (g *Generator) Dimensions() image.Point { return g.levelDims[len(g.levelDims)-1] }

// LevelCount returns the number of Deep Zoom levels.
func (g *Generator) LevelCount() int { return len(g.levelDims) }

// LevelDimensions returns the pixel size of a Deep Zoom level.
func (g *Generator) LevelDimensions(level int) (image.Point, error) {
	if level < 0 || level >= len(g.levelDims) {
		return image.Point{}, fmt.Errorf("%w: level %d", ErrInvalidAddress, level)
	}
	return g.levelDims[level], nil
}

// LevelTiles returns the number of tile columns and rows of a level.
func (g *Generator) LevelTiles(level int) (image.Point, error) {
	if level < 0 || level >= len(g.levelTiles) {
		return image.Point{}, fmt.Errorf("%w: level %d", ErrInvalidAddress, level)
	}
	return g.levelTiles[level], nil
}

// TileCount returns the number of tiles across all levels.
func (g *Generator) TileCount() int {
	n := 0
	for _, t := range g.levelTiles {
		n += t.X * t.Y
	}
	return n
}

// TileCoordinates returns the slide region read for a tile.
func (g *Generator) TileCoordinates(level, col, row int) (Region, error) {
	region, _, err := g.tileInfo(level, col, row)
	return region, err
}

// TileDimensions returns the pixel size of a tile, overlap included.
func (g *Generator) TileDimensions(level, col, row int) (image.Point, error) {
	_, size, err := g.tileInfo(level, col, row)
	return size, err
}

// Tile renders one tile. The result is opaque: transparent slide pixels are
// composited onto a white background.
func (g *Generator) Tile(level, col, row int) (image.Image, error) {
	region, size, err := g.tileInfo(level, col, row)
	if err != nil {
		return nil, err
	}

	img, err := g.slide.ReadRegion(region.Location.X, region.Location.Y, region.Level, region.Size.X, region.Size.Y)
	if err != nil {
		return nil, fmt.Errorf("read region %v at slide level %d: %w", region.Location, region.Level, err)
	}

	tile := imaging.New(size.X, size.Y, g.background)
	if img.Bounds().Size() != size {
		img = imaging.Resize(img, size.X, size.Y, imaging.Lanczos)
	}
	return imaging.Overlay(tile, img, image.Point{}, 1.0), nil
}

func (g *Generator) tileInfo(level, col, row int) (Region, image.Point, error) {
	if level < 0 || level >= len(g.levelDims) {
		return Region{}, image.Point{}, fmt.Errorf("%w: level %d", ErrInvalidAddress, level)
	}
	tiles := g.levelTiles[level]
	if col < 0 || col >= tiles.X || row < 0 || row >= tiles.Y {
		return Region{}, image.Point{}, fmt.Errorf("%w: tile (%d,%d) at level %d", ErrInvalidAddress, col, row, level)
	}

	dims := g.levelDims[level]
	x, w := g.axis(col, tiles.X, dims.X)
	y, h := g.axis(row, tiles.Y, dims.Y)

	slideLevel := g.slideLevels[level]
	scale := g.levelDownsample[level]
	slideDownsample := g.slide.LevelDownsample(slideLevel)
	slideDims := g.slide.LevelDimensions(slideLevel)

	// Location in slide-level pixels, then in level-0 pixels.
	lx, ly := scale*float64(x), scale*float64(y)
	region := Region{
		Location: image.Pt(int(slideDownsample*lx), int(slideDownsample*ly)),
		Level:    slideLevel,
		Size: image.Pt(
			max(1, min(int(math.Ceil(scale*float64(w))), slideDims.X-int(math.Ceil(lx)))),
			max(1, min(int(math.Ceil(scale*float64(h))), slideDims.Y-int(math.Ceil(ly)))),
		),
	}
	return region, image.Pt(w, h), nil
}

// axis returns the start and length, overlap included, of tile t along one
// axis of a level that is limit pixels long and has count tiles.
func (g *Generator) axis(t, count, limit int) (int, int) {
	before, after := 0, 0
	if t != 0 {
		before = g.overlap
	}
	if t != count-1 {
		after = g.overlap
	}
	start := g.tileSize * t
	return start - before, min(g.tileSize, limit-start) + before + after
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
