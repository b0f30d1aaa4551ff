package deepzoom

import (
	"encoding/xml"
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
)

// fakeSlide is a single-level slide filled with one colour.
type fakeSlide struct {
	size  image.Point
	fill  color.Color
	reads []Region
}

func (f *fakeSlide) Dimensions() image.Point               { return f.size }
func (f *fakeSlide) LevelDownsample(level int) float64     { return 1 }
func (f *fakeSlide) LevelDimensions(level int) image.Point { return f.size }
func (f *fakeSlide) BestLevelForDownsample(float64) int    { return 0 }

func (f *fakeSlide) ReadRegion(x0, y0, level, w, h int) (image.Image, error) {
	f.reads = append(f.reads, Region{Location: image.Pt(x0, y0), Level: level, Size: image.Pt(w, h)})
	return imaging.New(w, h, f.fill), nil
}

func newTestGenerator(t *testing.T, w, h int) (*Generator, *fakeSlide) {
	t.Helper()
	s := &fakeSlide{size: image.Pt(w, h), fill: color.NRGBA{R: 200, G: 10, B: 10, A: 255}}
	g, err := New(s, 256, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g, s
}

func TestNew_InvalidParameters(t *testing.T) {
	s := &fakeSlide{size: image.Pt(10, 10)}
	if _, err := New(s, 0, 1); err == nil {
		t.Error("expected error for zero tile size")
	}
	if _, err := New(s, 256, -1); err == nil {
		t.Error("expected error for negative overlap")
	}
	if _, err := New(&fakeSlide{}, 256, 1); err == nil {
		t.Error("expected error for empty slide")
	}
}

func TestLevelGeometry(t *testing.T) {
	g, _ := newTestGenerator(t, 1000, 800)

	if g.LevelCount() != 11 {
		t.Fatalf("LevelCount = %d, want 11", g.LevelCount())
	}

	wantDims := []image.Point{
		{1, 1}, {2, 2}, {4, 4}, {8, 7}, {16, 13}, {32, 25},
		{63, 50}, {125, 100}, {250, 200}, {500, 400}, {1000, 800},
	}
	for level, want := range wantDims {
		got, err := g.LevelDimensions(level)
		if err != nil {
			t.Fatalf("LevelDimensions(%d): %v", level, err)
		}
		if got != want {
			t.Errorf("LevelDimensions(%d) = %v, want %v", level, got, want)
		}
	}

	tiles, err := g.LevelTiles(10)
	if err != nil {
		t.Fatalf("LevelTiles: %v", err)
	}
	if tiles != image.Pt(4, 4) {
		t.Errorf("LevelTiles(10) = %v, want (4,4)", tiles)
	}
	// Levels 0-8 have one tile each, level 9 is 2x2, level 10 is 4x4.
	if g.TileCount() != 9+4+16 {
		t.Errorf("TileCount = %d, want %d", g.TileCount(), 9+4+16)
	}
	if g.Dimensions() != image.Pt(1000, 800) {
		t.Errorf("Dimensions = %v", g.Dimensions())
	}
}

func TestTileDimensions(t *testing.T) {
	g, _ := newTestGenerator(t, 1000, 800)

	tests := []struct {
		name            string
		level, col, row int
		want            image.Point
	}{
		{"top-left corner", 10, 0, 0, image.Pt(257, 257)},
		{"interior", 10, 1, 1, image.Pt(258, 258)},
		{"right edge", 10, 3, 0, image.Pt(233, 257)},
		{"bottom-right corner", 10, 3, 3, image.Pt(233, 33)},
		{"single-tile level", 8, 0, 0, image.Pt(250, 200)},
		{"smallest level", 0, 0, 0, image.Pt(1, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.TileDimensions(tt.level, tt.col, tt.row)
			if err != nil {
				t.Fatalf("TileDimensions: %v", err)
			}
			if got != tt.want {
				t.Errorf("TileDimensions = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTileCoordinates(t *testing.T) {
	g, _ := newTestGenerator(t, 1000, 800)

	region, err := g.TileCoordinates(10, 1, 2)
	if err != nil {
		t.Fatalf("TileCoordinates: %v", err)
	}
	want := Region{Location: image.Pt(255, 511), Level: 0, Size: image.Pt(258, 258)}
	if region != want {
		t.Errorf("TileCoordinates = %+v, want %+v", region, want)
	}

	// One level down every tile covers twice as many slide pixels.
	region, err = g.TileCoordinates(9, 1, 0)
	if err != nil {
		t.Fatalf("TileCoordinates: %v", err)
	}
	want = Region{Location: image.Pt(510, 0), Level: 0, Size: image.Pt(490, 514)}
	if region != want {
		t.Errorf("TileCoordinates = %+v, want %+v", region, want)
	}
}

func TestInvalidAddress(t *testing.T) {
	g, _ := newTestGenerator(t, 1000, 800)

	tests := []struct {
		name            string
		level, col, row int
	}{
		{"negative level", -1, 0, 0},
		{"level past full resolution", 11, 0, 0},
		{"column past edge", 10, 4, 0},
		{"row past edge", 10, 0, 4},
		{"far beyond", 10, 1000, 1000},
		{"negative column", 10, -1, 0},
		{"tile on single-tile level", 3, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := g.Tile(tt.level, tt.col, tt.row); !errors.Is(err, ErrInvalidAddress) {
				t.Errorf("Tile: expected ErrInvalidAddress, got %v", err)
			}
			if _, err := g.TileDimensions(tt.level, tt.col, tt.row); !errors.Is(err, ErrInvalidAddress) {
				t.Errorf("TileDimensions: expected ErrInvalidAddress, got %v", err)
			}
		})
	}
}

func TestTile(t *testing.T) {
	g, s := newTestGenerator(t, 1000, 800)

	img, err := g.Tile(10, 3, 3)
	if err != nil {
		t.Fatalf("Tile: %v", err)
	}
	if img.Bounds().Size() != image.Pt(233, 33) {
		t.Errorf("tile size = %v, want 233x33", img.Bounds().Size())
	}
	r, gr, b, a := img.At(10, 10).RGBA()
	if r>>8 != 200 || gr>>8 != 10 || b>>8 != 10 || a>>8 != 255 {
		t.Errorf("pixel = (%d,%d,%d,%d), want (200,10,10,255)", r>>8, gr>>8, b>>8, a>>8)
	}
	if len(s.reads) != 1 {
		t.Fatalf("expected one slide read, got %d", len(s.reads))
	}

	// Downsampled level: the region is resized to the tile size.
	img, err = g.Tile(9, 0, 0)
	if err != nil {
		t.Fatalf("Tile: %v", err)
	}
	if img.Bounds().Size() != image.Pt(257, 257) {
		t.Errorf("tile size = %v, want 257x257", img.Bounds().Size())
	}
}

func TestTile_TransparentFlattened(t *testing.T) {
	s := &fakeSlide{size: image.Pt(64, 64), fill: color.NRGBA{}}
	g, err := New(s, 256, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	img, err := g.Tile(g.LevelCount()-1, 0, 0)
	if err != nil {
		t.Fatalf("Tile: %v", err)
	}
	r, gr, b, a := img.At(0, 0).RGBA()
	if r>>8 != 255 || gr>>8 != 255 || b>>8 != 255 || a>>8 != 255 {
		t.Errorf("pixel = (%d,%d,%d,%d), want opaque white", r>>8, gr>>8, b>>8, a>>8)
	}
}

func TestDZI(t *testing.T) {
	g, _ := newTestGenerator(t, 1000, 800)

	data, err := g.DZI("jpeg")
	if err != nil {
		t.Fatalf("DZI: %v", err)
	}
	doc := string(data)

	if !strings.HasPrefix(doc, `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Errorf("missing XML declaration: %s", doc)
	}
	for _, want := range []string{
		`xmlns="` + Namespace + `"`,
		`Format="jpeg"`,
		`Overlap="1"`,
		`TileSize="256"`,
		`Height="800"`,
		`Width="1000"`,
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("DZI missing %s: %s", want, doc)
		}
	}

	var parsed Descriptor
	if err := xml.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("DZI is not well-formed: %v", err)
	}
	if parsed.Size.Width != 1000 || parsed.Size.Height != 800 || parsed.TileSize != 256 || parsed.Overlap != 1 {
		t.Errorf("parsed descriptor = %+v", parsed)
	}
}
