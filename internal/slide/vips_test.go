//go:build vips

package slide

import (
	"errors"
	"image"
	"testing"
)

func TestVipsLevelStack(t *testing.T) {
	path := writeTestSlide(t, "slide.tiff", 3000, 1000)

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if s.Properties().Vendor != "vips" {
		t.Errorf("Vendor = %q, want vips", s.Properties().Vendor)
	}
	if s.ConcurrentReads() {
		t.Error("libvips backend must serialise reads")
	}

	wantDims := []image.Point{{3000, 1000}, {1500, 500}, {750, 250}}
	if s.LevelCount() != len(wantDims) {
		t.Fatalf("LevelCount = %d, want %d", s.LevelCount(), len(wantDims))
	}
	for i, want := range wantDims {
		if got := s.LevelDimensions(i); got != want {
			t.Errorf("LevelDimensions(%d) = %v, want %v", i, got, want)
		}
	}
	if got := s.BestLevelForDownsample(64); got != 2 {
		t.Errorf("BestLevelForDownsample(64) = %d, want 2", got)
	}

	img, err := s.ReadRegion(2000, 400, 2, 100, 50)
	if err != nil {
		t.Fatalf("ReadRegion: %v", err)
	}
	if img.Bounds().Size() != image.Pt(100, 50) {
		t.Errorf("region size = %v, want 100x50", img.Bounds().Size())
	}

	// Level 2 is 750 wide: a region starting at level-0 x=2800 overhangs it.
	img, err = s.ReadRegion(2800, 0, 2, 100, 10)
	if err != nil {
		t.Fatalf("ReadRegion: %v", err)
	}
	if _, _, _, a := img.At(90, 5).RGBA(); a != 0 {
		t.Error("pixel outside the level should be transparent")
	}
}

func TestVipsClose(t *testing.T) {
	s, err := Open(writeTestSlide(t, "slide.tiff", 64, 64))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := s.ReadRegion(0, 0, 0, 4, 4); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}
