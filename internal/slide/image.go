package slide

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io/fs"
	"math"
	"os"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// imageSlide is the pure Go backend. The whole level-0 plane is decoded at
// open time and a power-of-two level stack is derived from it, so every
// read after Open works on immutable buffers.
type imageSlide struct {
	mu          sync.RWMutex
	levels      []*image.NRGBA
	downsamples []float64
	props       Properties
}

func openImage(path string) (*imageSlide, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}

	return newImageSlide(img, format, path), nil
}

func newImageSlide(img image.Image, format, path string) *imageSlide {
	base := imaging.Clone(img)
	s := &imageSlide{
		levels:      []*image.NRGBA{base},
		downsamples: []float64{1},
		props:       Properties{Vendor: format},
	}

	sizes := levelSizes(base.Bounds().Size())
	cur := base
	for _, size := range sizes[1:] {
		cur = imaging.Resize(cur, size.X, size.Y, imaging.Box)
		s.levels = append(s.levels, cur)
		s.downsamples = append(s.downsamples, downsample(sizes[0], size))
	}

	if path != "" {
		if mppX, mppY, err := readResolution(path); err == nil {
			s.props.MppX, s.props.MppY = mppX, mppY
		}
	}

	return s
}

func (s *imageSlide) Dimensions() image.Point {
	return s.LevelDimensions(0)
}

func (s *imageSlide) LevelCount() int {
	return len(s.downsamples)
}

func (s *imageSlide) LevelDimensions(level int) image.Point {
	if level < 0 || level >= len(s.downsamples) {
		return image.Point{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.levels == nil {
		return image.Point{}
	}
	return s.levels[level].Bounds().Size()
}

func (s *imageSlide) LevelDownsample(level int) float64 {
	if level < 0 || level >= len(s.downsamples) {
		return 0
	}
	return s.downsamples[level]
}

func (s *imageSlide) BestLevelForDownsample(d float64) int {
	return bestLevel(s.downsamples, d)
}

func (s *imageSlide) ReadRegion(x0, y0, level, w, h int) (image.Image, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidRegion, w, h)
	}
	if level < 0 || level >= len(s.downsamples) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLevel, level)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.levels == nil {
		return nil, ErrClosed
	}

	src := s.levels[level]
	ds := s.downsamples[level]
	lx := int(math.Floor(float64(x0) / ds))
	ly := int(math.Floor(float64(y0) / ds))
	region := image.Rect(lx, ly, lx+w, ly+h)

	if region.In(src.Bounds()) {
		return imaging.Crop(src, region), nil
	}

	// Partially or fully outside the slide: pad with transparent pixels.
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	inside := region.Intersect(src.Bounds())
	if inside.Empty() {
		return dst, nil
	}
	return imaging.Paste(dst, imaging.Crop(src, inside), inside.Min.Sub(region.Min)), nil
}

func (s *imageSlide) Properties() Properties {
	return s.props
}

func (s *imageSlide) ConcurrentReads() bool {
	return true
}

func (s *imageSlide) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.levels = nil
	return nil
}
