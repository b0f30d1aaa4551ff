// Package pyramid binds one slide to one set of tile generation parameters
// and serves Deep Zoom descriptors and tiles from it.
package pyramid

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/kiesman99/slidedeck/internal/config"
	"github.com/kiesman99/slidedeck/internal/deepzoom"
	"github.com/kiesman99/slidedeck/internal/slide"
)

var (
	// ErrSourceOpen indicates the slide could not be opened or tiled.
	ErrSourceOpen = errors.New("cannot open pyramid source")
	// ErrInvalidAddress indicates a tile outside the pyramid.
	ErrInvalidAddress = deepzoom.ErrInvalidAddress
	// ErrClosed indicates a request against a closed source.
	ErrClosed = errors.New("pyramid source closed")
)

// SourceOpenError reports why Bind failed.
type SourceOpenError struct {
	Path string
	Err  error
}

func (e *SourceOpenError) Error() string {
	return fmt.Sprintf("%v %s: %v", ErrSourceOpen, e.Path, e.Err)
}

func (e *SourceOpenError) Unwrap() []error {
	return []error{ErrSourceOpen, e.Err}
}

// Source is a slide bound to fixed pyramid parameters. The parameters never
// change; serving a different geometry means binding a new Source.
type Source struct {
	path  string
	cfg   config.Pyramid
	slide slide.Slide
	gen   *deepzoom.Generator

	// mu serialises slide access when the backend cannot read concurrently.
	// It stays nil otherwise.
	mu *sync.Mutex

	closeOnce sync.Once
	closeErr  error
	closed    chan struct{}
}

// Bind opens the slide at path and prepares a Deep Zoom generator over it.
func Bind(path string, cfg config.Pyramid) (*Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s, err := slide.Open(path)
	if err != nil {
		return nil, &SourceOpenError{Path: path, Err: err}
	}
	return newSource(path, cfg, s)
}

func newSource(path string, cfg config.Pyramid, s slide.Slide) (*Source, error) {
	gen, err := deepzoom.New(s, cfg.TileSize, cfg.Overlap)
	if err != nil {
		s.Close()
		return nil, &SourceOpenError{Path: path, Err: err}
	}

	src := &Source{
		path:   path,
		cfg:    cfg,
		slide:  s,
		gen:    gen,
		closed: make(chan struct{}),
	}
	if !s.ConcurrentReads() {
		src.mu = &sync.Mutex{}
	}
	return src, nil
}

// Path returns the slide file the source was bound to.
func (s *Source) Path() string { return s.path }

// Config returns the pyramid parameters.
func (s *Source) Config() config.Pyramid { return s.cfg }

// Properties returns the slide metadata.
func (s *Source) Properties() slide.Properties { return s.slide.Properties() }

// Geometry exposes the level layout of the pyramid.
func (s *Source) Geometry() *deepzoom.Generator { return s.gen }

// Slide returns the underlying slide handle.
func (s *Source) Slide() slide.Slide { return s.slide }

// Descriptor renders the DZI document advertising tiles in format.
func (s *Source) Descriptor(format string) ([]byte, error) {
	unlock, err := s.acquire()
	if err != nil {
		return nil, err
	}
	defer unlock()

	return s.gen.DZI(format)
}

// Tile renders the tile at level, col, row. Coordinates outside the
// pyramid yield an error wrapping ErrInvalidAddress.
func (s *Source) Tile(level, col, row int) (image.Image, error) {
	unlock, err := s.acquire()
	if err != nil {
		return nil, err
	}
	defer unlock()

	return s.gen.Tile(level, col, row)
}

// Close releases the slide. It is safe to call more than once.
func (s *Source) Close() error {
	s.closeOnce.Do(func() {
		close(s.closed)
		if s.mu != nil {
			s.mu.Lock()
			defer s.mu.Unlock()
		}
		s.closeErr = s.slide.Close()
	})
	return s.closeErr
}

func (s *Source) acquire() (func(), error) {
	select {
	case <-s.closed:
		return nil, ErrClosed
	default:
	}
	if s.mu == nil {
		return func() {}, nil
	}
	s.mu.Lock()
	return s.mu.Unlock, nil
}
