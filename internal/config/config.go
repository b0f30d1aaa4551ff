// Package config holds the settings slidedeck runs with.
//
// Settings are assembled once by viper from built-in defaults, an optional
// config file, SLIDEDECK_* environment variables and command-line flags, in
// increasing order of precedence. The resulting value is never modified
// after the server starts.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/kiesman99/slidedeck/pkg/tile"
)

// Keys understood in config files, environment and flags.
const (
	KeySlide    = "slide"
	KeyFormat   = "format"
	KeyTileSize = "tile-size"
	KeyOverlap  = "overlap"
	KeyQuality  = "quality"
	KeyListen   = "listen"
	KeyPort     = "port"
	KeyDebug    = "debug"
	KeyTimeout  = "timeout"
)

// Built-in defaults.
const (
	DefaultFormat   = tile.FormatJPEG
	DefaultTileSize = 256
	DefaultOverlap  = 1
	DefaultQuality  = 75
	DefaultListen   = "127.0.0.1"
	DefaultPort     = 5000
	DefaultTimeout  = 30 * time.Second
)

var (
	// ErrNoSlide indicates no slide file was configured.
	ErrNoSlide = errors.New("no slide file specified")
	// ErrInvalidSetting indicates a setting outside its allowed range.
	ErrInvalidSetting = errors.New("invalid setting")
)

// Error is a configuration error. It is fatal at startup.
type Error struct {
	Key string
	Err error
	Msg string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v: %s: %s", e.Err, e.Key, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Pyramid holds the tile generation parameters bound to a slide.
type Pyramid struct {
	TileSize int
	Overlap  int
	Format   string
	Quality  int
}

// Settings is the complete runtime configuration.
type Settings struct {
	Slide   string
	Pyramid Pyramid
	Listen  string
	Port    int
	Debug   bool
	Timeout time.Duration
}

// Addr returns the listen address in host:port form.
func (s Settings) Addr() string {
	return net.JoinHostPort(s.Listen, strconv.Itoa(s.Port))
}

// SetDefaults registers the built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyFormat, DefaultFormat)
	v.SetDefault(KeyTileSize, DefaultTileSize)
	v.SetDefault(KeyOverlap, DefaultOverlap)
	v.SetDefault(KeyQuality, DefaultQuality)
	v.SetDefault(KeyListen, DefaultListen)
	v.SetDefault(KeyPort, DefaultPort)
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyTimeout, DefaultTimeout)
}

// FromViper reads and validates the settings held by v.
func FromViper(v *viper.Viper) (Settings, error) {
	s := Settings{
		Slide: v.GetString(KeySlide),
		Pyramid: Pyramid{
			TileSize: v.GetInt(KeyTileSize),
			Overlap:  v.GetInt(KeyOverlap),
			Format:   strings.ToLower(v.GetString(KeyFormat)),
			Quality:  v.GetInt(KeyQuality),
		},
		Listen:  v.GetString(KeyListen),
		Port:    v.GetInt(KeyPort),
		Debug:   v.GetBool(KeyDebug),
		Timeout: v.GetDuration(KeyTimeout),
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks every setting.
func (s Settings) Validate() error {
	if s.Slide == "" {
		return &Error{Key: KeySlide, Err: ErrNoSlide}
	}
	if err := s.Pyramid.Validate(); err != nil {
		return err
	}
	if s.Port < 1 || s.Port > 65535 {
		return invalid(KeyPort, "must be between 1 and 65535, got %d", s.Port)
	}
	if s.Timeout < 0 {
		return invalid(KeyTimeout, "must not be negative, got %s", s.Timeout)
	}
	return nil
}

// Validate checks the tile generation parameters.
func (p Pyramid) Validate() error {
	if p.TileSize <= 0 {
		return invalid(KeyTileSize, "must be positive, got %d", p.TileSize)
	}
	if p.Overlap < 0 {
		return invalid(KeyOverlap, "must not be negative, got %d", p.Overlap)
	}
	if p.Quality < 0 || p.Quality > 100 {
		return invalid(KeyQuality, "must be between 0 and 100, got %d", p.Quality)
	}
	if p.Format != tile.FormatJPEG && p.Format != tile.FormatPNG {
		return invalid(KeyFormat, "must be jpeg or png, got %q", p.Format)
	}
	return nil
}

func invalid(key, format string, args ...interface{}) error {
	return &Error{Key: key, Err: ErrInvalidSetting, Msg: fmt.Sprintf(format, args...)}
}
