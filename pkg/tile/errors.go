package tile

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat indicates a tile format other than jpeg or png.
	ErrUnsupportedFormat = errors.New("unsupported tile format")
	// ErrMalformedAddress indicates a level, column or row that is not a
	// non-negative integer.
	ErrMalformedAddress = errors.New("malformed tile address")
	// ErrEncode indicates the codec failed on a valid tile.
	ErrEncode = errors.New("tile encoding failed")
)

// AddressError reports which part of a tile request was rejected
type AddressError struct {
	Field string
	Value string
	Err   error
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("%v: %s %q", e.Err, e.Field, e.Value)
}

func (e *AddressError) Unwrap() error {
	return e.Err
}
