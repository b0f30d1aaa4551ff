package tile

import (
	"strconv"
)

// Resolve validates the raw path segments of a tile request.
//
// The format is checked first, so an unsupported format is reported even
// when the coordinates are garbage. Only the syntax is checked here: whether
// the level, column and row exist in the pyramid is for the pyramid to decide.
func Resolve(levelStr, colStr, rowStr, formatStr string) (Address, error) {
	format, err := ParseFormat(formatStr)
	if err != nil {
		return Address{}, err
	}

	level, err := parseCoordinate("level", levelStr)
	if err != nil {
		return Address{}, err
	}
	col, err := parseCoordinate("column", colStr)
	if err != nil {
		return Address{}, err
	}
	row, err := parseCoordinate("row", rowStr)
	if err != nil {
		return Address{}, err
	}

	return Address{Level: level, Column: col, Row: row, Format: format}, nil
}

// parseCoordinate accepts decimal digits only; signs are rejected.
func parseCoordinate(field, s string) (int, error) {
	n, err := strconv.ParseUint(s, 10, 31)
	if err != nil {
		return 0, &AddressError{Field: field, Value: s, Err: ErrMalformedAddress}
	}
	return int(n), nil
}
