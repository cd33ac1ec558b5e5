package geocode

import "errors"

var (
	// ErrInvalidCoordinate is returned when a latitude or longitude lies
	// outside its half-open range.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	// ErrInvalidPrecision is returned when a precision lies outside [1, 32].
	ErrInvalidPrecision = errors.New("invalid precision")
	// ErrInvalidBits is returned by FromBits when bits above the active
	// range are set.
	ErrInvalidBits = errors.New("invalid geocode bits")
)
