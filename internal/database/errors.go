package database

import "errors"

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrUnknownFilter is returned when a filter names a flag the kind does not have.
	ErrUnknownFilter = errors.New("unknown filter")
	// ErrInvalidRating is returned when a rating is outside [0, 10].
	ErrInvalidRating = errors.New("rating must be between 0 and 10")
	// ErrInvalidQuality is returned for an unknown download link quality code.
	ErrInvalidQuality = errors.New("invalid download quality")
	// ErrInvalidNumber is returned when a season or episode number is below 1.
	ErrInvalidNumber = errors.New("number must be at least 1")
)
