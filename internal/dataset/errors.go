package dataset

import "errors"

var (
	// ErrSourceMissing is returned when a source fragment does not exist.
	ErrSourceMissing = errors.New("source file not found")
	// ErrSourceInvalid is returned when a fragment cannot be parsed or lacks
	// a required column.
	ErrSourceInvalid = errors.New("source file could not be parsed")
)
