package errs

import "errors"

// Domain sentinel errors, mapped to HTTP status codes in handlers.
var (
	ErrSatelliteNotFound = errors.New("satellite not found")
	ErrDuplicateNorad    = errors.New("satellite with this norad id already exists")
	ErrInvalidSatellite  = errors.New("invalid satellite payload")
)
