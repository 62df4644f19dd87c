package library

import "errors"

var (
	ErrSelfCopy           = errors.New("source and destination are the same file")
	ErrSameRoot           = errors.New("destination is the library root")
	ErrDestinationExists  = errors.New("destination is occupied by another file")
	ErrConflictingOptions = errors.New("conflicting options")
)
