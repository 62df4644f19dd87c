package bongo

import (
	"fmt"
	"strings"

	"github.com/it-a-me/bongo/internal/identity"
	"github.com/it-a-me/bongo/internal/index"
	"github.com/it-a-me/bongo/internal/library"
	"github.com/it-a-me/bongo/internal/relpath"
	"github.com/it-a-me/bongo/internal/tagcodec"
)

type CommandError struct {
	message string
	cause   error
}

func (e *CommandError) Error() string {
	var msg strings.Builder
	fmt.Fprint(&msg, e.message)
	if e.cause != nil {
		fmt.Fprint(&msg, ": ", e.cause)
	}
	return msg.String()
}

func (e *CommandError) Unwrap() error {
	return e.cause
}

func newCommandError(message string, cause error) *CommandError {
	return &CommandError{message: message, cause: cause}
}

var (
	ErrParse             = tagcodec.ErrParse
	ErrUntagged          = tagcodec.ErrUntagged
	ErrWriteFailure      = tagcodec.ErrWriteFailure
	ErrSave              = tagcodec.ErrSave
	ErrUnsupportedFormat = tagcodec.ErrUnsupportedFormat

	ErrMissingIdentity = identity.ErrMissingIdentity
	ErrInvalidIdentity = identity.ErrInvalidIdentity

	ErrIndexNotFound      = index.ErrIndexNotFound
	ErrIndexAlreadyExists = index.ErrIndexAlreadyExists
	ErrTransaction        = index.ErrTransaction
	ErrIndexBusy          = index.ErrIndexBusy
	ErrSchemaMismatch     = index.ErrSchemaMismatch

	ErrNotDescendant  = relpath.ErrNotDescendant
	ErrInvalidSegment = relpath.ErrInvalidSegment

	ErrSelfCopy           = library.ErrSelfCopy
	ErrSameRoot           = library.ErrSameRoot
	ErrDestinationExists  = library.ErrDestinationExists
	ErrConflictingOptions = library.ErrConflictingOptions
)

// FileError carries the path of the file an error is about.
type FileError = tagcodec.FileError
