package archiver

import "errors"

var (
	// ErrLocalIO wraps failures of the local filesystem
	ErrLocalIO = errors.New("local i/o error")
	// ErrUnknownKind is returned for items whose kind cannot be transferred
	ErrUnknownKind = errors.New("unknown item kind")
)
