package serialization

import "errors"

var (
	// ErrUnknownScheme indicates a URL scheme with no registered handler.
	ErrUnknownScheme = errors.New("serialization: unknown scheme")
	// ErrUnknownContentType indicates a content type with no registered format.
	ErrUnknownContentType = errors.New("serialization: unknown content type")
	// ErrUnknownEncoding indicates a content encoding with no registered codec.
	ErrUnknownEncoding = errors.New("serialization: unknown content encoding")
	// ErrNotSupported indicates an operation the scheme cannot perform.
	ErrNotSupported = errors.New("serialization: operation not supported")
)
