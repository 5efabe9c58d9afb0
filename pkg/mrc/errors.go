package mrc

import "errors"

// Fatal condition sentinels. Preconditions are checked before any external
// state is touched; format, truncation and range failures abort before any
// partial array or metadata reaches the caller.
var (
	ErrBadExtension    = errors.New("mrc: unrecognized file extension")
	ErrShapeMismatch   = errors.New("mrc: array shape does not match header")
	ErrBadKind         = errors.New("mrc: unknown format kind")
	ErrUnsupportedType = errors.New("mrc: unsupported element type")
	ErrUnknownMode     = errors.New("mrc: unknown pixel mode")
	ErrUnsupportedMode = errors.New("mrc: unsupported pixel mode")
	ErrTruncated       = errors.New("mrc: truncated file")
	ErrRange           = errors.New("mrc: slice range unavailable")
)
