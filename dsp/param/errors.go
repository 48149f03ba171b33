package param

import "errors"

var (
	// ErrUnknownParameter is returned for an id the store was not built with.
	ErrUnknownParameter = errors.New("param: unknown parameter")
	// ErrInvalidValue is returned for NaN values; the stored value is kept.
	ErrInvalidValue = errors.New("param: invalid value")
	// ErrDuplicateParameter is returned by NewStore for a repeated id.
	ErrDuplicateParameter = errors.New("param: duplicate parameter")
	// ErrInvalidRange is returned by NewStore for a malformed Spec.
	ErrInvalidRange = errors.New("param: invalid range")
)
