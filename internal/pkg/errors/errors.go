// Package errors holds the sentinel failure classes of the read pipeline;
// the handler layer maps them onto wire error codes.
package errors

import "errors"

var (
	ErrInvalid           = errors.New("invalid")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrParseFailed       = errors.New("parse failed")
	ErrPayloadTooLarge   = errors.New("payload too large")
	ErrStorageFailed     = errors.New("storage failed")
)
