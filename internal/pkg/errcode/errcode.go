package errcode

const (
	ErrUnknown = 10000000 + iota
	ErrInvalid
	ErrUnsupportedFormat
	ErrParseFailed
	ErrPayloadTooLarge
	ErrStorageFailed
	ErrTooMany
	ErrInternal
)
