package format

import "errors"

var (
	// ErrTruncated indicates the buffer lacked the bytes required for a value.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrOddLength indicates UTF-16 data with a dangling byte.
	ErrOddLength = errors.New("format: utf16 data has odd length")
	// ErrMissingTerminator indicates REG_MULTI_SZ data without its double null.
	ErrMissingTerminator = errors.New("format: multisz missing terminator")
	// ErrUnsupported indicates a value kind this package cannot encode.
	ErrUnsupported = errors.New("format: unsupported value kind")
)
