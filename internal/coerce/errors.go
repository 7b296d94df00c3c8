package coerce

import (
	"errors"
	"fmt"

	"github.com/joshuapare/regapply/pkg/types"
)

var (
	errEmptyInteger = errors.New("no digits")
	errBadDigit     = errors.New("invalid digit")
	errOutOfRange   = errors.New("value out of range")
	errOddHex       = errors.New("odd number of hex digits")
	errNotHex       = errors.New("invalid hex digit")
)

func malformed(kind types.ValueKind, raw string, cause error) *types.Error {
	return &types.Error{
		Kind: types.ErrKindMalformedValue,
		Msg:  fmt.Sprintf("invalid %s payload %q", kind, raw),
		Err:  cause,
	}
}
