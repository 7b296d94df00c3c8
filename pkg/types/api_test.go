package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Format(t *testing.T) {
	err := &Error{
		Kind: ErrKindMalformedValue,
		Msg:  "invalid REG_DWORD",
		Line: 4,
		Path: `HKCU\Software\Vendor`,
		Name: "Flags",
		Err:  errors.New("value out of range"),
	}
	assert.Equal(t, `line 4: [HKCU\Software\Vendor] "Flags": invalid REG_DWORD: value out of range`, err.Error())

	bare := NewError(ErrKindSyntax, 0, "unterminated header")
	assert.Equal(t, "unterminated header", bare.Error())

	var nilErr *Error
	assert.Equal(t, "<nil>", nilErr.Error())
}

func TestError_IsMatchesKind(t *testing.T) {
	err := fmt.Errorf("apply: %w", &Error{Kind: ErrKindUnknownRoot, Msg: `unknown root key "HKXX"`, Line: 1})

	assert.ErrorIs(t, err, ErrUnknownRoot)
	assert.NotErrorIs(t, err, ErrSyntax)
	assert.Equal(t, ErrKindUnknownRoot, KindOf(err))
	assert.Equal(t, ErrKind(0), KindOf(errors.New("plain")))
}

func TestError_UnwrapReachesCause(t *testing.T) {
	cause := &LimitError{Limit: "MaxValueSize", Current: 10, Maximum: 4}
	err := &Error{Kind: ErrKindLimitExceeded, Msg: "registry limit exceeded", Err: cause}

	var le *LimitError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "MaxValueSize", le.Limit)
	assert.ErrorIs(t, err, ErrLimitExceeded)
}

func TestLocate(t *testing.T) {
	orig := &Error{Kind: ErrKindMalformedValue, Msg: "invalid REG_DWORD", Name: "Flags"}
	err := Locate(fmt.Errorf("coerce: %w", orig), 7, `HKCU\A`, "Other")

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, 7, e.Line)
	assert.Equal(t, `HKCU\A`, e.Path)
	assert.Equal(t, "Flags", e.Name, "set fields are kept")
	assert.Zero(t, orig.Line, "the original is not modified")

	plain := errors.New("plain")
	assert.Same(t, plain, Locate(plain, 1, "p", "n"))
}

func TestErrKind_Classification(t *testing.T) {
	for _, k := range []ErrKind{ErrKindSyntax, ErrKindUnknownRoot, ErrKindUnsupportedType, ErrKindMissingSection, ErrKindMalformedValue} {
		assert.True(t, k.IsParseTime(), k.String())
	}
	for _, k := range []ErrKind{ErrKindAccessDenied, ErrKindStoreUnavailable, ErrKindTypeMismatch} {
		assert.False(t, k.IsParseTime(), k.String())
	}
	assert.Equal(t, "SyntaxError", ErrKindSyntax.String())
	assert.Equal(t, "Error(99)", ErrKind(99).String())
}
