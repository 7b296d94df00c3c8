package types

import (
	"context"
	"errors"
	"strconv"
	"strings"
)

// -----------------------------------------------------------------------------
// Typed Errors (stable categories for programmatic handling)
// -----------------------------------------------------------------------------

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindSyntax           ErrKind = iota + 1 // structurally invalid line
	ErrKindUnknownRoot                         // unrecognized root short code
	ErrKindUnsupportedType                     // unrecognized value kind spelling
	ErrKindMissingSection                      // directive before any section header
	ErrKindMalformedValue                      // payload does not match its kind's grammar
	ErrKindAccessDenied                        // store refused write access
	ErrKindStoreUnavailable                    // store could not be reached or failed
	ErrKindTypeMismatch                        // store rejected the kind/data pairing
	ErrKindLimitExceeded                       // name, size or depth over the configured limits
)

// String returns the taxonomy name of the kind.
func (k ErrKind) String() string {
	switch k {
	case ErrKindSyntax:
		return "SyntaxError"
	case ErrKindUnknownRoot:
		return "UnknownRootError"
	case ErrKindUnsupportedType:
		return "UnsupportedTypeError"
	case ErrKindMissingSection:
		return "MissingSectionError"
	case ErrKindMalformedValue:
		return "MalformedValueError"
	case ErrKindAccessDenied:
		return "AccessDeniedError"
	case ErrKindStoreUnavailable:
		return "StoreUnavailableError"
	case ErrKindTypeMismatch:
		return "TypeMismatchError"
	case ErrKindLimitExceeded:
		return "LimitExceededError"
	default:
		return "Error(" + strconv.Itoa(int(k)) + ")"
	}
}

// IsParseTime reports whether errors of this kind are raised by parsing or
// coercion, before the store is touched for the offending directive.
func (k ErrKind) IsParseTime() bool {
	switch k {
	case ErrKindSyntax, ErrKindUnknownRoot, ErrKindUnsupportedType,
		ErrKindMissingSection, ErrKindMalformedValue, ErrKindLimitExceeded:
		return true
	}
	return false
}

// Error is a typed error carrying the location of the offending line or
// directive and an optional underlying cause.
type Error struct {
	Kind ErrKind
	Msg  string
	Line int    // 1-based source line, 0 when unknown
	Path string // container path, "" when unknown
	Name string // value name, "" when not tied to a directive
	Err  error  // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	if e.Line > 0 {
		b.WriteString("line ")
		b.WriteString(strconv.Itoa(e.Line))
		b.WriteString(": ")
	}
	if e.Path != "" {
		b.WriteString("[")
		b.WriteString(e.Path)
		b.WriteString("] ")
	}
	if e.Name != "" {
		b.WriteString(strconv.Quote(e.Name))
		b.WriteString(": ")
	}
	b.WriteString(e.Msg)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind, so the sentinels below work with
// errors.Is regardless of message or location.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is. Compare by kind only.
var (
	ErrSyntax           = &Error{Kind: ErrKindSyntax, Msg: "syntax error"}
	ErrUnknownRoot      = &Error{Kind: ErrKindUnknownRoot, Msg: "unknown root key"}
	ErrUnsupportedType  = &Error{Kind: ErrKindUnsupportedType, Msg: "unsupported value type"}
	ErrMissingSection   = &Error{Kind: ErrKindMissingSection, Msg: "directive before any section"}
	ErrMalformedValue   = &Error{Kind: ErrKindMalformedValue, Msg: "malformed value"}
	ErrAccessDenied     = &Error{Kind: ErrKindAccessDenied, Msg: "access denied"}
	ErrStoreUnavailable = &Error{Kind: ErrKindStoreUnavailable, Msg: "store unavailable"}
	ErrTypeMismatch     = &Error{Kind: ErrKindTypeMismatch, Msg: "value type mismatch"}
	ErrLimitExceeded    = &Error{Kind: ErrKindLimitExceeded, Msg: "registry limit exceeded"}
)

// NewError builds an *Error of the given kind at line.
func NewError(kind ErrKind, line int, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Line: line}
}

// Locate returns a copy of the first *Error in err's chain with any unset
// position fields filled from line, path and name. Errors that are not an
// *Error come back unchanged.
func Locate(err error, line int, path, name string) error {
	var te *Error
	if !errors.As(err, &te) {
		return err
	}
	out := *te
	if out.Line == 0 {
		out.Line = line
	}
	if out.Path == "" {
		out.Path = path
	}
	if out.Name == "" {
		out.Name = name
	}
	return &out
}

// KindOf returns the ErrKind of the first *Error in err's chain, or 0.
func KindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// -----------------------------------------------------------------------------
// Store Adapter
// -----------------------------------------------------------------------------

// Store is the host's hierarchical key-value store as seen by the apply
// engine. Implementations must treat EnsureContainer as create-or-open: an
// existing container is not an error.
//
// Errors should be *Error values of kind ErrKindAccessDenied,
// ErrKindStoreUnavailable or ErrKindTypeMismatch; anything else is treated as
// ErrKindStoreUnavailable by the engine.
type Store interface {
	// EnsureContainer creates any missing segments of path and returns a
	// handle opened with write access.
	EnsureContainer(ctx context.Context, path ContainerPath) (Handle, error)
}

// Handle is an exclusive-use, write-capable reference to one container.
type Handle interface {
	// SetValue writes name with the given kind and data, replacing any
	// existing value of that name.
	SetValue(ctx context.Context, name string, kind ValueKind, data TypedValue) error

	// Close releases the handle. It always succeeds and is called exactly
	// once per successful EnsureContainer.
	Close()
}

// KeyDump is one container and its values as listed by a store that can
// enumerate its contents.
type KeyDump struct {
	Path   ContainerPath
	Values []NamedValue
}

// NamedValue is a stored value with its kind.
type NamedValue struct {
	Name  string
	Kind  ValueKind
	Value TypedValue
}

// Dumper is implemented by stores that can list their contents. Containers
// come back in path order, values in name order.
type Dumper interface {
	Dump(ctx context.Context) ([]KeyDump, error)
}
