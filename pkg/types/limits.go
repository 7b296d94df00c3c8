package types

import (
	"fmt"
	"unicode/utf8"
)

// ============================================================================
// Windows Registry Limits Constants
// ============================================================================
// These constants define the documented limits of the Windows registry.
// Names are measured in characters, sizes in bytes.

const (
	// WindowsMaxSubkeysDefault is the standard maximum number of subkeys per key.
	WindowsMaxSubkeysDefault = 512

	// WindowsMaxSubkeysAbsolute is the absolute maximum number of subkeys
	// that can exist under a single key.
	WindowsMaxSubkeysAbsolute = 65535

	// WindowsMaxValues is the hard limit for the number of values per key.
	WindowsMaxValues = 16384

	// WindowsMaxValueSize1MB is the standard maximum size for a value's data.
	WindowsMaxValueSize1MB = 1 << 20

	// WindowsMaxValueSize10MB is a relaxed maximum for large binary data.
	WindowsMaxValueSize10MB = 10 << 20

	// WindowsMaxValueSize64KB is a conservative maximum for constrained hosts.
	WindowsMaxValueSize64KB = 64 << 10

	// WindowsMaxKeyNameLen is the hard limit for a key name.
	WindowsMaxKeyNameLen = 255

	// WindowsMaxKeyNameLenHalf is half the Windows limit.
	WindowsMaxKeyNameLenHalf = 128

	// WindowsMaxValueNameLen is the hard limit for a value name.
	WindowsMaxValueNameLen = 16383

	// WindowsMaxValueNameLenSmall is a much smaller limit for strict validation.
	WindowsMaxValueNameLenSmall = 255

	// WindowsMaxTreeDepthPractical is the practical limit for tree depth.
	WindowsMaxTreeDepthPractical = 512

	// WindowsMaxTreeDepthDeep allows very deep trees for special cases.
	WindowsMaxTreeDepthDeep = 1024

	// WindowsMaxTreeDepthShallow is a conservative depth limit.
	WindowsMaxTreeDepthShallow = 128

	// StrictSubkeysDivisor is used to calculate strict subkey limits.
	StrictSubkeysDivisor = 2

	// StrictValuesDivisor is used to calculate strict value limits.
	StrictValuesDivisor = 16
)

// Limits defines constraints checked before a write reaches the store.
// A zero field disables that check.
type Limits struct {
	// MaxSubkeys is the maximum number of direct children of a container.
	// Enforced by stores that track children (memstore).
	MaxSubkeys int

	// MaxValues is the maximum number of values in a container.
	// Enforced by stores that track values (memstore).
	MaxValues int

	// MaxValueSize is the maximum encoded size of a value's data in bytes.
	MaxValueSize int

	// MaxKeyNameLen is the maximum length of one path segment in characters.
	MaxKeyNameLen int

	// MaxValueNameLen is the maximum length of a value name in characters.
	MaxValueNameLen int

	// MaxTreeDepth is the maximum number of segments below a root.
	MaxTreeDepth int
}

// DefaultLimits returns the standard Windows registry limits.
func DefaultLimits() Limits {
	return Limits{
		MaxSubkeys:      WindowsMaxSubkeysDefault,
		MaxValues:       WindowsMaxValues,
		MaxValueSize:    WindowsMaxValueSize1MB,
		MaxKeyNameLen:   WindowsMaxKeyNameLen,
		MaxValueNameLen: WindowsMaxValueNameLen,
		MaxTreeDepth:    WindowsMaxTreeDepthPractical,
	}
}

// RelaxedLimits returns more permissive limits for system keys or special cases.
// Use with caution - these allow writes that may fail on real Windows systems.
func RelaxedLimits() Limits {
	return Limits{
		MaxSubkeys:      WindowsMaxSubkeysAbsolute,
		MaxValues:       WindowsMaxValues,
		MaxValueSize:    WindowsMaxValueSize10MB,
		MaxKeyNameLen:   WindowsMaxKeyNameLen,
		MaxValueNameLen: WindowsMaxValueNameLen,
		MaxTreeDepth:    WindowsMaxTreeDepthDeep,
	}
}

// StrictLimits returns conservative limits for constrained environments.
func StrictLimits() Limits {
	return Limits{
		MaxSubkeys:      WindowsMaxSubkeysDefault / StrictSubkeysDivisor,
		MaxValues:       WindowsMaxValues / StrictValuesDivisor,
		MaxValueSize:    WindowsMaxValueSize64KB,
		MaxKeyNameLen:   WindowsMaxKeyNameLenHalf,
		MaxValueNameLen: WindowsMaxValueNameLenSmall,
		MaxTreeDepth:    WindowsMaxTreeDepthShallow,
	}
}

// LimitsPreset resolves a preset name: "default", "relaxed" or "strict".
func LimitsPreset(name string) (Limits, error) {
	switch name {
	case "", "default":
		return DefaultLimits(), nil
	case "relaxed":
		return RelaxedLimits(), nil
	case "strict":
		return StrictLimits(), nil
	default:
		return Limits{}, fmt.Errorf("unknown limits preset %q (want default, relaxed or strict)", name)
	}
}

// LimitError records which limit was exceeded. It is wrapped in an *Error of
// kind ErrKindLimitExceeded.
type LimitError struct {
	Limit   string // name of the limit that was exceeded
	Current int64  // observed value
	Maximum int64  // configured maximum
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s is %d (max %d)", e.Limit, e.Current, e.Maximum)
}

func exceeded(limit string, current, maximum int) *Error {
	return &Error{
		Kind: ErrKindLimitExceeded,
		Msg:  "registry limit exceeded",
		Err:  &LimitError{Limit: limit, Current: int64(current), Maximum: int64(maximum)},
	}
}

// CheckPath validates the depth and segment lengths of p.
func (l Limits) CheckPath(p ContainerPath) error {
	if l.MaxTreeDepth > 0 && p.Depth() > l.MaxTreeDepth {
		return exceeded("MaxTreeDepth", p.Depth(), l.MaxTreeDepth)
	}
	if l.MaxKeyNameLen > 0 {
		for _, seg := range p.Segments {
			if n := utf8.RuneCountInString(seg); n > l.MaxKeyNameLen {
				return exceeded("MaxKeyNameLen", n, l.MaxKeyNameLen)
			}
		}
	}
	return nil
}

// CheckValue validates a value name and its encoded data size.
func (l Limits) CheckValue(name string, size int) error {
	if l.MaxValueNameLen > 0 {
		if n := utf8.RuneCountInString(name); n > l.MaxValueNameLen {
			return exceeded("MaxValueNameLen", n, l.MaxValueNameLen)
		}
	}
	if l.MaxValueSize > 0 && size > l.MaxValueSize {
		return exceeded("MaxValueSize", size, l.MaxValueSize)
	}
	return nil
}

// CheckCounts validates child and value counts of one container.
func (l Limits) CheckCounts(subkeys, values int) error {
	if l.MaxSubkeys > 0 && subkeys > l.MaxSubkeys {
		return exceeded("MaxSubkeys", subkeys, l.MaxSubkeys)
	}
	if l.MaxValues > 0 && values > l.MaxValues {
		return exceeded("MaxValues", values, l.MaxValues)
	}
	return nil
}
