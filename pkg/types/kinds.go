package types

import "fmt"

// -----------------------------------------------------------------------------
// Root Keys
// -----------------------------------------------------------------------------

// RootKey identifies one of the store's five top-level namespaces.
type RootKey uint8

const (
	HKLM RootKey = iota + 1 // HKEY_LOCAL_MACHINE
	HKCU                    // HKEY_CURRENT_USER
	HKCR                    // HKEY_CLASSES_ROOT
	HKU                     // HKEY_USERS
	HKCC                    // HKEY_CURRENT_CONFIG
)

// RootKeys lists every root in declaration order.
var RootKeys = [...]RootKey{HKLM, HKCU, HKCR, HKU, HKCC}

var rootNames = [...]struct{ short, long string }{
	HKLM: {"HKLM", "HKEY_LOCAL_MACHINE"},
	HKCU: {"HKCU", "HKEY_CURRENT_USER"},
	HKCR: {"HKCR", "HKEY_CLASSES_ROOT"},
	HKU:  {"HKU", "HKEY_USERS"},
	HKCC: {"HKCC", "HKEY_CURRENT_CONFIG"},
}

// Valid reports whether r is one of the five known roots.
func (r RootKey) Valid() bool { return r >= HKLM && r <= HKCC }

// String returns the short code used in script headers (e.g. "HKCU").
func (r RootKey) String() string {
	if !r.Valid() {
		return fmt.Sprintf("RootKey(%d)", uint8(r))
	}
	return rootNames[r].short
}

// LongName returns the full registry name (e.g. "HKEY_CURRENT_USER").
func (r RootKey) LongName() string {
	if !r.Valid() {
		return r.String()
	}
	return rootNames[r].long
}

// ParseRootCode resolves a short code. Matching is exact: codes are upper case.
func ParseRootCode(code string) (RootKey, bool) {
	for _, r := range RootKeys {
		if rootNames[r].short == code {
			return r, true
		}
	}
	return 0, false
}

// ParseRootName resolves a short code or a full HKEY_* name.
func ParseRootName(name string) (RootKey, bool) {
	if r, ok := ParseRootCode(name); ok {
		return r, true
	}
	for _, r := range RootKeys {
		if rootNames[r].long == name {
			return r, true
		}
	}
	return 0, false
}

// -----------------------------------------------------------------------------
// Value Kinds
// -----------------------------------------------------------------------------

// ValueKind enumerates the value types a script may declare. The numbers
// align with the Windows REG_* definitions.
type ValueKind uint32

const (
	Text           ValueKind = 1  // REG_SZ
	ExpandableText ValueKind = 2  // REG_EXPAND_SZ
	Binary         ValueKind = 3  // REG_BINARY
	Integer32      ValueKind = 4  // REG_DWORD
	MultiText      ValueKind = 7  // REG_MULTI_SZ
	Integer64      ValueKind = 11 // REG_QWORD
)

// ValueKinds lists every supported kind in canonical order.
var ValueKinds = [...]ValueKind{Text, ExpandableText, MultiText, Binary, Integer32, Integer64}

// String implements the Stringer interface and returns the external
// spelling used in scripts.
func (k ValueKind) String() string {
	switch k {
	case Text:
		return "REG_SZ"
	case ExpandableText:
		return "REG_EXPAND_SZ"
	case MultiText:
		return "REG_MULTI_SZ"
	case Binary:
		return "REG_BINARY"
	case Integer32:
		return "REG_DWORD"
	case Integer64:
		return "REG_QWORD"
	default:
		// Format as signed int32 to match how regedit shows unknown types
		return fmt.Sprintf("UNKNOWN_TYPE_%d", int32(k))
	}
}

// Valid reports whether k is one of the supported kinds.
func (k ValueKind) Valid() bool {
	switch k {
	case Text, ExpandableText, MultiText, Binary, Integer32, Integer64:
		return true
	}
	return false
}

// Tag returns the TypedValue variant this kind coerces to.
func (k ValueKind) Tag() ValueTag {
	switch k {
	case Text, ExpandableText:
		return TagString
	case MultiText:
		return TagStrings
	case Binary:
		return TagBytes
	case Integer32, Integer64:
		return TagInteger
	default:
		return 0
	}
}

// ParseValueKind resolves an external spelling such as "REG_DWORD".
func ParseValueKind(spelling string) (ValueKind, bool) {
	for _, k := range ValueKinds {
		if k.String() == spelling {
			return k, true
		}
	}
	return 0, false
}
