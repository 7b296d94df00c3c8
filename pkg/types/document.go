package types

import (
	"slices"
	"strings"
)

// PathSeparator is the canonical separator between container path segments.
const PathSeparator = `\`

// ContainerPath identifies a container under one of the root keys.
type ContainerPath struct {
	Root     RootKey
	Segments []string
}

// NewPath builds a ContainerPath from segments.
func NewPath(root RootKey, segments ...string) ContainerPath {
	return ContainerPath{Root: root, Segments: segments}
}

// String renders the path in canonical form, e.g. `HKCU\Software\Vendor`.
func (p ContainerPath) String() string {
	if len(p.Segments) == 0 {
		return p.Root.String()
	}
	return p.Root.String() + PathSeparator + p.Sub()
}

// Sub returns the path below the root joined with the canonical separator.
func (p ContainerPath) Sub() string {
	return strings.Join(p.Segments, PathSeparator)
}

// Depth returns the number of segments below the root.
func (p ContainerPath) Depth() int { return len(p.Segments) }

// Equal reports whether p and o name the same container. When foldCase is
// set segments compare case-insensitively, as the Windows registry does.
func (p ContainerPath) Equal(o ContainerPath, foldCase bool) bool {
	if p.Root != o.Root || len(p.Segments) != len(o.Segments) {
		return false
	}
	for i := range p.Segments {
		if foldCase {
			if !strings.EqualFold(p.Segments[i], o.Segments[i]) {
				return false
			}
		} else if p.Segments[i] != o.Segments[i] {
			return false
		}
	}
	return true
}

// Key returns a comparable form of the path for use as a map key.
func (p ContainerPath) Key(foldCase bool) string {
	s := p.String()
	if foldCase {
		return strings.ToLower(s)
	}
	return s
}

// Clone returns a copy that shares no memory with p.
func (p ContainerPath) Clone() ContainerPath {
	return ContainerPath{Root: p.Root, Segments: slices.Clone(p.Segments)}
}

// Directive is one `name:KIND=payload` assignment.
type Directive struct {
	Name string
	Kind ValueKind
	Raw  string // payload text after line-level trimming
	Line int    // 1-based source line
}

// Group is a section header followed by its directives.
type Group struct {
	Path       ContainerPath
	Line       int // line of the section header
	Directives []Directive
}

// Dialect names the script grammar a Document was parsed from.
type Dialect string

const (
	DialectAuto   Dialect = "auto"
	DialectNative Dialect = "native"
	DialectReg    Dialect = "reg"
)

// Document is a parsed script: groups in source order, never reordered or
// deduplicated. A path may appear in several groups.
type Document struct {
	Dialect Dialect
	Groups  []Group
}

// DirectiveCount returns the number of directives across all groups.
func (d *Document) DirectiveCount() int {
	n := 0
	for _, g := range d.Groups {
		n += len(g.Directives)
	}
	return n
}

// Equal compares the semantic content of two documents: group paths
// (case-sensitive), directive names, kinds and raw payloads, in order.
// Line numbers and dialect are ignored.
func (d *Document) Equal(o *Document) bool {
	if d == nil || o == nil {
		return d == o
	}
	if len(d.Groups) != len(o.Groups) {
		return false
	}
	for i := range d.Groups {
		a, b := d.Groups[i], o.Groups[i]
		if !a.Path.Equal(b.Path, false) || len(a.Directives) != len(b.Directives) {
			return false
		}
		for j := range a.Directives {
			x, y := a.Directives[j], b.Directives[j]
			if x.Name != y.Name || x.Kind != y.Kind || x.Raw != y.Raw {
				return false
			}
		}
	}
	return true
}

// AppliedValue describes one directive that reached the store.
type AppliedValue struct {
	Path  ContainerPath
	Name  string
	Kind  ValueKind
	Value TypedValue
	Line  int
}
