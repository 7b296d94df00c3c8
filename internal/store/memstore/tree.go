package memstore

import (
	"slices"
	"strings"

	"github.com/joshuapare/regapply/pkg/types"
)

// Node is one container in the in-memory tree.
type Node struct {
	Name     string
	Parent   *Node
	Children []*Node
	Values   []*Value
}

// Value is a stored value.
type Value struct {
	Name string // "" for the default value
	Kind types.ValueKind
	Data types.TypedValue
}

// names compare case-insensitively when fold is set, as Windows does.
func sameName(a, b string, fold bool) bool {
	if fold {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// Child returns the direct child named name, or nil.
func (n *Node) Child(name string, fold bool) *Node {
	for _, child := range n.Children {
		if sameName(child.Name, name, fold) {
			return child
		}
	}
	return nil
}

// AddChild adds a new child node.
func (n *Node) AddChild(name string) *Node {
	child := &Node{Name: name, Parent: n}
	n.Children = append(n.Children, child)
	return child
}

// Value returns the value named name, or nil.
func (n *Node) Value(name string, fold bool) *Value {
	for _, v := range n.Values {
		if sameName(v.Name, name, fold) {
			return v
		}
	}
	return nil
}

// SetValue adds or replaces a value. An existing value keeps the spelling of
// its name.
func (n *Node) SetValue(name string, kind types.ValueKind, data types.TypedValue, fold bool) {
	if v := n.Value(name, fold); v != nil {
		v.Kind = kind
		v.Data = data
		return
	}
	n.Values = append(n.Values, &Value{Name: name, Kind: kind, Data: data})
}

// find walks segments from n, returning nil when any is missing.
func (n *Node) find(segments []string, fold bool) *Node {
	cur := n
	for _, seg := range segments {
		if cur = cur.Child(seg, fold); cur == nil {
			return nil
		}
	}
	return cur
}

// dump appends n and its descendants in name order.
func (n *Node) dump(path types.ContainerPath, out []types.KeyDump) []types.KeyDump {
	if path.Depth() > 0 {
		kd := types.KeyDump{Path: path.Clone()}
		values := slices.Clone(n.Values)
		slices.SortFunc(values, func(a, b *Value) int {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		})
		for _, v := range values {
			kd.Values = append(kd.Values, types.NamedValue{Name: v.Name, Kind: v.Kind, Value: cloneValue(v.Data)})
		}
		out = append(out, kd)
	}
	children := slices.Clone(n.Children)
	slices.SortFunc(children, func(a, b *Node) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	for _, c := range children {
		sub := types.NewPath(path.Root, append(slices.Clone(path.Segments), c.Name)...)
		out = c.dump(sub, out)
	}
	return out
}

func cloneValue(v types.TypedValue) types.TypedValue {
	switch val := v.(type) {
	case types.Strings:
		return slices.Clone(val)
	case types.Bytes:
		return slices.Clone(val)
	}
	return v
}
