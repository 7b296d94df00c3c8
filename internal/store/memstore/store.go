// Package memstore is an in-memory registry used for dry runs, exports and
// tests. It records every adapter call so callers can assert on the exact
// sequence an apply run produced.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/joshuapare/regapply/pkg/types"
)

// CallOp names a Store Adapter operation.
type CallOp string

const (
	OpEnsure CallOp = "EnsureContainer"
	OpSet    CallOp = "SetValue"
	OpClose  CallOp = "Close"
)

// Call is one recorded adapter call. Failed calls are recorded too.
type Call struct {
	Op    CallOp
	Path  types.ContainerPath
	Name  string
	Kind  types.ValueKind
	Value types.TypedValue
}

func (c Call) String() string {
	switch c.Op {
	case OpSet:
		return fmt.Sprintf("%s(%s, %q, %s, %v)", c.Op, c.Path, c.Name, c.Kind, c.Value)
	default:
		return fmt.Sprintf("%s(%s)", c.Op, c.Path)
	}
}

// Store is an in-memory types.Store.
type Store struct {
	mu       sync.Mutex
	foldCase bool
	limits   types.Limits
	readOnly []types.ContainerPath
	roots    map[types.RootKey]*Node
	calls    []Call
	open     int
	faults   map[CallOp]error
}

// Option configures a Store.
type Option func(*Store)

// WithFoldCase controls case-insensitive matching of container and value
// names. The default is true.
func WithFoldCase(fold bool) Option {
	return func(s *Store) { s.foldCase = fold }
}

// WithLimits enforces per-container subkey and value counts.
func WithLimits(l types.Limits) Option {
	return func(s *Store) { s.limits = l }
}

// WithReadOnly marks subtrees where writes fail with AccessDenied.
func WithReadOnly(paths ...types.ContainerPath) Option {
	return func(s *Store) { s.readOnly = append(s.readOnly, paths...) }
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		foldCase: true,
		roots:    make(map[types.RootKey]*Node, len(types.RootKeys)),
		faults:   make(map[CallOp]error),
	}
	for _, r := range types.RootKeys {
		s.roots[r] = &Node{Name: r.String()}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FailNext makes the next call of op fail with err after it is recorded.
func (s *Store) FailNext(op CallOp, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = err
}

func (s *Store) takeFault(op CallOp) error {
	err, ok := s.faults[op]
	if ok {
		delete(s.faults, op)
	}
	return err
}

func (s *Store) record(c Call) {
	if c.Value != nil {
		c.Value = cloneValue(c.Value)
	}
	c.Path = c.Path.Clone()
	s.calls = append(s.calls, c)
}

// Calls returns a copy of the call log.
func (s *Store) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// ResetCalls clears the call log without touching stored data.
func (s *Store) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

// OpenHandles returns the number of handles not yet closed.
func (s *Store) OpenHandles() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

func (s *Store) isReadOnly(p types.ContainerPath) bool {
	for _, ro := range s.readOnly {
		if ro.Root != p.Root || ro.Depth() > p.Depth() {
			continue
		}
		prefix := types.ContainerPath{Root: p.Root, Segments: p.Segments[:ro.Depth()]}
		if prefix.Equal(ro, s.foldCase) {
			return true
		}
	}
	return false
}

// EnsureContainer creates any missing segments of path and returns a handle.
func (s *Store) EnsureContainer(ctx context.Context, path types.ContainerPath) (types.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record(Call{Op: OpEnsure, Path: path})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.takeFault(OpEnsure); err != nil {
		return nil, err
	}
	root, ok := s.roots[path.Root]
	if !ok {
		return nil, &types.Error{Kind: types.ErrKindStoreUnavailable, Msg: "memstore: unknown root", Path: path.String()}
	}

	cur := root
	for i, seg := range path.Segments {
		next := cur.Child(seg, s.foldCase)
		if next == nil {
			partial := types.ContainerPath{Root: path.Root, Segments: path.Segments[:i+1]}
			if s.isReadOnly(partial) {
				return nil, &types.Error{Kind: types.ErrKindAccessDenied, Msg: "memstore: read-only subtree", Path: partial.String()}
			}
			if err := s.limits.CheckCounts(len(cur.Children)+1, 0); err != nil {
				return nil, err
			}
			next = cur.AddChild(seg)
		}
		cur = next
	}
	if s.isReadOnly(path) {
		return nil, &types.Error{Kind: types.ErrKindAccessDenied, Msg: "memstore: read-only subtree", Path: path.String()}
	}
	s.open++
	return &handle{s: s, node: cur, path: path.Clone()}, nil
}

// Lookup returns the value stored at path under name.
func (s *Store) Lookup(path types.ContainerPath, name string) (types.NamedValue, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	root, ok := s.roots[path.Root]
	if !ok {
		return types.NamedValue{}, false
	}
	n := root.find(path.Segments, s.foldCase)
	if n == nil {
		return types.NamedValue{}, false
	}
	v := n.Value(name, s.foldCase)
	if v == nil {
		return types.NamedValue{}, false
	}
	return types.NamedValue{Name: v.Name, Kind: v.Kind, Value: cloneValue(v.Data)}, true
}

// Dump lists every container below the five roots.
func (s *Store) Dump(ctx context.Context) ([]types.KeyDump, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []types.KeyDump
	for _, r := range types.RootKeys {
		out = s.roots[r].dump(types.NewPath(r), out)
	}
	return out, nil
}

// handle is an exclusive reference to one node.
type handle struct {
	s      *Store
	node   *Node
	path   types.ContainerPath
	closed bool
}

func (h *handle) SetValue(ctx context.Context, name string, kind types.ValueKind, data types.TypedValue) error {
	s := h.s
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record(Call{Op: OpSet, Path: h.path, Name: name, Kind: kind, Value: data})
	if err := ctx.Err(); err != nil {
		return err
	}
	if h.closed {
		return &types.Error{Kind: types.ErrKindStoreUnavailable, Msg: "memstore: handle already closed"}
	}
	if err := s.takeFault(OpSet); err != nil {
		return err
	}
	if data == nil || !kind.Valid() || data.Tag() != kind.Tag() {
		return &types.Error{Kind: types.ErrKindTypeMismatch, Msg: fmt.Sprintf("memstore: %s cannot hold this data", kind)}
	}
	if h.node.Value(name, s.foldCase) == nil {
		if err := s.limits.CheckCounts(0, len(h.node.Values)+1); err != nil {
			return err
		}
	}
	h.node.SetValue(name, kind, cloneValue(data), s.foldCase)
	return nil
}

func (h *handle) Close() {
	s := h.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(Call{Op: OpClose, Path: h.path})
	if !h.closed {
		h.closed = true
		s.open--
	}
}
