//go:build windows

package winstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"

	"github.com/joshuapare/regapply/pkg/types"
)

var rootHandles = map[types.RootKey]registry.Key{
	types.HKLM: registry.LOCAL_MACHINE,
	types.HKCU: registry.CURRENT_USER,
	types.HKCR: registry.CLASSES_ROOT,
	types.HKU:  registry.USERS,
	types.HKCC: registry.CURRENT_CONFIG,
}

// Store is a types.Store over the live registry.
type Store struct{}

// Open returns a registry-backed store.
func Open() (*Store, error) { return &Store{}, nil }

// EnsureContainer opens path for writing, creating missing keys.
func (s *Store) EnsureContainer(ctx context.Context, path types.ContainerPath) (types.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	root, ok := rootHandles[path.Root]
	if !ok {
		return nil, &types.Error{Kind: types.ErrKindStoreUnavailable, Msg: fmt.Sprintf("winstore: no root %d", path.Root)}
	}
	for _, seg := range path.Segments {
		if strings.Contains(seg, `\`) {
			return nil, &types.Error{
				Kind: types.ErrKindStoreUnavailable,
				Msg:  fmt.Sprintf("winstore: key name %q contains a backslash", seg),
				Path: path.String(),
			}
		}
	}
	k, _, err := registry.CreateKey(root, path.Sub(), registry.SET_VALUE|registry.CREATE_SUB_KEY)
	if err != nil {
		return nil, classify(err, "create key "+path.String())
	}
	return &handle{key: k}, nil
}

type handle struct {
	key    registry.Key
	closed bool
}

func (h *handle) SetValue(ctx context.Context, name string, kind types.ValueKind, data types.TypedValue) error {
	if h.closed {
		return &types.Error{Kind: types.ErrKindStoreUnavailable, Msg: "winstore: handle already closed"}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	var err error
	switch v := data.(type) {
	case types.String:
		switch kind {
		case types.Text:
			err = h.key.SetStringValue(name, string(v))
		case types.ExpandableText:
			err = h.key.SetExpandStringValue(name, string(v))
		default:
			return mismatch(kind)
		}
	case types.Strings:
		if kind != types.MultiText {
			return mismatch(kind)
		}
		err = h.key.SetStringsValue(name, []string(v))
	case types.Bytes:
		if kind != types.Binary {
			return mismatch(kind)
		}
		err = h.key.SetBinaryValue(name, []byte(v))
	case types.Integer:
		switch kind {
		case types.Integer32:
			err = h.key.SetDWordValue(name, uint32(v))
		case types.Integer64:
			err = h.key.SetQWordValue(name, uint64(v))
		default:
			return mismatch(kind)
		}
	default:
		return mismatch(kind)
	}
	if err != nil {
		return classify(err, "set value "+name)
	}
	return nil
}

func (h *handle) Close() {
	if h.closed {
		return
	}
	h.closed = true
	_ = h.key.Close()
}

func mismatch(kind types.ValueKind) error {
	return &types.Error{Kind: types.ErrKindTypeMismatch, Msg: fmt.Sprintf("winstore: %s cannot hold this data", kind)}
}

func classify(err error, action string) error {
	if errors.Is(err, windows.ERROR_ACCESS_DENIED) || errors.Is(err, windows.ERROR_PRIVILEGE_NOT_HELD) {
		return &types.Error{Kind: types.ErrKindAccessDenied, Msg: "winstore: " + action, Err: err}
	}
	return &types.Error{Kind: types.ErrKindStoreUnavailable, Msg: "winstore: " + action, Err: err}
}
