//go:build !windows

package winstore

import (
	"runtime"

	"github.com/joshuapare/regapply/pkg/types"
)

// Store is unavailable off Windows.
type Store struct{ types.Store }

// Open always fails on this platform.
func Open() (*Store, error) {
	return nil, &types.Error{
		Kind: types.ErrKindStoreUnavailable,
		Msg:  "winstore: the system registry is not available on " + runtime.GOOS,
	}
}
