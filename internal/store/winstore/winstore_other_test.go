//go:build !windows

package winstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/regapply/pkg/types"
)

func TestOpen_Unavailable(t *testing.T) {
	s, err := Open()
	require.Error(t, err)
	assert.Nil(t, s)
	assert.ErrorIs(t, err, types.ErrStoreUnavailable)
}
