//go:build windows

package winstore

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/windows/registry"

	"github.com/joshuapare/regapply/pkg/types"
)

func TestSetValues_CurrentUser(t *testing.T) {
	ctx := context.Background()
	name := "regapply-test-" + uuid.NewString()
	t.Cleanup(func() {
		_ = registry.DeleteKey(registry.CURRENT_USER, `Software\`+name+`\Sub`)
		_ = registry.DeleteKey(registry.CURRENT_USER, `Software\`+name)
	})

	s, err := Open()
	require.NoError(t, err)
	h, err := s.EnsureContainer(ctx, types.NewPath(types.HKCU, "Software", name, "Sub"))
	require.NoError(t, err)
	require.NoError(t, h.SetValue(ctx, "s", types.Text, types.String("hello")))
	require.NoError(t, h.SetValue(ctx, "d", types.Integer32, types.Integer(4294967295)))
	require.NoError(t, h.SetValue(ctx, "q", types.Integer64, types.Integer(-1)))
	require.NoError(t, h.SetValue(ctx, "m", types.MultiText, types.Strings{"a", "b"}))
	require.NoError(t, h.SetValue(ctx, "b", types.Binary, types.Bytes{1, 2}))
	assert.ErrorIs(t, h.SetValue(ctx, "x", types.Integer32, types.String("no")), types.ErrTypeMismatch)
	h.Close()

	k, err := registry.OpenKey(registry.CURRENT_USER, `Software\`+name+`\Sub`, registry.QUERY_VALUE)
	require.NoError(t, err)
	defer k.Close()

	s1, _, err := k.GetStringValue("s")
	require.NoError(t, err)
	assert.Equal(t, "hello", s1)
	d, _, err := k.GetIntegerValue("d")
	require.NoError(t, err)
	assert.Equal(t, uint64(0xFFFFFFFF), d)
	q, _, err := k.GetIntegerValue("q")
	require.NoError(t, err)
	assert.Equal(t, ^uint64(0), q)
	m, _, err := k.GetStringsValue("m")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, m)
}
