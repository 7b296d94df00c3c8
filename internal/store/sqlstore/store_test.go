package sqlstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/regapply/pkg/types"
)

func openTemp(t *testing.T, opts Options) *Store {
	t.Helper()
	if opts.Path == "" {
		opts.Path = filepath.Join(t.TempDir(), "reg.db")
	}
	s, err := Open(context.Background(), opts)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSetValue_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t, Options{Path: ":memory:", FoldCase: true})

	h, err := s.EnsureContainer(ctx, types.NewPath(types.HKCU, "Software", "Vendor"))
	require.NoError(t, err)
	require.NoError(t, h.SetValue(ctx, "Name", types.Text, types.String("demo")))
	require.NoError(t, h.SetValue(ctx, "Count", types.Integer32, types.Integer(4294967295)))
	require.NoError(t, h.SetValue(ctx, "Big", types.Integer64, types.Integer(-1)))
	require.NoError(t, h.SetValue(ctx, "List", types.MultiText, types.Strings{"a", "b"}))
	require.NoError(t, h.SetValue(ctx, "Blob", types.Binary, types.Bytes{0xDE, 0xAD}))
	h.Close()

	dump, err := s.Dump(ctx)
	require.NoError(t, err)
	require.Len(t, dump, 2)
	assert.Equal(t, `HKCU\Software`, dump[0].Path.String())
	assert.Equal(t, `HKCU\Software\Vendor`, dump[1].Path.String())

	want := []types.NamedValue{
		{Name: "Big", Kind: types.Integer64, Value: types.Integer(-1)},
		{Name: "Blob", Kind: types.Binary, Value: types.Bytes{0xDE, 0xAD}},
		{Name: "Count", Kind: types.Integer32, Value: types.Integer(4294967295)},
		{Name: "List", Kind: types.MultiText, Value: types.Strings{"a", "b"}},
		{Name: "Name", Kind: types.Text, Value: types.String("demo")},
	}
	assert.Equal(t, want, dump[1].Values)
}

func TestSetValue_Overwrites(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t, Options{Path: ":memory:", FoldCase: true})
	p := types.NewPath(types.HKLM, "App")

	for _, v := range []types.Integer{1, 2} {
		h, err := s.EnsureContainer(ctx, p)
		require.NoError(t, err)
		require.NoError(t, h.SetValue(ctx, "level", types.Integer32, v))
		h.Close()
	}
	h, err := s.EnsureContainer(ctx, types.NewPath(types.HKLM, "APP"))
	require.NoError(t, err)
	require.NoError(t, h.SetValue(ctx, "LEVEL", types.Text, types.String("x")))
	h.Close()

	dump, err := s.Dump(ctx)
	require.NoError(t, err)
	require.Len(t, dump, 1)
	require.Len(t, dump[0].Values, 1)
	assert.Equal(t, "level", dump[0].Values[0].Name)
	assert.Equal(t, types.Text, dump[0].Values[0].Kind)
}

func TestCaseSensitive(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t, Options{Path: ":memory:"})
	for _, seg := range []string{"App", "APP"} {
		h, err := s.EnsureContainer(ctx, types.NewPath(types.HKLM, seg))
		require.NoError(t, err)
		h.Close()
	}
	dump, err := s.Dump(ctx)
	require.NoError(t, err)
	assert.Len(t, dump, 2)
}

func TestSegmentsWithSeparators(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t, Options{Path: ":memory:", FoldCase: true})
	p := types.NewPath(types.HKCU, `a\b`, "c")
	h, err := s.EnsureContainer(ctx, p)
	require.NoError(t, err)
	h.Close()

	dump, err := s.Dump(ctx)
	require.NoError(t, err)
	require.Len(t, dump, 2)
	assert.Equal(t, []string{`a\b`, "c"}, dump[1].Path.Segments)
}

func TestPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "reg.db")

	s, err := Open(ctx, Options{Path: path, FoldCase: true})
	require.NoError(t, err)
	h, err := s.EnsureContainer(ctx, types.NewPath(types.HKCU, "Software"))
	require.NoError(t, err)
	require.NoError(t, h.SetValue(ctx, "v", types.Integer32, types.Integer(7)))
	h.Close()
	require.NoError(t, s.Close())

	ro, err := Open(ctx, Options{Path: path, ReadOnly: true, FoldCase: true})
	require.NoError(t, err)
	defer ro.Close()

	dump, err := ro.Dump(ctx)
	require.NoError(t, err)
	require.Len(t, dump, 1)
	assert.Equal(t, types.Integer(7), dump[0].Values[0].Value)

	_, err = ro.EnsureContainer(ctx, types.NewPath(types.HKCU, "Software"))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrAccessDenied)
}

func TestHandleErrors(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t, Options{Path: ":memory:"})
	h, err := s.EnsureContainer(ctx, types.NewPath(types.HKCU, "X"))
	require.NoError(t, err)

	err = h.SetValue(ctx, "v", types.Integer32, types.String("nope"))
	assert.ErrorIs(t, err, types.ErrTypeMismatch)

	h.Close()
	err = h.SetValue(ctx, "v", types.Integer32, types.Integer(1))
	assert.ErrorIs(t, err, types.ErrStoreUnavailable)
}

func TestCancelledContext(t *testing.T) {
	s := openTemp(t, Options{Path: ":memory:"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.EnsureContainer(ctx, types.NewPath(types.HKCU, "X"))
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, types.KindOf(err))
}

func TestOpen_MissingReadOnlyFile(t *testing.T) {
	_, err := Open(context.Background(), Options{
		Path:     filepath.Join(t.TempDir(), "absent.db"),
		ReadOnly: true,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrStoreUnavailable)
}

func TestOpen_NoPath(t *testing.T) {
	_, err := Open(context.Background(), Options{})
	assert.ErrorIs(t, err, types.ErrStoreUnavailable)
}
