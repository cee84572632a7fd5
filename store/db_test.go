package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T, path string) *PreferenceStore {
	t.Helper()
	s, err := NewPreferenceStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPreferenceStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, filepath.Join(t.TempDir(), "prefs.db"))

	_, ok, err := s.Get(ctx, "qrcodeTheme")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "qrcodeTheme", "dark"))
	v, ok, err := s.Get(ctx, "qrcodeTheme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dark", v)

	require.NoError(t, s.Set(ctx, "qrcodeTheme", "light"))
	v, _, err = s.Get(ctx, "qrcodeTheme")
	require.NoError(t, err)
	assert.Equal(t, "light", v)

	require.NoError(t, s.Delete(ctx, "qrcodeTheme"))
	_, ok, err = s.Get(ctx, "qrcodeTheme")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, s.Delete(ctx, "qrcodeTheme"), "deleting twice is fine")
}

func TestPreferenceStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "prefs.db")

	s, err := NewPreferenceStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "qrcodeTheme", "dark"))
	require.NoError(t, s.Close())

	s2 := openStore(t, path)
	v, ok, err := s2.Get(ctx, "qrcodeTheme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dark", v)
}

func TestPreferenceStore_ClosedDB(t *testing.T) {
	s, err := NewPreferenceStore(filepath.Join(t.TempDir(), "prefs.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, _, err = s.Get(context.Background(), "qrcodeTheme")
	assert.Error(t, err)
}
