package credential

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "kv.db"), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, ok := s.Load(ctx)
	require.False(t, ok, "fresh store must read as absent")

	s.Save(ctx, "tok-1")
	got, ok := s.Load(ctx)
	require.True(t, ok)
	require.Equal(t, "tok-1", got)

	// last write wins
	s.Save(ctx, "tok-2")
	got, ok = s.Load(ctx)
	require.True(t, ok)
	require.Equal(t, "tok-2", got)

	s.Clear(ctx)
	_, ok = s.Load(ctx)
	require.False(t, ok)
}

func TestStorePersistsAcrossOpens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")

	s1, err := NewStore(path, testLogger())
	require.NoError(t, err)
	s1.Save(ctx, "persisted")
	require.NoError(t, s1.Close())

	s2, err := NewStore(path, testLogger())
	require.NoError(t, err)
	defer s2.Close()

	got, ok := s2.Load(ctx)
	require.True(t, ok)
	require.Equal(t, "persisted", got)
}
