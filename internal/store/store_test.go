package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	logger, _ := test.NewNullLogger()
	rs := NewRedisStore(logger, mr.Addr(), "jk:splits:")
	t.Cleanup(func() { rs.Close() })
	return rs, mr
}

func exerciseStore(t *testing.T, s Store) {
	ctx := context.Background()

	_, err := s.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	names, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	require.NoError(t, s.Save(ctx, "any%", []byte("<a/>")))
	require.NoError(t, s.Save(ctx, "babe", []byte("<b/>")))

	data, err := s.Load(ctx, "any%")
	require.NoError(t, err)
	assert.Equal(t, "<a/>", string(data))

	require.NoError(t, s.Save(ctx, "any%", []byte("<c/>")))
	data, err = s.Load(ctx, "any%")
	require.NoError(t, err)
	assert.Equal(t, "<c/>", string(data))

	names, err = s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"any%", "babe"}, names)
}

func TestFileStore(t *testing.T) {
	logger, _ := test.NewNullLogger()
	dir := filepath.Join(t.TempDir(), "splits")
	exerciseStore(t, NewFileStore(logger, dir))
}

func TestFileStoreIgnoresOtherFiles(t *testing.T) {
	logger, _ := test.NewNullLogger()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.xml"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "run.xml"), []byte("<r/>"), 0644))

	names, err := NewFileStore(logger, dir).List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"run"}, names)
}

func TestRedisStore(t *testing.T) {
	rs, mr := setupTestRedis(t)
	require.NoError(t, rs.Ping(context.Background()))

	exerciseStore(t, rs)

	raw, err := mr.Get("jk:splits:babe")
	require.NoError(t, err)
	assert.Equal(t, "<b/>", raw)
}

func TestRedisStoreListIgnoresForeignKeys(t *testing.T) {
	rs, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("other:key", "x"))
	require.NoError(t, rs.Save(context.Background(), "run", []byte("<r/>")))

	names, err := rs.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"run"}, names)
}
