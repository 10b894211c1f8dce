package kvstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the contract every Store must satisfy.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, "token", "abc"))
	val, err := store.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "abc", val)

	require.NoError(t, store.Set(ctx, "token", "def"))
	val, err = store.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "def", val, "set overwrites")

	require.NoError(t, store.Delete(ctx, "token"))
	_, err = store.Get(ctx, "token")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, store.Delete(ctx, "missing"), "deleting an absent key is not an error")
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pikctl", "credentials.json")
	exerciseStore(t, NewFile(path))

	t.Run("persists across instances", func(t *testing.T) {
		ctx := context.Background()
		require.NoError(t, NewFile(path).Set(ctx, "token", "abc"))

		val, err := NewFile(path).Get(ctx, "token")
		require.NoError(t, err)
		assert.Equal(t, "abc", val)
	})

	t.Run("file is owner-only", func(t *testing.T) {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})
}

func TestWithPrefix(t *testing.T) {
	ctx := context.Background()
	base := NewMemory()
	a := WithPrefix(base, "sess:a:")
	b := WithPrefix(base, "sess:b:")

	require.NoError(t, a.Set(ctx, "token", "token-a"))
	require.NoError(t, b.Set(ctx, "token", "token-b"))

	val, err := a.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "token-a", val)

	val, err = base.Get(ctx, "sess:b:token")
	require.NoError(t, err)
	assert.Equal(t, "token-b", val, "keys land under the prefix")

	require.NoError(t, a.Delete(ctx, "token"))
	_, err = a.Get(ctx, "token")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = b.Get(ctx, "token")
	assert.NoError(t, err, "siblings are untouched")
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	client, mock := redismock.NewClientMock()
	store := NewRedis(client, time.Hour)

	mock.ExpectSet("token", "abc", time.Hour).SetVal("OK")
	require.NoError(t, store.Set(ctx, "token", "abc"))

	mock.ExpectGet("token").SetVal("abc")
	val, err := store.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "abc", val)

	mock.ExpectGet("missing").RedisNil()
	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	mock.ExpectDel("token").SetVal(1)
	require.NoError(t, store.Delete(ctx, "token"))

	assert.NoError(t, mock.ExpectationsWereMet())
}
