package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_Lifecycle(t *testing.T) {
	st := NewMemory()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, st.Set(ctx, "a", []byte("1"), time.Second))
	require.NoError(t, st.Set(ctx, "b", []byte("2"), 0))

	v, err := st.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "1", string(v))

	now = now.Add(time.Second)
	v, err = st.Get(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, v)

	n, err := st.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	v, err = st.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "2", string(v))
}

func TestMemory_CopiesValues(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()
	buf := []byte("abc")
	require.NoError(t, st.Set(ctx, "k", buf, 0))
	buf[0] = 'x'

	v, err := st.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(v))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	st, err := Open(ctx, Options{Driver: DriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, st)

	_, err = Open(ctx, Options{Driver: "cassandra"})
	require.Error(t, err)

	_, err = Open(ctx, Options{Driver: DriverPostgres})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database_url")

	sq, err := Open(ctx, Options{Driver: DriverSQLite, DatabaseURL: t.TempDir() + "/cache.db"})
	require.NoError(t, err)
	require.NoError(t, sq.Migrate(ctx))
	require.NoError(t, sq.Close())
}
