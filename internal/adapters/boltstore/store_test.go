package boltstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "stats.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndTop(t *testing.T) {
	s := openTemp(t)

	require.NoError(t, s.Record("aaa", "SELECT $1"))
	require.NoError(t, s.Record("aaa", "SELECT $1"))
	require.NoError(t, s.Record("aaa", "SELECT $1"))
	require.NoError(t, s.Record("bbb", "INSERT INTO t VALUES ($1)"))

	top, err := s.Top(10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, Entry{Fingerprint: "aaa", Normalized: "SELECT $1", Count: 3}, top[0])
	assert.Equal(t, 1, top[1].Count)

	n, err := s.Len()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestTop_Truncates(t *testing.T) {
	s := openTemp(t)
	require.NoError(t, s.Record("aaa", "SELECT $1"))
	require.NoError(t, s.Record("bbb", "SELECT $1, $2"))
	require.NoError(t, s.Record("ccc", "SELECT $1, $2, $3"))

	top, err := s.Top(2)
	require.NoError(t, err)
	assert.Len(t, top, 2)
}

func TestTop_Empty(t *testing.T) {
	s := openTemp(t)
	top, err := s.Top(5)
	require.NoError(t, err)
	assert.Empty(t, top)
}
