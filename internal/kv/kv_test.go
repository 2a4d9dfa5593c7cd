package kv

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStoreRoundTrip(t *testing.T) {
	s := NewMemStore(0)

	_, ok, err := s.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put("k", []byte("value")))
	got, ok, err := s.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("value"), got)

	// Mutating the returned slice must not affect the stored value.
	got[0] = 'X'
	got2, _, _ := s.Get("k")
	assert.Equal(t, []byte("value"), got2)

	require.NoError(t, s.Delete("k"))
	_, ok, _ = s.Get("k")
	assert.False(t, ok)
}

func TestMemStoreCapacity(t *testing.T) {
	s := NewMemStore(20)

	require.NoError(t, s.Put("a", []byte("0123456789"))) // 11 bytes
	err := s.Put("b", []byte("0123456789"))              // would be 22
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	// Replacing an existing value only counts the delta.
	require.NoError(t, s.Put("a", []byte("012345678912345678"))) // 19 bytes

	used, err := s.UsedBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(19), used)

	// Deleting frees the space again.
	require.NoError(t, s.Delete("a"))
	used, _ = s.UsedBytes()
	assert.Equal(t, int64(0), used)
}

func TestBoltStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := OpenBolt(path, 0)
	require.NoError(t, err)

	require.NoError(t, s.Put("k", []byte("value")))
	got, ok, err := s.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("value"), got)

	require.NoError(t, s.Delete("k"))
	_, ok, _ = s.Get("k")
	assert.False(t, ok)

	require.NoError(t, s.Close())
}

func TestBoltStoreCapacity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := OpenBolt(path, 50)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put("a", []byte(strings.Repeat("x", 40))))
	err = s.Put("b", []byte(strings.Repeat("x", 40)))
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	// The refused write must not have gone through.
	_, ok, _ := s.Get("b")
	assert.False(t, ok)
}

func TestBoltStoreUsageSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := OpenBolt(path, 0)
	require.NoError(t, err)
	require.NoError(t, s.Put("k", []byte("value")))
	wantUsed, _ := s.UsedBytes()
	require.NoError(t, s.Close())

	s, err = OpenBolt(path, 0)
	require.NoError(t, err)
	defer s.Close()

	used, err := s.UsedBytes()
	require.NoError(t, err)
	assert.Equal(t, wantUsed, used)

	got, ok, err := s.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("value"), got)
}
