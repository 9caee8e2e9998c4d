package localstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	require.NoError(t, s.Save("thiwa_cart", payload{Name: "tee", Count: 2}))

	var got payload
	require.True(t, s.Load("thiwa_cart", &got))
	assert.Equal(t, payload{Name: "tee", Count: 2}, got)
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Save("thiwa_isAdmin", true))

	// Fresh handle over the same directory, as after a process restart.
	s2, err := NewFileStore(dir)
	require.NoError(t, err)

	flag := false
	require.True(t, s2.Load("thiwa_isAdmin", &flag))
	assert.True(t, flag)
}

func TestFileStoreMissingKeyLeavesDefault(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	got := "default"
	assert.False(t, s.Load("never_saved", &got))
	assert.Equal(t, "default", got)
}

func TestFileStoreMasksCorruptValue(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Save("thiwa_cart", []int{1, 2, 3}))

	// Corrupt the file behind the store's back.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "thiwa_cart.json"), []byte("{not json"), 0o600))

	got := []int{9}
	assert.False(t, s.Load("thiwa_cart", &got))
	assert.Equal(t, []int{9}, got)
}

func TestFileStoreSanitisesKeys(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Save("../escape/attempt", "x"))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotContains(t, entries[0].Name(), "/")
}

func TestMemStoreRoundTrip(t *testing.T) {
	s := NewMemStore()
	require.NoError(t, s.Save("k", map[string]int{"a": 1}))

	var got map[string]int
	require.True(t, s.Load("k", &got))
	assert.Equal(t, 1, got["a"])

	var missing string
	assert.False(t, s.Load("absent", &missing))
}
