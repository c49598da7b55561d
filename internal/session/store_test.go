package session

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestFileStoreRoundTrip(t *testing.T) {
	s := NewFileStore(t.TempDir(), "http://localhost:3000")

	_, ok := s.Get(KeyToken)
	assert.False(t, ok)

	require.NoError(t, s.Set(KeyToken, "tok"))
	v, ok := s.Get(KeyToken)
	assert.True(t, ok)
	assert.Equal(t, "tok", v)

	require.NoError(t, s.Set(KeyToken, "tok2"))
	v, _ = s.Get(KeyToken)
	assert.Equal(t, "tok2", v)

	require.NoError(t, s.Remove(KeyToken))
	_, ok = s.Get(KeyToken)
	assert.False(t, ok)
}

func TestFileStoreRemoveMissingIsNoop(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir, "o")

	require.NoError(t, s.Remove(KeyBusinessID))
	_, err := os.Stat(s.Path())
	assert.True(t, os.IsNotExist(err), "removing a missing key should not create the file")
}

func TestFileStorePermissions(t *testing.T) {
	s := NewFileStore(t.TempDir(), "o")
	require.NoError(t, s.Set(KeyToken, "secret"))

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStoreIsolatesOrigins(t *testing.T) {
	dir := t.TempDir()
	local := NewFileStore(dir, "http://localhost:3000")
	prod := NewFileStore(dir, "https://api.ringlify.com")

	require.NoError(t, local.Set(KeyBusinessID, "b-local"))
	require.NoError(t, prod.Set(KeyBusinessID, "b-prod"))

	v, _ := local.Get(KeyBusinessID)
	assert.Equal(t, "b-local", v)
	v, _ = prod.Get(KeyBusinessID)
	assert.Equal(t, "b-prod", v)

	require.NoError(t, local.Remove(KeyBusinessID))
	_, ok := prod.Get(KeyBusinessID)
	assert.True(t, ok)
}

func TestFileStoreVisibleAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, NewFileStore(dir, "o").Set(KeyToken, "persisted"))

	v, ok := NewFileStore(dir, "o").Get(KeyToken)
	assert.True(t, ok)
	assert.Equal(t, "persisted", v)
}

func TestFileStoreCorruptFileReadsAbsent(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir, "o")
	require.NoError(t, os.WriteFile(filepath.Join(dir, sessionFileName), []byte("{not json"), 0o600))

	_, ok := s.Get(KeyToken)
	assert.False(t, ok)

	require.NoError(t, s.Set(KeyToken, "fresh"))
	v, ok := s.Get(KeyToken)
	assert.True(t, ok)
	assert.Equal(t, "fresh", v)
}

func TestFileStoreConcurrentWriters(t *testing.T) {
	dir := t.TempDir()

	var wg sync.WaitGroup
	for _, key := range []string{KeyToken, KeyBusinessID} {
		wg.Add(1)
		go func(k string) {
			defer wg.Done()
			_ = NewFileStore(dir, "o").Set(k, "v-"+k)
		}(key)
	}
	wg.Wait()

	v, ok := NewFileStore(dir, "o").Get(KeyToken)
	if ok {
		assert.Equal(t, "v-"+KeyToken, v)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()

	require.NoError(t, s.Set("k", "v"))
	v, ok := s.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	require.NoError(t, s.Remove("k"))
	require.NoError(t, s.Remove("k"))
	_, ok = s.Get("k")
	assert.False(t, ok)
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()
	s := NewKeyringStore("http://localhost:3000")

	_, ok := s.Get(KeyToken)
	assert.False(t, ok)

	require.NoError(t, s.Set(KeyToken, "tok"))
	v, ok := s.Get(KeyToken)
	assert.True(t, ok)
	assert.Equal(t, "tok", v)

	require.NoError(t, s.Remove(KeyToken))
	require.NoError(t, s.Remove(KeyToken), "removing twice should be idempotent")
	_, ok = s.Get(KeyToken)
	assert.False(t, ok)
}

func TestNewStoreHonorsNoKeyring(t *testing.T) {
	t.Setenv("RINGLIFY_NO_KEYRING", "1")
	s := NewStore(t.TempDir(), "o")
	_, isFile := s.(*FileStore)
	assert.True(t, isFile)
}

func TestNewStorePrefersKeyring(t *testing.T) {
	keyring.MockInit()
	s := NewStore(t.TempDir(), "o")
	_, isKeyring := s.(*KeyringStore)
	assert.True(t, isKeyring)
}
