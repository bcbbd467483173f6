package tokenstore

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	require.NoError(t, store.SetToken("test", "abc", Token{"access_token": "T1"}))
	require.NoError(t, store.SetToken("test", "def", Token{"access_token": "T2"}))

	got, err := store.GetToken("test", "abc")
	require.NoError(t, err)
	assert.Equal(t, Token{"access_token": "T1"}, got)

	require.NoError(t, store.SetToken("test", "abc", nil))
	require.NoError(t, store.SetToken("missing", "key", nil))

	all, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, map[string]Token{"test/def": {"access_token": "T2"}}, all)

	// Load returns a copy.
	all["test/xyz"] = Token{"access_token": "T3"}
	again, _ := store.Load()
	assert.Len(t, again, 1)

	require.NoError(t, store.Save(nil))
	again, _ = store.Load()
	assert.Empty(t, again)
}

func TestMemoryStore_ZeroValue(t *testing.T) {
	var store MemoryStore

	got, err := store.GetToken("test", "abc")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, store.SetToken("test", "abc", Token{"access_token": "T1"}))
	got, err = store.GetToken("test", "abc")
	require.NoError(t, err)
	assert.Equal(t, Token{"access_token": "T1"}, got)
}

func TestMemoryStore_RecordsAreCopied(t *testing.T) {
	store := NewMemoryStore()

	tok := Token{"access_token": "T1"}
	require.NoError(t, store.SetToken("test", "abc", tok))
	tok["access_token"] = "changed by caller"

	got, err := store.GetToken("test", "abc")
	require.NoError(t, err)
	assert.Equal(t, "T1", got["access_token"])

	got["access_token"] = "changed after get"
	again, err := store.GetToken("test", "abc")
	require.NoError(t, err)
	assert.Equal(t, "T1", again["access_token"])
}

func TestNoneStore(t *testing.T) {
	var store NoneStore

	require.NoError(t, store.SetToken("test", "abc", Token{"access_token": "T1"}))

	got, err := store.GetToken("test", "abc")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, store.Save(map[string]Token{"a/b": {"x": "y"}}))
	all, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestStorageError(t *testing.T) {
	inner := errors.New("disk full")

	err := &StorageError{Op: "save", Err: inner}
	assert.Equal(t, "token storage save: disk full", err.Error())
	assert.ErrorIs(t, err, inner)

	err = &StorageError{Op: "set", Key: "github/abc", Err: inner}
	assert.Equal(t, "token storage set github/abc: disk full", err.Error())
}
