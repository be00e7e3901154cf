package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStores(t *testing.T) {
	badgerStore, err := OpenBadgerStore("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = badgerStore.Close() })

	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"badger": badgerStore,
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get(KeyAccessToken)
			assert.ErrorIs(t, err, ErrKeyNotFound)

			require.NoError(t, store.Set(KeyAccessToken, "abc"))
			v, err := store.Get(KeyAccessToken)
			require.NoError(t, err)
			assert.Equal(t, "abc", v)

			require.NoError(t, store.Set(KeyAccessToken, "def"))
			v, _ = store.Get(KeyAccessToken)
			assert.Equal(t, "def", v)

			require.NoError(t, store.Delete(KeyAccessToken))
			require.NoError(t, store.Delete(KeyAccessToken))
			_, err = store.Get(KeyAccessToken)
			assert.ErrorIs(t, err, ErrKeyNotFound)
		})
	}
}

func TestBadgerStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := OpenBadgerStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set(KeyUsername, "maria"))
	require.NoError(t, store.Close())

	reopened, err := OpenBadgerStore(dir)
	require.NoError(t, err)
	defer reopened.Close()
	v, err := reopened.Get(KeyUsername)
	require.NoError(t, err)
	assert.Equal(t, "maria", v)
}
