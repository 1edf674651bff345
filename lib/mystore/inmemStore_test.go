package mystore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type flowRecord struct {
	UID   string
	Nonce string
}

func TestInMemoryStore(t *testing.T) {
	c := context.TODO()

	t.Run("Put and get", func(t *testing.T) {
		store, cleanup, err := NewInMemoryStore[flowRecord](c)
		assert.NoError(t, err)
		defer cleanup()

		err = store.Put(c, "123", flowRecord{UID: "123", Nonce: "abc"})
		assert.NoError(t, err)

		got, exists, err := store.Get(c, "123")
		assert.NoError(t, err)
		assert.True(t, exists)
		assert.Equal(t, "abc", got.Nonce)
	})

	t.Run("Get non-existing", func(t *testing.T) {
		store, cleanup, err := NewInMemoryStore[flowRecord](c)
		assert.NoError(t, err)
		defer cleanup()

		_, exists, err := store.Get(c, "456")
		assert.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("List", func(t *testing.T) {
		store, cleanup, err := NewInMemoryStore[flowRecord](c)
		assert.NoError(t, err)
		defer cleanup()

		err = store.Put(c, "1", flowRecord{UID: "1"})
		assert.NoError(t, err)
		err = store.Put(c, "2", flowRecord{UID: "2"})
		assert.NoError(t, err)

		all, err := store.List(c)
		assert.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("Put within transaction is visible afterwards", func(t *testing.T) {
		store, cleanup, err := NewInMemoryStore[flowRecord](c)
		assert.NoError(t, err)
		defer cleanup()

		err = store.RunInTransaction(c, func(c context.Context) error {
			return store.Put(c, "123", flowRecord{UID: "123", Nonce: "xyz"})
		})
		assert.NoError(t, err)

		got, exists, err := store.Get(c, "123")
		assert.NoError(t, err)
		assert.True(t, exists)
		assert.Equal(t, "xyz", got.Nonce)
	})
}
