package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerationStore(t *testing.T) {
	store := NewGenerationStore(time.Minute)

	store.Put("user-1", &Generation{ID: "gen-1"})
	store.Put("", &Generation{ID: "gen-anon"})

	got, ok := store.Get("gen-1", "user-1")
	assert.True(t, ok)
	assert.Equal(t, "gen-1", got.ID)

	_, ok = store.Get("gen-1", "user-2")
	assert.False(t, ok, "other users cannot read a generation")

	_, ok = store.Get("gen-anon", "anyone")
	assert.True(t, ok)

	store.Delete("gen-1")
	_, ok = store.Get("gen-1", "user-1")
	assert.False(t, ok)
	assert.Equal(t, 1, store.Len())
}

func TestGenerationStore_Expiry(t *testing.T) {
	store := NewGenerationStore(20 * time.Millisecond)
	store.Put("user-1", &Generation{ID: "gen-1"})

	assert.Eventually(t, func() bool {
		_, ok := store.Get("gen-1", "user-1")

		return !ok
	}, time.Second, 10*time.Millisecond)
}
