package auth_test

import (
	"testing"
	"time"

	"github.com/harukisan/fixed-points-backend/internal/auth"
	"github.com/stretchr/testify/assert"
)

func TestMemoryStateStore_ConsumeOnce(t *testing.T) {
	store := auth.NewMemoryStateStore(time.Minute)

	store.Put("state-1")

	assert.True(t, store.Consume("state-1"), "first consume should succeed")
	assert.False(t, store.Consume("state-1"), "second consume should fail")
}

func TestMemoryStateStore_UnknownState(t *testing.T) {
	store := auth.NewMemoryStateStore(time.Minute)

	assert.False(t, store.Consume("never-issued"))
}

func TestMemoryStateStore_Expiry(t *testing.T) {
	store := auth.NewMemoryStateStore(10 * time.Millisecond)

	store.Put("short-lived")
	time.Sleep(20 * time.Millisecond)

	assert.False(t, store.Consume("short-lived"), "expired state should not be consumable")
	assert.False(t, store.Consume("short-lived"), "expired state stays dead after first attempt")
}

func TestMemoryStateStore_IndependentStates(t *testing.T) {
	store := auth.NewMemoryStateStore(time.Minute)

	store.Put("a")
	store.Put("b")

	assert.True(t, store.Consume("a"))
	assert.True(t, store.Consume("b"), "consuming one state should not affect another")
}
