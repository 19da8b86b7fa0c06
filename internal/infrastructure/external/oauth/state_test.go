package oauth

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/meeting-copilot/internal/infrastructure/cache"
)

func TestStateManager_OneTimeUse(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore(nil)
	defer store.Close()
	sm := NewStateManager(store)

	state, err := sm.GenerateState(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, state)

	assert.True(t, sm.ValidateState(ctx, state))
	assert.False(t, sm.ValidateState(ctx, state), "state must not be reusable")
	assert.False(t, sm.ValidateState(ctx, "forged"))
	assert.False(t, sm.ValidateState(ctx, ""))
}

// failingDeleteStore keeps every state but cannot remove it
type failingDeleteStore struct {
	*cache.MemoryStore
}

func (failingDeleteStore) CompareAndDelete(context.Context, string, string) (bool, error) {
	return false, errors.New("redis: connection reset")
}

func TestStateManager_RejectsWhenConsumeFails(t *testing.T) {
	ctx := context.Background()
	mem := cache.NewMemoryStore(nil)
	defer mem.Close()
	sm := NewStateManager(failingDeleteStore{mem})

	state, err := sm.GenerateState(ctx)
	require.NoError(t, err)

	assert.False(t, sm.ValidateState(ctx, state), "a state that cannot be consumed must not validate")
	assert.False(t, sm.ValidateState(ctx, state))
}

func TestStateManager_Expired(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMock()
	store := cache.NewMemoryStore(clk)
	defer store.Close()
	sm := NewStateManager(store)

	state, err := sm.GenerateState(ctx)
	require.NoError(t, err)

	clk.Add(16 * time.Minute)
	assert.False(t, sm.ValidateState(ctx, state))
}

func TestStateManager_ConcurrentCallbacksConsumeOnce(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore(nil)
	defer store.Close()
	sm := NewStateManager(store)

	state, err := sm.GenerateState(ctx)
	require.NoError(t, err)

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if sm.ValidateState(ctx, state) {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins)
}

func TestGetAuthURL_RequestsCalendarScope(t *testing.T) {
	g := NewGoogleProvider("client", "secret", "http://localhost/cb")
	url := g.GetAuthURL("xyz")

	assert.Contains(t, url, "calendar.readonly")
	assert.Contains(t, url, "access_type=offline")
	assert.Contains(t, url, "state=xyz")
}
