package cache

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
)

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMock()
	store := NewMemoryStore(clk)
	defer store.Close()

	require.NoError(t, store.Set(ctx, "k", "v", time.Minute))

	v, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	clk.Add(2 * time.Minute)
	_, ok, _ = store.Get(ctx, "k")
	assert.False(t, ok, "expired values are not returned")
}

func TestMemoryStore_CleanupRemovesExpired(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMock()
	store := NewMemoryStore(clk)
	defer store.Close()

	_ = store.Set(ctx, "short", "v", time.Minute)
	_ = store.Set(ctx, "long", "v", time.Hour)

	// give the cleanup goroutine time to register its ticker
	time.Sleep(10 * time.Millisecond)
	clk.Add(cleanupInterval)

	assert.Eventually(t, func() bool { return store.size() == 1 }, time.Second, 5*time.Millisecond)
}

func TestMemoryStore_SetNXAndCompareAndDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(clock.NewMock())
	defer store.Close()

	ok, err := store.SetNX(ctx, "k", "a", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = store.SetNX(ctx, "k", "b", time.Minute)
	assert.False(t, ok)

	deleted, _ := store.CompareAndDelete(ctx, "k", "b")
	assert.False(t, deleted, "wrong holder must not release")

	deleted, _ = store.CompareAndDelete(ctx, "k", "a")
	assert.True(t, deleted)
}

func TestMemoryStore_CompareAndDeleteIgnoresExpired(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMock()
	store := NewMemoryStore(clk)
	defer store.Close()

	require.NoError(t, store.Set(ctx, "k", "a", time.Minute))
	clk.Add(2 * time.Minute)

	deleted, err := store.CompareAndDelete(ctx, "k", "a")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestLocker(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(clock.NewMock())
	defer store.Close()
	locker := NewLocker(store)

	release, ok, err := locker.TryLock(ctx, "summary:m1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, _ = locker.TryLock(ctx, "summary:m1", time.Minute)
	assert.False(t, ok)

	release()
	release()

	release2, ok, _ := locker.TryLock(ctx, "summary:m1", time.Minute)
	assert.True(t, ok)
	release2()
}

func segs(texts ...string) []entities.TranscriptSegment {
	out := make([]entities.TranscriptSegment, len(texts))
	for i, t := range texts {
		out[i] = entities.TranscriptSegment{Text: t}
	}
	return out
}

func TestMemoryHub_LatestStateOnly(t *testing.T) {
	ctx := context.Background()
	hub := NewMemoryHub()
	defer hub.Close()

	sub, err := hub.Subscribe(ctx, "meeting-1")
	require.NoError(t, err)

	_ = hub.Publish(ctx, "meeting-1", segs("a"))
	_ = hub.Publish(ctx, "meeting-1", segs("a", "b"))
	_ = hub.Publish(ctx, "other", segs("x", "y", "z"))

	got := <-sub.C()
	assert.Len(t, got, 2, "slow reader only sees newest list")

	select {
	case extra := <-sub.C():
		t.Fatalf("unexpected extra delivery: %v", extra)
	default:
	}
}

func TestSubscription_DropsStaleOffer(t *testing.T) {
	sub := newSubscription(nil)

	sub.Offer(segs("a", "b"))
	<-sub.C()
	sub.Offer(segs("a"))

	select {
	case got := <-sub.C():
		t.Fatalf("stale list delivered: %v", got)
	default:
	}
}

func TestSubscription_RedeliversEqualLength(t *testing.T) {
	sub := newSubscription(nil)

	sub.Offer(segs("a", "b"))
	<-sub.C()
	sub.Offer(segs("a", "b"))

	select {
	case got := <-sub.C():
		assert.Len(t, got, 2)
	default:
		t.Fatal("equal-length list was dropped")
	}
}

func TestMemoryHub_CloseUnsubscribes(t *testing.T) {
	ctx := context.Background()
	hub := NewMemoryHub()

	sub, _ := hub.Subscribe(ctx, "meeting-1")
	sub.Close()

	_, open := <-sub.C()
	assert.False(t, open)

	hub.mu.RLock()
	assert.Empty(t, hub.subs)
	hub.mu.RUnlock()

	assert.NoError(t, hub.Publish(ctx, "meeting-1", segs("a")))
}
