package cache

import (
	"context"
	"sync"

	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
)

// Hub fans out transcript updates to live subscribers
type Hub interface {
	// Publish pushes the full segment list of a meeting
	Publish(ctx context.Context, meetingID string, segments []entities.TranscriptSegment) error
	// Subscribe registers a subscriber. Close the subscription to stop receiving.
	Subscribe(ctx context.Context, meetingID string) (*Subscription, error)
	Close() error
}

// Subscription receives the newest segment list for one meeting.
// A slow reader only ever sees the latest state.
type Subscription struct {
	mu       sync.Mutex
	ch       chan []entities.TranscriptSegment
	lastLen  int
	closed   bool
	onClose  func()
	closeOne sync.Once
}

func newSubscription(onClose func()) *Subscription {
	return &Subscription{
		ch:      make(chan []entities.TranscriptSegment, 1),
		lastLen: -1,
		onClose: onClose,
	}
}

// C returns the delivery channel, closed after Close
func (s *Subscription) C() <-chan []entities.TranscriptSegment {
	return s.ch
}

// Offer delivers segments unless a longer list was already offered.
// Transcripts only grow, so a shorter list is stale. An equal-length list is
// still delivered, since completing a transcript republishes it unchanged.
func (s *Subscription) Offer(segments []entities.TranscriptSegment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || len(segments) < s.lastLen {
		return
	}
	s.lastLen = len(segments)

	// replace whatever is still pending
	select {
	case <-s.ch:
	default:
	}
	s.ch <- segments
}

// Close unregisters the subscription and closes its channel
func (s *Subscription) Close() {
	s.closeOne.Do(func() {
		if s.onClose != nil {
			s.onClose()
		}
		s.mu.Lock()
		s.closed = true
		close(s.ch)
		s.mu.Unlock()
	})
}

// MemoryHub is an in-process Hub
type MemoryHub struct {
	mu   sync.RWMutex
	subs map[string]map[*Subscription]struct{}
}

// NewMemoryHub creates an empty hub
func NewMemoryHub() *MemoryHub {
	return &MemoryHub{subs: make(map[string]map[*Subscription]struct{})}
}

// Publish delivers to every subscriber of meetingID
func (h *MemoryHub) Publish(_ context.Context, meetingID string, segments []entities.TranscriptSegment) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs[meetingID] {
		sub.Offer(segments)
	}
	return nil
}

// Subscribe registers a subscriber for meetingID
func (h *MemoryHub) Subscribe(_ context.Context, meetingID string) (*Subscription, error) {
	var sub *Subscription
	sub = newSubscription(func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs[meetingID], sub)
		if len(h.subs[meetingID]) == 0 {
			delete(h.subs, meetingID)
		}
	})

	h.mu.Lock()
	if h.subs[meetingID] == nil {
		h.subs[meetingID] = make(map[*Subscription]struct{})
	}
	h.subs[meetingID][sub] = struct{}{}
	h.mu.Unlock()

	return sub, nil
}

// Close closes all subscriptions
func (h *MemoryHub) Close() error {
	h.mu.RLock()
	var all []*Subscription
	for _, subs := range h.subs {
		for sub := range subs {
			all = append(all, sub)
		}
	}
	h.mu.RUnlock()

	for _, sub := range all {
		sub.Close()
	}
	return nil
}
