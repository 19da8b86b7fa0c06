package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
)

// ChannelPrefixTranscript is the pub/sub channel prefix for transcript updates
const ChannelPrefixTranscript = "transcript:"

// RedisHub is a Hub shared by every API instance through Redis pub/sub
type RedisHub struct {
	client redis.UniversalClient
	logger *zap.Logger

	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	closed bool
}

// NewRedisHub creates a hub on client
func NewRedisHub(client redis.UniversalClient, logger *zap.Logger) *RedisHub {
	return &RedisHub{
		client: client,
		logger: logger,
		subs:   make(map[*Subscription]struct{}),
	}
}

func transcriptChannel(meetingID string) string {
	return ChannelPrefixTranscript + meetingID
}

// Publish sends the segment list as JSON
func (h *RedisHub) Publish(ctx context.Context, meetingID string, segments []entities.TranscriptSegment) error {
	payload, err := json.Marshal(segments)
	if err != nil {
		return fmt.Errorf("failed to encode transcript update: %w", err)
	}
	if err := h.client.Publish(ctx, transcriptChannel(meetingID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish transcript update: %w", err)
	}
	return nil
}

// Subscribe opens a Redis subscription for meetingID
func (h *RedisHub) Subscribe(ctx context.Context, meetingID string) (*Subscription, error) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, fmt.Errorf("hub closed")
	}
	h.mu.Unlock()

	pubsub := h.client.Subscribe(ctx, transcriptChannel(meetingID))
	// wait for the subscribe confirmation so no publish is missed after return
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	var sub *Subscription
	sub = newSubscription(func() {
		_ = pubsub.Close()
		h.mu.Lock()
		delete(h.subs, sub)
		h.mu.Unlock()
	})

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	go func() {
		for msg := range pubsub.Channel() {
			var segments []entities.TranscriptSegment
			if err := json.Unmarshal([]byte(msg.Payload), &segments); err != nil {
				if h.logger != nil {
					h.logger.Warn("⚠️ Dropping malformed transcript update",
						zap.String("channel", msg.Channel),
						zap.Error(err),
					)
				}
				continue
			}
			sub.Offer(segments)
		}
	}()

	return sub, nil
}

// Close closes all subscriptions
func (h *RedisHub) Close() error {
	h.mu.Lock()
	h.closed = true
	all := make([]*Subscription, 0, len(h.subs))
	for sub := range h.subs {
		all = append(all, sub)
	}
	h.mu.Unlock()

	for _, sub := range all {
		sub.Close()
	}
	return nil
}
