package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"
)

// Store is the state storage, Redis when available and memory otherwise
type Store interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// CompareAndDelete must check and remove in one step
	CompareAndDelete(ctx context.Context, key, value string) (bool, error)
}

const (
	stateKeyPrefix = "oauth:state:"
	stateValue     = "valid"
)

// StateManager manages OAuth state tokens for CSRF protection
type StateManager struct {
	store      Store
	expiration time.Duration
}

// NewStateManager creates a new state manager
func NewStateManager(store Store) *StateManager {
	return &StateManager{
		store:      store,
		expiration: 15 * time.Minute,
	}
}

// GenerateState generates a random state token and stores it
func (sm *StateManager) GenerateState(ctx context.Context) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	state := base64.URLEncoding.EncodeToString(b)
	if err := sm.store.Set(ctx, stateKeyPrefix+state, stateValue, sm.expiration); err != nil {
		return "", fmt.Errorf("failed to store oauth state: %w", err)
	}

	return state, nil
}

// ValidateState consumes a state token. Only the caller that removes it
// succeeds; a store error fails validation.
func (sm *StateManager) ValidateState(ctx context.Context, state string) bool {
	if state == "" {
		return false
	}
	consumed, err := sm.store.CompareAndDelete(ctx, stateKeyPrefix+state, stateValue)
	return err == nil && consumed
}
