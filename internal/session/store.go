// AngelaMos | 2026
// store.go

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/promptforge/storefront/internal/pricing"
)

// PendingCheckout is the provider-side state carried between initiate and
// confirm: the pending reference and the priced order it was created for.
// It lives only in the session; a checkout attempt that never confirms
// simply ages out with it.
type PendingCheckout struct {
	Provider  string        `json:"provider"`
	Reference string        `json:"reference"`
	Quote     pricing.Quote `json:"quote"`
	Status    string        `json:"status"`
	FromCart  bool          `json:"from_cart"`
	CreatedAt time.Time     `json:"created_at"`
}

// State is the per-user session blob. Single-writer in practice: every
// request that mutates it saves it back before responding. Only the cart
// field is ever mirrored into the user record, and only at the
// login/logout boundary.
type State struct {
	Cart    []string         `json:"cart,omitempty"`
	Pending *PendingCheckout `json:"pending,omitempty"`
	Theme   string           `json:"theme,omitempty"`
}

type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func sessionKey(userID string) string {
	return "session:" + userID
}

// Get returns the stored state, or an empty one when none exists.
func (s *Store) Get(ctx context.Context, userID string) (*State, error) {
	data, err := s.client.Get(ctx, sessionKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return &State{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}

	return &state, nil
}

func (s *Store) Save(ctx context.Context, userID string, state *State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	if err := s.client.Set(ctx, sessionKey(userID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
