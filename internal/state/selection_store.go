package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// SelectionStore persists which device each user has selected, so the
// selection survives restarts. Keys have no TTL.
type SelectionStore struct {
	client *redis.Client
}

// NewSelectionStore returns redis-backed store.
func NewSelectionStore(client *redis.Client) *SelectionStore {
	return &SelectionStore{client: client}
}

func (s *SelectionStore) key(userID string) string {
	return fmt.Sprintf("aquawatch:state:selected:%s", userID)
}

// Save records the selected device for a user.
func (s *SelectionStore) Save(ctx context.Context, userID, deviceID string) error {
	return s.client.Set(ctx, s.key(userID), deviceID, 0).Err()
}

// Get returns the selected device id, or "" when none is stored.
func (s *SelectionStore) Get(ctx context.Context, userID string) (string, error) {
	deviceID, err := s.client.Get(ctx, s.key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return deviceID, nil
}

// Clear removes the stored selection.
func (s *SelectionStore) Clear(ctx context.Context, userID string) error {
	return s.client.Del(ctx, s.key(userID)).Err()
}
