package state

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*SelectionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSelectionStore(client), mr
}

func TestSelectionRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	deviceID, err := store.Get(ctx, "user-1")
	require.NoError(t, err)
	require.Empty(t, deviceID, "no selection stored yet")

	require.NoError(t, store.Save(ctx, "user-1", "dev-42"))

	deviceID, err = store.Get(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, "dev-42", deviceID)

	require.NoError(t, store.Clear(ctx, "user-1"))

	deviceID, err = store.Get(ctx, "user-1")
	require.NoError(t, err)
	require.Empty(t, deviceID)
}

func TestSelectionSurvivesNoTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "user-1", "dev-42"))
	require.Equal(t, int64(0), int64(mr.TTL("aquawatch:state:selected:user-1")), "selection keys must not expire")
}

func TestSelectionIsPerUser(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "user-1", "dev-1"))
	require.NoError(t, store.Save(ctx, "user-2", "dev-2"))

	got, err := store.Get(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, "dev-1", got)
}
