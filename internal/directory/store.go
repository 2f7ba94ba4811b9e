package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SharedSnapshotKey is the storage key under which snapshots are published.
const SharedSnapshotKey = "studiolinks:directory:snapshot"

var errNoSharedSnapshot = errors.New("no shared snapshot")

// SnapshotStore is the subset of fiber.Storage used to share snapshots
// between instances. The Redis storage from gofiber/storage satisfies it.
type SnapshotStore interface {
	GetWithContext(ctx context.Context, key string) ([]byte, error)
	SetWithContext(ctx context.Context, key string, val []byte, exp time.Duration) error
}

func readSnapshot(ctx context.Context, store SnapshotStore) (*Snapshot, error) {
	data, err := store.GetWithContext(ctx, SharedSnapshotKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read shared snapshot: %w", err)
	}
	if len(data) == 0 {
		return nil, errNoSharedSnapshot
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode shared snapshot: %w", err)
	}
	if snap.Links == nil {
		snap.Links = map[string]string{}
	}
	return &snap, nil
}

func writeSnapshot(ctx context.Context, store SnapshotStore, snap *Snapshot, ttl time.Duration) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := store.SetWithContext(ctx, SharedSnapshotKey, data, ttl); err != nil {
		return fmt.Errorf("failed to write shared snapshot: %w", err)
	}
	return nil
}
