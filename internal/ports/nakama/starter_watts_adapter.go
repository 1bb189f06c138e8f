package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"percity/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	starterWattsCollection = "onboarding"
	starterWattsKey        = "starter_watts_v1"
)

// NakamaStarterWattsAdapter grants starter watts using Nakama storage + wallet updates.
type NakamaStarterWattsAdapter struct {
	nk runtime.NakamaModule
}

// NewNakamaStarterWattsAdapter creates a new starter watts adapter.
func NewNakamaStarterWattsAdapter(nk runtime.NakamaModule) *NakamaStarterWattsAdapter {
	return &NakamaStarterWattsAdapter{nk: nk}
}

// GrantStarterWattsOnce grants the starter watts and records a marker atomically.
func (a *NakamaStarterWattsAdapter) GrantStarterWattsOnce(ctx context.Context, userID string, amount int64, metadata map[string]interface{}) (bool, error) {
	if userID == "" {
		return false, fmt.Errorf("userID is required")
	}
	if amount <= 0 {
		return false, fmt.Errorf("amount must be positive")
	}

	marker := map[string]interface{}{
		"amount":     amount,
		"granted_at": time.Now().UTC().Format(time.RFC3339),
	}
	value, err := json.Marshal(marker)
	if err != nil {
		return false, fmt.Errorf("failed to marshal starter watts marker: %w", err)
	}

	storageWrites := []*runtime.StorageWrite{
		{
			Collection:      starterWattsCollection,
			Key:             starterWattsKey,
			UserID:          userID,
			Value:           string(value),
			Version:         "*",
			PermissionRead:  runtime.STORAGE_PERMISSION_NO_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		},
	}

	walletUpdates := []*runtime.WalletUpdate{
		{
			UserID:    userID,
			Changeset: map[string]int64{wattsWalletKey: amount},
			Metadata:  metadata,
		},
	}

	_, _, err = a.nk.MultiUpdate(ctx, nil, storageWrites, nil, walletUpdates, true)
	if err != nil {
		if errors.Is(err, runtime.ErrStorageRejectedVersion) {
			return false, nil
		}
		return false, fmt.Errorf("failed to grant starter watts: %w", err)
	}

	return true, nil
}

var _ ports.StarterWattsPort = (*NakamaStarterWattsAdapter)(nil)
