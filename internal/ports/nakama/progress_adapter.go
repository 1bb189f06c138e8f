package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"percity/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// wattsWalletKey is the wallet currency students earn by winning levels.
const wattsWalletKey = "watts"

// NakamaProgressAdapter implements ports.ProgressPort using Nakama's wallet system.
type NakamaProgressAdapter struct {
	nk runtime.NakamaModule
}

// NewNakamaProgressAdapter creates a new progress adapter.
func NewNakamaProgressAdapter(nk runtime.NakamaModule) *NakamaProgressAdapter {
	return &NakamaProgressAdapter{nk: nk}
}

// GetWatts retrieves the current watts balance for a student.
func (a *NakamaProgressAdapter) GetWatts(ctx context.Context, userID string) (int64, error) {
	account, err := a.nk.AccountGetId(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to get account: %w", err)
	}

	var wallet map[string]int64
	if err := json.Unmarshal([]byte(account.Wallet), &wallet); err != nil {
		return 0, fmt.Errorf("failed to unmarshal wallet: %w", err)
	}

	return wallet[wattsWalletKey], nil
}

// AwardWatts applies multiple watt awards.
func (a *NakamaProgressAdapter) AwardWatts(ctx context.Context, awards []ports.WattAward) error {
	for _, award := range awards {
		if award.Amount == 0 {
			continue
		}

		changes := map[string]int64{
			wattsWalletKey: award.Amount,
		}

		_, _, err := a.nk.WalletUpdate(ctx, award.UserID, changes, award.Metadata, true)
		if err != nil {
			return fmt.Errorf("failed to update wallet for user %s: %w", award.UserID, err)
		}
	}
	return nil
}

var _ ports.ProgressPort = (*NakamaProgressAdapter)(nil)
