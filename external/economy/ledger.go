package economy

import (
	"context"
	"time"

	"github.com/gtpscloud/rewardsbot/internal/account"
	economypkg "github.com/gtpscloud/rewardsbot/internal/economy"
)

// LedgerService settles rewards against the local account store. Boost grants
// are a no-op here: with the local ledger the game server queries boost status
// on demand through the webhook surface, driven by channel presence alone.
type LedgerService struct {
	store account.Store
}

func NewLedgerService(store account.Store) *LedgerService {
	return &LedgerService{store: store}
}

func (s *LedgerService) GrantCurrency(ctx context.Context, growID string, amount int64) (int64, error) {
	return s.store.Deposit(ctx, growID, amount)
}

func (s *LedgerService) GrantBoost(_ context.Context, _ string, _ float64, _ time.Duration) error {
	return nil
}

func (s *LedgerService) LookupAccount(ctx context.Context, growID string) (*economypkg.Account, error) {
	linked, err := s.store.Lookup(ctx, growID)
	if err != nil {
		return nil, err
	}
	if linked == nil {
		return nil, account.ErrUnknownAccount
	}
	return &economypkg.Account{GrowID: linked.GrowID, TotalVP: linked.Balance}, nil
}
