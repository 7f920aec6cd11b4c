package economy

import (
	"context"
	"time"
)

type Account struct {
	GrowID  string
	TotalVP int64
}

// Service is where reward grants land. The ledger implementation credits the
// local account store and leaves boosts to the presence flag; the remote
// implementation relays every grant to the game server's HTTP API.
type Service interface {
	// GrantCurrency credits one reward payout and returns the new total.
	GrantCurrency(ctx context.Context, growID string, amount int64) (int64, error)
	// GrantBoost asserts a time-limited gems multiplier for the account.
	GrantBoost(ctx context.Context, growID string, multiplier float64, duration time.Duration) error
	LookupAccount(ctx context.Context, growID string) (*Account, error)
}
