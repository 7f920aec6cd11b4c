package account

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrAccountAlreadyLinked means the GrowID is already bound to a Discord user.
	ErrAccountAlreadyLinked = errors.New("game account is already linked to a discord user")
	// ErrUserAlreadyLinked means the Discord user is already bound to a GrowID.
	ErrUserAlreadyLinked = errors.New("discord user is already linked to a game account")
	// ErrInvalidOrExpiredCode covers codes that were never issued, already
	// consumed, or swept after expiry. The three cases are indistinguishable
	// on purpose.
	ErrInvalidOrExpiredCode = errors.New("invalid or expired link code")
	ErrUnknownAccount       = errors.New("unknown game account")
	ErrInsufficientBalance  = errors.New("insufficient VP balance")
)

type Linked struct {
	GrowID    string
	DiscordID string
	Balance   int64
	LinkedAt  time.Time
}

type PendingLink struct {
	Code     string
	GrowID   string
	IssuedAt time.Time
}

// Store holds pending link codes, the bidirectional GrowID<->Discord binding
// and the VP balance of every linked account. A code moves from issued to
// consumed or expired exactly once and is never revived.
type Store interface {
	// RegisterPendingLink records a one-time code for an unlinked GrowID,
	// replacing any earlier pending code for the same GrowID. Fails with
	// ErrAccountAlreadyLinked without storing the code when the GrowID is
	// already bound.
	RegisterPendingLink(ctx context.Context, growID, code string) error
	// ConsumeCode binds the code's GrowID to the Discord user and removes the
	// code, creating the account with a zero balance. It returns the bound
	// GrowID. Fails with ErrInvalidOrExpiredCode, ErrUserAlreadyLinked or
	// ErrAccountAlreadyLinked, leaving the store untouched in every failure
	// case.
	ConsumeCode(ctx context.Context, code, discordID string) (string, error)
	// SweepExpired drops every pending code older than the TTL and returns
	// how many were dropped.
	SweepExpired(ctx context.Context, now time.Time) (int, error)
	// GrowIDByDiscordUser returns the bound GrowID, or "" when the user is
	// not linked.
	GrowIDByDiscordUser(ctx context.Context, discordID string) (string, error)
	// Lookup returns the linked account, or nil when the GrowID is unknown.
	Lookup(ctx context.Context, growID string) (*Linked, error)
	Deposit(ctx context.Context, growID string, amount int64) (int64, error)
	// Spend decrements the balance, failing with ErrInsufficientBalance
	// without mutating it when the balance does not cover the amount.
	Spend(ctx context.Context, growID string, amount int64) (int64, error)
}
