package account

import (
	"context"
	"errors"
	"time"

	accountpkg "github.com/gtpscloud/rewardsbot/internal/account"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists bindings and balances so accounts survive restarts.
// Pending codes live in the same database so ConsumeCode can bind and consume
// in one transaction.
type PostgresStore struct {
	pool *pgxpool.Pool
	ttl  time.Duration
	now  func() time.Time
}

func NewPostgresStore(pool *pgxpool.Pool, ttl time.Duration) *PostgresStore {
	return &PostgresStore{pool: pool, ttl: ttl, now: time.Now}
}

func (s *PostgresStore) RegisterPendingLink(ctx context.Context, growID, code string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var bound bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM linked_accounts WHERE grow_id = $1)`,
		growID).Scan(&bound)
	if err != nil {
		return err
	}
	if bound {
		return accountpkg.ErrAccountAlreadyLinked
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO link_codes (code, grow_id, issued_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (grow_id) DO UPDATE SET code = EXCLUDED.code, issued_at = EXCLUDED.issued_at`,
		code, growID, s.now())
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) ConsumeCode(ctx context.Context, code, discordID string) (string, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var growID string
	err = tx.QueryRow(ctx,
		`DELETE FROM link_codes WHERE code = $1 AND issued_at > $2 RETURNING grow_id`,
		code, s.now().Add(-s.ttl)).Scan(&growID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", accountpkg.ErrInvalidOrExpiredCode
		}
		return "", err
	}

	var userBound, accountBound bool
	err = tx.QueryRow(ctx,
		`SELECT
			EXISTS (SELECT 1 FROM linked_accounts WHERE discord_id = $1),
			EXISTS (SELECT 1 FROM linked_accounts WHERE grow_id = $2)`,
		discordID, growID).Scan(&userBound, &accountBound)
	if err != nil {
		return "", err
	}
	// Returning without committing rolls the DELETE back, so the code stays
	// pending on every failure path.
	if userBound {
		return "", accountpkg.ErrUserAlreadyLinked
	}
	if accountBound {
		return "", accountpkg.ErrAccountAlreadyLinked
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO linked_accounts (grow_id, discord_id, balance, linked_at)
		 VALUES ($1, $2, 0, $3)`,
		growID, discordID, s.now())
	if err != nil {
		return "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return growID, nil
}

func (s *PostgresStore) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM link_codes WHERE issued_at <= $1`,
		now.Add(-s.ttl))
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) GrowIDByDiscordUser(ctx context.Context, discordID string) (string, error) {
	var growID string
	err := s.pool.QueryRow(ctx,
		`SELECT grow_id FROM linked_accounts WHERE discord_id = $1`,
		discordID).Scan(&growID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return growID, nil
}

func (s *PostgresStore) Lookup(ctx context.Context, growID string) (*accountpkg.Linked, error) {
	var linked accountpkg.Linked
	err := s.pool.QueryRow(ctx,
		`SELECT grow_id, discord_id, balance, linked_at FROM linked_accounts WHERE grow_id = $1`,
		growID).Scan(&linked.GrowID, &linked.DiscordID, &linked.Balance, &linked.LinkedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &linked, nil
}

func (s *PostgresStore) Deposit(ctx context.Context, growID string, amount int64) (int64, error) {
	var balance int64
	err := s.pool.QueryRow(ctx,
		`UPDATE linked_accounts SET balance = balance + $2 WHERE grow_id = $1 RETURNING balance`,
		growID, amount).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, accountpkg.ErrUnknownAccount
		}
		return 0, err
	}
	return balance, nil
}

func (s *PostgresStore) Spend(ctx context.Context, growID string, amount int64) (int64, error) {
	var balance int64
	err := s.pool.QueryRow(ctx,
		`UPDATE linked_accounts SET balance = balance - $2
		 WHERE grow_id = $1 AND balance >= $2
		 RETURNING balance`,
		growID, amount).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}
	err = s.pool.QueryRow(ctx,
		`SELECT balance FROM linked_accounts WHERE grow_id = $1`,
		growID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, accountpkg.ErrUnknownAccount
		}
		return 0, err
	}
	return balance, accountpkg.ErrInsufficientBalance
}
