package account

import (
	"context"
	"sync"
	"time"

	accountpkg "github.com/gtpscloud/rewardsbot/internal/account"
)

// MemoryStore keeps codes, bindings and balances in process memory. Everything
// is lost on restart; accrual and linking silently start over.
type MemoryStore struct {
	ttl time.Duration
	now func() time.Time

	mu        sync.Mutex
	codes     map[string]pendingLink
	byGrowID  map[string]*accountpkg.Linked
	byDiscord map[string]*accountpkg.Linked
}

type pendingLink struct {
	growID   string
	issuedAt time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:       ttl,
		now:       time.Now,
		codes:     make(map[string]pendingLink),
		byGrowID:  make(map[string]*accountpkg.Linked),
		byDiscord: make(map[string]*accountpkg.Linked),
	}
}

func (s *MemoryStore) RegisterPendingLink(_ context.Context, growID, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, bound := s.byGrowID[growID]; bound {
		return accountpkg.ErrAccountAlreadyLinked
	}
	// A fresh code replaces any still-pending one for the same GrowID.
	for c, p := range s.codes {
		if p.growID == growID {
			delete(s.codes, c)
		}
	}
	s.codes[code] = pendingLink{growID: growID, issuedAt: s.now()}
	return nil
}

func (s *MemoryStore) ConsumeCode(_ context.Context, code, discordID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.codes[code]
	if !ok {
		return "", accountpkg.ErrInvalidOrExpiredCode
	}
	// The sweep runs on a coarse period, so an overdue code can still be in
	// the map here. It must fail identically to a swept one.
	if s.now().Sub(p.issuedAt) > s.ttl {
		delete(s.codes, code)
		return "", accountpkg.ErrInvalidOrExpiredCode
	}
	if _, bound := s.byDiscord[discordID]; bound {
		return "", accountpkg.ErrUserAlreadyLinked
	}
	if _, bound := s.byGrowID[p.growID]; bound {
		return "", accountpkg.ErrAccountAlreadyLinked
	}
	linked := &accountpkg.Linked{
		GrowID:    p.growID,
		DiscordID: discordID,
		Balance:   0,
		LinkedAt:  s.now(),
	}
	s.byGrowID[p.growID] = linked
	s.byDiscord[discordID] = linked
	delete(s.codes, code)
	return p.growID, nil
}

func (s *MemoryStore) SweepExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	swept := 0
	for code, p := range s.codes {
		if now.Sub(p.issuedAt) > s.ttl {
			delete(s.codes, code)
			swept++
		}
	}
	return swept, nil
}

func (s *MemoryStore) GrowIDByDiscordUser(_ context.Context, discordID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	linked, ok := s.byDiscord[discordID]
	if !ok {
		return "", nil
	}
	return linked.GrowID, nil
}

func (s *MemoryStore) Lookup(_ context.Context, growID string) (*accountpkg.Linked, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	linked, ok := s.byGrowID[growID]
	if !ok {
		return nil, nil
	}
	copied := *linked
	return &copied, nil
}

func (s *MemoryStore) Deposit(_ context.Context, growID string, amount int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	linked, ok := s.byGrowID[growID]
	if !ok {
		return 0, accountpkg.ErrUnknownAccount
	}
	linked.Balance += amount
	return linked.Balance, nil
}

func (s *MemoryStore) Spend(_ context.Context, growID string, amount int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	linked, ok := s.byGrowID[growID]
	if !ok {
		return 0, accountpkg.ErrUnknownAccount
	}
	if linked.Balance < amount {
		return linked.Balance, accountpkg.ErrInsufficientBalance
	}
	linked.Balance -= amount
	return linked.Balance, nil
}
