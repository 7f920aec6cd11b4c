package rewards

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gtpscloud/rewardsbot/internal/account"
	"github.com/gtpscloud/rewardsbot/internal/config"
	"github.com/gtpscloud/rewardsbot/internal/discord"
	"github.com/gtpscloud/rewardsbot/internal/economy"
)

// Manager owns the per-user voice presence state for both reward channels and
// drives the periodic reward loops. All tracker mutations happen under mu and
// are finalized before any outbound call, so a grant failure can never leave
// the tracker half-updated.
type Manager struct {
	cfg     *config.Config
	store   account.Store
	discord discord.Client
	economy economy.Service

	now func() time.Time

	mu        sync.Mutex
	vpEntry   map[string]time.Time
	gemsEntry map[string]time.Time
	botUserID string
}

func NewManager(cfg *config.Config, store account.Store, dc discord.Client, eco economy.Service) *Manager {
	return &Manager{
		cfg:       cfg,
		store:     store,
		discord:   dc,
		economy:   eco,
		now:       time.Now,
		vpEntry:   make(map[string]time.Time),
		gemsEntry: make(map[string]time.Time),
	}
}

func (m *Manager) SetBotUserID(userID string) {
	m.mu.Lock()
	m.botUserID = userID
	m.mu.Unlock()
}

func (m *Manager) HandleVoiceStateUpdate(event discord.VoiceStateEvent) {
	if event.GuildID != m.cfg.DiscordGuildID {
		return
	}
	m.mu.Lock()
	self := event.UserID == m.botUserID
	m.mu.Unlock()
	if event.UserIsBot || self {
		return
	}

	m.trackVPChannel(event)
	m.trackGemsChannel(event)
}

func (m *Manager) trackVPChannel(event discord.VoiceStateEvent) {
	vp := m.cfg.VPChannelID
	switch {
	case event.AfterChannelID == vp && event.BeforeChannelID != vp:
		m.mu.Lock()
		if _, ok := m.vpEntry[event.UserID]; !ok {
			m.vpEntry[event.UserID] = m.now()
		}
		m.mu.Unlock()
		slog.Info("user entered vp channel", "user_id", event.UserID)
	case event.BeforeChannelID == vp && event.AfterChannelID != vp:
		m.mu.Lock()
		delete(m.vpEntry, event.UserID)
		m.mu.Unlock()
		slog.Info("user left vp channel", "user_id", event.UserID)
	}
}

func (m *Manager) trackGemsChannel(event discord.VoiceStateEvent) {
	gems := m.cfg.GemsChannelID
	switch {
	case event.AfterChannelID == gems && event.BeforeChannelID != gems:
		m.mu.Lock()
		_, already := m.gemsEntry[event.UserID]
		if !already {
			m.gemsEntry[event.UserID] = m.now()
		}
		m.mu.Unlock()
		if already {
			return
		}
		slog.Info("user entered gems channel", "user_id", event.UserID)
		m.activateBoost(context.Background(), event.UserID)
	case event.BeforeChannelID == gems && event.AfterChannelID != gems:
		m.mu.Lock()
		delete(m.gemsEntry, event.UserID)
		m.mu.Unlock()
		// With the presence-flag model, dropping the entry is the revocation;
		// the game server sees the boost as inactive on its next check.
		slog.Info("user left gems channel", "user_id", event.UserID)
	}
}

// activateBoost issues the eager first grant on gems-channel entry. The
// tracker entry is already recorded, so nothing here may fail bookkeeping.
func (m *Manager) activateBoost(ctx context.Context, userID string) {
	growID, err := m.store.GrowIDByDiscordUser(ctx, userID)
	if err != nil {
		slog.Error("failed to resolve linked account for boost", "error", err, "user_id", userID)
		return
	}
	if growID == "" {
		slog.Info("gems channel occupant is not linked; boost skipped", "user_id", userID)
		return
	}
	if m.cfg.RewardBackend == config.RewardBackendRemote {
		if err := m.economy.GrantBoost(ctx, growID, m.cfg.GemsMultiplier, m.cfg.GemsDuration); err != nil {
			slog.Error("failed to grant gems boost", "error", err, "user_id", userID, "grow_id", growID)
			return
		}
	}
	slog.Info("gems boost activated", "user_id", userID, "grow_id", growID, "multiplier", m.cfg.GemsMultiplier)
	if err := m.discord.SendDirectMessage(userID, boostActivatedMessage(m.cfg)); err != nil {
		slog.Warn("failed to send boost activation dm", "error", err, "user_id", userID)
	}
}

// BoostActive implements webhook.BoostStatus: a boost is exactly a function of
// current gems-channel presence of the bound Discord user.
func (m *Manager) BoostActive(ctx context.Context, growID string) (bool, error) {
	linked, err := m.store.Lookup(ctx, growID)
	if err != nil {
		return false, err
	}
	if linked == nil {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.gemsEntry[linked.DiscordID]
	return ok, nil
}

// Run drives the accrual, boost-refresh and code-sweep loops from a single
// goroutine until ctx is canceled. The boost refresh only exists for the
// remote backend; with the local ledger the boost is queried on demand.
func (m *Manager) Run(ctx context.Context) {
	vpTicker := time.NewTicker(m.cfg.VPInterval)
	defer vpTicker.Stop()
	sweepTicker := time.NewTicker(m.cfg.LinkSweepInterval)
	defer sweepTicker.Stop()

	var boostTick <-chan time.Time
	if m.cfg.RewardBackend == config.RewardBackendRemote {
		boostTicker := time.NewTicker(m.cfg.GemsRefresh)
		defer boostTicker.Stop()
		boostTick = boostTicker.C
	}

	slog.Info("reward loops started",
		"vp_interval", m.cfg.VPInterval,
		"gems_refresh", m.cfg.GemsRefresh,
		"sweep_interval", m.cfg.LinkSweepInterval,
		"backend", m.cfg.RewardBackend)
	for {
		select {
		case <-ctx.Done():
			slog.Info("reward loops stopped")
			return
		case <-vpTicker.C:
			m.runAccrualTick(ctx)
		case <-boostTick:
			m.runBoostTick(ctx)
		case <-sweepTicker.C:
			m.runSweepTick(ctx)
		}
	}
}

func (m *Manager) runAccrualTick(ctx context.Context) {
	participants, err := m.discord.ListVoiceChannelParticipants(m.cfg.DiscordGuildID, m.cfg.VPChannelID)
	if err != nil {
		slog.Warn("vp tick skipped: could not resolve channel occupants", "error", err, "channel_id", m.cfg.VPChannelID)
		return
	}
	now := m.now()
	for _, p := range participants {
		if p.IsBot {
			continue
		}
		m.accrueFor(ctx, p.UserID, now)
	}
}

// accrueFor pays out at most one reward unit. The entry timestamp is reset
// before the grant call, so scheduler delay can never bank more than one
// interval and a failed grant can never be retried into a double payout.
func (m *Manager) accrueFor(ctx context.Context, userID string, now time.Time) {
	growID, err := m.store.GrowIDByDiscordUser(ctx, userID)
	if err != nil {
		slog.Error("failed to resolve linked account for accrual", "error", err, "user_id", userID)
		return
	}
	if growID == "" {
		return
	}

	m.mu.Lock()
	start, ok := m.vpEntry[userID]
	if !ok || now.Sub(start) < m.cfg.VPInterval {
		m.mu.Unlock()
		return
	}
	m.vpEntry[userID] = now
	m.mu.Unlock()

	total, err := m.economy.GrantCurrency(ctx, growID, m.cfg.VPAmount)
	if err != nil {
		// Accepted loss: the user earns again on a later tick if they stay.
		slog.Error("failed to grant vp", "error", err, "user_id", userID, "grow_id", growID, "amount", m.cfg.VPAmount)
		return
	}
	slog.Info("vp granted", "user_id", userID, "grow_id", growID, "amount", m.cfg.VPAmount, "total", total)
	if err := m.discord.SendDirectMessage(userID, vpGrantedMessage(m.cfg.VPAmount, total)); err != nil {
		slog.Warn("failed to send vp grant dm", "error", err, "user_id", userID)
	}
}

// runBoostTick re-asserts the time-limited boost on the game server for every
// linked gems-channel occupant, extending it by one refresh period.
func (m *Manager) runBoostTick(ctx context.Context) {
	participants, err := m.discord.ListVoiceChannelParticipants(m.cfg.DiscordGuildID, m.cfg.GemsChannelID)
	if err != nil {
		slog.Warn("gems tick skipped: could not resolve channel occupants", "error", err, "channel_id", m.cfg.GemsChannelID)
		return
	}
	for _, p := range participants {
		if p.IsBot {
			continue
		}
		growID, err := m.store.GrowIDByDiscordUser(ctx, p.UserID)
		if err != nil {
			slog.Error("failed to resolve linked account for boost refresh", "error", err, "user_id", p.UserID)
			continue
		}
		if growID == "" {
			continue
		}
		if err := m.economy.GrantBoost(ctx, growID, m.cfg.GemsMultiplier, m.cfg.GemsRefresh); err != nil {
			slog.Error("failed to refresh gems boost", "error", err, "user_id", p.UserID, "grow_id", growID)
		}
	}
}

func (m *Manager) runSweepTick(ctx context.Context) {
	n, err := m.store.SweepExpired(ctx, m.now())
	if err != nil {
		slog.Error("failed to sweep expired link codes", "error", err)
		return
	}
	if n > 0 {
		slog.Info("expired link codes swept", "count", n)
	}
}
