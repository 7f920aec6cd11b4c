package config

import (
	"fmt"
	"time"
)

type RewardBackend string

const (
	RewardBackendLedger RewardBackend = "ledger"
	RewardBackendRemote RewardBackend = "remote"
)

type Config struct {
	Env               string
	DiscordToken      string
	DiscordGuildID    string
	VPChannelID       string
	GemsChannelID     string
	VPAmount          int64
	VPInterval        time.Duration
	GemsMultiplier    float64
	GemsDuration      time.Duration
	GemsRefresh       time.Duration
	LinkCodeTTL       time.Duration
	LinkSweepInterval time.Duration
	RewardBackend     RewardBackend
	GameAPIBaseURL    string
	GameAPITimeout    time.Duration
	DatabaseURL       string
	WebhookSecret     string
	ListenPort        int
}

func (c *Config) Validate() error {
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	if c.VPChannelID == c.GemsChannelID {
		return fmt.Errorf("VP_CHANNEL_ID and GEMS_CHANNEL_ID must be different channels")
	}
	if c.VPAmount <= 0 {
		return fmt.Errorf("VP_AMOUNT must be positive, got %d", c.VPAmount)
	}
	// Intervals under a minute only ever appeared as debugging leftovers and
	// would hammer both the Discord state cache and users' DMs.
	if c.VPInterval < time.Minute {
		return fmt.Errorf("VP_INTERVAL must be at least 1m, got %s", c.VPInterval)
	}
	if c.GemsMultiplier <= 1 {
		return fmt.Errorf("GEMS_MULTIPLIER must be greater than 1, got %g", c.GemsMultiplier)
	}
	if c.GemsDuration <= 0 {
		return fmt.Errorf("GEMS_DURATION must be positive, got %s", c.GemsDuration)
	}
	if c.GemsRefresh <= 0 {
		return fmt.Errorf("GEMS_REFRESH must be positive, got %s", c.GemsRefresh)
	}
	if c.LinkCodeTTL <= 0 {
		return fmt.Errorf("LINK_CODE_TTL must be positive, got %s", c.LinkCodeTTL)
	}
	if c.LinkSweepInterval <= 0 {
		return fmt.Errorf("LINK_SWEEP_INTERVAL must be positive, got %s", c.LinkSweepInterval)
	}
	switch c.RewardBackend {
	case RewardBackendLedger:
	case RewardBackendRemote:
		if c.GameAPIBaseURL == "" {
			return fmt.Errorf("GAME_API_BASE_URL is required when REWARD_BACKEND=remote")
		}
		if c.GameAPITimeout <= 0 {
			return fmt.Errorf("GAME_API_TIMEOUT must be positive, got %s", c.GameAPITimeout)
		}
	default:
		return fmt.Errorf("REWARD_BACKEND must be %q or %q, got %q", RewardBackendLedger, RewardBackendRemote, c.RewardBackend)
	}
	if c.ListenPort <= 0 || c.ListenPort > 65535 {
		return fmt.Errorf("PORT must be a valid port number, got %d", c.ListenPort)
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "DISCORD_TOKEN", value: c.DiscordToken},
		{name: "DISCORD_GUILD_ID", value: c.DiscordGuildID},
		{name: "VP_CHANNEL_ID", value: c.VPChannelID},
		{name: "GEMS_CHANNEL_ID", value: c.GemsChannelID},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
