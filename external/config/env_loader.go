package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	internalconfig "github.com/gtpscloud/rewardsbot/internal/config"
)

type envConfig struct {
	Env               string        `env:"ENV" envDefault:"production"`
	DiscordToken      string        `env:"DISCORD_TOKEN,required"`
	DiscordGuildID    string        `env:"DISCORD_GUILD_ID,required"`
	VPChannelID       string        `env:"VP_CHANNEL_ID,required"`
	GemsChannelID     string        `env:"GEMS_CHANNEL_ID,required"`
	VPAmount          int64         `env:"VP_AMOUNT" envDefault:"10"`
	VPInterval        time.Duration `env:"VP_INTERVAL" envDefault:"300s"`
	GemsMultiplier    float64       `env:"GEMS_MULTIPLIER" envDefault:"1.05"`
	GemsDuration      time.Duration `env:"GEMS_DURATION" envDefault:"3600s"`
	GemsRefresh       time.Duration `env:"GEMS_REFRESH" envDefault:"60s"`
	LinkCodeTTL       time.Duration `env:"LINK_CODE_TTL" envDefault:"300s"`
	LinkSweepInterval time.Duration `env:"LINK_SWEEP_INTERVAL" envDefault:"60s"`
	RewardBackend     string        `env:"REWARD_BACKEND" envDefault:"ledger"`
	GameAPIBaseURL    string        `env:"GAME_API_BASE_URL"`
	GameAPITimeout    time.Duration `env:"GAME_API_TIMEOUT" envDefault:"10s"`
	DatabaseURL       string        `env:"DATABASE_URL"`
	WebhookSecret     string        `env:"WEBHOOK_SECRET"`
	ListenPort        int           `env:"PORT" envDefault:"10000"`
}

func Load() (*internalconfig.Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:               raw.Env,
		DiscordToken:      raw.DiscordToken,
		DiscordGuildID:    raw.DiscordGuildID,
		VPChannelID:       raw.VPChannelID,
		GemsChannelID:     raw.GemsChannelID,
		VPAmount:          raw.VPAmount,
		VPInterval:        raw.VPInterval,
		GemsMultiplier:    raw.GemsMultiplier,
		GemsDuration:      raw.GemsDuration,
		GemsRefresh:       raw.GemsRefresh,
		LinkCodeTTL:       raw.LinkCodeTTL,
		LinkSweepInterval: raw.LinkSweepInterval,
		RewardBackend:     internalconfig.RewardBackend(raw.RewardBackend),
		GameAPIBaseURL:    raw.GameAPIBaseURL,
		GameAPITimeout:    raw.GameAPITimeout,
		DatabaseURL:       raw.DatabaseURL,
		WebhookSecret:     raw.WebhookSecret,
		ListenPort:        raw.ListenPort,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
