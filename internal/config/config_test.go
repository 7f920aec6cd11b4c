package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Env:               "development",
		DiscordToken:      "token",
		DiscordGuildID:    "guild",
		VPChannelID:       "vc-vp",
		GemsChannelID:     "vc-gems",
		VPAmount:          10,
		VPInterval:        5 * time.Minute,
		GemsMultiplier:    1.05,
		GemsDuration:      time.Hour,
		GemsRefresh:       time.Minute,
		LinkCodeTTL:       5 * time.Minute,
		LinkSweepInterval: time.Minute,
		RewardBackend:     RewardBackendLedger,
		ListenPort:        10000,
	}
}

func TestValidate_Valid(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidate_MissingRequired(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when required fields are missing")
	}
}

func TestValidate_SameChannels(t *testing.T) {
	cfg := validConfig()
	cfg.GemsChannelID = cfg.VPChannelID
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when both channels are the same")
	}
}

func TestValidate_RejectsDebugInterval(t *testing.T) {
	cfg := validConfig()
	cfg.VPInterval = 5 * time.Second
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for sub-minute VP interval")
	}
}

func TestValidate_MultiplierMustExceedOne(t *testing.T) {
	cfg := validConfig()
	cfg.GemsMultiplier = 1.0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for multiplier of 1")
	}
}

func TestValidate_RemoteBackendNeedsBaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.RewardBackend = RewardBackendRemote
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when remote backend has no base url")
	}

	cfg.GameAPIBaseURL = "https://api.example.com/g-api/1782"
	cfg.GameAPITimeout = 10 * time.Second
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidate_UnknownBackend(t *testing.T) {
	cfg := validConfig()
	cfg.RewardBackend = "filesystem"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestIsDevelopment(t *testing.T) {
	cfg := &Config{Env: "development"}
	if !cfg.IsDevelopment() {
		t.Fatal("expected development mode")
	}
	cfg.Env = "production"
	if cfg.IsDevelopment() {
		t.Fatal("expected non-development mode")
	}
}
