package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	accountimpl "github.com/gtpscloud/rewardsbot/external/account"
	configloader "github.com/gtpscloud/rewardsbot/external/config"
	"github.com/gtpscloud/rewardsbot/external/discord"
	economyimpl "github.com/gtpscloud/rewardsbot/external/economy"
	webhookimpl "github.com/gtpscloud/rewardsbot/external/webhook"
	"github.com/gtpscloud/rewardsbot/internal/config"
	discordpkg "github.com/gtpscloud/rewardsbot/internal/discord"
	"github.com/gtpscloud/rewardsbot/internal/rewards"
	webhookpkg "github.com/gtpscloud/rewardsbot/internal/webhook"
	"github.com/joho/godotenv"
	"github.com/samber/do/v2"
)

const discordConnectTimeout = 20 * time.Second

func main() {
	// .env is a local-development convenience; in deployment everything comes
	// from real environment variables.
	_ = godotenv.Load()

	slog.Info("startup: loading configuration")
	cfg := mustLoadConfig()
	initLogger(cfg)
	slog.Info("startup: configuration loaded", "env", cfg.Env, "backend", cfg.RewardBackend)

	slog.Info("startup: building dependency graph")
	injector := setupDI(cfg)

	slog.Info("startup: launching discord bot")
	runBot(cfg, injector)
}

func mustLoadConfig() *config.Config {
	cfg, err := configloader.Load()
	if err != nil {
		slog.Error("config validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

func initLogger(cfg *config.Config) {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))
}

func setupDI(cfg *config.Config) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	accountimpl.RegisterDI(injector)
	discord.RegisterDI(injector)
	economyimpl.RegisterDI(injector)
	rewards.RegisterDI(injector)
	webhookimpl.RegisterDI(injector)

	return injector
}

func runBot(cfg *config.Config, injector do.Injector) {
	dc, err := do.Invoke[discordpkg.Client](injector)
	if err != nil {
		slog.Error("failed to resolve discord client", "error", err)
		os.Exit(1)
	}
	manager, err := do.Invoke[*rewards.Manager](injector)
	if err != nil {
		slog.Error("failed to resolve rewards manager", "error", err)
		os.Exit(1)
	}
	server, err := do.Invoke[webhookpkg.Server](injector)
	if err != nil {
		slog.Error("failed to resolve webhook server", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), discordConnectTimeout)
	defer cancel()

	slog.Info("startup: connecting to discord gateway")
	if err := dc.Connect(ctx); err != nil {
		slog.Error("discord connect failed", "error", err)
		os.Exit(1)
	}
	slog.Info("startup: discord connected")

	botUserID, err := dc.GetBotUserID()
	if err != nil {
		slog.Error("failed to resolve bot user id", "error", err)
		os.Exit(1)
	}
	manager.SetBotUserID(botUserID)

	if err := dc.UpsertGuildSlashCommands(cfg.DiscordGuildID, rewards.SlashCommandDefinitions()); err != nil {
		slog.Error("failed to upsert slash commands", "error", err, "guild_id", cfg.DiscordGuildID)
		os.Exit(1)
	}

	dc.RegisterVoiceStateUpdateHandler(manager.HandleVoiceStateUpdate)
	dc.RegisterSlashCommandHandler(manager.HandleSlashCommand)
	slog.Info("discord handlers registered", "guild_id", cfg.DiscordGuildID, "commands", []string{"verify", "profile", "rewards"})
	defer func() {
		if err := dc.Close(); err != nil {
			slog.Error("discord close failed", "error", err)
		}
	}()

	loopCtx, stopLoops := context.WithCancel(context.Background())
	defer stopLoops()
	go manager.Run(loopCtx)

	go func() {
		if err := server.Start(); err != nil {
			slog.Error("webhook server failed", "error", err)
		}
	}()

	done := make(chan struct{})
	go func() {
		slog.Info("startup: entering discord run loop")
		if err := dc.Run(); err != nil {
			slog.Error("discord run failed", "error", err)
		}
		close(done)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		slog.Info("shutting down")
	case <-done:
	}

	stopLoops()
	if err := server.Shutdown(context.Background()); err != nil {
		slog.Error("webhook server shutdown failed", "error", err)
	}
}
