package rewards

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gtpscloud/rewardsbot/internal/account"
	"github.com/gtpscloud/rewardsbot/internal/discord"
)

const (
	commandVerify  = "verify"
	commandProfile = "profile"
	commandRewards = "rewards"
)

func SlashCommandDefinitions() []discord.SlashCommandDefinition {
	return []discord.SlashCommandDefinition{
		{
			Name:        commandVerify,
			Description: "Link your Growtopia account with the code from /link in-game",
			Options: []discord.SlashCommandOption{
				{Name: "code", Description: "The 6-digit code shown in-game", Required: true},
			},
		},
		{
			Name:        commandProfile,
			Description: "Show your linked GrowID and VP balance",
		},
		{
			Name:        commandRewards,
			Description: "Show how to earn VP and gems boosts",
		},
	}
}

func (m *Manager) HandleSlashCommand(event discord.SlashCommandEvent) {
	if event.GuildID != m.cfg.DiscordGuildID {
		m.respond(event, messageWrongGuild)
		return
	}
	ctx := context.Background()
	switch event.CommandName {
	case commandVerify:
		m.handleVerify(ctx, event)
	case commandProfile:
		m.handleProfile(ctx, event)
	case commandRewards:
		m.respond(event, rewardsInfoMessage(m.cfg))
	default:
		m.respond(event, messageUnknownCommand)
	}
}

func (m *Manager) handleVerify(ctx context.Context, event discord.SlashCommandEvent) {
	code := strings.ToUpper(strings.TrimSpace(event.Options["code"]))
	if code == "" {
		m.respond(event, messageVerifyMissingCode)
		return
	}
	growID, err := m.store.ConsumeCode(ctx, code, event.UserID)
	switch {
	case err == nil:
		slog.Info("account linked", "user_id", event.UserID, "grow_id", growID)
		m.respond(event, verifiedMessage(growID, m.cfg))
	case errors.Is(err, account.ErrInvalidOrExpiredCode):
		m.respond(event, messageVerifyInvalidCode)
	case errors.Is(err, account.ErrUserAlreadyLinked):
		m.respond(event, messageVerifyUserLinked)
	case errors.Is(err, account.ErrAccountAlreadyLinked):
		m.respond(event, messageVerifyAccountLinked)
	default:
		slog.Error("failed to consume link code", "error", err, "user_id", event.UserID)
		m.respond(event, messageVerifyFailed)
	}
}

func (m *Manager) handleProfile(ctx context.Context, event discord.SlashCommandEvent) {
	growID, err := m.store.GrowIDByDiscordUser(ctx, event.UserID)
	if err != nil {
		slog.Error("failed to resolve linked account for profile", "error", err, "user_id", event.UserID)
		m.respond(event, messageProfileFailed)
		return
	}
	if growID == "" {
		m.respond(event, messageProfileNotLinked)
		return
	}
	acct, err := m.economy.LookupAccount(ctx, growID)
	if err != nil {
		slog.Error("failed to look up account", "error", err, "user_id", event.UserID, "grow_id", growID)
		m.respond(event, messageProfileFailed)
		return
	}
	m.respond(event, profileMessage(acct))
}

func (m *Manager) respond(event discord.SlashCommandEvent, content string) {
	if err := event.RespondEphemeral(content); err != nil {
		slog.Error("failed to respond to slash command", "error", err, "command", event.CommandName, "user_id", event.UserID)
	}
}
