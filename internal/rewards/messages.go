package rewards

import (
	"fmt"

	"github.com/gtpscloud/rewardsbot/internal/config"
	"github.com/gtpscloud/rewardsbot/internal/economy"
)

const (
	messageWrongGuild     = ":warning: **This command cannot be used in this server.**"
	messageUnknownCommand = ":warning: **Unknown command.**"

	messageVerifyMissingCode   = ":warning: **Please provide the code from `/link` in-game.**"
	messageVerifyInvalidCode   = ":x: **Invalid or expired code.**\nUse `/link` in-game to get a fresh one."
	messageVerifyUserLinked    = ":x: **Your Discord account is already linked to a GrowID.**"
	messageVerifyAccountLinked = ":x: **That GrowID is already linked to another Discord account.**"
	messageVerifyFailed        = ":x: **Linking failed. Please try again later.**"

	messageProfileNotLinked = ":x: **Not linked!** Use `/link` in-game, then `/verify` here."
	messageProfileFailed    = ":x: **Could not load your profile. Please try again later.**"
)

func verifiedMessage(growID string, cfg *config.Config) string {
	return fmt.Sprintf(":white_check_mark: **Linked!**\nGrowID: `%s`\n\nRewards:\nVP channel: <#%s>\nGems channel: <#%s>",
		growID, cfg.VPChannelID, cfg.GemsChannelID)
}

func profileMessage(acct *economy.Account) string {
	return fmt.Sprintf(":video_game: **Profile**\nGrowID: `%s`\nTotal VP: **%d**", acct.GrowID, acct.TotalVP)
}

func rewardsInfoMessage(cfg *config.Config) string {
	return fmt.Sprintf(":gift: **Rewards**\n:moneybag: VP: <#%s> — +%d VP every %.0f minutes\n:gem: Gems: <#%s> — %.2fx boost while you stay",
		cfg.VPChannelID, cfg.VPAmount, cfg.VPInterval.Minutes(), cfg.GemsChannelID, cfg.GemsMultiplier)
}

func vpGrantedMessage(amount, total int64) string {
	return fmt.Sprintf(":moneybag: **+%d VP!** Total: %d VP", amount, total)
}

func boostActivatedMessage(cfg *config.Config) string {
	if cfg.RewardBackend == config.RewardBackendRemote {
		return fmt.Sprintf(":gem: **%.2fx Gems Boost Activated!**\nDuration: %.0f minutes", cfg.GemsMultiplier, cfg.GemsDuration.Minutes())
	}
	return fmt.Sprintf(":gem: **%.2fx Gems Boost Activated!**\nActive while you stay in the channel.", cfg.GemsMultiplier)
}
