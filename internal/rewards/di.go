package rewards

import (
	"github.com/gtpscloud/rewardsbot/internal/account"
	"github.com/gtpscloud/rewardsbot/internal/config"
	"github.com/gtpscloud/rewardsbot/internal/discord"
	"github.com/gtpscloud/rewardsbot/internal/economy"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Manager, error) {
		cfg := do.MustInvoke[*config.Config](i)
		store := do.MustInvoke[account.Store](i)
		dc := do.MustInvoke[discord.Client](i)
		eco := do.MustInvoke[economy.Service](i)
		return NewManager(cfg, store, dc, eco), nil
	})
}
