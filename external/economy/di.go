package economy

import (
	"github.com/gtpscloud/rewardsbot/internal/account"
	"github.com/gtpscloud/rewardsbot/internal/config"
	economypkg "github.com/gtpscloud/rewardsbot/internal/economy"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (economypkg.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if cfg.RewardBackend == config.RewardBackendRemote {
			return NewRemoteService(cfg.GameAPIBaseURL, cfg.GameAPITimeout), nil
		}
		store := do.MustInvoke[account.Store](i)
		return NewLedgerService(store), nil
	})
}
