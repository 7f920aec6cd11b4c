package webhook

import (
	"fmt"

	"github.com/gtpscloud/rewardsbot/internal/account"
	"github.com/gtpscloud/rewardsbot/internal/config"
	"github.com/gtpscloud/rewardsbot/internal/rewards"
	webhookpkg "github.com/gtpscloud/rewardsbot/internal/webhook"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (webhookpkg.Server, error) {
		cfg := do.MustInvoke[*config.Config](i)
		store := do.MustInvoke[account.Store](i)
		manager := do.MustInvoke[*rewards.Manager](i)
		addr := fmt.Sprintf(":%d", cfg.ListenPort)
		return NewHTTPServer(addr, cfg.WebhookSecret, cfg.GemsMultiplier, store, manager), nil
	})
}
