package room

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"github.com/aikata-dev/aikata/pkg/logger"
)

// Janitor expires inactive rooms on a cron schedule.
type Janitor struct {
	registry *Registry
	expr     string
	gron     *gronx.Gronx
}

func NewJanitor(registry *Registry, cronExpr string) (*Janitor, error) {
	g := gronx.New()
	if !g.IsValid(cronExpr) {
		return nil, fmt.Errorf("invalid cleanup cron expression: %q", cronExpr)
	}
	return &Janitor{
		registry: registry,
		expr:     cronExpr,
		gron:     g,
	}, nil
}

// Start ticks once a minute and sweeps when the schedule is due. Blocks
// until ctx is cancelled.
func (j *Janitor) Start(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	logger.InfoCF("room.janitor", "janitor started", map[string]interface{}{"cron": j.expr})

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			due, err := j.gron.IsDue(j.expr, now)
			if err != nil {
				logger.WarnCF("room.janitor", "cron evaluation failed", map[string]interface{}{
					"cron":  j.expr,
					"error": err.Error(),
				})
				continue
			}
			if !due {
				continue
			}
			if n := j.registry.ExpireInactive(now); n > 0 {
				logger.InfoCF("room.janitor", "expired inactive rooms", map[string]interface{}{"count": n})
			}
		}
	}
}
