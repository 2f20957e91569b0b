package executor

import (
	"context"
	"time"

	"github.com/devicelab-dev/agent-runner/pkg/core"
	"github.com/devicelab-dev/agent-runner/pkg/logger"
)

// keepAlive probes the session on a fixed interval until ctx is cancelled.
// Oracle calls can outlast backend idle timeouts, so the session needs
// traffic while the loop is thinking. Probe failures are logged and
// tolerated; the next real action surfaces a dead session properly.
func keepAlive(ctx context.Context, session core.Session, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := session.Ping(); err != nil {
				logger.Debug("keep-alive probe failed: %v", err)
			}
		}
	}
}
