package bot

import (
	"context"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// DirectSender delivers a private message to a single user.
type DirectSender interface {
	SendDirect(ctx context.Context, user, message string) error
}

// AdminNotifier fans a notice out to every configured admin over the direct
// message channel. Delivery is best-effort: a failed send is logged, not
// retried, and never blocks the command that raised the notice for long.
type AdminNotifier struct {
	sender      DirectSender
	admins      []string
	sendTimeout time.Duration
	concurrency int
	logger      *zap.Logger
}

func NewAdminNotifier(sender DirectSender, admins []string, logger *zap.Logger) *AdminNotifier {
	return &AdminNotifier{
		sender:      sender,
		admins:      admins,
		sendTimeout: 10 * time.Second,
		concurrency: 4,
		logger:      logger,
	}
}

func (n *AdminNotifier) Notify(message string) {
	if len(n.admins) == 0 {
		n.logger.Warn("Admin notice dropped, no admins configured",
			zap.String("message", message),
		)
		return
	}

	p := pool.New().WithMaxGoroutines(n.concurrency)
	for _, admin := range n.admins {
		admin := admin
		p.Go(func() {
			ctx, cancel := context.WithTimeout(context.Background(), n.sendTimeout)
			defer cancel()

			if err := n.sender.SendDirect(ctx, admin, message); err != nil {
				n.logger.Error("Failed to notify admin",
					zap.String("admin", admin),
					zap.Error(err),
				)
			}
		})
	}
	p.Wait()
}
