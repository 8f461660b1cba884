package core

import (
	"context"

	"go.uber.org/zap"

	"github.com/civicsafe/civic-case-api/models"
)

// emit hands a notification to the sink after a successful commit. Dispatch is
// best-effort and at-most-once; failures are logged and never surfaced as the
// calling operation's error.
func emit(ctx context.Context, notifier Notifier, clock Clock, ids IDProvider, n models.Notification) {
	if notifier == nil || n.Recipient == "" {
		return
	}
	n.ID = ids.NewID()
	n.CreatedAt = clock.Now()
	if err := notifier.Notify(ctx, n); err != nil {
		zap.S().Errorw("failed to dispatch notification",
			"type", n.Type,
			"recipient", n.Recipient,
			"error", err,
		)
	}
}
