package api

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"phPortfolio/internal/api/middleware"
	"phPortfolio/internal/metrics"
	"phPortfolio/internal/store"
	"phPortfolio/internal/tasks"
)

// ChangeNotifier 把每次已提交的变更发布到 admin_notify，供预览窗口实时刷新。
func ChangeNotifier(client redis.UniversalClient, logger *slog.Logger) store.Hook {
	return func(ctx context.Context, ch store.Change) {
		err := tasks.Publish(ctx, client, tasks.Notification{
			Type:          tasks.NotifyChange,
			Status:        "committed",
			Kind:          string(ch.Kind),
			Section:       ch.Section,
			CorrelationID: middleware.CorrelationIDFromContext(ctx),
		})
		if err != nil {
			logger.Warn("publish change notification failed", slog.Any("error", err))
		}
	}
}

// ChangeMetrics 统计已提交的变更。
func ChangeMetrics(_ context.Context, ch store.Change) {
	metrics.RecordChange(string(ch.Kind), ch.Section)
}
