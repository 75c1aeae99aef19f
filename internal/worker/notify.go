package worker

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"phPortfolio/internal/tasks"
)

// notifier 把任务结果推送到 admin_notify，发布失败只记录日志。
type notifier struct {
	redis  redis.UniversalClient
	logger *slog.Logger
}

func (n notifier) publish(ctx context.Context, msg tasks.Notification) {
	if n.redis == nil {
		return
	}
	if err := tasks.Publish(ctx, n.redis, msg); err != nil {
		n.logger.Error("publish admin notification failed", slog.Any("error", err))
	}
}

func errorMessage(err error) string {
	return strings.TrimSpace(err.Error())
}

// shouldReportFailure 在最后一次重试或不可重试错误时为 true。
func shouldReportFailure(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, asynq.SkipRetry) {
		return true
	}
	return isFinalAsynqAttempt(ctx)
}

func isFinalAsynqAttempt(ctx context.Context) bool {
	retryCount, ok1 := asynq.GetRetryCount(ctx)
	maxRetry, ok2 := asynq.GetMaxRetry(ctx)
	if !ok1 || !ok2 {
		return false
	}
	return retryCount >= maxRetry
}
