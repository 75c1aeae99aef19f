package auth

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type rateCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

func incrWithTTL(ctx context.Context, client rateCounter, key string, ttl time.Duration) (int64, error) {
	count, err := client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		_ = client.Expire(ctx, key, ttl).Err()
	}
	return count, nil
}

// LoginLimiter 按 IP+用户名 每小时计数登录尝试。limit<=0 表示不限制。
type LoginLimiter struct {
	redis rateCounter
	limit int
	now   func() time.Time
}

func NewLoginLimiter(client rateCounter, limitPerHour int) *LoginLimiter {
	return &LoginLimiter{redis: client, limit: limitPerHour, now: time.Now}
}

// Allow 记录一次尝试。Redis 不可用时放行。
func (l *LoginLimiter) Allow(ctx context.Context, ip, username string) bool {
	if l.limit <= 0 {
		return true
	}
	key := "rate:login:" + ip + ":" + strings.ToLower(username) + ":" + l.now().UTC().Format("2006010215")
	count, err := incrWithTTL(ctx, l.redis, key, time.Hour)
	if err != nil {
		return true
	}
	return count <= int64(l.limit)
}
