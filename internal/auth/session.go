package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "admin:session:"
	// sessionFlag 是唯一被视为“已登录”的值。
	sessionFlag = "true"
)

// ErrNotAuthenticated 表示令牌无效或会话已关闭。
var ErrNotAuthenticated = errors.New("not authenticated")

// SessionClaims 中 ID 即会话 id。
type SessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Session 是登录成功后返回给客户端的令牌。
type Session struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Sessions 管理后台会话：Redis 中保存会话标记，客户端持有 HS256 令牌。
type Sessions struct {
	redis  redis.UniversalClient
	secret []byte
	ttl    time.Duration
}

func NewSessions(client redis.UniversalClient, secret string, ttl time.Duration) (*Sessions, error) {
	if secret == "" {
		return nil, errors.New("session secret is required")
	}
	if ttl <= 0 {
		return nil, errors.New("session ttl must be positive")
	}
	return &Sessions{redis: client, secret: []byte(secret), ttl: ttl}, nil
}

// Open 记录一个新会话并签发令牌。
func (s *Sessions) Open(ctx context.Context, username string) (Session, error) {
	now := time.Now()
	expires := now.Add(s.ttl)
	sid := uuid.NewString()

	claims := SessionClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sid,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Session{}, fmt.Errorf("sign session token: %w", err)
	}

	if err := s.redis.Set(ctx, sessionKeyPrefix+sid, sessionFlag, s.ttl).Err(); err != nil {
		return Session{}, fmt.Errorf("store session: %w", err)
	}
	return Session{Token: signed, Username: username, ExpiresAt: expires}, nil
}

// Validate 解析令牌并确认会话标记仍为 "true"。
func (s *Sessions) Validate(ctx context.Context, token string) (*SessionClaims, error) {
	claims, err := s.parse(token)
	if err != nil {
		return nil, err
	}
	val, err := s.redis.Get(ctx, sessionKeyPrefix+claims.ID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotAuthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("lookup session: %w", err)
	}
	if val != sessionFlag {
		return nil, ErrNotAuthenticated
	}
	return claims, nil
}

// Authenticated 仅在会话有效时返回 true。
func (s *Sessions) Authenticated(ctx context.Context, token string) bool {
	_, err := s.Validate(ctx, token)
	return err == nil
}

// Close 删除会话标记；重复调用不报错。
func (s *Sessions) Close(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return err
	}
	if err := s.redis.Del(ctx, sessionKeyPrefix+claims.ID).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *Sessions) TTL() time.Duration {
	return s.ttl
}

func (s *Sessions) parse(token string) (*SessionClaims, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	parsed, err := jwt.ParseWithClaims(token, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}
	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid || claims.ID == "" {
		return nil, ErrNotAuthenticated
	}
	return claims, nil
}
