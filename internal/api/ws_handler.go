package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"phPortfolio/internal/auth"
	"phPortfolio/internal/tasks"
)

const (
	wsAuthTimeout    = 10 * time.Second
	wsSessionRecheck = 30 * time.Second
	wsWriteWait      = 5 * time.Second
)

var wsReadyMessage = []byte(`{"type":"ready"}`)

// WsHandler 是后台实时通道：首条消息携带会话令牌，之后转发 admin_notify 上的消息。
type WsHandler struct {
	redisClient redis.UniversalClient
	sessions    *auth.Sessions
	logger      *slog.Logger
	upgrader    websocket.Upgrader
}

func NewWsHandler(redisClient redis.UniversalClient, sessions *auth.Sessions, logger *slog.Logger, allowedOrigins []string) *WsHandler {
	return &WsHandler{
		redisClient: redisClient,
		sessions:    sessions,
		logger:      logger,
		upgrader:    websocket.Upgrader{CheckOrigin: originChecker(allowedOrigins)},
	}
}

// originChecker 未配置来源时只接受同源请求；没有 Origin 头的非浏览器客户端放行。
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if len(allowed) == 0 {
			u, err := url.Parse(origin)
			return err == nil && strings.EqualFold(u.Host, r.Host)
		}
		for _, o := range allowed {
			if origin == o {
				return true
			}
		}
		return false
	}
}

type wsAuthMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// HandleConnection 完成鉴权与订阅后进入转发循环，直到客户端断开或会话失效。
func (h *WsHandler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("upgrade websocket failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	log := h.logger.With(slog.String("client_ip", c.ClientIP()))

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	token, claims, err := h.authenticate(ctx, conn)
	if err != nil {
		log.Warn("websocket authentication failed", slog.Any("error", err))
		return
	}
	log = log.With(slog.String("admin", claims.Username))

	pubsub := h.redisClient.Subscribe(ctx, tasks.NotifyChannel)
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		log.Error("subscribe notify channel failed", slog.Any("error", err))
		writeClose(conn, websocket.CloseInternalServerErr, "subscribe failed")
		return
	}

	// 订阅确认后再告知客户端，之后的变更都不会漏掉
	if err := writeText(conn, wsReadyMessage); err != nil {
		log.Info("write ready failed", slog.Any("error", err))
		return
	}
	log.Info("websocket ready", slog.String("channel", tasks.NotifyChannel))

	go drainClient(conn, cancel)

	err = h.forward(ctx, conn, pubsub.Channel(), token)
	switch {
	case err == nil:
		log.Info("websocket connection closed")
	case errors.Is(err, auth.ErrNotAuthenticated):
		log.Info("websocket session ended")
		writeClose(conn, websocket.ClosePolicyViolation, "session closed")
	default:
		log.Info("websocket connection closed", slog.Any("error", err))
	}
}

// authenticate 读取首条消息并校验会话，超时或失败时以 1008 关闭。
func (h *WsHandler) authenticate(ctx context.Context, conn *websocket.Conn) (string, *auth.SessionClaims, error) {
	_ = conn.SetReadDeadline(time.Now().Add(wsAuthTimeout))
	defer conn.SetReadDeadline(time.Time{})

	_, message, err := conn.ReadMessage()
	if err != nil {
		return "", nil, fmt.Errorf("read auth message: %w", err)
	}

	var msg wsAuthMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		writeClose(conn, websocket.ClosePolicyViolation, "invalid auth payload")
		return "", nil, fmt.Errorf("decode auth payload: %w", err)
	}
	if msg.Type != "auth" || msg.Token == "" {
		writeClose(conn, websocket.ClosePolicyViolation, "auth required")
		return "", nil, errors.New("first message is not an auth message")
	}

	claims, err := h.sessions.Validate(ctx, msg.Token)
	if err != nil {
		writeClose(conn, websocket.ClosePolicyViolation, "unauthorized")
		return "", nil, fmt.Errorf("validate session: %w", err)
	}
	return msg.Token, claims, nil
}

// forward 是连接上唯一的写者；定期确认会话仍然有效。
func (h *WsHandler) forward(ctx context.Context, conn *websocket.Conn, ch <-chan *redis.Message, token string) error {
	ticker := time.NewTicker(wsSessionRecheck)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return errors.New("notify channel closed")
			}
			if err := writeText(conn, []byte(msg.Payload)); err != nil {
				return fmt.Errorf("write message: %w", err)
			}
		case <-ticker.C:
			if _, err := h.sessions.Validate(ctx, token); err != nil {
				if errors.Is(err, auth.ErrNotAuthenticated) {
					return err
				}
				h.logger.Warn("websocket session recheck failed", slog.Any("error", err))
			}
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return fmt.Errorf("write ping: %w", err)
			}
		}
	}
}

// drainClient 丢弃客户端消息，读失败即视为断开。
func drainClient(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writeText(conn *websocket.Conn, data []byte) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}

func writeClose(conn *websocket.Conn, code int, text string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(wsWriteWait))
}
