package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"phPortfolio/internal/portfolio"
)

// NotifyChannel 是后台实时通道，API 的 WebSocket 订阅后原样转发。
const NotifyChannel = "admin_notify"

// 通知类型。
const (
	NotifyChange  = "change"
	NotifyImage   = "image"
	NotifyPreview = "preview"
)

// Notification 是 admin_notify 上的统一消息，字段名与前端解析保持一致。
type Notification struct {
	Type          string                 `json:"type"`
	Status        string                 `json:"status"`
	Kind          string                 `json:"kind,omitempty"`
	Section       string                 `json:"section,omitempty"`
	Target        *portfolio.ImageTarget `json:"target,omitempty"`
	ProjectID     string                 `json:"project_id,omitempty"`
	URL           string                 `json:"url,omitempty"`
	CorrelationID string                 `json:"correlation_id,omitempty"`
	ErrorCode     int                    `json:"error_code"`
	ErrorMessage  string                 `json:"error_message,omitempty"`
}

// Publish 序列化并发布一条通知。
func Publish(ctx context.Context, client redis.UniversalClient, n Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}
	if err := client.Publish(ctx, NotifyChannel, data).Err(); err != nil {
		return fmt.Errorf("publish redis notification to %q: %w", NotifyChannel, err)
	}
	return nil
}

// ImageApplyRequest 是 Worker 调用内部写回接口的请求体。
type ImageApplyRequest struct {
	Target portfolio.ImageTarget `json:"target"`
	Result portfolio.ImageResult `json:"result"`
}

// ImageApplyResponse 中 Applied=false 表示目标已不存在，写回被跳过。
type ImageApplyResponse struct {
	Applied bool `json:"applied"`
}
