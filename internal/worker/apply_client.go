package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"phPortfolio/internal/tasks"
)

const imageApplyPath = "/v1/internal/images/apply"

// applyClient 调用后端内部写回接口。
// 只允许 Worker 通过 Header 携带 INTERNAL_API_SECRET 访问。
type applyClient struct {
	baseURL string
	secret  string
	http    *http.Client
}

func newApplyClient(baseURL, secret string) *applyClient {
	return &applyClient{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		secret:  strings.TrimSpace(secret),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// apply 把一张图片写回唯一的目标字段；目标已删除时返回 false。
func (c *applyClient) apply(ctx context.Context, req tasks.ImageApplyRequest, correlationID string) (bool, error) {
	if c.secret == "" {
		return false, fmt.Errorf("internal api secret missing")
	}
	if c.baseURL == "" {
		return false, fmt.Errorf("internal api base url missing")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return false, fmt.Errorf("marshal apply request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+imageApplyPath, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("build internal request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Internal-Secret", c.secret)
	if correlationID != "" {
		httpReq.Header.Set("X-Correlation-ID", correlationID)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return false, fmt.Errorf("request internal image apply: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 8*1024))
		return false, fmt.Errorf("internal image apply status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out tasks.ImageApplyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("decode internal image apply response: %w", err)
	}
	return out.Applied, nil
}
