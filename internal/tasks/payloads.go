package tasks

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/hibiken/asynq"

	"phPortfolio/internal/portfolio"
)

// 任务类型常量，确保队列生产者与消费者一致。
const (
	TypeImageIngest    = "image:ingest"
	TypeProjectPreview = "project:preview"
)

// ImageIngestPayload 指向一份已上传的原始图片及其唯一的目标字段。
type ImageIngestPayload struct {
	ObjectKey     string                `json:"object_key"`
	ContentType   string                `json:"content_type"`
	Target        portfolio.ImageTarget `json:"target"`
	CorrelationID string                `json:"correlation_id"`
}

// NewImageIngestTask 构造图片入库任务。
func NewImageIngestTask(p ImageIngestPayload) (*asynq.Task, error) {
	if p.ObjectKey == "" {
		return nil, errors.New("object key is required")
	}
	if err := p.Target.Validate(); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeImageIngest, payload, asynq.MaxRetry(3), asynq.Timeout(time.Minute)), nil
}

// ProjectPreviewPayload 请求为一个项目生成预览截图。
type ProjectPreviewPayload struct {
	ProjectID     string `json:"project_id"`
	CorrelationID string `json:"correlation_id"`
}

// NewProjectPreviewTask 构造项目预览截图任务。
func NewProjectPreviewTask(projectID, correlationID string) (*asynq.Task, error) {
	if projectID == "" {
		return nil, errors.New("project id is required")
	}
	payload, err := json.Marshal(ProjectPreviewPayload{
		ProjectID:     projectID,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeProjectPreview, payload, asynq.MaxRetry(2), asynq.Timeout(2*time.Minute)), nil
}
