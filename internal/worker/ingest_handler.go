package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"phPortfolio/internal/errcode"
	"phPortfolio/internal/metrics"
	"phPortfolio/internal/storage"
	"phPortfolio/internal/tasks"
)

// 图片入库结果状态。
const (
	ingestApplied = "applied"
	ingestSkipped = "skipped"
	ingestFailed  = "error"
)

// ImageIngestHandler 负责消费图片入库任务：读取上传对象，解析尺寸，写回目标字段。
type ImageIngestHandler struct {
	storage storage.ObjectStore
	notify  notifier
	logger  *slog.Logger
	client  *applyClient
}

// NewImageIngestHandler 创建任务处理器。
func NewImageIngestHandler(
	store storage.ObjectStore,
	redisClient redis.UniversalClient,
	logger *slog.Logger,
	internalSecret string,
	internalAPIBaseURL string,
) *ImageIngestHandler {
	return &ImageIngestHandler{
		storage: store,
		notify:  notifier{redis: redisClient, logger: logger},
		logger:  logger,
		client:  newApplyClient(internalAPIBaseURL, internalSecret),
	}
}

// ProcessTask 实现 asynq.Handler。
func (h *ImageIngestHandler) ProcessTask(ctx context.Context, t *asynq.Task) (retErr error) {
	var payload tasks.ImageIngestPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		h.logger.Error("unmarshal task payload failed", slog.Any("error", err))
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	log := h.logger.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.String("object_key", payload.ObjectKey),
		slog.String("field", string(payload.Target.Field)),
	)
	log.Info("Starting image ingestion task...")

	target := payload.Target
	defer func() {
		if !shouldReportFailure(ctx, retErr) {
			return
		}
		code := errcode.SystemError
		if errors.Is(retErr, asynq.SkipRetry) {
			code = errcode.Parse
		}
		metrics.RecordImageIngestion(string(target.Field), ingestFailed)
		h.notify.publish(ctx, tasks.Notification{
			Type:          tasks.NotifyImage,
			Status:        ingestFailed,
			Target:        &target,
			CorrelationID: payload.CorrelationID,
			ErrorCode:     code,
			ErrorMessage:  errorMessage(retErr),
		})
		h.removeUpload(ctx, log, payload.ObjectKey)
	}()

	if err := target.Validate(); err != nil {
		log.Error("invalid image target", slog.Any("error", err))
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	data, err := h.readUpload(ctx, payload.ObjectKey)
	if err != nil {
		if storage.IsNoSuchKey(err) {
			log.Warn("upload object missing, skipping task")
			return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
		}
		log.Error("read upload object failed", slog.Any("error", err))
		return err
	}

	result, err := decodeImage(data)
	if err != nil {
		log.Warn("decode image failed", slog.Any("error", err))
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	applied, err := h.client.apply(ctx, tasks.ImageApplyRequest{Target: target, Result: result}, payload.CorrelationID)
	if err != nil {
		log.Error("apply image failed", slog.Any("error", err))
		return err
	}

	status := ingestApplied
	code := errcode.OK
	if !applied {
		// 目标在上传期间被删除，写回被跳过
		status = ingestSkipped
		code = errcode.LookupMiss
		log.Warn("image target no longer exists")
	}
	metrics.RecordImageIngestion(string(target.Field), status)
	h.notify.publish(ctx, tasks.Notification{
		Type:          tasks.NotifyImage,
		Status:        status,
		Target:        &target,
		CorrelationID: payload.CorrelationID,
		ErrorCode:     code,
	})
	h.removeUpload(ctx, log, payload.ObjectKey)

	log.Info("Image ingestion task completed.",
		slog.Int("width", result.Width),
		slog.Int("height", result.Height),
	)
	return nil
}

func (h *ImageIngestHandler) readUpload(ctx context.Context, key string) ([]byte, error) {
	obj, err := h.storage.OpenObject(ctx, key)
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	data, err := io.ReadAll(io.LimitReader(obj, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read object %q: %w", key, err)
	}
	return data, nil
}

func (h *ImageIngestHandler) removeUpload(ctx context.Context, log *slog.Logger, key string) {
	if err := h.storage.DeleteObject(ctx, key); err != nil {
		log.Warn("delete upload object failed", slog.Any("error", err))
	}
}
