package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"phPortfolio/internal/errcode"
	"phPortfolio/internal/storage"
	"phPortfolio/internal/tasks"
)

const previewPresignTTL = 7 * 24 * time.Hour

// ProjectPreviewHandler 负责项目预览截图任务。
type ProjectPreviewHandler struct {
	storage         storage.ObjectStore
	snapshotter     Snapshotter
	notify          notifier
	logger          *slog.Logger
	frontendBaseURL string
}

func NewProjectPreviewHandler(
	store storage.ObjectStore,
	snapshotter Snapshotter,
	redisClient redis.UniversalClient,
	logger *slog.Logger,
	frontendBaseURL string,
) *ProjectPreviewHandler {
	return &ProjectPreviewHandler{
		storage:         store,
		snapshotter:     snapshotter,
		notify:          notifier{redis: redisClient, logger: logger},
		logger:          logger,
		frontendBaseURL: strings.TrimRight(strings.TrimSpace(frontendBaseURL), "/"),
	}
}

func (h *ProjectPreviewHandler) ProcessTask(ctx context.Context, t *asynq.Task) (retErr error) {
	var payload tasks.ProjectPreviewPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		h.logger.Error("unmarshal project preview payload failed", slog.Any("error", err))
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	log := h.logger.With(
		slog.String("project_id", payload.ProjectID),
		slog.String("correlation_id", payload.CorrelationID),
	)
	log.Info("Starting project preview generation task...")

	defer func() {
		if !shouldReportFailure(ctx, retErr) {
			return
		}
		h.notify.publish(ctx, tasks.Notification{
			Type:          tasks.NotifyPreview,
			Status:        "error",
			ProjectID:     payload.ProjectID,
			CorrelationID: payload.CorrelationID,
			ErrorCode:     errcode.SystemError,
			ErrorMessage:  errorMessage(retErr),
		})
	}()

	if h.frontendBaseURL == "" {
		return fmt.Errorf("%w: frontend base url missing", asynq.SkipRetry)
	}

	targetURL := fmt.Sprintf("%s/preview/projects/%s", h.frontendBaseURL, url.PathEscape(payload.ProjectID))
	previewBytes, err := h.snapshotter.Capture(ctx, targetURL)
	if err != nil {
		log.Error("capture project preview failed", slog.Any("error", err))
		return err
	}

	objectName := storage.ProjectThumbnailKey(payload.ProjectID)
	if err := h.storage.UploadFile(ctx, objectName, bytes.NewReader(previewBytes), int64(len(previewBytes)), "image/jpeg"); err != nil {
		log.Error("upload project preview failed", slog.Any("error", err))
		return err
	}

	presigned, err := h.storage.GeneratePresignedURL(ctx, objectName, previewPresignTTL)
	if err != nil {
		log.Error("generate project preview url failed", slog.Any("error", err))
		return err
	}

	h.notify.publish(ctx, tasks.Notification{
		Type:          tasks.NotifyPreview,
		Status:        "completed",
		ProjectID:     payload.ProjectID,
		URL:           presigned,
		CorrelationID: payload.CorrelationID,
		ErrorCode:     errcode.OK,
	})

	log.Info("Project preview generation completed.")
	return nil
}
