package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/dutchcoders/go-clamd"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"phPortfolio/internal/api/middleware"
	"phPortfolio/internal/layout"
	"phPortfolio/internal/portfolio"
	"phPortfolio/internal/storage"
	"phPortfolio/internal/store"
	"phPortfolio/internal/tasks"
)

const maxUploadBytes = 8 << 20

var errMalicious = errors.New("malicious file detected")

// imageExtensions 以嗅探出的类型决定对象后缀，不信任客户端文件名。
var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Scanner 在写入对象存储前检查上传内容。
type Scanner interface {
	Scan(r io.Reader) error
}

// ClamdScanner 通过 clamd 的 INSTREAM 扫描。
type ClamdScanner struct {
	client *clamd.Clamd
}

func NewClamdScanner(addr string) *ClamdScanner {
	return &ClamdScanner{client: clamd.NewClamd(addr)}
}

func (s *ClamdScanner) Scan(r io.Reader) error {
	abortChan := make(chan bool)
	defer close(abortChan)
	scanChan, err := s.client.ScanStream(r, abortChan)
	if err != nil {
		return fmt.Errorf("scan file: %w", err)
	}
	for result := range scanChan {
		if result.Status != clamd.RES_OK {
			return errMalicious
		}
	}
	return nil
}

// UploadHandler 接收图片并交给 Worker 异步入库。
type UploadHandler struct {
	store   *store.Service
	storage storage.ObjectStore
	tasks   TaskEnqueuer
	scanner Scanner
}

// NewUploadHandler 中 scanner 可为 nil，表示不做扫描。
func NewUploadHandler(s *store.Service, objects storage.ObjectStore, enqueuer TaskEnqueuer, scanner Scanner) *UploadHandler {
	return &UploadHandler{store: s, storage: objects, tasks: enqueuer, scanner: scanner}
}

// Upload 处理 multipart 上传：file 为图片，field/projectId/elementId 指定唯一的写回目标。
func (h *UploadHandler) Upload(c *gin.Context) {
	target := portfolio.ImageTarget{
		Field:     portfolio.ImageField(c.PostForm("field")),
		ProjectID: c.PostForm("projectId"),
		ElementID: c.PostForm("elementId"),
	}
	if err := target.Validate(); err != nil {
		RespondError(c, err)
		return
	}
	if err := h.checkTarget(target); err != nil {
		RespondError(c, err)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "missing file")
		return
	}
	if file.Size <= 0 || file.Size > maxUploadBytes {
		BadRequest(c, "file size out of range")
		return
	}

	reader, err := file.Open()
	if err != nil {
		Internal(c, "failed to open file")
		return
	}
	data, err := io.ReadAll(io.LimitReader(reader, maxUploadBytes+1))
	reader.Close()
	if err != nil {
		Internal(c, "failed to read file")
		return
	}

	contentType := http.DetectContentType(data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		BadRequest(c, "unsupported image type")
		return
	}

	log := middleware.LoggerFromContext(c).With(slog.String("field", string(target.Field)))
	if h.scanner != nil {
		if err := h.scanner.Scan(bytes.NewReader(data)); err != nil {
			if errors.Is(err, errMalicious) {
				BadRequest(c, errMalicious.Error())
				return
			}
			log.Error("scan upload failed", slog.Any("error", err))
			Internal(c, "failed to scan file")
			return
		}
	}

	ctx := c.Request.Context()
	objectKey := storage.UploadKey(uuid.NewString(), ext)
	if err := h.storage.UploadFile(ctx, objectKey, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		log.Error("upload file failed", slog.Any("error", err))
		Internal(c, "failed to upload file")
		return
	}

	task, err := tasks.NewImageIngestTask(tasks.ImageIngestPayload{
		ObjectKey:     objectKey,
		ContentType:   contentType,
		Target:        target,
		CorrelationID: middleware.GetCorrelationID(c),
	})
	if err != nil {
		h.discard(c, log, objectKey, err)
		return
	}
	info, err := h.tasks.EnqueueContext(ctx, task)
	if err != nil {
		h.discard(c, log, objectKey, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"task_id":    info.ID,
		"object_key": objectKey,
		"target":     target,
	})
}

func (h *UploadHandler) discard(c *gin.Context, log *slog.Logger, objectKey string, err error) {
	log.Error("enqueue image ingest failed", slog.Any("error", err))
	if delErr := h.storage.DeleteObject(c.Request.Context(), objectKey); delErr != nil {
		log.Warn("cleanup upload object failed", slog.Any("error", delErr))
	}
	Internal(c, "failed to enqueue image task")
}

// checkTarget 在上传时确认目标仍存在，避免无谓的入库任务。
func (h *UploadHandler) checkTarget(t portfolio.ImageTarget) error {
	if t.ProjectID == "" {
		return nil
	}
	content := h.store.Content()
	p, _ := content.FindProject(t.ProjectID)
	if p == nil {
		return fmt.Errorf("%w: project %s", portfolio.ErrNotFound, t.ProjectID)
	}
	if t.Field != portfolio.ImageElementSrc {
		return nil
	}
	el, ok := layout.Find(p.Elements, t.ElementID)
	if !ok {
		return fmt.Errorf("%w: element %s", portfolio.ErrNotFound, t.ElementID)
	}
	if el.Type != layout.TypeImage {
		return fmt.Errorf("%w: element %s is not an image", portfolio.ErrValidation, t.ElementID)
	}
	return nil
}
