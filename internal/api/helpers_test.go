package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"phPortfolio/internal/auth"
	"phPortfolio/internal/config"
	"phPortfolio/internal/database"
	"phPortfolio/internal/render"
	"phPortfolio/internal/store"
)

const testInternalSecret = "internal-secret"

type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newMemStorage() *memStorage {
	return &memStorage{objects: map[string][]byte{}}
}

func (m *memStorage) UploadFile(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *memStorage) OpenObject(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, minio.ErrorResponse{Code: "NoSuchKey"}
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memStorage) GeneratePresignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://files.test/" + key, nil
}

func (m *memStorage) DeleteObject(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, key)
	delete(m.objects, key)
	return nil
}

func (m *memStorage) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

type fakeEnqueuer struct {
	mu    sync.Mutex
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: fmt.Sprintf("task-%d", len(f.tasks)), Type: task.Type()}, nil
}

type fakeScanner struct {
	err error
}

func (s fakeScanner) Scan(r io.Reader) error {
	_, _ = io.Copy(io.Discard, r)
	return s.err
}

type testEnv struct {
	router  *gin.Engine
	store   *store.Service
	redis   *redis.Client
	mr      *miniredis.Miniredis
	storage *memStorage
	tasks   *fakeEnqueuer
	scanner *fakeScanner
}

type envOption func(*Deps)

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := store.NewService(store.NewGormKV(db), log)
	require.NoError(t, svc.Init(context.Background()))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sessions, err := auth.NewSessions(client, "test-secret", time.Hour)
	require.NoError(t, err)

	env := &testEnv{
		store:   svc,
		redis:   client,
		mr:      mr,
		storage: newMemStorage(),
		tasks:   &fakeEnqueuer{},
		scanner: &fakeScanner{},
	}
	deps := Deps{
		Store:          svc,
		Sessions:       sessions,
		Limiter:        auth.NewLoginLimiter(client, 100),
		Redis:          client,
		Storage:        env.storage,
		Tasks:          env.tasks,
		Scanner:        env.scanner,
		Logger:         log,
		InternalSecret: testInternalSecret,
		Preview:        render.Options{ContainerAspect: 16.0 / 9.0, ContainerWidth: 800, Scale: 0.5},
		PageCacheTTL:   time.Minute,
	}
	for _, opt := range opts {
		opt(&deps)
	}

	svc.OnChange(ChangeNotifier(client, log))
	svc.OnChange(ChangeMetrics)

	router := NewRouter(&config.Config{}, log)
	RegisterRoutes(router, deps)
	env.router = router
	return env
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	contentType := ""
	if reader != nil {
		contentType = "application/json"
	}
	return e.doRaw(t, method, path, token, contentType, reader)
}

func (e *testEnv) doRaw(t *testing.T, method, path, token, contentType string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) login(t *testing.T) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/v1/auth/login", "", gin.H{"username": "admin", "password": "admin"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var sess auth.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sess))
	require.NotEmpty(t, sess.Token)
	return sess.Token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type errorBody struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func multipartBody(t *testing.T, fields map[string]string, file []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if file != nil {
		part, err := writer.CreateFormFile("file", "upload.bin")
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}
