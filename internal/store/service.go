package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"phPortfolio/internal/portfolio"
	"phPortfolio/internal/theme"
)

const (
	ThemeKey   = "portfolio-theme"
	ContentKey = "portfolio-data"
)

// ErrMalformedImport 表示导入文件无法解析；不会提交任何改动。
var ErrMalformedImport = errors.New("malformed import")

// ChangeKind 标识一次已提交的变更。
type ChangeKind string

const (
	ChangeTheme   ChangeKind = "theme"
	ChangeContent ChangeKind = "content"
	ChangeImport  ChangeKind = "import"
	ChangeReset   ChangeKind = "reset"
)

type Change struct {
	Kind    ChangeKind `json:"kind"`
	Section string     `json:"section,omitempty"`
}

// Hook 在变更持久化之后同步调用。
type Hook func(ctx context.Context, change Change)

// Backup 是导出文件的结构。
type Backup struct {
	Theme         theme.Config      `json:"theme"`
	PortfolioData portfolio.Content `json:"portfolioData"`
}

// Service 持有唯一的内存根（主题与内容）。
// 所有写操作：拷贝 -> 修改 -> 持久化 -> 替换 -> 通知，失败时状态不变。
type Service struct {
	kv     KV
	logger *slog.Logger
	newID  func() string

	mu      sync.RWMutex
	theme   theme.Config
	content portfolio.Content
	hooks   []Hook
}

func NewService(kv KV, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		kv:      kv,
		logger:  logger,
		newID:   uuid.NewString,
		theme:   theme.Default(),
		content: portfolio.Default(uuid.NewString),
	}
}

// OnChange 注册变更回调，需在 Init 之前调用。
func (s *Service) OnChange(h Hook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, h)
}

// NewID 生成实体 id。
func (s *Service) NewID() string {
	return s.newID()
}

// Init 从存储加载两个文档；缺失或无法解析时使用默认值，
// 旧版本内容按字段补齐后回写。
func (s *Service) Init(ctx context.Context) error {
	th, err := s.loadTheme(ctx)
	if err != nil {
		return err
	}
	content, err := s.loadContent(ctx)
	if err != nil {
		return err
	}
	if err := s.persist(ctx, &th, &content); err != nil {
		return err
	}

	s.mu.Lock()
	s.theme = th
	s.content = content
	s.mu.Unlock()
	return nil
}

func (s *Service) loadTheme(ctx context.Context) (theme.Config, error) {
	raw, ok, err := s.kv.Get(ctx, ThemeKey)
	if err != nil {
		return theme.Config{}, fmt.Errorf("load theme: %w", err)
	}
	if !ok {
		return theme.Default(), nil
	}
	th, err := decodeTheme(raw)
	if err != nil {
		s.logger.Warn("stored theme unreadable, using defaults", slog.Any("error", err))
		return theme.Default(), nil
	}
	return th, nil
}

func (s *Service) loadContent(ctx context.Context) (portfolio.Content, error) {
	raw, ok, err := s.kv.Get(ctx, ContentKey)
	if err != nil {
		return portfolio.Content{}, fmt.Errorf("load content: %w", err)
	}
	if !ok {
		return portfolio.Default(s.newID), nil
	}
	content, err := portfolio.Reconcile(raw, s.newID)
	if err != nil {
		s.logger.Warn("stored content unreadable, using defaults", slog.Any("error", err))
		return portfolio.Default(s.newID), nil
	}
	return content, nil
}

// decodeTheme 在默认值之上解码，缺失字段保留默认值。
func decodeTheme(raw []byte) (theme.Config, error) {
	th := theme.Default()
	if err := json.Unmarshal(raw, &th); err != nil {
		return theme.Config{}, err
	}
	return th.Normalize()
}

// Theme 返回当前主题。
func (s *Service) Theme() theme.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

// Content 返回内容的深拷贝。
func (s *Service) Content() portfolio.Content {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.content.Clone()
}

// Snapshot 在同一把读锁下取主题与内容。
func (s *Service) Snapshot() (theme.Config, portfolio.Content) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme, s.content.Clone()
}

func (s *Service) UpdateTheme(ctx context.Context, fn func(*theme.Config) error) (theme.Config, error) {
	s.mu.Lock()
	next := s.theme
	if err := fn(&next); err != nil {
		s.mu.Unlock()
		return s.Theme(), err
	}
	if err := s.persist(ctx, &next, nil); err != nil {
		s.mu.Unlock()
		return s.Theme(), err
	}
	s.theme = next
	hooks := s.hooks
	s.mu.Unlock()

	s.notify(ctx, hooks, Change{Kind: ChangeTheme})
	return next, nil
}

// UpdateContent 在内容副本上执行 fn，成功后持久化并替换。
func (s *Service) UpdateContent(ctx context.Context, section string, fn func(*portfolio.Content) error) (portfolio.Content, error) {
	s.mu.Lock()
	next := s.content.Clone()
	if err := fn(&next); err != nil {
		s.mu.Unlock()
		return portfolio.Content{}, err
	}
	if err := s.persist(ctx, nil, &next); err != nil {
		s.mu.Unlock()
		return portfolio.Content{}, err
	}
	s.content = next
	hooks := s.hooks
	out := next.Clone()
	s.mu.Unlock()

	s.notify(ctx, hooks, Change{Kind: ChangeContent, Section: section})
	return out, nil
}

// ApplyImage 把一次图片上传结果写入目标字段。目标已不存在时返回 portfolio.ErrNotFound。
func (s *Service) ApplyImage(ctx context.Context, target portfolio.ImageTarget, result portfolio.ImageResult) error {
	_, err := s.UpdateContent(ctx, sectionOf(target.Field), func(c *portfolio.Content) error {
		return c.ApplyImage(target, result)
	})
	return err
}

func sectionOf(field portfolio.ImageField) string {
	switch field {
	case portfolio.ImageProjectImage, portfolio.ImageProjectAction, portfolio.ImageElementSrc:
		return "projects"
	default:
		return "hero"
	}
}

func (s *Service) Export() Backup {
	th, content := s.Snapshot()
	return Backup{Theme: th, PortfolioData: content}
}

// Import 解析整个文件后一次性提交；任何错误都不会留下部分导入。
func (s *Service) Import(ctx context.Context, raw []byte) error {
	var doc struct {
		Theme         json.RawMessage            `json:"theme"`
		PortfolioData map[string]json.RawMessage `json:"portfolioData"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedImport, err)
	}
	if len(doc.Theme) == 0 && doc.PortfolioData == nil {
		return fmt.Errorf("%w: neither theme nor portfolioData present", ErrMalformedImport)
	}

	s.mu.Lock()
	nextTheme := s.theme
	if len(doc.Theme) > 0 {
		th, err := decodeTheme(doc.Theme)
		if err != nil {
			s.mu.Unlock()
			return fmt.Errorf("%w: theme: %v", ErrMalformedImport, err)
		}
		nextTheme = th
	}

	nextContent := s.content.Clone()
	for key, section := range doc.PortfolioData {
		err := nextContent.ReplaceSection(key, section, s.newID)
		switch {
		case err == nil:
		case errors.Is(err, portfolio.ErrUnknownSection):
			s.logger.Warn("import: skipping unknown section", slog.String("section", key))
		default:
			s.mu.Unlock()
			return fmt.Errorf("%w: %w", ErrMalformedImport, err)
		}
	}

	if err := s.persist(ctx, &nextTheme, &nextContent); err != nil {
		s.mu.Unlock()
		return err
	}
	s.theme = nextTheme
	s.content = nextContent
	hooks := s.hooks
	s.mu.Unlock()

	s.notify(ctx, hooks, Change{Kind: ChangeImport})
	return nil
}

// Reset 删除两个文档并恢复默认值。
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	if err := s.kv.Delete(ctx, ThemeKey, ContentKey); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("reset: %w", err)
	}
	s.theme = theme.Default()
	s.content = portfolio.Default(s.newID)
	hooks := s.hooks
	s.mu.Unlock()

	s.notify(ctx, hooks, Change{Kind: ChangeReset})
	return nil
}

// persist 把非空的文档在一次批量写入中落盘。
func (s *Service) persist(ctx context.Context, th *theme.Config, content *portfolio.Content) error {
	entries := make(map[string][]byte, 2)
	if th != nil {
		raw, err := json.Marshal(th)
		if err != nil {
			return fmt.Errorf("encode theme: %w", err)
		}
		entries[ThemeKey] = raw
	}
	if content != nil {
		raw, err := json.Marshal(content)
		if err != nil {
			return fmt.Errorf("encode content: %w", err)
		}
		entries[ContentKey] = raw
	}
	if len(entries) == 0 {
		return nil
	}
	if err := s.kv.SetMany(ctx, entries); err != nil {
		return fmt.Errorf("save documents: %w", err)
	}
	return nil
}

func (s *Service) notify(ctx context.Context, hooks []Hook, change Change) {
	for _, h := range hooks {
		h(ctx, change)
	}
}
