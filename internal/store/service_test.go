package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"phPortfolio/internal/database"
	"phPortfolio/internal/layout"
	"phPortfolio/internal/portfolio"
	"phPortfolio/internal/theme"
)

func newTestKV(t *testing.T) *GormKV {
	t.Helper()
	return NewGormKV(newTestDB(t))
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 内存库只在单个连接内可见
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

// failKeyOnCreate 让写入指定 key 的 upsert 失败，模拟事务中途出错。
func failKeyOnCreate(t *testing.T, db *gorm.DB, key string) {
	t.Helper()
	err := db.Callback().Create().Before("gorm:create").Register("test:fail_key", func(tx *gorm.DB) {
		if entry, ok := tx.Statement.Dest.(*database.KVEntry); ok && entry.Key == key {
			_ = tx.AddError(errors.New("disk full"))
		}
	})
	require.NoError(t, err)
}

func newTestService(t *testing.T, kv KV) *Service {
	t.Helper()
	s := NewService(kv, nil)
	require.NoError(t, s.Init(context.Background()))
	return s
}

func TestGormKV(t *testing.T) {
	ctx := context.Background()
	kv := newTestKV(t)

	_, ok, err := kv.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(ctx, "a", []byte(`{"v":1}`)))
	require.NoError(t, kv.Set(ctx, "a", []byte(`{"v":2}`)))
	raw, ok, err := kv.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"v":2}`, string(raw))

	require.NoError(t, kv.Delete(ctx, "a", "b"))
	_, ok, err = kv.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInitWritesDefaults(t *testing.T) {
	ctx := context.Background()
	kv := newTestKV(t)
	s := newTestService(t, kv)

	assert.Equal(t, theme.Default(), s.Theme())
	assert.Equal(t, "Muhammad Haider", s.Content().Hero.Name)

	_, ok, err := kv.Get(ctx, ThemeKey)
	require.NoError(t, err)
	assert.True(t, ok)
	_, ok, err = kv.Get(ctx, ContentKey)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestInitUpgradesOldContent(t *testing.T) {
	ctx := context.Background()
	kv := newTestKV(t)
	require.NoError(t, kv.Set(ctx, ContentKey, []byte(`{"projects":[{"id":1,"title":"Old"}]}`)))
	require.NoError(t, kv.Set(ctx, ThemeKey, []byte(`{"isDark":true}`)))

	s := newTestService(t, kv)
	c := s.Content()
	require.Len(t, c.Projects, 1)
	assert.Equal(t, "1", c.Projects[0].ID)
	assert.Equal(t, []layout.Element{}, c.Projects[0].Elements)
	assert.Equal(t, 20, c.YearRatio)
	assert.True(t, s.Theme().IsDark)
	assert.Equal(t, theme.Default().PrimaryColor, s.Theme().PrimaryColor)
}

func TestInitToleratesGarbage(t *testing.T) {
	ctx := context.Background()
	kv := newTestKV(t)
	require.NoError(t, kv.Set(ctx, ContentKey, []byte(`"not an object"`)))

	s := newTestService(t, kv)
	assert.Len(t, s.Content().Projects, 2)
}

func TestUpdateContentPersistsAndNotifies(t *testing.T) {
	ctx := context.Background()
	kv := newTestKV(t)
	s := newTestService(t, kv)

	var changes []Change
	s.OnChange(func(_ context.Context, ch Change) { changes = append(changes, ch) })

	before := s.Content()
	_, err := s.UpdateContent(ctx, "projects", func(c *portfolio.Content) error {
		c.AddProject(s.NewID())
		return nil
	})
	require.NoError(t, err)

	after := s.Content()
	require.Len(t, after.Projects, 3)
	assert.Equal(t, before.Projects[:2], after.Projects[:2])
	ids := map[string]struct{}{}
	for _, p := range after.Projects {
		ids[p.ID] = struct{}{}
	}
	assert.Len(t, ids, 3)
	assert.Equal(t, []Change{{Kind: ChangeContent, Section: "projects"}}, changes)

	reloaded := newTestService(t, kv)
	assert.Equal(t, after, reloaded.Content())
}

func TestUpdateContentFailureLeavesState(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, newTestKV(t))
	before := s.Content()

	_, err := s.UpdateContent(ctx, "adminUsers", func(c *portfolio.Content) error {
		c.Hero.Name = "should not stick"
		return c.DeleteUser(c.AdminUsers[0].ID)
	})
	assert.ErrorIs(t, err, portfolio.ErrLastAdmin)
	assert.Equal(t, before, s.Content())
}

func TestUpdateTheme(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, newTestKV(t))

	th, err := s.UpdateTheme(ctx, func(c *theme.Config) error {
		*c = c.ToggleDark()
		return nil
	})
	require.NoError(t, err)
	assert.True(t, th.IsDark)
	assert.Equal(t, th, s.Theme())

	_, err = s.UpdateTheme(ctx, func(*theme.Config) error { return errors.New("boom") })
	assert.Error(t, err)
	assert.True(t, s.Theme().IsDark)
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newTestService(t, newTestKV(t))

	_, err := src.UpdateContent(ctx, "projects", func(c *portfolio.Content) error {
		p := c.AddProject("custom")
		custom := portfolio.LayoutCustom
		if err := c.UpdateProject(p.ID, portfolio.ProjectPatch{Layout: &custom}); err != nil {
			return err
		}
		if _, err := c.AddElement(p.ID, "t", layout.TypeText); err != nil {
			return err
		}
		if _, err := c.AddElement(p.ID, "i", layout.TypeImage); err != nil {
			return err
		}
		empty := ""
		if _, err := c.UpdateElement(p.ID, "t", layout.Patch{Content: &empty}); err != nil {
			return err
		}
		if _, err := c.ApplyPreset(p.ID, "i", layout.AnchorTopRight); err != nil {
			return err
		}
		_, err := c.AddUser("u2", "editor", "pw")
		return err
	})
	require.NoError(t, err)
	_, err = src.UpdateTheme(ctx, func(c *theme.Config) error {
		*c = c.ToggleDark()
		return nil
	})
	require.NoError(t, err)

	raw, err := json.Marshal(src.Export())
	require.NoError(t, err)

	dst := newTestService(t, newTestKV(t))
	require.NoError(t, dst.Import(ctx, raw))

	assert.Equal(t, src.Theme(), dst.Theme())
	assert.Equal(t, src.Content(), dst.Content())
}

func TestImportMalformedCommitsNothing(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, newTestKV(t))
	beforeTheme, beforeContent := s.Snapshot()

	cases := [][]byte{
		[]byte(`{not json`),
		[]byte(`{}`),
		[]byte(`{"theme":{"primaryColor":"red"},"portfolioData":{"yearRatio":5}}`),
		[]byte(`{"portfolioData":{"hero":{"name":"X"},"projects":{"bad":true}}}`),
	}
	for _, raw := range cases {
		err := s.Import(ctx, raw)
		assert.ErrorIs(t, err, ErrMalformedImport, string(raw))
	}
	th, c := s.Snapshot()
	assert.Equal(t, beforeTheme, th)
	assert.Equal(t, beforeContent, c)
}

func TestGormKVSetManyRollsBack(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	kv := NewGormKV(db)
	require.NoError(t, kv.SetMany(ctx, map[string][]byte{"a": []byte(`1`), "b": []byte(`2`)}))

	failKeyOnCreate(t, db, "b")
	err := kv.SetMany(ctx, map[string][]byte{"a": []byte(`10`), "b": []byte(`20`)})
	require.Error(t, err)

	raw, ok, err := kv.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `1`, string(raw))
}

func TestImportStorageFailureCommitsNothing(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	s := newTestService(t, NewGormKV(db))
	beforeTheme, beforeContent := s.Snapshot()

	failKeyOnCreate(t, db, ContentKey)
	err := s.Import(ctx, []byte(`{"theme":{"primaryColor":"#000000"},"portfolioData":{"yearRatio":33}}`))
	require.Error(t, err)

	th, c := s.Snapshot()
	assert.Equal(t, beforeTheme, th)
	assert.Equal(t, beforeContent, c)

	// 重启后也看不到半截导入
	require.NoError(t, db.Callback().Create().Remove("test:fail_key"))
	reloaded := newTestService(t, NewGormKV(db))
	assert.Equal(t, beforeTheme.PrimaryColor, reloaded.Theme().PrimaryColor)
	assert.Equal(t, beforeContent.YearRatio, reloaded.Content().YearRatio)
}

func TestImportPartialSections(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, newTestKV(t))
	before := s.Content()

	require.NoError(t, s.Import(ctx, []byte(`{"portfolioData":{"yearRatio":40,"extra":1}}`)))
	after := s.Content()
	assert.Equal(t, 40, after.YearRatio)
	assert.Equal(t, before.Projects, after.Projects)
	assert.Equal(t, theme.Default(), s.Theme())
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	kv := newTestKV(t)
	s := newTestService(t, kv)

	_, err := s.UpdateContent(ctx, "hero", func(c *portfolio.Content) error {
		c.Hero.Name = "Changed"
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, s.Reset(ctx))

	assert.Equal(t, "Muhammad Haider", s.Content().Hero.Name)
	_, ok, err := kv.Get(ctx, ContentKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestApplyImageMissingTargetIsNoop(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, newTestKV(t))
	before := s.Content()

	err := s.ApplyImage(ctx,
		portfolio.ImageTarget{Field: portfolio.ImageProjectImage, ProjectID: "gone"},
		portfolio.ImageResult{Src: "data:image/png;base64,AA"})
	assert.ErrorIs(t, err, portfolio.ErrNotFound)
	assert.Equal(t, before, s.Content())

	require.NoError(t, s.ApplyImage(ctx,
		portfolio.ImageTarget{Field: portfolio.ImageHeroBackground},
		portfolio.ImageResult{Src: "data:image/png;base64,AA"}))
	assert.Equal(t, "data:image/png;base64,AA", s.Content().Hero.BackgroundImage)
}
