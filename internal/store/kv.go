package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"phPortfolio/internal/database"
)

// KV 是两个具名 JSON 文档的持久化后端。
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	// SetMany 要么全部写入，要么一个都不写。
	SetMany(ctx context.Context, entries map[string][]byte) error
	Delete(ctx context.Context, keys ...string) error
}

// GormKV 把文档存放在 kv_entries 表中。
type GormKV struct {
	db *gorm.DB
}

func NewGormKV(db *gorm.DB) *GormKV {
	return &GormKV{db: db}
}

func (k *GormKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry database.KVEntry
	err := k.db.WithContext(ctx).Where(&database.KVEntry{Key: key}).First(&entry).Error
	switch {
	case err == nil:
		return []byte(entry.Value), true, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, false, nil
	default:
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
}

// Set 以 upsert 方式整体覆盖文档。
func (k *GormKV) Set(ctx context.Context, key string, value []byte) error {
	return upsert(k.db.WithContext(ctx), key, value)
}

// SetMany 在同一事务中覆盖多个文档。
func (k *GormKV) SetMany(ctx context.Context, entries map[string][]byte) error {
	return k.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for key, value := range entries {
			if err := upsert(tx, key, value); err != nil {
				return err
			}
		}
		return nil
	})
}

func upsert(db *gorm.DB, key string, value []byte) error {
	entry := database.KVEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (k *GormKV) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	values := make([]interface{}, len(keys))
	for i, key := range keys {
		values[i] = key
	}
	err := k.db.WithContext(ctx).
		Where(clause.IN{Column: clause.Column{Name: "key"}, Values: values}).
		Delete(&database.KVEntry{}).Error
	if err != nil {
		return fmt.Errorf("delete %v: %w", keys, err)
	}
	return nil
}
