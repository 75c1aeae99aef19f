package database

import (
	"time"

	"gorm.io/datatypes"
)

// KVEntry 保存一个具名 JSON 文档（主题或作品集内容）。
type KVEntry struct {
	Key       string         `gorm:"primaryKey;size:64"`
	Value     datatypes.JSON `gorm:"type:jsonb"`
	UpdatedAt time.Time
}

// TableName 固定表名为 kv_entries。
func (KVEntry) TableName() string {
	return "kv_entries"
}
