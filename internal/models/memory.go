package models

import (
	"time"

	"gorm.io/datatypes"
)

// Memory Agent长期记忆，key不唯一，重复写入追加新版本
type Memory struct {
	ID       int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Key      string         `gorm:"type:varchar(128);not null;index" json:"key"`
	Value    string         `gorm:"type:text;not null" json:"value"`
	Tags     datatypes.JSON `gorm:"default:'[]'" json:"tags"`        // 标签列表
	LastSeen time.Time      `gorm:"autoUpdateTime" json:"last_seen"` // 任何写入或触达都会刷新
}

// TableName 指定表名
func (*Memory) TableName() string {
	return "memories"
}
