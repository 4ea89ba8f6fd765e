package models

import (
	"time"

	"gorm.io/datatypes"
)

// EventType Agent事件类型
type EventType string

const (
	EventTypeThought     EventType = "thought"     // 思考
	EventTypeTool        EventType = "tool"        // 工具调用
	EventTypeObservation EventType = "observation" // 工具结果
	EventTypeFinal       EventType = "final"       // 最终回答
	EventTypeError       EventType = "error"       // 错误
	EventTypeLog         EventType = "log"         // 普通日志
)

// IsValid 是否为合法事件类型
func (t EventType) IsValid() bool {
	switch t {
	case EventTypeThought, EventTypeTool, EventTypeObservation, EventTypeFinal, EventTypeError, EventTypeLog:
		return true
	}
	return false
}

// RunEvent Agent执行事件，按 (step, id) 有序回放，随Run级联删除
type RunEvent struct {
	ID        int64          `gorm:"primaryKey;autoIncrement;index:idx_run_events_replay,priority:3" json:"id"`
	RunID     string         `gorm:"type:varchar(36);not null;index:idx_run_events_replay,priority:1" json:"run_id"`
	Step      int            `gorm:"not null;default:0;index:idx_run_events_replay,priority:2" json:"step"` // 由调用方编号
	Type      EventType      `gorm:"type:varchar(32);not null" json:"type"`
	Content   datatypes.JSON `gorm:"default:'{}'" json:"content"` // 结构化内容
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (*RunEvent) TableName() string {
	return "run_events"
}
