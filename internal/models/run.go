package models

import (
	"time"
)

// RunStatus Agent执行状态机：queued -> running -> {success, error, stopped}
type RunStatus string

const (
	RunStatusQueued  RunStatus = "queued"  // 已排队
	RunStatusRunning RunStatus = "running" // 执行中
	RunStatusSuccess RunStatus = "success" // 成功结束
	RunStatusError   RunStatus = "error"   // 异常结束
	RunStatusStopped RunStatus = "stopped" // 手动终止
)

// runStatusSuccessors 合法的状态推进表，三个终态不再接受任何推进
var runStatusSuccessors = map[RunStatus][]RunStatus{
	RunStatusQueued:  {RunStatusRunning},
	RunStatusRunning: {RunStatusSuccess, RunStatusError, RunStatusStopped},
}

// IsTerminal 是否为终态
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusSuccess || s == RunStatusError || s == RunStatusStopped
}

// IsValid 是否为合法状态值
func (s RunStatus) IsValid() bool {
	switch s {
	case RunStatusQueued, RunStatusRunning, RunStatusSuccess, RunStatusError, RunStatusStopped:
		return true
	}
	return false
}

// CanTransitionTo 判断状态是否允许推进到 next
func (s RunStatus) CanTransitionTo(next RunStatus) bool {
	for _, candidate := range runStatusSuccessors[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Run Agent一次完整执行，ID由调用方生成（UUID字符串）
type Run struct {
	ID          string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Goal        string     `gorm:"type:text;not null" json:"goal"`                               // 执行目标
	Status      RunStatus  `gorm:"type:varchar(16);not null;default:'queued';index" json:"status"`
	FinalAnswer *string    `gorm:"type:text" json:"final_answer"`                                // 仅成功结束时写入
	CreatedAt   time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Events []RunEvent `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定表名
func (*Run) TableName() string {
	return "runs"
}
