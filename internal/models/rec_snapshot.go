package models

import (
	"time"

	"gorm.io/datatypes"
)

// RecSnapshot 推荐快照，按周期整包落盘，内容对存储层不透明
type RecSnapshot struct {
	ID       int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Interval string         `gorm:"type:varchar(10);not null" json:"interval"` // K线周期
	AsOf     time.Time      `gorm:"not null;autoCreateTime" json:"as_of"`      // 快照时间
	Payload  datatypes.JSON `gorm:"not null" json:"payload"`                   // 完整推荐内容
}

// TableName 指定表名
func (*RecSnapshot) TableName() string {
	return "rec_snapshots"
}
