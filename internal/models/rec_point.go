package models

import (
	"time"

	"gorm.io/datatypes"
)

// Recommendation 推荐级别
type Recommendation string

const (
	RecommendationBuy        Recommendation = "BUY"
	RecommendationAccumulate Recommendation = "ACCUMULATE"
	RecommendationHold       Recommendation = "HOLD"
	RecommendationReduce     Recommendation = "REDUCE"
	RecommendationSell       Recommendation = "SELL"
)

// RecPoint 推荐点位时序数据，按 (symbol, interval, as_of) 只增不改
type RecPoint struct {
	ID             int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	AsOf           time.Time      `gorm:"not null;autoCreateTime;index:idx_rec_points_lookup,priority:3,sort:desc" json:"as_of"` // 评估时间
	Symbol         string         `gorm:"type:varchar(20);not null;index:idx_rec_points_lookup,priority:1" json:"symbol"`
	Interval       string         `gorm:"type:varchar(10);not null;index:idx_rec_points_lookup,priority:2" json:"interval"` // K线周期,如 60m
	Price          float64        `gorm:"type:decimal(20,8)" json:"price"`            // 评估时价格
	Score          float64        `gorm:"type:decimal(10,4)" json:"score"`            // 综合评分
	RSI14          float64        `gorm:"type:decimal(10,4)" json:"rsi14"`            // RSI14
	MACDHist       float64        `gorm:"type:decimal(20,8)" json:"macd_hist"`        // MACD柱状图
	EMA20          float64        `gorm:"type:decimal(20,8)" json:"ema20"`            // EMA20
	EMA50          float64        `gorm:"type:decimal(20,8)" json:"ema50"`            // EMA50
	EMA200         float64        `gorm:"type:decimal(20,8)" json:"ema200"`           // EMA200
	ATR14          float64        `gorm:"type:decimal(20,8)" json:"atr14"`            // ATR14
	ATRRatio       float64        `gorm:"type:decimal(10,6)" json:"atr_ratio"`        // ATR占价格比例
	Change24h      float64        `gorm:"type:decimal(10,4)" json:"change24h"`        // 24小时涨跌幅
	Recommendation Recommendation `gorm:"type:varchar(16)" json:"recommendation"`     // BUY/ACCUMULATE/HOLD/REDUCE/SELL
	Reasons        datatypes.JSON `gorm:"default:'[]'" json:"reasons"`                // 推荐理由列表
}

// TableName 指定表名
func (*RecPoint) TableName() string {
	return "rec_points"
}
