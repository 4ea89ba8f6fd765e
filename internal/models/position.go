package models

import (
	"time"
)

// PositionState 持仓状态机：flat -> long -> closing -> flat
type PositionState string

const (
	PositionStateFlat    PositionState = "flat"    // 空仓
	PositionStateLong    PositionState = "long"    // 持仓中
	PositionStateClosing PositionState = "closing" // 止盈卖单已挂出，等待成交
)

// Position 现货持仓，每个交易对固定一行
type Position struct {
	Symbol          string        `gorm:"primaryKey;type:varchar(20)" json:"symbol"`           // 交易对,如 BTCUSDT
	Qty             float64       `gorm:"not null;default:0" json:"qty"`                       // 持仓数量
	AvgPrice        float64       `gorm:"type:decimal(20,8)" json:"avg_price"`                 // 加权平均入场价
	State           PositionState `gorm:"type:varchar(10);not null;default:'flat'" json:"state"`
	TargetPrice     *float64      `gorm:"type:decimal(20,8)" json:"target_price"`              // 止盈价格
	StopPrice       *float64      `gorm:"type:decimal(20,8)" json:"stop_price"`                // 止损价格，可选
	LastBuyOrderID  *int64        `json:"last_buy_order_id"`                                   // 最近一次买单ID
	LastSellOrderID *int64        `json:"last_sell_order_id"`                                  // 最近一次卖单ID
	CreatedAt       time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (*Position) TableName() string {
	return "positions"
}

// IsFlat 是否空仓
func (p *Position) IsFlat() bool {
	return p.State == PositionStateFlat
}

// ResetFlat 完全平仓后归零，行保留
func (p *Position) ResetFlat() {
	p.Qty = 0
	p.AvgPrice = 0
	p.State = PositionStateFlat
	p.TargetPrice = nil
	p.StopPrice = nil
}
