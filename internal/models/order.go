package models

import (
	"time"
)

// OrderSide 订单方向
type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"  // 买入
	OrderSideSell OrderSide = "SELL" // 卖出
)

// OrderType 订单类型
type OrderType string

const (
	OrderTypeLimit  OrderType = "LIMIT"  // 限价单
	OrderTypeMarket OrderType = "MARKET" // 市价单
)

// OrderStatus 订单状态（交易所回报）
type OrderStatus string

const (
	OrderStatusNew             OrderStatus = "NEW"              // 已挂单
	OrderStatusPartiallyFilled OrderStatus = "PARTIALLY_FILLED" // 部分成交
	OrderStatusFilled          OrderStatus = "FILLED"           // 全部成交
	OrderStatusCanceled        OrderStatus = "CANCELED"         // 已取消
	OrderStatusRejected        OrderStatus = "REJECTED"         // 已拒绝
)

// orderStatusRank 状态单调等级，状态只能向终态推进
var orderStatusRank = map[OrderStatus]int{
	OrderStatusNew:             1,
	OrderStatusPartiallyFilled: 2,
	OrderStatusFilled:          3,
	OrderStatusCanceled:        3,
	OrderStatusRejected:        3,
}

// IsTerminal 是否为终态
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusFilled || s == OrderStatusCanceled || s == OrderStatusRejected
}

// IsValid 是否为合法状态值
func (s OrderStatus) IsValid() bool {
	_, ok := orderStatusRank[s]
	return ok
}

// MexcOrder MEXC现货订单，每次下单尝试一行，只增不删
type MexcOrder struct {
	ID              int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	Symbol          string       `gorm:"type:varchar(20);not null;index" json:"symbol"` // 交易对,如 BTCUSDT
	Side            OrderSide    `gorm:"type:varchar(8);not null" json:"side"`          // BUY/SELL
	Type            OrderType    `gorm:"type:varchar(16);not null" json:"type"`         // LIMIT/MARKET
	ClientOrderID   string       `gorm:"type:varchar(64)" json:"client_order_id"`       // 客户端幂等标识
	ExchangeOrderID *string      `gorm:"type:varchar(64)" json:"exchange_order_id"`     // 交易所订单ID，回报前为空
	Price           *float64     `gorm:"type:decimal(20,8)" json:"price"`               // 委托价格，市价单为空
	Qty             *float64     `gorm:"type:decimal(20,8)" json:"qty"`                 // 委托数量
	Status          *OrderStatus `gorm:"type:varchar(20);index" json:"status"`          // 回报前为空
	IsTest          bool         `gorm:"not null" json:"is_test"`                       // 是否测试单，服务层显式赋值
	Error           string       `gorm:"type:text" json:"error"`                        // 下单失败原因
	CreatedAt       time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (*MexcOrder) TableName() string {
	return "mexc_orders"
}

// CanTransitionTo 判断状态是否允许推进到 next，相同状态的重复回报视为幂等
func (m *MexcOrder) CanTransitionTo(next OrderStatus) bool {
	if m.Status == nil {
		return true
	}
	current := *m.Status
	if current == next {
		return true
	}
	if current.IsTerminal() {
		return false
	}
	return orderStatusRank[next] >= orderStatusRank[current]
}
