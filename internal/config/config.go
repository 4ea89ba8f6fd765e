package config

type Config struct {
	Trading TradingConf `json:"trading"`
	Recs    RecsConf    `json:"recs"`
}

type TradingConf struct {
	TestOnly   bool    `json:"test_only"`    // 仅测试单，默认true
	TpPercent  float64 `json:"tp_percent"`   // 止盈比例，如 0.02
	SlPercent  float64 `json:"sl_percent"`   // 止损比例，0为关闭
	MakerBps   float64 `json:"maker_bps"`    // 挂单手续费（万分比），如 8
	TakerBps   float64 `json:"taker_bps"`    // 吃单手续费（万分比），如 10
	MaxUsdtPer float64 `json:"max_usdt_per"` // 单笔最大金额（USDT）
}

type RecsConf struct {
	Symbols         []string `json:"symbols"`          // 交易币种，如 ["BTCUSDT", "ETHUSDT"]
	Interval        string   `json:"interval"`         // K线周期，默认 60m
	SnapshotEnabled bool     `json:"snapshot_enabled"` // 是否周期性落盘推荐快照
	PeriodSeconds   int      `json:"period_seconds"`   // 快照周期（秒），默认60
}

// MakerFee 挂单手续费率
func (c TradingConf) MakerFee() float64 {
	return c.MakerBps / 10000.0
}

// TakerFee 吃单手续费率
func (c TradingConf) TakerFee() float64 {
	return c.TakerBps / 10000.0
}
