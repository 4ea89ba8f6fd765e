package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dushixiang/tally/internal/config"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// defaultSnapshotPeriodSeconds 快照默认周期
const defaultSnapshotPeriodSeconds = 60

// SnapshotLoop 推荐快照调度器：周期性地把各交易对最新推荐点位打包成一份快照落盘
type SnapshotLoop struct {
	conf          config.RecsConf
	marketService *MarketService
	logger        *zap.Logger

	// Init 的后台协程和 Stop 会并发读写
	isRunning atomic.Bool
	cron      *cron.Cron
}

// NewSnapshotLoop 创建快照调度器
func NewSnapshotLoop(conf *config.Config, marketService *MarketService, logger *zap.Logger) *SnapshotLoop {
	return &SnapshotLoop{
		conf:          conf.Recs,
		marketService: marketService,
		logger:        logger,
	}
}

// Start 启动调度器
func (t *SnapshotLoop) Start(ctx context.Context) error {
	if !t.conf.SnapshotEnabled {
		t.logger.Info("rec snapshot loop disabled")
		return nil
	}
	if !t.isRunning.CompareAndSwap(false, true) {
		return fmt.Errorf("snapshot loop is already running")
	}

	period := t.conf.PeriodSeconds
	if period <= 0 {
		period = defaultSnapshotPeriodSeconds
	}
	spec := fmt.Sprintf("@every %ds", period)

	t.logger.Info("rec snapshot loop started",
		zap.Strings("symbols", t.conf.Symbols),
		zap.String("interval", t.conf.Interval),
		zap.String("cron_expression", spec))

	t.cron = cron.New()
	_, err := t.cron.AddFunc(spec, func() {
		if err := t.CaptureOnce(context.Background()); err != nil {
			t.logger.Error("snapshot capture failed", zap.Error(err))
		}
	})
	if err != nil {
		t.isRunning.Store(false)
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	t.cron.Start()
	return nil
}

// Stop 停止调度器
func (t *SnapshotLoop) Stop() {
	if !t.isRunning.CompareAndSwap(true, false) {
		return
	}
	if t.cron != nil {
		t.cron.Stop()
	}
	t.logger.Info("rec snapshot loop stopped")
}

// CaptureOnce 采集一次快照：每个交易对取最新推荐点位，整包写入 rec_snapshots
func (t *SnapshotLoop) CaptureOnce(ctx context.Context) error {
	interval := t.conf.Interval
	if interval == "" {
		interval = "60m"
	}

	results := make([]map[string]interface{}, 0, len(t.conf.Symbols))
	for _, symbol := range t.conf.Symbols {
		point, err := t.marketService.RecPointRepo.FindLatestOne(ctx, symbol, interval)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return err
		}
		results = append(results, map[string]interface{}{
			"symbol":         point.Symbol,
			"interval":       point.Interval,
			"price":          point.Price,
			"score":          point.Score,
			"recommendation": point.Recommendation,
			"rsi14":          point.RSI14,
			"macd_hist":      point.MACDHist,
			"change24h":      point.Change24h,
			"reasons":        json.RawMessage(point.Reasons),
			"as_of":          point.AsOf.UTC().Format(time.RFC3339),
		})
	}
	if len(results) == 0 {
		return nil
	}

	payload, err := json.Marshal(map[string]interface{}{
		"as_of":    time.Now().UTC().Format(time.RFC3339),
		"interval": interval,
		"symbols":  t.conf.Symbols,
		"results":  results,
	})
	if err != nil {
		return err
	}

	if err := t.marketService.AppendRecSnapshot(ctx, interval, datatypes.JSON(payload)); err != nil {
		return err
	}
	t.logger.Info("rec snapshot captured",
		zap.String("interval", interval),
		zap.Int("result_count", len(results)))
	return nil
}
