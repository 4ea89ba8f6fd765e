package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/dushixiang/tally/internal/models"
	"github.com/dushixiang/tally/internal/xe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func newMarketService(t *testing.T) *MarketService {
	t.Helper()
	return NewMarketService(newTestDB(t), newTestLogger())
}

func TestAppendRecPoint_Validation(t *testing.T) {
	s := newMarketService(t)
	ctx := context.Background()

	assert.ErrorIs(t, s.AppendRecPoint(ctx, nil), xe.ErrInvalidParams)
	assert.ErrorIs(t, s.AppendRecPoint(ctx, &models.RecPoint{Interval: "60m"}), xe.ErrInvalidParams)
	assert.ErrorIs(t, s.AppendRecPoint(ctx, &models.RecPoint{Symbol: "BTCUSDT"}), xe.ErrInvalidParams)

	point := &models.RecPoint{
		Symbol:         "BTCUSDT",
		Interval:       "60m",
		Price:          60000,
		Score:          1.5,
		RSI14:          55.2,
		MACDHist:       12.3,
		Recommendation: models.RecommendationBuy,
	}
	require.NoError(t, s.AppendRecPoint(ctx, point))
	require.Greater(t, point.ID, int64(0))

	stored, err := s.RecPointRepo.FindById(ctx, point.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(stored.Reasons), "reasons defaults to an empty list")
	assert.False(t, stored.AsOf.IsZero())
}

func TestLatestRecPoints(t *testing.T) {
	s := newMarketService(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	for i := 0; i < 3; i++ {
		point := &models.RecPoint{
			Symbol:   "BTCUSDT",
			Interval: "60m",
			Price:    60000 + float64(i),
			AsOf:     base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, s.AppendRecPoint(ctx, point))
	}
	// 其他交易对和周期不应混入
	require.NoError(t, s.AppendRecPoint(ctx, &models.RecPoint{Symbol: "ETHUSDT", Interval: "60m"}))
	require.NoError(t, s.AppendRecPoint(ctx, &models.RecPoint{Symbol: "BTCUSDT", Interval: "15m"}))

	points, err := s.LatestRecPoints(ctx, "BTCUSDT", "60m", 2)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.InDelta(t, 60002.0, points[0].Price, 1e-9)
	assert.InDelta(t, 60001.0, points[1].Price, 1e-9)

	_, err = s.LatestRecPoints(ctx, "", "60m", 2)
	assert.ErrorIs(t, err, xe.ErrInvalidParams)
}

func TestAppendRecSnapshot(t *testing.T) {
	s := newMarketService(t)
	ctx := context.Background()

	assert.ErrorIs(t, s.AppendRecSnapshot(ctx, "", datatypes.JSON(`{}`)), xe.ErrInvalidParams)
	assert.ErrorIs(t, s.AppendRecSnapshot(ctx, "60m", nil), xe.ErrInvalidParams)

	payload := datatypes.JSON(`{"results":[{"symbol":"BTCUSDT"}]}`)
	require.NoError(t, s.AppendRecSnapshot(ctx, "60m", payload))

	snapshots, err := s.LatestSnapshots(ctx, "60m", 1)
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.JSONEq(t, string(payload), string(snapshots[0].Payload))
	assert.False(t, snapshots[0].AsOf.IsZero())
}

func TestSnapshotLoop_StartStop(t *testing.T) {
	market := NewMarketService(newTestDB(t), newTestLogger())
	loop := NewSnapshotLoop(newTestConfig(), market, newTestLogger())
	ctx := context.Background()

	require.NoError(t, loop.Start(ctx))
	assert.Error(t, loop.Start(ctx), "second start must be rejected")

	loop.Stop()
	loop.Stop() // 重复停止无害

	// 停止后可以重新启动
	require.NoError(t, loop.Start(ctx))
	loop.Stop()
}

func TestSnapshotLoop_CaptureOnce(t *testing.T) {
	db := newTestDB(t)
	market := NewMarketService(db, newTestLogger())
	loop := NewSnapshotLoop(newTestConfig(), market, newTestLogger())
	ctx := context.Background()

	// 没有任何推荐点位时不产生快照
	require.NoError(t, loop.CaptureOnce(ctx))
	snapshots, err := market.LatestSnapshots(ctx, "60m", 10)
	require.NoError(t, err)
	assert.Empty(t, snapshots)

	require.NoError(t, market.AppendRecPoint(ctx, &models.RecPoint{
		Symbol:         "BTCUSDT",
		Interval:       "60m",
		Price:          60000,
		Score:          2.1,
		Recommendation: models.RecommendationAccumulate,
		Reasons:        datatypes.JSON(`["rsi oversold","macd turning"]`),
	}))

	require.NoError(t, loop.CaptureOnce(ctx))

	snapshots, err = market.LatestSnapshots(ctx, "60m", 10)
	require.NoError(t, err)
	require.Len(t, snapshots, 1)

	var payload struct {
		Interval string                   `json:"interval"`
		Results  []map[string]interface{} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(snapshots[0].Payload, &payload))
	assert.Equal(t, "60m", payload.Interval)
	require.Len(t, payload.Results, 1)
	assert.Equal(t, "BTCUSDT", payload.Results[0]["symbol"])
}
