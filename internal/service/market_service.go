package service

import (
	"context"

	"github.com/dushixiang/tally/internal/models"
	"github.com/dushixiang/tally/internal/repo"
	"github.com/dushixiang/tally/internal/xe"
	"github.com/go-orz/orz"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// defaultRecPointLimit 推荐点位查询的默认条数
const defaultRecPointLimit = 20

// MarketService 行情推荐数据服务，rec_points 与 rec_snapshots 均为纯追加
type MarketService struct {
	logger *zap.Logger

	*orz.Service
	*repo.RecPointRepo
	*repo.RecSnapshotRepo
}

// NewMarketService 创建行情服务
func NewMarketService(db *gorm.DB, logger *zap.Logger) *MarketService {
	return &MarketService{
		logger:          logger,
		Service:         orz.NewService(db),
		RecPointRepo:    repo.NewRecPointRepo(db),
		RecSnapshotRepo: repo.NewRecSnapshotRepo(db),
	}
}

// AppendRecPoint 追加一条推荐点位，业务上永不失败，仅拒绝缺少 symbol/interval 的畸形输入
func (s *MarketService) AppendRecPoint(ctx context.Context, point *models.RecPoint) error {
	if point == nil || point.Symbol == "" || point.Interval == "" {
		return xe.ErrInvalidParams
	}
	if len(point.Reasons) == 0 {
		point.Reasons = datatypes.JSON("[]")
	}
	return s.RecPointRepo.Create(ctx, point)
}

// LatestRecPoints 获取指定交易对和周期的最近N条推荐点位
func (s *MarketService) LatestRecPoints(ctx context.Context, symbol, interval string, limit int) ([]models.RecPoint, error) {
	if symbol == "" || interval == "" {
		return nil, xe.ErrInvalidParams
	}
	if limit <= 0 {
		limit = defaultRecPointLimit
	}
	return s.RecPointRepo.FindLatest(ctx, symbol, interval, limit)
}

// AppendRecSnapshot 追加一份推荐快照，内容对存储层不透明
func (s *MarketService) AppendRecSnapshot(ctx context.Context, interval string, payload datatypes.JSON) error {
	if interval == "" || len(payload) == 0 {
		return xe.ErrInvalidParams
	}
	snapshot := &models.RecSnapshot{
		Interval: interval,
		Payload:  payload,
	}
	return s.RecSnapshotRepo.Create(ctx, snapshot)
}

// LatestSnapshots 获取指定周期的最近N个快照
func (s *MarketService) LatestSnapshots(ctx context.Context, interval string, limit int) ([]models.RecSnapshot, error) {
	if interval == "" {
		return nil, xe.ErrInvalidParams
	}
	if limit <= 0 {
		limit = 1
	}
	return s.RecSnapshotRepo.FindLatestByInterval(ctx, interval, limit)
}
