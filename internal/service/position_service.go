package service

import (
	"context"
	"errors"
	"math"
	"sync"

	"github.com/dushixiang/tally/internal/config"
	"github.com/dushixiang/tally/internal/models"
	"github.com/dushixiang/tally/internal/repo"
	"github.com/dushixiang/tally/internal/xe"
	"github.com/go-orz/orz"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// qtyEpsilon 数量比较精度，低于该值视为零持仓
const qtyEpsilon = 1e-9

// PositionService 持仓管理服务，每个交易对一行，flat -> long -> closing -> flat
type PositionService struct {
	logger *zap.Logger

	*orz.Service
	*repo.PositionRepo

	tradingConf config.TradingConf

	// 成交回报的读改写必须串行，避免并发覆盖 qty/avg_price
	fillMutex sync.Mutex
}

// NewPositionService 创建持仓服务
func NewPositionService(db *gorm.DB, logger *zap.Logger, conf *config.Config) *PositionService {
	return &PositionService{
		logger:       logger,
		Service:      orz.NewService(db),
		PositionRepo: repo.NewPositionRepo(db),
		tradingConf:  conf.Trading,
	}
}

// FillDelta 一次成交回报：正数为买入，负数为卖出
type FillDelta struct {
	DeltaQty float64 `json:"delta_qty"`
	Price    float64 `json:"price"`
	OrderID  int64   `json:"order_id"`
}

// ApplyFill 将成交回报应用到持仓：加权平均入场价、数量和状态机在同一事务内更新
func (s *PositionService) ApplyFill(ctx context.Context, symbol string, delta FillDelta) (*models.Position, error) {
	if symbol == "" || delta.DeltaQty == 0 || delta.Price <= 0 {
		return nil, xe.ErrInvalidParams
	}

	s.fillMutex.Lock()
	defer s.fillMutex.Unlock()

	var result *models.Position
	err := s.Transaction(ctx, func(ctx context.Context) error {
		position, err := s.PositionRepo.FindBySymbol(ctx, symbol)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if delta.DeltaQty < 0 {
				// 没有持仓行就不存在可卖数量
				return xe.ErrOversell
			}
			position = models.Position{Symbol: symbol, State: models.PositionStateFlat}
			if err := s.PositionRepo.Create(ctx, &position); err != nil {
				return err
			}
		}

		if delta.DeltaQty > 0 {
			s.applyBuy(&position, delta)
		} else {
			if err := s.applySell(&position, delta); err != nil {
				return err
			}
		}

		if err := s.PositionRepo.Save(ctx, &position); err != nil {
			return err
		}
		result = &position
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("fill applied",
		zap.String("symbol", symbol),
		zap.Float64("delta_qty", delta.DeltaQty),
		zap.Float64("price", delta.Price),
		zap.Float64("qty", result.Qty),
		zap.String("state", string(result.State)))
	return result, nil
}

func (s *PositionService) applyBuy(position *models.Position, delta FillDelta) {
	newQty := position.Qty + delta.DeltaQty
	position.AvgPrice = (position.Qty*position.AvgPrice + delta.DeltaQty*delta.Price) / newQty
	position.Qty = newQty
	position.State = models.PositionStateLong
	position.LastBuyOrderID = &delta.OrderID

	target := s.takeProfitPrice(position.AvgPrice)
	position.TargetPrice = &target
	if s.tradingConf.SlPercent > 0 {
		stop := position.AvgPrice * (1.0 - s.tradingConf.SlPercent)
		position.StopPrice = &stop
	}
}

func (s *PositionService) applySell(position *models.Position, delta FillDelta) error {
	sellQty := -delta.DeltaQty
	if sellQty > position.Qty+qtyEpsilon {
		return xe.ErrOversell
	}

	newQty := position.Qty - sellQty
	position.LastSellOrderID = &delta.OrderID
	if math.Abs(newQty) <= qtyEpsilon {
		position.ResetFlat()
		return nil
	}
	// 部分平仓：平均入场价不变，closing 状态保持到全部成交
	position.Qty = newQty
	return nil
}

// takeProfitPrice 含手续费的止盈价：卖出净得 >= 买入成本 * (1 + 止盈比例)
func (s *PositionService) takeProfitPrice(buyPrice float64) float64 {
	makerFee := s.tradingConf.MakerFee()
	takerFee := s.tradingConf.TakerFee()
	return buyPrice * (1.0 + makerFee) * (1.0 + s.tradingConf.TpPercent) / (1.0 - takerFee)
}

// MarkClosing 止盈卖单已挂出，持仓进入 closing，等待成交回报
func (s *PositionService) MarkClosing(ctx context.Context, symbol string, sellOrderID int64) error {
	s.fillMutex.Lock()
	defer s.fillMutex.Unlock()

	return s.Transaction(ctx, func(ctx context.Context) error {
		position, err := s.PositionRepo.FindBySymbol(ctx, symbol)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return xe.ErrNotFound
			}
			return err
		}
		if position.State != models.PositionStateLong {
			return xe.ErrStateConflict
		}
		position.State = models.PositionStateClosing
		position.LastSellOrderID = &sellOrderID
		return s.PositionRepo.Save(ctx, &position)
	})
}

// HoldingPositions 查询全部非空仓持仓
func (s *PositionService) HoldingPositions(ctx context.Context) ([]models.Position, error) {
	return s.PositionRepo.FindHolding(ctx)
}

// GetPosition 查询指定交易对的当前持仓
func (s *PositionService) GetPosition(ctx context.Context, symbol string) (models.Position, error) {
	position, err := s.PositionRepo.FindBySymbol(ctx, symbol)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Position{}, xe.ErrNotFound
		}
		return models.Position{}, err
	}
	return position, nil
}
