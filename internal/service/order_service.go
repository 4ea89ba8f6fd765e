package service

import (
	"context"
	"errors"

	"github.com/dushixiang/tally/internal/config"
	"github.com/dushixiang/tally/internal/models"
	"github.com/dushixiang/tally/internal/repo"
	"github.com/dushixiang/tally/internal/xe"
	"github.com/dushixiang/tally/pkg/nostd"
	"github.com/go-orz/orz"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OrderService 订单状态管理服务，订单行只增不删，状态只向终态推进
type OrderService struct {
	logger *zap.Logger

	*orz.Service
	*repo.OrderRepo

	validator   *nostd.CustomValidator
	tradingConf config.TradingConf
}

// NewOrderService 创建订单服务
func NewOrderService(db *gorm.DB, validator *nostd.CustomValidator, logger *zap.Logger, conf *config.Config) *OrderService {
	return &OrderService{
		logger:      logger,
		Service:     orz.NewService(db),
		OrderRepo:   repo.NewOrderRepo(db),
		validator:   validator,
		tradingConf: conf.Trading,
	}
}

// PlaceOrderParams 下单入参
type PlaceOrderParams struct {
	Symbol        string           `json:"symbol" validate:"required"`
	Side          models.OrderSide `json:"side" validate:"required,oneof=BUY SELL"`
	Type          models.OrderType `json:"type" validate:"required,oneof=LIMIT MARKET"`
	ClientOrderID string           `json:"client_order_id"`
	Price         *float64         `json:"price"`
	Qty           *float64         `json:"qty"`
	Error         string           `json:"error"`
}

// PlaceOrder 记录一次下单尝试，返回订单ID。订单处于未回报状态，等待交易所确认。
func (s *OrderService) PlaceOrder(ctx context.Context, params PlaceOrderParams) (int64, error) {
	if err := s.validator.Validate(params); err != nil {
		s.logger.Warn("invalid place order params", zap.Error(err))
		return 0, xe.ErrInvalidParams
	}

	clientOrderID := params.ClientOrderID
	if clientOrderID == "" {
		clientOrderID = ulid.Make().String()
	}

	order := &models.MexcOrder{
		Symbol:        params.Symbol,
		Side:          params.Side,
		Type:          params.Type,
		ClientOrderID: clientOrderID,
		Price:         params.Price,
		Qty:           params.Qty,
		IsTest:        s.tradingConf.TestOnly,
		Error:         params.Error,
	}
	if err := s.OrderRepo.Create(ctx, order); err != nil {
		return 0, err
	}

	s.logger.Info("order placed",
		zap.Int64("order_id", order.ID),
		zap.String("symbol", order.Symbol),
		zap.String("side", string(order.Side)),
		zap.String("client_order_id", order.ClientOrderID))
	return order.ID, nil
}

// RecordAck 记录交易所回报：写入交易所订单ID并推进状态。
// 状态只允许向终态单调推进，回退一律拒绝。
func (s *OrderService) RecordAck(ctx context.Context, orderID int64, exchangeOrderID string, status models.OrderStatus, errText string) error {
	if !status.IsValid() {
		return xe.ErrInvalidParams
	}

	return s.Transaction(ctx, func(ctx context.Context) error {
		order, err := s.OrderRepo.FindById(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return xe.ErrNotFound
			}
			return err
		}

		if !order.CanTransitionTo(status) {
			s.logger.Warn("rejected order status regression",
				zap.Int64("order_id", orderID),
				zap.Any("current", order.Status),
				zap.String("next", string(status)))
			return xe.ErrStateConflict
		}

		updates := map[string]interface{}{
			"status": status,
		}
		if exchangeOrderID != "" {
			updates["exchange_order_id"] = exchangeOrderID
		}
		if errText != "" && status == models.OrderStatusRejected {
			updates["error"] = errText
		}

		// 带前置状态条件的UPDATE，并发回报互不覆盖
		rows, err := s.OrderRepo.UpdateAck(ctx, orderID, order.Status, updates)
		if err != nil {
			return err
		}
		if rows == 0 {
			return xe.ErrStateConflict
		}
		return nil
	})
}

// OpenOrders 查询指定交易对的未终结订单
func (s *OrderService) OpenOrders(ctx context.Context, symbol string) ([]models.MexcOrder, error) {
	if symbol == "" {
		return nil, xe.ErrInvalidParams
	}
	return s.OrderRepo.FindOpenBySymbol(ctx, symbol)
}

// OrdersByStatus 按交易对和回报状态查询订单
func (s *OrderService) OrdersByStatus(ctx context.Context, symbol string, status models.OrderStatus) ([]models.MexcOrder, error) {
	if symbol == "" || !status.IsValid() {
		return nil, xe.ErrInvalidParams
	}
	return s.OrderRepo.FindBySymbolAndStatus(ctx, symbol, status)
}

// OrderHistory 查询指定交易对的全部下单记录，时间倒序
func (s *OrderService) OrderHistory(ctx context.Context, symbol string) ([]models.MexcOrder, error) {
	if symbol == "" {
		return nil, xe.ErrInvalidParams
	}
	return s.OrderRepo.FindBySymbol(ctx, symbol)
}
