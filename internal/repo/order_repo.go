package repo

import (
	"context"
	"time"

	"github.com/dushixiang/tally/internal/models"
	"github.com/go-orz/orz"
	"gorm.io/gorm"
)

func NewOrderRepo(db *gorm.DB) *OrderRepo {
	return &OrderRepo{
		Repository: orz.NewRepository[models.MexcOrder, int64](db),
	}
}

type OrderRepo struct {
	orz.Repository[models.MexcOrder, int64]
}

// FindBySymbol 查找指定交易对的所有订单
func (r OrderRepo) FindBySymbol(ctx context.Context, symbol string) ([]models.MexcOrder, error) {
	db := r.GetDB(ctx)
	var orders []models.MexcOrder
	err := db.Table(r.GetTableName()).
		Where("symbol = ?", symbol).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

// FindBySymbolAndStatus 按交易对和状态查找订单
func (r OrderRepo) FindBySymbolAndStatus(ctx context.Context, symbol string, status models.OrderStatus) ([]models.MexcOrder, error) {
	db := r.GetDB(ctx)
	var orders []models.MexcOrder
	err := db.Table(r.GetTableName()).
		Where("symbol = ? AND status = ?", symbol, status).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

// FindOpenBySymbol 查找指定交易对的未终结订单（未回报、已挂单或部分成交）
func (r OrderRepo) FindOpenBySymbol(ctx context.Context, symbol string) ([]models.MexcOrder, error) {
	db := r.GetDB(ctx)
	var orders []models.MexcOrder
	err := db.Table(r.GetTableName()).
		Where("symbol = ? AND (status IS NULL OR status IN ?)", symbol,
			[]models.OrderStatus{models.OrderStatusNew, models.OrderStatusPartiallyFilled}).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

// UpdateAck 以交易所回报更新订单，仅当当前状态仍为 from 时生效，返回生效行数
func (r OrderRepo) UpdateAck(ctx context.Context, id int64, from *models.OrderStatus, updates map[string]interface{}) (int64, error) {
	db := r.GetDB(ctx)
	updates["updated_at"] = time.Now()
	query := db.Table(r.GetTableName()).Where("id = ?", id)
	if from == nil {
		query = query.Where("status IS NULL")
	} else {
		query = query.Where("status = ?", *from)
	}
	result := query.Updates(updates)
	return result.RowsAffected, result.Error
}
