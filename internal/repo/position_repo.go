package repo

import (
	"context"

	"github.com/dushixiang/tally/internal/models"
	"github.com/go-orz/orz"
	"gorm.io/gorm"
)

func NewPositionRepo(db *gorm.DB) *PositionRepo {
	return &PositionRepo{
		Repository: orz.NewRepository[models.Position, string](db),
	}
}

type PositionRepo struct {
	orz.Repository[models.Position, string]
}

// FindBySymbol 按交易对查找持仓，主键列是 symbol 而不是 id，不走通用 FindById
func (r PositionRepo) FindBySymbol(ctx context.Context, symbol string) (m models.Position, err error) {
	db := r.GetDB(ctx)
	err = db.Table(r.GetTableName()).
		Where("symbol = ?", symbol).
		First(&m).Error
	return m, err
}

// FindHolding 查找所有非空仓的持仓
func (r PositionRepo) FindHolding(ctx context.Context) ([]models.Position, error) {
	db := r.GetDB(ctx)
	var positions []models.Position
	err := db.Table(r.GetTableName()).
		Where("state <> ?", models.PositionStateFlat).
		Order("symbol ASC").
		Find(&positions).Error
	return positions, err
}
