package repo

import (
	"context"

	"github.com/dushixiang/tally/internal/models"
	"github.com/go-orz/orz"
	"gorm.io/gorm"
)

func NewRecPointRepo(db *gorm.DB) *RecPointRepo {
	return &RecPointRepo{
		Repository: orz.NewRepository[models.RecPoint, int64](db),
	}
}

type RecPointRepo struct {
	orz.Repository[models.RecPoint, int64]
}

// FindLatest 获取指定交易对和周期的最近N条推荐点位，时间倒序
func (r RecPointRepo) FindLatest(ctx context.Context, symbol, interval string, limit int) ([]models.RecPoint, error) {
	db := r.GetDB(ctx)
	var points []models.RecPoint
	// interval 在部分方言中是保留字，走 map 条件让 gorm 自行转义
	err := db.Table(r.GetTableName()).
		Where(map[string]interface{}{"symbol": symbol, "interval": interval}).
		Order("as_of DESC, id DESC").
		Limit(limit).
		Find(&points).Error
	return points, err
}

// FindLatestOne 获取指定交易对和周期的最近一条推荐点位
func (r RecPointRepo) FindLatestOne(ctx context.Context, symbol, interval string) (m models.RecPoint, err error) {
	db := r.GetDB(ctx)
	err = db.Table(r.GetTableName()).
		Where(map[string]interface{}{"symbol": symbol, "interval": interval}).
		Order("as_of DESC, id DESC").
		First(&m).Error
	return m, err
}
