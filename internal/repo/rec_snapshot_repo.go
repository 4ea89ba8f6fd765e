package repo

import (
	"context"

	"github.com/dushixiang/tally/internal/models"
	"github.com/go-orz/orz"
	"gorm.io/gorm"
)

func NewRecSnapshotRepo(db *gorm.DB) *RecSnapshotRepo {
	return &RecSnapshotRepo{
		Repository: orz.NewRepository[models.RecSnapshot, int64](db),
	}
}

type RecSnapshotRepo struct {
	orz.Repository[models.RecSnapshot, int64]
}

// FindLatestByInterval 获取指定周期的最近N个快照，时间倒序
func (r RecSnapshotRepo) FindLatestByInterval(ctx context.Context, interval string, limit int) ([]models.RecSnapshot, error) {
	db := r.GetDB(ctx)
	var snapshots []models.RecSnapshot
	err := db.Table(r.GetTableName()).
		Where(map[string]interface{}{"interval": interval}).
		Order("as_of DESC, id DESC").
		Limit(limit).
		Find(&snapshots).Error
	return snapshots, err
}
