package repo

import (
	"context"

	"github.com/dushixiang/tally/internal/models"
	"github.com/go-orz/orz"
	"gorm.io/gorm"
)

func NewRunEventRepo(db *gorm.DB) *RunEventRepo {
	return &RunEventRepo{
		Repository: orz.NewRepository[models.RunEvent, int64](db),
	}
}

type RunEventRepo struct {
	orz.Repository[models.RunEvent, int64]
}

// FindByRunID 获取某次执行的全部事件，按 (step, id) 升序回放
func (r RunEventRepo) FindByRunID(ctx context.Context, runID string) ([]models.RunEvent, error) {
	db := r.GetDB(ctx)
	var events []models.RunEvent
	err := db.Table(r.GetTableName()).
		Where("run_id = ?", runID).
		Order("step ASC, id ASC").
		Find(&events).Error
	return events, err
}

// CountByRunID 统计某次执行的事件数量
func (r RunEventRepo) CountByRunID(ctx context.Context, runID string) (int64, error) {
	var count int64
	db := r.GetDB(ctx)
	err := db.Table(r.GetTableName()).
		Where("run_id = ?", runID).
		Count(&count).Error
	return count, err
}

// DeleteByRunID 删除某次执行的全部事件
func (r RunEventRepo) DeleteByRunID(ctx context.Context, runID string) error {
	db := r.GetDB(ctx)
	return db.Where("run_id = ?", runID).Delete(&models.RunEvent{}).Error
}
