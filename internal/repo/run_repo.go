package repo

import (
	"context"
	"time"

	"github.com/dushixiang/tally/internal/models"
	"github.com/go-orz/orz"
	"gorm.io/gorm"
)

func NewRunRepo(db *gorm.DB) *RunRepo {
	return &RunRepo{
		Repository: orz.NewRepository[models.Run, string](db),
	}
}

type RunRepo struct {
	orz.Repository[models.Run, string]
}

// FindByStatus 按状态查找执行记录
func (r RunRepo) FindByStatus(ctx context.Context, status models.RunStatus) ([]models.Run, error) {
	db := r.GetDB(ctx)
	var runs []models.Run
	err := db.Table(r.GetTableName()).
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&runs).Error
	return runs, err
}

// FindRecent 获取最近创建的执行记录
func (r RunRepo) FindRecent(ctx context.Context, limit int) ([]models.Run, error) {
	db := r.GetDB(ctx)
	var runs []models.Run
	err := db.Table(r.GetTableName()).
		Order("created_at DESC").
		Limit(limit).
		Find(&runs).Error
	return runs, err
}

// CompareAndSetStatus 仅当当前状态仍为 from 时推进到 to，返回生效行数。
// 带条件的UPDATE保证并发推进不会互相覆盖。
func (r RunRepo) CompareAndSetStatus(ctx context.Context, id string, from, to models.RunStatus, finalAnswer *string) (int64, error) {
	db := r.GetDB(ctx)
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	if finalAnswer != nil {
		updates["final_answer"] = *finalAnswer
	}
	result := db.Table(r.GetTableName()).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return result.RowsAffected, result.Error
}
