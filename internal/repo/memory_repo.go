package repo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dushixiang/tally/internal/models"
	"github.com/go-orz/orz"
	"gorm.io/gorm"
)

func NewMemoryRepo(db *gorm.DB) *MemoryRepo {
	return &MemoryRepo{
		Repository: orz.NewRepository[models.Memory, int64](db),
	}
}

type MemoryRepo struct {
	orz.Repository[models.Memory, int64]
}

// FindByKey 查找同一key下的全部记忆版本，按触达时间倒序
func (r MemoryRepo) FindByKey(ctx context.Context, key string) ([]models.Memory, error) {
	db := r.GetDB(ctx)
	var memories []models.Memory
	// key 在 mysql 中是保留字，走 map 条件让 gorm 自行转义
	err := db.Table(r.GetTableName()).
		Where(map[string]interface{}{"key": key}).
		Order("last_seen DESC, id DESC").
		Find(&memories).Error
	return memories, err
}

// FindByTag 标签成员查询，JSON数组包含判断按方言生成
func (r MemoryRepo) FindByTag(ctx context.Context, tag string) ([]models.Memory, error) {
	db := r.GetDB(ctx)
	var memories []models.Memory

	query := db.Table(r.GetTableName())
	switch db.Dialector.Name() {
	case "postgres":
		needle, err := json.Marshal([]string{tag})
		if err != nil {
			return nil, err
		}
		query = query.Where("tags::jsonb @> ?", string(needle))
	case "mysql":
		query = query.Where("JSON_CONTAINS(tags, JSON_QUOTE(?))", tag)
	default: // sqlite
		query = query.Where("EXISTS (SELECT 1 FROM json_each(tags) WHERE json_each.value = ?)", tag)
	}

	err := query.Order("last_seen DESC, id DESC").Find(&memories).Error
	return memories, err
}

// UpdateLastSeen 触达记忆，刷新 last_seen，返回生效行数
func (r MemoryRepo) UpdateLastSeen(ctx context.Context, id int64) (int64, error) {
	db := r.GetDB(ctx)
	result := db.Table(r.GetTableName()).
		Where("id = ?", id).
		Update("last_seen", time.Now())
	return result.RowsAffected, result.Error
}
