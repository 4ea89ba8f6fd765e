package service

import (
	"context"
	"encoding/json"

	"github.com/dushixiang/tally/internal/models"
	"github.com/dushixiang/tally/internal/repo"
	"github.com/dushixiang/tally/internal/xe"
	"github.com/go-orz/orz"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MemoryService Agent长期记忆服务。
// key不唯一：重复写入同一key是追加新版本而不是覆盖，外部组件按 last_seen 做近因排序和淘汰。
type MemoryService struct {
	logger *zap.Logger

	*orz.Service
	*repo.MemoryRepo
}

// NewMemoryService 创建记忆服务
func NewMemoryService(db *gorm.DB, logger *zap.Logger) *MemoryService {
	return &MemoryService{
		logger:     logger,
		Service:    orz.NewService(db),
		MemoryRepo: repo.NewMemoryRepo(db),
	}
}

// UpsertMemory 写入一条记忆，last_seen 随写入自动刷新
func (s *MemoryService) UpsertMemory(ctx context.Context, key, value string, tags []string) (*models.Memory, error) {
	if key == "" || value == "" {
		return nil, xe.ErrInvalidParams
	}
	if tags == nil {
		tags = []string{}
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return nil, err
	}

	memory := &models.Memory{
		Key:   key,
		Value: value,
		Tags:  datatypes.JSON(raw),
	}
	if err := s.MemoryRepo.Create(ctx, memory); err != nil {
		return nil, err
	}
	return memory, nil
}

// Touch 触达一条记忆，仅刷新 last_seen，用于读取后的近因维护
func (s *MemoryService) Touch(ctx context.Context, id int64) error {
	rows, err := s.MemoryRepo.UpdateLastSeen(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return xe.ErrNotFound
	}
	return nil
}

// QueryByTag 按标签查询记忆，走标签索引
func (s *MemoryService) QueryByTag(ctx context.Context, tag string) ([]models.Memory, error) {
	if tag == "" {
		return nil, xe.ErrInvalidParams
	}
	return s.MemoryRepo.FindByTag(ctx, tag)
}

// RecallByKey 按key取回全部版本，按 last_seen 倒序
func (s *MemoryService) RecallByKey(ctx context.Context, key string) ([]models.Memory, error) {
	if key == "" {
		return nil, xe.ErrInvalidParams
	}
	return s.MemoryRepo.FindByKey(ctx, key)
}
