package service

import (
	"context"
	"errors"

	"github.com/dushixiang/tally/internal/models"
	"github.com/dushixiang/tally/internal/repo"
	"github.com/dushixiang/tally/internal/xe"
	"github.com/go-orz/orz"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// defaultRecentRunLimit 最近执行记录查询的默认条数
const defaultRecentRunLimit = 20

// AgentService Agent执行与事件日志服务。
// Run的ID由调用方提供（UUID字符串），事件日志按 (step, id) 有序回放。
type AgentService struct {
	logger *zap.Logger

	*orz.Service
	*repo.RunRepo
	*repo.RunEventRepo
}

// NewAgentService 创建Agent状态服务
func NewAgentService(db *gorm.DB, logger *zap.Logger) *AgentService {
	return &AgentService{
		logger:       logger,
		Service:      orz.NewService(db),
		RunRepo:      repo.NewRunRepo(db),
		RunEventRepo: repo.NewRunEventRepo(db),
	}
}

// CreateRun 创建一次执行，初始状态 queued。重复ID直接拒绝，绝不静默覆盖。
func (s *AgentService) CreateRun(ctx context.Context, id, goal string) (*models.Run, error) {
	if id == "" || goal == "" {
		return nil, xe.ErrInvalidParams
	}

	run := &models.Run{
		ID:     id,
		Goal:   goal,
		Status: models.RunStatusQueued,
	}
	err := s.Transaction(ctx, func(ctx context.Context) error {
		_, err := s.RunRepo.FindById(ctx, id)
		if err == nil {
			return xe.ErrAlreadyExists
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := s.RunRepo.Create(ctx, run); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return xe.ErrAlreadyExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("run created", zap.String("run_id", id))
	return run, nil
}

// TransitionRun 推进执行状态：queued -> running -> {success, error, stopped}。
// finalAnswer 仅在推进到 success 时落库。
func (s *AgentService) TransitionRun(ctx context.Context, id string, next models.RunStatus, finalAnswer *string) error {
	if !next.IsValid() {
		return xe.ErrInvalidParams
	}

	return s.Transaction(ctx, func(ctx context.Context) error {
		run, err := s.RunRepo.FindById(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return xe.ErrNotFound
			}
			return err
		}

		if !run.Status.CanTransitionTo(next) {
			s.logger.Warn("rejected run status transition",
				zap.String("run_id", id),
				zap.String("current", string(run.Status)),
				zap.String("next", string(next)))
			return xe.ErrStateConflict
		}

		var answer *string
		if next == models.RunStatusSuccess {
			answer = finalAnswer
		}

		rows, err := s.RunRepo.CompareAndSetStatus(ctx, id, run.Status, next, answer)
		if err != nil {
			return err
		}
		if rows == 0 {
			// 并发推进先到一步，按冲突处理交由调用方决定
			return xe.ErrStateConflict
		}
		return nil
	})
}

// AppendEvent 追加一条执行事件。Run不存在时同步拒绝，不允许产生孤儿行。
func (s *AgentService) AppendEvent(ctx context.Context, runID string, step int, eventType models.EventType, content datatypes.JSON) (*models.RunEvent, error) {
	if runID == "" || !eventType.IsValid() {
		return nil, xe.ErrInvalidParams
	}
	if len(content) == 0 {
		content = datatypes.JSON("{}")
	}

	event := &models.RunEvent{
		RunID:   runID,
		Step:    step,
		Type:    eventType,
		Content: content,
	}
	err := s.Transaction(ctx, func(ctx context.Context) error {
		run, err := s.RunRepo.FindById(ctx, runID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return xe.ErrNotFound
			}
			return err
		}
		if run.Status.IsTerminal() {
			s.logger.Warn("appending event to a finished run",
				zap.String("run_id", runID),
				zap.String("status", string(run.Status)))
		}
		return s.RunEventRepo.Create(ctx, event)
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// ListEvents 按 (step, id) 升序列出某次执行的全部事件，Run不存在时返回空列表
func (s *AgentService) ListEvents(ctx context.Context, runID string) ([]models.RunEvent, error) {
	if runID == "" {
		return nil, xe.ErrInvalidParams
	}
	return s.RunEventRepo.FindByRunID(ctx, runID)
}

// RunsByStatus 按状态查询执行记录
func (s *AgentService) RunsByStatus(ctx context.Context, status models.RunStatus) ([]models.Run, error) {
	if !status.IsValid() {
		return nil, xe.ErrInvalidParams
	}
	return s.RunRepo.FindByStatus(ctx, status)
}

// RecentRuns 获取最近创建的执行记录
func (s *AgentService) RecentRuns(ctx context.Context, limit int) ([]models.Run, error) {
	if limit <= 0 {
		limit = defaultRecentRunLimit
	}
	return s.RunRepo.FindRecent(ctx, limit)
}

// CountEvents 统计某次执行的事件数量
func (s *AgentService) CountEvents(ctx context.Context, runID string) (int64, error) {
	if runID == "" {
		return 0, xe.ErrInvalidParams
	}
	return s.RunEventRepo.CountByRunID(ctx, runID)
}

// GetRun 查询一次执行
func (s *AgentService) GetRun(ctx context.Context, id string) (models.Run, error) {
	run, err := s.RunRepo.FindById(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Run{}, xe.ErrNotFound
		}
		return models.Run{}, err
	}
	return run, nil
}

// DeleteRun 删除一次执行及其全部事件。
// 先删事件再删Run，两步在同一事务内完成，外键级联之外再兜一层底。
func (s *AgentService) DeleteRun(ctx context.Context, id string) error {
	if id == "" {
		return xe.ErrInvalidParams
	}

	return s.Transaction(ctx, func(ctx context.Context) error {
		_, err := s.RunRepo.FindById(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return xe.ErrNotFound
			}
			return err
		}
		if err := s.RunEventRepo.DeleteByRunID(ctx, id); err != nil {
			return err
		}
		return s.RunRepo.DeleteById(ctx, id)
	})
}
