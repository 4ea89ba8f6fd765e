package service

import (
	"context"
	"testing"

	"github.com/dushixiang/tally/internal/models"
	"github.com/dushixiang/tally/internal/xe"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func newAgentService(t *testing.T) *AgentService {
	t.Helper()
	return NewAgentService(newTestDB(t), newTestLogger())
}

func strPtr(v string) *string {
	return &v
}

func TestCreateRun_Duplicate(t *testing.T) {
	s := newAgentService(t)
	ctx := context.Background()
	id := ulid.Make().String()

	run, err := s.CreateRun(ctx, id, "analyze market")
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusQueued, run.Status)

	_, err = s.CreateRun(ctx, id, "analyze market again")
	assert.ErrorIs(t, err, xe.ErrAlreadyExists)

	// 重复创建不得覆盖原有目标
	stored, err := s.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "analyze market", stored.Goal)
}

func TestTransitionRun_StateMachine(t *testing.T) {
	s := newAgentService(t)
	ctx := context.Background()
	id := ulid.Make().String()

	_, err := s.CreateRun(ctx, id, "goal")
	require.NoError(t, err)

	// queued 只能进入 running
	assert.ErrorIs(t, s.TransitionRun(ctx, id, models.RunStatusSuccess, nil), xe.ErrStateConflict)
	assert.ErrorIs(t, s.TransitionRun(ctx, id, models.RunStatusQueued, nil), xe.ErrStateConflict)
	require.NoError(t, s.TransitionRun(ctx, id, models.RunStatusRunning, nil))

	// running 不允许回到 queued
	assert.ErrorIs(t, s.TransitionRun(ctx, id, models.RunStatusQueued, nil), xe.ErrStateConflict)

	require.NoError(t, s.TransitionRun(ctx, id, models.RunStatusStopped, nil))

	// 终态吸收，任何推进都拒绝
	assert.ErrorIs(t, s.TransitionRun(ctx, id, models.RunStatusRunning, nil), xe.ErrStateConflict)
	assert.ErrorIs(t, s.TransitionRun(ctx, id, models.RunStatusSuccess, nil), xe.ErrStateConflict)
}

func TestTransitionRun_Errors(t *testing.T) {
	s := newAgentService(t)
	ctx := context.Background()

	assert.ErrorIs(t, s.TransitionRun(ctx, "missing", models.RunStatusRunning, nil), xe.ErrNotFound)
	assert.ErrorIs(t, s.TransitionRun(ctx, "missing", "paused", nil), xe.ErrInvalidParams)
}

func TestTransitionRun_FinalAnswerOnlyOnSuccess(t *testing.T) {
	s := newAgentService(t)
	ctx := context.Background()
	id := ulid.Make().String()

	_, err := s.CreateRun(ctx, id, "goal")
	require.NoError(t, err)
	require.NoError(t, s.TransitionRun(ctx, id, models.RunStatusRunning, nil))
	require.NoError(t, s.TransitionRun(ctx, id, models.RunStatusError, strPtr("should be ignored")))

	run, err := s.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusError, run.Status)
	assert.Nil(t, run.FinalAnswer)
}

func TestAppendEvent_ReplayOrder(t *testing.T) {
	s := newAgentService(t)
	ctx := context.Background()
	id := ulid.Make().String()

	_, err := s.CreateRun(ctx, id, "goal")
	require.NoError(t, err)

	// 乱序写入：step 2 先落库，两个 step 1 依次追加
	_, err = s.AppendEvent(ctx, id, 2, models.EventTypeObservation, datatypes.JSON(`{"result":"ok"}`))
	require.NoError(t, err)
	first, err := s.AppendEvent(ctx, id, 1, models.EventTypeThought, datatypes.JSON(`{"text":"a"}`))
	require.NoError(t, err)
	second, err := s.AppendEvent(ctx, id, 1, models.EventTypeTool, datatypes.JSON(`{"name":"quote"}`))
	require.NoError(t, err)

	events, err := s.ListEvents(ctx, id)
	require.NoError(t, err)
	require.Len(t, events, 3)
	// (step, id) 升序：同 step 用 id 做决胜
	assert.Equal(t, first.ID, events[0].ID)
	assert.Equal(t, second.ID, events[1].ID)
	assert.Equal(t, 2, events[2].Step)
	assert.Less(t, events[0].ID, events[1].ID)
}

func TestAppendEvent_Validation(t *testing.T) {
	s := newAgentService(t)
	ctx := context.Background()

	_, err := s.AppendEvent(ctx, "missing", 1, models.EventTypeLog, nil)
	assert.ErrorIs(t, err, xe.ErrNotFound)

	id := ulid.Make().String()
	_, err = s.CreateRun(ctx, id, "goal")
	require.NoError(t, err)

	_, err = s.AppendEvent(ctx, id, 1, "debug", nil)
	assert.ErrorIs(t, err, xe.ErrInvalidParams)

	// content 缺省为 {}
	event, err := s.AppendEvent(ctx, id, 1, models.EventTypeLog, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(event.Content))
}

func TestDeleteRun_Cascade(t *testing.T) {
	s := newAgentService(t)
	ctx := context.Background()
	id := ulid.Make().String()

	_, err := s.CreateRun(ctx, id, "goal")
	require.NoError(t, err)
	_, err = s.AppendEvent(ctx, id, 1, models.EventTypeThought, nil)
	require.NoError(t, err)
	_, err = s.AppendEvent(ctx, id, 2, models.EventTypeFinal, nil)
	require.NoError(t, err)

	require.NoError(t, s.DeleteRun(ctx, id))

	events, err := s.ListEvents(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, events)

	_, err = s.AppendEvent(ctx, id, 3, models.EventTypeLog, nil)
	assert.ErrorIs(t, err, xe.ErrNotFound)

	assert.ErrorIs(t, s.DeleteRun(ctx, id), xe.ErrNotFound)
}

func TestRunQueries(t *testing.T) {
	s := newAgentService(t)
	ctx := context.Background()

	_, err := s.CreateRun(ctx, "r1", "goal one")
	require.NoError(t, err)
	_, err = s.CreateRun(ctx, "r2", "goal two")
	require.NoError(t, err)
	_, err = s.CreateRun(ctx, "r3", "goal three")
	require.NoError(t, err)
	require.NoError(t, s.TransitionRun(ctx, "r2", models.RunStatusRunning, nil))

	queued, err := s.RunsByStatus(ctx, models.RunStatusQueued)
	require.NoError(t, err)
	assert.Len(t, queued, 2)
	running, err := s.RunsByStatus(ctx, models.RunStatusRunning)
	require.NoError(t, err)
	require.Len(t, running, 1)
	assert.Equal(t, "r2", running[0].ID)
	_, err = s.RunsByStatus(ctx, "paused")
	assert.ErrorIs(t, err, xe.ErrInvalidParams)

	recent, err := s.RecentRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
	recent, err = s.RecentRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, recent, 3)

	_, err = s.AppendEvent(ctx, "r2", 1, models.EventTypeThought, nil)
	require.NoError(t, err)
	_, err = s.AppendEvent(ctx, "r2", 2, models.EventTypeTool, nil)
	require.NoError(t, err)

	count, err := s.CountEvents(ctx, "r2")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	count, err = s.CountEvents(ctx, "missing")
	require.NoError(t, err)
	assert.Zero(t, count)
	_, err = s.CountEvents(ctx, "")
	assert.ErrorIs(t, err, xe.ErrInvalidParams)
}

func TestRun_FullScenario(t *testing.T) {
	s := newAgentService(t)
	ctx := context.Background()

	_, err := s.CreateRun(ctx, "r1", "buy BTC dip")
	require.NoError(t, err)
	require.NoError(t, s.TransitionRun(ctx, "r1", models.RunStatusRunning, nil))

	_, err = s.AppendEvent(ctx, "r1", 1, models.EventTypeTool, datatypes.JSON(`{"action":"quote"}`))
	require.NoError(t, err)

	require.NoError(t, s.TransitionRun(ctx, "r1", models.RunStatusSuccess, strPtr("done")))

	events, err := s.ListEvents(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventTypeTool, events[0].Type)
	assert.JSONEq(t, `{"action":"quote"}`, string(events[0].Content))

	run, err := s.GetRun(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusSuccess, run.Status)
	require.NotNil(t, run.FinalAnswer)
	assert.Equal(t, "done", *run.FinalAnswer)
	assert.False(t, run.UpdatedAt.Before(run.CreatedAt))
}
