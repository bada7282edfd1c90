package taskqueue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redisc "github.com/portfolio-space/core/internal/pkg/redis"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestQueue(t *testing.T) (*Service, *Worker) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := redisc.Wrap(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	svc := NewService(rc)
	return svc, NewWorker(svc, zap.NewNop())
}

func TestEnqueueAndProcess(t *testing.T) {
	svc, worker := newTestQueue(t)
	ctx := context.Background()

	var got string
	worker.Register("greet", func(_ context.Context, payload json.RawMessage) error {
		var p struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(payload, &p); err != nil {
			return err
		}
		got = p.Name
		return nil
	})

	task, err := svc.Enqueue(ctx, "greet", map[string]string{"name": "world"})
	require.NoError(t, err)
	assert.Equal(t, TaskPending, task.Status)

	ok, err := worker.ProcessOne(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "world", got)

	stored, err := svc.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, TaskCompleted, stored.Status)
}

func TestProcessEmptyQueue(t *testing.T) {
	_, worker := newTestQueue(t)

	ok, err := worker.ProcessOne(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHandlerErrorMarksFailed(t *testing.T) {
	svc, worker := newTestQueue(t)
	ctx := context.Background()

	worker.Register("boom", func(context.Context, json.RawMessage) error {
		return errors.New("exploded")
	})

	task, err := svc.Enqueue(ctx, "boom", nil)
	require.NoError(t, err)

	_, err = worker.ProcessOne(ctx)
	require.NoError(t, err)

	stored, err := svc.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, TaskFailed, stored.Status)
	assert.Equal(t, "exploded", stored.Error)
}

func TestUnknownTaskTypeMarksFailed(t *testing.T) {
	svc, worker := newTestQueue(t)
	ctx := context.Background()

	task, err := svc.Enqueue(ctx, "mystery", nil)
	require.NoError(t, err)

	_, err = worker.ProcessOne(ctx)
	require.NoError(t, err)

	stored, err := svc.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, TaskFailed, stored.Status)
}

func TestListFiltersAndPaginates(t *testing.T) {
	svc, _ := newTestQueue(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Enqueue(ctx, "greet", nil)
		require.NoError(t, err)
	}
	_, err := svc.Enqueue(ctx, "other", nil)
	require.NoError(t, err)

	taskType := "greet"
	tasks, total, err := svc.List(ctx, 1, 2, &taskType, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, tasks, 2)
}

func TestDeleteFinished(t *testing.T) {
	svc, worker := newTestQueue(t)
	ctx := context.Background()

	worker.Register("noop", func(context.Context, json.RawMessage) error { return nil })

	done, err := svc.Enqueue(ctx, "noop", nil)
	require.NoError(t, err)
	pending, err := svc.Enqueue(ctx, "noop", nil)
	require.NoError(t, err)

	// Complete only the first task.
	_, err = worker.ProcessOne(ctx)
	require.NoError(t, err)
	// Drop the second task's queue entry but keep its record pending.
	_ = pending

	require.NoError(t, svc.DeleteFinished(ctx, time.Now().Add(time.Hour)))

	got, err := svc.GetByID(ctx, done.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	kept, err := svc.GetByID(ctx, pending.ID)
	require.NoError(t, err)
	require.NotNil(t, kept)
	assert.Equal(t, TaskPending, kept.Status)
}
