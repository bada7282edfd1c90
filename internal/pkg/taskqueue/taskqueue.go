package taskqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	redisc "github.com/portfolio-space/core/internal/pkg/redis"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
)

// Task is a unit of background work stored in Redis.
type Task struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Status    TaskStatus      `json:"status"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

const (
	keyPrefix = "folio:task:"
	keyIndex  = "folio:tasks:index" // sorted set: score=created_at, member=task_id
	keyQueue  = "folio:tasks:queue" // list drained by the worker
	taskTTL   = 7 * 24 * time.Hour
)

// Service manages the Redis-backed task queue. Enqueue happens after the
// enclosing database transaction has committed, so the worker never observes
// a task whose row is not yet durable.
type Service struct {
	rc *redisc.Client
}

func NewService(rc *redisc.Client) *Service {
	return &Service{rc: rc}
}

func (s *Service) taskKey(id string) string { return keyPrefix + id }

// Enqueue stores a new task record and pushes it onto the work queue.
func (s *Service) Enqueue(ctx context.Context, taskType string, payload interface{}) (*Task, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	task := &Task{
		ID:        uuid.New().String(),
		Type:      taskType,
		Payload:   payloadBytes,
		Status:    TaskPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	data, err := json.Marshal(task)
	if err != nil {
		return nil, err
	}

	pipe := s.rc.Raw().TxPipeline()
	pipe.Set(ctx, s.taskKey(task.ID), data, taskTTL)
	pipe.ZAdd(ctx, keyIndex, redis.Z{
		Score:  float64(task.CreatedAt.UnixMilli()),
		Member: task.ID,
	})
	pipe.LPush(ctx, keyQueue, task.ID)
	_, err = pipe.Exec(ctx)
	return task, err
}

// GetByID retrieves a task by its ID. Returns (nil, nil) when unknown.
func (s *Service) GetByID(ctx context.Context, id string) (*Task, error) {
	data, err := s.rc.Raw().Get(ctx, s.taskKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var task Task
	return &task, json.Unmarshal(data, &task)
}

// UpdateStatus sets a task's status and optional error text.
func (s *Service) UpdateStatus(ctx context.Context, id string, status TaskStatus, errMsg string) error {
	task, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if task == nil {
		return fmt.Errorf("task not found")
	}

	task.Status = status
	task.UpdatedAt = time.Now()
	task.Error = errMsg

	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return s.rc.Raw().Set(ctx, s.taskKey(id), data, taskTTL).Err()
}

// List returns tasks matching optional filters, newest first.
func (s *Service) List(ctx context.Context, page, size int, taskType *string, status *TaskStatus) ([]*Task, int64, error) {
	ids, err := s.rc.Raw().ZRevRange(ctx, keyIndex, 0, -1).Result()
	if err != nil {
		return nil, 0, err
	}

	var tasks []*Task
	for _, id := range ids {
		task, err := s.GetByID(ctx, id)
		if err != nil || task == nil {
			continue
		}
		if taskType != nil && task.Type != *taskType {
			continue
		}
		if status != nil && task.Status != *status {
			continue
		}
		tasks = append(tasks, task)
	}

	total := int64(len(tasks))
	start := (page - 1) * size
	end := start + size
	if start >= len(tasks) {
		return []*Task{}, total, nil
	}
	if end > len(tasks) {
		end = len(tasks)
	}
	return tasks[start:end], total, nil
}

// DeleteFinished removes completed/failed task records created before the
// given cutoff (zero time = all of them).
func (s *Service) DeleteFinished(ctx context.Context, before time.Time) error {
	ids, _ := s.rc.Raw().ZRange(ctx, keyIndex, 0, -1).Result()
	pipe := s.rc.Raw().TxPipeline()
	for _, id := range ids {
		task, err := s.GetByID(ctx, id)
		if err != nil || task == nil {
			continue
		}
		if task.Status != TaskCompleted && task.Status != TaskFailed {
			continue
		}
		if !before.IsZero() && !task.CreatedAt.Before(before) {
			continue
		}
		pipe.Del(ctx, s.taskKey(id))
		pipe.ZRem(ctx, keyIndex, id)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// HandlerFunc executes one task. A returned error marks the task failed.
type HandlerFunc func(ctx context.Context, payload json.RawMessage) error

// Worker drains the queue sequentially. Execution is at-least-once: a task
// popped but not completed before a crash is simply lost from the list, and
// re-enqueueing the same work is expected to be harmless for handlers.
type Worker struct {
	svc      *Service
	logger   *zap.Logger
	handlers map[string]HandlerFunc
}

func NewWorker(svc *Service, logger *zap.Logger) *Worker {
	return &Worker{
		svc:      svc,
		logger:   logger.Named("TaskWorker"),
		handlers: make(map[string]HandlerFunc),
	}
}

// Register binds a handler to a task type. Must be called before Run.
func (w *Worker) Register(taskType string, fn HandlerFunc) {
	w.handlers[taskType] = fn
}

// Run blocks, popping and executing tasks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		vals, err := w.svc.rc.Raw().BRPop(ctx, time.Second, keyQueue).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Warn("queue pop failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if len(vals) < 2 {
			continue
		}
		w.process(ctx, vals[1])
	}
}

// ProcessOne pops a single task without blocking. Used by tests and by
// manual drain endpoints; returns false when the queue is empty.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	id, err := w.svc.rc.Raw().RPop(ctx, keyQueue).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	w.process(ctx, id)
	return true, nil
}

func (w *Worker) process(ctx context.Context, id string) {
	task, err := w.svc.GetByID(ctx, id)
	if err != nil || task == nil {
		w.logger.Warn("task record missing", zap.String("task_id", id), zap.Error(err))
		return
	}

	handler, ok := w.handlers[task.Type]
	if !ok {
		w.logger.Warn("no handler for task type", zap.String("type", task.Type))
		_ = w.svc.UpdateStatus(ctx, id, TaskFailed, "no handler registered")
		return
	}

	_ = w.svc.UpdateStatus(ctx, id, TaskRunning, "")
	if err := handler(ctx, task.Payload); err != nil {
		w.logger.Warn("task failed", zap.String("type", task.Type), zap.String("task_id", id), zap.Error(err))
		_ = w.svc.UpdateStatus(ctx, id, TaskFailed, err.Error())
		return
	}
	_ = w.svc.UpdateStatus(ctx, id, TaskCompleted, "")
}
