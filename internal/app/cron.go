package app

import (
	"context"
	"time"

	"github.com/portfolio-space/core/internal/models"
	pkgcron "github.com/portfolio-space/core/internal/pkg/cron"
	"github.com/portfolio-space/core/internal/pkg/taskqueue"
	"go.uber.org/zap"
)

const (
	chatTranscriptRetention = 90 * 24 * time.Hour
	finishedTaskRetention   = 7 * 24 * time.Hour
)

func (a *App) registerCronJobs(taskSvc *taskqueue.Service) {
	db := a.db
	logger := a.logger.Named("Cron")

	a.sched.Register(pkgcron.Job{
		Name:        "cleanup_chat_transcripts",
		Description: "Delete chatbot transcripts older than 90 days",
		Interval:    24 * time.Hour,
		Fn: func(ctx context.Context) error {
			cutoff := time.Now().Add(-chatTranscriptRetention)
			res := db.WithContext(ctx).
				Where("created_at < ?", cutoff).
				Delete(&models.ChatMessageModel{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				logger.Info("chat transcripts pruned", zap.Int64("rows", res.RowsAffected))
			}
			return nil
		},
	})

	a.sched.Register(pkgcron.Job{
		Name:        "cleanup_task_queue",
		Description: "Drop finished task records older than 7 days",
		Interval:    24 * time.Hour,
		Fn: func(ctx context.Context) error {
			return taskSvc.DeleteFinished(ctx, time.Now().Add(-finishedTaskRetention))
		},
	})
}
