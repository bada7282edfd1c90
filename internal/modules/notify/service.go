package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"

	"github.com/portfolio-space/core/internal/models"
	"github.com/portfolio-space/core/internal/modules/content/post"
	"github.com/portfolio-space/core/internal/pkg/mail"
	"github.com/portfolio-space/core/internal/pkg/markdown"
	"github.com/portfolio-space/core/internal/pkg/pagination"
	"github.com/portfolio-space/core/internal/pkg/response"
	"github.com/portfolio-space/core/internal/pkg/taskqueue"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrPostNotFound = errors.New("post not found")

// Mailer is the slice of the mail sender the dispatcher needs.
type Mailer interface {
	SendPostNotification(to string, data mail.PostNotificationData) error
}

// Result summarizes one dispatch round.
type Result struct {
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

type Service struct {
	db        *gorm.DB
	mailer    Mailer
	logger    *zap.Logger
	siteURL   string
	ownerName string
}

// NewService builds the dispatcher. ownerName is the configured sender
// identity, used when no owner account exists yet.
func NewService(db *gorm.DB, mailer Mailer, logger *zap.Logger, siteURL, ownerName string) *Service {
	return &Service{
		db:        db,
		mailer:    mailer,
		logger:    logger.Named("NotifyService"),
		siteURL:   siteURL,
		ownerName: ownerName,
	}
}

// RegisterWorker binds the publish task to this dispatcher.
func (s *Service) RegisterWorker(w *taskqueue.Worker) {
	w.Register(post.TaskPostPublished, func(ctx context.Context, payload json.RawMessage) error {
		var p post.PublishedPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return err
		}
		_, err := s.DispatchPostNotification(ctx, p.PostID)
		return err
	})
}

// DispatchPostNotification emails every active subscriber about a post,
// at most once per (post, subscriber) pair. A failed send is recorded and
// skipped on later rounds too; failures never abort the loop.
func (s *Service) DispatchPostNotification(ctx context.Context, postID string) (Result, error) {
	var result Result

	var p models.PostModel
	if err := s.db.WithContext(ctx).First(&p, "id = ?", postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return result, ErrPostNotFound
		}
		return result, err
	}
	// The post may have been unpublished between enqueue and execution.
	if !p.IsPublished {
		s.logger.Info("post no longer published, skipping dispatch", zap.String("post_id", postID))
		return result, nil
	}

	var owner models.UserModel
	_ = s.db.Order("created_at ASC").First(&owner).Error
	ownerName := owner.Name
	if ownerName == "" {
		ownerName = s.ownerName
	}

	var subs []models.SubscriberModel
	if err := s.db.Where("active = ?", true).Order("created_at ASC").Find(&subs).Error; err != nil {
		return result, err
	}

	for i := range subs {
		sub := &subs[i]

		var count int64
		s.db.Model(&models.NotificationLogModel{}).
			Where("post_id = ? AND subscriber_id = ?", p.ID, sub.ID).
			Count(&count)
		if count > 0 {
			result.Skipped++
			continue
		}

		data := mail.PostNotificationData{
			OwnerName:      ownerName,
			Title:          p.Title,
			Summary:        template.HTML(s.summaryHTML(&p)),
			PostURL:        fmt.Sprintf("%s/posts/%s", s.siteURL, p.Slug),
			UnsubscribeURL: fmt.Sprintf("%s/unsubscribe/%s", s.siteURL, sub.Token),
		}

		log := models.NotificationLogModel{PostID: p.ID, SubscriberID: sub.ID}
		if err := s.mailer.SendPostNotification(sub.Email, data); err != nil {
			log.Status = models.NotificationFailed
			log.Error = err.Error()
			result.Failed++
			s.logger.Warn("notification send failed",
				zap.String("post_id", p.ID),
				zap.String("email", sub.Email),
				zap.Error(err))
		} else {
			log.Status = models.NotificationSent
			result.Sent++
		}

		if err := s.db.Create(&log).Error; err != nil {
			// A concurrent dispatch already recorded this pair.
			s.logger.Warn("notification log write failed",
				zap.String("post_id", p.ID),
				zap.String("subscriber_id", sub.ID),
				zap.Error(err))
		}
	}

	s.logger.Info("dispatch finished",
		zap.String("post_id", p.ID),
		zap.Int("sent", result.Sent),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed))
	return result, nil
}

// Logs returns the notification ledger, newest first.
func (s *Service) Logs(q pagination.Query, postID string) ([]models.NotificationLogModel, response.Pagination, error) {
	tx := s.db.Model(&models.NotificationLogModel{}).Order("created_at DESC")
	if postID != "" {
		tx = tx.Where("post_id = ?", postID)
	}
	var logs []models.NotificationLogModel
	pg, err := pagination.Paginate(tx, q, &logs)
	return logs, pg, err
}

func (s *Service) summaryHTML(p *models.PostModel) string {
	if p.Summary != "" {
		return markdown.Render(p.Summary)
	}
	text := []rune(p.Text)
	if len(text) > 300 {
		text = text[:300]
	}
	return markdown.Render(string(text))
}
