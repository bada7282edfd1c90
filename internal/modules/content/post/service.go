package post

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/portfolio-space/core/internal/models"
	"github.com/portfolio-space/core/internal/pkg/pagination"
	"github.com/portfolio-space/core/internal/pkg/response"
	"github.com/portfolio-space/core/internal/pkg/taskqueue"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TaskPostPublished is enqueued when a post crosses the draft to published
// boundary. The payload is PublishedPayload.
const TaskPostPublished = "post_published"

// PublishedPayload is the task payload for a publish event.
type PublishedPayload struct {
	PostID string `json:"post_id"`
}

// Enqueuer abstracts the task queue so tests can capture enqueued work.
type Enqueuer interface {
	Enqueue(ctx context.Context, taskType string, payload interface{}) (*taskqueue.Task, error)
}

type Service struct {
	db       *gorm.DB
	queue    Enqueuer
	logger   *zap.Logger
	renotify bool
}

// NewService builds the post service. renotify controls whether a post that
// was unpublished and published again triggers another notification task.
func NewService(db *gorm.DB, queue Enqueuer, logger *zap.Logger, renotify bool) *Service {
	return &Service{db: db, queue: queue, logger: logger.Named("PostService"), renotify: renotify}
}

func (s *Service) List(q pagination.Query, filter ListQuery) ([]models.PostModel, response.Pagination, error) {
	tx := s.db.Model(&models.PostModel{}).Preload("Category")
	if filter.Drafts {
		tx = tx.Order("created_at DESC")
	} else {
		tx = tx.Where("is_published = ?", true).Order("published_at DESC")
	}
	if filter.Category != "" {
		tx = tx.Joins("JOIN categories ON categories.id = posts.category_id").
			Where("categories.slug = ?", filter.Category)
	}
	if filter.Tag != "" {
		tx = tx.Where("tags LIKE ?", fmt.Sprintf("%%%q%%", filter.Tag))
	}

	var posts []models.PostModel
	pg, err := pagination.Paginate(tx, q, &posts)
	return posts, pg, err
}

func (s *Service) GetByID(id string) (*models.PostModel, error) {
	var post models.PostModel
	if err := s.db.Preload("Category").First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

func (s *Service) GetBySlug(slug string) (*models.PostModel, error) {
	var post models.PostModel
	if err := s.db.Preload("Category").First(&post, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

func (s *Service) Create(ctx context.Context, dto *CreatePostDTO) (*models.PostModel, error) {
	var count int64
	s.db.Model(&models.PostModel{}).Where("slug = ?", dto.Slug).Count(&count)
	if count > 0 {
		return nil, fmt.Errorf("slug already exists")
	}

	post := models.PostModel{
		Title:       dto.Title,
		Slug:        dto.Slug,
		Text:        dto.Text,
		Summary:     dto.Summary,
		CategoryID:  dto.CategoryID,
		Tags:        dto.Tags,
		IsPublished: dto.IsPublished,
	}
	if post.IsPublished {
		now := time.Now()
		post.PublishedAt = &now
	}

	if err := s.db.Create(&post).Error; err != nil {
		return nil, err
	}

	if post.IsPublished {
		s.notifyPublished(ctx, &post)
	}
	return &post, nil
}

// Update applies changes inside a transaction and detects the draft to
// published edge. PublishedAt is set on the first publish only; the
// notification task is enqueued after the transaction has committed.
func (s *Service) Update(ctx context.Context, id string, dto *UpdatePostDTO) (*models.PostModel, error) {
	var post models.PostModel
	var published, firstPublish bool

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&post, "id = ?", id).Error; err != nil {
			return err
		}
		wasPublished := post.IsPublished

		if dto.Title != nil {
			post.Title = *dto.Title
		}
		if dto.Slug != nil {
			post.Slug = *dto.Slug
		}
		if dto.Text != nil {
			post.Text = *dto.Text
		}
		if dto.Summary != nil {
			post.Summary = *dto.Summary
		}
		if dto.CategoryID != nil {
			if *dto.CategoryID == "" {
				post.CategoryID = nil
			} else {
				post.CategoryID = dto.CategoryID
			}
		}
		if dto.Tags != nil {
			post.Tags = *dto.Tags
		}
		if dto.IsPublished != nil {
			post.IsPublished = *dto.IsPublished
		}

		published = !wasPublished && post.IsPublished
		if published && post.PublishedAt == nil {
			firstPublish = true
			now := time.Now()
			post.PublishedAt = &now
		}

		return tx.Save(&post).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if published && (firstPublish || s.renotify) {
		s.notifyPublished(ctx, &post)
	}
	return &post, nil
}

func (s *Service) Delete(id string) error {
	s.db.Where("post_id = ?", id).Delete(&models.CommentModel{})
	return s.db.Delete(&models.PostModel{}, "id = ?", id).Error
}

func (s *Service) notifyPublished(ctx context.Context, post *models.PostModel) {
	if s.queue == nil {
		return
	}
	if _, err := s.queue.Enqueue(ctx, TaskPostPublished, PublishedPayload{PostID: post.ID}); err != nil {
		s.logger.Warn("enqueue publish notification failed",
			zap.String("post_id", post.ID), zap.Error(err))
	}
}
