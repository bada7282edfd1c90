package comment

import (
	"errors"
	"fmt"

	"github.com/portfolio-space/core/internal/models"
	"github.com/portfolio-space/core/internal/pkg/mail"
	"github.com/portfolio-space/core/internal/pkg/pagination"
	"github.com/portfolio-space/core/internal/pkg/response"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrPostNotFound = errors.New("post not found")

type CreateCommentDTO struct {
	Author string `json:"author" binding:"required,max=50"`
	Mail   string `json:"mail" binding:"required,email"`
	Text   string `json:"text" binding:"required,max=3000"`
}

type Service struct {
	db         *gorm.DB
	mailer     *mail.Sender
	logger     *zap.Logger
	siteURL    string
	ownerEmail string
}

// NewService builds the comment service. ownerEmail is the configured
// moderation address, used when no owner account exists yet.
func NewService(db *gorm.DB, mailer *mail.Sender, logger *zap.Logger, siteURL, ownerEmail string) *Service {
	return &Service{
		db:         db,
		mailer:     mailer,
		logger:     logger.Named("CommentService"),
		siteURL:    siteURL,
		ownerEmail: ownerEmail,
	}
}

// Create stores a comment pending moderation and notifies the owner.
func (s *Service) Create(postSlug string, dto *CreateCommentDTO, ip, agent string) (*models.CommentModel, error) {
	var post models.PostModel
	if err := s.db.First(&post, "slug = ? AND is_published = ?", postSlug, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	comment := models.CommentModel{
		PostID:   post.ID,
		Author:   dto.Author,
		Mail:     dto.Mail,
		Text:     dto.Text,
		Approved: false,
		IP:       ip,
		Agent:    agent,
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, err
	}

	go s.notifyOwner(&post, &comment)
	return &comment, nil
}

// ListApproved returns approved comments for a post, oldest first.
func (s *Service) ListApproved(postSlug string) ([]models.CommentModel, error) {
	var post models.PostModel
	if err := s.db.First(&post, "slug = ?", postSlug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	var comments []models.CommentModel
	err := s.db.Where("post_id = ? AND approved = ?", post.ID, true).
		Order("created_at ASC").Find(&comments).Error
	return comments, err
}

// ListAll returns comments for moderation, newest first. pending filters to
// unapproved only.
func (s *Service) ListAll(q pagination.Query, pending bool) ([]models.CommentModel, response.Pagination, error) {
	tx := s.db.Model(&models.CommentModel{}).Order("created_at DESC")
	if pending {
		tx = tx.Where("approved = ?", false)
	}
	var comments []models.CommentModel
	pg, err := pagination.Paginate(tx, q, &comments)
	return comments, pg, err
}

func (s *Service) Approve(id string) (*models.CommentModel, error) {
	var comment models.CommentModel
	if err := s.db.First(&comment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	comment.Approved = true
	return &comment, s.db.Model(&comment).Update("approved", true).Error
}

func (s *Service) Delete(id string) error {
	return s.db.Delete(&models.CommentModel{}, "id = ?", id).Error
}

// ownerAddress resolves where moderation mail goes: the owner account's
// address when one exists, the configured owner_email otherwise.
func (s *Service) ownerAddress() string {
	var owner models.UserModel
	if err := s.db.Order("created_at ASC").First(&owner).Error; err == nil && owner.Mail != "" {
		return owner.Mail
	}
	return s.ownerEmail
}

func (s *Service) notifyOwner(post *models.PostModel, comment *models.CommentModel) {
	if s.mailer == nil {
		return
	}
	to := s.ownerAddress()
	if to == "" {
		return
	}

	err := s.mailer.SendCommentNotify(to, mail.CommentNotifyData{
		Title:   post.Title,
		Author:  comment.Author,
		Mail:    comment.Mail,
		Content: comment.Text,
		PostURL: fmt.Sprintf("%s/posts/%s", s.siteURL, post.Slug),
		IP:      comment.IP,
		Agent:   comment.Agent,
	})
	if err != nil {
		s.logger.Warn("comment notification failed",
			zap.String("comment_id", comment.ID), zap.Error(err))
	}
}
