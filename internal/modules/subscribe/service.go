package subscribe

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/portfolio-space/core/internal/models"
	"github.com/portfolio-space/core/internal/pkg/mail"
	"github.com/portfolio-space/core/internal/pkg/pagination"
	"github.com/portfolio-space/core/internal/pkg/response"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrAlreadySubscribed = errors.New("email is already subscribed")

const tokenBytes = 32

type Service struct {
	db       *gorm.DB
	mailer   *mail.Sender
	logger   *zap.Logger
	siteName string
	siteURL  string
}

func NewService(db *gorm.DB, mailer *mail.Sender, logger *zap.Logger, siteName, siteURL string) *Service {
	return &Service{
		db:       db,
		mailer:   mailer,
		logger:   logger.Named("SubscribeService"),
		siteName: siteName,
		siteURL:  siteURL,
	}
}

// newToken generates the subscriber's permanent URL-safe token.
func newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Subscribe registers an email address. A known email, active or not, gets
// ErrAlreadySubscribed without touching the row; lapsed subscribers come
// back through their verify link or an admin toggle. New subscribers
// receive a welcome email.
func (s *Service) Subscribe(email string) (*models.SubscriberModel, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var sub models.SubscriberModel
	err := s.db.First(&sub, "email = ?", email).Error
	switch {
	case err == nil:
		return nil, ErrAlreadySubscribed
	case errors.Is(err, gorm.ErrRecordNotFound):
		token, err := newToken()
		if err != nil {
			return nil, err
		}
		now := time.Now()
		sub = models.SubscriberModel{Email: email, Token: token, Active: true, VerifiedAt: &now}
		if err := s.db.Create(&sub).Error; err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	go s.sendWelcome(&sub)
	return &sub, nil
}

// VerifyByToken confirms the address, refreshing VerifiedAt on every visit.
// Safe to call repeatedly; also the way back in for lapsed subscribers.
func (s *Service) VerifyByToken(token string) (*models.SubscriberModel, error) {
	sub, err := s.byToken(token)
	if err != nil || sub == nil {
		return sub, err
	}

	now := time.Now()
	sub.Active = true
	sub.VerifiedAt = &now
	return sub, s.db.Model(sub).Updates(map[string]interface{}{
		"active":      true,
		"verified_at": now,
	}).Error
}

// UnsubscribeByToken deactivates the subscriber. Idempotent; the row and
// token are kept so the same link keeps working.
func (s *Service) UnsubscribeByToken(token string) (*models.SubscriberModel, error) {
	sub, err := s.byToken(token)
	if err != nil || sub == nil {
		return sub, err
	}
	if !sub.Active {
		return sub, nil
	}
	sub.Active = false
	return sub, s.db.Model(sub).Update("active", false).Error
}

// ActiveSubscribers returns everyone who should receive notifications.
func (s *Service) ActiveSubscribers() ([]models.SubscriberModel, error) {
	var subs []models.SubscriberModel
	return subs, s.db.Where("active = ?", true).Order("created_at ASC").Find(&subs).Error
}

func (s *Service) List(q pagination.Query) ([]models.SubscriberModel, response.Pagination, error) {
	tx := s.db.Model(&models.SubscriberModel{}).Order("created_at DESC")
	var subs []models.SubscriberModel
	pg, err := pagination.Paginate(tx, q, &subs)
	return subs, pg, err
}

// Add creates a subscriber from the admin panel, already verified. An
// existing email is marked active again instead of erroring.
func (s *Service) Add(email string) (*models.SubscriberModel, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	now := time.Now()

	var sub models.SubscriberModel
	err := s.db.First(&sub, "email = ?", email).Error
	switch {
	case err == nil:
		sub.Active = true
		sub.VerifiedAt = &now
		return &sub, s.db.Model(&sub).Updates(map[string]interface{}{
			"active":      true,
			"verified_at": now,
		}).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		token, err := newToken()
		if err != nil {
			return nil, err
		}
		sub = models.SubscriberModel{Email: email, Token: token, Active: true, VerifiedAt: &now}
		return &sub, s.db.Create(&sub).Error
	default:
		return nil, err
	}
}

// Toggle flips the active flag. Activation refreshes VerifiedAt;
// deactivation leaves it untouched.
func (s *Service) Toggle(id string) (*models.SubscriberModel, error) {
	var sub models.SubscriberModel
	if err := s.db.First(&sub, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	sub.Active = !sub.Active
	updates := map[string]interface{}{"active": sub.Active}
	if sub.Active {
		now := time.Now()
		updates["verified_at"] = now
		sub.VerifiedAt = &now
	}
	return &sub, s.db.Model(&sub).Updates(updates).Error
}

func (s *Service) Delete(id string) error {
	s.db.Where("subscriber_id = ?", id).Delete(&models.NotificationLogModel{})
	return s.db.Delete(&models.SubscriberModel{}, "id = ?", id).Error
}

func (s *Service) byToken(token string) (*models.SubscriberModel, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil
	}
	var sub models.SubscriberModel
	if err := s.db.First(&sub, "token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

// UnsubscribeURL builds the public unsubscribe link for a subscriber.
func (s *Service) UnsubscribeURL(sub *models.SubscriberModel) string {
	return fmt.Sprintf("%s/unsubscribe/%s", s.siteURL, sub.Token)
}

func (s *Service) sendWelcome(sub *models.SubscriberModel) {
	if s.mailer == nil {
		return
	}
	err := s.mailer.SendWelcome(sub.Email, mail.WelcomeData{
		SiteName:       s.siteName,
		UnsubscribeURL: s.UnsubscribeURL(sub),
	})
	if err != nil {
		s.logger.Warn("welcome email failed", zap.String("email", sub.Email), zap.Error(err))
	}
}
