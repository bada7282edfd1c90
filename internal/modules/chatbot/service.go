package chatbot

import (
	"context"
	"hash/fnv"
	"strings"

	"github.com/portfolio-space/core/internal/config"
	"github.com/portfolio-space/core/internal/models"
	"github.com/portfolio-space/core/internal/pkg/pagination"
	"github.com/portfolio-space/core/internal/pkg/response"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MaxMessageLen is the longest visitor message accepted, in runes.
const MaxMessageLen = 1200

// fallbackReplies are served when the model call fails, so the widget
// always answers something.
var fallbackReplies = []string{
	"I'm having a little trouble thinking right now. Could you try again in a moment?",
	"Sorry, I couldn't reach my brain just now. Feel free to browse the projects in the meantime!",
	"Hmm, something went wrong on my end. Try asking again shortly.",
}

type Service struct {
	db     *gorm.DB
	cfg    config.ChatbotConfig
	logger *zap.Logger
}

func NewService(db *gorm.DB, cfg config.ChatbotConfig, logger *zap.Logger) *Service {
	return &Service{db: db, cfg: cfg, logger: logger.Named("ChatbotService")}
}

// Chat produces a reply for a visitor message. The transcript row is
// written whether the model answered or a fallback was used.
func (s *Service) Chat(ctx context.Context, ip, message string) (string, bool) {
	var reply string
	fellBack := false

	if s.cfg.Enable {
		answer, err := callProvider(ctx, s.cfg, message)
		if err != nil {
			s.logger.Warn("provider call failed", zap.String("ip", ip), zap.Error(err))
			reply = s.fallback(message)
			fellBack = true
		} else {
			reply = strings.TrimSpace(answer)
		}
	} else {
		reply = s.fallback(message)
		fellBack = true
	}

	row := models.ChatMessageModel{
		IP:               ip,
		UserMessage:      message,
		AssistantMessage: reply,
	}
	if err := s.db.Create(&row).Error; err != nil {
		s.logger.Warn("transcript write failed", zap.Error(err))
	}

	return reply, fellBack
}

// fallback picks a deterministic canned reply for the message.
func (s *Service) fallback(message string) string {
	h := fnv.New32a()
	h.Write([]byte(message))
	return fallbackReplies[int(h.Sum32())%len(fallbackReplies)]
}

// History returns stored transcripts, newest first.
func (s *Service) History(q pagination.Query) ([]models.ChatMessageModel, response.Pagination, error) {
	tx := s.db.Model(&models.ChatMessageModel{}).Order("created_at DESC")
	var rows []models.ChatMessageModel
	pg, err := pagination.Paginate(tx, q, &rows)
	return rows, pg, err
}
