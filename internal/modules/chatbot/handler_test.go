package chatbot

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/ncruces/go-sqlite3/gormlite"
	"github.com/ncruces/go-sqlite3/vfs/memdb"
	"github.com/portfolio-space/core/internal/config"
	"github.com/portfolio-space/core/internal/database"
	"github.com/portfolio-space/core/internal/middleware"
	"github.com/portfolio-space/core/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestRouter(t *testing.T, limit int) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(gormlite.Open(memdb.TestDB(t)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	// Provider disabled: every answer comes from the canned fallbacks.
	svc := NewService(db, config.ChatbotConfig{Enable: false}, zap.NewNop())

	r := gin.New()
	rg := r.Group("")
	rateLimitMW := middleware.RateLimit(rdb, "chatbot", limit, time.Minute)
	NewHandler(svc).RegisterRoutes(rg, rateLimitMW, middleware.Auth())
	return r, db
}

func postMessage(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/chatbot/message", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMessageEmptyRejected(t *testing.T) {
	r, db := newTestRouter(t, 20)

	w := postMessage(r, `{"message": "   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	db.Model(&models.ChatMessageModel{}).Count(&count)
	assert.Zero(t, count)
}

func TestMessageTooLongRejected(t *testing.T) {
	r, db := newTestRouter(t, 20)

	long := strings.Repeat("a", MaxMessageLen+1)
	w := postMessage(r, fmt.Sprintf(`{"message": %q}`, long))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	db.Model(&models.ChatMessageModel{}).Count(&count)
	assert.Zero(t, count)
}

func TestMessageAtMaxLengthAccepted(t *testing.T) {
	r, _ := newTestRouter(t, 20)

	exact := strings.Repeat("a", MaxMessageLen)
	w := postMessage(r, fmt.Sprintf(`{"message": %q}`, exact))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestFallbackReplyAndTranscript(t *testing.T) {
	r, db := newTestRouter(t, 20)

	w := postMessage(r, `{"message": "What projects have you built?"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"fallback":true`)

	var row models.ChatMessageModel
	require.NoError(t, db.First(&row).Error)
	assert.Equal(t, "What projects have you built?", row.UserMessage)
	assert.NotEmpty(t, row.AssistantMessage)
}

func TestRateLimitEnforced(t *testing.T) {
	r, _ := newTestRouter(t, 3)

	for i := 0; i < 3; i++ {
		w := postMessage(r, `{"message": "hi"}`)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := postMessage(r, `{"message": "hi"}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestHistoryRequiresAuth(t *testing.T) {
	r, _ := newTestRouter(t, 20)

	req := httptest.NewRequest(http.MethodGet, "/chatbot/history", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
