package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/ncruces/go-sqlite3/gormlite"
	"github.com/ncruces/go-sqlite3/vfs/memdb"
	"github.com/portfolio-space/core/internal/database"
	"github.com/portfolio-space/core/internal/models"
	"github.com/portfolio-space/core/internal/pkg/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeMailer struct {
	sent     []string
	lastData mail.PostNotificationData
	failFor  map[string]error
}

func (f *fakeMailer) SendPostNotification(to string, data mail.PostNotificationData) error {
	if err, ok := f.failFor[to]; ok {
		return err
	}
	f.sent = append(f.sent, to)
	f.lastData = data
	return nil
}

func newTestEnv(t *testing.T) (*Service, *fakeMailer, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(gormlite.Open(memdb.TestDB(t)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	mailer := &fakeMailer{failFor: map[string]error{}}
	return NewService(db, mailer, zap.NewNop(), "https://example.com", "Jane Doe"), mailer, db
}

func seedPost(t *testing.T, db *gorm.DB, published bool) *models.PostModel {
	t.Helper()
	p := models.PostModel{Title: "Hello", Slug: "hello", IsPublished: published}
	if published {
		now := time.Now()
		p.PublishedAt = &now
	}
	require.NoError(t, db.Create(&p).Error)
	return &p
}

func seedSubscriber(t *testing.T, db *gorm.DB, email string, active bool) *models.SubscriberModel {
	t.Helper()
	sub := models.SubscriberModel{Email: email, Token: "token-" + email, Active: active}
	require.NoError(t, db.Create(&sub).Error)
	return &sub
}

func TestDispatchSendsToActiveSubscribers(t *testing.T) {
	svc, mailer, db := newTestEnv(t)
	p := seedPost(t, db, true)
	seedSubscriber(t, db, "a@example.com", true)
	seedSubscriber(t, db, "b@example.com", true)
	seedSubscriber(t, db, "inactive@example.com", false)

	result, err := svc.DispatchPostNotification(context.Background(), p.ID)
	require.NoError(t, err)

	assert.Equal(t, Result{Sent: 2}, result)
	assert.ElementsMatch(t, []string{"a@example.com", "b@example.com"}, mailer.sent)

	var logs []models.NotificationLogModel
	require.NoError(t, db.Find(&logs).Error)
	assert.Len(t, logs, 2)
	for _, log := range logs {
		assert.Equal(t, models.NotificationSent, log.Status)
	}
}

func TestDispatchIsIdempotent(t *testing.T) {
	svc, mailer, db := newTestEnv(t)
	p := seedPost(t, db, true)
	seedSubscriber(t, db, "a@example.com", true)

	_, err := svc.DispatchPostNotification(context.Background(), p.ID)
	require.NoError(t, err)

	result, err := svc.DispatchPostNotification(context.Background(), p.ID)
	require.NoError(t, err)

	assert.Equal(t, Result{Skipped: 1}, result)
	assert.Len(t, mailer.sent, 1)
}

func TestDispatchRecordsFailureAndContinues(t *testing.T) {
	svc, mailer, db := newTestEnv(t)
	p := seedPost(t, db, true)
	seedSubscriber(t, db, "bad@example.com", true)
	seedSubscriber(t, db, "good@example.com", true)
	mailer.failFor["bad@example.com"] = errors.New("smtp refused")

	result, err := svc.DispatchPostNotification(context.Background(), p.ID)
	require.NoError(t, err)

	assert.Equal(t, Result{Sent: 1, Failed: 1}, result)
	assert.Equal(t, []string{"good@example.com"}, mailer.sent)

	var failed models.NotificationLogModel
	require.NoError(t, db.First(&failed, "status = ?", models.NotificationFailed).Error)
	assert.Equal(t, "smtp refused", failed.Error)

	// A failed attempt is never retried automatically.
	result, err = svc.DispatchPostNotification(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, Result{Skipped: 2}, result)
}

func TestDispatchSkipsUnpublishedPost(t *testing.T) {
	svc, mailer, db := newTestEnv(t)
	p := seedPost(t, db, false)
	seedSubscriber(t, db, "a@example.com", true)

	result, err := svc.DispatchPostNotification(context.Background(), p.ID)
	require.NoError(t, err)

	assert.Equal(t, Result{}, result)
	assert.Empty(t, mailer.sent)
}

func TestDispatchUnknownPost(t *testing.T) {
	svc, _, _ := newTestEnv(t)

	_, err := svc.DispatchPostNotification(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestDispatchOwnerNameFallback(t *testing.T) {
	svc, mailer, db := newTestEnv(t)
	p := seedPost(t, db, true)
	seedSubscriber(t, db, "a@example.com", true)

	// No owner account yet: the configured name signs the mail.
	_, err := svc.DispatchPostNotification(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", mailer.lastData.OwnerName)

	owner := models.UserModel{Username: "jane", Password: "x", Name: "Jane from the DB", Mail: "jane@example.com"}
	require.NoError(t, db.Create(&owner).Error)
	seedSubscriber(t, db, "b@example.com", true)

	_, err = svc.DispatchPostNotification(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane from the DB", mailer.lastData.OwnerName)
}
