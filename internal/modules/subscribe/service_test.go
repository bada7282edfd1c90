package subscribe

import (
	"regexp"
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

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(gormlite.Open(memdb.TestDB(t)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return NewService(db, mail.New(mail.Config{}), zap.NewNop(), "Test Site", "https://example.com"), db
}

// backdateVerifiedAt rewrites the stored timestamp so refreshes are visible
// without sleeping.
func backdateVerifiedAt(t *testing.T, db *gorm.DB, id string, to time.Time) {
	t.Helper()
	err := db.Model(&models.SubscriberModel{}).Where("id = ?", id).
		Update("verified_at", to).Error
	require.NoError(t, err)
}

func TestSubscribeCreatesVerifiedSubscriber(t *testing.T) {
	svc, _ := newTestService(t)

	sub, err := svc.Subscribe("Reader@Example.com")
	require.NoError(t, err)

	assert.Equal(t, "reader@example.com", sub.Email)
	assert.True(t, sub.Active)
	require.NotNil(t, sub.VerifiedAt)
	assert.WithinDuration(t, time.Now(), *sub.VerifiedAt, time.Minute)

	// 32 random bytes, raw URL-safe base64.
	assert.Len(t, sub.Token, 43)
	assert.Regexp(t, regexp.MustCompile(`^[A-Za-z0-9_-]+$`), sub.Token)
}

func TestSubscribeDuplicate(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Subscribe("reader@example.com")
	require.NoError(t, err)

	_, err = svc.Subscribe("reader@example.com")
	assert.ErrorIs(t, err, ErrAlreadySubscribed)
}

func TestSubscribeDuplicateAfterUnsubscribe(t *testing.T) {
	svc, _ := newTestService(t)

	sub, err := svc.Subscribe("reader@example.com")
	require.NoError(t, err)
	token := sub.Token

	_, err = svc.UnsubscribeByToken(token)
	require.NoError(t, err)

	// Re-subscribing does not touch the lapsed row; the verify link is
	// the way back in, with the original token still honored.
	_, err = svc.Subscribe("reader@example.com")
	assert.ErrorIs(t, err, ErrAlreadySubscribed)

	back, err := svc.VerifyByToken(token)
	require.NoError(t, err)
	require.NotNil(t, back)
	assert.True(t, back.Active)
	assert.Equal(t, token, back.Token)
}

func TestVerifyRefreshesVerifiedAt(t *testing.T) {
	svc, db := newTestService(t)

	sub, err := svc.Subscribe("reader@example.com")
	require.NoError(t, err)

	stale := time.Now().Add(-24 * time.Hour)
	backdateVerifiedAt(t, db, sub.ID, stale)

	verified, err := svc.VerifyByToken(sub.Token)
	require.NoError(t, err)
	require.NotNil(t, verified)
	require.NotNil(t, verified.VerifiedAt)
	assert.True(t, verified.VerifiedAt.After(stale))
	assert.True(t, verified.Active)
}

func TestVerifyUnknownToken(t *testing.T) {
	svc, _ := newTestService(t)

	sub, err := svc.VerifyByToken("no-such-token")
	require.NoError(t, err)
	assert.Nil(t, sub)
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)

	sub, err := svc.Subscribe("reader@example.com")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		got, err := svc.UnsubscribeByToken(sub.Token)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.False(t, got.Active)
	}
}

func TestUnsubscribeKeepsVerifiedAt(t *testing.T) {
	svc, db := newTestService(t)

	sub, err := svc.Subscribe("reader@example.com")
	require.NoError(t, err)

	stale := time.Now().Add(-24 * time.Hour)
	backdateVerifiedAt(t, db, sub.ID, stale)

	_, err = svc.UnsubscribeByToken(sub.Token)
	require.NoError(t, err)

	var stored models.SubscriberModel
	require.NoError(t, db.First(&stored, "id = ?", sub.ID).Error)
	require.NotNil(t, stored.VerifiedAt)
	assert.WithinDuration(t, stale, *stored.VerifiedAt, time.Second)
}

func TestToggleRefreshesVerifiedAtOnActivation(t *testing.T) {
	svc, db := newTestService(t)

	sub, err := svc.Subscribe("reader@example.com")
	require.NoError(t, err)

	stale := time.Now().Add(-24 * time.Hour)
	backdateVerifiedAt(t, db, sub.ID, stale)

	// Deactivate: VerifiedAt untouched.
	toggled, err := svc.Toggle(sub.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Active)

	var stored models.SubscriberModel
	require.NoError(t, db.First(&stored, "id = ?", sub.ID).Error)
	require.NotNil(t, stored.VerifiedAt)
	assert.WithinDuration(t, stale, *stored.VerifiedAt, time.Second)

	// Activate: VerifiedAt refreshed.
	toggled, err = svc.Toggle(sub.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Active)
	require.NotNil(t, toggled.VerifiedAt)
	assert.True(t, toggled.VerifiedAt.After(stale))
}

func TestAdminAdd(t *testing.T) {
	svc, _ := newTestService(t)

	sub, err := svc.Add("vip@example.com")
	require.NoError(t, err)
	assert.True(t, sub.Active)
	assert.NotNil(t, sub.VerifiedAt)
}

func TestAdminAddReactivatesExisting(t *testing.T) {
	svc, db := newTestService(t)

	sub, err := svc.Subscribe("vip@example.com")
	require.NoError(t, err)
	token := sub.Token

	_, err = svc.UnsubscribeByToken(token)
	require.NoError(t, err)
	stale := time.Now().Add(-24 * time.Hour)
	backdateVerifiedAt(t, db, sub.ID, stale)

	again, err := svc.Add("VIP@example.com")
	require.NoError(t, err)
	assert.True(t, again.Active)
	assert.Equal(t, token, again.Token)
	require.NotNil(t, again.VerifiedAt)
	assert.True(t, again.VerifiedAt.After(stale))

	var count int64
	db.Model(&models.SubscriberModel{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestActiveSubscribers(t *testing.T) {
	svc, _ := newTestService(t)

	a, err := svc.Subscribe("a@example.com")
	require.NoError(t, err)
	_, err = svc.Subscribe("b@example.com")
	require.NoError(t, err)

	_, err = svc.UnsubscribeByToken(a.Token)
	require.NoError(t, err)

	subs, err := svc.ActiveSubscribers()
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "b@example.com", subs[0].Email)
}
