package comment

import (
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
	return NewService(db, mail.New(mail.Config{}), zap.NewNop(), "https://example.com", "fallback@example.com"), db
}

func seedPublishedPost(t *testing.T, db *gorm.DB) *models.PostModel {
	t.Helper()
	now := time.Now()
	p := models.PostModel{Title: "Hello", Slug: "hello", IsPublished: true, PublishedAt: &now}
	require.NoError(t, db.Create(&p).Error)
	return &p
}

func TestCreateCommentPendingModeration(t *testing.T) {
	svc, db := newTestService(t)
	seedPublishedPost(t, db)

	comment, err := svc.Create("hello", &CreateCommentDTO{
		Author: "Alice", Mail: "alice@example.com", Text: "Nice post!",
	}, "10.0.0.1", "curl/8.0")
	require.NoError(t, err)

	assert.False(t, comment.Approved)
	assert.Equal(t, "10.0.0.1", comment.IP)
}

func TestCreateCommentOnDraftRejected(t *testing.T) {
	svc, db := newTestService(t)
	p := models.PostModel{Title: "Draft", Slug: "draft"}
	require.NoError(t, db.Create(&p).Error)

	_, err := svc.Create("draft", &CreateCommentDTO{
		Author: "Alice", Mail: "alice@example.com", Text: "hi",
	}, "", "")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestListApprovedExcludesPending(t *testing.T) {
	svc, db := newTestService(t)
	seedPublishedPost(t, db)

	pending, err := svc.Create("hello", &CreateCommentDTO{
		Author: "Alice", Mail: "alice@example.com", Text: "first",
	}, "", "")
	require.NoError(t, err)
	_, err = svc.Create("hello", &CreateCommentDTO{
		Author: "Bob", Mail: "bob@example.com", Text: "second",
	}, "", "")
	require.NoError(t, err)

	comments, err := svc.ListApproved("hello")
	require.NoError(t, err)
	assert.Empty(t, comments)

	_, err = svc.Approve(pending.ID)
	require.NoError(t, err)

	comments, err = svc.ListApproved("hello")
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "first", comments[0].Text)
}

func TestApproveUnknownComment(t *testing.T) {
	svc, _ := newTestService(t)

	comment, err := svc.Approve("missing")
	require.NoError(t, err)
	assert.Nil(t, comment)
}

func TestOwnerAddressFallsBackToConfig(t *testing.T) {
	svc, db := newTestService(t)

	// No owner account yet: moderation mail goes to the configured address.
	assert.Equal(t, "fallback@example.com", svc.ownerAddress())

	owner := models.UserModel{Username: "jane", Password: "x", Mail: "jane@example.com"}
	require.NoError(t, db.Create(&owner).Error)
	assert.Equal(t, "jane@example.com", svc.ownerAddress())
}
