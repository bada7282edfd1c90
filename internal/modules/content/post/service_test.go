package post

import (
	"context"
	"testing"

	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/ncruces/go-sqlite3/gormlite"
	"github.com/ncruces/go-sqlite3/vfs/memdb"
	"github.com/portfolio-space/core/internal/database"
	"github.com/portfolio-space/core/internal/pkg/taskqueue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeQueue struct {
	payloads []PublishedPayload
}

func (f *fakeQueue) Enqueue(_ context.Context, taskType string, payload interface{}) (*taskqueue.Task, error) {
	if taskType == TaskPostPublished {
		f.payloads = append(f.payloads, payload.(PublishedPayload))
	}
	return &taskqueue.Task{Type: taskType}, nil
}

func newTestService(t *testing.T, renotify bool) (*Service, *fakeQueue) {
	t.Helper()
	db, err := gorm.Open(gormlite.Open(memdb.TestDB(t)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	queue := &fakeQueue{}
	return NewService(db, queue, zap.NewNop(), renotify), queue
}

func TestCreateDraftDoesNotNotify(t *testing.T) {
	svc, queue := newTestService(t, true)

	p, err := svc.Create(context.Background(), &CreatePostDTO{
		Title: "Hello", Slug: "hello",
	})
	require.NoError(t, err)

	assert.False(t, p.IsPublished)
	assert.Nil(t, p.PublishedAt)
	assert.Empty(t, queue.payloads)
}

func TestCreatePublishedNotifies(t *testing.T) {
	svc, queue := newTestService(t, true)

	p, err := svc.Create(context.Background(), &CreatePostDTO{
		Title: "Hello", Slug: "hello", IsPublished: true,
	})
	require.NoError(t, err)

	assert.True(t, p.IsPublished)
	require.NotNil(t, p.PublishedAt)
	require.Len(t, queue.payloads, 1)
	assert.Equal(t, p.ID, queue.payloads[0].PostID)
}

func TestPublishTransitionSetsPublishedAtOnce(t *testing.T) {
	svc, queue := newTestService(t, true)
	ctx := context.Background()

	p, err := svc.Create(ctx, &CreatePostDTO{Title: "Hello", Slug: "hello"})
	require.NoError(t, err)

	published := true
	p, err = svc.Update(ctx, p.ID, &UpdatePostDTO{IsPublished: &published})
	require.NoError(t, err)
	require.NotNil(t, p.PublishedAt)
	firstPublishedAt := *p.PublishedAt
	require.Len(t, queue.payloads, 1)

	// Unpublish and publish again: timestamp survives.
	unpublished := false
	p, err = svc.Update(ctx, p.ID, &UpdatePostDTO{IsPublished: &unpublished})
	require.NoError(t, err)
	assert.False(t, p.IsPublished)
	require.NotNil(t, p.PublishedAt)

	p, err = svc.Update(ctx, p.ID, &UpdatePostDTO{IsPublished: &published})
	require.NoError(t, err)
	assert.Equal(t, firstPublishedAt.Unix(), p.PublishedAt.Unix())
}

func TestRepublishNotifiesWhenEnabled(t *testing.T) {
	svc, queue := newTestService(t, true)
	ctx := context.Background()

	p, err := svc.Create(ctx, &CreatePostDTO{Title: "Hello", Slug: "hello", IsPublished: true})
	require.NoError(t, err)

	published, unpublished := true, false
	_, err = svc.Update(ctx, p.ID, &UpdatePostDTO{IsPublished: &unpublished})
	require.NoError(t, err)
	_, err = svc.Update(ctx, p.ID, &UpdatePostDTO{IsPublished: &published})
	require.NoError(t, err)

	assert.Len(t, queue.payloads, 2)
}

func TestRepublishSilentWhenDisabled(t *testing.T) {
	svc, queue := newTestService(t, false)
	ctx := context.Background()

	p, err := svc.Create(ctx, &CreatePostDTO{Title: "Hello", Slug: "hello", IsPublished: true})
	require.NoError(t, err)

	published, unpublished := true, false
	_, err = svc.Update(ctx, p.ID, &UpdatePostDTO{IsPublished: &unpublished})
	require.NoError(t, err)
	_, err = svc.Update(ctx, p.ID, &UpdatePostDTO{IsPublished: &published})
	require.NoError(t, err)

	// Only the first publish is announced.
	assert.Len(t, queue.payloads, 1)
}

func TestEditingPublishedPostDoesNotNotify(t *testing.T) {
	svc, queue := newTestService(t, true)
	ctx := context.Background()

	p, err := svc.Create(ctx, &CreatePostDTO{Title: "Hello", Slug: "hello", IsPublished: true})
	require.NoError(t, err)
	require.Len(t, queue.payloads, 1)

	newTitle := "Hello, world"
	_, err = svc.Update(ctx, p.ID, &UpdatePostDTO{Title: &newTitle})
	require.NoError(t, err)

	assert.Len(t, queue.payloads, 1)
}

func TestDuplicateSlugRejected(t *testing.T) {
	svc, _ := newTestService(t, true)
	ctx := context.Background()

	_, err := svc.Create(ctx, &CreatePostDTO{Title: "One", Slug: "same"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, &CreatePostDTO{Title: "Two", Slug: "same"})
	assert.EqualError(t, err, "slug already exists")
}

func TestUpdateMissingPost(t *testing.T) {
	svc, _ := newTestService(t, true)

	title := "nope"
	p, err := svc.Update(context.Background(), "missing-id", &UpdatePostDTO{Title: &title})
	require.NoError(t, err)
	assert.Nil(t, p)
}
