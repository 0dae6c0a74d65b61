package seed

import (
	"context"
	"path/filepath"
	"testing"

	"board/internal/db"
	"board/internal/models"
	"board/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPost_UsesKnownTags(t *testing.T) {
	f := NewFactory(nil, nil, 7)
	for i := 0; i < 20; i++ {
		p := f.BuildPost()
		assert.NotEmpty(t, p.Title)
		assert.NotEmpty(t, p.Content)
		_, known := models.ParseTag(string(p.Tag))
		assert.True(t, known, "unexpected tag %q", p.Tag)
	}
	assert.NotEmpty(t, f.BuildComment())
}

func TestRun_PersistsThroughRepositories(t *testing.T) {
	p := db.NewProvider(filepath.Join(t.TempDir(), "board.db"), db.WithSchema())
	t.Cleanup(func() { _ = p.Close() })
	posts := repository.NewPostRepository(p)
	comments := repository.NewCommentRepository(p)
	ctx := context.Background()

	res, err := NewFactory(posts, comments, 42).Run(ctx, Options{
		Posts:       5,
		MaxComments: 3,
		LikeChance:  100,
		UserID:      db.DefaultUserID,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, res.Posts)
	assert.Equal(t, res.Posts+res.Comments, res.Likes)

	list, err := posts.ListWithStats(ctx, db.DefaultUserID)
	require.NoError(t, err)
	require.Len(t, list, 5)

	total := 0
	for _, post := range list {
		assert.Equal(t, 1, post.LikeCount)
		assert.True(t, post.LikedByCurrentUser)
		total += post.CommentCount
	}
	assert.Equal(t, res.Comments, total)
}

func TestRun_StopsOnRepositoryError(t *testing.T) {
	p := db.NewProvider(filepath.Join(t.TempDir(), "board.db"), db.WithSchema())
	t.Cleanup(func() { _ = p.Close() })

	_, err := NewFactory(repository.NewPostRepository(p), repository.NewCommentRepository(p), 1).
		Run(context.Background(), Options{Posts: 2, UserID: 999})
	assert.ErrorIs(t, err, models.ErrConstraint)
}
