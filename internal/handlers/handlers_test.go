package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"board/internal/auth"
	"board/internal/db"
	"board/internal/models"
	"board/internal/repository"
	"board/internal/seed"
	"board/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (*Handler, *bytes.Buffer) {
	t.Helper()
	p := db.NewProvider(filepath.Join(t.TempDir(), "board.db"), db.WithSchema())
	t.Cleanup(func() { _ = p.Close() })

	posts := repository.NewPostRepository(p)
	comments := repository.NewCommentRepository(p)
	users := repository.NewUserRepository(p)

	var out bytes.Buffer
	h := New(
		service.NewBoardService(posts, comments),
		auth.NewManager(users, db.DefaultUserID),
		seed.NewFactory(posts, comments, 1),
		&out,
	)
	return h, &out
}

func run(t *testing.T, h *Handler, args ...string) error {
	t.Helper()
	return h.Dispatch(context.Background(), args)
}

func TestDispatch_UnknownCommand(t *testing.T) {
	h, _ := newTestHandler(t)
	err := run(t, h, "frobnicate")
	assert.ErrorIs(t, err, ErrUsage)
	assert.Contains(t, err.Error(), "post new")
}

func TestInit_PrintsDefaultUser(t *testing.T) {
	h, out := newTestHandler(t)
	require.NoError(t, run(t, h, "init"))
	assert.Contains(t, out.String(), db.DefaultUserName)
	assert.Contains(t, out.String(), db.DefaultUserEmail)
}

func TestPostLifecycle(t *testing.T) {
	h, out := newTestHandler(t)

	require.NoError(t, run(t, h, "post", "new", "-title", "Hello", "-content", "World", "-tag", "question"))
	assert.Contains(t, out.String(), "#1 [Question] Hello")
	assert.Contains(t, out.String(), "0 likes  0 replies")

	out.Reset()
	require.NoError(t, run(t, h, "post", "like", "1"))
	assert.Contains(t, out.String(), "* 1 likes")

	out.Reset()
	require.NoError(t, run(t, h, "post", "like", "1"))
	assert.Contains(t, out.String(), "  0 likes")

	out.Reset()
	require.NoError(t, run(t, h, "post", "edit", "1", "-title", "Hello again"))
	assert.Contains(t, out.String(), "Hello again")
	assert.Contains(t, out.String(), "World", "unset flags keep the current content")

	out.Reset()
	require.NoError(t, run(t, h, "post", "rm", "1"))
	assert.Contains(t, out.String(), "deleted post 1")
	assert.Contains(t, out.String(), "no posts yet")
}

func TestNewPost_Validation(t *testing.T) {
	h, _ := newTestHandler(t)

	err := run(t, h, "post", "new", "-title", "  ", "-content", "x")
	assert.ErrorIs(t, err, models.ErrValidation)

	err = run(t, h, "post", "new", "-title", "t", "-content", "x", "-tag", "Announcement")
	assert.ErrorIs(t, err, models.ErrValidation)

	err = run(t, h, "post", "new", "-bogus")
	assert.ErrorIs(t, err, ErrUsage)
}

func TestPostCommands_BadIDs(t *testing.T) {
	h, _ := newTestHandler(t)

	assert.ErrorIs(t, run(t, h, "post", "rm"), ErrUsage)
	assert.ErrorIs(t, run(t, h, "post", "rm", "abc"), ErrUsage)
	assert.ErrorIs(t, run(t, h, "post", "rm", "0"), ErrUsage)
	assert.ErrorIs(t, run(t, h, "post", "rm", "99"), models.ErrNotFound)
	assert.ErrorIs(t, run(t, h, "post", "show", "99"), models.ErrNotFound)
	assert.ErrorIs(t, run(t, h, "post", "like", "99"), models.ErrConstraint)
}

func TestComments(t *testing.T) {
	h, out := newTestHandler(t)
	require.NoError(t, run(t, h, "post", "new", "-title", "T", "-content", "C"))

	out.Reset()
	require.NoError(t, run(t, h, "comments", "1"))
	assert.Contains(t, out.String(), "no replies yet")

	out.Reset()
	require.NoError(t, run(t, h, "comment", "new", "1", "-content", "first!"))
	assert.Contains(t, out.String(), "1 replies")
	assert.Contains(t, out.String(), "> #1 first!")

	assert.ErrorIs(t, run(t, h, "comment", "new", "1", "-content", " "), models.ErrValidation)
}

func TestCommentMutations_ShowRefreshedThread(t *testing.T) {
	h, out := newTestHandler(t)
	require.NoError(t, run(t, h, "post", "new", "-title", "Thread", "-content", "C"))
	require.NoError(t, run(t, h, "comment", "new", "1", "-content", "first!"))
	require.NoError(t, run(t, h, "comment", "new", "1", "-content", "second"))

	out.Reset()
	require.NoError(t, run(t, h, "comment", "edit", "1", "-content", "edited"))
	assert.Contains(t, out.String(), "#1 [General] Thread")
	assert.Contains(t, out.String(), "> #1 edited")
	assert.Contains(t, out.String(), "> #2 second")
	assert.NotContains(t, out.String(), "first!")

	out.Reset()
	require.NoError(t, run(t, h, "comment", "like", "2"))
	assert.Contains(t, out.String(), "> #2 second\n    * 1 likes")

	out.Reset()
	require.NoError(t, run(t, h, "comment", "like", "2"))
	assert.Contains(t, out.String(), "> #2 second\n      0 likes")

	out.Reset()
	require.NoError(t, run(t, h, "comment", "rm", "1"))
	assert.Contains(t, out.String(), "deleted comment 1")
	assert.Contains(t, out.String(), "1 replies")
	assert.NotContains(t, out.String(), "> #1 ")
	assert.Contains(t, out.String(), "> #2 second")
}

func TestCommentMutations_MissingComment(t *testing.T) {
	h, _ := newTestHandler(t)
	require.NoError(t, run(t, h, "post", "new", "-title", "T", "-content", "C"))

	assert.ErrorIs(t, run(t, h, "comment", "edit", "9", "-content", "x"), models.ErrNotFound)
	assert.ErrorIs(t, run(t, h, "comment", "like", "9"), models.ErrNotFound)
	assert.ErrorIs(t, run(t, h, "comment", "rm", "9"), models.ErrNotFound)
}

func TestCommentLike_JSONShowsThread(t *testing.T) {
	h, out := newTestHandler(t)
	require.NoError(t, run(t, h, "post", "new", "-title", "T", "-content", "C"))
	require.NoError(t, run(t, h, "comment", "new", "1", "-content", "hi"))
	h.JSON = true

	out.Reset()
	require.NoError(t, run(t, h, "comment", "like", "1"))
	var thread struct {
		Post     models.Post      `json:"post"`
		Comments []models.Comment `json:"comments"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &thread))
	assert.Equal(t, int64(1), thread.Post.ID)
	require.Len(t, thread.Comments, 1)
	assert.Equal(t, 1, thread.Comments[0].LikeCount)
	assert.True(t, thread.Comments[0].LikedByCurrentUser)
}

func TestSensitivePostsAreMasked(t *testing.T) {
	h, out := newTestHandler(t)
	require.NoError(t, run(t, h, "post", "new", "-title", "Ending", "-content", "the butler did it", "-tag", "Spoiler"))
	assert.NotContains(t, out.String(), "butler")
	assert.Contains(t, out.String(), "marked Spoiler")

	h.Reveal = true
	out.Reset()
	require.NoError(t, run(t, h, "posts"))
	assert.Contains(t, out.String(), "the butler did it")
}

func TestJSONOutput(t *testing.T) {
	h, out := newTestHandler(t)
	h.JSON = true
	require.NoError(t, run(t, h, "post", "new", "-title", "Hello", "-content", "World"))
	require.NoError(t, run(t, h, "post", "like", "1"))

	out.Reset()
	require.NoError(t, run(t, h, "posts"))
	var posts []models.Post
	require.NoError(t, json.Unmarshal(out.Bytes(), &posts))
	require.Len(t, posts, 1)
	assert.Equal(t, "Hello", posts[0].Title)
	assert.Equal(t, models.TagGeneral, posts[0].Tag)
	assert.Equal(t, 1, posts[0].LikeCount)
	assert.True(t, posts[0].LikedByCurrentUser)
}

func TestSeed(t *testing.T) {
	h, out := newTestHandler(t)
	require.NoError(t, run(t, h, "seed", "-posts", "3", "-comments", "0", "-likes", "0"))
	assert.Equal(t, "seeded 3 posts, 0 comments, 0 likes\n", out.String())
	assert.ErrorIs(t, run(t, h, "seed", "-posts", "-1"), ErrUsage)
}

func TestStats_PrintsOnlyBoardFamilies(t *testing.T) {
	h, out := newTestHandler(t)
	reg := prometheus.NewRegistry()
	ours := prometheus.NewCounter(prometheus.CounterOpts{Name: "board_things_total", Help: "things"})
	other := prometheus.NewCounter(prometheus.CounterOpts{Name: "unrelated_total", Help: "other"})
	reg.MustRegister(ours, other)
	ours.Add(3)
	other.Inc()
	h.gatherer = reg

	require.NoError(t, run(t, h, "stats"))
	assert.Contains(t, out.String(), "board_things_total 3")
	assert.NotContains(t, out.String(), "unrelated_total")
}

func TestWithRecover(t *testing.T) {
	cmd := WithRecover(func(context.Context, []string) error { panic("boom") })
	err := cmd(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
