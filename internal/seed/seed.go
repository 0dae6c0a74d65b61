// Package seed fills a board with fake posts, comments and likes for demos
// and manual testing.
package seed

import (
	"context"
	"fmt"
	"strings"

	"board/internal/models"
	"board/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
)

// Options controls how much data Run creates.
type Options struct {
	Posts       int
	MaxComments int
	LikeChance  int // percent
	UserID      int64
}

// Result counts what Run wrote.
type Result struct {
	Posts    int
	Comments int
	Likes    int
}

// Factory builds fake board content and persists it through the repositories.
type Factory struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
	faker    *gofakeit.Faker
}

// NewFactory creates a Factory. A zero seed picks a random one.
func NewFactory(posts repository.PostRepository, comments repository.CommentRepository, seed int64) *Factory {
	return &Factory{posts: posts, comments: comments, faker: gofakeit.New(seed)}
}

// PostDraft is an unsaved post.
type PostDraft struct {
	Title   string
	Content string
	Tag     models.Tag
}

// BuildPost returns a post draft without persisting it.
func (f *Factory) BuildPost() PostDraft {
	tags := make([]string, len(models.Tags))
	for i, t := range models.Tags {
		tags[i] = string(t)
	}
	return PostDraft{
		Title:   strings.TrimSuffix(f.faker.Sentence(f.faker.Number(3, 7)), "."),
		Content: f.faker.Paragraph(1, f.faker.Number(1, 4), 12, "\n"),
		Tag:     models.Tag(f.faker.RandomString(tags)),
	}
}

// BuildComment returns comment text without persisting it.
func (f *Factory) BuildComment() string {
	return f.faker.Sentence(f.faker.Number(4, 14))
}

// Run creates opts.Posts posts, each with up to opts.MaxComments comments,
// and likes posts and comments with probability opts.LikeChance.
func (f *Factory) Run(ctx context.Context, opts Options) (Result, error) {
	var res Result
	for i := 0; i < opts.Posts; i++ {
		draft := f.BuildPost()
		postID, err := f.posts.Create(ctx, opts.UserID, draft.Title, draft.Content, draft.Tag)
		if err != nil {
			return res, fmt.Errorf("seed post %d: %w", i, err)
		}
		res.Posts++

		if f.roll(opts.LikeChance) {
			if err := f.posts.Like(ctx, postID, opts.UserID); err != nil {
				return res, fmt.Errorf("seed like on post %d: %w", postID, err)
			}
			res.Likes++
		}

		comments := 0
		if opts.MaxComments > 0 {
			comments = f.faker.Number(0, opts.MaxComments)
		}
		for j := 0; j < comments; j++ {
			commentID, err := f.comments.Create(ctx, postID, f.BuildComment(), opts.UserID)
			if err != nil {
				return res, fmt.Errorf("seed comment on post %d: %w", postID, err)
			}
			res.Comments++
			if f.roll(opts.LikeChance) {
				if err := f.comments.Like(ctx, commentID, opts.UserID); err != nil {
					return res, fmt.Errorf("seed like on comment %d: %w", commentID, err)
				}
				res.Likes++
			}
		}
	}
	return res, nil
}

func (f *Factory) roll(percent int) bool {
	if percent <= 0 {
		return false
	}
	return f.faker.Number(1, 100) <= percent
}
