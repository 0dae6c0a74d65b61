// Package service applies the board's input conventions on top of the
// repositories.
package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"board/internal/models"
	"board/internal/repository"
)

const (
	maxTitleLen   = 300
	maxContentLen = 50000
)

type BoardService struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
}

type CreatePostInput struct {
	UserID  int64
	Title   string
	Content string
	Tag     string
}

type UpdatePostInput struct {
	PostID  int64
	Title   string
	Content string
	Tag     string
}

func NewBoardService(posts repository.PostRepository, comments repository.CommentRepository) *BoardService {
	return &BoardService{posts: posts, comments: comments}
}

func (s *BoardService) ListPosts(ctx context.Context, currentUserID int64) ([]*models.Post, error) {
	return s.posts.ListWithStats(ctx, currentUserID)
}

func (s *BoardService) GetPost(ctx context.Context, postID, currentUserID int64) (*models.Post, error) {
	return s.posts.GetByID(ctx, postID, currentUserID)
}

func (s *BoardService) ListComments(ctx context.Context, postID, currentUserID int64) ([]*models.Comment, error) {
	return s.comments.ListForPost(ctx, postID, currentUserID)
}

func (s *BoardService) CreatePost(ctx context.Context, in CreatePostInput) (int64, error) {
	title, content, tag, err := validatePost(in.Title, in.Content, in.Tag)
	if err != nil {
		return 0, err
	}
	return s.posts.Create(ctx, in.UserID, title, content, tag)
}

func (s *BoardService) UpdatePost(ctx context.Context, in UpdatePostInput) error {
	title, content, tag, err := validatePost(in.Title, in.Content, in.Tag)
	if err != nil {
		return err
	}
	return s.posts.Update(ctx, in.PostID, title, content, tag)
}

func (s *BoardService) DeletePost(ctx context.Context, postID int64) error {
	return s.posts.Delete(ctx, postID)
}

// ToggleLikePost likes the post if the user has not, otherwise unlikes it.
// It reports the resulting state.
func (s *BoardService) ToggleLikePost(ctx context.Context, postID, userID int64) (bool, error) {
	liked, err := s.posts.IsLiked(ctx, postID, userID)
	if err != nil {
		return false, err
	}
	if liked {
		return false, s.posts.Unlike(ctx, postID, userID)
	}
	return true, s.posts.Like(ctx, postID, userID)
}

func (s *BoardService) GetComment(ctx context.Context, commentID, currentUserID int64) (*models.Comment, error) {
	return s.comments.GetByID(ctx, commentID, currentUserID)
}

func (s *BoardService) CreateComment(ctx context.Context, postID int64, content string, userID int64) (int64, error) {
	content, err := validateComment(content)
	if err != nil {
		return 0, err
	}
	return s.comments.Create(ctx, postID, content, userID)
}

func (s *BoardService) UpdateComment(ctx context.Context, commentID int64, content string) error {
	content, err := validateComment(content)
	if err != nil {
		return err
	}
	return s.comments.Update(ctx, commentID, content)
}

func (s *BoardService) DeleteComment(ctx context.Context, commentID int64) error {
	return s.comments.Delete(ctx, commentID)
}

func (s *BoardService) ToggleLikeComment(ctx context.Context, commentID, userID int64) (bool, error) {
	liked, err := s.comments.IsLiked(ctx, commentID, userID)
	if err != nil {
		return false, err
	}
	if liked {
		return false, s.comments.Unlike(ctx, commentID, userID)
	}
	return true, s.comments.Like(ctx, commentID, userID)
}

func validatePost(title, content, rawTag string) (string, string, models.Tag, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return "", "", "", models.NewValidationError("Please fill in both the title and content")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "", "", "", models.NewValidationError(fmt.Sprintf("Title too long (max %d characters)", maxTitleLen))
	}
	if utf8.RuneCountInString(content) > maxContentLen {
		return "", "", "", models.NewValidationError(fmt.Sprintf("Content too long (max %d characters)", maxContentLen))
	}
	tag, ok := models.ParseTag(rawTag)
	if !ok {
		return "", "", "", models.NewValidationError(fmt.Sprintf("Unknown tag %q", rawTag))
	}
	return title, content, tag, nil
}

func validateComment(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", models.NewValidationError("Empty comments are not allowed")
	}
	if utf8.RuneCountInString(content) > maxContentLen {
		return "", models.NewValidationError(fmt.Sprintf("Comment too long (max %d characters)", maxContentLen))
	}
	return content, nil
}
