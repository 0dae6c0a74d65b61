package repository

import (
	"context"
	"database/sql"
	"errors"

	"board/internal/db"
	"board/internal/models"
	"board/internal/observability"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	ListForPost(ctx context.Context, postID, currentUserID int64) ([]*models.Comment, error)
	GetByID(ctx context.Context, id, currentUserID int64) (*models.Comment, error)
	Create(ctx context.Context, postID int64, content string, userID int64) (int64, error)
	Update(ctx context.Context, commentID int64, content string) error
	Delete(ctx context.Context, commentID int64) error
	Like(ctx context.Context, commentID, userID int64) error
	Unlike(ctx context.Context, commentID, userID int64) error
	IsLiked(ctx context.Context, commentID, userID int64) (bool, error)
}

type commentRepository struct {
	conn Connector
	log  *observability.RepoLogger
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(conn Connector) CommentRepository {
	return &commentRepository{conn: conn, log: observability.NewRepoLogger("comments")}
}

const commentStatsSelect = `SELECT
	c.id, c.post_id, c.user_id, c.content, c.created_at,
	(SELECT COUNT(*) FROM comment_likes cl WHERE cl.comment_id = c.id) AS like_count,
	EXISTS(SELECT 1 FROM comment_likes cl WHERE cl.comment_id = c.id AND cl.user_id = ?) AS liked_by_user
	FROM comments c`

func scanComment(row rowScanner) (*models.Comment, error) {
	var c models.Comment
	var created string
	if err := row.Scan(&c.ID, &c.PostID, &c.UserID, &c.Content, &created,
		&c.LikeCount, &c.LikedByCurrentUser); err != nil {
		return nil, err
	}
	t, err := parseTimestamp(created)
	if err != nil {
		return nil, err
	}
	c.CreatedAt = t
	return &c, nil
}

// ListForPost returns the post's comments oldest first.
func (r *commentRepository) ListForPost(ctx context.Context, postID, currentUserID int64) (comments []*models.Comment, err error) {
	ctx, finish := observability.StartOp(ctx, "list", "comments")
	defer func() { finish(err) }()

	conn, err := r.conn.Conn(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := conn.QueryContext(ctx,
		commentStatsSelect+` WHERE c.post_id = ? ORDER BY c.created_at ASC, c.id ASC`,
		currentUserID, postID)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()

	comments = []*models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, db.Classify(err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, db.Classify(err)
	}
	r.log.LogRead(ctx, "post_id", postID, "count", len(comments))
	return comments, nil
}

func (r *commentRepository) GetByID(ctx context.Context, id, currentUserID int64) (comment *models.Comment, err error) {
	ctx, finish := observability.StartOp(ctx, "get", "comments")
	defer func() { finish(err) }()

	conn, err := r.conn.Conn(ctx)
	if err != nil {
		return nil, err
	}
	comment, err = scanComment(conn.QueryRowContext(ctx, commentStatsSelect+` WHERE c.id = ?`, currentUserID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NewNotFoundError("comment", id)
	}
	if err != nil {
		return nil, db.Classify(err)
	}
	return comment, nil
}

func (r *commentRepository) Create(ctx context.Context, postID int64, content string, userID int64) (id int64, err error) {
	ctx, finish := observability.StartOp(ctx, "create", "comments")
	defer func() { finish(err) }()

	conn, err := r.conn.Conn(ctx)
	if err != nil {
		return 0, err
	}
	res, err := conn.ExecContext(ctx,
		`INSERT INTO comments(post_id, user_id, content) VALUES(?, ?, ?)`,
		postID, userID, content)
	if err != nil {
		return 0, db.Classify(err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	r.log.LogCreate(ctx, "comment_id", id, "post_id", postID, "user_id", userID)
	return id, nil
}

func (r *commentRepository) Update(ctx context.Context, commentID int64, content string) (err error) {
	ctx, finish := observability.StartOp(ctx, "update", "comments")
	defer func() { finish(err) }()

	conn, err := r.conn.Conn(ctx)
	if err != nil {
		return err
	}
	res, err := conn.ExecContext(ctx, `UPDATE comments SET content = ? WHERE id = ?`, content, commentID)
	if err != nil {
		return db.Classify(err)
	}
	if err := expectAffected(res, "comment", commentID); err != nil {
		return err
	}
	r.log.LogUpdate(ctx, "comment_id", commentID)
	return nil
}

// Delete removes the comment and, through the cascade, its likes.
func (r *commentRepository) Delete(ctx context.Context, commentID int64) (err error) {
	ctx, finish := observability.StartOp(ctx, "delete", "comments")
	defer func() { finish(err) }()

	conn, err := r.conn.Conn(ctx)
	if err != nil {
		return err
	}
	res, err := conn.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, commentID)
	if err != nil {
		return db.Classify(err)
	}
	if err := expectAffected(res, "comment", commentID); err != nil {
		return err
	}
	r.log.LogDelete(ctx, "comment_id", commentID)
	return nil
}

func (r *commentRepository) Like(ctx context.Context, commentID, userID int64) (err error) {
	ctx, finish := observability.StartOp(ctx, "like", "comment_likes")
	defer func() { finish(err) }()

	conn, err := r.conn.Conn(ctx)
	if err != nil {
		return err
	}
	_, err = conn.ExecContext(ctx,
		`INSERT INTO comment_likes(comment_id, user_id) VALUES(?, ?)
		 ON CONFLICT(comment_id, user_id) DO NOTHING`,
		commentID, userID)
	if err != nil {
		return db.Classify(err)
	}
	r.log.LogCreate(ctx, "comment_id", commentID, "user_id", userID)
	return nil
}

func (r *commentRepository) Unlike(ctx context.Context, commentID, userID int64) (err error) {
	ctx, finish := observability.StartOp(ctx, "unlike", "comment_likes")
	defer func() { finish(err) }()

	conn, err := r.conn.Conn(ctx)
	if err != nil {
		return err
	}
	_, err = conn.ExecContext(ctx,
		`DELETE FROM comment_likes WHERE comment_id = ? AND user_id = ?`, commentID, userID)
	if err != nil {
		return db.Classify(err)
	}
	r.log.LogDelete(ctx, "comment_id", commentID, "user_id", userID)
	return nil
}

func (r *commentRepository) IsLiked(ctx context.Context, commentID, userID int64) (liked bool, err error) {
	ctx, finish := observability.StartOp(ctx, "is_liked", "comment_likes")
	defer func() { finish(err) }()

	conn, err := r.conn.Conn(ctx)
	if err != nil {
		return false, err
	}
	err = conn.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM comment_likes WHERE comment_id = ? AND user_id = ?)`,
		commentID, userID).Scan(&liked)
	if err != nil {
		return false, db.Classify(err)
	}
	return liked, nil
}
