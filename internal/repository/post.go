package repository

import (
	"context"
	"database/sql"
	"errors"

	"board/internal/db"
	"board/internal/models"
	"board/internal/observability"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	ListWithStats(ctx context.Context, currentUserID int64) ([]*models.Post, error)
	GetByID(ctx context.Context, id, currentUserID int64) (*models.Post, error)
	Create(ctx context.Context, userID int64, title, content string, tag models.Tag) (int64, error)
	Update(ctx context.Context, postID int64, title, content string, tag models.Tag) error
	Delete(ctx context.Context, postID int64) error
	Like(ctx context.Context, postID, userID int64) error
	Unlike(ctx context.Context, postID, userID int64) error
	IsLiked(ctx context.Context, postID, userID int64) (bool, error)
	LikeCount(ctx context.Context, postID int64) (int, error)
}

type postRepository struct {
	conn Connector
	log  *observability.RepoLogger
}

// NewPostRepository creates a new post repository
func NewPostRepository(conn Connector) PostRepository {
	return &postRepository{conn: conn, log: observability.NewRepoLogger("posts")}
}

// postStatsSelect computes the aggregates per row with correlated
// subqueries. The single placeholder is the viewing user's id.
const postStatsSelect = `SELECT
	p.id, IFNULL(p.user_id, 0), p.title, p.content, p.tag, p.created_at,
	(SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id) AS like_count,
	(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id) AS comment_count,
	EXISTS(SELECT 1 FROM likes l WHERE l.post_id = p.id AND l.user_id = ?) AS liked_by_user
	FROM posts p`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*models.Post, error) {
	var p models.Post
	var created string
	if err := row.Scan(&p.ID, &p.UserID, &p.Title, &p.Content, &p.Tag, &created,
		&p.LikeCount, &p.CommentCount, &p.LikedByCurrentUser); err != nil {
		return nil, err
	}
	t, err := parseTimestamp(created)
	if err != nil {
		return nil, err
	}
	p.CreatedAt = t
	return &p, nil
}

func (r *postRepository) ListWithStats(ctx context.Context, currentUserID int64) (posts []*models.Post, err error) {
	ctx, finish := observability.StartOp(ctx, "list", "posts")
	defer func() { finish(err) }()

	conn, err := r.conn.Conn(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := conn.QueryContext(ctx,
		postStatsSelect+` ORDER BY p.created_at DESC, p.id DESC`, currentUserID)
	if err != nil {
		return nil, db.Classify(err)
	}
	defer rows.Close()

	posts = []*models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, db.Classify(err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, db.Classify(err)
	}
	r.log.LogRead(ctx, "count", len(posts), "user_id", currentUserID)
	return posts, nil
}

func (r *postRepository) GetByID(ctx context.Context, id, currentUserID int64) (post *models.Post, err error) {
	ctx, finish := observability.StartOp(ctx, "get", "posts")
	defer func() { finish(err) }()

	conn, err := r.conn.Conn(ctx)
	if err != nil {
		return nil, err
	}
	post, err = scanPost(conn.QueryRowContext(ctx, postStatsSelect+` WHERE p.id = ?`, currentUserID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NewNotFoundError("post", id)
	}
	if err != nil {
		return nil, db.Classify(err)
	}
	return post, nil
}

func (r *postRepository) Create(ctx context.Context, userID int64, title, content string, tag models.Tag) (id int64, err error) {
	ctx, finish := observability.StartOp(ctx, "create", "posts")
	defer func() { finish(err) }()

	conn, err := r.conn.Conn(ctx)
	if err != nil {
		return 0, err
	}
	res, err := conn.ExecContext(ctx,
		`INSERT INTO posts(user_id, title, content, tag) VALUES(?, ?, ?, ?)`,
		userID, title, content, string(tag))
	if err != nil {
		return 0, db.Classify(err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	r.log.LogCreate(ctx, "post_id", id, "user_id", userID, "tag", string(tag))
	return id, nil
}

func (r *postRepository) Update(ctx context.Context, postID int64, title, content string, tag models.Tag) (err error) {
	ctx, finish := observability.StartOp(ctx, "update", "posts")
	defer func() { finish(err) }()

	conn, err := r.conn.Conn(ctx)
	if err != nil {
		return err
	}
	res, err := conn.ExecContext(ctx,
		`UPDATE posts SET title = ?, content = ?, tag = ? WHERE id = ?`,
		title, content, string(tag), postID)
	if err != nil {
		return db.Classify(err)
	}
	if err := expectAffected(res, "post", postID); err != nil {
		return err
	}
	r.log.LogUpdate(ctx, "post_id", postID)
	return nil
}

// Delete removes the post; comments, likes and their comment likes go with it.
func (r *postRepository) Delete(ctx context.Context, postID int64) (err error) {
	ctx, finish := observability.StartOp(ctx, "delete", "posts")
	defer func() { finish(err) }()

	conn, err := r.conn.Conn(ctx)
	if err != nil {
		return err
	}
	res, err := conn.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, postID)
	if err != nil {
		return db.Classify(err)
	}
	if err := expectAffected(res, "post", postID); err != nil {
		return err
	}
	r.log.LogDelete(ctx, "post_id", postID)
	return nil
}

// Like is idempotent: a second like by the same user is ignored.
func (r *postRepository) Like(ctx context.Context, postID, userID int64) (err error) {
	ctx, finish := observability.StartOp(ctx, "like", "likes")
	defer func() { finish(err) }()

	conn, err := r.conn.Conn(ctx)
	if err != nil {
		return err
	}
	_, err = conn.ExecContext(ctx,
		`INSERT INTO likes(post_id, user_id) VALUES(?, ?)
		 ON CONFLICT(post_id, user_id) DO NOTHING`,
		postID, userID)
	if err != nil {
		return db.Classify(err)
	}
	r.log.LogCreate(ctx, "post_id", postID, "user_id", userID)
	return nil
}

// Unlike deletes the user's like; it is a no-op when there is none.
func (r *postRepository) Unlike(ctx context.Context, postID, userID int64) (err error) {
	ctx, finish := observability.StartOp(ctx, "unlike", "likes")
	defer func() { finish(err) }()

	conn, err := r.conn.Conn(ctx)
	if err != nil {
		return err
	}
	_, err = conn.ExecContext(ctx,
		`DELETE FROM likes WHERE post_id = ? AND user_id = ?`, postID, userID)
	if err != nil {
		return db.Classify(err)
	}
	r.log.LogDelete(ctx, "post_id", postID, "user_id", userID)
	return nil
}

func (r *postRepository) IsLiked(ctx context.Context, postID, userID int64) (liked bool, err error) {
	ctx, finish := observability.StartOp(ctx, "is_liked", "likes")
	defer func() { finish(err) }()

	conn, err := r.conn.Conn(ctx)
	if err != nil {
		return false, err
	}
	err = conn.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM likes WHERE post_id = ? AND user_id = ?)`,
		postID, userID).Scan(&liked)
	if err != nil {
		return false, db.Classify(err)
	}
	return liked, nil
}

func (r *postRepository) LikeCount(ctx context.Context, postID int64) (n int, err error) {
	ctx, finish := observability.StartOp(ctx, "like_count", "likes")
	defer func() { finish(err) }()

	conn, err := r.conn.Conn(ctx)
	if err != nil {
		return 0, err
	}
	err = conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM likes WHERE post_id = ?`, postID).Scan(&n)
	if err != nil {
		return 0, db.Classify(err)
	}
	return n, nil
}
