package repository

import (
	"context"
	"database/sql"
	"errors"

	"board/internal/db"
	"board/internal/models"
	"board/internal/observability"
)

// UserRepository reads the users table. Users are seeded, never written here.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

type userRepository struct {
	conn Connector
}

func NewUserRepository(conn Connector) UserRepository {
	return &userRepository{conn: conn}
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (user *models.User, err error) {
	ctx, finish := observability.StartOp(ctx, "get", "users")
	defer func() { finish(err) }()

	conn, err := r.conn.Conn(ctx)
	if err != nil {
		return nil, err
	}
	var u models.User
	err = conn.QueryRowContext(ctx, `SELECT id, name, email FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Name, &u.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NewNotFoundError("user", id)
	}
	if err != nil {
		return nil, db.Classify(err)
	}
	return &u, nil
}
