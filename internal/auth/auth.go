// Package auth resolves the acting user. The board has no sign-in: every
// action is taken by one configured user that must exist in the store.
package auth

import (
	"context"
	"fmt"

	"board/internal/models"
	"board/internal/repository"
)

type Manager struct {
	users  repository.UserRepository
	userID int64
}

func NewManager(users repository.UserRepository, userID int64) *Manager {
	return &Manager{users: users, userID: userID}
}

// CurrentUserID returns the acting user's id after checking the row exists.
func (m *Manager) CurrentUserID(ctx context.Context) (int64, error) {
	u, err := m.CurrentUser(ctx)
	if err != nil {
		return 0, err
	}
	return u.ID, nil
}

func (m *Manager) CurrentUser(ctx context.Context) (*models.User, error) {
	u, err := m.users.GetByID(ctx, m.userID)
	if err != nil {
		return nil, fmt.Errorf("resolve current user: %w", err)
	}
	return u, nil
}
