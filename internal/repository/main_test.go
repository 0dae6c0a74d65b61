package repository

import (
	"context"
	"path/filepath"
	"testing"

	"board/internal/db"

	"github.com/stretchr/testify/require"
)

const userID int64 = db.DefaultUserID

// newTestProvider opens a fresh schema-initialized store under t.TempDir.
func newTestProvider(t *testing.T) *db.Provider {
	t.Helper()
	p := db.NewProvider(filepath.Join(t.TempDir(), "board.db"), db.WithSchema())
	t.Cleanup(func() { _ = p.Close() })
	_, err := p.Conn(context.Background())
	require.NoError(t, err)
	return p
}

// addUser inserts a second user for multi-viewer assertions.
func addUser(t *testing.T, p *db.Provider, id int64) {
	t.Helper()
	conn, err := p.Conn(context.Background())
	require.NoError(t, err)
	_, err = conn.Exec(`INSERT INTO users(id, name, email) VALUES(?, ?, ?)`, id, "Other", "other@example.com")
	require.NoError(t, err)
}

func countRows(t *testing.T, p *db.Provider, query string, args ...any) int {
	t.Helper()
	conn, err := p.Conn(context.Background())
	require.NoError(t, err)
	var n int
	require.NoError(t, conn.QueryRow(query, args...).Scan(&n))
	return n
}
