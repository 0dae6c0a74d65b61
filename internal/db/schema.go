package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Seeded user; the board has no sign-up.
const (
	DefaultUserID    = 1
	DefaultUserName  = "DefaultUser"
	DefaultUserEmail = "default@example.com"
)

const nowMillis = `(strftime('%Y-%m-%d %H:%M:%f','now'))`

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users(
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT UNIQUE NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS posts(
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		tag TEXT NOT NULL DEFAULT 'General',
		created_at TEXT NOT NULL DEFAULT ` + nowMillis + `
	);`,
	`CREATE TABLE IF NOT EXISTS comments(
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		post_id INTEGER NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		user_id INTEGER NOT NULL REFERENCES users(id),
		content TEXT NOT NULL,
		created_at TEXT NOT NULL DEFAULT ` + nowMillis + `
	);`,
	`CREATE TABLE IF NOT EXISTS likes(
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		post_id INTEGER NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		user_id INTEGER NOT NULL REFERENCES users(id),
		created_at TEXT NOT NULL DEFAULT ` + nowMillis + `,
		UNIQUE(post_id, user_id)
	);`,
	`CREATE TABLE IF NOT EXISTS comment_likes(
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		comment_id INTEGER NOT NULL REFERENCES comments(id) ON DELETE CASCADE,
		user_id INTEGER NOT NULL REFERENCES users(id),
		created_at TEXT NOT NULL DEFAULT ` + nowMillis + `,
		UNIQUE(comment_id, user_id)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_posts_created ON posts(created_at);`,
	`CREATE INDEX IF NOT EXISTS idx_comments_post_created ON comments(post_id, created_at);`,
	`CREATE INDEX IF NOT EXISTS idx_comment_likes_comment ON comment_likes(comment_id);`,
}

// Tables lists the board tables in creation order.
var Tables = []string{"users", "posts", "comments", "likes", "comment_likes"}

// EnsureSchema creates the board tables if absent and seeds the default
// user. It is safe to run on every start.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON;`); err != nil {
		return fmt.Errorf("error enabling foreign keys: %w", err)
	}
	for _, s := range schema {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("error creating tables: %w", err)
		}
	}
	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO users(id, name, email) VALUES(?, ?, ?)`,
		DefaultUserID, DefaultUserName, DefaultUserEmail)
	if err != nil {
		return fmt.Errorf("error seeding default user: %w", err)
	}
	return nil
}
