// Package repository provides the query and command layer over the board store.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"board/internal/models"
)

// Connector hands out the shared database handle. *db.Provider implements it.
type Connector interface {
	Conn(ctx context.Context) (*sql.DB, error)
}

// StaticConnector wraps an already open handle.
type StaticConnector struct {
	DB *sql.DB
}

func (c StaticConnector) Conn(ctx context.Context) (*sql.DB, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.DB, nil
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
}

// parseTimestamp reads the TEXT timestamps SQLite writes for created_at.
func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func expectAffected(res sql.Result, resource string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return models.NewInternalError(err)
	}
	if n == 0 {
		return models.NewNotFoundError(resource, id)
	}
	return nil
}
