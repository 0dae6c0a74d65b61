package db

import (
	"context"
	"database/sql"
	"errors"

	"board/internal/models"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Classify maps driver errors onto the models error kinds. Errors that
// already carry a kind are returned unchanged.
func Classify(err error) error {
	if err == nil || models.CodeOf(err) != "" {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, sql.ErrConnDone) {
		return models.NewUnavailableError(err)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &models.AppError{Code: models.CodeNotFound, Message: "not found", Err: err}
	}

	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() & 0xff {
		case sqlite3.SQLITE_CONSTRAINT:
			return models.NewConstraintError(constraintMessage(se.Code()), err)
		case sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_NOTADB, sqlite3.SQLITE_IOERR, sqlite3.SQLITE_READONLY:
			return models.NewUnavailableError(err)
		}
	}
	return models.NewInternalError(err)
}

func constraintMessage(code int) string {
	switch code {
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return "foreign key constraint failed"
	case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		return "not null constraint failed"
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return "unique constraint failed"
	}
	return "constraint failed"
}
