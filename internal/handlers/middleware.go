package handlers

import (
	"context"
	"fmt"

	"board/internal/observability"
)

// WithRecover wraps a Command and turns a panic into an error so one bad
// command cannot take the process down without a message. It also gives
// each command its own correlation id for the logs.
func WithRecover(next Command) Command {
	return func(ctx context.Context, args []string) (err error) {
		ctx = observability.WithCorrelationID(ctx)
		defer func() {
			if rec := recover(); rec != nil {
				observability.Logger.ErrorContext(ctx, "command panicked", "panic", rec, "args", args)
				err = fmt.Errorf("internal error: %v", rec)
			}
		}()
		return next(ctx, args)
	}
}
