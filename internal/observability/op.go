package observability

import (
	"context"
	"time"

	"board/internal/models"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// StartOp opens a span for one data-layer operation and returns a finish
// func that records latency, error counts and span status. Call finish
// exactly once with the operation's final error.
func StartOp(ctx context.Context, operation, table string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := Tracer.Start(ctx, table+"."+operation)
	span.SetAttributes(
		attribute.String("db.system", "sqlite"),
		attribute.String("db.operation", operation),
		attribute.String("db.table", table),
	)
	return ctx, func(err error) {
		ObserveQuery(operation, table, start)
		if err != nil {
			code := models.CodeOf(err)
			CountError(operation, table, code)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			Logger.WarnContext(ctx, "database operation failed",
				"table", table, "operation", operation, "code", code, "error", err)
		}
		span.End()
	}
}
