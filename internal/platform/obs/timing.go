package obs

import (
	"context"
	"log/slog"
	"time"
)

type ctxKey string

const RequestIDKey ctxKey = "req_id"

// WithRequestID stores id on ctx for Time and request-scoped logs.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// Time logs the duration of an operation when the returned func is deferred.
// A non-nil *errp is logged at Warn with the error attached.
//
//	defer obs.Time(ctx, logger, "planner.Plan")(&err)
func Time(ctx context.Context, logger *slog.Logger, name string) func(errp *error) {
	start := time.Now()
	if logger == nil {
		logger = slog.Default()
	}

	reqID := RequestID(ctx)

	return func(errp *error) {
		dur := time.Since(start)

		attrs := []any{
			slog.String("req_id", reqID),
			slog.String("op", name),
			slog.Int64("dur_ms", dur.Milliseconds()),
		}
		if errp != nil && *errp != nil {
			logger.WarnContext(ctx, "operation failed", append(attrs, slog.Any("err", *errp))...)
			return
		}
		logger.DebugContext(ctx, "operation done", attrs...)
	}
}
