package middleware

import (
	"context"
	"net/http"

	"github.com/frahmantamala/hospital-admin/pkg/logger"
	"github.com/go-chi/chi/middleware"
	"github.com/google/uuid"
)

// TraceHeader carries the request id in both directions.
const TraceHeader = "X-Trace-ID"

// RequestID adopts the caller's X-Trace-ID or mints a uuid. The id is stored under chi's
// request id key, so middleware.GetReqID and the context logger agree on it, and it
// opens the request's field collector for LoggingMiddleware.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(TraceHeader)
		if traceID == "" || len(traceID) > 128 {
			traceID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, traceID)
		ctx = logger.WithRequestFields(ctx)
		ctx = logger.With(ctx, "trace_id", traceID)

		w.Header().Set(TraceHeader, traceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
