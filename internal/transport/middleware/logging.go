package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/frahmantamala/hospital-admin/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
)

const (
	filtered = "[FILTERED]"

	// request bodies here are small JSON documents; anything larger is not logged
	maxLoggedBody = 4 << 10
)

// sensitiveKeys are matched as substrings of lower-cased JSON keys and header names.
// Verification codes and passwords both travel in admin and auth request bodies.
var sensitiveKeys = []string{
	"password",
	"otp",
	"token",
	"authorization",
	"secret",
	"cookie",
	"api_key",
	"credential",
}

func isSensitive(name string) bool {
	name = strings.ToLower(name)
	for _, k := range sensitiveKeys {
		if strings.Contains(name, k) {
			return true
		}
	}
	return false
}

// LoggingMiddleware writes one line per request once the response is done. It carries
// the chi route pattern, the trace id and whatever the handler chain annotated, such as
// the authenticated actor. Bodies are logged at debug level with sensitive fields masked.
func LoggingMiddleware(lg *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := r.Context()
			debug := lg.Enabled(ctx, slog.LevelDebug)

			var reqBody []byte
			if debug && r.Body != nil {
				reqBody, _ = io.ReadAll(io.LimitReader(r.Body, maxLoggedBody+1))
				r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(reqBody), r.Body))
			}

			rw := &responseWriter{ResponseWriter: w, capture: debug}
			next.ServeHTTP(rw, r)

			status := rw.status()
			level := slog.LevelInfo
			switch {
			case status >= http.StatusInternalServerError:
				level = slog.LevelError
			case status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}

			args := []any{
				"trace_id", middleware.GetReqID(ctx),
				"method", r.Method,
				"route", routePattern(r),
				"path", r.URL.Path,
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"bytes", rw.size,
				"remote_addr", r.RemoteAddr,
			}
			args = append(args, logger.RequestFields(ctx)...)
			if debug {
				args = append(args,
					"headers", maskHeaders(r.Header),
					"request_body", maskBody(reqBody),
					"response_body", maskBody(rw.body.Bytes()),
				)
			}

			lg.Log(ctx, level, "http request", args...)
		})
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
	capture    bool
	body       bytes.Buffer
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.statusCode == 0 {
		rw.statusCode = code
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if rw.capture && rw.body.Len() <= maxLoggedBody {
		rw.body.Write(b)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

func (rw *responseWriter) status() int {
	if rw.statusCode == 0 {
		return http.StatusOK
	}
	return rw.statusCode
}

func maskHeaders(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for name, values := range headers {
		if isSensitive(name) {
			out[name] = filtered
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

// maskBody returns body with sensitive JSON fields replaced. Non-JSON or oversized
// bodies are summarised instead of logged.
func maskBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > maxLoggedBody {
		return "[TRUNCATED]"
	}

	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return "[NON-JSON]"
	}

	out, err := json.Marshal(maskJSON(doc))
	if err != nil {
		return "[UNLOGGABLE]"
	}
	return string(out)
}

func maskJSON(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, child := range t {
			if isSensitive(k) {
				out[k] = filtered
				continue
			}
			out[k] = maskJSON(child)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, child := range t {
			out[i] = maskJSON(child)
		}
		return out
	default:
		return t
	}
}
