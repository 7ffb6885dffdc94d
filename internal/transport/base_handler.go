package transport

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/hospital-admin/internal"
	"github.com/frahmantamala/hospital-admin/pkg/logger"
	"github.com/go-chi/chi"
)

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes an error response in the same envelope service errors use.
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	h.Logger.Warn("http error", "status", status, "message", message)
	h.writeAppError(w, errorForStatus(status, message))
}

// HandleServiceError maps an AppError to its status; anything else is a 500 with the
// cause kept out of the response.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, err error) {
	if appErr, ok := internal.IsAppError(err); ok {
		if appErr.StatusCode >= http.StatusInternalServerError {
			h.Logger.Error("service error", "error", appErr.Error())
		}
		h.writeAppError(w, appErr)
		return
	}

	h.Logger.Error("unhandled service error", "error", err)
	h.writeAppError(w, internal.NewInternalError("internal server error", err))
}

func (h *BaseHandler) writeAppError(w http.ResponseWriter, appErr *internal.AppError) {
	status, body := appErr.ToHTTPResponse()
	h.WriteJSON(w, status, body)
}

// ExtractTokenFromHeader extracts Bearer token from Authorization header
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ""
	}

	return authHeader[7:]
}

// ActorFromRequest returns the authenticated caller, or nil when the request did not pass
// through the auth middleware. Services decide what a nil actor means.
func (h *BaseHandler) ActorFromRequest(r *http.Request) *internal.Actor {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok {
		return nil
	}
	return actor
}

// Int64URLParam parses a positive integer path parameter.
func (h *BaseHandler) Int64URLParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, internal.NewValidationFieldError(name, name+" must be a positive integer", internal.ErrCodeInvalidID)
	}
	return id, nil
}

func errorForStatus(status int, message string) *internal.AppError {
	switch status {
	case http.StatusBadRequest:
		return internal.NewValidationError(message, internal.ErrCodeValidationFailed)
	case http.StatusUnauthorized:
		return internal.NewUnauthorizedError(message, internal.ErrCodeInvalidToken)
	case http.StatusForbidden:
		return internal.NewForbiddenError(message, internal.ErrCodeInsufficientPrivilege)
	case http.StatusNotFound:
		return internal.NewNotFoundError(message, "NOT_FOUND")
	default:
		appErr := internal.NewInternalError(message, nil)
		appErr.StatusCode = status
		return appErr
	}
}
