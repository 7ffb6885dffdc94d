package verification

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/hospital-admin/internal/transport"
	"github.com/frahmantamala/hospital-admin/pkg/logger"
)

type ServiceAPI interface {
	Verify(ctx context.Context, dto VerifyDTO) error
	Resend(ctx context.Context, dto ResendDTO) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// VerifyOTP handles POST /auth/verify-otp
func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var dto VerifyDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.Verify(r.Context(), dto); err != nil {
		h.Logger.Warn("VerifyOTP: verification failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, MessageResponse{Message: "OTP verified successfully."})
}

// ResendOTP handles POST /auth/resend-otp
func (h *Handler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var dto ResendDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.Resend(r.Context(), dto); err != nil {
		h.Logger.Warn("ResendOTP: resend failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, MessageResponse{Message: "OTP sent to the user's email."})
}
