package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/checkout-service/internal/service"
)

type SendOTPRequest struct {
	Email string `json:"email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp" validate:"required,numeric,len=6"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// SendOTPHandler обрабатывает POST /api/users/otp/send
func SendOTPHandler(log *slog.Logger, otpService service.OTPService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.SendOTPHandler"
		logger := log.With(slog.String("op", op))

		// пустой email проверяет сервис, чтобы вернуть MissingEmail
		var req SendOTPRequest
		if !decodeRequest(w, r, logger, &req) {
			return
		}

		if err := otpService.Issue(r.Context(), req.Email); err != nil {
			writeError(w, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, MessageResponse{Message: "OTP sent successfully"})
	}
}

// VerifyOTPHandler обрабатывает POST /api/users/otp/verify
func VerifyOTPHandler(log *slog.Logger, otpService service.OTPService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.VerifyOTPHandler"
		logger := log.With(slog.String("op", op))

		var req VerifyOTPRequest
		if !decodeRequest(w, r, logger, &req) {
			return
		}

		if err := otpService.Verify(r.Context(), req.Email, req.OTP); err != nil {
			writeError(w, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, MessageResponse{Message: "OTP verified successfully"})
	}
}
