package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/linemk/checkout-service/internal/domain/errs"
)

var validate = validator.New()

// ErrorResponse - единый формат ошибки API
type ErrorResponse struct {
	Error     string    `json:"error"`
	Kind      errs.Kind `json:"kind"`
	Retryable bool      `json:"retryable"`
}

// statusFor выбирает HTTP-статус по виду доменной ошибки.
func statusFor(e *errs.Error) int {
	switch e.Kind {
	case errs.KindValidation:
		return http.StatusBadRequest
	case errs.KindAuthorization:
		if e == errs.ErrForbidden {
			return http.StatusForbidden
		}
		return http.StatusUnauthorized
	case errs.KindIntegrity:
		return http.StatusConflict
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindUpstream:
		if e == errs.ErrGatewayUnavailable {
			return http.StatusServiceUnavailable
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// writeError отвечает клиенту по доменной ошибке. Всё остальное - 500 без подробностей.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	e, ok := errs.As(err)
	if !ok {
		logger.Error("internal error", slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: "internal server error",
			Kind:  errs.KindInternal,
		})
		return
	}

	status := statusFor(e)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", slog.Any("error", err))
	} else {
		logger.Warn("request rejected", slog.Any("error", err))
	}
	writeJSON(w, status, ErrorResponse{
		Error:     e.Message,
		Kind:      e.Kind,
		Retryable: e.Retryable(),
	})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msg, Kind: errs.KindValidation})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeRequest читает JSON-тело и проверяет теги validate.
func decodeRequest(w http.ResponseWriter, r *http.Request, logger *slog.Logger, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.Error("invalid request: decoding error", slog.Any("error", err))
		badRequest(w, "invalid request")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		logger.Error("invalid request: validation error", slog.Any("error", err))
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			badRequest(w, "validation error: "+verrs[0].Field()+" "+verrs[0].Tag())
			return false
		}
		badRequest(w, "validation error")
		return false
	}
	return true
}
