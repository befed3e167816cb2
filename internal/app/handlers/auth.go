package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/checkout-service/internal/service"
)

// LoginRequest представляет структуру запроса для аутентификации с тегами валидации
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// AuthResponse представляет структуру ответа с JWT-токеном
type AuthResponse struct {
	Token string `json:"token"`
}

// LoginHandler – HTTP-обработчик для аутентификации, принимает логгер и экземпляр AuthService
func LoginHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.LoginHandler"
		logger := log.With(slog.String("op", op))

		var req LoginRequest
		if !decodeRequest(w, r, logger, &req) {
			return
		}

		token, err := authService.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			writeError(w, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, AuthResponse{Token: token})
	}
}

// RegisterHandler регистрирует пользователя с email, подтверждённым кодом
func RegisterHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RegisterHandler"
		logger := log.With(slog.String("op", op))

		var req RegisterRequest
		if !decodeRequest(w, r, logger, &req) {
			return
		}

		token, err := authService.Register(r.Context(), req.Name, req.Email, req.Password)
		if err != nil {
			writeError(w, logger, err)
			return
		}

		writeJSON(w, http.StatusCreated, AuthResponse{Token: token})
	}
}
