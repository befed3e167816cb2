package jwtmiddleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/linemk/checkout-service/internal/domain/errs"
)

type contextKey string

const UserIDKey contextKey = "userID"

// NewJWTMiddleware создаёт middleware для проверки JWT.
func NewJWTMiddleware(secret string) func(http.Handler) http.Handler {
	if secret == "" {
		panic("jwt secret is not set")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Извлекаем токен из заголовка Authorization (формат: "Bearer <token>")
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, "missing token")
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				unauthorized(w, "invalid token format")
				return
			}
			tokenStr := parts[1]

			// Парсинг и проверка токена
			token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
				// Проверка алгоритма
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				unauthorized(w, "invalid token")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				unauthorized(w, "invalid token claims")
				return
			}

			// Извлекаем идентификатор пользователя из поля "sub"
			sub, ok := claims["sub"].(string)
			if !ok {
				unauthorized(w, "invalid token claims: sub not found")
				return
			}

			userID, err := strconv.ParseInt(sub, 10, 64)
			if err != nil {
				unauthorized(w, "invalid token claims: invalid user id")
				return
			}

			// Устанавливаем userID в контекст запроса
			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromContext извлекает userID из контекста.
func FromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(UserIDKey).(int64)
	return id, ok
}

// AdminChecker сообщает, является ли пользователь администратором.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID int64) (bool, error)
}

// AdminOnly пропускает только администраторов. Флаг проверяется по БД на каждый запрос.
// Должен стоять после NewJWTMiddleware.
func AdminOnly(log *slog.Logger, checker AdminChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := FromContext(r.Context())
			if !ok {
				unauthorized(w, "unauthorized")
				return
			}

			isAdmin, err := checker.IsAdmin(r.Context(), userID)
			if err != nil {
				if errors.Is(err, errs.ErrUnauthorized) {
					unauthorized(w, "unauthorized")
					return
				}
				log.Error("failed to check admin", slog.Int64("userID", userID), slog.Any("error", err))
				writeJSON(w, http.StatusInternalServerError, errs.KindInternal, "internal error")
				return
			}
			if !isAdmin {
				log.Warn("admin access denied", slog.Int64("userID", userID), slog.String("path", r.URL.Path))
				writeJSON(w, http.StatusForbidden, errs.KindAuthorization, errs.ErrForbidden.Message)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusUnauthorized, errs.KindAuthorization, msg)
}

// writeJSON пишет ошибку в том же формате, что и обработчики
func writeJSON(w http.ResponseWriter, status int, kind errs.Kind, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":     msg,
		"kind":      kind,
		"retryable": false,
	})
}
