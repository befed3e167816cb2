package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/linemk/checkout-service/internal/domain/models"
)

// NewToken генерирует JWT-токен для указанного пользователя с заданным временем жизни.
func NewToken(user *models.User, ttl time.Duration, secret string) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is not set")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   fmt.Sprintf("%d", user.ID),
		"email": user.Email,
		"exp":   now.Add(ttl).Unix(),
		"iat":   now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
