// Package otp хранит одноразовые коды подтверждения email.
//
// Хранилище по умолчанию (MemoryStore) эфемерно: коды и отметки о подтверждении
// живут только в памяти процесса и теряются при рестарте. Для нескольких
// инстансов используется postgres-реализация из пакета storage.
package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/linemk/checkout-service/internal/domain/models"
)

// Store - хранилище OTP-кодов с TTL. Реализация обязана сериализовать
// проверку и удаление кода для одного email.
type Store interface {
	// SaveChallenge перезаписывает текущий код для email.
	SaveChallenge(ctx context.Context, c models.OTPChallenge) error
	// ConsumeChallenge проверяет код: errs.ErrNoChallenge, errs.ErrExpired (запись удаляется),
	// errs.ErrInvalidCode (запись остаётся). При успехе код удаляется, email помечается
	// подтверждённым до verifiedUntil.
	ConsumeChallenge(ctx context.Context, email, code string, now, verifiedUntil time.Time) error
	// DeleteChallenge удаляет код, только если он совпадает с текущим.
	DeleteChallenge(ctx context.Context, email, code string) error
	IsVerified(ctx context.Context, email string, now time.Time) (bool, error)
	ClearVerified(ctx context.Context, email string) error
	// PurgeExpired удаляет всё просроченное и возвращает число удалённых записей.
	PurgeExpired(ctx context.Context, now time.Time) (int, error)
}

const (
	codeMin = 100000
	codeMax = 999999
)

// GenerateCode возвращает равномерно распределённый код из 6 цифр (100000–999999).
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+codeMin), nil
}
