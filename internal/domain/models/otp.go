package models

import (
	"crypto/subtle"
	"time"

	"github.com/linemk/checkout-service/internal/domain/errs"
)

// OTPChallenge - одноразовый код, привязанный к email (аккаунта может ещё не быть)
type OTPChallenge struct {
	Email     string
	Code      string
	ExpiresAt time.Time
}

// Expired - истёк ли срок действия кода на момент now
func (c OTPChallenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Check сверяет код. Срок проверяется раньше совпадения кода.
func (c OTPChallenge) Check(code string, now time.Time) error {
	if c.Expired(now) {
		return errs.ErrExpired
	}
	if subtle.ConstantTimeCompare([]byte(c.Code), []byte(code)) != 1 {
		return errs.ErrInvalidCode
	}
	return nil
}
