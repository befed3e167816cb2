package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/linemk/checkout-service/internal/domain/errs"
	"github.com/linemk/checkout-service/internal/domain/models"
	"github.com/linemk/checkout-service/internal/lib/metrics"
	"github.com/linemk/checkout-service/internal/notify"
	"github.com/linemk/checkout-service/internal/otp"
)

type OTPService interface {
	// Issue выдаёт новый код и отправляет его на email.
	Issue(ctx context.Context, email string) error
	// Verify проверяет код и помечает email подтверждённым.
	Verify(ctx context.Context, email, code string) error
}

type otpService struct {
	log         *slog.Logger
	store       otp.Store
	notifier    notify.Notifier
	ttl         time.Duration
	verifiedTTL time.Duration
	sendTimeout time.Duration
	now         func() time.Time
}

func NewOTPService(log *slog.Logger, store otp.Store, notifier notify.Notifier, ttl, verifiedTTL, sendTimeout time.Duration) OTPService {
	return &otpService{
		log:         log,
		store:       store,
		notifier:    notifier,
		ttl:         ttl,
		verifiedTTL: verifiedTTL,
		sendTimeout: sendTimeout,
		now:         time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Issue перезаписывает код для email. Если письмо не ушло, код удаляется,
// чтобы не оставлять действующий код, которого пользователь не получил.
func (s *otpService) Issue(ctx context.Context, email string) error {
	const op = "service.OTPService.Issue"

	email = normalizeEmail(email)
	if email == "" {
		return fmt.Errorf("%s: %w", op, errs.ErrMissingEmail)
	}
	logger := s.log.With(slog.String("op", op), slog.String("email", email))

	code, err := otp.GenerateCode()
	if err != nil {
		metrics.OTPIssuedTotal.WithLabelValues("error").Inc()
		logger.Error("failed to generate code", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	challenge := models.OTPChallenge{Email: email, Code: code, ExpiresAt: s.now().Add(s.ttl)}
	if err := s.store.SaveChallenge(ctx, challenge); err != nil {
		metrics.OTPIssuedTotal.WithLabelValues("error").Inc()
		logger.Error("failed to save challenge", slog.Any("error", err))
		return fmt.Errorf("%s: failed to save challenge: %w", op, err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	if err := s.notifier.SendOTP(sendCtx, email, code); err != nil {
		metrics.OTPIssuedTotal.WithLabelValues("delivery_failed").Inc()
		metrics.NotificationsTotal.WithLabelValues(notify.EventOTP, "error").Inc()
		logger.Error("failed to deliver otp", slog.Any("error", err))

		if delErr := s.store.DeleteChallenge(context.WithoutCancel(ctx), email, code); delErr != nil {
			logger.Error("failed to delete undelivered challenge", slog.Any("error", delErr))
		}
		return fmt.Errorf("%s: %w: %w", op, errs.ErrDeliveryFailed, err)
	}

	metrics.OTPIssuedTotal.WithLabelValues("sent").Inc()
	metrics.NotificationsTotal.WithLabelValues(notify.EventOTP, "success").Inc()
	logger.Info("otp issued", slog.Time("expiresAt", challenge.ExpiresAt))
	return nil
}

func (s *otpService) Verify(ctx context.Context, email, code string) error {
	const op = "service.OTPService.Verify"

	email = normalizeEmail(email)
	if email == "" {
		return fmt.Errorf("%s: %w", op, errs.ErrMissingEmail)
	}
	logger := s.log.With(slog.String("op", op), slog.String("email", email))

	now := s.now()
	err := s.store.ConsumeChallenge(ctx, email, strings.TrimSpace(code), now, now.Add(s.verifiedTTL))
	switch {
	case err == nil:
		metrics.OTPVerifiedTotal.WithLabelValues("success").Inc()
		logger.Info("email verified")
		return nil
	case errors.Is(err, errs.ErrNoChallenge):
		metrics.OTPVerifiedTotal.WithLabelValues("no_challenge").Inc()
	case errors.Is(err, errs.ErrExpired):
		metrics.OTPVerifiedTotal.WithLabelValues("expired").Inc()
	case errors.Is(err, errs.ErrInvalidCode):
		metrics.OTPVerifiedTotal.WithLabelValues("invalid").Inc()
	default:
		metrics.OTPVerifiedTotal.WithLabelValues("error").Inc()
		logger.Error("failed to verify otp", slog.Any("error", err))
		return fmt.Errorf("%s: failed to verify otp: %w", op, err)
	}

	logger.Warn("otp rejected", slog.Any("error", err))
	return fmt.Errorf("%s: %w", op, err)
}
