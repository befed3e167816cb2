package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/linemk/checkout-service/internal/domain/errs"
	"github.com/linemk/checkout-service/internal/domain/models"
)

// otpRepository - долговременное хранилище OTP-кодов в postgres.
// Переживает рестарт сервиса и работает при нескольких инстансах.
type otpRepository struct {
	db *sql.DB
}

func NewOTPRepository(db *sql.DB) *otpRepository {
	return &otpRepository{db: db}
}

// SaveChallenge перезаписывает код для email: живой код всегда один.
func (r *otpRepository) SaveChallenge(ctx context.Context, c models.OTPChallenge) error {
	query := `INSERT INTO otp_challenges (email, code, expires_at) VALUES ($1, $2, $3)
	          ON CONFLICT (email) DO UPDATE SET code = EXCLUDED.code, expires_at = EXCLUDED.expires_at`
	if _, err := r.db.ExecContext(ctx, query, c.Email, c.Code, c.ExpiresAt); err != nil {
		return fmt.Errorf("failed to save otp challenge: %w", err)
	}
	return nil
}

// ConsumeChallenge проверяет код под блокировкой строки.
// Просроченный код удаляется, неверный остаётся, верный удаляется и email помечается подтверждённым.
func (r *otpRepository) ConsumeChallenge(ctx context.Context, email, code string, now, verifiedUntil time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	c := models.OTPChallenge{Email: email}
	row := tx.QueryRowContext(ctx, "SELECT code, expires_at FROM otp_challenges WHERE email = $1 FOR UPDATE", email)
	if err := row.Scan(&c.Code, &c.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errs.ErrNoChallenge
		}
		return fmt.Errorf("failed to load otp challenge: %w", err)
	}

	checkErr := c.Check(code, now)
	if errors.Is(checkErr, errs.ErrInvalidCode) {
		return checkErr
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM otp_challenges WHERE email = $1", email); err != nil {
		return fmt.Errorf("failed to delete otp challenge: %w", err)
	}
	if checkErr == nil {
		query := `INSERT INTO verified_emails (email, expires_at) VALUES ($1, $2)
		          ON CONFLICT (email) DO UPDATE SET expires_at = EXCLUDED.expires_at`
		if _, err := tx.ExecContext(ctx, query, email, verifiedUntil); err != nil {
			return fmt.Errorf("failed to mark email verified: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true
	return checkErr
}

// DeleteChallenge удаляет код, только если он всё ещё текущий.
func (r *otpRepository) DeleteChallenge(ctx context.Context, email, code string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM otp_challenges WHERE email = $1 AND code = $2", email, code); err != nil {
		return fmt.Errorf("failed to delete otp challenge: %w", err)
	}
	return nil
}

func (r *otpRepository) IsVerified(ctx context.Context, email string, now time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM verified_emails WHERE email = $1 AND expires_at >= $2)", email, now,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check verified email: %w", err)
	}
	return exists, nil
}

func (r *otpRepository) ClearVerified(ctx context.Context, email string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM verified_emails WHERE email = $1", email); err != nil {
		return fmt.Errorf("failed to clear verified email: %w", err)
	}
	return nil
}

// PurgeExpired удаляет просроченные коды и отметки о подтверждении.
func (r *otpRepository) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM otp_challenges WHERE expires_at < $1", now)
	if err != nil {
		return 0, fmt.Errorf("failed to purge otp challenges: %w", err)
	}
	n, _ := res.RowsAffected()

	res, err = r.db.ExecContext(ctx, "DELETE FROM verified_emails WHERE expires_at < $1", now)
	if err != nil {
		return int(n), fmt.Errorf("failed to purge verified emails: %w", err)
	}
	m, _ := res.RowsAffected()
	return int(n + m), nil
}
