package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/linemk/checkout-service/internal/domain/models"
)

// PaymentStorage описывает методы для работы с попытками оплаты.
type PaymentStorage interface {
	// CreatePaymentTx создает запись о платеже в рамках транзакции.
	CreatePaymentTx(ctx context.Context, tx *sql.Tx, payment *models.Payment) error
	LockPaymentByIDTx(ctx context.Context, tx *sql.Tx, id string) (*models.Payment, error)
	UpdatePaymentStatusTx(ctx context.Context, tx *sql.Tx, id string, status models.PaymentStatus) error
	// CountByOrderIDTx считает платежи заказа в указанных статусах; без статусов - все попытки.
	CountByOrderIDTx(ctx context.Context, tx *sql.Tx, orderID string, statuses ...models.PaymentStatus) (int, error)
	// GetPaymentsByOrderID возвращает все попытки оплаты заказа.
	GetPaymentsByOrderID(ctx context.Context, orderID string) ([]*models.Payment, error)
}

type paymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) PaymentStorage {
	return &paymentRepository{db: db}
}

const paymentColumns = "id, order_id, user_id, provider_payment_id, method, amount, status, created_at, updated_at"

func scanPayment(row interface{ Scan(dest ...any) error }) (*models.Payment, error) {
	p := &models.Payment{}
	if err := row.Scan(&p.ID, &p.OrderID, &p.UserID, &p.ProviderPaymentID, &p.Method,
		&p.Amount, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *paymentRepository) CreatePaymentTx(ctx context.Context, tx *sql.Tx, payment *models.Payment) error {
	query := `INSERT INTO payments (id, order_id, user_id, provider_payment_id, method, amount, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	          RETURNING created_at, updated_at`
	err := tx.QueryRowContext(ctx, query,
		payment.ID, payment.OrderID, payment.UserID, payment.ProviderPaymentID,
		payment.Method, payment.Amount, payment.Status,
	).Scan(&payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		if pqCode(err) == pqUniqueViolation {
			return ErrDuplicatePayment
		}
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *paymentRepository) LockPaymentByIDTx(ctx context.Context, tx *sql.Tx, id string) (*models.Payment, error) {
	row := tx.QueryRowContext(ctx, "SELECT "+paymentColumns+" FROM payments WHERE id = $1 FOR UPDATE", id)
	p, err := scanPayment(row)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *paymentRepository) UpdatePaymentStatusTx(ctx context.Context, tx *sql.Tx, id string, status models.PaymentStatus) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE payments SET status = $1, updated_at = NOW() WHERE id = $2", status, id)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	return expectOneRow(res, ErrPaymentNotFound)
}

func (r *paymentRepository) CountByOrderIDTx(ctx context.Context, tx *sql.Tx, orderID string, statuses ...models.PaymentStatus) (int, error) {
	query := "SELECT COUNT(*) FROM payments WHERE order_id = $1"
	args := []any{orderID}
	if len(statuses) > 0 {
		names := make([]string, len(statuses))
		for i, st := range statuses {
			names[i] = string(st)
		}
		query += " AND status = ANY($2)"
		args = append(args, pq.Array(names))
	}

	var count int
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		if pqCode(err) == pqInvalidText {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to count payments: %w", err)
	}
	return count, nil
}

func (r *paymentRepository) GetPaymentsByOrderID(ctx context.Context, orderID string) ([]*models.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE order_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return payments, nil
}
