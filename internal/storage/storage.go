package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrDuplicatePayment = errors.New("payment already recorded")
	ErrDraftExists      = errors.New("user already has a draft order")
	ErrOrderHasPayments = errors.New("order has payment records")
	ErrLocked           = errors.New("resource is locked, please try again")
)

// querier - общий интерфейс *sql.DB и *sql.Tx для чтения
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// коды ошибок postgres
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqInvalidText         = "22P02" // например, id не в формате uuid
	pqLockNotAvailable    = "55P03"
)

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// isNotFound - строки нет, либо id заведомо не может существовать (не uuid)
func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || pqCode(err) == pqInvalidText
}

// pqConstraint возвращает имя нарушенного ограничения, если есть
func pqConstraint(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}
	return ""
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
