package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod - тег платёжного провайдера
type PaymentMethod string

const (
	MethodPayPal   PaymentMethod = "PayPal"
	MethodRazorpay PaymentMethod = "Razorpay"
)

// PaymentStatus - статус попытки оплаты
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
)

// ParsePaymentStatus проверяет, что строка является известным статусом платежа.
func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	switch st := PaymentStatus(s); st {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded:
		return st, true
	}
	return "", false
}

// Payment - попытка оплаты заказа. У заказа может быть несколько попыток,
// но ровно одна из них в статусе COMPLETED соответствует переходу заказа в PAYED.
type Payment struct {
	ID                string          `json:"id"`
	OrderID           string          `json:"order"`
	UserID            int64           `json:"user"`
	ProviderPaymentID string          `json:"paymentId"`
	Method            PaymentMethod   `json:"method"`
	Amount            decimal.Decimal `json:"amount"`
	Status            PaymentStatus   `json:"status"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}
