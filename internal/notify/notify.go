// Package notify доставляет уведомления покупателю: чек об оплате и OTP-код.
package notify

import (
	"context"

	"github.com/linemk/checkout-service/internal/domain/models"
)

// Notifier - канал уведомлений. Ошибка означает, что сообщение не принято каналом.
type Notifier interface {
	SendReceipt(ctx context.Context, order *models.Order) error
	SendOTP(ctx context.Context, email, code string) error
}

// типы событий
const (
	EventReceipt = "order.receipt"
	EventOTP     = "otp.issued"
)

// Event - сообщение для почтового сервиса
type Event struct {
	EventID string         `json:"event_id"`
	Type    string         `json:"type"`
	OrderID string         `json:"order_id,omitempty"`
	Email   string         `json:"email,omitempty"`
	Payload map[string]any `json:"payload"`
}
