package notify

import (
	"context"
	"log/slog"

	"github.com/linemk/checkout-service/internal/domain/models"
)

// LogNotifier пишет уведомления в лог; используется локально, когда Kafka выключена.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendReceipt(_ context.Context, order *models.Order) error {
	n.log.Info("receipt notification",
		slog.String("orderID", order.ID),
		slog.Int64("userID", order.UserID),
		slog.String("total", order.TotalPrice.String()),
	)
	return nil
}

func (n *LogNotifier) SendOTP(_ context.Context, email, code string) error {
	n.log.Info("otp notification", slog.String("email", email), slog.String("code", code))
	return nil
}
