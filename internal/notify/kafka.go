package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/linemk/checkout-service/internal/domain/models"
	"github.com/segmentio/kafka-go"
)

// messageWriter - часть *kafka.Writer, нужная нотификатору
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier публикует события уведомлений в топик; письма отправляет почтовый сервис.
type KafkaNotifier struct {
	writer messageWriter
}

// ParseBrokers разбирает список брокеров через запятую.
func ParseBrokers(brokersCSV string) []string {
	brokers := []string{}
	for _, b := range strings.Split(brokersCSV, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	return &KafkaNotifier{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (n *KafkaNotifier) SendReceipt(ctx context.Context, order *models.Order) error {
	evt := Event{
		EventID: uuid.NewString(),
		Type:    EventReceipt,
		OrderID: order.ID,
		Payload: map[string]any{
			"user":       order.UserID,
			"name":       order.Name,
			"items":      order.Items,
			"totalPrice": order.TotalPrice,
			"paymentId":  order.PaymentID,
			"status":     order.Status,
		},
	}
	return n.publish(ctx, order.ID, evt)
}

func (n *KafkaNotifier) SendOTP(ctx context.Context, email, code string) error {
	evt := Event{
		EventID: uuid.NewString(),
		Type:    EventOTP,
		Email:   email,
		Payload: map[string]any{"code": code},
	}
	return n.publish(ctx, email, evt)
}

func (n *KafkaNotifier) publish(ctx context.Context, key string, evt Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", evt.Type, err)
	}
	msg := kafka.Message{Key: []byte(key), Value: data, Time: time.Now().UTC()}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", evt.Type, err)
	}
	return nil
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
