// Package payment - адаптеры платёжных провайдеров.
package payment

import (
	"context"

	"github.com/linemk/checkout-service/internal/domain/errs"
	"github.com/linemk/checkout-service/internal/domain/models"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/linemk/checkout-service/internal/payment")

// Initiation - данные, которые клиент передаёт виджету провайдера
type Initiation struct {
	Method          models.PaymentMethod `json:"method"`
	ProviderOrderID string               `json:"orderId,omitempty"`
	Amount          int64                `json:"amount"` // в минимальных единицах валюты
	Currency        string               `json:"currency"`
	Receipt         string               `json:"receipt,omitempty"`
}

// Result - то, что клиент вернул после оплаты у провайдера
type Result struct {
	ProviderOrderID   string
	ProviderPaymentID string
	Signature         string
}

// Confirmation - подтверждённый провайдером платёж
type Confirmation struct {
	ProviderPaymentID string
}

// Gateway - платёжный провайдер
type Gateway interface {
	Method() models.PaymentMethod
	// Initiate готовит оплату черновика на стороне провайдера.
	Initiate(ctx context.Context, order *models.Order) (*Initiation, error)
	// Confirm проверяет результат оплаты. Ошибка означает, что платёж записывать нельзя.
	Confirm(ctx context.Context, order *models.Order, res Result) (*Confirmation, error)
}

// Registry - набор подключённых провайдеров
type Registry struct {
	gateways map[models.PaymentMethod]Gateway
}

func NewRegistry(gateways ...Gateway) *Registry {
	r := &Registry{gateways: make(map[models.PaymentMethod]Gateway, len(gateways))}
	for _, g := range gateways {
		r.gateways[g.Method()] = g
	}
	return r
}

// Get возвращает провайдера по тегу метода оплаты.
func (r *Registry) Get(method models.PaymentMethod) (Gateway, error) {
	g, ok := r.gateways[method]
	if !ok {
		return nil, errs.ErrUnsupportedMethod
	}
	return g, nil
}

var hundred = decimal.NewFromInt(100)

// MinorUnits переводит сумму в минимальные единицы валюты (пайсы, центы).
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}
