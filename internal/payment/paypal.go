package payment

import (
	"context"

	"github.com/linemk/checkout-service/internal/domain/errs"
	"github.com/linemk/checkout-service/internal/domain/models"
)

// PayPal - провайдер с захватом токена: клиент платит у PayPal и присылает paymentId.
//
// Локальной проверки подлинности нет: paymentId принимается на веру.
// Это известный риск, проверка через API PayPal сюда не добавлена.
type PayPal struct {
	currency string
}

func NewPayPal(currency string) *PayPal {
	return &PayPal{currency: currency}
}

func (p *PayPal) Method() models.PaymentMethod {
	return models.MethodPayPal
}

func (p *PayPal) Initiate(_ context.Context, order *models.Order) (*Initiation, error) {
	return &Initiation{
		Method:   models.MethodPayPal,
		Amount:   MinorUnits(order.TotalPrice),
		Currency: p.currency,
	}, nil
}

func (p *PayPal) Confirm(_ context.Context, _ *models.Order, res Result) (*Confirmation, error) {
	if res.ProviderPaymentID == "" {
		return nil, errs.ErrMissingVerificationFields
	}
	return &Confirmation{ProviderPaymentID: res.ProviderPaymentID}, nil
}
