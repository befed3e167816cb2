package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/linemk/checkout-service/internal/domain/errs"
	"github.com/linemk/checkout-service/internal/domain/models"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// RazorpayConfig - параметры подключения к Razorpay
type RazorpayConfig struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	Currency  string
	Timeout   time.Duration
}

// Razorpay - провайдер с заказом на своей стороне и HMAC-подписью результата.
type Razorpay struct {
	cfg    RazorpayConfig
	client *http.Client
}

func NewRazorpay(cfg RazorpayConfig) *Razorpay {
	return &Razorpay{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (r *Razorpay) Method() models.PaymentMethod {
	return models.MethodRazorpay
}

type razorpayOrderRequest struct {
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Receipt        string `json:"receipt"`
	PaymentCapture int    `json:"payment_capture"`
}

type razorpayOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Receipt строит идемпотентный номер чека из id заказа (не длиннее 40 символов).
func Receipt(orderID string) string {
	return "rcpt_" + strings.ReplaceAll(orderID, "-", "")
}

// Initiate создаёт заказ в Razorpay на сумму черновика.
func (r *Razorpay) Initiate(ctx context.Context, order *models.Order) (*Initiation, error) {
	ctx, span := tracer.Start(ctx, "razorpay.CreateOrder", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	body, err := json.Marshal(razorpayOrderRequest{
		Amount:         MinorUnits(order.TotalPrice),
		Currency:       r.cfg.Currency,
		Receipt:        Receipt(order.ID),
		PaymentCapture: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode razorpay order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(r.cfg.BaseURL, "/")+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build razorpay request: %w", err)
	}
	req.SetBasicAuth(r.cfg.KeyID, r.cfg.KeySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport error")
		// таймаут и сетевые ошибки - провайдер недоступен, а не отказ
		return nil, fmt.Errorf("%w: %w", errs.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", errs.ErrGatewayUnavailable, err)
	}

	switch {
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		span.SetStatus(codes.Error, "gateway unavailable")
		return nil, fmt.Errorf("%w: status %d", errs.ErrGatewayUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		span.SetStatus(codes.Error, "gateway rejected")
		return nil, fmt.Errorf("%w: status %d: %s", errs.ErrGatewayRejected, resp.StatusCode, bytes.TrimSpace(payload))
	}

	var out razorpayOrderResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("%w: invalid response: %w", errs.ErrGatewayUnavailable, err)
	}
	if out.ID == "" {
		return nil, fmt.Errorf("%w: empty order id", errs.ErrGatewayUnavailable)
	}

	return &Initiation{
		Method:          models.MethodRazorpay,
		ProviderOrderID: out.ID,
		Amount:          out.Amount,
		Currency:        out.Currency,
		Receipt:         out.Receipt,
	}, nil
}

// Confirm проверяет подпись результата. Сетевых вызовов нет.
func (r *Razorpay) Confirm(ctx context.Context, order *models.Order, res Result) (*Confirmation, error) {
	_, span := tracer.Start(ctx, "razorpay.Confirm")
	defer span.End()

	if res.ProviderOrderID == "" || res.ProviderPaymentID == "" || res.Signature == "" {
		return nil, errs.ErrMissingVerificationFields
	}
	if !ValidSignature(res.ProviderOrderID, res.ProviderPaymentID, res.Signature, r.cfg.KeySecret) {
		span.SetStatus(codes.Error, "invalid signature")
		return nil, errs.ErrInvalidSignature
	}
	// заказ провайдера создаётся только через Initiate; без него подпись
	// могла быть выдана для любого другого (более дешёвого) заказа
	if order.ProviderOrderID == nil {
		span.SetStatus(codes.Error, "draft not initiated")
		return nil, fmt.Errorf("%w: draft has no provider order", errs.ErrInvalidSignature)
	}
	// подпись корректна, но выдана для другого заказа провайдера
	if *order.ProviderOrderID != res.ProviderOrderID {
		span.SetStatus(codes.Error, "order mismatch")
		return nil, fmt.Errorf("%w: provider order does not match draft", errs.ErrInvalidSignature)
	}
	return &Confirmation{ProviderPaymentID: res.ProviderPaymentID}, nil
}

// IsUnavailable - ошибка означает недоступность провайдера и запрос можно повторить.
func IsUnavailable(err error) bool {
	return errors.Is(err, errs.ErrGatewayUnavailable)
}
