package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/checkout-service/internal/domain/errs"
	"github.com/linemk/checkout-service/internal/domain/models"
	"github.com/linemk/checkout-service/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/checkout-service/internal/payment"
	"github.com/linemk/checkout-service/internal/service"
)

type PayPalPayRequest struct {
	PaymentID string `json:"paymentId"`
}

// RazorpayVerifyRequest - поля, которые виджет Razorpay возвращает после оплаты
type RazorpayVerifyRequest struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

// PayPalPayHandler обрабатывает POST /api/orders/paypal/pay
func PayPalPayHandler(log *slog.Logger, paymentService service.PaymentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.PayPalPayHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			writeError(w, logger, errs.ErrUnauthorized)
			return
		}

		// отсутствие paymentId проверяет адаптер провайдера
		var req PayPalPayRequest
		if !decodeRequest(w, r, logger, &req) {
			return
		}

		res, err := paymentService.ConfirmPayment(r.Context(), userID, models.MethodPayPal, payment.Result{
			ProviderPaymentID: req.PaymentID,
		})
		if err != nil {
			writeError(w, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, res)
	}
}

// RazorpayCreateOrderHandler обрабатывает POST /api/orders/razorpay/create-order
func RazorpayCreateOrderHandler(log *slog.Logger, paymentService service.PaymentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RazorpayCreateOrderHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			writeError(w, logger, errs.ErrUnauthorized)
			return
		}

		ini, err := paymentService.InitiatePayment(r.Context(), userID, models.MethodRazorpay)
		if err != nil {
			writeError(w, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, ini)
	}
}

// RazorpayVerifyHandler обрабатывает POST /api/orders/razorpay/verify-payment
func RazorpayVerifyHandler(log *slog.Logger, paymentService service.PaymentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RazorpayVerifyHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			writeError(w, logger, errs.ErrUnauthorized)
			return
		}

		var req RazorpayVerifyRequest
		if !decodeRequest(w, r, logger, &req) {
			return
		}

		res, err := paymentService.ConfirmPayment(r.Context(), userID, models.MethodRazorpay, payment.Result{
			ProviderOrderID:   req.OrderID,
			ProviderPaymentID: req.PaymentID,
			Signature:         req.Signature,
		})
		if err != nil {
			writeError(w, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, res)
	}
}
