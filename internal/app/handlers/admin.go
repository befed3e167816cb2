package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/checkout-service/internal/domain/models"
	"github.com/linemk/checkout-service/internal/service"
)

type SetStatusRequest struct {
	Status string `json:"status" validate:"required"`
	// Force - обход таблицы переходов (кроме перевода в NEW)
	Force bool `json:"force"`
}

// AdminListOrdersHandler обрабатывает GET /api/admin/orders?user=&status=&from=&to=
func AdminListOrdersHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AdminListOrdersHandler"
		logger := log.With(slog.String("op", op))

		q := r.URL.Query()
		filter := models.OrderFilter{IncludeAbandoned: true}

		if raw := q.Get("user"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				badRequest(w, "invalid user parameter")
				return
			}
			filter.UserID = &id
		}

		status, err := parseStatusParam(q.Get("status"))
		if err != nil {
			writeError(w, logger, err)
			return
		}
		filter.Status = status

		for _, p := range []struct {
			name string
			dst  **time.Time
		}{{"from", &filter.From}, {"to", &filter.To}} {
			raw := q.Get(p.name)
			if raw == "" {
				continue
			}
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				badRequest(w, "invalid "+p.name+" parameter, expected RFC3339")
				return
			}
			*p.dst = &t
		}

		orders, err := orderService.ListOrders(r.Context(), filter)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		if orders == nil {
			orders = []*models.Order{}
		}

		writeJSON(w, http.StatusOK, orders)
	}
}

// AdminSetOrderStatusHandler обрабатывает PATCH /api/admin/orders/{id}/status
func AdminSetOrderStatusHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AdminSetOrderStatusHandler"
		logger := log.With(slog.String("op", op))

		orderID := chi.URLParam(r, "id")
		var req SetStatusRequest
		if !decodeRequest(w, r, logger, &req) {
			return
		}

		order, err := orderService.SetOrderStatus(r.Context(), orderID, req.Status, req.Force)
		if err != nil {
			writeError(w, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, order)
	}
}

// AdminDeleteOrderHandler обрабатывает DELETE /api/admin/orders/{id}
func AdminDeleteOrderHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AdminDeleteOrderHandler"
		logger := log.With(slog.String("op", op))

		if err := orderService.DeleteOrder(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, MessageResponse{Message: "Order deleted successfully"})
	}
}

// AdminListPaymentsHandler обрабатывает GET /api/admin/orders/{id}/payments
func AdminListPaymentsHandler(log *slog.Logger, paymentService service.PaymentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AdminListPaymentsHandler"
		logger := log.With(slog.String("op", op))

		payments, err := paymentService.ListPayments(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, payments)
	}
}

// AdminSetPaymentStatusHandler обрабатывает PATCH /api/admin/payments/{id}/status
func AdminSetPaymentStatusHandler(log *slog.Logger, paymentService service.PaymentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AdminSetPaymentStatusHandler"
		logger := log.With(slog.String("op", op))

		var req SetStatusRequest
		if !decodeRequest(w, r, logger, &req) {
			return
		}

		p, err := paymentService.SetPaymentStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
		if err != nil {
			writeError(w, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, p)
	}
}
