package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/checkout-service/internal/domain/errs"
	"github.com/linemk/checkout-service/internal/domain/models"
	"github.com/linemk/checkout-service/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/checkout-service/internal/service"
	"github.com/shopspring/decimal"
)

// CartItemRequest - позиция корзины в том виде, в каком её видит клиент
type CartItemRequest struct {
	Product  string          `json:"product" validate:"required"`
	Size     string          `json:"size" validate:"required"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity" validate:"gt=0"`
}

type CreateOrderRequest struct {
	Name    string            `json:"name" validate:"max=100"`
	Address string            `json:"address" validate:"max=500"`
	Items   []CartItemRequest `json:"items" validate:"dive"`
}

type StatusesResponse struct {
	Statuses []models.OrderStatus `json:"statuses"`
}

type PurchaseCountResponse struct {
	Count int `json:"count"`
}

// CreateOrderHandler обрабатывает POST /api/orders/create
func CreateOrderHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateOrderHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			writeError(w, logger, errs.ErrUnauthorized)
			return
		}

		var req CreateOrderRequest
		if !decodeRequest(w, r, logger, &req) {
			return
		}

		items := make([]models.OrderItem, 0, len(req.Items))
		for _, it := range req.Items {
			items = append(items, models.OrderItem{
				ProductID: it.Product,
				Size:      it.Size,
				Price:     it.Price,
				Quantity:  it.Quantity,
			})
		}

		order, err := orderService.CreateDraftOrder(r.Context(), userID, service.DraftInput{
			Name:    req.Name,
			Address: req.Address,
			Items:   items,
		})
		if err != nil {
			writeError(w, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, order)
	}
}

// CurrentOrderHandler обрабатывает GET /api/orders/newOrderForCurrentUser
func CurrentOrderHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CurrentOrderHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			writeError(w, logger, errs.ErrUnauthorized)
			return
		}

		order, err := orderService.CurrentDraftOrder(r.Context(), userID)
		if err != nil {
			writeError(w, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, order)
	}
}

// TrackOrderHandler обрабатывает GET /api/orders/track/{orderId}
func TrackOrderHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.TrackOrderHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			writeError(w, logger, errs.ErrUnauthorized)
			return
		}

		orderID := chi.URLParam(r, "orderId")
		if orderID == "" {
			badRequest(w, "orderId parameter is required")
			return
		}

		order, err := orderService.FindByID(r.Context(), orderID, userID)
		if err != nil {
			writeError(w, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, order)
	}
}

// AllStatusHandler обрабатывает GET /api/orders/allstatus
func AllStatusHandler(orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, StatusesResponse{Statuses: orderService.AllStatuses()})
	}
}

// PurchaseCountHandler обрабатывает GET /api/orders/user-purchase-count
func PurchaseCountHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.PurchaseCountHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			writeError(w, logger, errs.ErrUnauthorized)
			return
		}

		count, err := orderService.PurchaseCount(r.Context(), userID)
		if err != nil {
			writeError(w, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, PurchaseCountResponse{Count: count})
	}
}

// ListOrdersHandler обрабатывает GET /api/orders/?status=
func ListOrdersHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListOrdersHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			writeError(w, logger, errs.ErrUnauthorized)
			return
		}

		status, err := parseStatusParam(r.URL.Query().Get("status"))
		if err != nil {
			writeError(w, logger, err)
			return
		}

		orders, err := orderService.ListForUser(r.Context(), userID, status)
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

func parseStatusParam(raw string) (*models.OrderStatus, error) {
	if raw == "" {
		return nil, nil
	}
	st, ok := models.ParseOrderStatus(raw)
	if !ok {
		return nil, errs.ErrInvalidStatus
	}
	return &st, nil
}
