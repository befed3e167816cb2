package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/linemk/checkout-service/internal/domain/errs"
	"github.com/linemk/checkout-service/internal/domain/models"
	"github.com/linemk/checkout-service/internal/lib/metrics"
	"github.com/linemk/checkout-service/internal/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("github.com/linemk/checkout-service/internal/service")

// DraftInput - корзина и данные доставки из запроса клиента
type DraftInput struct {
	Name    string
	Address string
	Items   []models.OrderItem
}

type OrderService interface {
	CreateDraftOrder(ctx context.Context, userID int64, in DraftInput) (*models.Order, error)
	CurrentDraftOrder(ctx context.Context, userID int64) (*models.Order, error)
	FindByID(ctx context.Context, orderID string, requesterID int64) (*models.Order, error)
	ListForUser(ctx context.Context, userID int64, status *models.OrderStatus) ([]*models.Order, error)
	ListOrders(ctx context.Context, filter models.OrderFilter) ([]*models.Order, error)
	AllStatuses() []models.OrderStatus
	PurchaseCount(ctx context.Context, userID int64) (int, error)
	SetOrderStatus(ctx context.Context, orderID, status string, force bool) (*models.Order, error)
	DeleteOrder(ctx context.Context, orderID string) error
}

type orderService struct {
	log       *slog.Logger
	db        *sql.DB
	pricing   PricingValidator
	userRepo    storage.UserStorage
	orderRepo   storage.OrderStorage
	paymentRepo storage.PaymentStorage
}

func NewOrderService(
	log *slog.Logger,
	db *sql.DB,
	pricing PricingValidator,
	userRepo storage.UserStorage,
	orderRepo storage.OrderStorage,
	paymentRepo storage.PaymentStorage,
) OrderService {
	return &orderService{
		log:         log,
		db:          db,
		pricing:     pricing,
		userRepo:    userRepo,
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
	}
}

// CreateDraftOrder проверяет корзину и создаёт новый черновик заказа.
// Прежний черновик пользователя помечается ABANDONED в той же транзакции,
// строка пользователя блокируется, поэтому черновик NEW у пользователя всегда один.
func (s *orderService) CreateDraftOrder(ctx context.Context, userID int64, in DraftInput) (*models.Order, error) {
	const op = "service.OrderService.CreateDraftOrder"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))

	ctx, span := tracer.Start(ctx, "orders.CreateDraft")
	defer span.End()
	span.SetAttributes(attribute.Int64("user.id", userID), attribute.Int("cart.items", len(in.Items)))

	items, err := s.pricing.ValidateCart(ctx, in.Items)
	if err != nil {
		metrics.DraftsCreatedTotal.WithLabelValues("rejected").Inc()
		span.SetStatus(codes.Error, "cart rejected")
		logger.Warn("cart rejected", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	order := &models.Order{
		ID:         uuid.NewString(),
		UserID:     userID,
		Name:       in.Name,
		Address:    in.Address,
		Items:      items,
		TotalPrice: models.TotalOf(items),
		Status:     models.StatusNew,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		metrics.DraftsCreatedTotal.WithLabelValues("error").Inc()
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	// Блокируем пользователя: параллельные корзины одного пользователя идут по очереди
	if _, err := s.userRepo.LockUserByIDTx(ctx, tx, userID); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		metrics.DraftsCreatedTotal.WithLabelValues("error").Inc()
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, fmt.Errorf("%s: %w", op, errs.ErrUnauthorized)
		}
		if errors.Is(err, storage.ErrLocked) {
			logger.Warn("user row is locked", slog.Any("error", err))
			return nil, fmt.Errorf("%s: %w", op, errs.ErrConcurrentUpdate)
		}
		logger.Error("failed to lock user", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to lock user: %w", op, err)
	}

	abandoned, err := s.orderRepo.AbandonDraftTx(ctx, tx, userID)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		metrics.DraftsCreatedTotal.WithLabelValues("error").Inc()
		logger.Error("failed to abandon previous draft", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to abandon previous draft: %w", op, err)
	}

	if err := s.orderRepo.CreateOrderTx(ctx, tx, order); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		metrics.DraftsCreatedTotal.WithLabelValues("error").Inc()
		// второй черновик отсекает уникальный индекс
		if errors.Is(err, storage.ErrDraftExists) {
			logger.Warn("concurrent draft detected", slog.Any("error", err))
			return nil, fmt.Errorf("%s: %w", op, errs.ErrConcurrentUpdate)
		}
		logger.Error("failed to create order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create order: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		metrics.DraftsCreatedTotal.WithLabelValues("error").Inc()
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	metrics.DraftsCreatedTotal.WithLabelValues("success").Inc()
	logger.Info("draft order created",
		slog.String("orderID", order.ID),
		slog.String("total", order.TotalPrice.String()),
		slog.Int64("abandoned", abandoned),
	)
	return order, nil
}

func (s *orderService) CurrentDraftOrder(ctx context.Context, userID int64) (*models.Order, error) {
	const op = "service.OrderService.CurrentDraftOrder"

	order, err := s.orderRepo.GetDraftByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return nil, fmt.Errorf("%s: %w", op, errs.ErrNoActiveOrder)
		}
		s.log.Error("failed to get draft order", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get draft order: %w", op, err)
	}
	return order, nil
}

// FindByID отдаёт заказ владельцу или администратору. Чужой и несуществующий
// заказ для обычного пользователя неразличимы.
func (s *orderService) FindByID(ctx context.Context, orderID string, requesterID int64) (*models.Order, error) {
	const op = "service.OrderService.FindByID"
	logger := s.log.With(slog.String("op", op), slog.String("orderID", orderID), slog.Int64("userID", requesterID))

	isAdmin, err := s.isAdmin(ctx, requesterID)
	if err != nil {
		logger.Error("failed to get requester", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			if isAdmin {
				return nil, fmt.Errorf("%s: %w", op, errs.ErrOrderNotFound)
			}
			return nil, fmt.Errorf("%s: %w", op, errs.ErrUnauthorized)
		}
		logger.Error("failed to get order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get order: %w", op, err)
	}

	if order.UserID != requesterID && !isAdmin {
		logger.Warn("access to foreign order denied")
		return nil, fmt.Errorf("%s: %w", op, errs.ErrUnauthorized)
	}
	return order, nil
}

// ListForUser - заказы пользователя, новые первыми. Администратор видит все заказы.
func (s *orderService) ListForUser(ctx context.Context, userID int64, status *models.OrderStatus) ([]*models.Order, error) {
	const op = "service.OrderService.ListForUser"

	isAdmin, err := s.isAdmin(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	filter := models.OrderFilter{Status: status}
	if isAdmin {
		filter.IncludeAbandoned = true
	} else {
		filter.UserID = &userID
		// вытесненные черновики клиенту не показываем даже по явному фильтру
		if status != nil && *status == models.StatusAbandoned {
			return []*models.Order{}, nil
		}
	}

	orders, err := s.orderRepo.ListOrders(ctx, filter)
	if err != nil {
		s.log.Error("failed to list orders", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list orders: %w", op, err)
	}
	return orders, nil
}

func (s *orderService) ListOrders(ctx context.Context, filter models.OrderFilter) ([]*models.Order, error) {
	const op = "service.OrderService.ListOrders"

	orders, err := s.orderRepo.ListOrders(ctx, filter)
	if err != nil {
		s.log.Error("failed to list orders", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list orders: %w", op, err)
	}
	return orders, nil
}

func (s *orderService) AllStatuses() []models.OrderStatus {
	return models.AllOrderStatuses()
}

// PurchaseCount - сколько заказов пользователя сейчас в статусе PAYED.
func (s *orderService) PurchaseCount(ctx context.Context, userID int64) (int, error) {
	const op = "service.OrderService.PurchaseCount"

	count, err := s.orderRepo.CountByStatus(ctx, userID, models.StatusPayed)
	if err != nil {
		s.log.Error("failed to count orders", slog.String("op", op), slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to count orders: %w", op, err)
	}
	return count, nil
}

// SetOrderStatus - административная смена статуса по таблице переходов.
// force разрешает любой переход, кроме возврата в NEW и перевода NEW -> PAYED:
// оплаченным заказ делает только подтверждённый платёж.
func (s *orderService) SetOrderStatus(ctx context.Context, orderID, status string, force bool) (*models.Order, error) {
	const op = "service.OrderService.SetOrderStatus"
	logger := s.log.With(slog.String("op", op), slog.String("orderID", orderID), slog.String("status", status))

	to, ok := models.ParseOrderStatus(status)
	if !ok {
		return nil, fmt.Errorf("%s: %w: %q", op, errs.ErrInvalidStatus, status)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	order, err := s.orderRepo.LockOrderByIDTx(ctx, tx, orderID)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		if errors.Is(err, storage.ErrOrderNotFound) {
			return nil, fmt.Errorf("%s: %w", op, errs.ErrOrderNotFound)
		}
		logger.Error("failed to lock order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to lock order: %w", op, err)
	}

	if order.Status == to {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		return order, nil
	}

	if !transitionAllowed(order.Status, to, force) {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Warn("transition rejected", slog.String("from", string(order.Status)), slog.Bool("force", force))
		return nil, fmt.Errorf("%s: %w: %s -> %s", op, errs.ErrInvalidTransition, order.Status, to)
	}

	// PAYED допустим только при наличии завершённого платежа
	if to == models.StatusPayed {
		completed, err := s.paymentRepo.CountByOrderIDTx(ctx, tx, orderID, models.PaymentCompleted)
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			logger.Error("failed to count payments", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to count payments: %w", op, err)
		}
		if completed == 0 {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			logger.Warn("transition rejected, no completed payment", slog.String("from", string(order.Status)))
			return nil, fmt.Errorf("%s: %w: %s -> %s without completed payment", op, errs.ErrInvalidTransition, order.Status, to)
		}
	}

	if err := s.orderRepo.UpdateStatusTx(ctx, tx, orderID, to); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to update order status", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to update order status: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("order status changed", slog.String("from", string(order.Status)), slog.Bool("force", force))
	order.Status = to
	return order, nil
}

func transitionAllowed(from, to models.OrderStatus, force bool) bool {
	if to == models.StatusNew {
		return false
	}
	if from == models.StatusNew && to == models.StatusPayed {
		return false
	}
	return force || models.CanTransition(from, to)
}

// DeleteOrder удаляет неоплаченный заказ без попыток оплаты вместе с позициями.
func (s *orderService) DeleteOrder(ctx context.Context, orderID string) error {
	const op = "service.OrderService.DeleteOrder"
	logger := s.log.With(slog.String("op", op), slog.String("orderID", orderID))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	order, err := s.orderRepo.LockOrderByIDTx(ctx, tx, orderID)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		if errors.Is(err, storage.ErrOrderNotFound) {
			return fmt.Errorf("%s: %w", op, errs.ErrOrderNotFound)
		}
		logger.Error("failed to lock order", slog.Any("error", err))
		return fmt.Errorf("%s: failed to lock order: %w", op, err)
	}

	if order.Status.Paid() || order.PaymentID != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		return fmt.Errorf("%s: %w", op, errs.ErrAlreadyPaid)
	}

	// история платежей (в т.ч. неуспешных и возвратов) не удаляется
	attempts, err := s.paymentRepo.CountByOrderIDTx(ctx, tx, orderID)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to count payments", slog.Any("error", err))
		return fmt.Errorf("%s: failed to count payments: %w", op, err)
	}
	if attempts > 0 {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Warn("order has payment records, not deleted", slog.Int("payments", attempts))
		return fmt.Errorf("%s: %w", op, errs.ErrHasPayments)
	}

	if err := s.orderRepo.DeleteOrderTx(ctx, tx, orderID); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		if errors.Is(err, storage.ErrOrderHasPayments) {
			return fmt.Errorf("%s: %w", op, errs.ErrHasPayments)
		}
		logger.Error("failed to delete order", slog.Any("error", err))
		return fmt.Errorf("%s: failed to delete order: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("order deleted", slog.String("status", string(order.Status)))
	return nil
}

func (s *orderService) isAdmin(ctx context.Context, userID int64) (bool, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return false, errs.ErrUnauthorized
		}
		return false, fmt.Errorf("failed to get user: %w", err)
	}
	return user.IsAdmin, nil
}
