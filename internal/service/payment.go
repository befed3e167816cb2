package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/linemk/checkout-service/internal/domain/errs"
	"github.com/linemk/checkout-service/internal/domain/models"
	"github.com/linemk/checkout-service/internal/lib/metrics"
	"github.com/linemk/checkout-service/internal/notify"
	"github.com/linemk/checkout-service/internal/payment"
	"github.com/linemk/checkout-service/internal/storage"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	ReceiptSent   = "sent"
	ReceiptFailed = "failed"
)

// PaymentResult - итог подтверждения оплаты
type PaymentResult struct {
	Order   *models.Order   `json:"order"`
	Payment *models.Payment `json:"payment"`
	// Receipt - удалось ли отправить чек; на сам платёж не влияет
	Receipt string `json:"receipt"`
}

type PaymentService interface {
	InitiatePayment(ctx context.Context, userID int64, method models.PaymentMethod) (*payment.Initiation, error)
	ConfirmPayment(ctx context.Context, userID int64, method models.PaymentMethod, res payment.Result) (*PaymentResult, error)
	SetPaymentStatus(ctx context.Context, paymentID, status string) (*models.Payment, error)
	ListPayments(ctx context.Context, orderID string) ([]*models.Payment, error)
}

type paymentService struct {
	log           *slog.Logger
	db            *sql.DB
	gateways      *payment.Registry
	orderRepo     storage.OrderStorage
	paymentRepo   storage.PaymentStorage
	notifier      notify.Notifier
	notifyTimeout time.Duration
}

func NewPaymentService(
	log *slog.Logger,
	db *sql.DB,
	gateways *payment.Registry,
	orderRepo storage.OrderStorage,
	paymentRepo storage.PaymentStorage,
	notifier notify.Notifier,
	notifyTimeout time.Duration,
) PaymentService {
	return &paymentService{
		log:           log,
		db:            db,
		gateways:      gateways,
		orderRepo:     orderRepo,
		paymentRepo:   paymentRepo,
		notifier:      notifier,
		notifyTimeout: notifyTimeout,
	}
}

// InitiatePayment готовит оплату текущего черновика у провайдера.
func (s *paymentService) InitiatePayment(ctx context.Context, userID int64, method models.PaymentMethod) (*payment.Initiation, error) {
	const op = "service.PaymentService.InitiatePayment"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.String("method", string(method)))

	gw, err := s.gateways.Get(method)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	draft, err := s.orderRepo.GetDraftByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return nil, fmt.Errorf("%s: %w", op, errs.ErrNoActiveOrder)
		}
		logger.Error("failed to get draft order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get draft order: %w", op, err)
	}

	start := time.Now()
	ini, err := gw.Initiate(ctx, draft)
	metrics.GatewayDuration.WithLabelValues(string(method), "initiate").Observe(time.Since(start).Seconds())
	if err != nil {
		reason := gatewayFailure(err)
		metrics.GatewayFailuresTotal.WithLabelValues(string(method), "initiate", reason).Inc()
		logger.Error("gateway initiation failed", slog.String("orderID", draft.ID),
			slog.String("reason", reason), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if ini.ProviderOrderID != "" {
		if err := s.orderRepo.SetProviderOrderID(ctx, draft.ID, ini.ProviderOrderID); err != nil {
			// черновик успели вытеснить или оплатить
			if errors.Is(err, storage.ErrOrderNotFound) {
				return nil, fmt.Errorf("%s: %w", op, errs.ErrNoActiveOrder)
			}
			logger.Error("failed to save provider order id", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to save provider order id: %w", op, err)
		}
	}

	logger.Info("payment initiated", slog.String("orderID", draft.ID), slog.String("providerOrderID", ini.ProviderOrderID))
	return ini, nil
}

const (
	failureUnavailable = "unavailable"
	failureUpstream    = "upstream_error"
	failureRejected    = "rejected"
	failureInternal    = "error"
)

// gatewayFailure - причина неудачи вызова провайдера для метрик и логов.
// rejected - провайдер или проверка подписи отвергли оплату, повтор не поможет.
func gatewayFailure(err error) string {
	if payment.IsUnavailable(err) {
		return failureUnavailable
	}
	if errors.Is(err, errs.ErrGatewayRejected) {
		return failureRejected
	}
	switch errs.KindOf(err) {
	case errs.KindUpstream:
		return failureUpstream
	case errs.KindInternal:
		return failureInternal
	}
	return failureRejected
}

// ConfirmPayment проверяет результат оплаты у провайдера и переводит черновик в PAYED.
// Проверка идёт до любых записей в БД. Платёж и смена статуса заказа фиксируются
// одной транзакцией под блокировкой строки заказа, поэтому повторное подтверждение
// получает ErrNoActiveOrder, а повтор того же платежа провайдера - ErrAlreadyPaid.
func (s *paymentService) ConfirmPayment(ctx context.Context, userID int64, method models.PaymentMethod, res payment.Result) (*PaymentResult, error) {
	const op = "service.PaymentService.ConfirmPayment"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.String("method", string(method)))

	ctx, span := tracer.Start(ctx, "payments.Confirm")
	defer span.End()
	span.SetAttributes(attribute.Int64("user.id", userID), attribute.String("payment.method", string(method)))

	gw, err := s.gateways.Get(method)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	draft, err := s.orderRepo.GetDraftByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			metrics.PaymentConfirmationsTotal.WithLabelValues(string(method), "no_active_order").Inc()
			return nil, fmt.Errorf("%s: %w", op, errs.ErrNoActiveOrder)
		}
		logger.Error("failed to get draft order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get draft order: %w", op, err)
	}
	logger = logger.With(slog.String("orderID", draft.ID))

	start := time.Now()
	conf, err := gw.Confirm(ctx, draft, res)
	metrics.GatewayDuration.WithLabelValues(string(method), "confirm").Observe(time.Since(start).Seconds())
	if err != nil {
		reason := gatewayFailure(err)
		metrics.GatewayFailuresTotal.WithLabelValues(string(method), "confirm", reason).Inc()
		metrics.PaymentConfirmationsTotal.WithLabelValues(string(method), reason).Inc()
		span.SetStatus(codes.Error, "verification failed: "+reason)
		if reason == failureRejected {
			logger.Warn("payment verification failed", slog.Any("error", err))
		} else {
			logger.Error("payment gateway failed", slog.String("reason", reason), slog.Any("error", err))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	// Перечитываем черновик под блокировкой: его могли оплатить или вытеснить
	order, err := s.orderRepo.LockDraftByUserIDTx(ctx, tx, userID)
	if err != nil || order.ID != draft.ID {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		if err == nil || errors.Is(err, storage.ErrOrderNotFound) {
			metrics.PaymentConfirmationsTotal.WithLabelValues(string(method), "no_active_order").Inc()
			logger.Warn("draft is no longer active")
			return nil, fmt.Errorf("%s: %w", op, errs.ErrNoActiveOrder)
		}
		logger.Error("failed to lock draft order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to lock draft order: %w", op, err)
	}

	p := &models.Payment{
		ID:                uuid.NewString(),
		OrderID:           order.ID,
		UserID:            userID,
		ProviderPaymentID: conf.ProviderPaymentID,
		Method:            method,
		Amount:            order.TotalPrice,
		Status:            models.PaymentCompleted,
	}
	if err := s.paymentRepo.CreatePaymentTx(ctx, tx, p); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		if errors.Is(err, storage.ErrDuplicatePayment) {
			metrics.PaymentConfirmationsTotal.WithLabelValues(string(method), "duplicate").Inc()
			logger.Warn("provider payment already recorded", slog.String("paymentID", conf.ProviderPaymentID))
			return nil, fmt.Errorf("%s: %w", op, errs.ErrAlreadyPaid)
		}
		logger.Error("failed to create payment", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create payment: %w", op, err)
	}

	if err := s.orderRepo.MarkPaidTx(ctx, tx, order.ID, conf.ProviderPaymentID); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to mark order paid", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to mark order paid: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}
	metrics.PaymentConfirmationsTotal.WithLabelValues(string(method), "success").Inc()

	order.Items = draft.Items
	order.Status = models.StatusPayed
	order.PaymentID = &conf.ProviderPaymentID
	logger.Info("order paid", slog.String("paymentID", p.ID), slog.String("amount", p.Amount.String()))

	return &PaymentResult{
		Order:   order,
		Payment: p,
		Receipt: s.sendReceipt(ctx, logger, order),
	}, nil
}

// sendReceipt отправляет чек после коммита. Ошибка только логируется:
// платёж уже зафиксирован и откатываться не должен.
func (s *paymentService) sendReceipt(ctx context.Context, logger *slog.Logger, order *models.Order) string {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()

	if err := s.notifier.SendReceipt(ctx, order); err != nil {
		metrics.NotificationsTotal.WithLabelValues(notify.EventReceipt, "error").Inc()
		logger.Error("failed to send receipt", slog.Any("error", err))
		return ReceiptFailed
	}
	metrics.NotificationsTotal.WithLabelValues(notify.EventReceipt, "success").Inc()
	return ReceiptSent
}

// SetPaymentStatus - административная смена статуса платежа. Перевод в COMPLETED
// делает заказ оплаченным, если он ещё не был оплачен. Снять COMPLETED с
// последнего завершённого платежа оплаченного заказа нельзя.
func (s *paymentService) SetPaymentStatus(ctx context.Context, paymentID, status string) (*models.Payment, error) {
	const op = "service.PaymentService.SetPaymentStatus"
	logger := s.log.With(slog.String("op", op), slog.String("paymentID", paymentID), slog.String("status", status))

	to, ok := models.ParsePaymentStatus(status)
	if !ok {
		return nil, fmt.Errorf("%s: %w: %q", op, errs.ErrInvalidStatus, status)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	p, err := s.paymentRepo.LockPaymentByIDTx(ctx, tx, paymentID)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		if errors.Is(err, storage.ErrPaymentNotFound) {
			return nil, fmt.Errorf("%s: %w", op, errs.ErrPaymentNotFound)
		}
		logger.Error("failed to lock payment", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to lock payment: %w", op, err)
	}

	if p.Status == models.PaymentCompleted && to != models.PaymentCompleted {
		if err := s.checkDemotion(ctx, tx, p); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			if errors.Is(err, errs.ErrInvalidTransition) {
				logger.Warn("payment demotion rejected", slog.String("orderID", p.OrderID))
			} else {
				logger.Error("failed to check payment demotion", slog.Any("error", err))
			}
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := s.paymentRepo.UpdatePaymentStatusTx(ctx, tx, paymentID, to); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to update payment status", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to update payment status: %w", op, err)
	}

	if to == models.PaymentCompleted {
		order, err := s.orderRepo.LockOrderByIDTx(ctx, tx, p.OrderID)
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			logger.Error("failed to lock order", slog.String("orderID", p.OrderID), slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to lock order: %w", op, err)
		}
		if !order.Status.Paid() {
			if err := s.orderRepo.MarkPaidTx(ctx, tx, order.ID, p.ProviderPaymentID); err != nil {
				if rbErr := tx.Rollback(); rbErr != nil {
					logger.Error("transaction rollback failed", slog.Any("error", rbErr))
				}
				logger.Error("failed to mark order paid", slog.Any("error", err))
				return nil, fmt.Errorf("%s: failed to mark order paid: %w", op, err)
			}
			logger.Info("order marked paid by payment status", slog.String("orderID", order.ID), slog.String("from", string(order.Status)))
		}
	} else if p.Status == models.PaymentCompleted {
		logger.Info("completed payment demoted", slog.String("orderID", p.OrderID))
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("payment status changed", slog.String("from", string(p.Status)))
	p.Status = to
	return p, nil
}

// checkDemotion не даёт снять COMPLETED с единственного завершённого платежа
// оплаченного заказа: PAYED/SHIPPED/DELIVERED без такого платежа не бывает.
// Для REFUNDED заказа деньги уже возвращены, понижение разрешено.
func (s *paymentService) checkDemotion(ctx context.Context, tx *sql.Tx, p *models.Payment) error {
	order, err := s.orderRepo.LockOrderByIDTx(ctx, tx, p.OrderID)
	if err != nil {
		return fmt.Errorf("failed to lock order: %w", err)
	}
	if !order.Status.Paid() || order.Status == models.StatusRefunded {
		return nil
	}

	completed, err := s.paymentRepo.CountByOrderIDTx(ctx, tx, order.ID, models.PaymentCompleted)
	if err != nil {
		return fmt.Errorf("failed to count payments: %w", err)
	}
	if completed <= 1 {
		return fmt.Errorf("%w: order %s is %s and has no other completed payment",
			errs.ErrInvalidTransition, order.ID, order.Status)
	}
	return nil
}

func (s *paymentService) ListPayments(ctx context.Context, orderID string) ([]*models.Payment, error) {
	const op = "service.PaymentService.ListPayments"

	if _, err := s.orderRepo.GetOrderByID(ctx, orderID); err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return nil, fmt.Errorf("%s: %w", op, errs.ErrOrderNotFound)
		}
		return nil, fmt.Errorf("%s: failed to get order: %w", op, err)
	}

	payments, err := s.paymentRepo.GetPaymentsByOrderID(ctx, orderID)
	if err != nil {
		s.log.Error("failed to list payments", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list payments: %w", op, err)
	}
	if payments == nil {
		payments = []*models.Payment{}
	}
	return payments, nil
}
