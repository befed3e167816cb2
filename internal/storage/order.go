package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/linemk/checkout-service/internal/domain/models"
)

// OrderStorage описывает методы для работы с заказами.
type OrderStorage interface {
	// AbandonDraftTx помечает текущий черновик пользователя как ABANDONED.
	AbandonDraftTx(ctx context.Context, tx *sql.Tx, userID int64) (int64, error)
	// CreateOrderTx вставляет заказ вместе с позициями.
	CreateOrderTx(ctx context.Context, tx *sql.Tx, order *models.Order) error
	// GetDraftByUserID возвращает черновик (NEW) пользователя с позициями.
	GetDraftByUserID(ctx context.Context, userID int64) (*models.Order, error)
	// LockDraftByUserIDTx блокирует черновик пользователя до конца транзакции (без позиций).
	LockDraftByUserIDTx(ctx context.Context, tx *sql.Tx, userID int64) (*models.Order, error)
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	LockOrderByIDTx(ctx context.Context, tx *sql.Tx, id string) (*models.Order, error)
	ListOrders(ctx context.Context, filter models.OrderFilter) ([]*models.Order, error)
	MarkPaidTx(ctx context.Context, tx *sql.Tx, orderID, paymentID string) error
	UpdateStatusTx(ctx context.Context, tx *sql.Tx, orderID string, status models.OrderStatus) error
	// SetProviderOrderID запоминает id заказа на стороне провайдера для черновика.
	SetProviderOrderID(ctx context.Context, orderID, providerOrderID string) error
	DeleteOrderTx(ctx context.Context, tx *sql.Tx, orderID string) error
	CountByStatus(ctx context.Context, userID int64, status models.OrderStatus) (int, error)
}

// orderRepository - конкретная реализация OrderStorage.
type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт новый репозиторий заказов.
func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

const orderColumns = "id, user_id, name, address, total_price, status, payment_id, provider_order_id, created_at, updated_at"

func scanOrder(row interface{ Scan(dest ...any) error }) (*models.Order, error) {
	o := &models.Order{}
	var paymentID, providerOrderID sql.NullString
	if err := row.Scan(&o.ID, &o.UserID, &o.Name, &o.Address, &o.TotalPrice, &o.Status,
		&paymentID, &providerOrderID, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.PaymentID = stringPtr(paymentID)
	o.ProviderOrderID = stringPtr(providerOrderID)
	return o, nil
}

func (r *orderRepository) AbandonDraftTx(ctx context.Context, tx *sql.Tx, userID int64) (int64, error) {
	res, err := tx.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE user_id = $2 AND status = $3",
		models.StatusAbandoned, userID, models.StatusNew)
	if err != nil {
		return 0, fmt.Errorf("failed to abandon draft order: %w", err)
	}
	return res.RowsAffected()
}

func (r *orderRepository) CreateOrderTx(ctx context.Context, tx *sql.Tx, order *models.Order) error {
	query := `INSERT INTO orders (id, user_id, name, address, total_price, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	          RETURNING created_at, updated_at`
	err := tx.QueryRowContext(ctx, query,
		order.ID, order.UserID, order.Name, order.Address, order.TotalPrice, order.Status,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if pqCode(err) == pqUniqueViolation && pqConstraint(err) == "orders_one_draft_per_user" {
			return ErrDraftExists
		}
		return fmt.Errorf("failed to create order: %w", err)
	}

	itemQuery := `INSERT INTO order_items (order_id, position, product_id, size, price, quantity)
	              VALUES ($1, $2, $3, $4, $5, $6)`
	for i, it := range order.Items {
		if _, err := tx.ExecContext(ctx, itemQuery, order.ID, i, it.ProductID, it.Size, it.Price, it.Quantity); err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}
	return nil
}

func (r *orderRepository) GetDraftByUserID(ctx context.Context, userID int64) (*models.Order, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE user_id = $1 AND status = $2",
		userID, models.StatusNew)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if err := r.attachItems(ctx, r.db, []*models.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) LockDraftByUserIDTx(ctx context.Context, tx *sql.Tx, userID int64) (*models.Order, error) {
	row := tx.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE user_id = $1 AND status = $2 FOR UPDATE",
		userID, models.StatusNew)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = $1", id)
	order, err := scanOrder(row)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if err := r.attachItems(ctx, r.db, []*models.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) LockOrderByIDTx(ctx context.Context, tx *sql.Tx, id string) (*models.Order, error) {
	row := tx.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = $1 FOR UPDATE", id)
	order, err := scanOrder(row)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

// ListOrders возвращает заказы по фильтру, новые первыми.
func (r *orderRepository) ListOrders(ctx context.Context, filter models.OrderFilter) ([]*models.Order, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.UserID != nil {
		add("user_id = $%d", *filter.UserID)
	}
	if filter.Status != nil {
		add("status = $%d", *filter.Status)
	} else if !filter.IncludeAbandoned {
		add("status <> $%d", models.StatusAbandoned)
	}
	if filter.From != nil {
		add("created_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("created_at <= $%d", *filter.To)
	}

	query := "SELECT " + orderColumns + " FROM orders"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, r.db, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// attachItems подгружает позиции одним запросом для всех заказов
func (r *orderRepository) attachItems(ctx context.Context, q querier, orders []*models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := make(map[string]*models.Order, len(orders))
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}

	rows, err := q.QueryContext(ctx, `
		SELECT order_id, product_id, size, price, quantity
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID string
			it      models.OrderItem
		)
		if err := rows.Scan(&orderID, &it.ProductID, &it.Size, &it.Price, &it.Quantity); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}

func (r *orderRepository) MarkPaidTx(ctx context.Context, tx *sql.Tx, orderID, paymentID string) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE orders SET status = $1, payment_id = $2, updated_at = NOW() WHERE id = $3",
		models.StatusPayed, paymentID, orderID)
	if err != nil {
		return fmt.Errorf("failed to mark order paid: %w", err)
	}
	return expectOneRow(res, ErrOrderNotFound)
}

func (r *orderRepository) UpdateStatusTx(ctx context.Context, tx *sql.Tx, orderID string, status models.OrderStatus) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2", status, orderID)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	return expectOneRow(res, ErrOrderNotFound)
}

func (r *orderRepository) SetProviderOrderID(ctx context.Context, orderID, providerOrderID string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE orders SET provider_order_id = $1, updated_at = NOW() WHERE id = $2 AND status = $3",
		providerOrderID, orderID, models.StatusNew)
	if err != nil {
		return fmt.Errorf("failed to set provider order id: %w", err)
	}
	return expectOneRow(res, ErrOrderNotFound)
}

func (r *orderRepository) DeleteOrderTx(ctx context.Context, tx *sql.Tx, orderID string) error {
	res, err := tx.ExecContext(ctx, "DELETE FROM orders WHERE id = $1", orderID)
	if err != nil {
		if pqCode(err) == pqForeignKeyViolation {
			return ErrOrderHasPayments
		}
		return fmt.Errorf("failed to delete order: %w", err)
	}
	return expectOneRow(res, ErrOrderNotFound)
}

func (r *orderRepository) CountByStatus(ctx context.Context, userID int64, status models.OrderStatus) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM orders WHERE user_id = $1 AND status = $2", userID, status,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}

func expectOneRow(res sql.Result, notFound error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
