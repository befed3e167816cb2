package storage_test

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/linemk/checkout-service/internal/domain/errs"
	"github.com/linemk/checkout-service/internal/domain/models"
	"github.com/linemk/checkout-service/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	userCols    = []string{"id", "name", "email", "pass_hash", "is_admin", "created_at"}
	orderCols   = []string{"id", "user_id", "name", "address", "total_price", "status", "payment_id", "provider_order_id", "created_at", "updated_at"}
	itemCols    = []string{"order_id", "product_id", "size", "price", "quantity"}
	paymentCols = []string{"id", "order_id", "user_id", "provider_payment_id", "method", "amount", "status", "created_at", "updated_at"}
)

const orderSelect = "SELECT id, user_id, name, address, total_price, status, payment_id, provider_order_id, created_at, updated_at FROM orders"

func TestGetUserByID_Success(t *testing.T) {
	// Создаем sqlmock для эмуляции базы данных.
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)
	userID := int64(1)

	rows := sqlmock.NewRows(userCols).
		AddRow(userID, "Buyer", "test@example.com", []byte("hashed-password"), true, time.Now())
	mock.ExpectQuery("SELECT id, name, email, pass_hash, is_admin, created_at FROM users WHERE id = \\$1").
		WithArgs(userID).WillReturnRows(rows)

	user, err := repo.GetUserByID(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, "test@example.com", user.Email)
	assert.Equal(t, []byte("hashed-password"), user.PassHash)
	assert.True(t, user.IsAdmin)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)

	// Эмулируем ситуацию, когда запрос возвращает 0 строк.
	mock.ExpectQuery("FROM users WHERE email = \\$1").
		WithArgs("ghost@example.com").WillReturnRows(sqlmock.NewRows(userCols))

	user, err := repo.GetUserByEmail(context.Background(), "ghost@example.com")
	assert.Nil(t, user)
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)
	query := regexp.QuoteMeta("INSERT INTO users (name, email, pass_hash, is_admin) VALUES ($1, $2, $3, $4) RETURNING id, created_at")

	mock.ExpectQuery(query).
		WithArgs("Buyer", "new@example.com", []byte("hash"), false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(5), time.Now()))

	user, err := repo.CreateUser(context.Background(), &models.User{Name: "Buyer", Email: "new@example.com", PassHash: []byte("hash")})
	require.NoError(t, err)
	assert.Equal(t, int64(5), user.ID)

	mock.ExpectQuery(query).WillReturnError(&pq.Error{Code: "23505"})
	_, err = repo.CreateUser(context.Background(), &models.User{Email: "new@example.com"})
	assert.ErrorIs(t, err, storage.ErrUserExists)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockUserByIDTx_LockNotAvailable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM users WHERE id = \\$1 FOR UPDATE").
		WithArgs(int64(1)).WillReturnError(&pq.Error{Code: "55P03"})
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)
	_, err = repo.LockUserByIDTx(context.Background(), tx, 1)
	assert.ErrorIs(t, err, storage.ErrLocked)
	require.NoError(t, tx.Rollback())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProductByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewProductRepository(db)
	cols := []string{"id", "name", "size", "price"}

	t.Run("with price tiers", func(t *testing.T) {
		mock.ExpectQuery("FROM products p").WithArgs("p1").WillReturnRows(
			sqlmock.NewRows(cols).
				AddRow("p1", "Masala Chai", "250g", "60.00").
				AddRow("p1", "Masala Chai", "500g", "100.00"))

		p, err := repo.GetProductByID(context.Background(), "p1")
		require.NoError(t, err)
		assert.Equal(t, "Masala Chai", p.Name)
		require.Len(t, p.Prices, 2)
		assert.True(t, p.Prices[1].Price.Equal(decimal.NewFromInt(100)))
	})

	t.Run("without prices", func(t *testing.T) {
		mock.ExpectQuery("FROM products p").WithArgs("p2").WillReturnRows(
			sqlmock.NewRows(cols).AddRow("p2", "Cardamom", nil, nil))

		p, err := repo.GetProductByID(context.Background(), "p2")
		require.NoError(t, err)
		assert.Empty(t, p.Prices)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("FROM products p").WithArgs("nope").WillReturnRows(sqlmock.NewRows(cols))

		_, err := repo.GetProductByID(context.Background(), "nope")
		assert.ErrorIs(t, err, storage.ErrProductNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	order := &models.Order{
		ID:         "3f2b1c4e-0a1b-4c2d-9e8f-123456789abc",
		UserID:     1,
		TotalPrice: decimal.RequireFromString("200"),
		Status:     models.StatusNew,
		Items: []models.OrderItem{
			{ProductID: "p1", Size: "500g", Price: decimal.RequireFromString("100"), Quantity: 2},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET status = $1, updated_at = NOW() WHERE user_id = $2 AND status = $3")).
		WithArgs(models.StatusAbandoned, int64(1), models.StatusNew).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(order.ID, int64(1), "", "", sqlmock.AnyArg(), models.StatusNew).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(time.Now(), time.Now()))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(order.ID, 0, "p1", "500g", sqlmock.AnyArg(), 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)

	abandoned, err := repo.AbandonDraftTx(context.Background(), tx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), abandoned)

	require.NoError(t, repo.CreateOrderTx(context.Background(), tx, order))
	require.NoError(t, tx.Commit())
	assert.False(t, order.CreatedAt.IsZero())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderTx_DraftExists(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "orders_one_draft_per_user"})
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)
	err = repo.CreateOrderTx(context.Background(), tx, &models.Order{ID: "o-1", UserID: 1, Status: models.StatusNew})
	assert.ErrorIs(t, err, storage.ErrDraftExists)
	require.NoError(t, tx.Rollback())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDraftByUserID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(orderSelect+" WHERE user_id = $1 AND status = $2")).
		WithArgs(int64(1), models.StatusNew).
		WillReturnRows(sqlmock.NewRows(orderCols).
			AddRow("o-1", int64(1), "Buyer", "Main st", "245.50", "NEW", nil, "order_Nx1", now, now))
	mock.ExpectQuery("FROM order_items").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(itemCols).
			AddRow("o-1", "p1", "500g", "100.00", 2).
			AddRow("o-1", "p2", "100g", "45.50", 1))

	order, err := repo.GetDraftByUserID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNew, order.Status)
	assert.Nil(t, order.PaymentID)
	require.NotNil(t, order.ProviderOrderID)
	assert.Equal(t, "order_Nx1", *order.ProviderOrderID)
	require.Len(t, order.Items, 2)
	assert.True(t, order.TotalPrice.Equal(models.TotalOf(order.Items)))

	mock.ExpectQuery(regexp.QuoteMeta(orderSelect + " WHERE user_id = $1 AND status = $2")).
		WithArgs(int64(2), models.StatusNew).
		WillReturnRows(sqlmock.NewRows(orderCols))
	_, err = repo.GetDraftByUserID(context.Background(), 2)
	assert.ErrorIs(t, err, storage.ErrOrderNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListOrders_Filters(t *testing.T) {
	userID := int64(1)
	paid := models.StatusPayed
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		filter models.OrderFilter
		query  string
		args   int
	}{
		{
			name:   "default hides abandoned",
			filter: models.OrderFilter{},
			query:  orderSelect + " WHERE status <> $1 ORDER BY created_at DESC",
			args:   1,
		},
		{
			name:   "admin view",
			filter: models.OrderFilter{IncludeAbandoned: true},
			query:  orderSelect + " ORDER BY created_at DESC",
		},
		{
			name:   "user, status and period",
			filter: models.OrderFilter{UserID: &userID, Status: &paid, From: &from},
			query:  orderSelect + " WHERE user_id = $1 AND status = $2 AND created_at >= $3 ORDER BY created_at DESC",
			args:   3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			args := make([]driver.Value, tt.args)
			for i := range args {
				args[i] = sqlmock.AnyArg()
			}
			exp := mock.ExpectQuery(regexp.QuoteMeta(tt.query))
			if len(args) > 0 {
				exp = exp.WithArgs(args...)
			}
			exp.WillReturnRows(sqlmock.NewRows(orderCols))

			orders, err := storage.NewOrderRepository(db).ListOrders(context.Background(), tt.filter)
			require.NoError(t, err)
			assert.Empty(t, orders)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestMarkPaidTx_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders SET status = \\$1, payment_id = \\$2").
		WithArgs(models.StatusPayed, "pay_1", "o-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)
	err = repo.MarkPaidTx(context.Background(), tx, "o-1", "pay_1")
	assert.ErrorIs(t, err, storage.ErrOrderNotFound)
	require.NoError(t, tx.Rollback())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePaymentTx_Duplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewPaymentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO payments").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(time.Now(), time.Now()))
	mock.ExpectQuery("INSERT INTO payments").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "payments_method_provider_payment_id_key"})
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)

	p := &models.Payment{ID: "p-1", OrderID: "o-1", UserID: 1, ProviderPaymentID: "pay_1",
		Method: models.MethodRazorpay, Amount: decimal.NewFromInt(200), Status: models.PaymentCompleted}
	require.NoError(t, repo.CreatePaymentTx(context.Background(), tx, p))

	dup := *p
	dup.ID = "p-2"
	err = repo.CreatePaymentTx(context.Background(), tx, &dup)
	assert.ErrorIs(t, err, storage.ErrDuplicatePayment)
	require.NoError(t, tx.Rollback())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPaymentsByOrderID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery("FROM payments\\s+WHERE order_id = \\$1").
		WithArgs("o-1").
		WillReturnRows(sqlmock.NewRows(paymentCols).
			AddRow("p-2", "o-1", int64(1), "pay_2", "Razorpay", "200.00", "COMPLETED", now, now).
			AddRow("p-1", "o-1", int64(1), "pay_1", "Razorpay", "200.00", "FAILED", now.Add(-time.Minute), now))

	payments, err := storage.NewPaymentRepository(db).GetPaymentsByOrderID(context.Background(), "o-1")
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, models.PaymentCompleted, payments[0].Status)
	assert.Equal(t, models.MethodRazorpay, payments[0].Method)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountByOrderIDTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := storage.NewPaymentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM payments WHERE order_id = \\$1$").
		WithArgs("o-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM payments WHERE order_id = \\$1 AND status = ANY\\(\\$2\\)").
		WithArgs("o-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM payments").
		WithArgs("not-a-uuid").
		WillReturnError(&pq.Error{Code: "22P02"})
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)

	all, err := repo.CountByOrderIDTx(context.Background(), tx, "o-1")
	require.NoError(t, err)
	assert.Equal(t, 3, all)

	completed, err := repo.CountByOrderIDTx(context.Background(), tx, "o-1", models.PaymentCompleted)
	require.NoError(t, err)
	assert.Equal(t, 1, completed)

	none, err := repo.CountByOrderIDTx(context.Background(), tx, "not-a-uuid")
	require.NoError(t, err)
	assert.Zero(t, none)

	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteOrderTx_HasPayments(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM orders WHERE id = \\$1").
		WithArgs("o-1").
		WillReturnError(&pq.Error{Code: "23503", Constraint: "payments_order_id_fkey"})
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)
	err = storage.NewOrderRepository(db).DeleteOrderTx(context.Background(), tx, "o-1")
	assert.ErrorIs(t, err, storage.ErrOrderHasPayments)
	require.NoError(t, tx.Rollback())

	assert.NoError(t, mock.ExpectationsWereMet())
}

// id не в формате uuid postgres отвергает с 22P02 - для клиента это "не найдено"
func TestMalformedIDIsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	orders := storage.NewOrderRepository(db)
	payments := storage.NewPaymentRepository(db)
	malformed := &pq.Error{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`}

	mock.ExpectQuery(regexp.QuoteMeta(orderSelect + " WHERE id = $1")).
		WithArgs("abc").WillReturnError(malformed)
	_, err = orders.GetOrderByID(context.Background(), "abc")
	assert.ErrorIs(t, err, storage.ErrOrderNotFound)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(orderSelect + " WHERE id = $1 FOR UPDATE")).
		WithArgs("abc").WillReturnError(malformed)
	mock.ExpectQuery("FROM payments WHERE id = \\$1 FOR UPDATE").
		WithArgs("abc").WillReturnError(malformed)
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)
	_, err = orders.LockOrderByIDTx(context.Background(), tx, "abc")
	assert.ErrorIs(t, err, storage.ErrOrderNotFound)
	_, err = payments.LockPaymentByIDTx(context.Background(), tx, "abc")
	assert.ErrorIs(t, err, storage.ErrPaymentNotFound)
	require.NoError(t, tx.Rollback())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOTPRepository_ConsumeChallenge(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	selectQuery := regexp.QuoteMeta("SELECT code, expires_at FROM otp_challenges WHERE email = $1 FOR UPDATE")
	deleteQuery := regexp.QuoteMeta("DELETE FROM otp_challenges WHERE email = $1")

	t.Run("success marks email verified", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(selectQuery).WithArgs("a@b.c").
			WillReturnRows(sqlmock.NewRows([]string{"code", "expires_at"}).AddRow("123456", now.Add(time.Minute)))
		mock.ExpectExec(deleteQuery).WithArgs("a@b.c").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO verified_emails").WithArgs("a@b.c", now.Add(time.Hour)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = storage.NewOTPRepository(db).ConsumeChallenge(context.Background(), "a@b.c", "123456", now, now.Add(time.Hour))
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("expired is deleted", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(selectQuery).WithArgs("a@b.c").
			WillReturnRows(sqlmock.NewRows([]string{"code", "expires_at"}).AddRow("123456", now.Add(-time.Second)))
		mock.ExpectExec(deleteQuery).WithArgs("a@b.c").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = storage.NewOTPRepository(db).ConsumeChallenge(context.Background(), "a@b.c", "123456", now, now.Add(time.Hour))
		assert.ErrorIs(t, err, errs.ErrExpired)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wrong code keeps challenge", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(selectQuery).WithArgs("a@b.c").
			WillReturnRows(sqlmock.NewRows([]string{"code", "expires_at"}).AddRow("123456", now.Add(time.Minute)))
		mock.ExpectRollback()

		err = storage.NewOTPRepository(db).ConsumeChallenge(context.Background(), "a@b.c", "000000", now, now.Add(time.Hour))
		assert.ErrorIs(t, err, errs.ErrInvalidCode)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no challenge", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(selectQuery).WithArgs("a@b.c").WillReturnRows(sqlmock.NewRows([]string{"code", "expires_at"}))
		mock.ExpectRollback()

		err = storage.NewOTPRepository(db).ConsumeChallenge(context.Background(), "a@b.c", "123456", now, now.Add(time.Hour))
		assert.ErrorIs(t, err, errs.ErrNoChallenge)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOTPRepository_PurgeExpired(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectExec("DELETE FROM otp_challenges WHERE expires_at < \\$1").WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM verified_emails WHERE expires_at < \\$1").WithArgs(now).
		WillReturnError(errors.New("connection reset"))

	deleted, err := storage.NewOTPRepository(db).PurgeExpired(context.Background(), now)
	assert.Error(t, err)
	assert.Equal(t, 3, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
