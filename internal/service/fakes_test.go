package service_test

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/linemk/checkout-service/internal/domain/models"
	"github.com/linemk/checkout-service/internal/storage"
	"github.com/shopspring/decimal"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stdout, nil))

type fakeUserRepo struct {
	users   map[string]*models.User // ключ - email
	lockErr error
}

var _ storage.UserStorage = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (f *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := f.users[email]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	if _, ok := f.users[user.Email]; ok {
		return nil, storage.ErrUserExists
	}
	user.ID = int64(len(f.users) + 1)
	f.users[user.Email] = user
	return user, nil
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (f *fakeUserRepo) LockUserByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.User, error) {
	if f.lockErr != nil {
		return nil, f.lockErr
	}
	return f.GetUserByID(ctx, id)
}

func (f *fakeUserRepo) add(id int64, email string, isAdmin bool) *models.User {
	u := &models.User{ID: id, Email: email, IsAdmin: isAdmin}
	f.users[email] = u
	return u
}

type fakeProductRepo struct {
	products map[string]*models.Product
	calls    int
}

var _ storage.ProductStorage = (*fakeProductRepo)(nil)

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[string]*models.Product{
		"p1": {ID: "p1", Name: "Masala Chai", Prices: []models.PriceTier{
			{Size: "250g", Price: decimal.RequireFromString("60.00")},
			{Size: "500g", Price: decimal.RequireFromString("100.00")},
		}},
		"p2": {ID: "p2", Name: "Cardamom", Prices: []models.PriceTier{
			{Size: "100g", Price: decimal.RequireFromString("45.50")},
		}},
	}}
}

func (f *fakeProductRepo) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	f.calls++
	p, ok := f.products[id]
	if !ok {
		return nil, storage.ErrProductNotFound
	}
	return p, nil
}

// fakeOrderRepo повторяет ограничения схемы: один NEW на пользователя.
type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*models.Order
}

var _ storage.OrderStorage = (*fakeOrderRepo)(nil)

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]*models.Order)}
}

func (f *fakeOrderRepo) copyOf(o *models.Order) *models.Order {
	c := *o
	c.Items = append([]models.OrderItem(nil), o.Items...)
	return &c
}

func (f *fakeOrderRepo) draftOf(userID int64) *models.Order {
	for _, o := range f.orders {
		if o.UserID == userID && o.Status == models.StatusNew {
			return o
		}
	}
	return nil
}

func (f *fakeOrderRepo) AbandonDraftTx(ctx context.Context, tx *sql.Tx, userID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d := f.draftOf(userID); d != nil {
		d.Status = models.StatusAbandoned
		return 1, nil
	}
	return 0, nil
}

func (f *fakeOrderRepo) CreateOrderTx(ctx context.Context, tx *sql.Tx, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if order.Status == models.StatusNew && f.draftOf(order.UserID) != nil {
		return storage.ErrDraftExists
	}
	f.orders[order.ID] = f.copyOf(order)
	return nil
}

func (f *fakeOrderRepo) GetDraftByUserID(ctx context.Context, userID int64) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d := f.draftOf(userID); d != nil {
		return f.copyOf(d), nil
	}
	return nil, storage.ErrOrderNotFound
}

func (f *fakeOrderRepo) LockDraftByUserIDTx(ctx context.Context, tx *sql.Tx, userID int64) (*models.Order, error) {
	return f.GetDraftByUserID(ctx, userID)
}

func (f *fakeOrderRepo) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, storage.ErrOrderNotFound
	}
	return f.copyOf(o), nil
}

func (f *fakeOrderRepo) LockOrderByIDTx(ctx context.Context, tx *sql.Tx, id string) (*models.Order, error) {
	return f.GetOrderByID(ctx, id)
}

func (f *fakeOrderRepo) ListOrders(ctx context.Context, filter models.OrderFilter) ([]*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Order
	for _, o := range f.orders {
		if filter.UserID != nil && o.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		if filter.Status == nil && !filter.IncludeAbandoned && o.Status == models.StatusAbandoned {
			continue
		}
		out = append(out, f.copyOf(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeOrderRepo) MarkPaidTx(ctx context.Context, tx *sql.Tx, orderID, paymentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok {
		return storage.ErrOrderNotFound
	}
	o.Status = models.StatusPayed
	o.PaymentID = &paymentID
	return nil
}

func (f *fakeOrderRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, orderID string, status models.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok {
		return storage.ErrOrderNotFound
	}
	o.Status = status
	return nil
}

func (f *fakeOrderRepo) SetProviderOrderID(ctx context.Context, orderID, providerOrderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok || o.Status != models.StatusNew {
		return storage.ErrOrderNotFound
	}
	o.ProviderOrderID = &providerOrderID
	return nil
}

func (f *fakeOrderRepo) DeleteOrderTx(ctx context.Context, tx *sql.Tx, orderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.orders[orderID]; !ok {
		return storage.ErrOrderNotFound
	}
	delete(f.orders, orderID)
	return nil
}

func (f *fakeOrderRepo) CountByStatus(ctx context.Context, userID int64, status models.OrderStatus) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, o := range f.orders {
		if o.UserID == userID && o.Status == status {
			n++
		}
	}
	return n, nil
}

func (f *fakeOrderRepo) put(o *models.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[o.ID] = o
}

func (f *fakeOrderRepo) countStatus(userID int64, status models.OrderStatus) int {
	n, _ := f.CountByStatus(context.Background(), userID, status)
	return n
}

// fakePaymentRepo повторяет уникальность (method, provider_payment_id).
type fakePaymentRepo struct {
	mu       sync.Mutex
	payments map[string]*models.Payment
}

var _ storage.PaymentStorage = (*fakePaymentRepo)(nil)

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[string]*models.Payment)}
}

func (f *fakePaymentRepo) CreatePaymentTx(ctx context.Context, tx *sql.Tx, p *models.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.payments {
		if existing.Method == p.Method && existing.ProviderPaymentID == p.ProviderPaymentID {
			return storage.ErrDuplicatePayment
		}
	}
	c := *p
	f.payments[p.ID] = &c
	return nil
}

func (f *fakePaymentRepo) LockPaymentByIDTx(ctx context.Context, tx *sql.Tx, id string) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[id]
	if !ok {
		return nil, storage.ErrPaymentNotFound
	}
	c := *p
	return &c, nil
}

func (f *fakePaymentRepo) UpdatePaymentStatusTx(ctx context.Context, tx *sql.Tx, id string, status models.PaymentStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[id]
	if !ok {
		return storage.ErrPaymentNotFound
	}
	p.Status = status
	return nil
}

func (f *fakePaymentRepo) CountByOrderIDTx(ctx context.Context, tx *sql.Tx, orderID string, statuses ...models.PaymentStatus) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.payments {
		if p.OrderID != orderID {
			continue
		}
		if len(statuses) == 0 || slices.Contains(statuses, p.Status) {
			n++
		}
	}
	return n, nil
}

func (f *fakePaymentRepo) GetPaymentsByOrderID(ctx context.Context, orderID string) ([]*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Payment
	for _, p := range f.payments {
		if p.OrderID == orderID {
			c := *p
			out = append(out, &c)
		}
	}
	return out, nil
}

func (f *fakePaymentRepo) put(p *models.Payment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payments[p.ID] = p
}

func (f *fakePaymentRepo) byOrder(orderID string) []*models.Payment {
	out, _ := f.GetPaymentsByOrderID(context.Background(), orderID)
	return out
}

func otpChallenge(email, code string) models.OTPChallenge {
	return models.OTPChallenge{Email: email, Code: code, ExpiresAt: time.Now().Add(time.Minute)}
}
