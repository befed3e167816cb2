package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus - статус заказа
type OrderStatus string

const (
	StatusNew       OrderStatus = "NEW"
	StatusPayed     OrderStatus = "PAYED"
	StatusShipped   OrderStatus = "SHIPPED"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCanceled  OrderStatus = "CANCELED"
	StatusRefunded  OrderStatus = "REFUNDED"
	// StatusAbandoned - черновик, вытесненный новой корзиной пользователя
	StatusAbandoned OrderStatus = "ABANDONED"
)

// AllOrderStatuses возвращает все известные статусы в порядке жизненного цикла.
func AllOrderStatuses() []OrderStatus {
	return []OrderStatus{
		StatusNew, StatusPayed, StatusShipped, StatusDelivered,
		StatusCanceled, StatusRefunded, StatusAbandoned,
	}
}

// ParseOrderStatus проверяет, что строка является известным статусом.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	for _, st := range AllOrderStatuses() {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Paid - заказ уже был оплачен (в том числе прошёл дальше по доставке или возвращён).
func (s OrderStatus) Paid() bool {
	switch s {
	case StatusPayed, StatusShipped, StatusDelivered, StatusRefunded:
		return true
	}
	return false
}

// orderTransitions - разрешённые административные переходы.
// NEW -> PAYED сюда не входит: он выполняется только подтверждением оплаты.
var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusNew:       {StatusCanceled},
	StatusPayed:     {StatusShipped, StatusCanceled, StatusRefunded},
	StatusShipped:   {StatusDelivered, StatusRefunded},
	StatusDelivered: {StatusRefunded},
}

// CanTransition сообщает, разрешён ли переход from -> to по таблице переходов.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OrderItem - позиция заказа. Цена фиксируется на момент проверки корзины.
type OrderItem struct {
	ProductID string          `json:"product"`
	Size      string          `json:"size"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// Subtotal - стоимость позиции
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order представляет заказ пользователя
type Order struct {
	ID              string          `json:"id"`
	UserID          int64           `json:"user"`
	Name            string          `json:"name,omitempty"`
	Address         string          `json:"address,omitempty"`
	Items           []OrderItem     `json:"items"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	Status          OrderStatus     `json:"status"`
	PaymentID       *string         `json:"paymentId,omitempty"`
	ProviderOrderID *string         `json:"providerOrderId,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// TotalOf считает сумму price × quantity по позициям.
func TotalOf(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// OrderFilter - фильтр административного списка заказов
type OrderFilter struct {
	UserID *int64
	Status *OrderStatus
	From   *time.Time
	To     *time.Time
	// IncludeAbandoned - показывать вытесненные черновики
	IncludeAbandoned bool
}
