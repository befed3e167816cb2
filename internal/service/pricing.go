package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/linemk/checkout-service/internal/domain/errs"
	"github.com/linemk/checkout-service/internal/domain/models"
	"github.com/linemk/checkout-service/internal/storage"
)

// PricingValidator сверяет корзину клиента с каталогом.
type PricingValidator interface {
	ValidateCart(ctx context.Context, items []models.OrderItem) ([]models.OrderItem, error)
}

type pricingValidator struct {
	log      *slog.Logger
	products storage.ProductStorage
}

func NewPricingValidator(log *slog.Logger, products storage.ProductStorage) PricingValidator {
	return &pricingValidator{log: log, products: products}
}

// ValidateCart проверяет каждую позицию: товар существует, размер есть в каталоге,
// заявленная цена совпадает с ценой размера до копейки. Любая ошибка отклоняет
// всю корзину. Возвращает позиции с ценой из каталога.
func (v *pricingValidator) ValidateCart(ctx context.Context, items []models.OrderItem) ([]models.OrderItem, error) {
	const op = "service.PricingValidator.ValidateCart"
	logger := v.log.With(slog.String("op", op), slog.Int("items", len(items)))

	if len(items) == 0 {
		return nil, fmt.Errorf("%s: %w", op, errs.ErrEmptyCart)
	}

	// один товар может встречаться в корзине несколько раз с разными размерами
	catalog := make(map[string]*models.Product, len(items))
	validated := make([]models.OrderItem, 0, len(items))

	for _, it := range items {
		if it.Quantity < 1 {
			return nil, fmt.Errorf("%s: %w: product %s", op, errs.ErrInvalidQuantity, it.ProductID)
		}

		product, ok := catalog[it.ProductID]
		if !ok {
			p, err := v.products.GetProductByID(ctx, it.ProductID)
			if err != nil {
				if errors.Is(err, storage.ErrProductNotFound) {
					logger.Warn("unknown product in cart", slog.String("product", it.ProductID))
					return nil, fmt.Errorf("%s: %w: %s", op, errs.ErrUnknownProduct, it.ProductID)
				}
				logger.Error("failed to get product", slog.Any("error", err))
				return nil, fmt.Errorf("%s: failed to get product: %w", op, err)
			}
			catalog[it.ProductID] = p
			product = p
		}

		price, ok := product.PriceFor(it.Size)
		if !ok {
			return nil, fmt.Errorf("%s: %w: %s for product %s", op, errs.ErrInvalidSize, it.Size, product.Name)
		}
		if !price.Equal(it.Price) {
			logger.Warn("price mismatch",
				slog.String("product", it.ProductID),
				slog.String("size", it.Size),
				slog.String("claimed", it.Price.String()),
				slog.String("actual", price.String()),
			)
			return nil, fmt.Errorf("%s: %w for product %s", op, errs.ErrPriceMismatch, product.Name)
		}

		validated = append(validated, models.OrderItem{
			ProductID: it.ProductID,
			Size:      it.Size,
			Price:     price,
			Quantity:  it.Quantity,
		})
	}

	return validated, nil
}
