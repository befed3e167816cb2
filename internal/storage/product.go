package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/linemk/checkout-service/internal/domain/models"
	"github.com/shopspring/decimal"
)

// ProductStorage - чтение каталога; управление каталогом живёт в другом сервисе.
type ProductStorage interface {
	// GetProductByID возвращает товар вместе с ценами по размерам.
	GetProductByID(ctx context.Context, id string) (*models.Product, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository создаёт репозиторий каталога.
func NewProductRepository(db *sql.DB) ProductStorage {
	return &productRepository{db: db}
}

func (r *productRepository) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	query := `
		SELECT p.id, p.name, pp.size, pp.price
		FROM products p
		LEFT JOIN product_prices pp ON pp.product_id = p.id
		WHERE p.id = $1
		ORDER BY pp.size`
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query product: %w", err)
	}
	defer rows.Close()

	var product *models.Product
	for rows.Next() {
		var (
			pid, name string
			size      sql.NullString
			price     decimal.NullDecimal
		)
		if err := rows.Scan(&pid, &name, &size, &price); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		if product == nil {
			product = &models.Product{ID: pid, Name: name}
		}
		// товар без цен приходит одной строкой с NULL
		if size.Valid && price.Valid {
			product.Prices = append(product.Prices, models.PriceTier{Size: size.String, Price: price.Decimal})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}
