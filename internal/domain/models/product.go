package models

import "github.com/shopspring/decimal"

// PriceTier - цена товара для конкретного размера (фасовки)
type PriceTier struct {
	Size  string          `json:"size"`
	Price decimal.Decimal `json:"price"`
}

// Product - товар каталога; здесь используется только для сверки цен
type Product struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Prices []PriceTier `json:"quantities"`
}

// PriceFor возвращает цену для размера.
func (p *Product) PriceFor(size string) (decimal.Decimal, bool) {
	for _, t := range p.Prices {
		if t.Size == size {
			return t.Price, true
		}
	}
	return decimal.Zero, false
}
