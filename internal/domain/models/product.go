package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product представляет товар каталога
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"` // Цена товара, неотрицательная
	Stock       int             `json:"stock"` // Остаток на складе, инвариант stock >= 0
	Available   bool            `json:"available"`
	CategoryID  int64           `json:"category_id"`
	Category    *Category       `json:"category,omitempty"` // Заполняется через JOIN с таблицей categories
	ImageURL    string          `json:"image_url"`
	CreatedAt   time.Time       `json:"created_at"`
}
