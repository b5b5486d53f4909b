package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Статусы заказа, выставляются администратором при обработке
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
)

// Order представляет заказ пользователя.
// Заказ с complete=false — это корзина; у пользователя она не более одной.
type Order struct {
	ID        int64        `json:"id"`
	UserID    int64        `json:"user_id"`
	Status    string       `json:"status"`
	Complete  bool         `json:"complete"`
	CreatedAt time.Time    `json:"created_at"`
	Items     []*OrderItem `json:"items,omitempty"`
}

// Total возвращает сумму заказа по позициям
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Total())
	}
	return total
}

// OrderItem представляет позицию заказа, одна строка на товар внутри заказа
type OrderItem struct {
	ID        int64    `json:"id"`
	OrderID   int64    `json:"order_id"`
	ProductID int64    `json:"product_id"`
	Quantity  int      `json:"quantity"`
	Product   *Product `json:"product,omitempty"` // Заполняется через JOIN с таблицей products
}

// Total возвращает стоимость позиции: количество * цена товара.
// Значение вычисляется при чтении и нигде не хранится.
func (i *OrderItem) Total() decimal.Decimal {
	if i.Product == nil {
		return decimal.Zero
	}
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
