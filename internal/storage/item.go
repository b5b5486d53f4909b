package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/linemk/store-backend/internal/domain/models"
)

var ErrItemNotFound = errors.New("order item not found")

// OrderItemStorage описывает методы для работы с позициями заказа.
// Инвариант: одна строка на пару (заказ, товар), закреплён уникальным индексом.
type OrderItemStorage interface {
	// GetItemsByOrderID возвращает позиции заказа с данными товара для подсчёта сумм.
	GetItemsByOrderID(ctx context.Context, orderID int64) ([]*models.OrderItem, error)
	// FindItemTx ищет позицию по паре (заказ, товар), используя транзакцию.
	FindItemTx(ctx context.Context, tx *sql.Tx, orderID, productID int64) (*models.OrderItem, error)
	// GetOpenItemTx получает позицию открытого заказа пользователя.
	// Чужая позиция или позиция завершённого заказа даёт ErrItemNotFound.
	GetOpenItemTx(ctx context.Context, tx *sql.Tx, itemID, userID int64) (*models.OrderItem, error)
	// ListActiveItemsTx возвращает позиции с положительным количеством.
	ListActiveItemsTx(ctx context.Context, tx *sql.Tx, orderID int64) ([]*models.OrderItem, error)
	CreateItemTx(ctx context.Context, tx *sql.Tx, orderID, productID int64, quantity int) error
	UpdateItemQuantityTx(ctx context.Context, tx *sql.Tx, itemID int64, quantity int) error
	DeleteItemTx(ctx context.Context, tx *sql.Tx, itemID int64) error
}

type orderItemRepository struct {
	db *sql.DB
}

func NewOrderItemRepository(db *sql.DB) OrderItemStorage {
	return &orderItemRepository{db: db}
}

// GetItemsByOrderID возвращает позиции с JOIN, чтобы получить цену и имя товара.
func (r *orderItemRepository) GetItemsByOrderID(ctx context.Context, orderID int64) ([]*models.OrderItem, error) {
	query := `
		SELECT i.id, i.order_id, i.product_id, i.quantity,
		       p.id, p.name, p.description, p.price, p.stock, p.available, p.category_id, p.image_url, p.created_at
		FROM order_items i
		JOIN products p ON i.product_id = p.id
		WHERE i.order_id = $1
		ORDER BY i.id`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []*models.OrderItem
	for rows.Next() {
		item := &models.OrderItem{Product: &models.Product{}}
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.Quantity,
			&item.Product.ID, &item.Product.Name, &item.Product.Description, &item.Product.Price,
			&item.Product.Stock, &item.Product.Available, &item.Product.CategoryID,
			&item.Product.ImageURL, &item.Product.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *orderItemRepository) FindItemTx(ctx context.Context, tx *sql.Tx, orderID, productID int64) (*models.OrderItem, error) {
	item := &models.OrderItem{}
	row := tx.QueryRowContext(ctx,
		"SELECT id, order_id, product_id, quantity FROM order_items WHERE order_id = $1 AND product_id = $2",
		orderID, productID)
	if err := row.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

func (r *orderItemRepository) GetOpenItemTx(ctx context.Context, tx *sql.Tx, itemID, userID int64) (*models.OrderItem, error) {
	item := &models.OrderItem{}
	query := `
		SELECT i.id, i.order_id, i.product_id, i.quantity
		FROM order_items i
		JOIN orders o ON i.order_id = o.id
		WHERE i.id = $1 AND o.user_id = $2 AND o.complete = FALSE`
	row := tx.QueryRowContext(ctx, query, itemID, userID)
	if err := row.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

func (r *orderItemRepository) ListActiveItemsTx(ctx context.Context, tx *sql.Tx, orderID int64) ([]*models.OrderItem, error) {
	rows, err := tx.QueryContext(ctx,
		"SELECT id, order_id, product_id, quantity FROM order_items WHERE order_id = $1 AND quantity > 0 ORDER BY id",
		orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query active items: %w", err)
	}
	defer rows.Close()

	var items []*models.OrderItem
	for rows.Next() {
		item := &models.OrderItem{}
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *orderItemRepository) CreateItemTx(ctx context.Context, tx *sql.Tx, orderID, productID int64, quantity int) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO order_items (order_id, product_id, quantity) VALUES ($1, $2, $3)",
		orderID, productID, quantity)
	if err != nil {
		return fmt.Errorf("failed to create order item: %w", err)
	}
	return nil
}

func (r *orderItemRepository) UpdateItemQuantityTx(ctx context.Context, tx *sql.Tx, itemID int64, quantity int) error {
	res, err := tx.ExecContext(ctx, "UPDATE order_items SET quantity = $1 WHERE id = $2", quantity, itemID)
	if err != nil {
		return fmt.Errorf("failed to update order item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *orderItemRepository) DeleteItemTx(ctx context.Context, tx *sql.Tx, itemID int64) error {
	res, err := tx.ExecContext(ctx, "DELETE FROM order_items WHERE id = $1", itemID)
	if err != nil {
		return fmt.Errorf("failed to delete order item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrItemNotFound
	}
	return nil
}
