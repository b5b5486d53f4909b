package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/linemk/store-backend/internal/domain/models"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderStorage описывает методы для работы с заказами.
// Открытый заказ (complete=false) — корзина пользователя, не более одной.
type OrderStorage interface {
	// GetOpenOrder возвращает открытый заказ пользователя или ErrOrderNotFound.
	GetOpenOrder(ctx context.Context, userID int64) (*models.Order, error)
	// GetOrCreateOpenOrder возвращает открытый заказ, лениво создавая его при первом обращении.
	GetOrCreateOpenOrder(ctx context.Context, userID int64) (*models.Order, error)
	// LockOpenOrderTx получает открытый заказ с блокировкой строки, используя транзакцию.
	LockOpenOrderTx(ctx context.Context, tx *sql.Tx, userID int64) (*models.Order, error)
	// MarkOrderCompleteTx переводит заказ в завершённые; обратного перехода нет.
	MarkOrderCompleteTx(ctx context.Context, tx *sql.Tx, orderID int64) error
	// ListCompletedOrders возвращает завершённые заказы пользователя, новые первыми.
	ListCompletedOrders(ctx context.Context, userID int64) ([]*models.Order, error)
	GetOrderByID(ctx context.Context, orderID int64) (*models.Order, error)
	// ListOrders возвращает заказы новые первыми; limit <= 0 — без ограничения.
	ListOrders(ctx context.Context, limit int) ([]*models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status string) error
	CountOrders(ctx context.Context) (int, error)
}

// orderRepository — конкретная реализация OrderStorage.
type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт новый репозиторий заказов.
func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

const orderColumns = "id, user_id, status, complete, created_at"

func scanOrder(row interface{ Scan(...any) error }) (*models.Order, error) {
	order := &models.Order{}
	if err := row.Scan(&order.ID, &order.UserID, &order.Status, &order.Complete, &order.CreatedAt); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) GetOpenOrder(ctx context.Context, userID int64) (*models.Order, error) {
	query := fmt.Sprintf("SELECT %s FROM orders WHERE user_id = $1 AND complete = FALSE", orderColumns)
	order, err := scanOrder(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) GetOrCreateOpenOrder(ctx context.Context, userID int64) (*models.Order, error) {
	order, err := r.GetOpenOrder(ctx, userID)
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, ErrOrderNotFound) {
		return nil, err
	}

	query := fmt.Sprintf("INSERT INTO orders (user_id, status, complete, created_at) VALUES ($1, $2, FALSE, NOW()) RETURNING %s", orderColumns)
	order, err = scanOrder(r.db.QueryRowContext(ctx, query, userID, models.OrderStatusPending))
	if err != nil {
		// Частичный уникальный индекс допускает одну корзину на пользователя:
		// при гонке двух создателей проигравший перечитывает существующую.
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return r.GetOpenOrder(ctx, userID)
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return order, nil
}

func (r *orderRepository) LockOpenOrderTx(ctx context.Context, tx *sql.Tx, userID int64) (*models.Order, error) {
	query := fmt.Sprintf("SELECT %s FROM orders WHERE user_id = $1 AND complete = FALSE FOR UPDATE NOWAIT", orderColumns)
	order, err := scanOrder(tx.QueryRowContext(ctx, query, userID))
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "55P03" { // lock
				return nil, fmt.Errorf("resource is locked, please try again: %w", err)
			}
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) MarkOrderCompleteTx(ctx context.Context, tx *sql.Tx, orderID int64) error {
	res, err := tx.ExecContext(ctx, "UPDATE orders SET complete = TRUE WHERE id = $1 AND complete = FALSE", orderID)
	if err != nil {
		return fmt.Errorf("failed to complete order: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *orderRepository) ListCompletedOrders(ctx context.Context, userID int64) ([]*models.Order, error) {
	query := fmt.Sprintf("SELECT %s FROM orders WHERE user_id = $1 AND complete = TRUE ORDER BY created_at DESC", orderColumns)
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *orderRepository) GetOrderByID(ctx context.Context, orderID int64) (*models.Order, error) {
	query := fmt.Sprintf("SELECT %s FROM orders WHERE id = $1", orderColumns)
	order, err := scanOrder(r.db.QueryRowContext(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) ListOrders(ctx context.Context, limit int) ([]*models.Order, error) {
	query := fmt.Sprintf("SELECT %s FROM orders ORDER BY created_at DESC", orderColumns)
	var args []any
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func collectOrders(rows *sql.Rows) ([]*models.Order, error) {
	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) UpdateOrderStatus(ctx context.Context, orderID int64, status string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE orders SET status = $1 WHERE id = $2", status, orderID)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *orderRepository) CountOrders(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}
