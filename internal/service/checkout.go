package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/linemk/store-backend/internal/storage"
)

// CheckoutService определяет интерфейс оформления заказа.
type CheckoutService interface {
	// Checkout завершает открытый заказ пользователя и возвращает его id.
	Checkout(ctx context.Context, userID int64) (int64, error)
}

type checkoutService struct {
	log         *slog.Logger
	db          *sql.DB
	orderRepo   storage.OrderStorage
	itemRepo    storage.OrderItemStorage
	productRepo storage.ProductStorage
}

func NewCheckoutService(log *slog.Logger, db *sql.DB, orderRepo storage.OrderStorage, itemRepo storage.OrderItemStorage, productRepo storage.ProductStorage) CheckoutService {
	return &checkoutService{
		log:         log,
		db:          db,
		orderRepo:   orderRepo,
		itemRepo:    itemRepo,
		productRepo: productRepo,
	}
}

// Checkout списывает остаток по каждой позиции и закрывает заказ.
// Вся операция выполняется в одной транзакции: списания и флаг complete
// либо фиксируются вместе, либо откатываются вместе — частичного оформления
// не бывает. Списание условное (не ниже нуля), заказ заблокирован на время
// транзакции, так что конкурентные оформления не уводят остаток в минус.
func (s *checkoutService) Checkout(ctx context.Context, userID int64) (int64, error) {
	const op = "service.CheckoutService.Checkout"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))
	logger.Info("starting checkout transaction")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	// Открытый заказ под блокировкой; повторное оформление не найдёт его
	order, err := s.orderRepo.LockOpenOrderTx(ctx, tx, userID)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to get open order", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to get open order: %w", op, err)
	}

	items, err := s.itemRepo.ListActiveItemsTx(ctx, tx, order.ID)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to get order items", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to get order items: %w", op, err)
	}

	if len(items) == 0 {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Warn("cart is empty")
		return 0, fmt.Errorf("%s: %w", op, ErrEmptyCart)
	}

	// Списываем остаток по каждой позиции
	for _, item := range items {
		if err := s.productRepo.DecrementStockTx(ctx, tx, item.ProductID, item.Quantity); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			logger.Error("failed to decrement stock", slog.Int64("productID", item.ProductID), slog.Any("error", err))
			return 0, fmt.Errorf("%s: failed to decrement stock: %w", op, err)
		}
	}

	if err := s.orderRepo.MarkOrderCompleteTx(ctx, tx, order.ID); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to complete order", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to complete order: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("checkout completed successfully", slog.Int64("orderID", order.ID))
	return order.ID, nil
}
