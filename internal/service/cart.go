package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/linemk/store-backend/internal/domain/models"
	"github.com/linemk/store-backend/internal/storage"
	"github.com/shopspring/decimal"
)

// Действия над позицией корзины
const (
	ActionIncrease = "increase"
	ActionDecrease = "decrease"
	ActionRemove   = "remove"
)

// CartItem — позиция корзины в ответе сервиса, стоимость посчитана при чтении.
type CartItem struct {
	ID         int64           `json:"id"`
	Product    *models.Product `json:"product"`
	Quantity   int             `json:"quantity"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// CartView — корзина целиком: позиции и общая сумма.
type CartView struct {
	OrderID    int64           `json:"order_id"`
	Items      []CartItem      `json:"items"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// UpdateItemResult сообщает, удалена ли позиция и какое количество осталось.
type UpdateItemResult struct {
	Removed  bool `json:"removed"`
	Quantity int  `json:"quantity"`
}

// CartService определяет операции над корзиной пользователя.
type CartService interface {
	Cart(ctx context.Context, userID int64) (*CartView, error)
	AddItem(ctx context.Context, userID, productID int64, quantity int) error
	UpdateItem(ctx context.Context, userID, itemID int64, action string) (*UpdateItemResult, error)
}

type cartService struct {
	log         *slog.Logger
	db          *sql.DB
	orderRepo   storage.OrderStorage
	itemRepo    storage.OrderItemStorage
	productRepo storage.ProductStorage
}

func NewCartService(log *slog.Logger, db *sql.DB, orderRepo storage.OrderStorage, itemRepo storage.OrderItemStorage, productRepo storage.ProductStorage) CartService {
	return &cartService{
		log:         log,
		db:          db,
		orderRepo:   orderRepo,
		itemRepo:    itemRepo,
		productRepo: productRepo,
	}
}

// Cart возвращает открытый заказ пользователя с позициями и общей суммой.
// Если корзины ещё нет, она создаётся; пустая корзина — пустой список и сумма 0.
func (s *cartService) Cart(ctx context.Context, userID int64) (*CartView, error) {
	const op = "service.CartService.Cart"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))

	order, err := s.orderRepo.GetOrCreateOpenOrder(ctx, userID)
	if err != nil {
		logger.Error("failed to get open order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get open order: %w", op, err)
	}

	items, err := s.itemRepo.GetItemsByOrderID(ctx, order.ID)
	if err != nil {
		logger.Error("failed to get order items", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get order items: %w", op, err)
	}

	view := &CartView{
		OrderID:    order.ID,
		Items:      make([]CartItem, 0, len(items)),
		GrandTotal: decimal.Zero,
	}
	for _, item := range items {
		total := item.Total()
		view.Items = append(view.Items, CartItem{
			ID:         item.ID,
			Product:    item.Product,
			Quantity:   item.Quantity,
			TotalPrice: total,
		})
		view.GrandTotal = view.GrandTotal.Add(total)
	}
	return view, nil
}

// AddItem добавляет товар в корзину.
// Политика количества — ограничение остатком: новая позиция получает min(qty, stock),
// существующая — min(текущее+qty, stock). Строка товара блокируется на время
// транзакции, чтобы конкурентные добавления не раздали больше остатка.
func (s *cartService) AddItem(ctx context.Context, userID, productID int64, quantity int) error {
	const op = "service.CartService.AddItem"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.Int64("productID", productID), slog.Int("quantity", quantity))
	logger.Info("adding item to cart")

	order, err := s.orderRepo.GetOrCreateOpenOrder(ctx, userID)
	if err != nil {
		logger.Error("failed to get open order", slog.Any("error", err))
		return fmt.Errorf("%s: failed to get open order: %w", op, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	// Блокируем строку товара: остаток перечитывается под блокировкой
	product, err := s.productRepo.LockProductByIDTx(ctx, tx, productID)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to get product", slog.Any("error", err))
		return fmt.Errorf("%s: failed to get product: %w", op, err)
	}

	item, err := s.itemRepo.FindItemTx(ctx, tx, order.ID, productID)
	switch {
	case err == nil:
		// Существующая позиция: добавляем с ограничением остатком
		newQty := min(item.Quantity+quantity, product.Stock)
		if err := s.itemRepo.UpdateItemQuantityTx(ctx, tx, item.ID, newQty); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			logger.Error("failed to update item quantity", slog.Any("error", err))
			return fmt.Errorf("%s: failed to update item quantity: %w", op, err)
		}
	case errors.Is(err, storage.ErrItemNotFound):
		// Новая позиция: количество ограничивается остатком;
		// при нулевом остатке строка не создаётся
		newQty := min(quantity, product.Stock)
		if newQty > 0 {
			if err := s.itemRepo.CreateItemTx(ctx, tx, order.ID, productID, newQty); err != nil {
				if rbErr := tx.Rollback(); rbErr != nil {
					logger.Error("transaction rollback failed", slog.Any("error", rbErr))
				}
				logger.Error("failed to create item", slog.Any("error", err))
				return fmt.Errorf("%s: failed to create item: %w", op, err)
			}
		}
	default:
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to find item", slog.Any("error", err))
		return fmt.Errorf("%s: failed to find item: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("item added to cart")
	return nil
}

// UpdateItem изменяет одну позицию корзины: increase, decrease или remove.
// Позиция должна принадлежать открытому заказу вызывающего пользователя.
func (s *cartService) UpdateItem(ctx context.Context, userID, itemID int64, action string) (*UpdateItemResult, error) {
	const op = "service.CartService.UpdateItem"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.Int64("itemID", itemID), slog.String("action", action))
	logger.Info("updating cart item")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	item, err := s.itemRepo.GetOpenItemTx(ctx, tx, itemID, userID)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to get item", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get item: %w", op, err)
	}

	var result *UpdateItemResult
	switch action {
	case ActionIncrease:
		product, err := s.productRepo.LockProductByIDTx(ctx, tx, item.ProductID)
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			logger.Error("failed to get product", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to get product: %w", op, err)
		}
		if item.Quantity >= product.Stock {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			logger.Warn("stock limit reached", slog.Int("quantity", item.Quantity), slog.Int("stock", product.Stock))
			return nil, fmt.Errorf("%s: %w", op, ErrStockLimit)
		}
		if err := s.itemRepo.UpdateItemQuantityTx(ctx, tx, item.ID, item.Quantity+1); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			logger.Error("failed to update item quantity", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to update item quantity: %w", op, err)
		}
		result = &UpdateItemResult{Quantity: item.Quantity + 1}
	case ActionDecrease:
		// Неположительное количество не сохраняется: позиция удаляется
		if item.Quantity-1 <= 0 {
			if err := s.itemRepo.DeleteItemTx(ctx, tx, item.ID); err != nil {
				if rbErr := tx.Rollback(); rbErr != nil {
					logger.Error("transaction rollback failed", slog.Any("error", rbErr))
				}
				logger.Error("failed to delete item", slog.Any("error", err))
				return nil, fmt.Errorf("%s: failed to delete item: %w", op, err)
			}
			result = &UpdateItemResult{Removed: true}
		} else {
			if err := s.itemRepo.UpdateItemQuantityTx(ctx, tx, item.ID, item.Quantity-1); err != nil {
				if rbErr := tx.Rollback(); rbErr != nil {
					logger.Error("transaction rollback failed", slog.Any("error", rbErr))
				}
				logger.Error("failed to update item quantity", slog.Any("error", err))
				return nil, fmt.Errorf("%s: failed to update item quantity: %w", op, err)
			}
			result = &UpdateItemResult{Quantity: item.Quantity - 1}
		}
	case ActionRemove:
		if err := s.itemRepo.DeleteItemTx(ctx, tx, item.ID); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			logger.Error("failed to delete item", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to delete item: %w", op, err)
		}
		result = &UpdateItemResult{Removed: true}
	default:
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidAction)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("cart item updated")
	return result, nil
}
