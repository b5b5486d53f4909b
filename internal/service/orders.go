package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/linemk/store-backend/internal/domain/models"
	"github.com/linemk/store-backend/internal/storage"
	"github.com/shopspring/decimal"
)

// OrderView — заказ с позициями и итоговой суммой для истории покупок.
type OrderView struct {
	ID        int64           `json:"id"`
	Status    string          `json:"status"`
	Complete  bool            `json:"complete"`
	CreatedAt time.Time       `json:"created_at"`
	Items     []CartItem      `json:"items"`
	Total     decimal.Decimal `json:"total"`
}

// OrderService определяет интерфейс истории заказов пользователя.
type OrderService interface {
	// MyOrders возвращает завершённые заказы пользователя, новые первыми.
	MyOrders(ctx context.Context, userID int64) ([]*OrderView, error)
	// Order возвращает один заказ; чужой заказ неотличим от несуществующего.
	Order(ctx context.Context, userID, orderID int64) (*OrderView, error)
}

type orderService struct {
	log       *slog.Logger
	orderRepo storage.OrderStorage
	itemRepo  storage.OrderItemStorage
}

func NewOrderService(log *slog.Logger, orderRepo storage.OrderStorage, itemRepo storage.OrderItemStorage) OrderService {
	return &orderService{
		log:       log,
		orderRepo: orderRepo,
		itemRepo:  itemRepo,
	}
}

func (s *orderService) MyOrders(ctx context.Context, userID int64) ([]*OrderView, error) {
	const op = "service.OrderService.MyOrders"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))

	orders, err := s.orderRepo.ListCompletedOrders(ctx, userID)
	if err != nil {
		logger.Error("failed to list orders", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list orders: %w", op, err)
	}

	views := make([]*OrderView, 0, len(orders))
	for _, order := range orders {
		view, err := s.buildView(ctx, order)
		if err != nil {
			logger.Error("failed to build order view", slog.Int64("orderID", order.ID), slog.Any("error", err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *orderService) Order(ctx context.Context, userID, orderID int64) (*OrderView, error) {
	const op = "service.OrderService.Order"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.Int64("orderID", orderID))

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		logger.Error("failed to get order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get order: %w", op, err)
	}
	// Чужой заказ отдаём как отсутствующий
	if order.UserID != userID {
		logger.Warn("order belongs to another user")
		return nil, fmt.Errorf("%s: %w", op, storage.ErrOrderNotFound)
	}

	view, err := s.buildView(ctx, order)
	if err != nil {
		logger.Error("failed to build order view", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return view, nil
}

func (s *orderService) buildView(ctx context.Context, order *models.Order) (*OrderView, error) {
	items, err := s.itemRepo.GetItemsByOrderID(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}

	view := &OrderView{
		ID:        order.ID,
		Status:    order.Status,
		Complete:  order.Complete,
		CreatedAt: order.CreatedAt,
		Items:     make([]CartItem, 0, len(items)),
		Total:     decimal.Zero,
	}
	for _, item := range items {
		total := item.Total()
		view.Items = append(view.Items, CartItem{
			ID:         item.ID,
			Product:    item.Product,
			Quantity:   item.Quantity,
			TotalPrice: total,
		})
		view.Total = view.Total.Add(total)
	}
	return view, nil
}
