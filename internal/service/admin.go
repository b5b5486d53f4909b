package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linemk/store-backend/internal/domain/models"
	"github.com/linemk/store-backend/internal/storage"
	"github.com/shopspring/decimal"
)

// DashboardView — сводка для админ-панели: счётчики и последние события.
type DashboardView struct {
	TotalProducts int              `json:"total_products"`
	TotalOrders   int              `json:"total_orders"`
	TotalUsers    int              `json:"total_users"`
	TotalReviews  int              `json:"total_reviews"`
	LatestOrders  []*models.Order  `json:"latest_orders"`
	LatestReviews []*models.Review `json:"latest_reviews"`
}

// ProductInput — поля товара, задаваемые администратором.
type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Available   bool
	CategoryID  int64
	ImageURL    string
}

// AdminService определяет операции админ-панели: сводка,
// управление каталогом и обработка заказов.
type AdminService interface {
	Dashboard(ctx context.Context) (*DashboardView, error)
	Products(ctx context.Context) ([]*models.Product, error)
	CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id int64, input ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	Orders(ctx context.Context) ([]*models.Order, error)
	// SetOrderStatus переводит заказ в один из статусов обработки.
	SetOrderStatus(ctx context.Context, orderID int64, status string) error
}

type adminService struct {
	log         *slog.Logger
	userRepo    storage.UserStorage
	productRepo storage.ProductStorage
	orderRepo   storage.OrderStorage
	reviewRepo  storage.ReviewStorage
}

func NewAdminService(log *slog.Logger, userRepo storage.UserStorage, productRepo storage.ProductStorage, orderRepo storage.OrderStorage, reviewRepo storage.ReviewStorage) AdminService {
	return &adminService{
		log:         log,
		userRepo:    userRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		reviewRepo:  reviewRepo,
	}
}

const dashboardLatestLimit = 5

func (s *adminService) Dashboard(ctx context.Context) (*DashboardView, error) {
	const op = "service.AdminService.Dashboard"
	logger := s.log.With(slog.String("op", op))

	view := &DashboardView{}
	var err error
	if view.TotalProducts, err = s.productRepo.CountProducts(ctx); err != nil {
		logger.Error("failed to count products", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if view.TotalOrders, err = s.orderRepo.CountOrders(ctx); err != nil {
		logger.Error("failed to count orders", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if view.TotalUsers, err = s.userRepo.CountUsers(ctx); err != nil {
		logger.Error("failed to count users", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if view.TotalReviews, err = s.reviewRepo.CountReviews(ctx); err != nil {
		logger.Error("failed to count reviews", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if view.LatestOrders, err = s.orderRepo.ListOrders(ctx, dashboardLatestLimit); err != nil {
		logger.Error("failed to list latest orders", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if view.LatestReviews, err = s.reviewRepo.ListLatestReviews(ctx, dashboardLatestLimit); err != nil {
		logger.Error("failed to list latest reviews", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return view, nil
}

func (s *adminService) Products(ctx context.Context) ([]*models.Product, error) {
	const op = "service.AdminService.Products"

	// Админ видит каталог без фильтров, включая недоступные товары
	products, err := s.productRepo.ListProducts(ctx, storage.ProductFilter{})
	if err != nil {
		s.log.Error("failed to list products", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return products, nil
}

func (s *adminService) CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error) {
	const op = "service.AdminService.CreateProduct"
	logger := s.log.With(slog.String("op", op), slog.String("name", input.Name))

	product, err := s.productRepo.CreateProduct(ctx, &models.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		Available:   input.Available,
		CategoryID:  input.CategoryID,
		ImageURL:    input.ImageURL,
	})
	if err != nil {
		logger.Error("failed to create product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("product created", slog.Int64("productID", product.ID))
	return product, nil
}

func (s *adminService) UpdateProduct(ctx context.Context, id int64, input ProductInput) (*models.Product, error) {
	const op = "service.AdminService.UpdateProduct"
	logger := s.log.With(slog.String("op", op), slog.Int64("productID", id))

	product := &models.Product{
		ID:          id,
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		Available:   input.Available,
		CategoryID:  input.CategoryID,
		ImageURL:    input.ImageURL,
	}
	if err := s.productRepo.UpdateProduct(ctx, product); err != nil {
		logger.Error("failed to update product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("product updated")
	return product, nil
}

func (s *adminService) DeleteProduct(ctx context.Context, id int64) error {
	const op = "service.AdminService.DeleteProduct"
	logger := s.log.With(slog.String("op", op), slog.Int64("productID", id))

	if err := s.productRepo.DeleteProduct(ctx, id); err != nil {
		logger.Error("failed to delete product", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("product deleted")
	return nil
}

func (s *adminService) Orders(ctx context.Context) ([]*models.Order, error) {
	const op = "service.AdminService.Orders"

	orders, err := s.orderRepo.ListOrders(ctx, 0)
	if err != nil {
		s.log.Error("failed to list orders", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

func (s *adminService) SetOrderStatus(ctx context.Context, orderID int64, status string) error {
	const op = "service.AdminService.SetOrderStatus"
	logger := s.log.With(slog.String("op", op), slog.Int64("orderID", orderID), slog.String("status", status))

	switch status {
	case models.OrderStatusPending, models.OrderStatusProcessing, models.OrderStatusShipped, models.OrderStatusDelivered:
	default:
		logger.Warn("unknown order status")
		return fmt.Errorf("%s: %w", op, ErrInvalidStatus)
	}

	if err := s.orderRepo.UpdateOrderStatus(ctx, orderID, status); err != nil {
		logger.Error("failed to update order status", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("order status updated")
	return nil
}
