package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linemk/store-backend/internal/domain/models"
	"github.com/linemk/store-backend/internal/storage"
)

// CatalogService определяет интерфейс для просмотра каталога.
// Фильтры поиска без состояния и пересчитываются на каждый запрос.
type CatalogService interface {
	Categories(ctx context.Context) ([]*models.Category, error)
	// CategoryProducts возвращает категорию по slug и её доступные товары,
	// пропущенные через фильтр.
	CategoryProducts(ctx context.Context, slug string, filter storage.ProductFilter) (*CategoryProductsView, error)
	// Products возвращает товары всего каталога, пропущенные через фильтр.
	Products(ctx context.Context, filter storage.ProductFilter) ([]*models.Product, error)
	// Product возвращает товар с отзывами, новые отзывы первыми.
	Product(ctx context.Context, id int64) (*ProductDetail, error)
}

// CategoryProductsView — категория вместе с отфильтрованным списком товаров.
type CategoryProductsView struct {
	Category *models.Category  `json:"category"`
	Products []*models.Product `json:"products"`
}

// ProductDetail — товар с вложенными отзывами.
type ProductDetail struct {
	models.Product
	Reviews []*models.Review `json:"reviews"`
}

type catalogService struct {
	log          *slog.Logger
	categoryRepo storage.CategoryStorage
	productRepo  storage.ProductStorage
	reviewRepo   storage.ReviewStorage
}

func NewCatalogService(log *slog.Logger, categoryRepo storage.CategoryStorage, productRepo storage.ProductStorage, reviewRepo storage.ReviewStorage) CatalogService {
	return &catalogService{
		log:          log,
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		reviewRepo:   reviewRepo,
	}
}

func (s *catalogService) Categories(ctx context.Context) ([]*models.Category, error) {
	const op = "service.CatalogService.Categories"

	categories, err := s.categoryRepo.ListCategories(ctx)
	if err != nil {
		s.log.Error("failed to list categories", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list categories: %w", op, err)
	}
	return categories, nil
}

// CategoryProducts сужает фильтр до категории; внутри категории
// показываются только доступные товары.
func (s *catalogService) CategoryProducts(ctx context.Context, slug string, filter storage.ProductFilter) (*CategoryProductsView, error) {
	const op = "service.CatalogService.CategoryProducts"
	logger := s.log.With(slog.String("op", op), slog.String("slug", slug))

	category, err := s.categoryRepo.GetCategoryBySlug(ctx, slug)
	if err != nil {
		logger.Error("failed to get category", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get category: %w", op, err)
	}

	filter.CategoryID = category.ID
	filter.OnlyAvailable = true
	products, err := s.productRepo.ListProducts(ctx, filter)
	if err != nil {
		logger.Error("failed to list products", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list products: %w", op, err)
	}

	return &CategoryProductsView{Category: category, Products: products}, nil
}

func (s *catalogService) Products(ctx context.Context, filter storage.ProductFilter) ([]*models.Product, error) {
	const op = "service.CatalogService.Products"

	products, err := s.productRepo.ListProducts(ctx, filter)
	if err != nil {
		s.log.Error("failed to list products", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list products: %w", op, err)
	}
	return products, nil
}

func (s *catalogService) Product(ctx context.Context, id int64) (*ProductDetail, error) {
	const op = "service.CatalogService.Product"
	logger := s.log.With(slog.String("op", op), slog.Int64("productID", id))

	product, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		logger.Error("failed to get product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get product: %w", op, err)
	}

	reviews, err := s.reviewRepo.GetReviewsByProductID(ctx, id)
	if err != nil {
		logger.Error("failed to get reviews", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get reviews: %w", op, err)
	}
	if reviews == nil {
		reviews = []*models.Review{}
	}

	return &ProductDetail{Product: *product, Reviews: reviews}, nil
}
