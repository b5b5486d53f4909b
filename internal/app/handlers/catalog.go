package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/store-backend/internal/domain/models"
	"github.com/linemk/store-backend/internal/service"
	"github.com/linemk/store-backend/internal/storage"
	"github.com/shopspring/decimal"
)

// parseProductFilter читает параметры поиска из строки запроса:
// q, min_price, max_price, sort. Нечисловые границы цены игнорируются.
func parseProductFilter(r *http.Request) storage.ProductFilter {
	query := r.URL.Query()
	filter := storage.ProductFilter{
		Query: query.Get("q"),
		Sort:  query.Get("sort"),
	}
	if raw := query.Get("min_price"); raw != "" {
		if price, err := decimal.NewFromString(raw); err == nil {
			filter.MinPrice = &price
		}
	}
	if raw := query.Get("max_price"); raw != "" {
		if price, err := decimal.NewFromString(raw); err == nil {
			filter.MaxPrice = &price
		}
	}
	return filter
}

// CategoriesHandler обрабатывает запрос GET /api/categories/
func CategoriesHandler(log *slog.Logger, catalogService service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CategoriesHandler"
		logger := log.With(slog.String("op", op))

		categories, err := catalogService.Categories(r.Context())
		if err != nil {
			logger.Error("failed to list categories", slog.Any("error", err))
			writeError(w, logger, http.StatusInternalServerError, "internal server error")
			return
		}
		if categories == nil {
			categories = []*models.Category{}
		}
		writeJSON(w, logger, http.StatusOK, categories)
	}
}

// CategoryProductsHandler обрабатывает запрос GET /api/category/{slug}/
// с параметрами поиска q, min_price, max_price и sort.
func CategoryProductsHandler(log *slog.Logger, catalogService service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CategoryProductsHandler"
		logger := log.With(slog.String("op", op))

		slug := chi.URLParam(r, "slug")
		if slug == "" {
			writeError(w, logger, http.StatusBadRequest, "slug parameter is required")
			return
		}

		view, err := catalogService.CategoryProducts(r.Context(), slug, parseProductFilter(r))
		if err != nil {
			if errors.Is(err, storage.ErrCategoryNotFound) {
				writeError(w, logger, http.StatusNotFound, "category not found")
				return
			}
			logger.Error("failed to get category products", slog.Any("error", err))
			writeError(w, logger, http.StatusInternalServerError, "internal server error")
			return
		}
		if view.Products == nil {
			view.Products = []*models.Product{}
		}
		writeJSON(w, logger, http.StatusOK, view)
	}
}

// ProductsHandler обрабатывает запрос GET /api/products/ с теми же параметрами поиска.
func ProductsHandler(log *slog.Logger, catalogService service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ProductsHandler"
		logger := log.With(slog.String("op", op))

		products, err := catalogService.Products(r.Context(), parseProductFilter(r))
		if err != nil {
			logger.Error("failed to list products", slog.Any("error", err))
			writeError(w, logger, http.StatusInternalServerError, "internal server error")
			return
		}
		if products == nil {
			products = []*models.Product{}
		}
		writeJSON(w, logger, http.StatusOK, products)
	}
}

// ProductDetailHandler обрабатывает запрос GET /api/product/{id}/
// и возвращает товар с вложенными отзывами.
func ProductDetailHandler(log *slog.Logger, catalogService service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ProductDetailHandler"
		logger := log.With(slog.String("op", op))

		productID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, logger, http.StatusBadRequest, "invalid product id")
			return
		}

		product, err := catalogService.Product(r.Context(), productID)
		if err != nil {
			if errors.Is(err, storage.ErrProductNotFound) {
				writeError(w, logger, http.StatusNotFound, "product not found")
				return
			}
			logger.Error("failed to get product", slog.Any("error", err))
			writeError(w, logger, http.StatusInternalServerError, "internal server error")
			return
		}
		writeJSON(w, logger, http.StatusOK, product)
	}
}
