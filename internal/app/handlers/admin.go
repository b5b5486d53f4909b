package handlers

import (
	"encoding/json"
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

// DashboardHandler обрабатывает запрос GET /api/dashboard/
func DashboardHandler(log *slog.Logger, adminService service.AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DashboardHandler"
		logger := log.With(slog.String("op", op))

		view, err := adminService.Dashboard(r.Context())
		if err != nil {
			logger.Error("failed to build dashboard", slog.Any("error", err))
			writeError(w, logger, http.StatusInternalServerError, "internal server error")
			return
		}
		if view.LatestOrders == nil {
			view.LatestOrders = []*models.Order{}
		}
		if view.LatestReviews == nil {
			view.LatestReviews = []*models.Review{}
		}
		writeJSON(w, logger, http.StatusOK, view)
	}
}

// AdminProductsHandler обрабатывает запрос GET /api/dashboard/products/
func AdminProductsHandler(log *slog.Logger, adminService service.AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AdminProductsHandler"
		logger := log.With(slog.String("op", op))

		products, err := adminService.Products(r.Context())
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

// ProductRequest представляет входной JSON товара с тегами валидации.
// Цена приходит строкой, чтобы не терять точность.
type ProductRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Price       string `json:"price" validate:"required"`
	Stock       int    `json:"stock" validate:"gte=0"`
	Available   bool   `json:"available"`
	CategoryID  int64  `json:"category_id" validate:"required,gt=0"`
	ImageURL    string `json:"image_url"`
}

func (req *ProductRequest) toInput() (service.ProductInput, error) {
	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		return service.ProductInput{}, errors.New("price must be a non-negative decimal")
	}
	return service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		Stock:       req.Stock,
		Available:   req.Available,
		CategoryID:  req.CategoryID,
		ImageURL:    req.ImageURL,
	}, nil
}

// CreateProductHandler обрабатывает запрос POST /api/dashboard/products/
func CreateProductHandler(log *slog.Logger, adminService service.AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateProductHandler"
		logger := log.With(slog.String("op", op))

		input, ok := decodeProductRequest(w, r, logger)
		if !ok {
			return
		}

		product, err := adminService.CreateProduct(r.Context(), input)
		if err != nil {
			logger.Error("failed to create product", slog.Any("error", err))
			writeError(w, logger, http.StatusInternalServerError, "internal server error")
			return
		}
		writeJSON(w, logger, http.StatusOK, product)
	}
}

// UpdateProductHandler обрабатывает запрос PUT /api/dashboard/products/{id}/
func UpdateProductHandler(log *slog.Logger, adminService service.AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateProductHandler"
		logger := log.With(slog.String("op", op))

		productID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, logger, http.StatusBadRequest, "invalid product id")
			return
		}

		input, ok := decodeProductRequest(w, r, logger)
		if !ok {
			return
		}

		product, err := adminService.UpdateProduct(r.Context(), productID, input)
		if err != nil {
			if errors.Is(err, storage.ErrProductNotFound) {
				writeError(w, logger, http.StatusNotFound, "product not found")
				return
			}
			logger.Error("failed to update product", slog.Any("error", err))
			writeError(w, logger, http.StatusInternalServerError, "internal server error")
			return
		}
		writeJSON(w, logger, http.StatusOK, product)
	}
}

// DeleteProductHandler обрабатывает запрос DELETE /api/dashboard/products/{id}/
func DeleteProductHandler(log *slog.Logger, adminService service.AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteProductHandler"
		logger := log.With(slog.String("op", op))

		productID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, logger, http.StatusBadRequest, "invalid product id")
			return
		}

		if err := adminService.DeleteProduct(r.Context(), productID); err != nil {
			if errors.Is(err, storage.ErrProductNotFound) {
				writeError(w, logger, http.StatusNotFound, "product not found")
				return
			}
			logger.Error("failed to delete product", slog.Any("error", err))
			writeError(w, logger, http.StatusInternalServerError, "internal server error")
			return
		}
		writeJSON(w, logger, http.StatusOK, struct {
			Message string `json:"message"`
		}{Message: "Product deleted"})
	}
}

func decodeProductRequest(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (service.ProductInput, bool) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error("invalid request: decoding error", slog.Any("error", err))
		writeError(w, logger, http.StatusBadRequest, "invalid request")
		return service.ProductInput{}, false
	}
	if err := validate.Struct(req); err != nil {
		logger.Error("invalid request: validation error", slog.Any("error", err))
		writeValidationError(w, logger, err)
		return service.ProductInput{}, false
	}
	input, err := req.toInput()
	if err != nil {
		writeError(w, logger, http.StatusBadRequest, err.Error())
		return service.ProductInput{}, false
	}
	return input, true
}

// AdminOrdersHandler обрабатывает запрос GET /api/dashboard/orders/
func AdminOrdersHandler(log *slog.Logger, adminService service.AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AdminOrdersHandler"
		logger := log.With(slog.String("op", op))

		orders, err := adminService.Orders(r.Context())
		if err != nil {
			logger.Error("failed to list orders", slog.Any("error", err))
			writeError(w, logger, http.StatusInternalServerError, "internal server error")
			return
		}
		if orders == nil {
			orders = []*models.Order{}
		}
		writeJSON(w, logger, http.StatusOK, orders)
	}
}

// OrderStatusRequest представляет входной JSON смены статуса заказа
type OrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending processing shipped delivered"`
}

// OrderStatusHandler обрабатывает запрос POST /api/dashboard/orders/{id}/status/
func OrderStatusHandler(log *slog.Logger, adminService service.AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.OrderStatusHandler"
		logger := log.With(slog.String("op", op))

		orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, logger, http.StatusBadRequest, "invalid order id")
			return
		}

		var req OrderStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeError(w, logger, http.StatusBadRequest, "invalid request")
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			writeValidationError(w, logger, err)
			return
		}

		if err := adminService.SetOrderStatus(r.Context(), orderID, req.Status); err != nil {
			switch {
			case errors.Is(err, storage.ErrOrderNotFound):
				writeError(w, logger, http.StatusNotFound, "order not found")
			case errors.Is(err, service.ErrInvalidStatus):
				writeError(w, logger, http.StatusBadRequest, "invalid status")
			default:
				logger.Error("failed to update order status", slog.Any("error", err))
				writeError(w, logger, http.StatusInternalServerError, "internal server error")
			}
			return
		}
		writeJSON(w, logger, http.StatusOK, struct {
			Message string `json:"message"`
		}{Message: "Order status updated"})
	}
}
