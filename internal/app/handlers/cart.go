package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/store-backend/internal/auth"
	"github.com/linemk/store-backend/internal/service"
	"github.com/linemk/store-backend/internal/storage"
)

// CartHandler обрабатывает запрос GET /api/cart/
func CartHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CartHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := auth.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			writeError(w, logger, http.StatusUnauthorized, "unauthorized")
			return
		}

		cart, err := cartService.Cart(r.Context(), userID)
		if err != nil {
			logger.Error("failed to get cart", slog.Any("error", err))
			writeError(w, logger, http.StatusInternalServerError, "internal server error")
			return
		}
		writeJSON(w, logger, http.StatusOK, cart)
	}
}

// AddToCartRequest представляет входной JSON добавления товара в корзину.
// Количество по умолчанию равно одному.
type AddToCartRequest struct {
	Quantity int `json:"quantity" validate:"omitempty,gt=0"`
}

// AddToCartHandler обрабатывает запрос POST /api/cart/add/{product_id}/
func AddToCartHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AddToCartHandler"
		logger := log.With(slog.String("op", op))

		productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
		if err != nil {
			writeError(w, logger, http.StatusBadRequest, "invalid product id")
			return
		}

		userID, ok := auth.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			writeError(w, logger, http.StatusUnauthorized, "unauthorized")
			return
		}

		req := AddToCartRequest{Quantity: 1}
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				logger.Error("invalid request: decoding error", slog.Any("error", err))
				writeError(w, logger, http.StatusBadRequest, "invalid request")
				return
			}
			if req.Quantity == 0 {
				req.Quantity = 1
			}
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			writeValidationError(w, logger, err)
			return
		}

		if err := cartService.AddItem(r.Context(), userID, productID, req.Quantity); err != nil {
			if errors.Is(err, storage.ErrProductNotFound) {
				writeError(w, logger, http.StatusNotFound, "product not found")
				return
			}
			logger.Error("failed to add item", slog.Any("error", err))
			writeError(w, logger, http.StatusInternalServerError, "internal server error")
			return
		}

		writeJSON(w, logger, http.StatusOK, struct {
			Message string `json:"message"`
		}{Message: "Item added to cart"})
	}
}

// UpdateCartRequest представляет входной JSON изменения позиции корзины
type UpdateCartRequest struct {
	Action string `json:"action" validate:"required,oneof=increase decrease remove"`
}

// UpdateCartHandler обрабатывает запрос POST /api/cart/update/{item_id}/
func UpdateCartHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateCartHandler"
		logger := log.With(slog.String("op", op))

		itemID, err := strconv.ParseInt(chi.URLParam(r, "item_id"), 10, 64)
		if err != nil {
			writeError(w, logger, http.StatusBadRequest, "invalid item id")
			return
		}

		userID, ok := auth.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			writeError(w, logger, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req UpdateCartRequest
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

		result, err := cartService.UpdateItem(r.Context(), userID, itemID, req.Action)
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrItemNotFound):
				writeError(w, logger, http.StatusNotFound, "item not found")
			case errors.Is(err, service.ErrStockLimit):
				writeError(w, logger, http.StatusBadRequest, "stock limit reached")
			case errors.Is(err, service.ErrInvalidAction):
				writeError(w, logger, http.StatusBadRequest, "invalid action")
			default:
				logger.Error("failed to update item", slog.Any("error", err))
				writeError(w, logger, http.StatusInternalServerError, "internal server error")
			}
			return
		}

		message := "Quantity updated"
		if result.Removed {
			message = "Item removed"
		}
		writeJSON(w, logger, http.StatusOK, struct {
			Message  string `json:"message"`
			Removed  bool   `json:"removed"`
			Quantity int    `json:"quantity"`
		}{Message: message, Removed: result.Removed, Quantity: result.Quantity})
	}
}
