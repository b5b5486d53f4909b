package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/store-backend/internal/auth"
	"github.com/linemk/store-backend/internal/service"
	"github.com/linemk/store-backend/internal/storage"
)

// MyOrdersHandler обрабатывает запрос GET /api/my-orders/
// и возвращает завершённые заказы пользователя, новые первыми.
func MyOrdersHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.MyOrdersHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := auth.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			writeError(w, logger, http.StatusUnauthorized, "unauthorized")
			return
		}

		orders, err := orderService.MyOrders(r.Context(), userID)
		if err != nil {
			logger.Error("failed to list orders", slog.Any("error", err))
			writeError(w, logger, http.StatusInternalServerError, "internal server error")
			return
		}
		if orders == nil {
			orders = []*service.OrderView{}
		}
		writeJSON(w, logger, http.StatusOK, orders)
	}
}

// OrderDetailHandler обрабатывает запрос GET /api/order/{id}/.
// Заказ доступен только владельцу; чужой заказ возвращает 404.
func OrderDetailHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.OrderDetailHandler"
		logger := log.With(slog.String("op", op))

		orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, logger, http.StatusBadRequest, "invalid order id")
			return
		}

		userID, ok := auth.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			writeError(w, logger, http.StatusUnauthorized, "unauthorized")
			return
		}

		order, err := orderService.Order(r.Context(), userID, orderID)
		if err != nil {
			if errors.Is(err, storage.ErrOrderNotFound) {
				writeError(w, logger, http.StatusNotFound, "order not found")
				return
			}
			logger.Error("failed to get order", slog.Any("error", err))
			writeError(w, logger, http.StatusInternalServerError, "internal server error")
			return
		}
		writeJSON(w, logger, http.StatusOK, order)
	}
}
