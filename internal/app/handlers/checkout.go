package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/linemk/store-backend/internal/auth"
	"github.com/linemk/store-backend/internal/service"
	"github.com/linemk/store-backend/internal/storage"
)

// CheckoutResponse — ответ при успешном оформлении заказа;
// подтверждения сверх id самого заказа нет.
type CheckoutResponse struct {
	Message string `json:"message"`
	OrderID int64  `json:"order_id"`
}

// CheckoutHandler обрабатывает запрос POST /api/checkout/
func CheckoutHandler(log *slog.Logger, checkoutService service.CheckoutService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CheckoutHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := auth.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			writeError(w, logger, http.StatusUnauthorized, "unauthorized")
			return
		}

		orderID, err := checkoutService.Checkout(r.Context(), userID)
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrOrderNotFound):
				writeError(w, logger, http.StatusNotFound, "no open order")
			case errors.Is(err, service.ErrEmptyCart):
				writeError(w, logger, http.StatusBadRequest, "cart is empty")
			default:
				logger.Error("checkout failed", slog.Any("error", err))
				writeError(w, logger, http.StatusInternalServerError, "internal server error")
			}
			return
		}

		writeJSON(w, logger, http.StatusOK, CheckoutResponse{
			Message: "Order placed successfully",
			OrderID: orderID,
		})
	}
}
