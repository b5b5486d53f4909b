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

// ReviewRequest представляет входной JSON отзыва с тегами валидации
type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment"`
}

// AddReviewHandler обрабатывает запрос POST /api/product/{id}/
func AddReviewHandler(log *slog.Logger, reviewService service.ReviewService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AddReviewHandler"
		logger := log.With(slog.String("op", op))

		productID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, logger, http.StatusBadRequest, "invalid product id")
			return
		}

		// Личность автора установлена JWT middleware
		userID, ok := auth.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			writeError(w, logger, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req ReviewRequest
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

		review, err := reviewService.AddReview(r.Context(), userID, productID, req.Rating, req.Comment)
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrProductNotFound):
				writeError(w, logger, http.StatusNotFound, "product not found")
			case errors.Is(err, service.ErrInvalidRating):
				writeError(w, logger, http.StatusBadRequest, "rating must be between 1 and 5")
			default:
				logger.Error("failed to add review", slog.Any("error", err))
				writeError(w, logger, http.StatusInternalServerError, "internal server error")
			}
			return
		}

		writeJSON(w, logger, http.StatusOK, struct {
			Message string `json:"message"`
			ID      int64  `json:"id"`
		}{Message: "Review added", ID: review.ID})
	}
}
