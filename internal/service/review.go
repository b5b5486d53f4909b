package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linemk/store-backend/internal/domain/models"
	"github.com/linemk/store-backend/internal/storage"
)

// ReviewService определяет интерфейс добавления отзывов.
type ReviewService interface {
	AddReview(ctx context.Context, userID, productID int64, rating int, comment string) (*models.Review, error)
}

type reviewService struct {
	log         *slog.Logger
	productRepo storage.ProductStorage
	reviewRepo  storage.ReviewStorage
}

func NewReviewService(log *slog.Logger, productRepo storage.ProductStorage, reviewRepo storage.ReviewStorage) ReviewService {
	return &reviewService{
		log:         log,
		productRepo: productRepo,
		reviewRepo:  reviewRepo,
	}
}

// AddReview добавляет отзыв о товаре. Отзыв всегда создаётся новой строкой:
// без редактирования и без ограничения "один отзыв на пользователя".
func (s *reviewService) AddReview(ctx context.Context, userID, productID int64, rating int, comment string) (*models.Review, error) {
	const op = "service.ReviewService.AddReview"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.Int64("productID", productID), slog.Int("rating", rating))

	if rating < 1 || rating > 5 {
		logger.Warn("rating out of range")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidRating)
	}

	// Товар должен существовать
	if _, err := s.productRepo.GetProductByID(ctx, productID); err != nil {
		logger.Error("failed to get product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get product: %w", op, err)
	}

	review := &models.Review{
		UserID:    userID,
		ProductID: productID,
		Rating:    rating,
		Comment:   comment,
	}
	review, err := s.reviewRepo.CreateReview(ctx, review)
	if err != nil {
		logger.Error("failed to create review", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create review: %w", op, err)
	}

	logger.Info("review added", slog.Int64("reviewID", review.ID))
	return review, nil
}
