package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/linemk/store-backend/internal/domain/models"
)

// ReviewStorage описывает методы для работы с отзывами.
type ReviewStorage interface {
	// CreateReview добавляет отзыв; отзывы никогда не изменяются и не удаляются.
	CreateReview(ctx context.Context, review *models.Review) (*models.Review, error)
	// GetReviewsByProductID возвращает отзывы о товаре, новые первыми.
	GetReviewsByProductID(ctx context.Context, productID int64) ([]*models.Review, error)
	// ListLatestReviews возвращает последние отзывы по всем товарам.
	ListLatestReviews(ctx context.Context, limit int) ([]*models.Review, error)
	CountReviews(ctx context.Context) (int, error)
}

type reviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(db *sql.DB) ReviewStorage {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) CreateReview(ctx context.Context, review *models.Review) (*models.Review, error) {
	query := `INSERT INTO reviews (user_id, product_id, rating, comment, created_at)
	          VALUES ($1, $2, $3, $4, NOW()) RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, review.UserID, review.ProductID, review.Rating, review.Comment).
		Scan(&review.ID, &review.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	return review, nil
}

// GetReviewsByProductID возвращает отзывы с JOIN, чтобы получить имя автора.
func (r *reviewRepository) GetReviewsByProductID(ctx context.Context, productID int64) ([]*models.Review, error) {
	query := `
		SELECT r.id, r.user_id, u.username, r.product_id, r.rating, r.comment, r.created_at
		FROM reviews r
		JOIN users u ON r.user_id = u.id
		WHERE r.product_id = $1
		ORDER BY r.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()
	return collectReviews(rows)
}

func (r *reviewRepository) ListLatestReviews(ctx context.Context, limit int) ([]*models.Review, error) {
	query := `
		SELECT r.id, r.user_id, u.username, r.product_id, r.rating, r.comment, r.created_at
		FROM reviews r
		JOIN users u ON r.user_id = u.id
		ORDER BY r.created_at DESC
		LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest reviews: %w", err)
	}
	defer rows.Close()
	return collectReviews(rows)
}

func collectReviews(rows *sql.Rows) ([]*models.Review, error) {
	var reviews []*models.Review
	for rows.Next() {
		review := &models.Review{}
		if err := rows.Scan(&review.ID, &review.UserID, &review.Username, &review.ProductID,
			&review.Rating, &review.Comment, &review.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *reviewRepository) CountReviews(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reviews").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count reviews: %w", err)
	}
	return count, nil
}
