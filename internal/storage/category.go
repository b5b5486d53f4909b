package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/linemk/store-backend/internal/domain/models"
)

var ErrCategoryNotFound = errors.New("category not found")

// CategoryStorage описывает методы для работы с категориями каталога.
type CategoryStorage interface {
	ListCategories(ctx context.Context) ([]*models.Category, error)
	// GetCategoryBySlug получает категорию по её URL-ключу.
	GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
}

// categoryRepository — конкретная реализация интерфейса CategoryStorage.
type categoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository создаёт новый репозиторий категорий.
func NewCategoryRepository(db *sql.DB) CategoryStorage {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) ListCategories(ctx context.Context) ([]*models.Category, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, slug, image_url FROM categories ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		category := &models.Category{}
		if err := rows.Scan(&category.ID, &category.Name, &category.Slug, &category.ImageURL); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	category := &models.Category{}
	row := r.db.QueryRowContext(ctx, "SELECT id, name, slug, image_url FROM categories WHERE slug = $1", slug)
	if err := row.Scan(&category.ID, &category.Name, &category.Slug, &category.ImageURL); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}
