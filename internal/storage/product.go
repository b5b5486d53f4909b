package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/linemk/store-backend/internal/domain/models"
	"github.com/shopspring/decimal"
)

var ErrProductNotFound = errors.New("product not found")

// Ключи сортировки списка товаров
const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

// ProductFilter описывает параметры поиска по каталогу.
// Отсутствующий параметр означает отсутствие ограничения,
// все условия объединяются по И.
type ProductFilter struct {
	Query         string           // подстрока в имени или описании, без учёта регистра
	MinPrice      *decimal.Decimal // price >= MinPrice
	MaxPrice      *decimal.Decimal // price <= MaxPrice
	Sort          string           // SortPriceAsc / SortPriceDesc, иначе порядок по id
	CategoryID    int64            // 0 — все категории
	OnlyAvailable bool
}

// ProductStorage описывает методы для работы с таблицей товаров.
type ProductStorage interface {
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	// ListProducts возвращает товары, удовлетворяющие фильтру, без пагинации.
	ListProducts(ctx context.Context, filter ProductFilter) ([]*models.Product, error)
	// LockProductByIDTx получает товар по id с блокировкой строки, используя транзакцию.
	LockProductByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Product, error)
	// DecrementStockTx атомарно уменьшает остаток, не опуская его ниже нуля.
	DecrementStockTx(ctx context.Context, tx *sql.Tx, id int64, qty int) error
	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id int64) error
	CountProducts(ctx context.Context) (int, error)
}

// productRepository — конкретная реализация ProductStorage.
type productRepository struct {
	db *sql.DB
}

// NewProductRepository создаёт новый репозиторий товаров.
func NewProductRepository(db *sql.DB) ProductStorage {
	return &productRepository{db: db}
}

const productColumns = `p.id, p.name, p.description, p.price, p.stock, p.available, p.category_id, p.image_url, p.created_at,
		c.id, c.name, c.slug, c.image_url`

func scanProduct(row interface{ Scan(...any) error }) (*models.Product, error) {
	product := &models.Product{Category: &models.Category{}}
	err := row.Scan(
		&product.ID, &product.Name, &product.Description, &product.Price, &product.Stock,
		&product.Available, &product.CategoryID, &product.ImageURL, &product.CreatedAt,
		&product.Category.ID, &product.Category.Name, &product.Category.Slug, &product.Category.ImageURL,
	)
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (r *productRepository) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products p JOIN categories c ON p.category_id = c.id WHERE p.id = $1`, productColumns)
	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

// ListProducts компилирует фильтр в один SQL-запрос.
func (r *productRepository) ListProducts(ctx context.Context, filter ProductFilter) ([]*models.Product, error) {
	var conditions []string
	var args []any

	if filter.CategoryID != 0 {
		args = append(args, filter.CategoryID)
		conditions = append(conditions, "p.category_id = $"+strconv.Itoa(len(args)))
	}
	if filter.OnlyAvailable {
		conditions = append(conditions, "p.available = TRUE")
	}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		n := strconv.Itoa(len(args))
		conditions = append(conditions, "(p.name ILIKE $"+n+" OR p.description ILIKE $"+n+")")
	}
	if filter.MinPrice != nil {
		args = append(args, *filter.MinPrice)
		conditions = append(conditions, "p.price >= $"+strconv.Itoa(len(args)))
	}
	if filter.MaxPrice != nil {
		args = append(args, *filter.MaxPrice)
		conditions = append(conditions, "p.price <= $"+strconv.Itoa(len(args)))
	}

	query := fmt.Sprintf("SELECT %s FROM products p JOIN categories c ON p.category_id = c.id", productColumns)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	switch filter.Sort {
	case SortPriceAsc:
		query += " ORDER BY p.price ASC"
	case SortPriceDesc:
		query += " ORDER BY p.price DESC"
	default:
		query += " ORDER BY p.id"
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

// LockProductByIDTx блокирует строку товара до конца транзакции,
// чтобы одновременные изменения корзины не перераспределяли остаток.
func (r *productRepository) LockProductByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Product, error) {
	product := &models.Product{}
	row := tx.QueryRowContext(ctx,
		"SELECT id, name, description, price, stock, available, category_id, image_url, created_at FROM products WHERE id = $1 FOR UPDATE NOWAIT", id)
	err := row.Scan(&product.ID, &product.Name, &product.Description, &product.Price, &product.Stock,
		&product.Available, &product.CategoryID, &product.ImageURL, &product.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "55P03" { // lock
				return nil, fmt.Errorf("resource is locked, please try again: %w", err)
			}
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

// DecrementStockTx выполняет условное списание: stock = GREATEST(stock - qty, 0),
// так что остаток никогда не уходит в минус даже при конкурентных списаниях.
func (r *productRepository) DecrementStockTx(ctx context.Context, tx *sql.Tx, id int64, qty int) error {
	res, err := tx.ExecContext(ctx, "UPDATE products SET stock = GREATEST(stock - $1, 0) WHERE id = $2", qty, id)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *productRepository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO products (name, description, price, stock, available, category_id, image_url, created_at)
	     VALUES ($1, $2, $3, $4, $5, $6, $7, NOW()) RETURNING id`,
		product.Name, product.Description, product.Price, product.Stock,
		product.Available, product.CategoryID, product.ImageURL,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	product.ID = id
	return product, nil
}

func (r *productRepository) UpdateProduct(ctx context.Context, product *models.Product) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET name = $1, description = $2, price = $3, stock = $4, available = $5, category_id = $6, image_url = $7
	     WHERE id = $8`,
		product.Name, product.Description, product.Price, product.Stock,
		product.Available, product.CategoryID, product.ImageURL, product.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *productRepository) DeleteProduct(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *productRepository) CountProducts(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}
