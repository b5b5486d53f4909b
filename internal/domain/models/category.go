package models

// Category представляет категорию каталога
type Category struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`  // Название категории (уникальное)
	Slug     string `json:"slug"`  // URL-ключ категории (уникальный)
	ImageURL string `json:"image_url"`
}
