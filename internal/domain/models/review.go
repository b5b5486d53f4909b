package models

import "time"

// Review представляет отзыв о товаре. Отзывы только добавляются,
// один пользователь может оставить несколько отзывов на один товар.
type Review struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"` // Имя автора; заполняется через JOIN с таблицей users
	ProductID int64     `json:"product_id"`
	Rating    int       `json:"rating"` // Оценка от 1 до 5
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}
