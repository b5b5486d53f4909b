package service

import "errors"

// Ошибки бизнес-логики; транспортный слой превращает их в HTTP-статусы.
var (
	ErrStockLimit         = errors.New("stock limit reached")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInvalidAction      = errors.New("invalid cart action")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrInvalidStatus      = errors.New("invalid order status")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
