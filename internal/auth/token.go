package auth

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/linemk/store-backend/internal/domain/models"
)

// Типы токенов; refresh-токен годится только для обмена на новую пару.
const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

// TokenPair — пара токенов, как её ожидает клиент.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// NewTokenPair генерирует пару access/refresh токенов для пользователя.
// Секрет для подписи берётся из переменной окружения JWT_SECRET.
func NewTokenPair(user *models.User, accessTTL, refreshTTL time.Duration) (*TokenPair, error) {
	secret, err := secretFromEnv()
	if err != nil {
		return nil, err
	}

	access, err := newToken(user, tokenTypeAccess, accessTTL, secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	refresh, err := newToken(user, tokenTypeRefresh, refreshTTL, secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

func newToken(user *models.User, tokenType string, ttl time.Duration, secret []byte) (string, error) {
	claims := jwt.MapClaims{
		"sub":      strconv.FormatInt(user.ID, 10),
		"username": user.Username,
		"staff":    user.IsStaff,
		"typ":      tokenType,
		"exp":      time.Now().Add(ttl).Unix(),
		"iat":      time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseRefreshToken проверяет refresh-токен и возвращает id пользователя.
func ParseRefreshToken(tokenStr string) (int64, error) {
	secret, err := secretFromEnv()
	if err != nil {
		return 0, err
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	if typ, ok := claims["typ"].(string); !ok || typ != tokenTypeRefresh {
		return 0, ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, ErrInvalidToken
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return userID, nil
}

func secretFromEnv() ([]byte, error) {
	secretStr := os.Getenv("JWT_SECRET")
	if secretStr == "" {
		return nil, errors.New("JWT_SECRET environment variable is not set")
	}
	return []byte(secretStr), nil
}
