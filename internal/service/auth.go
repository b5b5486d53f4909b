package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/linemk/store-backend/internal/auth"
	"github.com/linemk/store-backend/internal/domain/models"
	"github.com/linemk/store-backend/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

// AuthServiceInterface определяет операции регистрации и обмена токенов.
type AuthServiceInterface interface {
	// Signup создаёт аккаунт; занятое имя даёт storage.ErrUserExists.
	Signup(ctx context.Context, username, email, password string) (*models.User, error)
	// Login обменивает учётные данные на пару токенов.
	Login(ctx context.Context, username, password string) (*auth.TokenPair, error)
	// Refresh обменивает refresh-токен на новую пару токенов.
	Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error)
}

type AuthService struct {
	log        *slog.Logger
	userRepo   storage.UserStorage
	tokenTTL   time.Duration
	refreshTTL time.Duration
}

func NewAuthService(log *slog.Logger, userRepo storage.UserStorage, tokenTTL, refreshTTL time.Duration) *AuthService {
	return &AuthService{
		log:        log,
		userRepo:   userRepo,
		tokenTTL:   tokenTTL,
		refreshTTL: refreshTTL,
	}
}

// Signup регистрирует нового пользователя.
// Пароль хэшируется через bcrypt, который автоматически добавляет соль.
func (a *AuthService) Signup(ctx context.Context, username, email, password string) (*models.User, error) {
	const op = "auth.Signup"
	logger := a.log.With(slog.String("op", op), slog.String("username", username))
	logger.Info("creating user")

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("failed to hash password", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to hash password: %w", op, err)
	}

	user, err := a.userRepo.CreateUser(ctx, &models.User{
		Username: username,
		Email:    email,
		PassHash: passHash,
	})
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			logger.Warn("username already taken")
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		logger.Error("failed to create user", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create user: %w", op, err)
	}

	logger.Info("user created", slog.Int64("userID", user.ID))
	return user, nil
}

// Login осуществляет аутентификацию пользователя: введённый пароль
// сравнивается с сохранённым хэшированным значением, после чего
// генерируется пара JWT-токенов.
func (a *AuthService) Login(ctx context.Context, username, password string) (*auth.TokenPair, error) {
	const op = "auth.Login"
	logger := a.log.With(slog.String("op", op), slog.String("username", username))
	logger.Info("checking user")

	user, err := a.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			// Неизвестное имя и неверный пароль неразличимы для клиента
			logger.Warn("user not found")
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		logger.Error("failed to get user", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get user: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		logger.Warn("invalid password")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	pair, err := auth.NewTokenPair(user, a.tokenTTL, a.refreshTTL)
	if err != nil {
		logger.Error("failed to generate tokens", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to generate tokens: %w", op, err)
	}

	logger.Info("user logged in successfully", slog.Int64("userID", user.ID))
	return pair, nil
}

// Refresh проверяет refresh-токен и выдаёт новую пару токенов.
func (a *AuthService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	const op = "auth.Refresh"
	logger := a.log.With(slog.String("op", op))

	userID, err := auth.ParseRefreshToken(refreshToken)
	if err != nil {
		logger.Warn("invalid refresh token", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	user, err := a.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		logger.Error("failed to get user", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get user: %w", op, err)
	}

	pair, err := auth.NewTokenPair(user, a.tokenTTL, a.refreshTTL)
	if err != nil {
		logger.Error("failed to generate tokens", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to generate tokens: %w", op, err)
	}

	logger.Info("tokens refreshed", slog.Int64("userID", user.ID))
	return pair, nil
}
