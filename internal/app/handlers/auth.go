package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/linemk/store-backend/internal/service"
	"github.com/linemk/store-backend/internal/storage"
)

// SignupRequest представляет структуру запроса регистрации с тегами валидации
type SignupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// SignupResponse представляет ответ при успешной регистрации
type SignupResponse struct {
	Message  string `json:"message"`
	Username string `json:"username"`
}

// SignupHandler обрабатывает запрос POST /signup.
// Занятое имя пользователя — это 400 с деталью по полю, аккаунт не создаётся.
func SignupHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.SignupHandler"
		logger := log.With(slog.String("op", op))

		var req SignupRequest
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

		user, err := authService.Signup(r.Context(), req.Username, req.Email, req.Password)
		if err != nil {
			if errors.Is(err, storage.ErrUserExists) {
				writeJSON(w, logger, http.StatusBadRequest, struct {
					Error  string            `json:"error"`
					Fields map[string]string `json:"fields"`
				}{Error: "username already exists", Fields: map[string]string{"username": "already taken"}})
				return
			}
			logger.Error("signup failed", slog.Any("error", err))
			writeError(w, logger, http.StatusInternalServerError, "internal server error")
			return
		}

		writeJSON(w, logger, http.StatusOK, SignupResponse{
			Message:  "User created successfully",
			Username: user.Username,
		})
	}
}

// TokenRequest представляет структуру запроса обмена учётных данных на токены
type TokenRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenHandler обрабатывает запрос POST /api/token/
func TokenHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.TokenHandler"
		logger := log.With(slog.String("op", op))

		var req TokenRequest
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

		pair, err := authService.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			logger.Warn("login failed", slog.Any("error", err))
			writeError(w, logger, http.StatusUnauthorized, "invalid credentials")
			return
		}

		writeJSON(w, logger, http.StatusOK, pair)
	}
}

// RefreshRequest представляет структуру запроса обновления токенов
type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

// TokenRefreshHandler обрабатывает запрос POST /api/token/refresh/
func TokenRefreshHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.TokenRefreshHandler"
		logger := log.With(slog.String("op", op))

		var req RefreshRequest
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

		pair, err := authService.Refresh(r.Context(), req.Refresh)
		if err != nil {
			logger.Warn("token refresh failed", slog.Any("error", err))
			writeError(w, logger, http.StatusUnauthorized, "invalid token")
			return
		}

		writeJSON(w, logger, http.StatusOK, pair)
	}
}
