package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// writeJSON сериализует ответ; ошибка кодирования превращается в 500.
func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response", slog.Any("error", err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// errorResponse — тело ответа об ошибке, как его ожидает фронтенд.
type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, log *slog.Logger, status int, message string) {
	writeJSON(w, log, status, errorResponse{Error: message})
}

// writeValidationError разворачивает ошибки валидатора в детали по полям.
func writeValidationError(w http.ResponseWriter, log *slog.Logger, err error) {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		writeError(w, log, http.StatusBadRequest, "validation error")
		return
	}

	fields := make(map[string]string, len(validationErrs))
	for _, fieldErr := range validationErrs {
		fields[fieldErr.Field()] = "failed on the '" + fieldErr.Tag() + "' rule"
	}
	writeJSON(w, log, http.StatusBadRequest, struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}{Error: "validation error", Fields: fields})
}
