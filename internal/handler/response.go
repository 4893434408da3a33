package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/org-hierarchy-api/internal/domain"
	"github.com/org-hierarchy-api/internal/dto"
	"github.com/org-hierarchy-api/internal/middleware"
)

// responder содержит общие для всех хендлеров методы ответа
type responder struct {
	logger *slog.Logger
}

func (h responder) handleServiceError(w http.ResponseWriter, err error) {
	var fetchErr *domain.FetchError

	switch {
	case errors.Is(err, domain.ErrBranchNotFound):
		h.respondError(w, http.StatusNotFound, "branch not found", "")
	case errors.Is(err, domain.ErrDepartmentNotFound):
		h.respondError(w, http.StatusNotFound, "department not found", "")
	case errors.Is(err, domain.ErrManagerNotFound):
		h.respondError(w, http.StatusNotFound, "manager not found", "")
	case errors.Is(err, domain.ErrDuplicateBranchName):
		h.respondError(w, http.StatusConflict, "branch with this name already exists", "")
	case errors.Is(err, domain.ErrDuplicateEmail):
		h.respondError(w, http.StatusConflict, "employee with this email already exists", "")
	case errors.Is(err, domain.ErrNotManagerRole):
		h.respondError(w, http.StatusUnprocessableEntity, "role does not qualify as manager", "")
	case errors.Is(err, domain.ErrValidation):
		h.respondError(w, http.StatusBadRequest, "validation error", validationDetails(err))
	case errors.Is(err, domain.ErrActorRequired):
		h.respondError(w, http.StatusUnauthorized, "actor identity is required",
			fmt.Sprintf("set the %s header", middleware.ActorHeader))
	case errors.As(err, &fetchErr):
		levels := domain.FailedLevels(err)
		h.logger.Error("hierarchy unavailable",
			slog.Any("levels", levels),
			slog.Any("error", err),
		)
		// Текст ошибки драйвера остаётся только в логе
		h.respondError(w, http.StatusServiceUnavailable, "hierarchy view is unavailable",
			"failed levels: "+strings.Join(levels, ", "))
	case errors.Is(err, domain.ErrMissingRelation):
		h.logger.Error("relation unavailable", slog.Any("error", err))
		h.respondError(w, http.StatusServiceUnavailable, "relation is unavailable", "")
	default:
		h.logger.Error("internal error", slog.Any("error", err))
		h.respondError(w, http.StatusInternalServerError, "internal server error", "")
	}
}

func (h responder) respondJSON(w http.ResponseWriter, status int, data any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", slog.Any("error", err))
	}
}

func (h responder) respondError(w http.ResponseWriter, status int, errMsg, details string) {
	w.WriteHeader(status)
	resp := dto.ErrorResponse{Error: errMsg}
	if details != "" {
		resp.Message = details
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode error response", slog.Any("error", err))
	}
}

// decode читает JSON тело запроса; при ошибке ответ уже отправлен
func (h responder) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	return true
}

// actor возвращает пользователя запроса или нулевое значение, которое
// сервис отклонит как ErrActorRequired
func actor(r *http.Request) domain.Actor {
	a, _ := middleware.ActorFromContext(r.Context())
	return a
}

// extractID разбирает идентификатор из пути вида /prefix/{id}
func extractID(r *http.Request, prefix string) (uuid.UUID, error) {
	path := strings.TrimPrefix(r.URL.Path, prefix)
	path = strings.Trim(path, "/")
	if path == "" {
		return uuid.Nil, errors.New("id is required")
	}
	return uuid.Parse(path)
}

// queryUUID разбирает необязательный параметр запроса
func queryUUID(r *http.Request, name string) (*uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &id, nil
}

func validationDetails(err error) string {
	return strings.TrimPrefix(err.Error(), domain.ErrValidation.Error()+": ")
}
