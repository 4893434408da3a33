package handler

import (
	"log/slog"
	"net/http"

	"github.com/org-hierarchy-api/internal/dto"
	"github.com/org-hierarchy-api/internal/service"
)

type HierarchyHandler struct {
	responder
	hierarchy service.HierarchyService
	validator service.HierarchyValidator
}

func NewHierarchyHandler(
	hierarchy service.HierarchyService,
	validator service.HierarchyValidator,
	logger *slog.Logger,
) *HierarchyHandler {
	return &HierarchyHandler{
		responder: responder{logger: logger},
		hierarchy: hierarchy,
		validator: validator,
	}
}

// Get отдаёт дерево целиком либо 503, если хотя бы один уровень не загрузился
func (h *HierarchyHandler) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.hierarchy.Load(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

func (h *HierarchyHandler) Orphans(w http.ResponseWriter, r *http.Request) {
	report, err := h.hierarchy.Orphans(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, report)
}

// Validate возвращает 200 и для корректной, и для некорректной вложенности:
// это подсказка для поля формы, а не ошибка запроса
func (h *HierarchyHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req dto.ValidateHierarchyRequest
	if !h.decode(w, r, &req) {
		return
	}

	result := h.validator.ValidateHierarchy(r.Context(), req.BranchID, req.DepartmentID, req.ManagerID)
	if result.IsServerError() {
		h.respondJSON(w, http.StatusServiceUnavailable, result)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}
