package handler

import (
	"log/slog"
	"net/http"

	"github.com/org-hierarchy-api/internal/dto"
	"github.com/org-hierarchy-api/internal/repository"
	"github.com/org-hierarchy-api/internal/service"
)

const managersPrefix = "/managers/"

type ManagerHandler struct {
	responder
	managers service.ManagerService
}

func NewManagerHandler(managers service.ManagerService, logger *slog.Logger) *ManagerHandler {
	return &ManagerHandler{
		responder: responder{logger: logger},
		managers:  managers,
	}
}

// List поддерживает фильтры ?branch_id= и ?department_id=
func (h *ManagerHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		filter repository.ManagerFilter
		err    error
	)
	if filter.BranchID, err = queryUUID(r, "branch_id"); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid query parameter", err.Error())
		return
	}
	if filter.DepartmentID, err = queryUUID(r, "department_id"); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid query parameter", err.Error())
		return
	}

	list, err := h.managers.List(r.Context(), filter)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, dto.NewManagerListResponse(list))
}

func (h *ManagerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateManagerRequest
	if !h.decode(w, r, &req) {
		return
	}

	emp, err := h.managers.Create(r.Context(), actor(r), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, emp)
}

func (h *ManagerHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := extractID(r, managersPrefix)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid manager id", err.Error())
		return
	}

	emp, err := h.managers.GetByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, emp)
}

func (h *ManagerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := extractID(r, managersPrefix)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid manager id", err.Error())
		return
	}

	var req dto.UpdateManagerRequest
	if !h.decode(w, r, &req) {
		return
	}

	emp, err := h.managers.Update(r.Context(), actor(r), id, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, emp)
}

func (h *ManagerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := extractID(r, managersPrefix)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid manager id", err.Error())
		return
	}

	emp, err := h.managers.Delete(r.Context(), actor(r), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, emp)
}
