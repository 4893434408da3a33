package handler

import (
	"log/slog"
	"net/http"

	"github.com/org-hierarchy-api/internal/dto"
	"github.com/org-hierarchy-api/internal/service"
)

const branchesPrefix = "/branches/"

type BranchHandler struct {
	responder
	branches service.BranchService
}

func NewBranchHandler(branches service.BranchService, logger *slog.Logger) *BranchHandler {
	return &BranchHandler{
		responder: responder{logger: logger},
		branches:  branches,
	}
}

func (h *BranchHandler) List(w http.ResponseWriter, r *http.Request) {
	branches, err := h.branches.List(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, dto.NewListResponse(branches))
}

func (h *BranchHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBranchRequest
	if !h.decode(w, r, &req) {
		return
	}

	branch, err := h.branches.Create(r.Context(), actor(r), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, branch)
}

func (h *BranchHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := extractID(r, branchesPrefix)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid branch id", err.Error())
		return
	}

	branch, err := h.branches.GetByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, branch)
}

func (h *BranchHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := extractID(r, branchesPrefix)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid branch id", err.Error())
		return
	}

	var req dto.UpdateBranchRequest
	if !h.decode(w, r, &req) {
		return
	}

	branch, err := h.branches.Update(r.Context(), actor(r), id, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, branch)
}

func (h *BranchHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := extractID(r, branchesPrefix)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid branch id", err.Error())
		return
	}

	branch, err := h.branches.Delete(r.Context(), actor(r), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, branch)
}
