package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/org-hierarchy-api/internal/domain"
	"github.com/org-hierarchy-api/internal/dto"
	"github.com/org-hierarchy-api/internal/service"
)

type AuditHandler struct {
	responder
	audit service.AuditService
}

func NewAuditHandler(audit service.AuditService, logger *slog.Logger) *AuditHandler {
	return &AuditHandler{
		responder: responder{logger: logger},
		audit:     audit,
	}
}

// List поддерживает фильтры ?table_name=, ?action= и ?limit=
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseAuditFilter(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid query parameter", err.Error())
		return
	}

	entries, err := h.audit.GetAuditLogs(r.Context(), filter)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, dto.NewListResponse(entries))
}

func parseAuditFilter(r *http.Request) (domain.AuditLogFilter, error) {
	var filter domain.AuditLogFilter
	q := r.URL.Query()

	if table := q.Get("table_name"); table != "" {
		filter.TableName = &table
	}
	if action := q.Get("action"); action != "" {
		a := domain.AuditAction(strings.ToUpper(action))
		filter.Action = &a
	}
	if limitStr := q.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return filter, err
		}
		filter.Limit = limit
	}
	return filter, nil
}
