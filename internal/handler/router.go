package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/org-hierarchy-api/internal/middleware"
)

// resource - хендлер сущности с полным набором CRUD операций
type resource interface {
	List(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	GetByID(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

// Router настраивает маршруты API
type Router struct {
	mux         *http.ServeMux
	logger      *slog.Logger
	hierarchy   *HierarchyHandler
	branches    *BranchHandler
	departments *DepartmentHandler
	managers    *ManagerHandler
	audit       *AuditHandler
}

// NewRouter создаёт новый роутер
func NewRouter(
	hierarchy *HierarchyHandler,
	branches *BranchHandler,
	departments *DepartmentHandler,
	managers *ManagerHandler,
	audit *AuditHandler,
	logger *slog.Logger,
) *Router {
	return &Router{
		mux:         http.NewServeMux(),
		logger:      logger,
		hierarchy:   hierarchy,
		branches:    branches,
		departments: departments,
		managers:    managers,
		audit:       audit,
	}
}

// Setup настраивает все маршруты
func (r *Router) Setup() http.Handler {
	r.mux.HandleFunc("/hierarchy", only(http.MethodGet, r.hierarchy.Get))
	r.mux.HandleFunc("/hierarchy/orphans", only(http.MethodGet, r.hierarchy.Orphans))
	r.mux.HandleFunc("/hierarchy/validate", only(http.MethodPost, r.hierarchy.Validate))

	r.mux.HandleFunc(branchesPrefix, resourceRouter(branchesPrefix, r.branches))
	r.mux.HandleFunc(departmentsPrefix, resourceRouter(departmentsPrefix, r.departments))
	r.mux.HandleFunc(managersPrefix, resourceRouter(managersPrefix, r.managers))

	r.mux.HandleFunc("/audit-logs", only(http.MethodGet, r.audit.List))

	// Health check
	r.mux.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Применяем middleware
	handler := middleware.ContentType(r.mux)
	handler = middleware.Actor(r.logger)(handler)
	handler = middleware.Logger(r.logger)(handler)
	handler = middleware.Recoverer(r.logger)(handler)

	return handler
}

// resourceRouter разбирает запросы вида /prefix/ и /prefix/{id}
func resourceRouter(prefix string, h resource) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		path := strings.Trim(strings.TrimPrefix(req.URL.Path, prefix), "/")

		if path == "" {
			switch req.Method {
			case http.MethodGet:
				h.List(w, req)
			case http.MethodPost:
				h.Create(w, req)
			default:
				methodNotAllowed(w)
			}
			return
		}

		if strings.Contains(path, "/") {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}

		switch req.Method {
		case http.MethodGet:
			h.GetByID(w, req)
		case http.MethodPatch:
			h.Update(w, req)
		case http.MethodDelete:
			h.Delete(w, req)
		default:
			methodNotAllowed(w)
		}
	}
}

func only(method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != method {
			methodNotAllowed(w)
			return
		}
		next(w, req)
	}
}

func methodNotAllowed(w http.ResponseWriter) {
	http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
}
