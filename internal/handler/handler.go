package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/mtlprog/tasktrack/docs" // Import generated docs
	"github.com/mtlprog/tasktrack/internal/handler/dto"
	"github.com/mtlprog/tasktrack/internal/middleware"
	"github.com/mtlprog/tasktrack/internal/repository"
	"github.com/mtlprog/tasktrack/internal/service"
	"github.com/mtlprog/tasktrack/internal/static"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	pinger         Pinger
	taskService    *service.TaskService
	authMiddleware *middleware.AuthMiddleware
}

// New creates a new Handler instance backed by the given pool.
func New(pool *pgxpool.Pool, verifier middleware.IdentityVerifier) *Handler {
	taskRepo := repository.NewTaskRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	taskService := service.NewTaskService(taskRepo, userRepo)

	return NewWithService(taskService, pool, verifier)
}

// NewWithService creates a Handler around an already built service.
func NewWithService(taskService *service.TaskService, pinger Pinger, verifier middleware.IdentityVerifier) *Handler {
	return &Handler{
		pinger:         pinger,
		taskService:    taskService,
		authMiddleware: middleware.NewAuthMiddleware(verifier),
	}
}

// RegisterRoutes registers all HTTP routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.handleHealthz)
	mux.HandleFunc("GET /usage.md", h.handleUsageMd)
	mux.HandleFunc("GET /swagger/", httpSwagger.Handler())

	// API v1 routes with authentication
	mux.Handle("GET /api/v1/tasks", h.authed(h.handleListTasks))
	mux.Handle("POST /api/v1/tasks", h.authed(h.handleCreateTask))
	mux.Handle("GET /api/v1/tasks/{id}", h.authed(h.handleGetTask))
	mux.Handle("PUT /api/v1/tasks/{id}", h.authed(h.handleUpdateTask))
	mux.Handle("DELETE /api/v1/tasks/{id}", h.authed(h.handleDeleteTask))
	mux.Handle("POST /api/v1/tasks/{id}/comments", h.authed(h.handleAddComment))
	mux.Handle("GET /api/v1/tasks/{id}/activity", h.authed(h.handleGetActivity))
	mux.Handle("GET /api/v1/stats", h.authed(h.handleGetStats))
}

// Routes returns the full HTTP handler with request middleware applied.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	var next http.Handler = mux
	next = chimw.Recoverer(next)
	next = middleware.RequestLogger(next)
	next = chimw.RealIP(next)
	next = chimw.RequestID(next)
	return next
}

func (h *Handler) authed(fn http.HandlerFunc) http.Handler {
	return h.authMiddleware.Authenticate(fn)
}

// handleHealthz returns 200 OK if the database is reachable.
func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := h.pinger.Ping(r.Context()); err != nil {
		slog.Error("database health check failed", "error", err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// handleUsageMd serves the embedded API usage notes.
func (h *Handler) handleUsageMd(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(static.UsageMd))
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// respondError writes a standard error response.
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, dto.NewErrorResponse(code, message))
}

// respondDomainError maps err onto its status code and writes it.
func respondDomainError(w http.ResponseWriter, err error) {
	status, code, message := dto.MapDomainError(err)
	respondError(w, status, code, message)
}

// extractTaskID extracts and validates task ID from path parameter.
// Returns (taskID, true) if valid, ("", false) if invalid (error already sent to client).
func extractTaskID(w http.ResponseWriter, r *http.Request) (string, bool) {
	taskID := r.PathValue("id")
	if taskID == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "task id is required")
		return "", false
	}

	if _, err := uuid.Parse(taskID); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "task id must be a valid UUID")
		return "", false
	}

	return taskID, true
}

// requireUserID reads the authenticated caller or writes a 401.
func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return "", false
	}
	return userID, true
}
