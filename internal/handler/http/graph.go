package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/algonet/backend/internal/httputil"
	"github.com/algonet/backend/internal/middleware"
	"github.com/algonet/backend/internal/pagination"
	"github.com/algonet/backend/internal/service"
	"github.com/algonet/backend/internal/validator"
)

// GraphHandler handles diagram CRUD and listing endpoints.
type GraphHandler struct {
	service *service.GraphService
	logger  *slog.Logger
}

// NewGraphHandler creates a new graph HTTP handler.
func NewGraphHandler(svc *service.GraphService, logger *slog.Logger) *GraphHandler {
	return &GraphHandler{service: svc, logger: logger}
}

// Save handles POST /api/graphs/save.
func (h *GraphHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req service.GraphInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	g, err := h.service.Save(r.Context(), middleware.UserIDFromContext(r.Context()), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"success":   true,
		"message":   "graph saved",
		"graphId":   g.ID,
		"graphName": g.Name,
	})
}

// Update handles PUT /api/graphs/{id}.
func (h *GraphHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	var req service.GraphInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	g, err := h.service.Update(r.Context(), middleware.UserIDFromContext(r.Context()), id, req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "graph updated",
		"graphId":   g.ID,
		"graphName": g.Name,
	})
}

// Get handles GET /api/graphs/{id}.
func (h *GraphHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	g, err := h.service.Get(r.Context(), middleware.UserIDFromContext(r.Context()), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, g)
}

// Delete handles DELETE /api/graphs/{id}.
func (h *GraphHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), middleware.UserIDFromContext(r.Context()), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// BulkDelete handles DELETE /api/graphs/bulk with a JSON array of ids.
func (h *GraphHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var ids []int64
	if err := json.NewDecoder(r.Body).Decode(&ids); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	deleted, err := h.service.BulkDelete(r.Context(), middleware.UserIDFromContext(r.Context()), ids)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"message":      fmt.Sprintf("%d graphs deleted", deleted),
		"deletedCount": deleted,
	})
}

// ListMine handles GET /api/graphs/user with range or page/size paging.
// Requests carrying neither get the full list as a plain array, which
// is what clients predating the pagination parameters expect.
func (h *GraphHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	window, paginate, err := pagination.FromRequest(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	userID := middleware.UserIDFromContext(r.Context())

	if !paginate {
		graphs, err := h.service.ListFull(r.Context(), userID)
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, graphs)
		return
	}

	page, err := h.service.List(r.Context(), userID, window)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, page)
}

// ListAll handles GET /api/graphs/all. The listing is unpaginated.
func (h *GraphHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	graphs, err := h.service.ListAll(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, graphs)
}
