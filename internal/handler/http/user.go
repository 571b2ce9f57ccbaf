package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/algonet/backend/internal/domain"
	apperrors "github.com/algonet/backend/internal/errors"
	"github.com/algonet/backend/internal/httputil"
	"github.com/algonet/backend/internal/middleware"
	"github.com/algonet/backend/internal/pagination"
	"github.com/algonet/backend/internal/service"
	"github.com/algonet/backend/internal/validator"
)

// UserHandler handles registration, profile updates and admin user management.
type UserHandler struct {
	service *service.UserService
	logger  *slog.Logger
}

// NewUserHandler creates a new user HTTP handler.
func NewUserHandler(svc *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{service: svc, logger: logger}
}

// CreateUserRequest is the JSON request body for registration.
type CreateUserRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
}

// NameUpdateRequest carries a single replacement value for a name field.
type NameUpdateRequest struct {
	Value string `json:"value" validate:"required,max=100"`
}

// SetDisabledRequest accepts the disabled flag either as a JSON bool or
// as the strings "true"/"false".
type SetDisabledRequest struct {
	Disabled json.RawMessage `json:"disabled"`
}

func (req SetDisabledRequest) flag() bool {
	var b bool
	if json.Unmarshal(req.Disabled, &b) == nil {
		return b
	}
	var s string
	if json.Unmarshal(req.Disabled, &s) == nil {
		v, _ := strconv.ParseBool(s)
		return v
	}
	return false
}

// Create handles POST /api/create-user.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	user, err := h.service.Register(r.Context(), service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.Header().Set("Location", "/api/users/"+strconv.FormatInt(user.ID, 10))
	httputil.WriteJSON(w, http.StatusCreated, user)
}

// UpdateFirstName handles PUT /api/users/{id}/first-name.
func (h *UserHandler) UpdateFirstName(w http.ResponseWriter, r *http.Request) {
	h.updateName(w, r, h.service.UpdateFirstName)
}

// UpdateLastName handles PUT /api/users/{id}/last-name.
func (h *UserHandler) UpdateLastName(w http.ResponseWriter, r *http.Request) {
	h.updateName(w, r, h.service.UpdateLastName)
}

func (h *UserHandler) updateName(w http.ResponseWriter, r *http.Request, update func(context.Context, int64, string) (*domain.User, error)) {
	id, err := idParam(r)
	if err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	var req NameUpdateRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	user, err := update(r.Context(), id, req.Value)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, user)
}

// List handles GET /api/users (admin only). Unlike the graph listings,
// the page parameter here is 0-based and both parameters default when
// absent.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page, size, err := userListingParams(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	window := pagination.Window{Offset: page * size, Limit: size}
	users, total, err := h.service.ListUsers(r.Context(), window)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"users": users,
		"total": total,
		"page":  page,
		"size":  size,
	})
}

func userListingParams(r *http.Request) (page, size int, err error) {
	page, size = 0, pagination.DefaultPageSize
	q := r.URL.Query()
	if s := q.Get("page"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			return 0, 0, apperrors.New(http.StatusBadRequest, apperrors.CodeInvalidPaging,
				fmt.Sprintf("invalid page %q", s))
		}
		page = v
	}
	if s := q.Get("size"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return 0, 0, apperrors.New(http.StatusBadRequest, apperrors.CodeInvalidPaging,
				fmt.Sprintf("invalid size %q", s))
		}
		size = v
	}
	return page, size, nil
}

// Delete handles DELETE /api/delete-user/{id} (admin only).
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetDisabled handles PUT /api/set/{id}/disable (admin only).
func (h *UserHandler) SetDisabled(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	var req SetDisabledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	user, err := h.service.SetDisabled(r.Context(), id, req.flag())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"id":       user.ID,
		"disabled": user.Disabled,
	})
}

// RequireAdmin gates admin endpoints. The caller's admin flag is read
// from storage on every request so revocation takes effect immediately.
func (h *UserHandler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		user, err := h.service.GetUser(r.Context(), userID)
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		if !user.IsAdmin {
			httputil.WriteError(w, r, apperrors.NotAdmin(), h.logger)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// idParam parses the {id} chi URL parameter.
func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
