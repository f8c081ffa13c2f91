package users

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"
	"gitlab.com/navyx/nexus/nexus-users/pkg/dbaccess"
	"gitlab.com/navyx/nexus/nexus-users/pkg/server/middleware"
	"gitlab.com/navyx/nexus/nexus-users/pkg/util"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Handler serves the users resource.
type Handler struct {
	store    Store
	logger   *slog.Logger
	validate *validator.Validate
}

func NewHandler(store Store, logger *slog.Logger) *Handler {
	return &Handler{
		store:    store,
		logger:   logger.With("component", "users"),
		validate: validator.New(),
	}
}

// Routes returns the router mounted under /api/v1/users.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Delete("/{id}", h.Delete)

	return r
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt32(r, "limit", DefaultPageSize)
	if err != nil {
		middleware.WriteProblem(w, r, http.StatusBadRequest, "limit must be a 32-bit integer")
		return
	}
	offset, err := queryInt32(r, "offset", 0)
	if err != nil || offset < 0 {
		middleware.WriteProblem(w, r, http.StatusBadRequest, "offset must be a non-negative 32-bit integer")
		return
	}
	limit = util.Clamp(limit, 1, MaxPageSize)

	users, total, err := h.store.List(r.Context(), limit, offset)
	if err != nil {
		h.internalError(w, r, "failed to list users", err)
		return
	}
	if users == nil {
		users = []*User{}
	}

	render.JSON(w, r, &ListUsersResponse{Users: users, Total: total, Limit: limit, Offset: offset})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := middleware.DecodeJSONBody(r, &req); err != nil {
		if errors.Is(err, middleware.ErrNoJSONBody) {
			middleware.WriteProblem(w, r, http.StatusUnsupportedMediaType, "expected an application/json body")
			return
		}
		middleware.WriteProblem(w, r, http.StatusBadRequest, "invalid user document")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if err := h.validate.Struct(req); err != nil {
		middleware.WriteProblem(w, r, http.StatusUnprocessableEntity, describeValidation(err))
		return
	}

	user, err := h.store.Create(r.Context(), req.Email, req.Name)
	if err != nil {
		if errors.Is(err, dbaccess.ErrConflict) {
			middleware.WriteProblem(w, r, http.StatusConflict, "a user with this email already exists")
			return
		}
		h.internalError(w, r, "failed to create user", err)
		return
	}

	h.logger.InfoContext(r.Context(), "User created", "user_id", user.ID)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, user)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := util.StringToPgtypeUUID(chi.URLParam(r, "id"))
	if err != nil {
		middleware.WriteProblem(w, r, http.StatusBadRequest, "id must be a UUID")
		return
	}

	user, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, dbaccess.ErrNotFound) {
			middleware.WriteProblem(w, r, http.StatusNotFound, "user not found")
			return
		}
		h.internalError(w, r, "failed to get user", err)
		return
	}

	render.JSON(w, r, user)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := util.StringToPgtypeUUID(chi.URLParam(r, "id"))
	if err != nil {
		middleware.WriteProblem(w, r, http.StatusBadRequest, "id must be a UUID")
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, dbaccess.ErrNotFound) {
			middleware.WriteProblem(w, r, http.StatusNotFound, "user not found")
			return
		}
		h.internalError(w, r, "failed to delete user", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.ErrorContext(r.Context(), msg, "err", err)
	middleware.WriteProblem(w, r, http.StatusInternalServerError, msg)
}

// queryInt32 rejects values outside the int32 range instead of truncating.
func queryInt32(r *http.Request, key string, fallback int32) (int32, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(value), nil
}

func describeValidation(err error) string {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err.Error()
	}

	reasons := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		reasons = append(reasons, strings.ToLower(fe.Field())+" failed "+fe.Tag())
	}
	return strings.Join(reasons, "; ")
}
