package projectdir

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/devcollab/workbench/internal/app/store/projects"
	"github.com/devcollab/workbench/internal/app/system/auth"
	"github.com/devcollab/workbench/internal/app/system/jsonutil"
	"github.com/devcollab/workbench/internal/domain/models"
)

// Handler handles project directory API requests.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a new project directory handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		svc:    NewService(db, logger),
		logger: logger,
	}
}

// CreateHandler handles POST /api/projects.
func (h *Handler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	var input projects.CreateInput
	if err := jsonutil.Decode(r, &input); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	if input.Name == "" {
		jsonutil.BadRequest(w, "name is required")
		return
	}
	if input.Language == "" {
		jsonutil.BadRequest(w, "language is required")
		return
	}

	project, err := h.svc.Create(r.Context(), input, userID)
	if err != nil {
		jsonutil.ErrorFrom(w, err)
		return
	}

	jsonutil.Created(w, project)
}

// ListHandler handles GET /api/projects?page=&limit=.
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)

	result, err := h.svc.List(r.Context(), userID, page, limit)
	if err != nil {
		jsonutil.ErrorFrom(w, err)
		return
	}

	jsonutil.OK(w, result)
}

// BrowseHandler handles GET /api/projects/browse?language=&page=&limit=.
// It lists public projects, optionally filtered by language.
func (h *Handler) BrowseHandler(w http.ResponseWriter, r *http.Request) {
	language := r.URL.Query().Get("language")
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)

	list, err := h.svc.ListByLanguage(r.Context(), language, page, limit)
	if err != nil {
		jsonutil.ErrorFrom(w, err)
		return
	}

	jsonutil.OK(w, list)
}

// GetHandler handles GET /api/projects/{projectID}.
func (h *Handler) GetHandler(w http.ResponseWriter, r *http.Request) {
	projectID, ok := projectIDParam(w, r)
	if !ok {
		return
	}
	userID, _ := auth.UserID(r.Context())

	project, err := h.svc.Get(r.Context(), projectID, userID)
	if err != nil {
		jsonutil.ErrorFrom(w, err)
		return
	}

	jsonutil.OK(w, project)
}

// UpdateHandler handles PATCH /api/projects/{projectID}.
func (h *Handler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	projectID, ok := projectIDParam(w, r)
	if !ok {
		return
	}
	userID, _ := auth.UserID(r.Context())

	var input projects.UpdateInput
	if err := jsonutil.Decode(r, &input); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}

	project, err := h.svc.Update(r.Context(), projectID, input, userID)
	if err != nil {
		jsonutil.ErrorFrom(w, err)
		return
	}

	jsonutil.OK(w, project)
}

// DeleteHandler handles DELETE /api/projects/{projectID}.
func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	projectID, ok := projectIDParam(w, r)
	if !ok {
		return
	}
	userID, _ := auth.UserID(r.Context())

	if err := h.svc.Remove(r.Context(), projectID, userID); err != nil {
		jsonutil.ErrorFrom(w, err)
		return
	}

	jsonutil.NoContent(w)
}

// AddCollaboratorHandler handles POST /api/projects/{projectID}/collaborators.
func (h *Handler) AddCollaboratorHandler(w http.ResponseWriter, r *http.Request) {
	projectID, ok := projectIDParam(w, r)
	if !ok {
		return
	}
	userID, _ := auth.UserID(r.Context())

	var input struct {
		UserID primitive.ObjectID `json:"user_id"`
		Role   string             `json:"role"`
	}
	if err := jsonutil.Decode(r, &input); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	if input.UserID.IsZero() {
		jsonutil.BadRequest(w, "user_id is required")
		return
	}
	if !models.IsValidRole(input.Role) {
		jsonutil.BadRequest(w, "role must be viewer, editor, or admin")
		return
	}

	project, err := h.svc.AddCollaborator(r.Context(), projectID, input.UserID, models.Role(input.Role), userID)
	if err != nil {
		jsonutil.ErrorFrom(w, err)
		return
	}

	jsonutil.OK(w, project)
}

// RemoveCollaboratorHandler handles DELETE /api/projects/{projectID}/collaborators/{userID}.
func (h *Handler) RemoveCollaboratorHandler(w http.ResponseWriter, r *http.Request) {
	projectID, ok := projectIDParam(w, r)
	if !ok {
		return
	}
	userID, _ := auth.UserID(r.Context())

	collaboratorID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		jsonutil.BadRequest(w, "invalid userID")
		return
	}

	project, err := h.svc.RemoveCollaborator(r.Context(), projectID, collaboratorID, userID)
	if err != nil {
		jsonutil.ErrorFrom(w, err)
		return
	}

	jsonutil.OK(w, project)
}

func projectIDParam(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "projectID"))
	if err != nil {
		jsonutil.BadRequest(w, "invalid projectID")
		return primitive.NilObjectID, false
	}
	return id, true
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
