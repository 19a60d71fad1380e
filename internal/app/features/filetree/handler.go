package filetree

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/devcollab/workbench/internal/app/system/auth"
	"github.com/devcollab/workbench/internal/app/system/jsonutil"
	"github.com/devcollab/workbench/internal/domain/models"
)

// Handler handles file tree API requests.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a new file tree handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		svc:    NewService(db, logger),
		logger: logger,
	}
}

// CreateHandler handles POST /api/projects/{projectID}/filesystem.
func (h *Handler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	projectID, ok := objectIDParam(w, r, "projectID")
	if !ok {
		return
	}
	userID, _ := auth.UserID(r.Context())

	var input CreateInput
	if err := jsonutil.Decode(r, &input); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	if input.Name == "" {
		jsonutil.BadRequest(w, "name is required")
		return
	}
	if input.Type != models.ItemTypeFile && input.Type != models.ItemTypeFolder {
		jsonutil.BadRequest(w, "type must be file or folder")
		return
	}

	item, err := h.svc.Create(r.Context(), projectID, input, userID)
	if err != nil {
		jsonutil.ErrorFrom(w, err)
		return
	}

	jsonutil.Created(w, item)
}

// ListHandler handles GET /api/projects/{projectID}/filesystem.
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	projectID, ok := objectIDParam(w, r, "projectID")
	if !ok {
		return
	}
	userID, _ := auth.UserID(r.Context())

	list, err := h.svc.FindByProject(r.Context(), projectID, userID)
	if err != nil {
		jsonutil.ErrorFrom(w, err)
		return
	}

	jsonutil.OK(w, list)
}

// TreeHandler handles GET /api/projects/{projectID}/filesystem/tree.
func (h *Handler) TreeHandler(w http.ResponseWriter, r *http.Request) {
	projectID, ok := objectIDParam(w, r, "projectID")
	if !ok {
		return
	}
	userID, _ := auth.UserID(r.Context())

	tree, err := h.svc.GetTree(r.Context(), projectID, userID)
	if err != nil {
		jsonutil.ErrorFrom(w, err)
		return
	}

	jsonutil.OK(w, tree)
}

// SearchHandler handles GET /api/projects/{projectID}/filesystem/search?q=...
func (h *Handler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	projectID, ok := objectIDParam(w, r, "projectID")
	if !ok {
		return
	}
	userID, _ := auth.UserID(r.Context())

	query := r.URL.Query().Get("q")
	if query == "" {
		jsonutil.BadRequest(w, "query parameter q is required")
		return
	}

	results, err := h.svc.Search(r.Context(), projectID, query, userID)
	if err != nil {
		jsonutil.ErrorFrom(w, err)
		return
	}

	jsonutil.OK(w, results)
}

// GetHandler handles GET /api/filesystem/{itemID}.
func (h *Handler) GetHandler(w http.ResponseWriter, r *http.Request) {
	itemID, ok := objectIDParam(w, r, "itemID")
	if !ok {
		return
	}
	userID, _ := auth.UserID(r.Context())

	item, err := h.svc.FindOne(r.Context(), itemID, userID)
	if err != nil {
		jsonutil.ErrorFrom(w, err)
		return
	}

	jsonutil.OK(w, item)
}

// UpdateHandler handles PATCH /api/filesystem/{itemID}.
func (h *Handler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	itemID, ok := objectIDParam(w, r, "itemID")
	if !ok {
		return
	}
	userID, _ := auth.UserID(r.Context())

	var input UpdateInput
	if err := jsonutil.Decode(r, &input); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}

	item, err := h.svc.Update(r.Context(), itemID, input, userID)
	if err != nil {
		jsonutil.ErrorFrom(w, err)
		return
	}

	jsonutil.OK(w, item)
}

// DeleteHandler handles DELETE /api/filesystem/{itemID}.
func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	itemID, ok := objectIDParam(w, r, "itemID")
	if !ok {
		return
	}
	userID, _ := auth.UserID(r.Context())

	if err := h.svc.Remove(r.Context(), itemID, userID); err != nil {
		jsonutil.ErrorFrom(w, err)
		return
	}

	jsonutil.NoContent(w)
}

// objectIDParam extracts and parses an ObjectID URL parameter, writing a
// 400 response if it is malformed.
func objectIDParam(w http.ResponseWriter, r *http.Request, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		jsonutil.BadRequest(w, "invalid "+name)
		return primitive.NilObjectID, false
	}
	return id, true
}
