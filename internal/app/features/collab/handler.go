package collab

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/devcollab/workbench/internal/app/system/auth"
	"github.com/devcollab/workbench/internal/app/system/jsonutil"
	"github.com/devcollab/workbench/internal/domain/models"
)

// Handler handles collaboration API requests.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a new collaboration handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		svc:    NewService(db, logger),
		logger: logger,
	}
}

// JoinHandler handles POST /api/projects/{projectID}/collaboration/join.
func (h *Handler) JoinHandler(w http.ResponseWriter, r *http.Request) {
	projectID, ok := projectIDParam(w, r)
	if !ok {
		return
	}
	userID, _ := auth.UserID(r.Context())

	var input struct {
		FileID *primitive.ObjectID `json:"file_id,omitempty"`
	}
	// The body is optional; joining with no payload is the common case.
	if r.ContentLength > 0 {
		if err := jsonutil.Decode(r, &input); err != nil {
			jsonutil.BadRequest(w, "invalid JSON payload")
			return
		}
	}

	session, err := h.svc.Join(r.Context(), projectID, userID, input.FileID)
	if err != nil {
		jsonutil.ErrorFrom(w, err)
		return
	}

	jsonutil.OK(w, session)
}

// LeaveHandler handles POST /api/projects/{projectID}/collaboration/leave.
func (h *Handler) LeaveHandler(w http.ResponseWriter, r *http.Request) {
	projectID, ok := projectIDParam(w, r)
	if !ok {
		return
	}
	userID, _ := auth.UserID(r.Context())

	if err := h.svc.Leave(r.Context(), projectID, userID); err != nil {
		jsonutil.ErrorFrom(w, err)
		return
	}

	jsonutil.NoContent(w)
}

// CursorHandler handles PUT /api/projects/{projectID}/collaboration/cursor.
func (h *Handler) CursorHandler(w http.ResponseWriter, r *http.Request) {
	projectID, ok := projectIDParam(w, r)
	if !ok {
		return
	}
	userID, _ := auth.UserID(r.Context())

	var input CursorInput
	if err := jsonutil.Decode(r, &input); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}

	session, err := h.svc.UpdateCursor(r.Context(), projectID, userID, input)
	if err != nil {
		jsonutil.ErrorFrom(w, err)
		return
	}

	jsonutil.OK(w, session)
}

// OperationHandler handles POST /api/projects/{projectID}/collaboration/operations.
func (h *Handler) OperationHandler(w http.ResponseWriter, r *http.Request) {
	projectID, ok := projectIDParam(w, r)
	if !ok {
		return
	}
	userID, _ := auth.UserID(r.Context())

	var input OperationInput
	if err := jsonutil.Decode(r, &input); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	switch input.Kind {
	case models.OperationInsert, models.OperationDelete, models.OperationRetain:
	default:
		jsonutil.BadRequest(w, "operation must be insert, delete, or retain")
		return
	}

	session, err := h.svc.AddOperation(r.Context(), projectID, userID, input)
	if err != nil {
		jsonutil.ErrorFrom(w, err)
		return
	}

	jsonutil.OK(w, session)
}

// SwitchFileHandler handles PUT /api/projects/{projectID}/collaboration/file.
func (h *Handler) SwitchFileHandler(w http.ResponseWriter, r *http.Request) {
	projectID, ok := projectIDParam(w, r)
	if !ok {
		return
	}
	userID, _ := auth.UserID(r.Context())

	var input struct {
		FileID primitive.ObjectID `json:"file_id"`
	}
	if err := jsonutil.Decode(r, &input); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	if input.FileID.IsZero() {
		jsonutil.BadRequest(w, "file_id is required")
		return
	}

	session, err := h.svc.SwitchFile(r.Context(), projectID, userID, input.FileID)
	if err != nil {
		jsonutil.ErrorFrom(w, err)
		return
	}

	jsonutil.OK(w, session)
}

// SessionHandler handles GET /api/projects/{projectID}/collaboration/session.
func (h *Handler) SessionHandler(w http.ResponseWriter, r *http.Request) {
	projectID, ok := projectIDParam(w, r)
	if !ok {
		return
	}
	userID, _ := auth.UserID(r.Context())

	session, err := h.svc.GetActiveSession(r.Context(), projectID, userID)
	if err != nil {
		jsonutil.ErrorFrom(w, err)
		return
	}

	jsonutil.OK(w, session)
}

// UsersHandler handles GET /api/projects/{projectID}/collaboration/users.
func (h *Handler) UsersHandler(w http.ResponseWriter, r *http.Request) {
	projectID, ok := projectIDParam(w, r)
	if !ok {
		return
	}
	userID, _ := auth.UserID(r.Context())

	users, err := h.svc.GetActiveUsers(r.Context(), projectID, userID)
	if err != nil {
		jsonutil.ErrorFrom(w, err)
		return
	}

	jsonutil.OK(w, users)
}

// OperationsHandler handles GET /api/projects/{projectID}/collaboration/operations?limit=N.
func (h *Handler) OperationsHandler(w http.ResponseWriter, r *http.Request) {
	projectID, ok := projectIDParam(w, r)
	if !ok {
		return
	}
	userID, _ := auth.UserID(r.Context())

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			jsonutil.BadRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	ops, err := h.svc.GetRecentOperations(r.Context(), projectID, userID, limit)
	if err != nil {
		jsonutil.ErrorFrom(w, err)
		return
	}

	jsonutil.OK(w, ops)
}

func projectIDParam(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "projectID"))
	if err != nil {
		jsonutil.BadRequest(w, "invalid projectID")
		return primitive.NilObjectID, false
	}
	return id, true
}
