// Package projectdir is the project directory: project CRUD, the
// collaborator roster, and the soft-delete lifecycle. Every other
// feature resolves project access through the records this package owns.
package projectdir

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/devcollab/workbench/internal/app/store/projects"
	"github.com/devcollab/workbench/internal/app/system/access"
	"github.com/devcollab/workbench/internal/app/system/apperr"
	"github.com/devcollab/workbench/internal/domain/models"
)

// Service implements the project directory operations.
type Service struct {
	projects *projects.Store
	logger   *zap.Logger
}

// NewService creates a project directory service backed by db.
func NewService(db *mongo.Database, logger *zap.Logger) *Service {
	return &Service{
		projects: projects.New(db),
		logger:   logger,
	}
}

// Create registers a new project owned by userID.
func (s *Service) Create(ctx context.Context, input projects.CreateInput, userID primitive.ObjectID) (*models.Project, error) {
	input.OwnerID = userID
	return s.projects.Create(ctx, input)
}

// ListResult is one page of a project listing.
type ListResult struct {
	Projects   []models.Project `json:"projects"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	TotalPages int64            `json:"total_pages"`
}

// List returns the projects visible to userID: owned, shared, and public.
func (s *Service) List(ctx context.Context, userID primitive.ObjectID, page, limit int) (*ListResult, error) {
	if limit < 1 {
		limit = 10
	}
	if page < 1 {
		page = 1
	}

	list, total, err := s.projects.ListForUser(ctx, userID, page, limit)
	if err != nil {
		return nil, err
	}

	return &ListResult{
		Projects:   list,
		Total:      total,
		Page:       page,
		TotalPages: (total + int64(limit) - 1) / int64(limit),
	}, nil
}

// ListByLanguage returns public projects in the given language.
func (s *Service) ListByLanguage(ctx context.Context, language string, page, limit int) ([]models.Project, error) {
	if limit < 1 {
		limit = 10
	}
	list, _, err := s.projects.ListPublic(ctx, language, page, limit)
	return list, err
}

// Get returns one project the user can read and records the access.
func (s *Service) Get(ctx context.Context, id, userID primitive.ObjectID) (*models.Project, error) {
	project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.ForProject(project, userID).CanRead() {
		return nil, apperr.ErrAccessDenied
	}

	// Opening a project bumps its recency in the user's listing.
	// Best-effort; the read result matters more than the bookkeeping.
	if err := s.projects.TouchLastAccessed(ctx, id); err != nil {
		s.logger.Warn("failed to record project access",
			zap.String("project_id", id.Hex()),
			zap.Error(err),
		)
	}

	return project, nil
}

// Update modifies a project's mutable fields. Requires edit access.
func (s *Service) Update(ctx context.Context, id primitive.ObjectID, input projects.UpdateInput, userID primitive.ObjectID) (*models.Project, error) {
	project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.ForProject(project, userID).CanEdit() {
		return nil, apperr.ErrAccessDenied
	}

	if err := s.projects.Update(ctx, id, input); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

// Remove soft-deletes a project. Only the owner may delete; admins
// administer the roster but cannot destroy the workspace.
func (s *Service) Remove(ctx context.Context, id, userID primitive.ObjectID) error {
	project, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if project.OwnerID != userID {
		return apperr.ErrAccessDenied
	}

	return s.projects.SoftDelete(ctx, id)
}

// AddCollaborator grants a role, or changes an existing collaborator's
// role in place. Requires admin access.
func (s *Service) AddCollaborator(ctx context.Context, id, collaboratorID primitive.ObjectID, role models.Role, userID primitive.ObjectID) (*models.Project, error) {
	project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.ForProject(project, userID).CanAdminister() {
		return nil, apperr.ErrAccessDenied
	}

	if err := s.projects.UpsertCollaborator(ctx, id, collaboratorID, role); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

// RemoveCollaborator revokes a user's role. Requires admin access.
// Removing a non-collaborator is a no-op.
func (s *Service) RemoveCollaborator(ctx context.Context, id, collaboratorID, userID primitive.ObjectID) (*models.Project, error) {
	project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.ForProject(project, userID).CanAdminister() {
		return nil, apperr.ErrAccessDenied
	}

	if err := s.projects.RemoveCollaborator(ctx, id, collaboratorID); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

func (s *Service) load(ctx context.Context, id primitive.ObjectID) (*models.Project, error) {
	project, err := s.projects.GetActive(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return project, nil
}
