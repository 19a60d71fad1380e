// Package projects provides storage for workspace projects.
package projects

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/devcollab/workbench/internal/domain/models"
)

// Store provides access to the projects collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new project store.
func New(db *mongo.Database) *Store {
	return &Store{
		c: db.Collection("projects"),
	}
}

// CreateInput contains the input for creating a project. The json tags
// exist because the API handler decodes request bodies straight into it;
// OwnerID is never client-supplied.
type CreateInput struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Language    string             `json:"language"`
	Image       string             `json:"image,omitempty"`
	OwnerID     primitive.ObjectID `json:"-"`
	IsPublic    bool               `json:"is_public,omitempty"`
	Runtime     models.Runtime     `json:"runtime,omitempty"`
	Resources   *models.Resources  `json:"resources,omitempty"`
}

// Create creates a new project. The owner is not duplicated into the
// collaborator list; ownership is checked separately everywhere.
func (s *Store) Create(ctx context.Context, input CreateInput) (*models.Project, error) {
	now := time.Now()

	resources := models.DefaultResources()
	if input.Resources != nil {
		resources = *input.Resources
	}

	project := models.Project{
		ID:            primitive.NewObjectID(),
		Name:          input.Name,
		Description:   input.Description,
		Language:      input.Language,
		Image:         input.Image,
		OwnerID:       input.OwnerID,
		Collaborators: []models.Collaborator{},
		IsPublic:      input.IsPublic,
		IsActive:      true,
		Runtime:       input.Runtime,
		Resources:     resources,
		LastAccessed:  now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := s.c.InsertOne(ctx, project); err != nil {
		return nil, err
	}

	return &project, nil
}

// GetActive retrieves a project by ID, excluding soft-deleted projects.
// Returns mongo.ErrNoDocuments for both missing and soft-deleted projects,
// so the two are indistinguishable to callers.
func (s *Store) GetActive(ctx context.Context, id primitive.ObjectID) (*models.Project, error) {
	var project models.Project
	err := s.c.FindOne(ctx, bson.M{"_id": id, "is_active": true}).Decode(&project)
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// ListForUser returns the active projects a user can see: projects they
// own, projects where they are a collaborator, and public projects.
// Results are sorted by most recently accessed first.
func (s *Store) ListForUser(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]models.Project, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	filter := bson.M{
		"is_active": true,
		"$or": []bson.M{
			{"owner_id": userID},
			{"collaborators.user_id": userID},
			{"is_public": true},
		},
	}

	total, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "last_accessed", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := s.c.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var projects []models.Project
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, 0, err
	}

	return projects, total, nil
}

// ListPublic returns active public projects, optionally filtered by language.
func (s *Store) ListPublic(ctx context.Context, language string, page, limit int) ([]models.Project, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	filter := bson.M{"is_active": true, "is_public": true}
	if language != "" {
		filter["language"] = language
	}

	total, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "last_accessed", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := s.c.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var projects []models.Project
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, 0, err
	}

	return projects, total, nil
}

// UpdateInput contains the input for updating a project. Nil fields are
// left untouched.
type UpdateInput struct {
	Name        *string           `json:"name,omitempty"`
	Description *string           `json:"description,omitempty"`
	Image       *string           `json:"image,omitempty"`
	IsPublic    *bool             `json:"is_public,omitempty"`
	Runtime     *models.Runtime   `json:"runtime,omitempty"`
	Resources   *models.Resources `json:"resources,omitempty"`
}

// Update updates a project's mutable fields.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, input UpdateInput) error {
	set := bson.M{"updated_at": time.Now()}

	if input.Name != nil {
		set["name"] = *input.Name
	}
	if input.Description != nil {
		set["description"] = *input.Description
	}
	if input.Image != nil {
		set["image"] = *input.Image
	}
	if input.IsPublic != nil {
		set["is_public"] = *input.IsPublic
	}
	if input.Runtime != nil {
		set["runtime"] = *input.Runtime
	}
	if input.Resources != nil {
		set["resources"] = *input.Resources
	}

	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	return err
}

// TouchLastAccessed records that the project was opened.
func (s *Store) TouchLastAccessed(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"last_accessed": time.Now()},
	})
	return err
}

// SoftDelete marks a project inactive. The file tree and any sessions are
// left in place; they become unreachable because every entry point loads
// the project with GetActive first.
func (s *Store) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"is_active": false, "updated_at": time.Now()},
	})
	return err
}

// UpsertCollaborator adds a collaborator or changes an existing
// collaborator's role in place.
func (s *Store) UpsertCollaborator(ctx context.Context, id, userID primitive.ObjectID, role models.Role) error {
	now := time.Now()

	// Try updating an existing entry first.
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "collaborators.user_id": userID},
		bson.M{"$set": bson.M{
			"collaborators.$.role": role,
			"updated_at":           now,
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}

	_, err = s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$push": bson.M{"collaborators": models.Collaborator{
			UserID:  userID,
			Role:    role,
			AddedAt: now,
		}},
		"$set": bson.M{"updated_at": now},
	})
	return err
}

// RemoveCollaborator removes a user from the collaborator list.
// Removing a user who is not a collaborator is a no-op.
func (s *Store) RemoveCollaborator(ctx context.Context, id, userID primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$pull": bson.M{"collaborators": bson.M{"user_id": userID}},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	return err
}

// SetTotalSize writes the cached total size of the project's files.
func (s *Store) SetTotalSize(ctx context.Context, id primitive.ObjectID, size int64) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"total_size": size},
	})
	return err
}
