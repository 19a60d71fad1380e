// Package sessions provides storage for collaboration sessions.
package sessions

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/devcollab/workbench/internal/domain/models"
)

// Store provides access to the collaboration_sessions collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new collaboration session store.
func New(db *mongo.Database) *Store {
	return &Store{
		c: db.Collection("collaboration_sessions"),
	}
}

// Insert writes a fully-built session document.
func (s *Store) Insert(ctx context.Context, session *models.CollabSession) error {
	_, err := s.c.InsertOne(ctx, session)
	return err
}

// ActiveByProject returns the active session for a project, if one exists.
// When multiple active sessions exist (possible under concurrent joins),
// the most recently created one wins.
func (s *Store) ActiveByProject(ctx context.Context, projectID primitive.ObjectID) (*models.CollabSession, error) {
	findOpts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var session models.CollabSession
	err := s.c.FindOne(ctx, bson.M{
		"project_id": projectID,
		"is_active":  true,
	}, findOpts).Decode(&session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// GetByID retrieves a session by ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.CollabSession, error) {
	var session models.CollabSession
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Save replaces the stored session document. Last write wins; concurrent
// saves are not merged.
func (s *Store) Save(ctx context.Context, session *models.CollabSession) error {
	session.UpdatedAt = time.Now()
	_, err := s.c.ReplaceOne(ctx, bson.M{"_id": session.ID}, session)
	return err
}

// DeactivateIdle marks every active session whose last activity is older
// than the cutoff as inactive. Returns the number of sessions closed.
func (s *Store) DeactivateIdle(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{
			"is_active":     true,
			"last_activity": bson.M{"$lt": cutoff},
		},
		bson.M{"$set": bson.M{
			"is_active":  false,
			"updated_at": time.Now(),
		}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
