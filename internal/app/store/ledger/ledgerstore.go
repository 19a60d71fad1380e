// Package ledger stores the request ledger, an append-only record of
// API traffic used for debugging and abuse investigation.
package ledger

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Entry is one recorded request.
type Entry struct {
	ID primitive.ObjectID `bson:"_id"`

	RequestID string `bson:"request_id"`

	Method   string `bson:"method"`
	Path     string `bson:"path"`
	Query    string `bson:"query,omitempty"`
	RemoteIP string `bson:"remote_ip"`

	// Hex user ID from the bearer token, empty for anonymous requests.
	UserID string `bson:"user_id,omitempty"`

	StatusCode   int    `bson:"status_code"`
	ResponseSize int64  `bson:"response_size"`
	ErrorMessage string `bson:"error_message,omitempty"`

	DurationMs float64 `bson:"duration_ms"`

	StartedAt   time.Time `bson:"started_at"`
	CompletedAt time.Time `bson:"completed_at"`
}

// Store provides ledger entry persistence.
type Store struct {
	c *mongo.Collection
}

// New creates a new ledger store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("ledger_entries")}
}

// Insert records a ledger entry.
func (s *Store) Insert(ctx context.Context, entry Entry) error {
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	_, err := s.c.InsertOne(ctx, entry)
	return err
}

// GetByRequestID retrieves an entry by its request ID.
func (s *Store) GetByRequestID(ctx context.Context, requestID string) (*Entry, error) {
	var entry Entry
	if err := s.c.FindOne(ctx, bson.M{"request_id": requestID}).Decode(&entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// RecentErrors returns the most recent failed requests, newest first.
func (s *Store) RecentErrors(ctx context.Context, limit int) ([]Entry, error) {
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "started_at", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := s.c.Find(ctx, bson.M{"status_code": bson.M{"$gte": 400}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var entries []Entry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// DeleteOlderThan removes entries that started before the cutoff and
// returns how many were deleted.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.c.DeleteMany(ctx, bson.M{
		"started_at": bson.M{"$lt": cutoff},
	})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}
