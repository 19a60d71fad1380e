// Package items provides storage for filesystem items (files and folders).
package items

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/devcollab/workbench/internal/domain/models"
)

// Store provides access to the filesystem_items collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new filesystem item store.
func New(db *mongo.Database) *Store {
	return &Store{
		c: db.Collection("filesystem_items"),
	}
}

// Insert writes a fully-built item. The unique (project_id, path) index
// rejects a second item at the same path; the duplicate surfaces as a
// mongo write error the caller maps to a domain error.
func (s *Store) Insert(ctx context.Context, item *models.FileSystemItem) error {
	_, err := s.c.InsertOne(ctx, item)
	return err
}

// GetByID retrieves an item by ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.FileSystemItem, error) {
	var item models.FileSystemItem
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&item); err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByPath retrieves the item at a path within a project.
func (s *Store) FindByPath(ctx context.Context, projectID primitive.ObjectID, path string) (*models.FileSystemItem, error) {
	var item models.FileSystemItem
	err := s.c.FindOne(ctx, bson.M{"project_id": projectID, "path": path}).Decode(&item)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// PathExists checks whether any item occupies a path within a project.
// Pass excludeID to ignore a specific item (used when renaming).
func (s *Store) PathExists(ctx context.Context, projectID primitive.ObjectID, path string, excludeID *primitive.ObjectID) (bool, error) {
	filter := bson.M{"project_id": projectID, "path": path}
	if excludeID != nil {
		filter["_id"] = bson.M{"$ne": *excludeID}
	}

	count, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByProject returns every item in a project ordered by (type, name):
// files before folders, alphabetical within each group.
func (s *Store) ListByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.FileSystemItem, error) {
	findOpts := options.Find().SetSort(bson.D{
		{Key: "type", Value: 1},
		{Key: "name", Value: 1},
	})

	cursor, err := s.c.Find(ctx, bson.M{"project_id": projectID}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []models.FileSystemItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ListByParent returns the direct children of a folder. Pass nil for the
// project root.
func (s *Store) ListByParent(ctx context.Context, projectID primitive.ObjectID, parentID *primitive.ObjectID) ([]models.FileSystemItem, error) {
	filter := bson.M{"project_id": projectID, "parent_id": parentID}

	findOpts := options.Find().SetSort(bson.D{
		{Key: "type", Value: 1},
		{Key: "name", Value: 1},
	})

	cursor, err := s.c.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []models.FileSystemItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Search finds items whose name or file content matches the query,
// case-insensitive. The query is treated as a regex pattern, so "ma.n"
// matches "main". Results are capped to keep responses bounded.
func (s *Store) Search(ctx context.Context, projectID primitive.ObjectID, query string, limit int64) ([]models.FileSystemItem, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	regex := primitive.Regex{Pattern: query, Options: "i"}
	filter := bson.M{
		"project_id": projectID,
		"$or": []bson.M{
			{"name": regex},
			{"file.content": regex},
		},
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "path", Value: 1}}).
		SetLimit(limit)

	cursor, err := s.c.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []models.FileSystemItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// AddChild appends a child id to a folder's children list.
func (s *Store) AddChild(ctx context.Context, folderID, childID primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": folderID}, bson.M{
		"$push": bson.M{"children": childID},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	return err
}

// RemoveChild removes a child id from a folder's children list.
func (s *Store) RemoveChild(ctx context.Context, folderID, childID primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": folderID}, bson.M{
		"$pull": bson.M{"children": childID},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	return err
}

// PushHistory appends a history entry directly in the database, without
// rewriting the rest of the document.
func (s *Store) PushHistory(ctx context.Context, id primitive.ObjectID, entry models.HistoryEntry) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$push": bson.M{"history": entry},
	})
	return err
}

// Save replaces the stored document with the given item. Last write wins;
// concurrent saves of the same item are not merged.
func (s *Store) Save(ctx context.Context, item *models.FileSystemItem) error {
	item.UpdatedAt = time.Now()
	_, err := s.c.ReplaceOne(ctx, bson.M{"_id": item.ID}, item)
	return err
}

// Delete removes an item document.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// TotalFileSize sums the sizes of all files in a project.
func (s *Store) TotalFileSize(ctx context.Context, projectID primitive.ObjectID) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"project_id": projectID,
			"type":       models.ItemTypeFile,
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$file.size"},
		}}},
	}

	cursor, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}
