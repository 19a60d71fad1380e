// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureProjects(ctx, db); err != nil {
		problems = append(problems, "projects: "+err.Error())
	}
	if err := ensureFileSystemItems(ctx, db); err != nil {
		problems = append(problems, "filesystem_items: "+err.Error())
	}
	if err := ensureCollaborationSessions(ctx, db); err != nil {
		problems = append(problems, "collaboration_sessions: "+err.Error())
	}
	if err := ensureLedgerEntries(ctx, db); err != nil {
		problems = append(problems, "ledger_entries: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	av := false
	bv := false
	if a != nil {
		av = *a
	}
	if b != nil {
		bv = *b
	}
	return av == bv
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 { // E11000 duplicate key error index
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

// Mongo/DocDB sometimes returns IndexOptionsConflict when an index with the
// same keys already exists under a different name (or options differ).
func isOptionsConflictErr(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "IndexOptionsConflict")
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string

	for _, m := range models {
		var desiredName string
		var desiredUnique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				desiredName = *m.Options.Name
			}
			if m.Options.Unique != nil {
				desiredUnique = m.Options.Unique
			}
		}
		desiredSig := keySig(m.Keys.(bson.D))

		start := time.Now()

		// 1) Load existing indexes
		existing := map[string]existingIndex{} // sig -> index
		cur, err := coll.Indexes().List(ctx)
		if err == nil {
			defer cur.Close(ctx)
			for cur.Next(ctx) {
				var idx existingIndex
				if err := cur.Decode(&idx); err != nil {
					zap.L().Warn("failed to decode existing index",
						zap.String("collection", coll.Name()),
						zap.Error(err))
					continue
				}
				existing[keySig(idx.Key)] = idx
			}
		}

		if ex, ok := existing[desiredSig]; ok {
			// Same key pattern exists already.
			if sameBoolPtr(desiredUnique, ex.Unique) {
				continue
			}

			// Options mismatch (e.g., upgrading to unique). Drop & recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				zap.L().Warn("drop existing index failed",
					zap.String("collection", coll.Name()),
					zap.String("name", ex.Name),
					zap.String("keys", desiredSig),
					zap.Error(err))
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), desiredName, err))
				continue
			}
			if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
				if isDuplicateKeyErr(err) && desiredUnique != nil && *desiredUnique {
					errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), desiredName))
				} else {
					errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
				}
				continue
			}
			zap.L().Info("index dropped and recreated",
				zap.String("collection", coll.Name()),
				zap.String("name", desiredName),
				zap.String("keys", desiredSig),
				zap.String("took", time.Since(start).String()))
			continue
		}

		// 2) No existing index with the same keys: create it.
		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if isOptionsConflictErr(err) {
				zap.L().Warn("index ensure failed (options conflict)",
					zap.String("collection", coll.Name()),
					zap.String("name", desiredName),
					zap.String("keys", desiredSig),
					zap.Error(err))
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
				continue
			}

			zap.L().Warn("index ensure failed",
				zap.String("collection", coll.Name()),
				zap.String("name", desiredName),
				zap.String("keys", desiredSig),
				zap.Bool("unique", desiredUnique != nil && *desiredUnique),
				zap.Error(err))
			errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
			continue
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Per-collection index sets                                                  */
/* -------------------------------------------------------------------------- */

func ensureProjects(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("projects")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// "My projects" listing: owner's active projects by recency
		{
			Keys: bson.D{
				{Key: "owner_id", Value: 1},
				{Key: "is_active", Value: 1},
				{Key: "last_accessed", Value: -1},
			},
			Options: options.Index().SetName("idx_project_owner_active"),
		},
		// Shared-with-me listing
		{
			Keys: bson.D{
				{Key: "collaborators.user_id", Value: 1},
				{Key: "is_active", Value: 1},
			},
			Options: options.Index().SetName("idx_project_collaborator"),
		},
		// Public project browsing, optionally filtered by language
		{
			Keys: bson.D{
				{Key: "is_public", Value: 1},
				{Key: "is_active", Value: 1},
				{Key: "language", Value: 1},
			},
			Options: options.Index().SetName("idx_project_public_language"),
		},
	})
}

func ensureFileSystemItems(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("filesystem_items")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// One item per path within a project. This index arbitrates
		// concurrent creates at the same path; it also serves path lookups.
		{
			Keys: bson.D{
				{Key: "project_id", Value: 1},
				{Key: "path", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("uniq_item_project_path"),
		},
		// Listing children of a folder
		{
			Keys: bson.D{
				{Key: "project_id", Value: 1},
				{Key: "parent_id", Value: 1},
			},
			Options: options.Index().SetName("idx_item_parent"),
		},
		// Full-project listing sorted by (type, name)
		{
			Keys: bson.D{
				{Key: "project_id", Value: 1},
				{Key: "type", Value: 1},
				{Key: "name", Value: 1},
			},
			Options: options.Index().SetName("idx_item_project_type_name"),
		},
	})
}

func ensureCollaborationSessions(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("collaboration_sessions")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Active-session lookup per project
		{
			Keys: bson.D{
				{Key: "project_id", Value: 1},
				{Key: "is_active", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_session_project_active"),
		},
		// Idle-session sweep
		{
			Keys: bson.D{
				{Key: "is_active", Value: 1},
				{Key: "last_activity", Value: 1},
			},
			Options: options.Index().SetName("idx_session_idle_sweep"),
		},
	})
}

func ensureLedgerEntries(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("ledger_entries")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Time-based queries (most common)
		{
			Keys: bson.D{
				{Key: "started_at", Value: -1},
			},
			Options: options.Index().SetName("idx_ledger_started"),
		},
		// Unique request_id
		{
			Keys: bson.D{
				{Key: "request_id", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("uniq_ledger_request_id"),
		},
		// Path queries
		{
			Keys: bson.D{
				{Key: "path", Value: 1},
				{Key: "started_at", Value: -1},
			},
			Options: options.Index().SetName("idx_ledger_path"),
		},
	})
}
