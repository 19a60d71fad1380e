package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ItemType distinguishes files from folders in the tree.
type ItemType string

const (
	ItemTypeFile   ItemType = "file"
	ItemTypeFolder ItemType = "folder"
)

// History actions recorded on filesystem items.
const (
	HistoryCreated  = "created"
	HistoryModified = "modified"
	HistoryRenamed  = "renamed"
	HistoryDeleted  = "deleted"
)

// HistoryEntry records one mutation of a filesystem item.
// OldValue/NewValue hold the name for created/renamed/deleted entries and
// the content for modified entries.
type HistoryEntry struct {
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Action    string             `bson:"action" json:"action"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
	OldValue  *string            `bson:"old_value,omitempty" json:"old_value,omitempty"`
	NewValue  *string            `bson:"new_value,omitempty" json:"new_value,omitempty"`
}

// FileMetadata holds editor-facing attributes of a file.
type FileMetadata struct {
	Encoding string `bson:"encoding" json:"encoding"`
	Language string `bson:"language,omitempty" json:"language,omitempty"`
	Readonly bool   `bson:"readonly" json:"readonly"`
}

// DefaultFileMetadata returns the metadata applied to new files before any
// caller-supplied values are merged in.
func DefaultFileMetadata() FileMetadata {
	return FileMetadata{Encoding: "utf8", Readonly: false}
}

// FileInfo holds the fields that only exist for items of type file.
// Folders carry a nil *FileInfo, which makes a folder with content
// unrepresentable.
type FileInfo struct {
	Content   string       `bson:"content" json:"content"`
	MimeType  string       `bson:"mime_type" json:"mime_type"`
	Extension string       `bson:"extension,omitempty" json:"extension,omitempty"`
	// Size is always the byte length of Content, recomputed on every write.
	Size     int64        `bson:"size" json:"size"`
	Metadata FileMetadata `bson:"metadata" json:"metadata"`
}

// FileSystemItem is one node of a project's file tree.
//
// Path is the full slash-separated path and is unique within a project
// (enforced by a unique compound index). A folder's Children always equals
// the set of items whose ParentID points at it; both sides are updated on
// create/remove, child first, so the window of inconsistency is bounded.
type FileSystemItem struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ProjectID primitive.ObjectID  `bson:"project_id" json:"project_id"`
	ParentID  *primitive.ObjectID `bson:"parent_id,omitempty" json:"parent_id,omitempty"` // nil = root level

	Name string   `bson:"name" json:"name"`
	Path string   `bson:"path" json:"path"`
	Type ItemType `bson:"type" json:"type"`

	// Children lists child item ids, meaningful only for folders.
	Children []primitive.ObjectID `bson:"children,omitempty" json:"children,omitempty"`

	// File is populated only for items of type file.
	File *FileInfo `bson:"file,omitempty" json:"file,omitempty"`

	CreatedByID      primitive.ObjectID `bson:"created_by_id" json:"created_by_id"`
	LastModifiedByID primitive.ObjectID `bson:"last_modified_by_id" json:"last_modified_by_id"`
	LastModified     time.Time          `bson:"last_modified" json:"last_modified"`

	History []HistoryEntry `bson:"history" json:"history"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsFolder returns true for folder items.
func (i *FileSystemItem) IsFolder() bool {
	return i.Type == ItemTypeFolder
}

// IsReadonly returns true if the item's metadata marks it readonly.
// Folders have no metadata and are never readonly.
func (i *FileSystemItem) IsReadonly() bool {
	return i.File != nil && i.File.Metadata.Readonly
}
