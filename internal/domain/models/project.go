package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the access level granted to a project collaborator.
type Role string

const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

// IsValidRole checks if a value is a role that can be granted to a collaborator.
func IsValidRole(value string) bool {
	switch Role(value) {
	case RoleViewer, RoleEditor, RoleAdmin:
		return true
	}
	return false
}

// Collaborator grants a user a role on a project.
type Collaborator struct {
	UserID  primitive.ObjectID `bson:"user_id" json:"user_id"`
	Role    Role               `bson:"role" json:"role"`
	AddedAt time.Time          `bson:"added_at" json:"added_at"`
}

// Runtime holds per-language runtime versions for a project's sandbox.
// The sandbox itself is an external service; these values are passed through.
type Runtime struct {
	Node   string `bson:"node,omitempty" json:"node,omitempty"`
	Python string `bson:"python,omitempty" json:"python,omitempty"`
	Java   string `bson:"java,omitempty" json:"java,omitempty"`
	Docker string `bson:"docker,omitempty" json:"docker,omitempty"`
}

// Resources holds the resource limits granted to a project's sandbox.
type Resources struct {
	CPU       int `bson:"cpu" json:"cpu"`
	MemoryMB  int `bson:"memory_mb" json:"memory_mb"`
	StorageMB int `bson:"storage_mb" json:"storage_mb"`
}

// DefaultResources returns the resource limits applied to new projects.
func DefaultResources() Resources {
	return Resources{CPU: 1, MemoryMB: 512, StorageMB: 1024}
}

// Project is a user-owned workspace holding a file tree and, while people
// are editing, a live collaboration session.
type Project struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Language    string             `bson:"language" json:"language"`
	Image       string             `bson:"image,omitempty" json:"image,omitempty"`

	OwnerID       primitive.ObjectID `bson:"owner_id" json:"owner_id"`
	Collaborators []Collaborator     `bson:"collaborators" json:"collaborators"`
	IsPublic      bool               `bson:"is_public" json:"is_public"`

	// IsActive is false for soft-deleted projects. Inactive projects are
	// invisible to every lookup, including the owner's.
	IsActive bool `bson:"is_active" json:"is_active"`

	Runtime   Runtime   `bson:"runtime" json:"runtime"`
	Resources Resources `bson:"resources" json:"resources"`

	// TotalSize is the cached sum of all file sizes in the project, in
	// bytes. Maintained by the file tree as a best-effort side effect of
	// every mutation, so it may be transiently stale.
	TotalSize int64 `bson:"total_size" json:"total_size"`

	LastAccessed time.Time `bson:"last_accessed" json:"last_accessed"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// CollaboratorRole returns the role stored for userID, if any.
func (p *Project) CollaboratorRole(userID primitive.ObjectID) (Role, bool) {
	for _, c := range p.Collaborators {
		if c.UserID == userID {
			return c.Role, true
		}
	}
	return "", false
}
