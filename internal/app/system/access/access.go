// Package access computes project-scoped capabilities.
//
// A capability is derived from a project's owner and collaborator list plus
// the requesting user id; it is never stored. All functions here are pure
// and side-effect free, so callers may evaluate them concurrently without
// coordination.
package access

import (
	"github.com/devcollab/workbench/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Capability is the permission level a user holds on a project.
// Levels are strictly ordered: None < Viewer < Editor < Admin < Owner.
type Capability int

const (
	None Capability = iota
	Viewer
	Editor
	Admin
	Owner
)

// String returns the capability name as used in API responses and logs.
func (c Capability) String() string {
	switch c {
	case Owner:
		return "owner"
	case Admin:
		return "admin"
	case Editor:
		return "editor"
	case Viewer:
		return "viewer"
	default:
		return "none"
	}
}

// ForProject computes the capability userID holds on project.
//
// The owner holds Owner. Otherwise the stored collaborator role applies.
// Non-collaborators hold Viewer on public projects and None everywhere else.
func ForProject(project *models.Project, userID primitive.ObjectID) Capability {
	if project.OwnerID == userID {
		return Owner
	}
	if role, ok := project.CollaboratorRole(userID); ok {
		switch role {
		case models.RoleAdmin:
			return Admin
		case models.RoleEditor:
			return Editor
		default:
			return Viewer
		}
	}
	if project.IsPublic {
		return Viewer
	}
	return None
}

// CanRead reports whether the capability allows reading project state.
func (c Capability) CanRead() bool {
	return c > None
}

// CanEdit reports whether the capability allows mutating the file tree.
func (c Capability) CanEdit() bool {
	return c >= Editor
}

// CanAdminister reports whether the capability allows managing
// collaborators and project settings.
func (c Capability) CanAdminister() bool {
	return c >= Admin
}

// CanExecute reports whether the capability allows running code in the
// project's sandbox. Execution requires the same level as editing.
func (c Capability) CanExecute() bool {
	return c.CanEdit()
}
