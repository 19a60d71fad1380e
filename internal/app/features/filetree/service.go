// Package filetree owns the per-project hierarchy of files and folders:
// path allocation, parent/child linkage, readonly enforcement, change
// history, and aggregate size accounting.
package filetree

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/devcollab/workbench/internal/app/store/items"
	"github.com/devcollab/workbench/internal/app/store/projects"
	"github.com/devcollab/workbench/internal/app/system/access"
	"github.com/devcollab/workbench/internal/app/system/apperr"
	"github.com/devcollab/workbench/internal/domain/models"
)

// Service implements the file tree operations for all projects.
type Service struct {
	projects *projects.Store
	items    *items.Store
	logger   *zap.Logger
}

// NewService creates a file tree service backed by db.
func NewService(db *mongo.Database, logger *zap.Logger) *Service {
	return &Service{
		projects: projects.New(db),
		items:    items.New(db),
		logger:   logger,
	}
}

// MetadataPatch carries optional metadata fields to merge over an item's
// existing metadata. Nil fields are left untouched.
type MetadataPatch struct {
	Encoding *string `json:"encoding,omitempty"`
	Language *string `json:"language,omitempty"`
	Readonly *bool   `json:"readonly,omitempty"`
}

func (p *MetadataPatch) apply(m *models.FileMetadata) {
	if p == nil {
		return
	}
	if p.Encoding != nil {
		m.Encoding = *p.Encoding
	}
	if p.Language != nil {
		m.Language = *p.Language
	}
	if p.Readonly != nil {
		m.Readonly = *p.Readonly
	}
}

// CreateInput contains the input for creating a file or folder.
type CreateInput struct {
	Name     string              `json:"name"`
	Type     models.ItemType     `json:"type"`
	ParentID *primitive.ObjectID `json:"parent_id,omitempty"`
	Content  string              `json:"content,omitempty"`
	Metadata *MetadataPatch      `json:"metadata,omitempty"`
}

// Create adds a file or folder to a project's tree.
//
// The path is the item's name at root level, or join(parent.path, name)
// under a parent. The parent must be a folder. At most one item may occupy
// a path within a project; under concurrent creates the unique index
// arbitrates and the loser gets ErrDuplicatePath.
func (s *Service) Create(ctx context.Context, projectID primitive.ObjectID, input CreateInput, userID primitive.ObjectID) (*models.FileSystemItem, error) {
	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !access.ForProject(project, userID).CanEdit() {
		return nil, apperr.ErrAccessDenied
	}

	fullPath := input.Name
	var parent *models.FileSystemItem

	if input.ParentID != nil {
		parent, err = s.items.GetByID(ctx, *input.ParentID)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrInvalidParent
		}
		if err != nil {
			return nil, err
		}
		if !parent.IsFolder() {
			return nil, apperr.ErrInvalidParent
		}
		fullPath = path.Join(parent.Path, input.Name)
	}

	exists, err := s.items.PathExists(ctx, projectID, fullPath, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.ErrDuplicatePath
	}

	now := time.Now()
	item := &models.FileSystemItem{
		ID:               primitive.NewObjectID(),
		ProjectID:        projectID,
		ParentID:         input.ParentID,
		Name:             input.Name,
		Path:             fullPath,
		Type:             input.Type,
		CreatedByID:      userID,
		LastModifiedByID: userID,
		LastModified:     now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	switch input.Type {
	case models.ItemTypeFile:
		metadata := models.DefaultFileMetadata()
		input.Metadata.apply(&metadata)
		item.File = &models.FileInfo{
			Content:   input.Content,
			MimeType:  mimeTypeFor(input.Name),
			Extension: strings.TrimPrefix(path.Ext(input.Name), "."),
			Size:      int64(len(input.Content)),
			Metadata:  metadata,
		}
	case models.ItemTypeFolder:
		item.Children = []primitive.ObjectID{}
	default:
		return nil, fmt.Errorf("unknown item type %q", input.Type)
	}

	name := input.Name
	item.History = []models.HistoryEntry{{
		UserID:    userID,
		Action:    models.HistoryCreated,
		Timestamp: now,
		NewValue:  &name,
	}}

	if err := s.items.Insert(ctx, item); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.ErrDuplicatePath
		}
		return nil, err
	}

	// Child first, then parent, so a crash between the two leaves an
	// orphaned item rather than a dangling child reference.
	if parent != nil {
		if err := s.items.AddChild(ctx, parent.ID, item.ID); err != nil {
			return nil, err
		}
	}

	s.reportTotalSize(ctx, projectID)

	return item, nil
}

// FindByProject returns every item in a project, files before folders,
// alphabetical within each group.
func (s *Service) FindByProject(ctx context.Context, projectID, userID primitive.ObjectID) ([]models.FileSystemItem, error) {
	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !access.ForProject(project, userID).CanRead() {
		return nil, apperr.ErrAccessDenied
	}

	return s.items.ListByProject(ctx, projectID)
}

// TreeNode is one node of the client-facing hierarchical view. Children
// replaces the stored flat id list with fully nested nodes.
type TreeNode struct {
	models.FileSystemItem
	Children []*TreeNode `json:"children"`
}

// GetTree returns the project's items as a nested hierarchy: only
// root-level items appear at the top, each carrying its descendants.
func (s *Service) GetTree(ctx context.Context, projectID, userID primitive.ObjectID) ([]*TreeNode, error) {
	all, err := s.FindByProject(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}

	nodes := make(map[primitive.ObjectID]*TreeNode, len(all))
	for i := range all {
		nodes[all[i].ID] = &TreeNode{
			FileSystemItem: all[i],
			Children:       []*TreeNode{},
		}
	}

	roots := []*TreeNode{}
	for i := range all {
		node := nodes[all[i].ID]
		if all[i].ParentID != nil {
			if parent, ok := nodes[*all[i].ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	return roots, nil
}

// FindOne returns a single item. The owning project is resolved from the
// item itself, and the caller needs read access to it.
func (s *Service) FindOne(ctx context.Context, id, userID primitive.ObjectID) (*models.FileSystemItem, error) {
	item, err := s.loadItem(ctx, id)
	if err != nil {
		return nil, err
	}

	project, err := s.loadProject(ctx, item.ProjectID)
	if err != nil {
		return nil, err
	}
	if !access.ForProject(project, userID).CanRead() {
		return nil, apperr.ErrAccessDenied
	}

	return item, nil
}

// UpdateInput contains the input for updating an item. Nil fields are
// left untouched.
type UpdateInput struct {
	Name     *string        `json:"name,omitempty"`
	Content  *string        `json:"content,omitempty"`
	Metadata *MetadataPatch `json:"metadata,omitempty"`
}

// Update renames an item, rewrites a file's content, or merges metadata.
// Readonly items reject all of it.
func (s *Service) Update(ctx context.Context, id primitive.ObjectID, input UpdateInput, userID primitive.ObjectID) (*models.FileSystemItem, error) {
	item, err := s.loadItem(ctx, id)
	if err != nil {
		return nil, err
	}

	project, err := s.loadProject(ctx, item.ProjectID)
	if err != nil {
		return nil, err
	}
	if !access.ForProject(project, userID).CanEdit() {
		return nil, apperr.ErrAccessDenied
	}
	if item.IsReadonly() {
		return nil, apperr.ErrReadonly
	}

	now := time.Now()

	if input.Name != nil && *input.Name != item.Name {
		newName := *input.Name
		newPath := path.Join(path.Dir(item.Path), newName)

		taken, err := s.items.PathExists(ctx, item.ProjectID, newPath, &item.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperr.ErrDuplicatePath
		}

		oldName := item.Name
		item.Name = newName
		item.Path = newPath
		item.History = append(item.History, models.HistoryEntry{
			UserID:    userID,
			Action:    models.HistoryRenamed,
			Timestamp: now,
			OldValue:  &oldName,
			NewValue:  &newName,
		})
	}

	if input.Content != nil && item.Type == models.ItemTypeFile {
		oldContent := item.File.Content
		newContent := *input.Content
		item.File.Content = newContent
		item.File.Size = int64(len(newContent))
		item.History = append(item.History, models.HistoryEntry{
			UserID:    userID,
			Action:    models.HistoryModified,
			Timestamp: now,
			OldValue:  &oldContent,
			NewValue:  &newContent,
		})
	}

	if input.Metadata != nil && item.File != nil {
		input.Metadata.apply(&item.File.Metadata)
	}

	item.LastModifiedByID = userID
	item.LastModified = now

	if err := s.items.Save(ctx, item); err != nil {
		return nil, err
	}

	s.reportTotalSize(ctx, item.ProjectID)

	return item, nil
}

// Remove deletes an item. Folders are removed post-order, children before
// the folder itself, with authorization and readonly re-checked at every
// node. The traversal uses an explicit stack so deep trees cannot blow the
// call stack.
func (s *Service) Remove(ctx context.Context, id, userID primitive.ObjectID) error {
	item, err := s.loadItem(ctx, id)
	if err != nil {
		return err
	}

	project, err := s.loadProject(ctx, item.ProjectID)
	if err != nil {
		return err
	}

	type frame struct {
		id       primitive.ObjectID
		expanded bool
	}
	stack := []frame{{id: id}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]

		if !top.expanded {
			top.expanded = true
			node, err := s.items.GetByID(ctx, top.id)
			if errors.Is(err, mongo.ErrNoDocuments) {
				stack = stack[:len(stack)-1]
				continue
			}
			if err != nil {
				return err
			}
			for _, childID := range node.Children {
				stack = append(stack, frame{id: childID})
			}
			continue
		}

		nodeID := top.id
		stack = stack[:len(stack)-1]
		if err := s.removeOne(ctx, project, nodeID, userID); err != nil {
			return err
		}
	}

	return nil
}

// removeOne deletes a single item: re-authorizes, detaches it from its
// parent, persists a "deleted" history entry, then removes the document.
// The history write lands before the delete since the item ceases to
// exist afterward.
func (s *Service) removeOne(ctx context.Context, project *models.Project, id, userID primitive.ObjectID) error {
	item, err := s.items.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	if err != nil {
		return err
	}

	if !access.ForProject(project, userID).CanEdit() {
		return apperr.ErrAccessDenied
	}
	if item.IsReadonly() {
		return apperr.ErrReadonly
	}

	if item.ParentID != nil {
		if err := s.items.RemoveChild(ctx, *item.ParentID, item.ID); err != nil {
			return err
		}
	}

	name := item.Name
	if err := s.items.PushHistory(ctx, item.ID, models.HistoryEntry{
		UserID:    userID,
		Action:    models.HistoryDeleted,
		Timestamp: time.Now(),
		OldValue:  &name,
	}); err != nil {
		return err
	}

	if err := s.items.Delete(ctx, item.ID); err != nil {
		return err
	}

	s.reportTotalSize(ctx, item.ProjectID)
	return nil
}

// Search finds items whose name or file content matches the query,
// case-insensitive, capped at 50 results.
func (s *Service) Search(ctx context.Context, projectID primitive.ObjectID, query string, userID primitive.ObjectID) ([]models.FileSystemItem, error) {
	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !access.ForProject(project, userID).CanRead() {
		return nil, apperr.ErrAccessDenied
	}

	return s.items.Search(ctx, projectID, query, 50)
}

func (s *Service) loadProject(ctx context.Context, projectID primitive.ObjectID) (*models.Project, error) {
	project, err := s.projects.GetActive(ctx, projectID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return project, nil
}

func (s *Service) loadItem(ctx context.Context, id primitive.ObjectID) (*models.FileSystemItem, error) {
	item, err := s.items.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// reportTotalSize recomputes the project's aggregate file size and writes
// it back to the project record. Best-effort: failures are logged and
// never fail the triggering mutation, so the cached size may lag.
func (s *Service) reportTotalSize(ctx context.Context, projectID primitive.ObjectID) {
	total, err := s.items.TotalFileSize(ctx, projectID)
	if err != nil {
		s.logger.Warn("failed to compute project total size",
			zap.String("project_id", projectID.Hex()),
			zap.Error(err),
		)
		return
	}
	if err := s.projects.SetTotalSize(ctx, projectID, total); err != nil {
		s.logger.Warn("failed to store project total size",
			zap.String("project_id", projectID.Hex()),
			zap.Int64("total_size", total),
			zap.Error(err),
		)
	}
}

// mimeTypeFor infers a mime type from the file name's extension,
// falling back to text/plain for unknown extensions. Any charset
// parameter the platform table carries is stripped.
func mimeTypeFor(name string) string {
	t := mime.TypeByExtension(path.Ext(name))
	if t == "" {
		return "text/plain"
	}
	if i := strings.Index(t, ";"); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	return t
}
