package items

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/devcollab/workbench/internal/domain/models"
	"github.com/devcollab/workbench/internal/testutil"
)

func newFile(projectID primitive.ObjectID, parentID *primitive.ObjectID, name, path, content string) *models.FileSystemItem {
	now := time.Now()
	userID := primitive.NewObjectID()
	return &models.FileSystemItem{
		ID:        primitive.NewObjectID(),
		ProjectID: projectID,
		ParentID:  parentID,
		Name:      name,
		Path:      path,
		Type:      models.ItemTypeFile,
		File: &models.FileInfo{
			Content:  content,
			MimeType: "text/plain",
			Size:     int64(len(content)),
			Metadata: models.DefaultFileMetadata(),
		},
		CreatedByID:      userID,
		LastModifiedByID: userID,
		LastModified:     now,
		History:          []models.HistoryEntry{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func newFolder(projectID primitive.ObjectID, parentID *primitive.ObjectID, name, path string) *models.FileSystemItem {
	now := time.Now()
	userID := primitive.NewObjectID()
	return &models.FileSystemItem{
		ID:               primitive.NewObjectID(),
		ProjectID:        projectID,
		ParentID:         parentID,
		Name:             name,
		Path:             path,
		Type:             models.ItemTypeFolder,
		Children:         []primitive.ObjectID{},
		CreatedByID:      userID,
		LastModifiedByID: userID,
		LastModified:     now,
		History:          []models.HistoryEntry{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func TestStore_InsertAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	projectID := primitive.NewObjectID()
	file := newFile(projectID, nil, "main.go", "main.go", "package main")

	if err := store.Insert(ctx, file); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	got, err := store.GetByID(ctx, file.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Name != "main.go" {
		t.Errorf("Name = %v, want main.go", got.Name)
	}
	if got.File == nil || got.File.Content != "package main" {
		t.Errorf("File = %+v, want content 'package main'", got.File)
	}

	if _, err := store.GetByID(ctx, primitive.NewObjectID()); err != mongo.ErrNoDocuments {
		t.Errorf("GetByID() for nonexistent ID error = %v, want %v", err, mongo.ErrNoDocuments)
	}
}

func TestStore_Insert_DuplicatePath(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	projectID := primitive.NewObjectID()
	if err := store.Insert(ctx, newFile(projectID, nil, "a.txt", "a.txt", "one")); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	err := store.Insert(ctx, newFile(projectID, nil, "a.txt", "a.txt", "two"))
	if !mongo.IsDuplicateKeyError(err) {
		t.Errorf("Insert() duplicate path error = %v, want duplicate key error", err)
	}

	// Same path in a different project is fine.
	if err := store.Insert(ctx, newFile(primitive.NewObjectID(), nil, "a.txt", "a.txt", "three")); err != nil {
		t.Errorf("Insert() same path other project error = %v", err)
	}
}

func TestStore_FindByPath(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	projectID := primitive.NewObjectID()
	file := newFile(projectID, nil, "readme.md", "docs/readme.md", "# hi")
	store.Insert(ctx, file)

	got, err := store.FindByPath(ctx, projectID, "docs/readme.md")
	if err != nil {
		t.Fatalf("FindByPath() error = %v", err)
	}
	if got.ID != file.ID {
		t.Errorf("ID = %v, want %v", got.ID, file.ID)
	}

	if _, err := store.FindByPath(ctx, projectID, "docs/missing.md"); err != mongo.ErrNoDocuments {
		t.Errorf("FindByPath() for missing path error = %v, want %v", err, mongo.ErrNoDocuments)
	}
}

func TestStore_PathExists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	projectID := primitive.NewObjectID()
	file := newFile(projectID, nil, "x.txt", "x.txt", "")
	store.Insert(ctx, file)

	exists, err := store.PathExists(ctx, projectID, "x.txt", nil)
	if err != nil {
		t.Fatalf("PathExists() error = %v", err)
	}
	if !exists {
		t.Error("PathExists() = false, want true")
	}

	// Excluding the item itself reports the path as free (rename case).
	exists, err = store.PathExists(ctx, projectID, "x.txt", &file.ID)
	if err != nil {
		t.Fatalf("PathExists() with exclude error = %v", err)
	}
	if exists {
		t.Error("PathExists() excluding self = true, want false")
	}
}

func TestStore_ListByProject_Order(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	projectID := primitive.NewObjectID()
	store.Insert(ctx, newFile(projectID, nil, "zebra.txt", "zebra.txt", ""))
	store.Insert(ctx, newFolder(projectID, nil, "src", "src"))
	store.Insert(ctx, newFile(projectID, nil, "apple.txt", "apple.txt", ""))
	store.Insert(ctx, newFolder(projectID, nil, "docs", "docs"))

	got, err := store.ListByProject(ctx, projectID)
	if err != nil {
		t.Fatalf("ListByProject() error = %v", err)
	}

	wantNames := []string{"apple.txt", "zebra.txt", "docs", "src"}
	if len(got) != len(wantNames) {
		t.Fatalf("len = %d, want %d", len(got), len(wantNames))
	}
	for i, want := range wantNames {
		if got[i].Name != want {
			t.Errorf("item[%d] = %v, want %v", i, got[i].Name, want)
		}
	}
}

func TestStore_Search(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	projectID := primitive.NewObjectID()
	store.Insert(ctx, newFile(projectID, nil, "Main.go", "src/Main.go", "package main"))
	store.Insert(ctx, newFile(projectID, nil, "util.go", "src/util.go", "package main\nfunc helper() {}"))
	store.Insert(ctx, newFile(projectID, nil, "notes.txt", "notes.txt", "remember the milk"))

	// Case-insensitive name match
	got, err := store.Search(ctx, projectID, "MAIN.GO", 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 1 || got[0].Name != "Main.go" {
		t.Errorf("Search(MAIN.GO) = %v, want Main.go", got)
	}

	// Content match
	got, _ = store.Search(ctx, projectID, "package main", 0)
	if len(got) != 2 {
		t.Errorf("Search(package main) len = %d, want 2", len(got))
	}

	// Pattern match
	got, _ = store.Search(ctx, projectID, "hel.er", 0)
	if len(got) != 1 || got[0].Name != "util.go" {
		t.Errorf("Search(hel.er) = %v, want util.go", got)
	}
}

func TestStore_AddRemoveChild(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	projectID := primitive.NewObjectID()
	folder := newFolder(projectID, nil, "src", "src")
	store.Insert(ctx, folder)
	childID := primitive.NewObjectID()

	if err := store.AddChild(ctx, folder.ID, childID); err != nil {
		t.Fatalf("AddChild() error = %v", err)
	}
	got, _ := store.GetByID(ctx, folder.ID)
	if len(got.Children) != 1 || got.Children[0] != childID {
		t.Errorf("Children = %v, want [%v]", got.Children, childID)
	}

	if err := store.RemoveChild(ctx, folder.ID, childID); err != nil {
		t.Fatalf("RemoveChild() error = %v", err)
	}
	got, _ = store.GetByID(ctx, folder.ID)
	if len(got.Children) != 0 {
		t.Errorf("Children = %v, want empty", got.Children)
	}
}

func TestStore_PushHistory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	projectID := primitive.NewObjectID()
	file := newFile(projectID, nil, "h.txt", "h.txt", "")
	store.Insert(ctx, file)

	name := "h.txt"
	entry := models.HistoryEntry{
		UserID:    primitive.NewObjectID(),
		Action:    models.HistoryDeleted,
		Timestamp: time.Now(),
		OldValue:  &name,
	}
	if err := store.PushHistory(ctx, file.ID, entry); err != nil {
		t.Fatalf("PushHistory() error = %v", err)
	}

	got, _ := store.GetByID(ctx, file.ID)
	if len(got.History) != 1 || got.History[0].Action != models.HistoryDeleted {
		t.Errorf("History = %+v, want one deleted entry", got.History)
	}
}

func TestStore_Save(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	projectID := primitive.NewObjectID()
	file := newFile(projectID, nil, "s.txt", "s.txt", "before")
	store.Insert(ctx, file)

	file.File.Content = "after, longer"
	file.File.Size = int64(len(file.File.Content))
	if err := store.Save(ctx, file); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, _ := store.GetByID(ctx, file.ID)
	if got.File.Content != "after, longer" {
		t.Errorf("Content = %q, want 'after, longer'", got.File.Content)
	}
	if got.File.Size != 13 {
		t.Errorf("Size = %d, want 13", got.File.Size)
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	projectID := primitive.NewObjectID()
	file := newFile(projectID, nil, "d.txt", "d.txt", "")
	store.Insert(ctx, file)

	if err := store.Delete(ctx, file.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.GetByID(ctx, file.ID); err != mongo.ErrNoDocuments {
		t.Errorf("GetByID() after delete error = %v, want %v", err, mongo.ErrNoDocuments)
	}
}

func TestStore_TotalFileSize(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	projectID := primitive.NewObjectID()

	// Empty project sums to zero.
	total, err := store.TotalFileSize(ctx, projectID)
	if err != nil {
		t.Fatalf("TotalFileSize() error = %v", err)
	}
	if total != 0 {
		t.Errorf("TotalFileSize() empty = %d, want 0", total)
	}

	store.Insert(ctx, newFile(projectID, nil, "a.txt", "a.txt", "12345"))
	store.Insert(ctx, newFile(projectID, nil, "b.txt", "b.txt", "1234567890"))
	store.Insert(ctx, newFolder(projectID, nil, "src", "src"))

	total, err = store.TotalFileSize(ctx, projectID)
	if err != nil {
		t.Fatalf("TotalFileSize() error = %v", err)
	}
	if total != 15 {
		t.Errorf("TotalFileSize() = %d, want 15", total)
	}
}
