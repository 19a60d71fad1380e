// Package collab owns per-project live-editing state: who is present,
// where their cursors are, and a bounded log of edit intents.
//
// The operation log is a linear record in arrival order. There is no
// OT/CRDT merge step; concurrent saves of the same session are
// last-write-wins, matching the request-scoped read-modify-write model
// the editor frontend was built against.
package collab

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/devcollab/workbench/internal/app/store/projects"
	"github.com/devcollab/workbench/internal/app/store/sessions"
	"github.com/devcollab/workbench/internal/app/system/access"
	"github.com/devcollab/workbench/internal/app/system/apperr"
	"github.com/devcollab/workbench/internal/domain/models"
)

// Service implements collaboration session operations for all projects.
type Service struct {
	projects *projects.Store
	sessions *sessions.Store
	logger   *zap.Logger
}

// NewService creates a collaboration service backed by db.
func NewService(db *mongo.Database, logger *zap.Logger) *Service {
	return &Service{
		projects: projects.New(db),
		sessions: sessions.New(db),
		logger:   logger,
	}
}

// Join adds the user to the project's active session, creating a fresh
// session when none is active. Rejoining reactivates the existing
// participant entry and, when fileID is given, moves their cursor there.
func (s *Service) Join(ctx context.Context, projectID, userID primitive.ObjectID, fileID *primitive.ObjectID) (*models.CollabSession, error) {
	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !access.ForProject(project, userID).CanRead() {
		return nil, apperr.ErrAccessDenied
	}

	now := time.Now()
	created := false

	session, err := s.sessions.ActiveByProject(ctx, projectID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		created = true
		session = &models.CollabSession{
			ID:            primitive.NewObjectID(),
			ProjectID:     projectID,
			Participants:  []models.Participant{},
			CurrentFileID: fileID,
			Operations:    []models.Operation{},
			IsActive:      true,
			LastActivity:  now,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		err = nil
	}
	if err != nil {
		return nil, err
	}

	if i := session.ParticipantIndex(userID); i >= 0 {
		session.Participants[i].IsActive = true
		session.Participants[i].LastSeen = now
		if fileID != nil {
			session.Participants[i].Cursor.FileID = *fileID
		}
	} else {
		// A placeholder file id keeps the cursor well-formed until the
		// client switches to a real file.
		cursorFile := primitive.NewObjectID()
		if fileID != nil {
			cursorFile = *fileID
		}
		session.Participants = append(session.Participants, models.Participant{
			UserID:   userID,
			Cursor:   models.CursorPosition{Line: 0, Column: 0, FileID: cursorFile},
			IsActive: true,
			JoinedAt: now,
			LastSeen: now,
		})
	}

	session.LastActivity = now

	if created {
		err = s.sessions.Insert(ctx, session)
	} else {
		err = s.sessions.Save(ctx, session)
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Leave marks the user's participant entry inactive, prunes entries that
// have been inactive for over an hour, and deactivates the session once
// no active participant remains. Leaving with no active session is a
// no-op.
func (s *Service) Leave(ctx context.Context, projectID, userID primitive.ObjectID) error {
	session, err := s.sessions.ActiveByProject(ctx, projectID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	if err != nil {
		return err
	}

	now := time.Now()

	if i := session.ParticipantIndex(userID); i >= 0 {
		session.Participants[i].IsActive = false
		session.Participants[i].LastSeen = now
	}

	cutoff := now.Add(-models.ParticipantRetention)
	kept := session.Participants[:0]
	for _, p := range session.Participants {
		if p.IsActive || p.LastSeen.After(cutoff) {
			kept = append(kept, p)
		}
	}
	session.Participants = kept

	if !session.HasActiveParticipants() {
		session.IsActive = false
	}

	session.LastActivity = now
	return s.sessions.Save(ctx, session)
}

// CursorInput is a participant's new cursor position.
type CursorInput struct {
	Line   int                `json:"line"`
	Column int                `json:"column"`
	FileID primitive.ObjectID `json:"file_id"`
}

// UpdateCursor overwrites the user's cursor wholesale. The user must be
// an active participant of the project's active session.
func (s *Service) UpdateCursor(ctx context.Context, projectID, userID primitive.ObjectID, input CursorInput) (*models.CollabSession, error) {
	session, i, err := s.activeParticipant(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session.Participants[i].Cursor = models.CursorPosition{
		Line:   input.Line,
		Column: input.Column,
		FileID: input.FileID,
	}
	session.Participants[i].LastSeen = now
	session.LastActivity = now

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// OperationInput is one edit intent to append to the session log.
type OperationInput struct {
	Kind     string `json:"operation"`
	Content  string `json:"content"`
	Position int    `json:"position"`
}

// AddOperation appends an edit intent to the session's log. The log is
// capped; once it exceeds the cap the oldest entries are dropped.
func (s *Service) AddOperation(ctx context.Context, projectID, userID primitive.ObjectID, input OperationInput) (*models.CollabSession, error) {
	session, _, err := s.activeParticipant(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session.Operations = append(session.Operations, models.Operation{
		Kind:      input.Kind,
		Content:   input.Content,
		Position:  input.Position,
		UserID:    userID,
		Timestamp: now,
	})
	if n := len(session.Operations); n > models.OperationLogCap {
		session.Operations = session.Operations[n-models.OperationLogCap:]
	}

	session.LastActivity = now

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// SwitchFile moves the user's cursor to the top of fileID. When the user
// is the first participant in the session's collection, the session's
// shared current file follows them.
func (s *Service) SwitchFile(ctx context.Context, projectID, userID, fileID primitive.ObjectID) (*models.CollabSession, error) {
	session, i, err := s.activeParticipant(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session.Participants[i].Cursor = models.CursorPosition{Line: 0, Column: 0, FileID: fileID}
	session.Participants[i].LastSeen = now

	if i == 0 {
		session.CurrentFileID = &fileID
	}

	session.LastActivity = now

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// GetActiveSession returns the project's active session, or nil when no
// session is active.
func (s *Service) GetActiveSession(ctx context.Context, projectID, userID primitive.ObjectID) (*models.CollabSession, error) {
	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !access.ForProject(project, userID).CanRead() {
		return nil, apperr.ErrAccessDenied
	}

	session, err := s.sessions.ActiveByProject(ctx, projectID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// ActiveUser is the public view of one active participant.
type ActiveUser struct {
	UserID   primitive.ObjectID    `json:"user_id"`
	Cursor   models.CursorPosition `json:"cursor"`
	JoinedAt time.Time             `json:"joined_at"`
	LastSeen time.Time             `json:"last_seen"`
}

// GetActiveUsers returns the active participants of the project's active
// session. No session, or only inactive entries, yields an empty list.
func (s *Service) GetActiveUsers(ctx context.Context, projectID, userID primitive.ObjectID) ([]ActiveUser, error) {
	session, err := s.GetActiveSession(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}

	users := []ActiveUser{}
	if session == nil {
		return users, nil
	}
	for _, p := range session.Participants {
		if !p.IsActive {
			continue
		}
		users = append(users, ActiveUser{
			UserID:   p.UserID,
			Cursor:   p.Cursor,
			JoinedAt: p.JoinedAt,
			LastSeen: p.LastSeen,
		})
	}
	return users, nil
}

// GetRecentOperations returns the last limit operations in chronological
// order. limit defaults to 100 when zero or negative.
func (s *Service) GetRecentOperations(ctx context.Context, projectID, userID primitive.ObjectID, limit int) ([]models.Operation, error) {
	if limit <= 0 {
		limit = 100
	}

	session, err := s.GetActiveSession(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return []models.Operation{}, nil
	}

	ops := session.Operations
	if len(ops) > limit {
		ops = ops[len(ops)-limit:]
	}
	return ops, nil
}

// CleanupInactiveSessions force-deactivates every session idle for longer
// than the idle timeout, irrespective of participant state. Run
// periodically, not per-request.
func (s *Service) CleanupInactiveSessions(ctx context.Context) (int64, error) {
	return s.sessions.DeactivateIdle(ctx, time.Now().Add(-models.SessionIdleTimeout))
}

// activeParticipant loads the project's active session and locates userID
// as an active participant in it.
func (s *Service) activeParticipant(ctx context.Context, projectID, userID primitive.ObjectID) (*models.CollabSession, int, error) {
	session, err := s.sessions.ActiveByProject(ctx, projectID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, 0, apperr.ErrNoActiveSession
	}
	if err != nil {
		return nil, 0, err
	}

	i := session.ActiveParticipantIndex(userID)
	if i < 0 {
		return nil, 0, apperr.ErrNotInSession
	}
	return session, i, nil
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
