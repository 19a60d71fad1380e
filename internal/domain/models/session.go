package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collaboration session tuning. These mirror the editor frontend's
// expectations and are not configurable per deployment.
const (
	// OperationLogCap bounds the per-session operation log. Once the log
	// exceeds the cap, the oldest entries are dropped (FIFO).
	OperationLogCap = 1000

	// ParticipantRetention is how long an inactive participant is kept in
	// the session before being purged on the next leave.
	ParticipantRetention = time.Hour

	// SessionIdleTimeout is how long a session may sit without activity
	// before the background sweep marks it inactive.
	SessionIdleTimeout = 24 * time.Hour
)

// Operation kinds in the session log. The log records edit intents in
// arrival order; it is not an OT/CRDT stream and no merge is attempted.
const (
	OperationInsert = "insert"
	OperationDelete = "delete"
	OperationRetain = "retain"
)

// CursorPosition is one participant's cursor within a file.
type CursorPosition struct {
	Line   int                `bson:"line" json:"line"`
	Column int                `bson:"column" json:"column"`
	FileID primitive.ObjectID `bson:"file_id" json:"file_id"`
}

// Participant is one user's presence in a collaboration session.
type Participant struct {
	UserID   primitive.ObjectID `bson:"user_id" json:"user_id"`
	Cursor   CursorPosition     `bson:"cursor" json:"cursor"`
	IsActive bool               `bson:"is_active" json:"is_active"`
	JoinedAt time.Time          `bson:"joined_at" json:"joined_at"`
	LastSeen time.Time          `bson:"last_seen" json:"last_seen"`
}

// Operation is one edit intent submitted during a session.
type Operation struct {
	Kind      string             `bson:"kind" json:"operation"`
	Content   string             `bson:"content" json:"content"`
	Position  int                `bson:"position" json:"position"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}

// CollabSession is the live-editing state for one project: who is present,
// where their cursors are, and the bounded log of recent operations.
// At most one session per project has IsActive set; once a session goes
// inactive it is never reactivated, the next join creates a fresh one.
type CollabSession struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProjectID primitive.ObjectID `bson:"project_id" json:"project_id"`

	Participants []Participant `bson:"participants" json:"participants"`

	// CurrentFileID is the file the session considers current. By
	// convention it follows the first participant in the collection.
	CurrentFileID *primitive.ObjectID `bson:"current_file_id,omitempty" json:"current_file_id,omitempty"`

	Operations []Operation `bson:"operations" json:"operations"`

	IsActive     bool      `bson:"is_active" json:"is_active"`
	LastActivity time.Time `bson:"last_activity" json:"last_activity"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ParticipantIndex returns the position of userID in Participants, or -1.
func (s *CollabSession) ParticipantIndex(userID primitive.ObjectID) int {
	for i, p := range s.Participants {
		if p.UserID == userID {
			return i
		}
	}
	return -1
}

// ActiveParticipantIndex returns the position of userID in Participants if
// that participant is active, or -1.
func (s *CollabSession) ActiveParticipantIndex(userID primitive.ObjectID) int {
	i := s.ParticipantIndex(userID)
	if i < 0 || !s.Participants[i].IsActive {
		return -1
	}
	return i
}

// HasActiveParticipants reports whether any participant is still active.
func (s *CollabSession) HasActiveParticipants() bool {
	for _, p := range s.Participants {
		if p.IsActive {
			return true
		}
	}
	return false
}
