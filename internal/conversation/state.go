package conversation

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State is the position of a user in the analysis dialogue.
type State string

const (
	StateIdle            State = "idle"
	StateAwaitingResume  State = "awaiting_resume"
	StateAwaitingVacancy State = "awaiting_vacancy"
)

// Document is an uploaded file that has been stored and extracted.
type Document struct {
	Text     string `json:"text"`
	Ref      string `json:"ref"`
	FileName string `json:"fileName,omitempty"`
}

// Session is the per-user dialogue state. Resume is only set in AwaitingVacancy.
type Session struct {
	State     State     `json:"state"`
	Resume    *Document `json:"resume,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func idleSession() Session {
	return Session{State: StateIdle}
}

// ErrCorruptSession marks a stored session that cannot be decoded.
var ErrCorruptSession = errors.New("corrupt session")

// Store keeps one session per user. Load of an unknown user returns an idle session.
type Store interface {
	Load(ctx context.Context, userID int64) (Session, error)
	Save(ctx context.Context, userID int64, session Session) error
	Clear(ctx context.Context, userID int64) error
}

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]Session
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[int64]Session)}
}

func (s *MemoryStore) Load(ctx context.Context, userID int64) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[userID]
	if !ok {
		return idleSession(), nil
	}
	if session.Resume != nil {
		doc := *session.Resume
		session.Resume = &doc
	}
	return session, nil
}

func (s *MemoryStore) Save(ctx context.Context, userID int64, session Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if session.Resume != nil {
		doc := *session.Resume
		session.Resume = &doc
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = session
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context, userID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}
