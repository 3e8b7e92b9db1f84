package state

import (
	"context"
	"errors"
	"time"

	contractx "github.com/lenslink/lenslink-agent/agent/contract"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNilSession      = errors.New("session is nil")
	ErrInvalidSession  = errors.New("session id is empty")
)

// Step is the informal sub-state-machine of a conversation:
// initial -> clarifying_photographer | showing_options -> (resolved).
type Step string

const (
	StepInitial        Step = "initial"
	StepClarifying     Step = "clarifying_photographer"
	StepShowingOptions Step = "showing_options"
)

// HistoryEntry is one turn of conversation history.
type HistoryEntry struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Session is the per-conversation state used to resume multi-turn flows.
// Candidates holds either the ambiguous name matches (clarifying step) or the
// ranked recommendations (showing_options step); the next turn's selection
// path reads exactly what the previous turn wrote.
type Session struct {
	ID             string                 `json:"id"`
	Step           Step                   `json:"step"`
	History        []HistoryEntry         `json:"history,omitempty"`
	Context        map[string]any         `json:"context,omitempty"`
	Candidates     []contractx.Candidate  `json:"candidates,omitempty"`
	OriginalIntent *contractx.Intent      `json:"original_intent,omitempty"`
	Requirements   contractx.Requirements `json:"requirements,omitempty"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		Step:      StepInitial,
		Context:   make(map[string]any, 4),
		UpdatedAt: now.UTC(),
	}
}

func (s *Session) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

// AppendHistory records one turn without touching workflow state.
func (s *Session) AppendHistory(role, content string, now time.Time) {
	s.History = append(s.History, HistoryEntry{
		Role:      role,
		Content:   content,
		Timestamp: now.UTC(),
	})
	s.Touch(now)
}

// ShowOptions stores the ranked recommendations for the next turn's
// numbered/named selection.
func (s *Session) ShowOptions(candidates []contractx.Candidate, reqs contractx.Requirements, now time.Time) {
	s.Step = StepShowingOptions
	s.Candidates = candidates
	s.Requirements = reqs
	s.Touch(now)
}

// Clarify stores ambiguous name matches plus the intent that produced them.
func (s *Session) Clarify(matches []contractx.Candidate, intent contractx.Intent, now time.Time) {
	s.Step = StepClarifying
	s.Candidates = matches
	s.OriginalIntent = &intent
	s.Touch(now)
}

// Resolve returns the session to the initial step once a selection lands.
func (s *Session) Resolve(now time.Time) {
	s.Step = StepInitial
	s.Candidates = nil
	s.OriginalIntent = nil
	s.Touch(now)
}

// Store is the persistence contract for conversation sessions.
type Store interface {
	Load(ctx context.Context, sessionID string) (*Session, error)
	Save(ctx context.Context, sess *Session) error
	Delete(ctx context.Context, sessionID string) error
}

// GetOrCreate loads an existing session or returns a fresh one. The new
// session is not saved until the caller does so.
func GetOrCreate(ctx context.Context, store Store, sessionID string, now time.Time) (*Session, error) {
	sess, err := store.Load(ctx, sessionID)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, ErrSessionNotFound) {
		return nil, err
	}
	return NewSession(sessionID, now), nil
}
