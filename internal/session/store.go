// Package session holds in-memory interview session state. Sessions live
// for the process lifetime only; the optional archive writes finished
// transcripts to disk.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/nats-io/nuid"

	"github.com/ebalci/oratio/internal/models"
)

// Interaction modes a session can run in.
const (
	ModeText  = "text"
	ModeVoice = "voice"
)

// ErrNotFound is returned for unknown session ids.
var ErrNotFound = errors.New("session not found")

// Consent records whether the participant agreed to recording.
type Consent struct {
	Granted   bool       `json:"granted"`
	GrantedAt *time.Time `json:"granted_at,omitempty"`
}

// Session is one interview in progress.
type Session struct {
	ID              string
	Mode            string
	DurationMinutes int
	UserName        string
	UserEmail       string
	Consent         Consent
	StartedAt       time.Time
	Messages        []models.ChatMessage
}

// WordCount sums the words of the participant's turns.
func (s Session) WordCount() int {
	total := 0
	for _, m := range s.Messages {
		if m.Role == models.RoleUser {
			total += m.WordCount()
		}
	}
	return total
}

// StartParams describes a new session.
type StartParams struct {
	Mode            string
	DurationMinutes int
	UserName        string
	UserEmail       string
	Consent         Consent
}

// Store is a mutex-guarded in-memory session registry. It does not enforce
// per-session mutual exclusion across requests; callers are expected to
// drive one session from one client at a time.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	turns    map[string]int
	now      func() time.Time
}

// NewStore builds an empty store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
		turns:    make(map[string]int),
		now:      time.Now,
	}
}

// Create registers a new session and returns a snapshot of it.
func (st *Store) Create(params StartParams) Session {
	if params.Mode == "" {
		params.Mode = ModeText
	}
	if params.DurationMinutes <= 0 {
		params.DurationMinutes = 10
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	s := &Session{
		ID:              nuid.Next(),
		Mode:            params.Mode,
		DurationMinutes: params.DurationMinutes,
		UserName:        params.UserName,
		UserEmail:       params.UserEmail,
		Consent:         params.Consent,
		StartedAt:       st.now().UTC(),
	}
	st.sessions[s.ID] = s
	return snapshot(s)
}

// Get returns a snapshot of the session, or ErrNotFound.
func (st *Store) Get(id string) (Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	s, ok := st.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	return snapshot(s), nil
}

// AppendMessage adds one transcript turn to the session.
func (st *Store) AppendMessage(id string, msg models.ChatMessage) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[id]
	if !ok {
		return ErrNotFound
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = st.now().UTC()
	}
	s.Messages = append(s.Messages, msg)
	return nil
}

// IncrementTurn bumps and returns the completed-turn counter.
func (st *Store) IncrementTurn(id string) (int, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.sessions[id]; !ok {
		return 0, ErrNotFound
	}
	st.turns[id]++
	return st.turns[id], nil
}

// DurationSeconds reports how long the session has been running.
func (st *Store) DurationSeconds(id string) (int, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	s, ok := st.sessions[id]
	if !ok {
		return 0, ErrNotFound
	}
	return int(st.now().UTC().Sub(s.StartedAt).Seconds()), nil
}

// Delete forgets the session. Unknown ids are a no-op.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
	delete(st.turns, id)
}

func snapshot(s *Session) Session {
	out := *s
	out.Messages = append([]models.ChatMessage(nil), s.Messages...)
	return out
}
