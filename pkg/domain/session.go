package domain

import "time"

// Session is the mutable progress of one in-flight form.
//
// Cursor is the index of the question most recently asked, plus one.
// Answers holds the answered fields in catalog order with no gaps.
type Session struct {
	// ID is the correlation identifier the session is keyed by.
	ID string `json:"id"`

	Cursor  int    `json:"cursor"`
	Answers Record `json:"answers"`

	// UpdatedAt is set by the owner whenever the session is persisted.
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// NewSession creates a session in its initial state.
func NewSession(id string) *Session {
	return &Session{
		ID:      id,
		Answers: Record{},
	}
}

// RecordAnswer appends an answer. Only the engine calls this.
func (s *Session) RecordAnswer(name, text string) {
	s.Answers = append(s.Answers, Answer{Field: name, Value: text})
}

// Advance moves the cursor past the question just asked. Only the engine calls this.
func (s *Session) Advance() {
	s.Cursor++
}

// Reset returns the session to its initial state, keeping its ID.
func (s *Session) Reset() {
	s.Cursor = 0
	s.Answers = Record{}
}

// IsComplete reports whether every field of c has been answered.
func (s *Session) IsComplete(c *Catalog) bool {
	return s.Cursor >= c.Size() && len(s.Answers) >= c.Size()
}

// IsFresh reports whether no question has been asked yet.
func (s *Session) IsFresh() bool {
	return s.Cursor == 0 && len(s.Answers) == 0
}

// Snapshot returns a copy of the collected answers.
func (s *Session) Snapshot() Record {
	return s.Answers.Clone()
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	cp := *s
	cp.Answers = s.Answers.Clone()
	return &cp
}
