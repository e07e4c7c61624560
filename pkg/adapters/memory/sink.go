package memory

import (
	"context"
	"sync"

	"github.com/regality/formchat/pkg/domain"
)

// Submission is one record received by a Sink.
type Submission struct {
	SessionID string        `json:"session_id"`
	Record    domain.Record `json:"record"`
}

// Sink implements ports.SubmissionSink by keeping submissions in memory.
// Used by the CLI and tests; nothing survives the process.
type Sink struct {
	mu          sync.Mutex
	submissions []Submission
}

// NewSink creates an empty sink.
func NewSink() *Sink {
	return &Sink{}
}

// Submit stores a copy of the record.
func (s *Sink) Submit(ctx context.Context, sessionID string, record domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submissions = append(s.submissions, Submission{SessionID: sessionID, Record: record.Clone()})
	return nil
}

// Submissions returns everything received so far, oldest first.
func (s *Sink) Submissions() []Submission {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Submission, len(s.submissions))
	for i, sub := range s.submissions {
		out[i] = Submission{SessionID: sub.SessionID, Record: sub.Record.Clone()}
	}
	return out
}

// Last returns the most recent submission.
func (s *Sink) Last() (Submission, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.submissions) == 0 {
		return Submission{}, false
	}
	sub := s.submissions[len(s.submissions)-1]
	return Submission{SessionID: sub.SessionID, Record: sub.Record.Clone()}, true
}
