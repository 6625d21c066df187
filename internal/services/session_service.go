package services

import (
	"strings"
	"sync"
)

// SessionBackend is what the response engine needs from the schema store: a
// schema snapshot at session start and a single submission call at the end.
type SessionBackend interface {
	Schema() FormState
	AddResponse(answers map[string]AnswerValue) FormResponse
}

// Session drives one respondent through the section sequence. It owns its
// answer and error maps for the whole session and never touches the schema.
type Session struct {
	ID                  string
	Schema              FormState
	CurrentSectionIndex int
	Answers             map[string]AnswerValue
	FieldErrors         map[string]string
	Submitted           bool
}

// SessionState is the snapshot handed to callers after each transition.
type SessionState struct {
	ID                  string                 `json:"id"`
	CurrentSectionIndex int                    `json:"currentSectionIndex"`
	Answers             map[string]AnswerValue `json:"answers"`
	FieldErrors         map[string]string      `json:"fieldErrors"`
	Submitted           bool                   `json:"submitted"`
	ResponseID          string                 `json:"responseId,omitempty"`
}

// SessionService keeps live respondent sessions and applies the navigation
// state machine to them.
type SessionService struct {
	mu       sync.Mutex
	backend  SessionBackend
	sessions map[string]*Session
	idGen    func() string
}

func NewSessionService(backend SessionBackend) *SessionService {
	return &SessionService{
		backend:  backend,
		sessions: map[string]*Session{},
		idGen:    func() string { return shortID(12) },
	}
}

// Start opens a session against the current schema snapshot.
func (s *SessionService) Start() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := &Session{
		ID:          s.idGen(),
		Schema:      s.backend.Schema(),
		Answers:     map[string]AnswerValue{},
		FieldErrors: map[string]string{},
	}
	s.sessions[sess.ID] = sess
	return snapshotSession(sess)
}

func (s *SessionService) get(id string) (*Session, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, NewNotFoundError("session not found")
	}
	return sess, nil
}

// Get returns the current state of a session.
func (s *SessionService) Get(id string) (SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.get(id)
	if err != nil {
		return SessionState{}, err
	}
	return snapshotSession(sess), nil
}

// SetAnswer overwrites the answer for a question. Errors for the field stay
// until the next validation pass.
func (s *SessionService) SetAnswer(id, questionID string, v AnswerValue) (SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.get(id)
	if err != nil {
		return SessionState{}, err
	}
	if sess.Submitted {
		return SessionState{}, NewInvalidError("session already submitted")
	}
	sess.Answers[questionID] = v
	return snapshotSession(sess), nil
}

// Advance validates the current section and, on success, moves to the next
// section or follows the first matching conditional jump. On failure the
// session stays put with the field errors merged in.
func (s *SessionService) Advance(id string) (SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.get(id)
	if err != nil {
		return SessionState{}, err
	}
	if sess.Submitted {
		return SessionState{}, NewInvalidError("session already submitted")
	}
	if !validateCurrentSection(sess) {
		return snapshotSession(sess), nil
	}

	if idx, ok := conditionalTarget(sess); ok {
		sess.CurrentSectionIndex = idx
		return snapshotSession(sess), nil
	}

	last := len(sess.Schema.Sections) - 1
	if sess.CurrentSectionIndex < last {
		sess.CurrentSectionIndex++
	}
	return snapshotSession(sess), nil
}

// Retreat steps back one section without validating.
func (s *SessionService) Retreat(id string) (SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.get(id)
	if err != nil {
		return SessionState{}, err
	}
	if sess.Submitted {
		return SessionState{}, NewInvalidError("session already submitted")
	}
	if sess.CurrentSectionIndex > 0 {
		sess.CurrentSectionIndex--
	}
	return snapshotSession(sess), nil
}

// Submit validates every question in the form. On failure the error map is
// replaced wholesale and the session stays open; on success the answers are
// handed to the schema store and the session latches submitted.
func (s *SessionService) Submit(id string) (SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.get(id)
	if err != nil {
		return SessionState{}, err
	}
	if sess.Submitted {
		return SessionState{}, NewInvalidError("session already submitted")
	}
	errs := ValidateAll(sess.Schema, sess.Answers)
	sess.FieldErrors = errs
	if len(errs) > 0 {
		return snapshotSession(sess), nil
	}
	answers := make(map[string]AnswerValue, len(sess.Answers))
	for k, v := range sess.Answers {
		answers[k] = v
	}
	resp := s.backend.AddResponse(answers)
	sess.Submitted = true
	out := snapshotSession(sess)
	out.ResponseID = resp.ID
	return out, nil
}

// validateCurrentSection merges the current section's failures into the error
// map and reports whether the section passed.
func validateCurrentSection(sess *Session) bool {
	sec := currentSection(sess)
	if sec == nil {
		return true
	}
	errs := ValidateSection(sess.Schema, sec.ID, sess.Answers)
	for k, v := range errs {
		sess.FieldErrors[k] = v
	}
	return len(errs) == 0
}

// conditionalTarget scans the current section's questions in order and
// returns the index of the jump target of the first enabled condition whose
// answer matches, case-folded and trimmed. Unknown targets fall through.
func conditionalTarget(sess *Session) (int, bool) {
	sec := currentSection(sess)
	if sec == nil {
		return 0, false
	}
	for _, q := range sess.Schema.Questions {
		if q.SectionID != sec.ID {
			continue
		}
		c := q.Condition
		if !c.Enabled || c.TargetSectionID == "" {
			continue
		}
		answer := strings.ToLower(strings.TrimSpace(sess.Answers[q.ID].Text()))
		want := strings.ToLower(strings.TrimSpace(c.Equals))
		if answer != want {
			continue
		}
		for i, s := range sess.Schema.Sections {
			if s.ID == c.TargetSectionID {
				return i, true
			}
		}
		return 0, false
	}
	return 0, false
}

func currentSection(sess *Session) *Section {
	if sess.CurrentSectionIndex < 0 || sess.CurrentSectionIndex >= len(sess.Schema.Sections) {
		return nil
	}
	return &sess.Schema.Sections[sess.CurrentSectionIndex]
}

func snapshotSession(sess *Session) SessionState {
	answers := make(map[string]AnswerValue, len(sess.Answers))
	for k, v := range sess.Answers {
		answers[k] = v
	}
	errs := make(map[string]string, len(sess.FieldErrors))
	for k, v := range sess.FieldErrors {
		errs[k] = v
	}
	return SessionState{
		ID:                  sess.ID,
		CurrentSectionIndex: sess.CurrentSectionIndex,
		Answers:             answers,
		FieldErrors:         errs,
		Submitted:           sess.Submitted,
	}
}
