package services

import (
	"encoding/json"
	"log"
	"strconv"
	"sync"
	"time"
)

// FormBlobStore abstracts the key-value persistence boundary. Load returns
// nil bytes when no prior state exists.
type FormBlobStore interface {
	Load() ([]byte, error)
	Save(data []byte) error
}

// FormService is the single source of truth for the form definition and the
// response log. All mutations go through it; each one re-establishes the
// referential invariants and persists the whole state best-effort.
type FormService struct {
	mu    sync.Mutex
	state FormState
	store FormBlobStore
	now   func() time.Time
	idGen func() string
	audit []AuditEntry
}

// NewFormService loads prior state from the store (defaults when missing or
// corrupt) and normalizes it.
func NewFormService(store FormBlobStore) *FormService {
	s := &FormService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		idGen: func() string { return shortID(8) },
	}
	s.state = Normalize(s.loadInitial())
	return s
}

func (s *FormService) loadInitial() FormState {
	if s.store == nil {
		return DefaultState()
	}
	raw, err := s.store.Load()
	if err != nil {
		log.Printf("form service: load state: %v", err)
		return DefaultState()
	}
	st, ok := DecodeState(raw)
	if !ok {
		return DefaultState()
	}
	return st
}

// DecodeState parses a serialized FormState. Missing or malformed payloads
// report ok=false and are treated as absence of prior state.
func DecodeState(raw []byte) (FormState, bool) {
	if len(raw) == 0 {
		return FormState{}, false
	}
	var st FormState
	if err := json.Unmarshal(raw, &st); err != nil {
		return FormState{}, false
	}
	return st, true
}

// EncodeState serializes the whole state for the blob store.
func EncodeState(st FormState) ([]byte, error) {
	return json.Marshal(st)
}

// persist writes the current state to the blob store. Failures are logged and
// swallowed; the in-memory state stays authoritative.
func (s *FormService) persist() {
	if s.store == nil {
		return
	}
	raw, err := EncodeState(s.state)
	if err != nil {
		log.Printf("form service: encode state: %v", err)
		return
	}
	if err := s.store.Save(raw); err != nil {
		log.Printf("form service: save state: %v", err)
	}
}

// State returns a deep-copy snapshot of the aggregate.
func (s *FormService) State() FormState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Schema returns a snapshot without the response log, for respondent sessions.
func (s *FormService) Schema() FormState {
	st := s.State()
	st.Responses = []FormResponse{}
	return st
}

func (s *FormService) Audit() []AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]AuditEntry(nil), s.audit...)
}

// SettingsPatch carries the updatable form-settings fields; nil means keep.
type SettingsPatch struct {
	Title               *string `json:"title"`
	Description         *string `json:"description"`
	LogoBase64          *string `json:"logoBase64"`
	ConfirmationMessage *string `json:"confirmationMessage"`
	AppName             *string `json:"appName"`
}

func (s *FormService) UpdateSettings(patch SettingsPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := &s.state.Settings
	applyStr(&st.Title, patch.Title)
	applyStr(&st.Description, patch.Description)
	applyStr(&st.LogoBase64, patch.LogoBase64)
	applyStr(&st.ConfirmationMessage, patch.ConfirmationMessage)
	applyStr(&st.AppName, patch.AppName)
	s.persist()
}

// ThemePatch carries the updatable theme fields; nil means keep.
type ThemePatch struct {
	Primary         *string `json:"primary"`
	Secondary       *string `json:"secondary"`
	Accent          *string `json:"accent"`
	Background      *string `json:"background"`
	BackgroundStyle *string `json:"backgroundStyle"`
	DarkMode        *bool   `json:"darkMode"`
}

func (s *FormService) UpdateTheme(patch ThemePatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	th := &s.state.Theme
	applyStr(&th.Primary, patch.Primary)
	applyStr(&th.Secondary, patch.Secondary)
	applyStr(&th.Accent, patch.Accent)
	applyStr(&th.Background, patch.Background)
	applyStr(&th.BackgroundStyle, patch.BackgroundStyle)
	if patch.DarkMode != nil {
		th.DarkMode = *patch.DarkMode
	}
	s.persist()
}

// AddSection appends a new section with a generated id and a sequential
// default title. Never fails.
func (s *FormService) AddSection() Section {
	s.mu.Lock()
	defer s.mu.Unlock()
	sec := Section{
		ID:    s.idGen(),
		Title: "Section " + strconv.Itoa(len(s.state.Sections)+1),
	}
	s.state.Sections = append(s.state.Sections, sec)
	s.persist()
	return sec
}

// SectionPatch carries the updatable section fields; nil means keep.
type SectionPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// UpdateSection merges the patch into the matching section. Unknown ids are
// silently ignored.
func (s *FormService) UpdateSection(id string, patch SectionPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.Sections {
		if s.state.Sections[i].ID != id {
			continue
		}
		applyStr(&s.state.Sections[i].Title, patch.Title)
		applyStr(&s.state.Sections[i].Description, patch.Description)
		s.persist()
		return
	}
}

// DeleteSection removes a section; its questions are re-pointed to the first
// surviving section by normalization. Deleting the last section is a no-op.
func (s *FormService) DeleteSection(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.state.Sections) <= 1 {
		return
	}
	kept := make([]Section, 0, len(s.state.Sections))
	for _, sec := range s.state.Sections {
		if sec.ID != id {
			kept = append(kept, sec)
		}
	}
	if len(kept) == len(s.state.Sections) {
		return
	}
	s.state.Sections = kept
	s.state = Normalize(s.state)
	s.persist()
}

// AddQuestion inserts a question with type defaults. An empty sectionID picks
// the first section; index < 0 appends, otherwise the insert position is
// clamped. With no sections present the call is a no-op.
func (s *FormService) AddQuestion(t QuestionType, sectionID string, index int) *Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sectionID == "" {
		if len(s.state.Sections) == 0 {
			return nil
		}
		sectionID = s.state.Sections[0].ID
	}
	q := DefaultQuestion(t, sectionID)
	q.ID = s.idGen()
	if index < 0 || index >= len(s.state.Questions) {
		s.state.Questions = append(s.state.Questions, q)
	} else {
		qs := s.state.Questions
		qs = append(qs[:index], append([]Question{q}, qs[index:]...)...)
		s.state.Questions = qs
	}
	s.state = Normalize(s.state)
	s.persist()
	cp := q.Clone()
	return &cp
}

// QuestionPatch carries the updatable question fields; nil means keep.
type QuestionPatch struct {
	SectionID   *string           `json:"sectionId"`
	Type        *QuestionType     `json:"type"`
	Title       *string           `json:"title"`
	Description *string           `json:"description"`
	Required    *bool             `json:"required"`
	Options     *[]string         `json:"options"`
	AllowOther  *bool             `json:"allowOther"`
	Validation  *ValidationRule   `json:"validation"`
	ScaleMin    *int              `json:"scaleMin"`
	ScaleMax    *int              `json:"scaleMax"`
	Condition   *ConditionalLogic `json:"condition"`
}

// UpdateQuestion shallow-merges the patch into the matching question. A type
// change additionally applies the type-switch policy so the option/validation
// invariants hold. Unknown ids are silently ignored.
func (s *FormService) UpdateQuestion(id string, patch QuestionPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.Questions {
		q := &s.state.Questions[i]
		if q.ID != id {
			continue
		}
		applyStr(&q.Title, patch.Title)
		applyStr(&q.Description, patch.Description)
		if patch.SectionID != nil {
			q.SectionID = *patch.SectionID
		}
		if patch.Required != nil {
			q.Required = *patch.Required
		}
		if patch.Options != nil {
			q.Options = append([]string(nil), (*patch.Options)...)
		}
		if patch.AllowOther != nil {
			q.AllowOther = *patch.AllowOther
		}
		if patch.Validation != nil {
			q.Validation = *patch.Validation
		}
		if patch.ScaleMin != nil {
			q.ScaleMin = *patch.ScaleMin
		}
		if patch.ScaleMax != nil {
			q.ScaleMax = *patch.ScaleMax
		}
		if patch.Condition != nil {
			q.Condition = *patch.Condition
		}
		if patch.Type != nil && *patch.Type != q.Type {
			switchType(q, *patch.Type)
		}
		s.state = Normalize(s.state)
		s.persist()
		return
	}
}

// switchType changes a question's type and resets the fields the new type
// does not carry: non-option types lose their options and "allow other",
// option types keep existing options or get a seeded placeholder, and
// non-text types fall back to no validation.
func switchType(q *Question, t QuestionType) {
	q.Type = t
	if t.OptionBearing() {
		if len(q.Options) == 0 {
			q.Options = []string{"Option 1"}
		}
	} else {
		q.Options = []string{}
		q.AllowOther = false
	}
	if !t.Validatable() {
		q.Validation = ValidationRule{Type: ValidationNone}
	}
}

// DeleteQuestion removes the question; normalization restores the minimum of
// one question afterwards.
func (s *FormService) DeleteQuestion(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := make([]Question, 0, len(s.state.Questions))
	for _, q := range s.state.Questions {
		if q.ID != id {
			kept = append(kept, q)
		}
	}
	if len(kept) == len(s.state.Questions) {
		return
	}
	s.state.Questions = kept
	s.state = Normalize(s.state)
	s.persist()
}

// DuplicateQuestion inserts a deep copy with a fresh id immediately after the
// original, preserving the title verbatim.
func (s *FormService) DuplicateQuestion(id string) *Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, q := range s.state.Questions {
		if q.ID != id {
			continue
		}
		cp := q.Clone()
		cp.ID = s.idGen()
		qs := s.state.Questions
		qs = append(qs[:i+1], append([]Question{cp}, qs[i+1:]...)...)
		s.state.Questions = qs
		s.persist()
		out := cp.Clone()
		return &out
	}
	return nil
}

// ReorderQuestions moves the question at fromIndex to toIndex, preserving the
// relative order of everything else. Out-of-range indices are a no-op.
func (s *FormService) ReorderQuestions(fromIndex, toIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	qs := s.state.Questions
	if fromIndex < 0 || toIndex < 0 || fromIndex >= len(qs) || toIndex >= len(qs) {
		return
	}
	moved := qs[fromIndex]
	qs = append(qs[:fromIndex], qs[fromIndex+1:]...)
	qs = append(qs[:toIndex], append([]Question{moved}, qs[toIndex:]...)...)
	s.state.Questions = qs
	s.persist()
}

// AddResponse appends an immutable response record with a generated id and
// the current timestamp. Validation happened in the response engine before
// this is called.
func (s *FormService) AddResponse(answers map[string]AnswerValue) FormResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make(map[string]AnswerValue, len(answers))
	for k, v := range answers {
		cp[k] = v
	}
	resp := FormResponse{ID: s.idGen(), SubmittedAt: s.now(), Answers: cp}
	s.state.Responses = append(s.state.Responses, resp)
	s.persist()
	return resp
}

// ResetForm replaces the state with a fresh default form.
func (s *FormService) ResetForm(actor string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Normalize(DefaultState())
	s.audit = append(s.audit, AuditEntry{Time: s.now(), Actor: actor, Action: "reset_form"})
	s.persist()
}

// ClearResponses empties the response log, keeping the schema.
func (s *FormService) ClearResponses(actor string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := len(s.state.Responses)
	s.state.Responses = []FormResponse{}
	s.audit = append(s.audit, AuditEntry{Time: s.now(), Actor: actor, Action: "clear_responses", Note: strconv.Itoa(removed)})
	s.persist()
	return removed
}

// ReplaceState handles an external change to the persisted blob (another
// writer replaced it): full parse, normalize and replace, never a partial
// merge. Empty or malformed payloads fall back to defaults.
func (s *FormService) ReplaceState(raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := DecodeState(raw)
	if !ok {
		st = DefaultState()
	}
	s.state = Normalize(st)
}

func applyStr(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
