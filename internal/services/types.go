package services

import "time"

// QuestionType enumerates the closed set of supported question widgets.
type QuestionType string

const (
	TypeText      QuestionType = "text"
	TypeParagraph QuestionType = "paragraph"
	TypeRadio     QuestionType = "radio"
	TypeCheckbox  QuestionType = "checkbox"
	TypeSelect    QuestionType = "select"
	TypeDate      QuestionType = "date"
	TypeTime      QuestionType = "time"
	TypeFile      QuestionType = "file"
	TypeLinear    QuestionType = "linear"
)

// ParseQuestionType validates a raw type string against the closed set.
func ParseQuestionType(s string) (QuestionType, bool) {
	switch QuestionType(s) {
	case TypeText, TypeParagraph, TypeRadio, TypeCheckbox, TypeSelect,
		TypeDate, TypeTime, TypeFile, TypeLinear:
		return QuestionType(s), true
	}
	return "", false
}

// OptionBearing reports whether the type carries an editable option list.
func (t QuestionType) OptionBearing() bool {
	return t == TypeRadio || t == TypeCheckbox || t == TypeSelect
}

// Validatable reports whether text validation rules apply to the type.
func (t QuestionType) Validatable() bool {
	return t == TypeText || t == TypeParagraph
}

type ValidationType string

const (
	ValidationNone      ValidationType = "none"
	ValidationEmail     ValidationType = "email"
	ValidationMinLength ValidationType = "minLength"
	ValidationMaxLength ValidationType = "maxLength"
)

// ValidationRule constrains answers to text/paragraph questions.
// Value carries the numeric bound for minLength/maxLength.
type ValidationRule struct {
	Type  ValidationType `json:"type"`
	Value *int           `json:"value,omitempty"`
}

// ConditionalLogic describes a single-condition forward jump. Meaningful only
// for radio/select questions.
type ConditionalLogic struct {
	Enabled         bool   `json:"enabled"`
	Equals          string `json:"equals"`
	TargetSectionID string `json:"targetSectionId"`
}

// Section groups a contiguous run of questions into one page of the form.
type Section struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Question is a single prompt. Which of Options, ScaleMin/ScaleMax, Validation
// and Condition are active depends on Type.
type Question struct {
	ID          string           `json:"id"`
	SectionID   string           `json:"sectionId"`
	Type        QuestionType     `json:"type"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Required    bool             `json:"required"`
	Options     []string         `json:"options"`
	AllowOther  bool             `json:"allowOther"`
	Validation  ValidationRule   `json:"validation"`
	ScaleMin    int              `json:"scaleMin"`
	ScaleMax    int              `json:"scaleMax"`
	Condition   ConditionalLogic `json:"condition"`
}

// Clone returns a deep copy of the question.
func (q Question) Clone() Question {
	cp := q
	cp.Options = append([]string(nil), q.Options...)
	if q.Validation.Value != nil {
		v := *q.Validation.Value
		cp.Validation.Value = &v
	}
	return cp
}

// FormResponse is one completed submission. Immutable once appended.
type FormResponse struct {
	ID          string                 `json:"id"`
	SubmittedAt time.Time              `json:"submittedAt"`
	Answers     map[string]AnswerValue `json:"answers"`
}

// ThemeSettings is cosmetic configuration carried with the schema.
type ThemeSettings struct {
	Primary         string `json:"primary"`
	Secondary       string `json:"secondary"`
	Accent          string `json:"accent"`
	Background      string `json:"background"`
	BackgroundStyle string `json:"backgroundStyle"`
	DarkMode        bool   `json:"darkMode"`
}

// FormSettings holds form-level metadata shown to respondents.
type FormSettings struct {
	Title               string `json:"title"`
	Description         string `json:"description"`
	LogoBase64          string `json:"logoBase64"`
	ConfirmationMessage string `json:"confirmationMessage"`
	AppName             string `json:"appName"`
}

// FormState is the aggregate root owned by the FormService. Sections and
// questions are ordered; responses are append-only.
type FormState struct {
	Settings  FormSettings   `json:"settings"`
	Theme     ThemeSettings  `json:"theme"`
	Sections  []Section      `json:"sections"`
	Questions []Question     `json:"questions"`
	Responses []FormResponse `json:"responses"`
}

// Clone returns a deep copy safe to hand out as a snapshot.
func (st FormState) Clone() FormState {
	cp := st
	cp.Sections = append([]Section(nil), st.Sections...)
	cp.Questions = make([]Question, len(st.Questions))
	for i, q := range st.Questions {
		cp.Questions[i] = q.Clone()
	}
	cp.Responses = make([]FormResponse, len(st.Responses))
	for i, r := range st.Responses {
		rr := r
		rr.Answers = make(map[string]AnswerValue, len(r.Answers))
		for k, v := range r.Answers {
			rr.Answers[k] = v
		}
		cp.Responses[i] = rr
	}
	return cp
}

// AuditEntry records destructive operations for operator review.
type AuditEntry struct {
	Time   time.Time
	Actor  string
	Action string
	Target string
	Note   string
}
