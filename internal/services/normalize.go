package services

import (
	"strings"

	"github.com/google/uuid"
)

func shortID(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}

// DefaultTheme matches the builder's initial palette.
func DefaultTheme() ThemeSettings {
	return ThemeSettings{
		Primary:         "#673ab7",
		Secondary:       "#202124",
		Accent:          "#4285f4",
		Background:      "#f0ebf8",
		BackgroundStyle: "plain",
		DarkMode:        false,
	}
}

func DefaultSettings() FormSettings {
	return FormSettings{
		Title:               "Untitled Form",
		Description:         "Describe your form",
		ConfirmationMessage: "Thanks! Your response has been recorded.",
		AppName:             "FormCraft",
	}
}

// DefaultQuestion constructs a question with type-appropriate defaults:
// option-bearing types are seeded with a single empty option, linear scales
// start at 1..5, validation is off and the jump condition disabled.
func DefaultQuestion(t QuestionType, sectionID string) Question {
	opts := []string{}
	if t.OptionBearing() {
		opts = []string{""}
	}
	return Question{
		ID:         shortID(8),
		SectionID:  sectionID,
		Type:       t,
		Options:    opts,
		Validation: ValidationRule{Type: ValidationNone},
		ScaleMin:   1,
		ScaleMax:   5,
		Condition:  ConditionalLogic{},
	}
}

// DefaultState builds a fresh form: one section holding one radio question.
func DefaultState() FormState {
	sec := Section{ID: shortID(8), Title: "Section 1"}
	return FormState{
		Settings:  DefaultSettings(),
		Theme:     DefaultTheme(),
		Sections:  []Section{sec},
		Questions: []Question{DefaultQuestion(TypeRadio, sec.ID)},
		Responses: []FormResponse{},
	}
}

// Normalize restores the referential invariants over a whole state: at least
// one section exists, every question points at an existing section (dangling
// questions move to the first section), and at least one question exists.
// It never partially applies; callers replace their state with the result.
func Normalize(st FormState) FormState {
	sections := st.Sections
	if len(sections) == 0 {
		sections = []Section{{ID: shortID(8), Title: "Section 1"}}
	}
	ids := make(map[string]struct{}, len(sections))
	for _, s := range sections {
		ids[s.ID] = struct{}{}
	}

	var questions []Question
	if len(st.Questions) > 0 {
		questions = make([]Question, len(st.Questions))
		for i, q := range st.Questions {
			if _, ok := ids[q.SectionID]; !ok {
				q.SectionID = sections[0].ID
			}
			if q.Type == TypeLinear {
				clampScale(&q)
			}
			questions[i] = q
		}
	} else {
		questions = []Question{DefaultQuestion(TypeRadio, sections[0].ID)}
	}

	st.Sections = sections
	st.Questions = questions
	if st.Responses == nil {
		st.Responses = []FormResponse{}
	}
	return st
}

// clampScale keeps linear scales inside 1..10 with min strictly below max.
func clampScale(q *Question) {
	if q.ScaleMin < 1 {
		q.ScaleMin = 1
	}
	if q.ScaleMin > 9 {
		q.ScaleMin = 9
	}
	if q.ScaleMax > 10 {
		q.ScaleMax = 10
	}
	if q.ScaleMax <= q.ScaleMin {
		q.ScaleMax = q.ScaleMin + 1
	}
}
