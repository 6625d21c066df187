package services

import (
	"reflect"
	"testing"
	"time"
)

type stubSessionBackend struct {
	schema    FormState
	responses []FormResponse
}

func (s *stubSessionBackend) Schema() FormState { return s.schema.Clone() }

func (s *stubSessionBackend) AddResponse(answers map[string]AnswerValue) FormResponse {
	resp := FormResponse{ID: "R1", SubmittedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), Answers: answers}
	s.responses = append(s.responses, resp)
	return resp
}

// three sections; S1 holds a radio question that jumps to S3 on "yes"
func jumpSchema() FormState {
	return FormState{
		Sections: []Section{
			{ID: "S1", Title: "Start"},
			{ID: "S2", Title: "Middle"},
			{ID: "S3", Title: "End"},
		},
		Questions: []Question{
			{
				ID: "Q1", SectionID: "S1", Type: TypeRadio,
				Options:   []string{"Yes", "No"},
				Condition: ConditionalLogic{Enabled: true, Equals: "yes", TargetSectionID: "S3"},
			},
			{ID: "Q2", SectionID: "S2", Type: TypeText},
			{ID: "Q3", SectionID: "S3", Type: TypeText},
		},
	}
}

func TestAdvanceConditionalJump(t *testing.T) {
	backend := &stubSessionBackend{schema: jumpSchema()}
	svc := NewSessionService(backend)

	sess := svc.Start()
	if _, err := svc.SetAnswer(sess.ID, "Q1", StringAnswer("Yes")); err != nil {
		t.Fatalf("set answer: %v", err)
	}
	state, err := svc.Advance(sess.ID)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if state.CurrentSectionIndex != 2 {
		t.Fatalf("answering Yes should jump to S3, got index %d", state.CurrentSectionIndex)
	}
}

func TestAdvanceConditionCaseAndWhitespaceFolded(t *testing.T) {
	backend := &stubSessionBackend{schema: jumpSchema()}
	svc := NewSessionService(backend)
	sess := svc.Start()
	_, _ = svc.SetAnswer(sess.ID, "Q1", StringAnswer("  YES "))
	state, _ := svc.Advance(sess.ID)
	if state.CurrentSectionIndex != 2 {
		t.Fatalf("comparison must trim and case-fold, got index %d", state.CurrentSectionIndex)
	}
}

func TestAdvanceWithoutMatchGoesToNext(t *testing.T) {
	backend := &stubSessionBackend{schema: jumpSchema()}
	svc := NewSessionService(backend)
	sess := svc.Start()
	_, _ = svc.SetAnswer(sess.ID, "Q1", StringAnswer("No"))
	state, _ := svc.Advance(sess.ID)
	if state.CurrentSectionIndex != 1 {
		t.Fatalf("answering No should advance to S2, got index %d", state.CurrentSectionIndex)
	}
}

func TestAdvanceUnknownJumpTargetFallsThrough(t *testing.T) {
	schema := jumpSchema()
	schema.Questions[0].Condition.TargetSectionID = "missing"
	backend := &stubSessionBackend{schema: schema}
	svc := NewSessionService(backend)
	sess := svc.Start()
	_, _ = svc.SetAnswer(sess.ID, "Q1", StringAnswer("Yes"))
	state, _ := svc.Advance(sess.ID)
	if state.CurrentSectionIndex != 1 {
		t.Fatalf("unknown target should fall through to next section, got %d", state.CurrentSectionIndex)
	}
}

func TestAdvanceFirstMatchingConditionWins(t *testing.T) {
	schema := jumpSchema()
	schema.Questions = append(schema.Questions, Question{
		ID: "Q1b", SectionID: "S1", Type: TypeSelect,
		Options:   []string{"Yes", "No"},
		Condition: ConditionalLogic{Enabled: true, Equals: "yes", TargetSectionID: "S2"},
	})
	backend := &stubSessionBackend{schema: schema}
	svc := NewSessionService(backend)
	sess := svc.Start()
	_, _ = svc.SetAnswer(sess.ID, "Q1", StringAnswer("Yes"))
	_, _ = svc.SetAnswer(sess.ID, "Q1b", StringAnswer("Yes"))
	state, _ := svc.Advance(sess.ID)
	if state.CurrentSectionIndex != 2 {
		t.Fatalf("first matching condition governs the jump, got %d", state.CurrentSectionIndex)
	}
}

func TestAdvanceBlockedByValidation(t *testing.T) {
	schema := jumpSchema()
	schema.Questions[0].Required = true
	backend := &stubSessionBackend{schema: schema}
	svc := NewSessionService(backend)
	sess := svc.Start()

	state, err := svc.Advance(sess.ID)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if state.CurrentSectionIndex != 0 {
		t.Fatalf("failed validation must keep the section, got %d", state.CurrentSectionIndex)
	}
	if state.FieldErrors["Q1"] == "" {
		t.Fatalf("expected a field error for Q1, got %v", state.FieldErrors)
	}
}

func TestAdvanceClampsAtLastSection(t *testing.T) {
	backend := &stubSessionBackend{schema: jumpSchema()}
	svc := NewSessionService(backend)
	sess := svc.Start()
	for i := 0; i < 5; i++ {
		state, err := svc.Advance(sess.ID)
		if err != nil {
			t.Fatalf("advance: %v", err)
		}
		if state.CurrentSectionIndex > 2 {
			t.Fatalf("index ran past the last section: %d", state.CurrentSectionIndex)
		}
	}
}

func TestRetreat(t *testing.T) {
	schema := jumpSchema()
	schema.Questions[1].Required = true
	backend := &stubSessionBackend{schema: schema}
	svc := NewSessionService(backend)
	sess := svc.Start()
	_, _ = svc.Advance(sess.ID)

	// retreat never validates, even with S2's required question unanswered
	state, err := svc.Retreat(sess.ID)
	if err != nil {
		t.Fatalf("retreat: %v", err)
	}
	if state.CurrentSectionIndex != 0 {
		t.Fatalf("expected index 0, got %d", state.CurrentSectionIndex)
	}
	state, _ = svc.Retreat(sess.ID)
	if state.CurrentSectionIndex != 0 {
		t.Fatalf("retreat must clamp at 0, got %d", state.CurrentSectionIndex)
	}
}

func TestValidateMergesErrorsAcrossSections(t *testing.T) {
	schema := jumpSchema()
	schema.Questions[0].Required = true
	schema.Questions[1].Required = true
	backend := &stubSessionBackend{schema: schema}
	svc := NewSessionService(backend)
	sess := svc.Start()

	// fail S1, fix it, advance, then fail S2: S2's errors merge in without
	// wiping what validation recorded before
	_, _ = svc.Advance(sess.ID)
	_, _ = svc.SetAnswer(sess.ID, "Q1", StringAnswer("No"))
	_, _ = svc.Advance(sess.ID)
	state, _ := svc.Advance(sess.ID)
	if state.FieldErrors["Q2"] == "" {
		t.Fatalf("expected error for Q2, got %v", state.FieldErrors)
	}
	if state.FieldErrors["Q1"] == "" {
		t.Fatalf("section validation merges, it must not clear Q1's stale error")
	}
}

func TestSubmitGate(t *testing.T) {
	schema := jumpSchema()
	schema.Questions[1].Required = true
	backend := &stubSessionBackend{schema: schema}
	svc := NewSessionService(backend)
	sess := svc.Start()

	state, err := svc.Submit(sess.ID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if state.Submitted {
		t.Fatalf("submit must not pass with required fields empty")
	}
	if state.FieldErrors["Q2"] == "" {
		t.Fatalf("submit failure must populate field errors, got %v", state.FieldErrors)
	}
	if len(backend.responses) != 0 {
		t.Fatalf("no response may be recorded on a failed submit")
	}
}

func TestSubmitSuccess(t *testing.T) {
	backend := &stubSessionBackend{schema: jumpSchema()}
	svc := NewSessionService(backend)
	sess := svc.Start()
	_, _ = svc.SetAnswer(sess.ID, "Q1", StringAnswer("No"))
	_, _ = svc.SetAnswer(sess.ID, "Q2", StringAnswer("hello"))

	state, err := svc.Submit(sess.ID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !state.Submitted {
		t.Fatalf("expected submitted state")
	}
	if state.ResponseID != "R1" {
		t.Fatalf("expected response id, got %q", state.ResponseID)
	}
	if len(backend.responses) != 1 {
		t.Fatalf("expected one recorded response")
	}
	want := map[string]AnswerValue{"Q1": StringAnswer("No"), "Q2": StringAnswer("hello")}
	if !reflect.DeepEqual(backend.responses[0].Answers, want) {
		t.Fatalf("recorded answers differ: %+v", backend.responses[0].Answers)
	}

	// submitted is terminal
	if _, err := svc.Submit(sess.ID); err == nil {
		t.Fatalf("second submit should be rejected")
	}
	if _, err := svc.SetAnswer(sess.ID, "Q1", StringAnswer("Yes")); err == nil {
		t.Fatalf("answers are frozen after submit")
	}
}

func TestSessionNotFound(t *testing.T) {
	svc := NewSessionService(&stubSessionBackend{schema: jumpSchema()})
	if _, err := svc.Advance("nope"); err == nil {
		t.Fatalf("unknown session must error")
	}
	se, ok := AsServiceError(func() error { _, err := svc.Get("nope"); return err }())
	if !ok || se.Code != ErrorNotFound {
		t.Fatalf("expected not_found, got %v", se)
	}
}
