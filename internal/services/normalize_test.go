package services

import "testing"

func TestNormalizeSynthesizesSection(t *testing.T) {
	st := Normalize(FormState{})
	if len(st.Sections) != 1 || len(st.Questions) != 1 {
		t.Fatalf("empty state should gain a section and a question: %+v", st)
	}
	if st.Questions[0].SectionID != st.Sections[0].ID {
		t.Fatalf("synthesized question must live in the synthesized section")
	}
}

func TestNormalizeReassignsDanglingQuestions(t *testing.T) {
	st := FormState{
		Sections: []Section{{ID: "S1"}, {ID: "S2"}},
		Questions: []Question{
			{ID: "Q1", SectionID: "S2", Type: TypeText},
			{ID: "Q2", SectionID: "gone", Type: TypeText},
		},
	}
	out := Normalize(st)
	if out.Questions[0].SectionID != "S2" {
		t.Fatalf("valid references must be untouched")
	}
	if out.Questions[1].SectionID != "S1" {
		t.Fatalf("dangling question should move to the first section, got %q", out.Questions[1].SectionID)
	}
}

func TestNormalizeClampsLinearScale(t *testing.T) {
	st := FormState{
		Sections: []Section{{ID: "S1"}},
		Questions: []Question{
			{ID: "Q1", SectionID: "S1", Type: TypeLinear, ScaleMin: 0, ScaleMax: 15},
			{ID: "Q2", SectionID: "S1", Type: TypeLinear, ScaleMin: 7, ScaleMax: 3},
		},
	}
	out := Normalize(st)
	if out.Questions[0].ScaleMin != 1 || out.Questions[0].ScaleMax != 10 {
		t.Fatalf("scale must clamp to 1..10, got %d..%d", out.Questions[0].ScaleMin, out.Questions[0].ScaleMax)
	}
	q2 := out.Questions[1]
	if q2.ScaleMin >= q2.ScaleMax || q2.ScaleMin < 1 || q2.ScaleMax > 10 {
		t.Fatalf("inverted scale not repaired: %d..%d", q2.ScaleMin, q2.ScaleMax)
	}
}
