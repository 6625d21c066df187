package services

import (
	"regexp"
	"strconv"
)

// Loose local@domain.tld shape; format enforcement beyond this is left to
// whatever consumes the address.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateAnswer applies the per-question validation policy and returns a
// user-facing message, or "" when the answer passes. Only the first failing
// rule is surfaced: required, then email, then min/max length. Types other
// than text/paragraph have no format checks beyond required.
func ValidateAnswer(q Question, v AnswerValue) string {
	if q.Required && v.IsEmpty() {
		return "This field is required."
	}

	if !q.Type.Validatable() || v.Kind() != AnswerString || v.IsEmpty() {
		return ""
	}

	text := v.Text()
	switch q.Validation.Type {
	case ValidationEmail:
		if !emailPattern.MatchString(text) {
			return "Please enter a valid email address."
		}
	case ValidationMinLength:
		bound := validationBound(q.Validation)
		if len([]rune(text)) < bound {
			return "Minimum length is " + strconv.Itoa(bound) + "."
		}
	case ValidationMaxLength:
		bound := validationBound(q.Validation)
		if len([]rune(text)) > bound {
			return "Maximum length is " + strconv.Itoa(bound) + "."
		}
	}
	return ""
}

func validationBound(r ValidationRule) int {
	if r.Value == nil {
		return 1
	}
	return *r.Value
}

// ValidateSection checks every question belonging to the section and returns
// the failures keyed by question id.
func ValidateSection(st FormState, sectionID string, answers map[string]AnswerValue) map[string]string {
	errs := map[string]string{}
	for _, q := range st.Questions {
		if q.SectionID != sectionID {
			continue
		}
		if msg := ValidateAnswer(q, answers[q.ID]); msg != "" {
			errs[q.ID] = msg
		}
	}
	return errs
}

// ValidateAll checks every question in the form.
func ValidateAll(st FormState, answers map[string]AnswerValue) map[string]string {
	errs := map[string]string{}
	for _, q := range st.Questions {
		if msg := ValidateAnswer(q, answers[q.ID]); msg != "" {
			errs[q.ID] = msg
		}
	}
	return errs
}
