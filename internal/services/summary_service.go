package services

import "strconv"

// SummaryStore is the read surface the aggregator needs.
type SummaryStore interface {
	State() FormState
}

// QuestionSummary holds per-option counts for one choice question. Options
// keeps the display order; Counts is keyed by option text.
type QuestionSummary struct {
	QuestionID string         `json:"questionId"`
	Title      string         `json:"title"`
	Type       QuestionType   `json:"type"`
	Options    []string       `json:"options"`
	Counts     map[string]int `json:"counts"`
	Total      int            `json:"total"`
}

type ResultsSummary struct {
	TotalResponses int               `json:"totalResponses"`
	Questions      []QuestionSummary `json:"questions"`
}

// SummaryService aggregates responses for the results view.
type SummaryService struct {
	store SummaryStore
}

func NewSummaryService(store SummaryStore) *SummaryService {
	return &SummaryService{store: store}
}

// Summarize counts answers per option for every choice-type question. Linear
// scales enumerate scaleMin..scaleMax as their options; list answers count
// each selected element; empty answers are skipped. Answers outside the
// option list (e.g. "Other" write-ins) still get counted under their text.
func (s *SummaryService) Summarize() *ResultsSummary {
	st := s.store.State()
	out := &ResultsSummary{TotalResponses: len(st.Responses)}

	for _, q := range st.Questions {
		if !summarizable(q.Type) {
			continue
		}
		options := summaryOptions(q)
		counts := make(map[string]int, len(options))
		for _, o := range options {
			counts[o] = 0
		}
		total := 0
		for _, r := range st.Responses {
			v, ok := r.Answers[q.ID]
			if !ok || v.IsEmpty() {
				continue
			}
			if v.Kind() == AnswerList {
				for _, item := range v.List() {
					counts[item]++
					total++
				}
				continue
			}
			counts[v.Text()]++
			total++
		}
		out.Questions = append(out.Questions, QuestionSummary{
			QuestionID: q.ID,
			Title:      q.Title,
			Type:       q.Type,
			Options:    options,
			Counts:     counts,
			Total:      total,
		})
	}
	return out
}

func summarizable(t QuestionType) bool {
	return t == TypeRadio || t == TypeSelect || t == TypeCheckbox || t == TypeLinear
}

func summaryOptions(q Question) []string {
	if q.Type != TypeLinear {
		return append([]string(nil), q.Options...)
	}
	if q.ScaleMax < q.ScaleMin {
		return nil
	}
	opts := make([]string, 0, q.ScaleMax-q.ScaleMin+1)
	for v := q.ScaleMin; v <= q.ScaleMax; v++ {
		opts = append(opts, strconv.Itoa(v))
	}
	return opts
}
