package services

import (
	"bytes"
	"encoding/csv"
	"strings"
	"time"
)

// ExportStore is the read surface the exporter needs.
type ExportStore interface {
	State() FormState
}

type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders the response log as a delimited document for
// download. One column per question in schema order, one row per response in
// submission order.
type ExportService struct {
	store ExportStore
}

func NewExportService(store ExportStore) *ExportService {
	return &ExportService{store: store}
}

// ExportCSV writes a header of the submission timestamp plus question titles,
// then one row per response. csv.Writer quotes and doubles embedded quote
// characters, so cells survive a round trip through any conformant reader.
func (s *ExportService) ExportCSV() (*ExportResult, error) {
	st := s.store.State()

	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	header := make([]string, 0, 1+len(st.Questions))
	header = append(header, "submitted_at")
	for _, q := range st.Questions {
		header = append(header, questionHeader(q))
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, r := range st.Responses {
		row := make([]string, 0, len(header))
		row = append(row, r.SubmittedAt.Format(time.RFC3339))
		for _, q := range st.Questions {
			row = append(row, FormatAnswer(r.Answers[q.ID]))
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return &ExportResult{
		Filename:    "responses.csv",
		ContentType: "text/csv; charset=utf-8",
		Data:        buf.Bytes(),
	}, nil
}

func questionHeader(q Question) string {
	if strings.TrimSpace(q.Title) == "" {
		return "Untitled question"
	}
	return q.Title
}

// FormatAnswer flattens an answer into one cell: lists join with ", ",
// numbers render in minimal decimal form, absent answers are empty.
func FormatAnswer(v AnswerValue) string {
	if v.Kind() == AnswerList {
		return strings.Join(v.List(), ", ")
	}
	return v.Text()
}
