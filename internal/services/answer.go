package services

import (
	"encoding/json"
	"strconv"
)

// AnswerKind tags the variant held by an AnswerValue.
type AnswerKind int

const (
	AnswerNull AnswerKind = iota
	AnswerString
	AnswerList
	AnswerNumber
)

// AnswerValue is one respondent answer: a string, an ordered list of strings,
// a number, or null (absence). The zero value is null.
type AnswerValue struct {
	kind AnswerKind
	str  string
	list []string
	num  float64
}

func NullAnswer() AnswerValue { return AnswerValue{} }

func StringAnswer(s string) AnswerValue { return AnswerValue{kind: AnswerString, str: s} }

func ListAnswer(items []string) AnswerValue {
	return AnswerValue{kind: AnswerList, list: append([]string(nil), items...)}
}

func NumberAnswer(n float64) AnswerValue { return AnswerValue{kind: AnswerNumber, num: n} }

func (v AnswerValue) Kind() AnswerKind { return v.kind }

// IsEmpty reports whether the answer counts as absent for required checks.
// A number (including 0) and the string "0" count as present.
func (v AnswerValue) IsEmpty() bool {
	switch v.kind {
	case AnswerNull:
		return true
	case AnswerString:
		return v.str == ""
	case AnswerList:
		return len(v.list) == 0
	default:
		return false
	}
}

// Text renders the answer the way the condition comparison and the results
// views see it: strings as-is, numbers in minimal decimal form, lists and
// null as the empty string.
func (v AnswerValue) Text() string {
	switch v.kind {
	case AnswerString:
		return v.str
	case AnswerNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	default:
		return ""
	}
}

// List returns the list arm, or nil for other kinds.
func (v AnswerValue) List() []string {
	if v.kind != AnswerList {
		return nil
	}
	return append([]string(nil), v.list...)
}

func (v AnswerValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case AnswerString:
		return json.Marshal(v.str)
	case AnswerList:
		items := v.list
		if items == nil {
			items = []string{}
		}
		return json.Marshal(items)
	case AnswerNumber:
		return json.Marshal(v.num)
	default:
		return []byte("null"), nil
	}
}

func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case nil:
		*v = AnswerValue{}
	case string:
		*v = StringAnswer(t)
	case float64:
		*v = NumberAnswer(t)
	case []any:
		items := make([]string, 0, len(t))
		for _, it := range t {
			if s, ok := it.(string); ok {
				items = append(items, s)
			}
		}
		*v = AnswerValue{kind: AnswerList, list: items}
	default:
		// objects and booleans have no answer arm; treat as absent
		*v = AnswerValue{}
	}
	return nil
}
