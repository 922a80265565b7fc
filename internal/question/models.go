package question

import (
	"strings"

	"golang.org/x/net/html"
)

// Type is the stored question kind. Its base type and case counterpart are
// projections of the same value.
type Type string

const (
	TypeMCQ             Type = "mcq"
	TypeShortAnswer     Type = "short_answer"
	TypeCaseMCQ         Type = "case_mcq"
	TypeCaseShortAnswer Type = "case_short_answer"
)

// Valid reports whether t is one of the four known kinds.
func (t Type) Valid() bool {
	switch t {
	case TypeMCQ, TypeShortAnswer, TypeCaseMCQ, TypeCaseShortAnswer:
		return true
	}
	return false
}

// Base strips the case qualifier: case_mcq -> mcq.
func (t Type) Base() Type {
	switch t {
	case TypeCaseMCQ:
		return TypeMCQ
	case TypeCaseShortAnswer:
		return TypeShortAnswer
	}
	return t
}

// InCase returns the case-study counterpart: mcq -> case_mcq.
func (t Type) InCase() Type {
	switch t {
	case TypeMCQ:
		return TypeCaseMCQ
	case TypeShortAnswer:
		return TypeCaseShortAnswer
	}
	return t
}

func (t Type) IsCase() bool { return t == TypeCaseMCQ || t == TypeCaseShortAnswer }

type Choice struct {
	ID        string `json:"id,omitempty" yaml:"id"`
	LabelHTML string `json:"label_html,omitempty" yaml:"label_html"`
}

type Question struct {
	ID          string `json:"id" yaml:"id"`
	ContainerID string `json:"container_id" yaml:"container_id"`
	Type        Type   `json:"type" yaml:"type"`

	// group linkage; nil means "not set"
	GroupID         *int `json:"group_id,omitempty" yaml:"group_id,omitempty"`
	PositionInGroup *int `json:"position_in_group,omitempty" yaml:"position_in_group,omitempty"`
	Ordinal         *int `json:"ordinal,omitempty" yaml:"ordinal,omitempty"`

	// payload, carried through every transform untouched
	PromptHTML  string   `json:"prompt_html,omitempty" yaml:"prompt_html"`
	Choices     []Choice `json:"choices,omitempty" yaml:"choices,omitempty"`
	AnswerKey   []string `json:"answer_key,omitempty" yaml:"answer_key,omitempty"`
	Explanation string   `json:"explanation,omitempty" yaml:"explanation,omitempty"`
	Points      float64  `json:"points" yaml:"points"`
}

// Clone deep-copies q, including pointer and slice fields.
func (q Question) Clone() Question {
	out := q
	out.GroupID = cloneInt(q.GroupID)
	out.PositionInGroup = cloneInt(q.PositionInGroup)
	out.Ordinal = cloneInt(q.Ordinal)
	if q.Choices != nil {
		out.Choices = append([]Choice(nil), q.Choices...)
	}
	if q.AnswerKey != nil {
		out.AnswerKey = append([]string(nil), q.AnswerKey...)
	}
	return out
}

// ClearGroup drops group id and position.
func (q *Question) ClearGroup() {
	q.GroupID = nil
	q.PositionInGroup = nil
}

// SetGroup links q to group id at the 1-based position pos.
func (q *Question) SetGroup(id, pos int) {
	q.GroupID = IntPtr(id)
	q.PositionInGroup = IntPtr(pos)
}

// ConvertTo changes q's type. Moving between base types loses the
// answer-shape fields (choices and key), moving in or out of a case does not.
func (q *Question) ConvertTo(t Type) {
	if q.Type == t {
		return
	}
	if q.Type.Base() != t.Base() {
		q.Choices = nil
		q.AnswerKey = nil
	}
	q.Type = t
}

// Text is the plain text used for filtering: markup removed, entities
// decoded and whitespace collapsed to single spaces.
func (q Question) Text() string {
	words := htmlWords(nil, q.PromptHTML)
	for _, c := range q.Choices {
		words = htmlWords(words, c.LabelHTML)
	}
	words = append(words, strings.Fields(q.Explanation)...)
	return strings.Join(words, " ")
}

func IntPtr(v int) *int { return &v }

// IntValue returns *p or def when p is nil.
func IntValue(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func htmlWords(dst []string, fragment string) []string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return dst
		case html.TextToken:
			dst = append(dst, strings.Fields(string(z.Text()))...)
		}
	}
}
