package organizer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mind-engage/mindengage-organizer/internal/question"
)

// Column is one of the three fixed buckets of the board.
type Column string

const (
	ColumnMCQ         Column = "mcq"
	ColumnShortAnswer Column = "short_answer"
	ColumnCase        Column = "case"
)

var Columns = []Column{ColumnMCQ, ColumnShortAnswer, ColumnCase}

func ParseColumn(s string) (Column, error) {
	switch c := Column(strings.TrimSpace(s)); c {
	case ColumnMCQ, ColumnShortAnswer, ColumnCase:
		return c, nil
	}
	return "", fmt.Errorf("unknown column %q", s)
}

// ColumnFor is the column a question of type t lives in.
func ColumnFor(t question.Type) Column {
	switch {
	case t.IsCase():
		return ColumnCase
	case t == question.TypeShortAnswer:
		return ColumnShortAnswer
	}
	return ColumnMCQ
}

// TargetType is the type a question of type t must have to live in c.
func TargetType(c Column, t question.Type) question.Type {
	switch c {
	case ColumnMCQ:
		return question.TypeMCQ
	case ColumnShortAnswer:
		return question.TypeShortAnswer
	}
	return t.Base().InCase()
}

type GroupKind string

const (
	KindMergedBlock GroupKind = "merged_block"
	KindCaseStudy   GroupKind = "case_study"
)

// Entry is a displayed, draggable unit: a *Single or a *Group.
type Entry interface {
	Key() string
	Questions() []question.Question
	clone() Entry
}

type Single struct {
	Question question.Question
}

type Group struct {
	Kind  GroupKind
	ID    int
	Items []question.Question
}

func SingleKey(questionID string) string { return "item:" + questionID }

func GroupKey(kind GroupKind, id int) string {
	if kind == KindCaseStudy {
		return "case:" + strconv.Itoa(id)
	}
	return "block:" + strconv.Itoa(id)
}

// ParseGroupKey reverses GroupKey.
func ParseGroupKey(key string) (GroupKind, int, bool) {
	prefix, rest, ok := strings.Cut(key, ":")
	if !ok {
		return "", 0, false
	}
	id, err := strconv.Atoi(rest)
	if err != nil {
		return "", 0, false
	}
	switch prefix {
	case "case":
		return KindCaseStudy, id, true
	case "block":
		return KindMergedBlock, id, true
	}
	return "", 0, false
}

func (s *Single) Key() string                    { return SingleKey(s.Question.ID) }
func (s *Single) Questions() []question.Question { return []question.Question{s.Question} }
func (s *Single) clone() Entry                   { return &Single{Question: s.Question.Clone()} }

func (g *Group) Key() string                    { return GroupKey(g.Kind, g.ID) }
func (g *Group) Questions() []question.Question { return g.Items }

func (g *Group) clone() Entry {
	items := make([]question.Question, len(g.Items))
	for i, q := range g.Items {
		items[i] = q.Clone()
	}
	return &Group{Kind: g.Kind, ID: g.ID, Items: items}
}

func (g *Group) indexOf(questionID string) int {
	for i, q := range g.Items {
		if q.ID == questionID {
			return i
		}
	}
	return -1
}

func (s *Single) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind     string            `json:"kind"`
		Key      string            `json:"key"`
		Question question.Question `json:"question"`
	}{"single", s.Key(), s.Question})
}

func (g *Group) MarshalJSON() ([]byte, error) {
	items := g.Items
	if items == nil {
		items = []question.Question{}
	}
	return json.Marshal(struct {
		Kind    GroupKind           `json:"kind"`
		Key     string              `json:"key"`
		GroupID int                 `json:"group_id"`
		Items   []question.Question `json:"items"`
	}{g.Kind, g.Key(), g.ID, items})
}

// Board is the tri-column state. Board values are treated as immutable by
// the pure transforms; they clone before mutating.
type Board struct {
	MCQ         []Entry
	ShortAnswer []Entry
	Case        []Entry
}

func (b *Board) Entries(c Column) []Entry {
	switch c {
	case ColumnMCQ:
		return b.MCQ
	case ColumnShortAnswer:
		return b.ShortAnswer
	case ColumnCase:
		return b.Case
	}
	return nil
}

func (b *Board) setEntries(c Column, es []Entry) {
	switch c {
	case ColumnMCQ:
		b.MCQ = es
	case ColumnShortAnswer:
		b.ShortAnswer = es
	case ColumnCase:
		b.Case = es
	}
}

func (b Board) Clone() Board {
	var out Board
	for _, c := range Columns {
		src := b.Entries(c)
		if src == nil {
			continue
		}
		dst := make([]Entry, len(src))
		for i, e := range src {
			dst[i] = e.clone()
		}
		out.setEntries(c, dst)
	}
	return out
}

// Len counts questions across all columns.
func (b Board) Len() int {
	n := 0
	for _, c := range Columns {
		for _, e := range b.Entries(c) {
			n += len(e.Questions())
		}
	}
	return n
}

// Flatten lists every question, column by column, in display order.
func (b Board) Flatten() []question.Question {
	out := make([]question.Question, 0, b.Len())
	for _, c := range Columns {
		for _, e := range b.Entries(c) {
			for _, q := range e.Questions() {
				out = append(out, q.Clone())
			}
		}
	}
	return out
}

func (b Board) MarshalJSON() ([]byte, error) {
	nonNil := func(es []Entry) []Entry {
		if es == nil {
			return []Entry{}
		}
		return es
	}
	return json.Marshal(struct {
		MCQ         []Entry `json:"mcq"`
		ShortAnswer []Entry `json:"short_answer"`
		Case        []Entry `json:"case"`
	}{nonNil(b.MCQ), nonNil(b.ShortAnswer), nonNil(b.Case)})
}

// find locates the entry with key in any column.
func (b *Board) find(key string) (Column, int, bool) {
	for _, c := range Columns {
		for i, e := range b.Entries(c) {
			if e.Key() == key {
				return c, i, true
			}
		}
	}
	return "", -1, false
}

// findGroup locates a group by kind and id.
func (b *Board) findGroup(kind GroupKind, id int) (*Group, Column, int) {
	c, i, ok := b.find(GroupKey(kind, id))
	if !ok {
		return nil, "", -1
	}
	g, _ := b.Entries(c)[i].(*Group)
	return g, c, i
}

// findNested locates the group with id that holds questionID. Group ids are
// only unique per kind, so membership decides between a block and a case.
func (b *Board) findNested(groupID int, questionID string) (*Group, Column, int) {
	for _, c := range Columns {
		for i, e := range b.Entries(c) {
			g, ok := e.(*Group)
			if ok && g.ID == groupID && g.indexOf(questionID) >= 0 {
				return g, c, i
			}
		}
	}
	return nil, "", -1
}

func (b *Board) maxGroupID(kind GroupKind) int {
	top := 0
	for _, c := range Columns {
		for _, e := range b.Entries(c) {
			if g, ok := e.(*Group); ok && g.Kind == kind && g.ID > top {
				top = g.ID
			}
		}
	}
	return top
}

func (b *Board) removeAt(c Column, i int) Entry {
	es := b.Entries(c)
	e := es[i]
	b.setEntries(c, append(es[:i:i], es[i+1:]...))
	return e
}

func (b *Board) insertAt(c Column, i int, e Entry) {
	es := b.Entries(c)
	if i < 0 || i > len(es) {
		i = len(es)
	}
	out := make([]Entry, 0, len(es)+1)
	out = append(out, es[:i]...)
	out = append(out, e)
	out = append(out, es[i:]...)
	b.setEntries(c, out)
}

// insertIndex resolves a hover target to a splice index in column c; no
// target, or one not present in c, means the end of the column.
func (b *Board) insertIndex(c Column, targetKey string, after bool) int {
	es := b.Entries(c)
	if targetKey == "" {
		return len(es)
	}
	for i, e := range es {
		if e.Key() == targetKey {
			if after {
				return i + 1
			}
			return i
		}
	}
	return len(es)
}
