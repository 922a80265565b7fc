package organizer

import (
	"errors"
	"fmt"

	"github.com/mind-engage/mindengage-organizer/internal/question"
)

var (
	ErrGateBusy        = errors.New("a type change is awaiting confirmation")
	ErrNoPendingChange = errors.New("no pending type change")
	ErrInvalidCaseID   = errors.New("invalid case id")
)

// GroupRef identifies a group on the board.
type GroupRef struct {
	Kind GroupKind `json:"kind"`
	ID   int       `json:"id"`
}

// PendingChange is a move that changes a question's type and so waits for
// the user before it touches the board.
type PendingChange struct {
	SourceColumn Column            `json:"source_column"`
	TargetColumn Column            `json:"target_column"`
	Question     question.Question `json:"question"`
	ToType       question.Type     `json:"to_type"`
	TargetKey    string            `json:"target_entry_key,omitempty"`
	TargetItem   string            `json:"target_question_id,omitempty"`
	InsertAfter  bool              `json:"insert_after"`
	OriginGroup  *GroupRef         `json:"origin_group,omitempty"`
	// set only when TargetColumn is ColumnCase
	TargetCaseID *int `json:"target_case_id,omitempty"`
}

func (p PendingChange) Description() string {
	d := fmt.Sprintf("Convert question %s from %s to %s", p.Question.ID, p.Question.Type, p.ToType)
	if p.Question.Type.Base() != p.ToType.Base() {
		d += " (choices and answer key will be removed)"
	}
	return d
}

// Apply performs the staged move on a copy of b. caseID overrides the
// precomputed target case when the target is the case column.
func (p PendingChange) Apply(b Board, caseID *int) (Board, error) {
	out := b.Clone()

	q, err := p.takeSource(&out)
	if err != nil {
		return b, err
	}
	q.ConvertTo(p.ToType)
	q.ClearGroup()

	if p.TargetColumn != ColumnCase {
		idx := out.insertIndex(p.TargetColumn, p.TargetKey, p.InsertAfter)
		out.insertAt(p.TargetColumn, idx, &Single{Question: q})
		return Sanitize(out), nil
	}

	cid := 0
	switch {
	case caseID != nil:
		cid = *caseID
	case p.TargetCaseID != nil:
		cid = *p.TargetCaseID
	default:
		cid = out.maxGroupID(KindCaseStudy) + 1
	}
	if cid <= 0 {
		return b, fmt.Errorf("%w: %d", ErrInvalidCaseID, cid)
	}

	if g, _, _ := out.findGroup(KindCaseStudy, cid); g != nil {
		pos := len(g.Items)
		if p.TargetKey == g.Key() && p.TargetItem != "" {
			if i := g.indexOf(p.TargetItem); i >= 0 {
				pos = i
				if p.InsertAfter {
					pos = i + 1
				}
			}
		}
		g.Items = insertQuestion(g.Items, pos, q)
		return Sanitize(out), nil
	}
	idx := out.insertIndex(ColumnCase, p.TargetKey, p.InsertAfter)
	out.insertAt(ColumnCase, idx, &Group{Kind: KindCaseStudy, ID: cid, Items: []question.Question{q}})
	return Sanitize(out), nil
}

// takeSource removes the staged question from where it was dragged from.
func (p PendingChange) takeSource(b *Board) (question.Question, error) {
	if p.OriginGroup != nil {
		g, _, _ := b.findGroup(p.OriginGroup.Kind, p.OriginGroup.ID)
		if g == nil {
			return question.Question{}, fmt.Errorf("%w: %s", ErrUnknownEntry, GroupKey(p.OriginGroup.Kind, p.OriginGroup.ID))
		}
		i := g.indexOf(p.Question.ID)
		if i < 0 {
			return question.Question{}, fmt.Errorf("%w: question %s", ErrUnknownEntry, p.Question.ID)
		}
		q := g.Items[i]
		g.Items = append(g.Items[:i:i], g.Items[i+1:]...)
		return q, nil
	}
	key := SingleKey(p.Question.ID)
	for i, e := range b.Entries(p.SourceColumn) {
		if e.Key() == key {
			return b.removeAt(p.SourceColumn, i).(*Single).Question, nil
		}
	}
	return question.Question{}, fmt.Errorf("%w: %s", ErrUnknownEntry, key)
}

type GateState string

const (
	GateIdle                 GateState = "idle"
	GateAwaitingConfirmation GateState = "awaiting_confirmation"
)

// Gate holds at most one PendingChange. While it holds one, no new drag may
// start.
type Gate struct {
	pending *PendingChange
}

func (g *Gate) State() GateState {
	if g.pending != nil {
		return GateAwaitingConfirmation
	}
	return GateIdle
}

func (g *Gate) Busy() bool { return g.pending != nil }

// Pending returns a copy of the staged change, or nil.
func (g *Gate) Pending() *PendingChange {
	if g.pending == nil {
		return nil
	}
	p := *g.pending
	p.Question = p.Question.Clone()
	return &p
}

func (g *Gate) Stage(p PendingChange) error {
	if g.pending != nil {
		return ErrGateBusy
	}
	g.pending = &p
	return nil
}

// Confirm applies the staged change to b and returns the gate to idle. An
// invalid case id keeps the change staged so the user can pick another; a
// change whose source vanished is dropped.
func (g *Gate) Confirm(b Board, caseID *int) (Board, error) {
	if g.pending == nil {
		return b, ErrNoPendingChange
	}
	next, err := g.pending.Apply(b, caseID)
	if err != nil {
		if !errors.Is(err, ErrInvalidCaseID) {
			g.pending = nil
		}
		return b, err
	}
	g.pending = nil
	return next, nil
}

// Cancel discards the staged change. It reports whether one was staged.
func (g *Gate) Cancel() bool {
	had := g.pending != nil
	g.pending = nil
	return had
}

func insertQuestion(qs []question.Question, i int, q question.Question) []question.Question {
	if i < 0 || i > len(qs) {
		i = len(qs)
	}
	out := make([]question.Question, 0, len(qs)+1)
	out = append(out, qs[:i]...)
	out = append(out, q)
	return append(out, qs[i:]...)
}
