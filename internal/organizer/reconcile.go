package organizer

import (
	"github.com/mind-engage/mindengage-organizer/internal/question"
)

type Outcome string

const (
	// OutcomeIgnored: no valid interpretation; the board is unchanged.
	OutcomeIgnored Outcome = "ignored"
	// OutcomeMoved: the board changed and is already sanitized.
	OutcomeMoved Outcome = "moved"
	// OutcomePending: a type change was staged; the board is unchanged.
	OutcomePending Outcome = "pending"
	// OutcomeCaseDissolved: a whole case was spread over the base columns.
	OutcomeCaseDissolved Outcome = "case_dissolved"
)

type DropResult struct {
	Outcome Outcome        `json:"outcome"`
	Board   Board          `json:"-"`
	Pending *PendingChange `json:"pending,omitempty"`
	// per resulting type, filled for OutcomeCaseDissolved
	Converted map[question.Type]int `json:"converted,omitempty"`
}

func ignored(b Board) DropResult { return DropResult{Outcome: OutcomeIgnored, Board: b} }

func moved(b Board) DropResult { return DropResult{Outcome: OutcomeMoved, Board: b} }

// Drop interprets the gesture in s against b. It never mutates b.
func Drop(b Board, s DragSession) DropResult {
	if s.Token == nil || s.Column == "" {
		return ignored(b)
	}
	if s.Token.Nested {
		return dropNested(b, *s.Token, s)
	}
	return dropEntry(b, *s.Token, s)
}

func dropNested(b Board, tok DragToken, s DragSession) DropResult {
	g, origin, _ := b.findNested(tok.GroupID, tok.QuestionID)
	if g == nil {
		return ignored(b)
	}
	q := g.Items[g.indexOf(tok.QuestionID)]
	ref := GroupRef{Kind: g.Kind, ID: g.ID}

	switch g.Kind {
	case KindMergedBlock:
		if s.Column == origin {
			return dropNestedInBlockColumn(b, g, q, s)
		}
		return stage(b, s, origin, q, &ref)

	case KindCaseStudy:
		if s.Column == ColumnCase {
			kind, id, isGroup := ParseGroupKey(s.TargetKey)
			switch {
			case !isGroup || kind != KindCaseStudy:
				return ignored(b)
			case id == g.ID:
				if next, ok := ReorderInGroup(b, g.ID, q.ID, s.TargetItem, s.InsertAfter); ok {
					return moved(next)
				}
				return ignored(b)
			}
			next, err := MoveBetweenGroups(b, g.ID, q.ID, GroupRef{KindCaseStudy, id}, "", false)
			if err != nil {
				return ignored(b)
			}
			return moved(next)
		}
		if TargetType(s.Column, q.Type) != q.Type.Base() {
			return ignored(b)
		}
		return stage(b, s, origin, q, &ref)
	}
	return ignored(b)
}

func dropNestedInBlockColumn(b Board, g *Group, q question.Question, s DragSession) DropResult {
	kind, id, isGroup := ParseGroupKey(s.TargetKey)
	switch {
	case isGroup && kind == KindMergedBlock && id == g.ID && s.TargetItem != "":
		if next, ok := ReorderInGroup(b, g.ID, q.ID, s.TargetItem, s.InsertAfter); ok {
			return moved(next)
		}
		return ignored(b)
	case isGroup && kind == KindMergedBlock && id != g.ID:
		next, err := MoveBetweenGroups(b, g.ID, q.ID, GroupRef{KindMergedBlock, id}, s.TargetItem, s.InsertAfter)
		if err != nil {
			return ignored(b)
		}
		return moved(next)
	}
	next, err := Extract(b, g.ID, q.ID, s.Column, s.TargetKey, s.InsertAfter)
	if err != nil {
		return ignored(b)
	}
	return moved(next)
}

func dropEntry(b Board, tok DragToken, s DragSession) DropResult {
	src, i, ok := b.find(tok.EntryKey)
	if !ok {
		return ignored(b)
	}
	switch e := b.Entries(src)[i].(type) {
	case *Group:
		if e.Kind == KindCaseStudy && s.Column != ColumnCase {
			return dissolveCase(b, e, s)
		}
		if src != s.Column {
			return ignored(b)
		}
	case *Single:
		if TargetType(s.Column, e.Question.Type) != e.Question.Type {
			return stage(b, s, src, e.Question, nil)
		}
	}
	return reorder(b, src, tok.EntryKey, s)
}

// reorder is the like-for-like move: remove, resolve the index against the
// remaining entries, splice back in.
func reorder(b Board, src Column, key string, s DragSession) DropResult {
	if s.TargetKey == key {
		return ignored(b)
	}
	out := b.Clone()
	_, i, _ := out.find(key)
	e := out.removeAt(src, i)
	idx := out.insertIndex(s.Column, s.TargetKey, s.InsertAfter)
	out.insertAt(s.Column, idx, e)
	return moved(Sanitize(out))
}

// dissolveCase converts every member of the case to its base type. Members
// that belong in the drop column go to the drop position in order; the rest
// are appended to their own column.
func dissolveCase(b Board, g *Group, s DragSession) DropResult {
	out := b.Clone()
	_, gi, _ := out.find(g.Key())
	out.removeAt(ColumnCase, gi)

	at := out.insertIndex(s.Column, s.TargetKey, s.InsertAfter)
	converted := map[question.Type]int{}
	for _, it := range g.Items {
		q := it.Clone()
		q.ConvertTo(q.Type.Base())
		q.ClearGroup()
		converted[q.Type]++
		c := ColumnFor(q.Type)
		if c == s.Column {
			out.insertAt(c, at, &Single{Question: q})
			at++
			continue
		}
		out.insertAt(c, -1, &Single{Question: q})
	}
	return DropResult{Outcome: OutcomeCaseDissolved, Board: Sanitize(out), Converted: converted}
}

// stage builds the PendingChange for moving q into s.Column.
func stage(b Board, s DragSession, src Column, q question.Question, origin *GroupRef) DropResult {
	p := PendingChange{
		SourceColumn: src,
		TargetColumn: s.Column,
		Question:     q.Clone(),
		ToType:       TargetType(s.Column, q.Type),
		TargetKey:    s.TargetKey,
		TargetItem:   s.TargetItem,
		InsertAfter:  s.InsertAfter,
		OriginGroup:  origin,
	}
	if s.Column == ColumnCase {
		cid := b.maxGroupID(KindCaseStudy) + 1
		if kind, id, ok := ParseGroupKey(s.TargetKey); ok && kind == KindCaseStudy {
			cid = id
		}
		p.TargetCaseID = question.IntPtr(cid)
	}
	return DropResult{Outcome: OutcomePending, Board: b, Pending: &p}
}
