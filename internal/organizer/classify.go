package organizer

import (
	"math"
	"sort"

	"github.com/mind-engage/mindengage-organizer/internal/question"
)

type groupRef struct {
	kind GroupKind
	id   int
}

// Classify builds the board from a flat question list. Questions of an
// unknown type are left out. Re-classifying a flattened board yields the
// same board.
func Classify(items []question.Question) Board {
	groups := map[groupRef][]question.Question{}
	var order []groupRef
	var singles []question.Question

	for _, it := range items {
		q := it.Clone()
		if !q.Type.Valid() {
			continue
		}
		ref, grouped := groupOf(q)
		if !grouped {
			q.ClearGroup()
			singles = append(singles, q)
			continue
		}
		if _, seen := groups[ref]; !seen {
			order = append(order, ref)
		}
		groups[ref] = append(groups[ref], q)
	}

	var b Board
	for _, ref := range order {
		members := groups[ref]
		if ref.kind == KindMergedBlock && len(members) == 1 {
			q := members[0]
			q.ClearGroup()
			singles = append(singles, q)
			continue
		}
		sort.SliceStable(members, func(i, j int) bool {
			pi := question.IntValue(members[i].PositionInGroup, math.MaxInt)
			pj := question.IntValue(members[j].PositionInGroup, math.MaxInt)
			if pi != pj {
				return pi < pj
			}
			return members[i].ID < members[j].ID
		})
		c := ColumnShortAnswer
		if ref.kind == KindCaseStudy {
			c = ColumnCase
		}
		b.setEntries(c, append(b.Entries(c), &Group{Kind: ref.kind, ID: ref.id, Items: members}))
	}
	for _, q := range singles {
		c := ColumnFor(q.Type)
		b.setEntries(c, append(b.Entries(c), &Single{Question: q}))
	}

	for _, c := range Columns {
		sortEntries(b.Entries(c))
	}
	return Sanitize(b)
}

func groupOf(q question.Question) (groupRef, bool) {
	if q.GroupID == nil {
		return groupRef{}, false
	}
	switch {
	case q.Type == question.TypeShortAnswer:
		return groupRef{KindMergedBlock, *q.GroupID}, true
	case q.Type.IsCase():
		return groupRef{KindCaseStudy, *q.GroupID}, true
	}
	return groupRef{}, false
}

// sortEntries orders a column by ordinal (a group counts as its smallest
// member ordinal), missing ordinals last. Ties put groups first by id, then
// singles by question id.
func sortEntries(es []Entry) {
	sort.SliceStable(es, func(i, j int) bool {
		oi, oj := entryOrdinal(es[i]), entryOrdinal(es[j])
		if oi != oj {
			return oi < oj
		}
		gi, iIsGroup := es[i].(*Group)
		gj, jIsGroup := es[j].(*Group)
		switch {
		case iIsGroup && jIsGroup:
			return gi.ID < gj.ID
		case iIsGroup != jIsGroup:
			return iIsGroup
		}
		return es[i].(*Single).Question.ID < es[j].(*Single).Question.ID
	})
}

func entryOrdinal(e Entry) int {
	best := math.MaxInt
	for _, q := range e.Questions() {
		if o := question.IntValue(q.Ordinal, math.MaxInt); o < best {
			best = o
		}
	}
	return best
}
