package organizer

import (
	"errors"
	"fmt"

	"github.com/mind-engage/mindengage-organizer/internal/question"
)

var (
	ErrUnknownEntry = errors.New("entry not on the board")
	ErrIncompatible = errors.New("incompatible question for this group")
)

// Extract pulls questionID out of group g and places it as a Single in
// column c at the hover position.
func Extract(b Board, groupID int, questionID string, c Column, targetKey string, after bool) (Board, error) {
	out := b.Clone()
	g, _, _ := out.findNested(groupID, questionID)
	if g == nil {
		return b, fmt.Errorf("%w: question %s in group %d", ErrUnknownEntry, questionID, groupID)
	}
	i := g.indexOf(questionID)
	q := g.Items[i]
	g.Items = append(g.Items[:i:i], g.Items[i+1:]...)
	q.ClearGroup()

	idx := out.insertIndex(c, targetKey, after)
	out.insertAt(c, idx, &Single{Question: q})
	return Sanitize(out), nil
}

// ReorderInGroup moves questionID next to targetID inside the same group.
func ReorderInGroup(b Board, groupID int, questionID, targetID string, after bool) (Board, bool) {
	if questionID == targetID {
		return b, false
	}
	out := b.Clone()
	g, _, _ := out.findNested(groupID, questionID)
	if g == nil || g.indexOf(targetID) < 0 {
		return b, false
	}
	i := g.indexOf(questionID)
	q := g.Items[i]
	rest := append(g.Items[:i:i], g.Items[i+1:]...)
	j := 0
	for k, it := range rest {
		if it.ID == targetID {
			j = k
			if after {
				j = k + 1
			}
			break
		}
	}
	g.Items = insertQuestion(rest, j, q)
	return Sanitize(out), true
}

// MoveBetweenGroups re-homes questionID from its group into dst. targetID,
// when it names a member of dst, positions the question next to it;
// otherwise it is appended. An emptied source group is removed by the
// sanitizer.
func MoveBetweenGroups(b Board, srcID int, questionID string, dst GroupRef, targetID string, after bool) (Board, error) {
	out := b.Clone()
	src, _, _ := out.findNested(srcID, questionID)
	if src == nil {
		return b, fmt.Errorf("%w: question %s in group %d", ErrUnknownEntry, questionID, srcID)
	}
	to, _, _ := out.findGroup(dst.Kind, dst.ID)
	if to == nil {
		return b, fmt.Errorf("%w: %s", ErrUnknownEntry, GroupKey(dst.Kind, dst.ID))
	}
	if to == src {
		return b, nil
	}
	i := src.indexOf(questionID)
	q := src.Items[i]
	src.Items = append(src.Items[:i:i], src.Items[i+1:]...)

	pos := len(to.Items)
	if j := to.indexOf(targetID); targetID != "" && j >= 0 {
		pos = j
		if after {
			pos = j + 1
		}
	}
	to.Items = insertQuestion(to.Items, pos, q)
	return Sanitize(out), nil
}

// InsertIntoGroup appends a standalone short-answer Single to a merged
// block. It reports false, without error, when the question is already a
// member of that block.
func InsertIntoGroup(b Board, questionID string, groupID int) (Board, bool, error) {
	out := b.Clone()
	g, _, _ := out.findGroup(KindMergedBlock, groupID)
	if g == nil {
		return b, false, fmt.Errorf("%w: %s", ErrUnknownEntry, GroupKey(KindMergedBlock, groupID))
	}
	if g.indexOf(questionID) >= 0 {
		return b, false, nil
	}
	c, i, ok := out.find(SingleKey(questionID))
	if !ok {
		return b, false, fmt.Errorf("%w: question %s is not a standalone entry", ErrIncompatible, questionID)
	}
	s := out.Entries(c)[i].(*Single)
	if s.Question.Type != question.TypeShortAnswer {
		return b, false, fmt.Errorf("%w: question %s is %s", ErrIncompatible, questionID, s.Question.Type)
	}
	out.removeAt(c, i)
	q := s.Question
	q.SetGroup(g.ID, len(g.Items)+1)
	g.Items = append(g.Items, q)
	return Sanitize(out), true, nil
}

// MergeSingles joins two standalone short-answer Singles into a new merged
// block placed where the first one was. It returns the new block id.
func MergeSingles(b Board, firstID, secondID string) (Board, int, error) {
	if firstID == secondID {
		return b, 0, fmt.Errorf("%w: cannot merge %s with itself", ErrIncompatible, firstID)
	}
	out := b.Clone()
	var qs [2]question.Question
	for n, id := range []string{firstID, secondID} {
		c, i, ok := out.find(SingleKey(id))
		if !ok {
			return b, 0, fmt.Errorf("%w: question %s is not a standalone entry", ErrIncompatible, id)
		}
		s := out.Entries(c)[i].(*Single)
		if s.Question.Type != question.TypeShortAnswer {
			return b, 0, fmt.Errorf("%w: question %s is %s", ErrIncompatible, id, s.Question.Type)
		}
		qs[n] = s.Question
	}

	gid := out.maxGroupID(KindMergedBlock) + 1
	_, at, _ := out.find(SingleKey(firstID))
	out.removeAt(ColumnShortAnswer, at)
	_, i, _ := out.find(SingleKey(secondID))
	out.removeAt(ColumnShortAnswer, i)
	if i < at {
		at--
	}
	out.insertAt(ColumnShortAnswer, at, &Group{Kind: KindMergedBlock, ID: gid, Items: qs[:]})
	return Sanitize(out), gid, nil
}
