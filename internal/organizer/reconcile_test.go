package organizer

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-organizer/internal/question"
)

func TestHoverTargetMidpointTieBreak(t *testing.T) {
	h := HoverTarget{EntryKey: "item:a", Top: 100, Height: 40}

	assert.False(t, h.InsertAfter(110))
	assert.False(t, h.InsertAfter(120), "exactly on the midpoint inserts before")
	assert.True(t, h.InsertAfter(120.5))

	s := DragSession{Token: &DragToken{}}.Over(ColumnMCQ, &h, 139)
	assert.Equal(t, "item:a", s.TargetKey)
	assert.True(t, s.InsertAfter)

	s = s.Over(ColumnShortAnswer, nil, 0)
	assert.Equal(t, ColumnShortAnswer, s.Column)
	assert.Empty(t, s.TargetKey)
	assert.False(t, s.InsertAfter)
}

func TestDragTokenRoundTrip(t *testing.T) {
	for _, raw := range []string{"entry:case:case:5", "entry:mcq:item:q-1", "nested:3:q:odd:id"} {
		tok, err := ParseDragToken(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, raw, tok.String())
	}
	for _, bad := range []string{"", "entry:mcq", "entry:nope:item:a", "nested:x:q1", "drag:mcq:a"} {
		_, err := ParseDragToken(bad)
		assert.Error(t, err, bad)
	}
}

func TestDragSessionJSON(t *testing.T) {
	tok := NestedToken(3, "q1")
	s := DragSession{Token: &tok}.Over(ColumnCase, &HoverTarget{EntryKey: "case:3", QuestionID: "q2", Height: 10}, 2)

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"token":"nested:3:q1","column":"case","target_entry_key":"case:3","target_question_id":"q2","insert_after":false}`, string(data))

	var back DragSession
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, s, back)
	assert.Error(t, json.Unmarshal([]byte(`{"token":"drag:x"}`), &back))
}

func TestDropReordersWithinColumn(t *testing.T) {
	b := Board{MCQ: []Entry{single(mcq("a")), single(mcq("b")), single(mcq("c"))}}

	res := Drop(b, gesture(EntryToken(ColumnMCQ, "item:a"), ColumnMCQ, "item:c", "", true))
	require.Equal(t, OutcomeMoved, res.Outcome)
	assert.Equal(t, []string{"item:b", "item:c", "item:a"}, keys(res.Board.MCQ))

	res = Drop(b, gesture(EntryToken(ColumnMCQ, "item:c"), ColumnMCQ, "item:a", "", false))
	assert.Equal(t, []string{"item:c", "item:a", "item:b"}, keys(res.Board.MCQ))

	res = Drop(b, gesture(EntryToken(ColumnMCQ, "item:a"), ColumnMCQ, "", "", false))
	assert.Equal(t, []string{"item:b", "item:c", "item:a"}, keys(res.Board.MCQ), "no target means the end")

	res = Drop(b, gesture(EntryToken(ColumnMCQ, "item:b"), ColumnMCQ, "item:b", "", false))
	assert.Equal(t, OutcomeIgnored, res.Outcome)

	assert.Equal(t, []string{"item:a", "item:b", "item:c"}, keys(b.MCQ), "input board untouched")
}

func TestDropNestedOutOfTwoItemBlockDissolvesIt(t *testing.T) {
	b := Board{ShortAnswer: []Entry{
		single(short("s0")),
		block(1, short("Q1"), short("Q2")),
		single(short("s3")),
	}}

	res := Drop(b, gesture(NestedToken(1, "Q1"), ColumnShortAnswer, "item:s3", "", true))

	require.Equal(t, OutcomeMoved, res.Outcome)
	assert.Equal(t, []string{"item:s0", "item:Q2", "item:s3", "item:Q1"}, keys(res.Board.ShortAnswer))
	_, _, stillThere := res.Board.find("block:1")
	assert.False(t, stillThere)
	requireInvariants(t, res.Board, 4)
}

func TestDropNestedBlockItemReordersAndMovesBetweenBlocks(t *testing.T) {
	b := Board{ShortAnswer: []Entry{
		block(1, short("a"), short("b"), short("c")),
		block(2, short("x"), short("y")),
	}}

	res := Drop(b, gesture(NestedToken(1, "a"), ColumnShortAnswer, "block:1", "c", true))
	require.Equal(t, OutcomeMoved, res.Outcome)
	assert.Equal(t, []string{"b", "c", "a"}, memberIDs(t, res.Board, "block:1"))

	res = Drop(b, gesture(NestedToken(1, "b"), ColumnShortAnswer, "block:2", "x", false))
	require.Equal(t, OutcomeMoved, res.Outcome)
	assert.Equal(t, []string{"a", "c"}, memberIDs(t, res.Board, "block:1"))
	assert.Equal(t, []string{"b", "x", "y"}, memberIDs(t, res.Board, "block:2"))
	requireInvariants(t, res.Board, 5)
}

func TestDropNestedBlockItemOnOtherColumnStagesChange(t *testing.T) {
	b := Board{
		MCQ:         []Entry{single(mcq("m1"))},
		ShortAnswer: []Entry{block(1, short("a"), short("b"))},
		Case:        []Entry{caseGroup(4, q("c1", question.TypeCaseMCQ))},
	}

	res := Drop(b, gesture(NestedToken(1, "a"), ColumnMCQ, "item:m1", "", false))
	require.Equal(t, OutcomePending, res.Outcome)
	p := res.Pending
	assert.Equal(t, question.TypeMCQ, p.ToType)
	assert.Equal(t, &GroupRef{Kind: KindMergedBlock, ID: 1}, p.OriginGroup)
	assert.Nil(t, p.TargetCaseID)

	res = Drop(b, gesture(NestedToken(1, "a"), ColumnCase, "", "", false))
	require.Equal(t, OutcomePending, res.Outcome)
	assert.Equal(t, question.TypeCaseShortAnswer, res.Pending.ToType)
	assert.Equal(t, 5, *res.Pending.TargetCaseID)
}

func TestDropCrossCaseMove(t *testing.T) {
	b := Board{Case: []Entry{
		caseGroup(3, q("X", question.TypeCaseMCQ), q("Y", question.TypeCaseShortAnswer), q("Z", question.TypeCaseMCQ)),
		caseGroup(7, q("P", question.TypeCaseMCQ), q("R", question.TypeCaseMCQ)),
	}}

	res := Drop(b, gesture(NestedToken(3, "X"), ColumnCase, "case:7", "P", false))

	require.Equal(t, OutcomeMoved, res.Outcome)
	assert.Equal(t, []string{"Y", "Z"}, memberIDs(t, res.Board, "case:3"))
	assert.Equal(t, []string{"P", "R", "X"}, memberIDs(t, res.Board, "case:7"))
	_, x := questionOn(t, res.Board, "X")
	assert.Equal(t, 7, *x.GroupID)
	assert.Equal(t, 3, *x.PositionInGroup)
	requireInvariants(t, res.Board, 5)
}

func TestDropCrossCaseMoveRemovesEmptiedCase(t *testing.T) {
	b := Board{Case: []Entry{
		caseGroup(3, q("X", question.TypeCaseMCQ)),
		caseGroup(7, q("P", question.TypeCaseMCQ)),
	}}

	res := Drop(b, gesture(NestedToken(3, "X"), ColumnCase, "case:7", "", true))

	require.Equal(t, OutcomeMoved, res.Outcome)
	assert.Equal(t, []string{"case:7"}, keys(res.Board.Case))
	assert.Equal(t, []string{"P", "X"}, memberIDs(t, res.Board, "case:7"))
}

func TestDropNestedCaseItem(t *testing.T) {
	b := Board{
		MCQ:         []Entry{single(mcq("m1"))},
		ShortAnswer: []Entry{single(short("s1"))},
		Case: []Entry{
			caseGroup(3, q("X", question.TypeCaseMCQ), q("Y", question.TypeCaseShortAnswer)),
			single(q("loose", question.TypeCaseMCQ)),
		},
	}

	res := Drop(b, gesture(NestedToken(3, "Y"), ColumnCase, "case:3", "X", false))
	require.Equal(t, OutcomeMoved, res.Outcome, "in-case reorder")
	assert.Equal(t, []string{"Y", "X"}, memberIDs(t, res.Board, "case:3"))

	res = Drop(b, gesture(NestedToken(3, "X"), ColumnMCQ, "item:m1", "", true))
	require.Equal(t, OutcomePending, res.Outcome, "case mcq onto the mcq column")
	assert.Equal(t, question.TypeMCQ, res.Pending.ToType)

	res = Drop(b, gesture(NestedToken(3, "X"), ColumnShortAnswer, "item:s1", "", true))
	assert.Equal(t, OutcomeIgnored, res.Outcome, "case mcq has no place in the short-answer column")

	res = Drop(b, gesture(NestedToken(3, "X"), ColumnCase, "item:loose", "", true))
	assert.Equal(t, OutcomeIgnored, res.Outcome)
}

func TestDropWholeCaseDissolves(t *testing.T) {
	b := Board{
		MCQ:         []Entry{single(mcq("m1"))},
		ShortAnswer: []Entry{single(short("s1"))},
		Case: []Entry{caseGroup(5,
			q("A", question.TypeCaseMCQ),
			q("B", question.TypeCaseShortAnswer),
			q("C", question.TypeCaseMCQ),
		)},
	}
	tok, err := ParseDragToken("entry:case:case:5")
	require.NoError(t, err)

	res := Drop(b, gesture(tok, ColumnShortAnswer, "item:s1", "", false))

	require.Equal(t, OutcomeCaseDissolved, res.Outcome)
	assert.Equal(t, []string{"item:m1", "item:A", "item:C"}, keys(res.Board.MCQ))
	assert.Equal(t, []string{"item:B", "item:s1"}, keys(res.Board.ShortAnswer))
	assert.Empty(t, res.Board.Case)
	assert.Equal(t, map[question.Type]int{question.TypeMCQ: 2, question.TypeShortAnswer: 1}, res.Converted)
	for _, id := range []string{"A", "B", "C"} {
		_, it := questionOn(t, res.Board, id)
		assert.Nil(t, it.GroupID, id)
		assert.Nil(t, it.PositionInGroup, id)
		assert.False(t, it.Type.IsCase(), id)
	}
	requireInvariants(t, res.Board, 5)
}

func TestDropSingleOnOtherColumnStagesChange(t *testing.T) {
	b := Board{
		MCQ:  []Entry{single(mcq("m1")), single(mcq("m2"))},
		Case: []Entry{caseGroup(2, q("c1", question.TypeCaseMCQ)), caseGroup(9, q("c2", question.TypeCaseMCQ))},
	}

	res := Drop(b, gesture(EntryToken(ColumnMCQ, "item:m1"), ColumnShortAnswer, "", "", false))
	require.Equal(t, OutcomePending, res.Outcome)
	assert.Equal(t, ColumnMCQ, res.Pending.SourceColumn)
	assert.Equal(t, question.TypeShortAnswer, res.Pending.ToType)
	assert.Nil(t, res.Pending.OriginGroup)

	res = Drop(b, gesture(EntryToken(ColumnMCQ, "item:m1"), ColumnCase, "case:2", "", true))
	require.Equal(t, OutcomePending, res.Outcome)
	assert.Equal(t, 2, *res.Pending.TargetCaseID, "hovered case")
	assert.Equal(t, question.TypeCaseMCQ, res.Pending.ToType)

	res = Drop(b, gesture(EntryToken(ColumnMCQ, "item:m1"), ColumnCase, "", "", false))
	assert.Equal(t, 10, *res.Pending.TargetCaseID, "next free case id")
}

func TestDropWholeBlockOnOtherColumnIsIgnored(t *testing.T) {
	b := Board{ShortAnswer: []Entry{block(1, short("a"), short("b"))}}

	for _, c := range []Column{ColumnMCQ, ColumnCase} {
		res := Drop(b, gesture(EntryToken(ColumnShortAnswer, "block:1"), c, "", "", false))
		assert.Equal(t, OutcomeIgnored, res.Outcome, c)
	}
}

func TestDropWithoutTokenOrColumnIsIgnored(t *testing.T) {
	b := Board{MCQ: []Entry{single(mcq("a"))}}
	assert.Equal(t, OutcomeIgnored, Drop(b, DragSession{}).Outcome)

	tok := EntryToken(ColumnMCQ, "item:a")
	assert.Equal(t, OutcomeIgnored, Drop(b, DragSession{Token: &tok}).Outcome)

	gone := EntryToken(ColumnMCQ, "item:zzz")
	assert.Equal(t, OutcomeIgnored, Drop(b, gesture(gone, ColumnMCQ, "", "", false)).Outcome)
}
