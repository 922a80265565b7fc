package organizer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-organizer/internal/question"
)

const testContainer = "bank-1"

func q(id string, t question.Type) question.Question {
	return question.Question{ID: id, ContainerID: testContainer, Type: t, PromptHTML: "<p>prompt " + id + "</p>", Points: 1}
}

func mcq(id string) question.Question {
	out := q(id, question.TypeMCQ)
	out.Choices = []question.Choice{{ID: "a", LabelHTML: "Alpha"}, {ID: "b", LabelHTML: "Beta"}}
	out.AnswerKey = []string{"a"}
	return out
}

func short(id string) question.Question {
	out := q(id, question.TypeShortAnswer)
	out.AnswerKey = []string{"answer " + id}
	return out
}

func withOrdinal(x question.Question, n int) question.Question {
	x.Ordinal = question.IntPtr(n)
	return x
}

func grouped(x question.Question, gid, pos int) question.Question {
	x.SetGroup(gid, pos)
	return x
}

func caseQ(id string, t question.Type, gid, pos int) question.Question {
	return grouped(q(id, t), gid, pos)
}

func single(x question.Question) Entry { return &Single{Question: x} }

func block(gid int, items ...question.Question) Entry {
	g := &Group{Kind: KindMergedBlock, ID: gid}
	for i, it := range items {
		g.Items = append(g.Items, grouped(it, gid, i+1))
	}
	return g
}

func caseGroup(gid int, items ...question.Question) Entry {
	g := &Group{Kind: KindCaseStudy, ID: gid}
	for i, it := range items {
		g.Items = append(g.Items, grouped(it, gid, i+1))
	}
	return g
}

func keys(es []Entry) []string {
	out := make([]string, 0, len(es))
	for _, e := range es {
		out = append(out, e.Key())
	}
	return out
}

func memberIDs(t *testing.T, b Board, key string) []string {
	t.Helper()
	c, i, ok := b.find(key)
	require.True(t, ok, "entry %s not on board", key)
	g, ok := b.Entries(c)[i].(*Group)
	require.True(t, ok, "entry %s is not a group", key)
	var ids []string
	for _, it := range g.Items {
		ids = append(ids, it.ID)
	}
	return ids
}

func questionOn(t *testing.T, b Board, id string) (Column, question.Question) {
	t.Helper()
	for _, c := range Columns {
		for _, e := range b.Entries(c) {
			for _, it := range e.Questions() {
				if it.ID == id {
					return c, it
				}
			}
		}
	}
	t.Fatalf("question %s not on board", id)
	return "", question.Question{}
}

func gesture(tok DragToken, c Column, targetKey, targetItem string, after bool) DragSession {
	return DragSession{Token: &tok, Column: c, TargetKey: targetKey, TargetItem: targetItem, InsertAfter: after}
}

// requireInvariants checks the structural rules every sanitized board keeps.
func requireInvariants(t *testing.T, b Board, wantTotal int) {
	t.Helper()
	seen := map[string]int{}
	blockIDs, caseIDs := map[int]bool{}, map[int]bool{}
	for _, c := range Columns {
		for _, e := range b.Entries(c) {
			switch v := e.(type) {
			case *Single:
				seen[v.Question.ID]++
				require.Equal(t, TargetType(c, v.Question.Type), v.Question.Type, "single %s in %s", v.Question.ID, c)
				require.Nil(t, v.Question.GroupID, "single %s keeps a group id", v.Question.ID)
			case *Group:
				ids := blockIDs
				if v.Kind == KindCaseStudy {
					ids = caseIDs
					require.Equal(t, ColumnCase, c)
				} else {
					require.Equal(t, ColumnShortAnswer, c)
					require.GreaterOrEqual(t, len(v.Items), 2, "block %d too small", v.ID)
				}
				require.False(t, ids[v.ID], "duplicate group id %s", v.Key())
				ids[v.ID] = true
				require.NotEmpty(t, v.Items)
				inGroup := map[string]bool{}
				for i, it := range v.Items {
					require.False(t, inGroup[it.ID], "duplicate %s in %s", it.ID, v.Key())
					inGroup[it.ID] = true
					seen[it.ID]++
					require.Equal(t, v.ID, question.IntValue(it.GroupID, -1))
					require.Equal(t, i+1, question.IntValue(it.PositionInGroup, -1))
					if v.Kind == KindCaseStudy {
						require.True(t, it.Type.IsCase(), "%s in case has type %s", it.ID, it.Type)
					} else {
						require.Equal(t, question.TypeShortAnswer, it.Type)
					}
				}
			}
		}
	}
	for id, n := range seen {
		require.Equal(t, 1, n, "question %s appears %d times", id, n)
	}
	require.Len(t, seen, wantTotal)
}
