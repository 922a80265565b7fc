package organizer

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-organizer/internal/question"
)

func sampleItems() []question.Question {
	return []question.Question{
		withOrdinal(mcq("m2"), 2),
		withOrdinal(mcq("m1"), 1),
		mcq("m3"),
		withOrdinal(short("s1"), 1),
		withOrdinal(grouped(short("b1"), 4, 2), 3),
		withOrdinal(grouped(short("b2"), 4, 1), 2),
		withOrdinal(short("s2"), 4),
		grouped(short("lonely"), 9, 1),
		caseQ("c1", question.TypeCaseMCQ, 5, 1),
		caseQ("c2", question.TypeCaseShortAnswer, 5, 2),
		caseQ("c3", question.TypeCaseMCQ, 2, 1),
		q("c4", question.TypeCaseMCQ),
	}
}

func TestClassifyColumnsAndGroups(t *testing.T) {
	b := Classify(sampleItems())

	assert.Equal(t, []string{"item:m1", "item:m2", "item:m3"}, keys(b.MCQ))
	assert.Equal(t, []string{"item:s1", "block:4", "item:s2", "item:lonely"}, keys(b.ShortAnswer))
	assert.Equal(t, []string{"case:2", "case:5", "item:c4"}, keys(b.Case))

	assert.Equal(t, []string{"b2", "b1"}, memberIDs(t, b, "block:4"))
	assert.Equal(t, []string{"c3"}, memberIDs(t, b, "case:2"), "a one-member case stays a group")

	_, lonely := questionOn(t, b, "lonely")
	assert.Nil(t, lonely.GroupID, "a one-member block is classified as a single")
	requireInvariants(t, b, 12)
}

func TestClassifyIgnoresGroupOnMCQAndUnknownTypes(t *testing.T) {
	odd := grouped(mcq("m9"), 3, 1)
	b := Classify([]question.Question{odd, q("x", question.Type("essay"))})

	require.Len(t, b.MCQ, 1)
	s, ok := b.MCQ[0].(*Single)
	require.True(t, ok)
	assert.Nil(t, s.Question.GroupID)
	assert.Equal(t, 1, b.Len())
}

func TestClassifyIsIdempotentForAnyInputOrder(t *testing.T) {
	items := sampleItems()
	want, err := json.Marshal(Classify(items))
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]question.Question(nil), items...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got, err := json.Marshal(Classify(shuffled))
		require.NoError(t, err)
		require.JSONEq(t, string(want), string(got))

		again, err := json.Marshal(Classify(Classify(shuffled).Flatten()))
		require.NoError(t, err)
		require.JSONEq(t, string(want), string(again))
	}
}

func TestClassifyPositionTieBreaksOnID(t *testing.T) {
	b := Classify([]question.Question{
		grouped(short("z"), 1, 1),
		grouped(short("a"), 1, 1),
		short("free"),
	})
	assert.Equal(t, []string{"a", "z"}, memberIDs(t, b, "block:1"))
}
