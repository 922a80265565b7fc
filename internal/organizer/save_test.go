package organizer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-organizer/internal/question"
)

var errBoom = errors.New("boom")

// flakyStore wraps a Store, failing updates for the listed ids and tracking
// how many updates run at once.
type flakyStore struct {
	question.Store
	fail  map[string]bool
	delay time.Duration

	inFlight atomic.Int32
	peak     atomic.Int32

	mu      sync.Mutex
	updates []string
}

func (f *flakyStore) UpdateItem(ctx context.Context, q question.Question) error {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	f.updates = append(f.updates, q.ID)
	f.mu.Unlock()
	if f.fail[q.ID] {
		return errBoom
	}
	return f.Store.UpdateItem(ctx, q)
}

func numberingBoard() Board {
	return Board{
		MCQ:         []Entry{single(mcq("M1")), single(mcq("M2"))},
		ShortAnswer: []Entry{single(short("S1")), block(1, short("Q1"), short("Q2")), single(short("S2"))},
		Case:        []Entry{caseGroup(3, q("X", question.TypeCaseMCQ), q("Y", question.TypeCaseShortAnswer)), single(q("Z", question.TypeCaseMCQ))},
	}
}

func TestNumberIsContinuousPerColumn(t *testing.T) {
	b := Number(numberingBoard())

	want := map[string]int{"M1": 1, "M2": 2, "S1": 1, "Q1": 2, "Q2": 3, "S2": 4, "X": 1, "Y": 2, "Z": 3}
	for id, n := range want {
		_, it := questionOn(t, b, id)
		assert.Equal(t, n, question.IntValue(it.Ordinal, -1), id)
	}
	_, q2 := questionOn(t, b, "Q2")
	assert.Equal(t, 1, *q2.GroupID)
	assert.Equal(t, 2, *q2.PositionInGroup)
}

func TestSaveRoundTripsThroughClassify(t *testing.T) {
	store := question.NewInMemoryStore()
	s := &Saver{Store: store}

	saved, err := s.Save(context.Background(), numberingBoard())
	require.NoError(t, err)

	items, err := store.FetchItems(context.Background(), testContainer)
	require.NoError(t, err)
	require.Len(t, items, 9)

	want, err := json.Marshal(saved)
	require.NoError(t, err)
	got, err := json.Marshal(Classify(items))
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(got))
}

func TestSaveReportsPartialFailure(t *testing.T) {
	mem := question.NewInMemoryStore()
	store := &flakyStore{Store: mem, fail: map[string]bool{"S1": true, "Y": true}}
	s := &Saver{Store: store}

	_, err := s.Save(context.Background(), numberingBoard())

	var se *SaveError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 9, se.Total)
	assert.Equal(t, 2, se.Failed)
	assert.Equal(t, "S1", se.FirstID)
	assert.ErrorIs(t, err, errBoom)
	assert.Len(t, store.updates, 9, "every update is attempted")

	items, err := mem.FetchItems(context.Background(), testContainer)
	require.NoError(t, err)
	assert.Len(t, items, 7, "successful writes are kept")
}

func TestSaveHonorsConcurrencyLimit(t *testing.T) {
	store := &flakyStore{Store: question.NewInMemoryStore(), delay: 5 * time.Millisecond}
	s := &Saver{Store: store, Concurrency: 2}

	_, err := s.Save(context.Background(), numberingBoard())
	require.NoError(t, err)
	assert.LessOrEqual(t, store.peak.Load(), int32(2))
	assert.Len(t, store.updates, 9)
}
