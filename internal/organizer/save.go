package organizer

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/mind-engage/mindengage-organizer/internal/question"
)

// Number assigns ordinals 1..N per column in display order. Group members
// share the column counter with singles.
func Number(b Board) Board {
	out := b.Clone()
	for _, c := range Columns {
		n := 0
		for _, e := range out.Entries(c) {
			switch v := e.(type) {
			case *Single:
				n++
				v.Question.Ordinal = question.IntPtr(n)
			case *Group:
				for i := range v.Items {
					n++
					v.Items[i].Ordinal = question.IntPtr(n)
				}
			}
		}
	}
	return out
}

// SaveError reports a batch where at least one update failed. Updates that
// succeeded are not rolled back.
type SaveError struct {
	Total   int
	Failed  int
	FirstID string
	First   error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("save failed: %d of %d updates failed; question %s: %v", e.Failed, e.Total, e.FirstID, e.First)
}

func (e *SaveError) Unwrap() error { return e.First }

// Saver writes a board through the store, one update per question, all in
// flight at once unless Concurrency caps it.
type Saver struct {
	Store       question.Store
	Concurrency int
	Log         *logrus.Entry
}

// Save numbers b, issues the updates and waits for all of them. It returns
// the numbered board whether or not the batch succeeded.
func (s *Saver) Save(ctx context.Context, b Board) (Board, error) {
	numbered := Number(b)
	items := numbered.Flatten()
	errs := make([]error, len(items))

	var g errgroup.Group
	if s.Concurrency > 0 {
		g.SetLimit(s.Concurrency)
	}
	for i := range items {
		i := i
		g.Go(func() error {
			errs[i] = s.Store.UpdateItem(ctx, items[i])
			return errs[i]
		})
	}
	_ = g.Wait()

	var se *SaveError
	for i, err := range errs {
		if err == nil {
			continue
		}
		if se == nil {
			se = &SaveError{Total: len(items), FirstID: items[i].ID, First: err}
		}
		se.Failed++
		if s.Log != nil {
			s.Log.WithError(err).WithField("question_id", items[i].ID).Warn("question update failed")
		}
	}
	if se != nil {
		return numbered, se
	}
	return numbered, nil
}
