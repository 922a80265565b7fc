package organizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mind-engage/mindengage-organizer/internal/question"
	syncx "github.com/mind-engage/mindengage-organizer/internal/sync"
)

var ErrNotOpen = errors.New("organizer is not open")

// EventAppender records audit events; *syncx.EventRepo satisfies it.
type EventAppender interface {
	Append(ctx context.Context, e syncx.Event) error
}

type Options struct {
	Store           question.Store
	SaveConcurrency int
	Events          EventAppender
	Log             *logrus.Entry
}

// Organizer is one editing session over a container's questions. It is not
// safe for concurrent use; callers serialize access.
type Organizer struct {
	store  question.Store
	saver  *Saver
	events EventAppender
	log    *logrus.Entry

	containerID string
	open        bool
	board       Board
	tracker     Tracker
	gate        Gate
	drag        DragSession
}

func New(opts Options) *Organizer {
	log := opts.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	log = log.WithField("component", "organizer")
	return &Organizer{
		store:  opts.Store,
		saver:  &Saver{Store: opts.Store, Concurrency: opts.SaveConcurrency, Log: log},
		events: opts.Events,
		log:    log,
	}
}

// Open loads and classifies the questions of containerID, discarding any
// previous state.
func (o *Organizer) Open(ctx context.Context, containerID string) error {
	if containerID == "" {
		return errors.New("container id required")
	}
	b, err := o.load(ctx, containerID)
	if err != nil {
		return err
	}
	o.containerID = containerID
	o.open = true
	o.reset(b)
	o.log.WithFields(logrus.Fields{"container_id": containerID, "questions": b.Len()}).Info("organizer opened")
	return nil
}

func (o *Organizer) Close() {
	o.open = false
	o.containerID = ""
	o.reset(Board{})
}

func (o *Organizer) load(ctx context.Context, containerID string) (Board, error) {
	items, err := o.store.FetchItems(ctx, containerID)
	if err != nil {
		return Board{}, fmt.Errorf("fetch questions for %s: %w", containerID, err)
	}
	b := Classify(items)
	if skipped := len(items) - b.Len(); skipped > 0 {
		o.log.WithFields(logrus.Fields{"container_id": containerID, "skipped": skipped}).
			Warn("questions with unknown type left out of the organizer")
	}
	return b, nil
}

func (o *Organizer) reset(b Board) {
	o.board = b
	o.tracker.Reset(b)
	o.gate.Cancel()
	o.drag = DragSession{}
}

func (o *Organizer) ContainerID() string { return o.containerID }
func (o *Organizer) IsOpen() bool        { return o.open }
func (o *Organizer) Board() Board        { return o.board.Clone() }
func (o *Organizer) IsDirty() bool       { return o.open && o.tracker.IsDirty(o.board) }

func (o *Organizer) CanSave() bool   { return o.IsDirty() && !o.gate.Busy() }
func (o *Organizer) CanRevert() bool { return o.IsDirty() }

func (o *Organizer) Pending() *PendingChange { return o.gate.Pending() }
func (o *Organizer) GateState() GateState    { return o.gate.State() }

// StartDrag begins a gesture. It is refused while a type change awaits
// confirmation.
func (o *Organizer) StartDrag(tok DragToken) bool {
	if !o.open || o.gate.Busy() {
		return false
	}
	o.drag = DragSession{Token: &tok}
	return true
}

func (o *Organizer) DragOver(c Column, target *HoverTarget, pointerY float64) {
	if !o.drag.Active() {
		return
	}
	o.drag = o.drag.Over(c, target, pointerY)
}

// Drop resolves the current gesture. The drag session is consumed.
func (o *Organizer) Drop() DropResult {
	s := o.drag
	o.drag = DragSession{}
	if !o.open || !s.Active() || o.gate.Busy() {
		return ignored(o.board)
	}

	res := Drop(o.board, s)
	entry := o.log.WithFields(logrus.Fields{
		"container_id": o.containerID,
		"token":        s.Token.String(),
		"column":       s.Column,
		"outcome":      res.Outcome,
	})
	switch res.Outcome {
	case OutcomeMoved, OutcomeCaseDissolved:
		o.board = res.Board
	case OutcomePending:
		if err := o.gate.Stage(*res.Pending); err != nil {
			return ignored(o.board)
		}
	}
	entry.Debug("drop")
	res.Board = o.board.Clone()
	return res
}

func (o *Organizer) DragEnd() { o.drag = DragSession{} }

func (o *Organizer) DragSession() DragSession { return o.drag }

// ConfirmPendingChange applies the staged type change. caseID picks the
// destination case when the target is the case column.
func (o *Organizer) ConfirmPendingChange(caseID *int) error {
	if !o.open {
		return ErrNotOpen
	}
	p := o.gate.Pending()
	next, err := o.gate.Confirm(o.board, caseID)
	if err != nil {
		return err
	}
	o.board = next
	o.log.WithFields(logrus.Fields{
		"container_id": o.containerID,
		"question_id":  p.Question.ID,
		"to_type":      p.ToType,
	}).Info("type change confirmed")
	return nil
}

func (o *Organizer) CancelPendingChange() bool { return o.gate.Cancel() }

func (o *Organizer) InsertIntoGroup(questionID string, groupID int) (bool, error) {
	if !o.open {
		return false, ErrNotOpen
	}
	next, changed, err := InsertIntoGroup(o.board, questionID, groupID)
	if err != nil || !changed {
		return false, err
	}
	o.board = next
	return true, nil
}

func (o *Organizer) MergeSingles(firstID, secondID string) (int, error) {
	if !o.open {
		return 0, ErrNotOpen
	}
	next, gid, err := MergeSingles(o.board, firstID, secondID)
	if err != nil {
		return 0, err
	}
	o.board = next
	return gid, nil
}

func (o *Organizer) Search(query string) Board { return Filter(o.board, query) }

// Revert reloads from the store and drops all unsaved work.
func (o *Organizer) Revert(ctx context.Context) error {
	if !o.open {
		return ErrNotOpen
	}
	b, err := o.load(ctx, o.containerID)
	if err != nil {
		return err
	}
	o.reset(b)
	return nil
}

// Save writes every question with fresh ordinals. On failure the board stays
// dirty so the save can be retried.
func (o *Organizer) Save(ctx context.Context) error {
	if !o.open {
		return ErrNotOpen
	}
	if o.gate.Busy() {
		return ErrGateBusy
	}
	log := o.log.WithField("container_id", o.containerID)
	saved, err := o.saver.Save(ctx, o.board)
	if err != nil {
		log.WithError(err).Error("organizer save failed")
		return err
	}
	o.board = saved
	o.tracker.Reset(saved)
	log.WithField("questions", saved.Len()).Info("organizer saved")

	if o.events != nil {
		data, _ := json.Marshal(map[string]any{"container_id": o.containerID, "questions": saved.Len()})
		ev := syncx.Event{Type: syncx.TypeOrganizerSaved, Key: o.containerID, DataJSON: string(data)}
		if err := o.events.Append(ctx, ev); err != nil {
			log.WithError(err).Warn("record save event")
		}
	}
	return nil
}

// View is the render state handed to the host UI.
type View struct {
	ContainerID string         `json:"container_id"`
	Board       Board          `json:"board"`
	Dirty       bool           `json:"dirty"`
	CanSave     bool           `json:"can_save"`
	CanRevert   bool           `json:"can_revert"`
	Gate        GateState      `json:"gate"`
	Pending     *PendingView   `json:"pending,omitempty"`
	Dragging    string         `json:"dragging,omitempty"`
	Counts      map[Column]int `json:"counts"`
}

type PendingView struct {
	PendingChange
	Description string `json:"description"`
	CaseIDs     []int  `json:"case_ids,omitempty"`
}

func (o *Organizer) View() View {
	v := View{
		ContainerID: o.containerID,
		Board:       o.board.Clone(),
		Dirty:       o.IsDirty(),
		CanSave:     o.CanSave(),
		CanRevert:   o.CanRevert(),
		Gate:        o.gate.State(),
		Counts:      map[Column]int{},
	}
	for _, c := range Columns {
		for _, e := range o.board.Entries(c) {
			v.Counts[c] += len(e.Questions())
		}
	}
	if p := o.gate.Pending(); p != nil {
		pv := &PendingView{PendingChange: *p, Description: p.Description()}
		if p.TargetColumn == ColumnCase {
			pv.CaseIDs = o.caseIDs()
		}
		v.Pending = pv
	}
	if o.drag.Active() {
		v.Dragging = o.drag.Token.String()
	}
	return v
}

// caseIDs lists existing case ids in board order, for the destination picker.
func (o *Organizer) caseIDs() []int {
	var ids []int
	for _, e := range o.board.Case {
		if g, ok := e.(*Group); ok {
			ids = append(ids, g.ID)
		}
	}
	return ids
}
