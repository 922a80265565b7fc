package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/mind-engage/mindengage-organizer/internal/organizer"
)

var (
	errBadRequest  = errors.New("bad request")
	errDragRefused = errors.New("drag refused")
)

type OrganizerOptions struct {
	SaveTimeout time.Duration
	Log         *logrus.Entry
}

// Sessions is the part of *organizer.Registry the handlers use.
type Sessions interface {
	Open(ctx context.Context, containerID string) (string, error)
	With(id string, fn func(o *organizer.Organizer) error) error
	Close(id string) error
}

// MountOrganizer serves the editing sessions of reg under r, which is
// expected to be /organizer.
func MountOrganizer(r chi.Router, reg Sessions, opts OrganizerOptions) {
	log := opts.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	saveTimeout := opts.SaveTimeout
	if saveTimeout <= 0 {
		saveTimeout = 30 * time.Second
	}

	// POST /organizer/sessions  { "container_id": "..." }
	r.Post("/sessions", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ContainerID string `json:"container_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ContainerID == "" {
			http.Error(w, "container_id required", http.StatusBadRequest)
			return
		}
		id, err := reg.Open(r.Context(), req.ContainerID)
		if err != nil {
			log.WithError(err).WithField("container_id", req.ContainerID).Warn("open organizer session")
			writeError(w, err)
			return
		}
		log.WithFields(logrus.Fields{"session_id": id, "container_id": req.ContainerID}).Info("organizer session opened")
		var view organizer.View
		if err := reg.With(id, func(o *organizer.Organizer) error {
			view = o.View()
			return nil
		}); err != nil {
			log.WithError(err).WithField("session_id", id).Warn("organizer session lost after open")
			writeError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, map[string]any{"session_id": id, "view": view})
	})

	r.Route("/sessions/{sessionID}", func(sr chi.Router) {
		sr.Get("/", withSession(reg, func(r *http.Request, o *organizer.Organizer) (any, error) {
			return o.View(), nil
		}))

		sr.Delete("/", func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "sessionID")
			if err := reg.Close(id); err != nil {
				writeError(w, err)
				return
			}
			log.WithField("session_id", id).Info("organizer session closed")
			w.WriteHeader(http.StatusNoContent)
		})

		sr.Get("/search", withSession(reg, func(r *http.Request, o *organizer.Organizer) (any, error) {
			return o.Search(r.URL.Query().Get("q")), nil
		}))

		// POST .../drag/start  { "token": "entry:mcq:item:q1" }
		sr.Post("/drag/start", withSession(reg, func(r *http.Request, o *organizer.Organizer) (any, error) {
			var req struct {
				Token string `json:"token"`
			}
			if err := decode(r, &req); err != nil {
				return nil, err
			}
			tok, err := organizer.ParseDragToken(req.Token)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", errBadRequest, err)
			}
			if !o.StartDrag(tok) {
				return nil, fmt.Errorf("%w: a type change awaits confirmation", errDragRefused)
			}
			return o.View(), nil
		}))

		// POST .../drag/over  { "column": "case", "target": {...}, "pointer_y": 12.5 }
		sr.Post("/drag/over", withSession(reg, func(r *http.Request, o *organizer.Organizer) (any, error) {
			var req struct {
				Column   string                 `json:"column"`
				Target   *organizer.HoverTarget `json:"target"`
				PointerY float64                `json:"pointer_y"`
			}
			if err := decode(r, &req); err != nil {
				return nil, err
			}
			c, err := organizer.ParseColumn(req.Column)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", errBadRequest, err)
			}
			o.DragOver(c, req.Target, req.PointerY)
			return o.DragSession(), nil
		}))

		sr.Post("/drop", withSession(reg, func(r *http.Request, o *organizer.Organizer) (any, error) {
			res := o.Drop()
			return struct {
				organizer.DropResult
				View organizer.View `json:"view"`
			}{res, o.View()}, nil
		}))

		sr.Post("/drag/end", withSession(reg, func(r *http.Request, o *organizer.Organizer) (any, error) {
			o.DragEnd()
			return o.View(), nil
		}))

		// POST .../pending/confirm  { "case_id": 3 }
		sr.Post("/pending/confirm", withSession(reg, func(r *http.Request, o *organizer.Organizer) (any, error) {
			var req struct {
				CaseID *int `json:"case_id"`
			}
			if err := decodeOptional(r, &req); err != nil {
				return nil, err
			}
			if err := o.ConfirmPendingChange(req.CaseID); err != nil {
				return nil, err
			}
			return o.View(), nil
		}))

		sr.Post("/pending/cancel", withSession(reg, func(r *http.Request, o *organizer.Organizer) (any, error) {
			if !o.CancelPendingChange() {
				return nil, organizer.ErrNoPendingChange
			}
			return o.View(), nil
		}))

		// POST .../groups/{groupID}/items  { "item_id": "q7" }
		sr.Post("/groups/{groupID}/items", withSession(reg, func(r *http.Request, o *organizer.Organizer) (any, error) {
			gid, err := strconv.Atoi(chi.URLParam(r, "groupID"))
			if err != nil {
				return nil, fmt.Errorf("%w: bad group id", errBadRequest)
			}
			var req struct {
				ItemID string `json:"item_id"`
			}
			if err := decode(r, &req); err != nil {
				return nil, err
			}
			changed, err := o.InsertIntoGroup(req.ItemID, gid)
			if err != nil {
				return nil, err
			}
			return map[string]any{"changed": changed, "view": o.View()}, nil
		}))

		// POST .../groups/merge  { "item_ids": ["q1", "q2"] }
		sr.Post("/groups/merge", withSession(reg, func(r *http.Request, o *organizer.Organizer) (any, error) {
			var req struct {
				ItemIDs []string `json:"item_ids"`
			}
			if err := decode(r, &req); err != nil {
				return nil, err
			}
			if len(req.ItemIDs) != 2 {
				return nil, fmt.Errorf("%w: exactly two item_ids required", errBadRequest)
			}
			gid, err := o.MergeSingles(req.ItemIDs[0], req.ItemIDs[1])
			if err != nil {
				return nil, err
			}
			return map[string]any{"group_id": gid, "view": o.View()}, nil
		}))

		sr.Post("/revert", withSession(reg, func(r *http.Request, o *organizer.Organizer) (any, error) {
			if err := o.Revert(r.Context()); err != nil {
				return nil, err
			}
			return o.View(), nil
		}))

		sr.Post("/save", withSession(reg, func(r *http.Request, o *organizer.Organizer) (any, error) {
			ctx, cancel := context.WithTimeout(r.Context(), saveTimeout)
			defer cancel()
			if err := o.Save(ctx); err != nil {
				return nil, err
			}
			return o.View(), nil
		}))
	})
}

// withSession runs fn under the session lock and writes its result as JSON.
func withSession(reg Sessions, fn func(r *http.Request, o *organizer.Organizer) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var out any
		err := reg.With(chi.URLParam(r, "sessionID"), func(o *organizer.Organizer) error {
			var err error
			out, err = fn(r, o)
			return err
		})
		if err != nil {
			writeError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, out)
	}
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: bad json", errBadRequest)
	}
	return nil
}

// decodeOptional accepts an empty body.
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: bad json", errBadRequest)
	}
	return nil
}
