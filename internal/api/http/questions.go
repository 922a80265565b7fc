package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-organizer/internal/question"
)

// GET /containers/{containerID}/questions
func ListQuestionsHandler(store question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := store.FetchItems(r.Context(), chi.URLParam(r, "containerID"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if items == nil {
			items = []question.Question{}
		}
		respondJSON(w, http.StatusOK, items)
	}
}

// PUT /questions/{questionID}  full question record
func UpdateQuestionHandler(store question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "questionID")
		var q question.Question
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if q.ID == "" {
			q.ID = id
		}
		if q.ID != id {
			http.Error(w, "id mismatch", http.StatusBadRequest)
			return
		}
		if q.ContainerID == "" {
			http.Error(w, "container_id required", http.StatusBadRequest)
			return
		}
		if !q.Type.Valid() {
			http.Error(w, "unknown question type", http.StatusBadRequest)
			return
		}
		if err := store.UpdateItem(r.Context(), q); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
