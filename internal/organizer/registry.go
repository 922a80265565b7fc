package organizer

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrNoSession     = errors.New("organizer session not found")
	ErrSessionExists = errors.New("container already has an open organizer session")
)

type session struct {
	mu  sync.Mutex
	org *Organizer
}

// Registry keeps the open organizer sessions of a server, one per container.
// Each session is used by one caller at a time.
type Registry struct {
	newOrganizer func() *Organizer

	mu          sync.Mutex
	sessions    map[string]*session
	byContainer map[string]string
}

func NewRegistry(newOrganizer func() *Organizer) *Registry {
	return &Registry{
		newOrganizer: newOrganizer,
		sessions:     map[string]*session{},
		byContainer:  map[string]string{},
	}
}

// Open starts a session for containerID and returns its id.
func (r *Registry) Open(ctx context.Context, containerID string) (string, error) {
	r.mu.Lock()
	if _, ok := r.byContainer[containerID]; ok {
		r.mu.Unlock()
		return "", ErrSessionExists
	}
	id := uuid.NewString()
	s := &session{org: r.newOrganizer()}
	s.mu.Lock()
	r.sessions[id] = s
	r.byContainer[containerID] = id
	r.mu.Unlock()

	err := s.org.Open(ctx, containerID)
	s.mu.Unlock()
	if err != nil {
		r.drop(id, containerID)
		return "", err
	}
	return id, nil
}

// With runs fn with exclusive access to the session's organizer.
func (r *Registry) With(id string, fn func(o *Organizer) error) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return ErrNoSession
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.org.IsOpen() {
		return ErrNoSession
	}
	return fn(s.org)
}

func (r *Registry) Close(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return ErrNoSession
	}
	s.mu.Lock()
	containerID := s.org.ContainerID()
	s.org.Close()
	s.mu.Unlock()
	r.drop(id, containerID)
	return nil
}

func (r *Registry) drop(id, containerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	if r.byContainer[containerID] == id {
		delete(r.byContainer, containerID)
	}
}
