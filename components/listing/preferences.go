package listing

import (
	"context"
	"fmt"
	"sync"
)

// PreferenceStore persists list state per viewer and screen.
type PreferenceStore interface {
	ListState(ctx context.Context, viewer ViewerContext, screen string) (ListState, bool, error)
	SaveListState(ctx context.Context, viewer ViewerContext, screen string, state ListState) error
}

// InMemoryPreferenceStore is a concurrency-safe default store.
type InMemoryPreferenceStore struct {
	mu   sync.RWMutex
	data map[string]ListState
}

// NewInMemoryPreferenceStore creates an empty preference store.
func NewInMemoryPreferenceStore() *InMemoryPreferenceStore {
	return &InMemoryPreferenceStore{data: make(map[string]ListState)}
}

// ListState returns the stored state, if any. Anonymous viewers never have one.
func (s *InMemoryPreferenceStore) ListState(_ context.Context, viewer ViewerContext, screen string) (ListState, bool, error) {
	if viewer.UserID == "" {
		return ListState{}, false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.data[preferenceKey(viewer, screen)]
	if !ok {
		return ListState{}, false, nil
	}
	return state.Clone(), true, nil
}

// SaveListState persists state for a viewer.
func (s *InMemoryPreferenceStore) SaveListState(_ context.Context, viewer ViewerContext, screen string, state ListState) error {
	if viewer.UserID == "" {
		return fmt.Errorf("preference store requires viewer user id")
	}
	if screen == "" {
		return fmt.Errorf("preference store requires screen code")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[preferenceKey(viewer, screen)] = state.Clone()
	return nil
}

func preferenceKey(viewer ViewerContext, screen string) string {
	return viewer.UserID + "::" + screen
}

type noopPreferenceStore struct{}

func (noopPreferenceStore) ListState(context.Context, ViewerContext, string) (ListState, bool, error) {
	return ListState{}, false, nil
}

func (noopPreferenceStore) SaveListState(context.Context, ViewerContext, string, ListState) error {
	return nil
}

// NormalizePreferences returns a no-op store when store is nil.
func NormalizePreferences(store PreferenceStore) PreferenceStore {
	if store == nil {
		return noopPreferenceStore{}
	}
	return store
}
