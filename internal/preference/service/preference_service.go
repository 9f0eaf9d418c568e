package service

import (
	"context"
	"fmt"

	indicatordomain "github.com/Gelzieny/remix-of-economic-insight/internal/indicator/domain"
	"github.com/Gelzieny/remix-of-economic-insight/internal/preference/repository"
)

// Preferences is the user's dashboard selection.
type Preferences struct {
	Selected []indicatordomain.Kind
	// Custom is true once the user has stored a selection.
	Custom bool
}

// Service manages dashboard preferences.
type Service struct {
	repo repository.Repository
}

// NewService returns a preference service.
func NewService(repo repository.Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the stored selection, or every kind when nothing usable is stored. Unknown stored
// kinds are dropped.
func (s *Service) Get(ctx context.Context, userID string) (*Preferences, error) {
	stored, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	selected := make([]indicatordomain.Kind, 0, len(stored))
	for _, raw := range stored {
		if k, err := indicatordomain.ParseKind(raw); err == nil {
			selected = append(selected, k)
		}
	}
	if len(selected) == 0 {
		return &Preferences{Selected: allKinds(), Custom: false}, nil
	}
	return &Preferences{Selected: selected, Custom: true}, nil
}

// Toggle adds kind to or removes it from the selection. Removing the last selected kind leaves
// the selection unchanged.
func (s *Service) Toggle(ctx context.Context, userID string, kind indicatordomain.Kind) (*Preferences, error) {
	if !kind.Known() {
		return nil, indicatordomain.ErrUnknownKind
	}
	cur, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	next := make([]indicatordomain.Kind, 0, len(cur.Selected)+1)
	found := false
	for _, k := range cur.Selected {
		if k == kind {
			found = true
			continue
		}
		next = append(next, k)
	}
	if !found {
		next = append(next, kind)
	}
	if len(next) == 0 {
		return cur, nil
	}
	if err := s.save(ctx, userID, next); err != nil {
		return nil, err
	}
	return &Preferences{Selected: next, Custom: true}, nil
}

// SelectAll stores every kind as selected.
func (s *Service) SelectAll(ctx context.Context, userID string) (*Preferences, error) {
	all := allKinds()
	if err := s.save(ctx, userID, all); err != nil {
		return nil, err
	}
	return &Preferences{Selected: all, Custom: true}, nil
}

func (s *Service) save(ctx context.Context, userID string, kinds []indicatordomain.Kind) error {
	raw := make([]string, len(kinds))
	for i, k := range kinds {
		raw[i] = string(k)
	}
	if err := s.repo.Save(ctx, userID, raw); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

func allKinds() []indicatordomain.Kind {
	return append([]indicatordomain.Kind(nil), indicatordomain.AllKinds...)
}
