package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/yeegr/singular/internal/app/models"
	"github.com/yeegr/singular/internal/app/repositories"
)

// TargetResolver resolves a target kind to the store holding its rows
type TargetResolver interface {
	Store(kind models.TargetKind) (repositories.TargetStore, error)
}

// ActorCounterStore applies deltas to an actor's own counter columns
type ActorCounterStore interface {
	IncrementCounter(ctx context.Context, actor models.ActorRef, counter models.ActorCounter, delta int) error
}

// CounterService applies counter deltas against whichever table holds the
// target. It owns no counts itself; the row is the source of truth and every
// delta is a single atomic statement.
type CounterService struct {
	registry TargetResolver
	actors   ActorCounterStore
	logger   zerolog.Logger
}

// NewCounterService creates a new CounterService
func NewCounterService(registry TargetResolver, actors ActorCounterStore, logger zerolog.Logger) *CounterService {
	return &CounterService{
		registry: registry,
		actors:   actors,
		logger:   logger,
	}
}

// ApplyDelta adjusts one counter on one target
func (s *CounterService) ApplyDelta(ctx context.Context, target models.TargetRef, counter models.Counter, delta int) error {
	store, err := s.registry.Store(target.Kind)
	if err != nil {
		return err
	}
	if err := store.IncrementCounter(ctx, target.ID, counter, delta); err != nil {
		return fmt.Errorf("applying %+d to %s on %s: %w", delta, counter, target, err)
	}
	return nil
}

// ApplyActorDelta adjusts one of an actor's own counters
func (s *CounterService) ApplyActorDelta(ctx context.Context, actor models.ActorRef, counter models.ActorCounter, delta int) error {
	if err := s.actors.IncrementCounter(ctx, actor, counter, delta); err != nil {
		return fmt.Errorf("applying %+d to %s on %s: %w", delta, counter, actor, err)
	}
	return nil
}
