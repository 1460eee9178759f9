package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yeegr/singular/internal/app/models"
	"github.com/yeegr/singular/internal/app/repositories"
	"github.com/yeegr/singular/internal/pkg/apperrors"
	"github.com/yeegr/singular/internal/pkg/dberrors"
)

// ActionStore is the persistence surface the ledger writes through
type ActionStore interface {
	Insert(ctx context.Context, action *models.Action) error
	Delete(ctx context.Context, kind models.ActionKind, creator models.ActorRef, target models.TargetRef) (bool, error)
	Exists(ctx context.Context, kind models.ActionKind, creator models.ActorRef, target models.TargetRef) (bool, error)
	ListByTarget(ctx context.Context, kind models.ActionKind, target models.TargetRef, page, pageSize int) ([]models.Action, error)
}

// CounterApplier applies counter deltas derived from ledger entries
type CounterApplier interface {
	ApplyDelta(ctx context.Context, target models.TargetRef, counter models.Counter, delta int) error
}

// AuditStore records who did what
type AuditStore interface {
	Insert(ctx context.Context, entry *models.AuditEntry) error
}

const propagateTimeout = 10 * time.Second

// LedgerService records interaction actions. The ledger row is the source of
// truth; the matching counter column is a derived projection updated after the
// row commits. Propagation runs off the request path and its failures are
// logged, never surfaced, so a missed delta can only ever leave a counter
// stale, not block the interaction.
type LedgerService struct {
	actions  ActionStore
	registry TargetResolver
	counters CounterApplier
	audit    AuditStore
	logger   zerolog.Logger

	// wg tracks in-flight propagations so a shutdown can drain them
	wg sync.WaitGroup
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	actions ActionStore,
	registry TargetResolver,
	counters CounterApplier,
	audit AuditStore,
	logger zerolog.Logger,
) *LedgerService {
	return &LedgerService{
		actions:  actions,
		registry: registry,
		counters: counters,
		audit:    audit,
		logger:   logger,
	}
}

// Record appends an action to the ledger. Reversible kinds are unique per
// creator and target; recording one twice reports ErrDuplicateAction.
// Accumulating kinds append freely.
func (s *LedgerService) Record(ctx context.Context, kind models.ActionKind, creator models.ActorRef, target models.TargetRef, userAgent string) (*models.Action, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownAction, kind)
	}
	if !creator.Kind.Valid() {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownActorKind, creator.Kind)
	}

	// The target row must exist before the ledger accepts an entry for it.
	store, err := s.registry.Store(target.Kind)
	if err != nil {
		return nil, err
	}
	if _, err := store.FindMeta(ctx, target.ID); err != nil {
		return nil, err
	}

	action := &models.Action{
		Kind:        kind,
		CreatorID:   creator.ID,
		CreatorKind: creator.Kind,
		TargetID:    target.ID,
		TargetKind:  target.Kind,
	}
	if err := s.actions.Insert(ctx, action); err != nil {
		if dberrors.IsDuplicateConstraintError(err, repositories.ActionUniqueConstraint) {
			return nil, fmt.Errorf("%w: %s already %sd %s", apperrors.ErrDuplicateAction, creator, kind, target)
		}
		return nil, err
	}

	s.propagate(kind, target, +1)
	s.writeAudit(ctx, creator, target, string(kind), userAgent)

	return action, nil
}

// Retract removes a reversible action from the ledger. Retracting an action
// that was never recorded reports ErrActionNotFound.
func (s *LedgerService) Retract(ctx context.Context, kind models.ActionKind, creator models.ActorRef, target models.TargetRef, userAgent string) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", apperrors.ErrUnknownAction, kind)
	}
	if !kind.Reversible() {
		return fmt.Errorf("%w: %q cannot be retracted", apperrors.ErrBadRequest, kind)
	}

	removed, err := s.actions.Delete(ctx, kind, creator, target)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%w: %s has no %s on %s", apperrors.ErrActionNotFound, creator, kind, target)
	}

	s.propagate(kind, target, -1)
	s.writeAudit(ctx, creator, target, "un"+string(kind), userAgent)

	return nil
}

// HasActed reports whether the creator holds a live action of the given kind
// on the target.
func (s *LedgerService) HasActed(ctx context.Context, kind models.ActionKind, creator models.ActorRef, target models.TargetRef) (bool, error) {
	if !kind.Valid() {
		return false, fmt.Errorf("%w: %q", apperrors.ErrUnknownAction, kind)
	}
	return s.actions.Exists(ctx, kind, creator, target)
}

// ListByTarget retrieves ledger entries of one kind against one target
func (s *LedgerService) ListByTarget(ctx context.Context, kind models.ActionKind, target models.TargetRef, page, pageSize int) ([]models.Action, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownAction, kind)
	}
	return s.actions.ListByTarget(ctx, kind, target, page, pageSize)
}

// Wait blocks until all in-flight counter propagations have finished
func (s *LedgerService) Wait() {
	s.wg.Wait()
}

// propagate dispatches the counter delta for an action kind off the request
// path. Kinds without a counter mapping are a no-op.
func (s *LedgerService) propagate(kind models.ActionKind, target models.TargetRef, delta int) {
	counter, ok := kind.Counter()
	if !ok {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), propagateTimeout)
		defer cancel()

		if err := s.counters.ApplyDelta(ctx, target, counter, delta); err != nil {
			s.logger.Error().Err(err).
				Str("counter", string(counter)).
				Int("delta", delta).
				Str("target", target.String()).
				Msg("Counter propagation failed")
		}
	}()
}

func (s *LedgerService) writeAudit(ctx context.Context, creator models.ActorRef, target models.TargetRef, action, userAgent string) {
	entry := &models.AuditEntry{
		ID:          uuid.New().String(),
		CreatorID:   creator.ID,
		CreatorKind: creator.Kind,
		TargetID:    &target.ID,
		TargetKind:  &target.Kind,
		Action:      action,
		UserAgent:   userAgent,
	}
	if err := s.audit.Insert(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("Failed to write audit entry")
	}
}
