package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/yeegr/singular/internal/app/models"
	"github.com/yeegr/singular/internal/app/repositories"
	"github.com/yeegr/singular/internal/pkg/apperrors"
)

type counterKey struct {
	target  models.TargetRef
	counter models.Counter
}

// fakeCounters records applied deltas for assertions
type fakeCounters struct {
	mu     sync.Mutex
	deltas map[counterKey]int
	actor  map[models.ActorCounter]int
	fail   bool
}

func newFakeCounters() *fakeCounters {
	return &fakeCounters{
		deltas: make(map[counterKey]int),
		actor:  make(map[models.ActorCounter]int),
	}
}

func (f *fakeCounters) ApplyDelta(_ context.Context, target models.TargetRef, counter models.Counter, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return fmt.Errorf("counter store down")
	}
	f.deltas[counterKey{target, counter}] += delta
	return nil
}

func (f *fakeCounters) ApplyActorDelta(_ context.Context, _ models.ActorRef, counter models.ActorCounter, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return fmt.Errorf("counter store down")
	}
	f.actor[counter] += delta
	return nil
}

func (f *fakeCounters) delta(target models.TargetRef, counter models.Counter) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deltas[counterKey{target, counter}]
}

func (f *fakeCounters) actorDelta(counter models.ActorCounter) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.actor[counter]
}

// fakeTargetStore serves metadata for a fixed set of targets
type fakeTargetStore struct {
	metas    map[int64]*repositories.TargetMeta
	statuses map[int64]string
}

func newFakeTargetStore() *fakeTargetStore {
	return &fakeTargetStore{
		metas:    make(map[int64]*repositories.TargetMeta),
		statuses: make(map[int64]string),
	}
}

func (f *fakeTargetStore) FindMeta(_ context.Context, id int64) (*repositories.TargetMeta, error) {
	meta, ok := f.metas[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", apperrors.ErrResourceNotFound, id)
	}
	return meta, nil
}

func (f *fakeTargetStore) IncrementCounter(_ context.Context, _ int64, _ models.Counter, _ int) error {
	return nil
}

func (f *fakeTargetStore) SetStatus(_ context.Context, id int64, status string) error {
	if _, ok := f.metas[id]; !ok {
		return fmt.Errorf("%w: id %d", apperrors.ErrResourceNotFound, id)
	}
	f.statuses[id] = status
	return nil
}

// fakeRegistry resolves every kind to one shared fake store
type fakeRegistry struct {
	store *fakeTargetStore
}

func (f *fakeRegistry) Store(kind models.TargetKind) (repositories.TargetStore, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownTargetKind, kind)
	}
	return f.store, nil
}

// fakeActionStore holds ledger rows in memory with reversible-kind uniqueness
type fakeActionStore struct {
	mu        sync.Mutex
	rows      []models.Action
	nextID    int64
	insertErr error
}

func (f *fakeActionStore) Insert(_ context.Context, action *models.Action) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.nextID++
	action.ID = f.nextID
	f.rows = append(f.rows, *action)
	return nil
}

func (f *fakeActionStore) Delete(_ context.Context, kind models.ActionKind, creator models.ActorRef, target models.TargetRef) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, row := range f.rows {
		if row.Kind == kind && row.Creator() == creator && row.Target() == target {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeActionStore) Exists(_ context.Context, kind models.ActionKind, creator models.ActorRef, target models.TargetRef) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.Kind == kind && row.Creator() == creator && row.Target() == target {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeActionStore) ListByTarget(_ context.Context, kind models.ActionKind, target models.TargetRef, _, _ int) ([]models.Action, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Action
	for _, row := range f.rows {
		if row.Kind == kind && row.Target() == target {
			out = append(out, row)
		}
	}
	return out, nil
}

// fakeAuditStore collects audit entries
type fakeAuditStore struct {
	mu      sync.Mutex
	entries []models.AuditEntry
}

func (f *fakeAuditStore) Insert(_ context.Context, entry *models.AuditEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeAuditStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}
