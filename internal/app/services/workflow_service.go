package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/yeegr/singular/internal/app/models"
	"github.com/yeegr/singular/internal/app/repositories"
	"github.com/yeegr/singular/internal/pkg/apperrors"
)

// ProcessStore is the persistence surface processes are run through
type ProcessStore interface {
	Create(ctx context.Context, process *models.Process, first *models.Activity) error
	GetByID(ctx context.Context, id int64) (*models.Process, error)
	FindPendingByTarget(ctx context.Context, target models.TargetRef) (*models.Process, error)
	Finalize(ctx context.Context, id int64, to models.ProcessStatus) error
}

// ActivityStore is the persistence surface activities are managed through
type ActivityStore interface {
	Append(ctx context.Context, activity *models.Activity) error
	GetByID(ctx context.Context, id int64) (*models.Activity, error)
	Update(ctx context.Context, id int64, update repositories.ActivityUpdate) error
}

// WorkflowService runs moderation processes. A process owns an ordered chain
// of activities against one target; finalizing it pushes the decided status
// onto the target and closes the process for good. The status transition is
// guarded at the row, so two racing finalizations resolve to exactly one
// winner.
type WorkflowService struct {
	processes  ProcessStore
	activities ActivityStore
	registry   TargetResolver
	logger     zerolog.Logger
}

// NewWorkflowService creates a new WorkflowService
func NewWorkflowService(
	processes ProcessStore,
	activities ActivityStore,
	registry TargetResolver,
	logger zerolog.Logger,
) *WorkflowService {
	return &WorkflowService{
		processes:  processes,
		activities: activities,
		registry:   registry,
		logger:     logger,
	}
}

// CreateProcess opens a process against a target with its first activity.
// The target keeps the activity's init status as its pre-decision snapshot.
func (s *WorkflowService) CreateProcess(ctx context.Context, processType models.ProcessType, creator models.ActorRef, target models.TargetRef, action string, expireAt time.Time) (*models.Process, error) {
	store, err := s.registry.Store(target.Kind)
	if err != nil {
		return nil, err
	}
	meta, err := store.FindMeta(ctx, target.ID)
	if err != nil {
		return nil, err
	}

	// One pending process per target
	if existing, err := s.processes.FindPendingByTarget(ctx, target); err == nil {
		return nil, fmt.Errorf("%w: process %d already pending for %s", apperrors.ErrConflict, existing.ID, target)
	} else if !errors.Is(err, apperrors.ErrProcessNotFound) {
		return nil, err
	}

	process := &models.Process{
		Type:        processType,
		CreatorID:   creator.ID,
		CreatorKind: creator.Kind,
		TargetID:    target.ID,
		TargetKind:  target.Kind,
		Status:      models.ProcessPending,
		ExpireAt:    &expireAt,
	}
	first := &models.Activity{
		CreatorID:   creator.ID,
		CreatorKind: creator.Kind,
		TargetID:    target.ID,
		TargetKind:  target.Kind,
		Action:      action,
		InitStatus:  meta.Status,
		State:       models.ActivityReady,
	}
	if err := s.processes.Create(ctx, process, first); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("processId", process.ID).
		Str("target", target.String()).
		Msg("Process opened")
	return process, nil
}

// GetProcess retrieves a process with its activity chain
func (s *WorkflowService) GetProcess(ctx context.Context, id int64) (*models.Process, error) {
	return s.processes.GetByID(ctx, id)
}

// AddActivity appends an activity to a pending process
func (s *WorkflowService) AddActivity(ctx context.Context, processID int64, creator models.ActorRef, action string) (*models.Activity, error) {
	process, err := s.processes.GetByID(ctx, processID)
	if err != nil {
		return nil, err
	}

	activity := &models.Activity{
		ProcessID:   processID,
		CreatorID:   creator.ID,
		CreatorKind: creator.Kind,
		TargetID:    process.TargetID,
		TargetKind:  process.TargetKind,
		Action:      action,
		InitStatus:  string(models.ContentPending),
		State:       models.ActivityReady,
	}
	if err := s.activities.Append(ctx, activity); err != nil {
		return nil, err
	}
	return activity, nil
}

// ClaimActivity marks an activity as being processed by a handler
func (s *WorkflowService) ClaimActivity(ctx context.Context, id int64, handler models.ActorRef) (*models.Activity, error) {
	state := models.ActivityProcessing
	update := repositories.ActivityUpdate{
		State:   &state,
		Handler: &handler,
	}
	if err := s.activities.Update(ctx, id, update); err != nil {
		return nil, err
	}
	return s.activities.GetByID(ctx, id)
}

// CompleteActivity records a handler's verdict on an activity. The verdict
// stays on the activity until the process is finalized; nothing touches the
// target here.
func (s *WorkflowService) CompleteActivity(ctx context.Context, id int64, handler models.ActorRef, verdict models.ContentStatus, comment *string) (*models.Activity, error) {
	activity, err := s.activities.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	process, err := s.processes.GetByID(ctx, activity.ProcessID)
	if err != nil {
		return nil, err
	}
	if process.Terminal() {
		return nil, fmt.Errorf("%w: id %d", apperrors.ErrProcessNotPending, process.ID)
	}

	state := models.ActivityCompleted
	update := repositories.ActivityUpdate{
		State:          &state,
		Handler:        &handler,
		AssignedStatus: &verdict,
		Comment:        comment,
		StampProcessed: true,
	}
	if err := s.activities.Update(ctx, id, update); err != nil {
		return nil, err
	}
	return s.activities.GetByID(ctx, id)
}

// FinalizeProcess closes a pending process and pushes the decided status onto
// the target. Finalizing twice reports ErrProcessFinalized.
func (s *WorkflowService) FinalizeProcess(ctx context.Context, id int64, decision models.ContentStatus) (*models.Process, error) {
	process, err := s.processes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.processes.Finalize(ctx, id, models.ProcessFinalized); err != nil {
		return nil, err
	}

	store, err := s.registry.Store(process.TargetKind)
	if err != nil {
		return nil, err
	}
	if err := store.SetStatus(ctx, process.TargetID, string(decision)); err != nil {
		// The process is already closed; a missed push leaves the target on
		// its old status, which the caller has to see.
		return nil, fmt.Errorf("process %d finalized but target update failed: %w", id, err)
	}

	s.logger.Info().
		Int64("processId", id).
		Str("decision", string(decision)).
		Msg("Process finalized")
	return s.processes.GetByID(ctx, id)
}

// CancelProcess abandons a pending process without touching the target. Only
// the opener may cancel.
func (s *WorkflowService) CancelProcess(ctx context.Context, id int64, actor models.ActorRef) (*models.Process, error) {
	process, err := s.processes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if process.CreatorID != actor.ID || process.CreatorKind != actor.Kind {
		return nil, fmt.Errorf("%w: process %d belongs to another actor", apperrors.ErrPermissionDenied, id)
	}

	if err := s.processes.Finalize(ctx, id, models.ProcessCancelled); err != nil {
		return nil, err
	}
	return s.processes.GetByID(ctx, id)
}
