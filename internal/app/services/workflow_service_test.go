package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeegr/singular/internal/app/models"
	"github.com/yeegr/singular/internal/app/repositories"
	"github.com/yeegr/singular/internal/pkg/apperrors"
)

type fakeProcessStore struct {
	processes map[int64]*models.Process
	nextID    int64
}

func newFakeProcessStore() *fakeProcessStore {
	return &fakeProcessStore{processes: make(map[int64]*models.Process)}
}

func (f *fakeProcessStore) Create(_ context.Context, process *models.Process, first *models.Activity) error {
	f.nextID++
	process.ID = f.nextID
	first.ProcessID = process.ID
	first.Seq = 1
	first.ID = f.nextID * 100
	process.Activities = []models.Activity{*first}
	stored := *process
	f.processes[process.ID] = &stored
	return nil
}

func (f *fakeProcessStore) GetByID(_ context.Context, id int64) (*models.Process, error) {
	process, ok := f.processes[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", apperrors.ErrProcessNotFound, id)
	}
	copied := *process
	return &copied, nil
}

func (f *fakeProcessStore) FindPendingByTarget(_ context.Context, target models.TargetRef) (*models.Process, error) {
	for _, p := range f.processes {
		if p.Target() == target && p.Status == models.ProcessPending {
			copied := *p
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("%w: no pending process for %s", apperrors.ErrProcessNotFound, target)
}

func (f *fakeProcessStore) Finalize(_ context.Context, id int64, to models.ProcessStatus) error {
	process, ok := f.processes[id]
	if !ok {
		return fmt.Errorf("%w: id %d", apperrors.ErrProcessNotFound, id)
	}
	if process.Status != models.ProcessPending {
		return fmt.Errorf("%w: id %d", apperrors.ErrProcessFinalized, id)
	}
	process.Status = to
	now := time.Now()
	process.CompletedAt = &now
	return nil
}

type fakeActivityStore struct {
	processes  *fakeProcessStore
	activities map[int64]*models.Activity
	nextID     int64
}

func newFakeActivityStore(processes *fakeProcessStore) *fakeActivityStore {
	return &fakeActivityStore{
		processes:  processes,
		activities: make(map[int64]*models.Activity),
	}
}

func (f *fakeActivityStore) Append(_ context.Context, activity *models.Activity) error {
	process, ok := f.processes.processes[activity.ProcessID]
	if !ok {
		return fmt.Errorf("%w: id %d", apperrors.ErrProcessNotFound, activity.ProcessID)
	}
	if process.Status != models.ProcessPending {
		return fmt.Errorf("%w: id %d", apperrors.ErrProcessNotPending, activity.ProcessID)
	}
	f.nextID++
	activity.ID = f.nextID
	activity.Seq = len(process.Activities) + 1
	process.Activities = append(process.Activities, *activity)
	stored := *activity
	f.activities[activity.ID] = &stored
	return nil
}

func (f *fakeActivityStore) GetByID(_ context.Context, id int64) (*models.Activity, error) {
	activity, ok := f.activities[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", apperrors.ErrActivityNotFound, id)
	}
	copied := *activity
	return &copied, nil
}

func (f *fakeActivityStore) Update(_ context.Context, id int64, update repositories.ActivityUpdate) error {
	activity, ok := f.activities[id]
	if !ok {
		return fmt.Errorf("%w: id %d", apperrors.ErrActivityNotFound, id)
	}
	if update.State != nil {
		activity.State = *update.State
	}
	if update.Handler != nil {
		activity.HandlerID = &update.Handler.ID
		activity.HandlerKind = &update.Handler.Kind
	}
	if update.AssignedStatus != nil {
		verdict := string(*update.AssignedStatus)
		activity.AssignedStatus = &verdict
	}
	if update.Comment != nil {
		activity.Comment = update.Comment
	}
	if update.StampProcessed {
		now := time.Now()
		activity.ProcessedAt = &now
	}
	return nil
}

func newWorkflowFixture() (*WorkflowService, *fakeProcessStore, *fakeActivityStore, *fakeTargetStore) {
	processes := newFakeProcessStore()
	activities := newFakeActivityStore(processes)
	targets := newFakeTargetStore()
	targets.metas[1] = &repositories.TargetMeta{
		Ref:         models.TargetRef{ID: 1, Kind: models.TargetPost},
		CreatorID:   9,
		CreatorKind: models.ActorConsumer,
		Status:      "pending",
	}
	svc := NewWorkflowService(processes, activities, &fakeRegistry{store: targets}, zerolog.Nop())
	return svc, processes, activities, targets
}

func TestWorkflowCreateProcess(t *testing.T) {
	creator := models.ActorRef{ID: 9, Kind: models.ActorConsumer}
	post := models.TargetRef{ID: 1, Kind: models.TargetPost}
	expire := time.Now().Add(24 * time.Hour)

	t.Run("opens pending with the first activity", func(t *testing.T) {
		svc, _, _, _ := newWorkflowFixture()

		process, err := svc.CreateProcess(context.Background(), models.ProcessApproval, creator, post, "submit", expire)
		require.NoError(t, err)
		assert.Equal(t, models.ProcessPending, process.Status)
		require.Len(t, process.Activities, 1)
		assert.Equal(t, 1, process.Activities[0].Seq)
		assert.Equal(t, models.ActivityReady, process.Activities[0].State)
		assert.Equal(t, "pending", process.Activities[0].InitStatus)
	})

	t.Run("one pending process per target", func(t *testing.T) {
		svc, _, _, _ := newWorkflowFixture()

		_, err := svc.CreateProcess(context.Background(), models.ProcessApproval, creator, post, "submit", expire)
		require.NoError(t, err)

		_, err = svc.CreateProcess(context.Background(), models.ProcessApproval, creator, post, "submit", expire)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("rejects missing targets", func(t *testing.T) {
		svc, _, _, _ := newWorkflowFixture()

		missing := models.TargetRef{ID: 404, Kind: models.TargetPost}
		_, err := svc.CreateProcess(context.Background(), models.ProcessApproval, creator, missing, "submit", expire)
		assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	})
}

func TestWorkflowFinalize(t *testing.T) {
	creator := models.ActorRef{ID: 9, Kind: models.ActorConsumer}
	post := models.TargetRef{ID: 1, Kind: models.TargetPost}
	expire := time.Now().Add(24 * time.Hour)

	t.Run("pushes the decision onto the target", func(t *testing.T) {
		svc, _, _, targets := newWorkflowFixture()

		process, err := svc.CreateProcess(context.Background(), models.ProcessApproval, creator, post, "submit", expire)
		require.NoError(t, err)

		finalized, err := svc.FinalizeProcess(context.Background(), process.ID, models.ContentApproved)
		require.NoError(t, err)
		assert.Equal(t, models.ProcessFinalized, finalized.Status)
		assert.NotNil(t, finalized.CompletedAt)
		assert.Equal(t, "approved", targets.statuses[post.ID])
	})

	t.Run("exactly one finalization wins", func(t *testing.T) {
		svc, _, _, _ := newWorkflowFixture()

		process, err := svc.CreateProcess(context.Background(), models.ProcessApproval, creator, post, "submit", expire)
		require.NoError(t, err)

		_, err = svc.FinalizeProcess(context.Background(), process.ID, models.ContentApproved)
		require.NoError(t, err)

		_, err = svc.FinalizeProcess(context.Background(), process.ID, models.ContentRejected)
		assert.ErrorIs(t, err, apperrors.ErrProcessFinalized)
	})

	t.Run("a finalized process accepts no more activities", func(t *testing.T) {
		svc, _, _, _ := newWorkflowFixture()
		handler := models.ActorRef{ID: 2, Kind: models.ActorPlatform}

		process, err := svc.CreateProcess(context.Background(), models.ProcessApproval, creator, post, "submit", expire)
		require.NoError(t, err)

		_, err = svc.FinalizeProcess(context.Background(), process.ID, models.ContentApproved)
		require.NoError(t, err)

		_, err = svc.AddActivity(context.Background(), process.ID, handler, "review")
		assert.ErrorIs(t, err, apperrors.ErrProcessNotPending)
	})
}

func TestWorkflowActivities(t *testing.T) {
	creator := models.ActorRef{ID: 9, Kind: models.ActorConsumer}
	handler := models.ActorRef{ID: 2, Kind: models.ActorPlatform}
	post := models.TargetRef{ID: 1, Kind: models.TargetPost}
	expire := time.Now().Add(24 * time.Hour)

	t.Run("claim and complete stamp the handler", func(t *testing.T) {
		svc, _, _, _ := newWorkflowFixture()

		process, err := svc.CreateProcess(context.Background(), models.ProcessApproval, creator, post, "submit", expire)
		require.NoError(t, err)

		activity, err := svc.AddActivity(context.Background(), process.ID, handler, "review")
		require.NoError(t, err)
		assert.Equal(t, 2, activity.Seq)

		claimed, err := svc.ClaimActivity(context.Background(), activity.ID, handler)
		require.NoError(t, err)
		assert.Equal(t, models.ActivityProcessing, claimed.State)
		require.NotNil(t, claimed.Handler())
		assert.Equal(t, handler, *claimed.Handler())

		comment := "looks fine"
		completed, err := svc.CompleteActivity(context.Background(), activity.ID, handler, models.ContentApproved, &comment)
		require.NoError(t, err)
		assert.Equal(t, models.ActivityCompleted, completed.State)
		require.NotNil(t, completed.AssignedStatus)
		assert.Equal(t, string(models.ContentApproved), *completed.AssignedStatus)
		assert.NotNil(t, completed.ProcessedAt)
	})

	t.Run("verdicts on closed processes are rejected", func(t *testing.T) {
		svc, _, _, _ := newWorkflowFixture()

		process, err := svc.CreateProcess(context.Background(), models.ProcessApproval, creator, post, "submit", expire)
		require.NoError(t, err)

		activity, err := svc.AddActivity(context.Background(), process.ID, handler, "review")
		require.NoError(t, err)

		_, err = svc.FinalizeProcess(context.Background(), process.ID, models.ContentRejected)
		require.NoError(t, err)

		_, err = svc.CompleteActivity(context.Background(), activity.ID, handler, models.ContentApproved, nil)
		assert.ErrorIs(t, err, apperrors.ErrProcessNotPending)
	})
}

func TestWorkflowCancel(t *testing.T) {
	creator := models.ActorRef{ID: 9, Kind: models.ActorConsumer}
	post := models.TargetRef{ID: 1, Kind: models.TargetPost}
	expire := time.Now().Add(24 * time.Hour)

	t.Run("the opener may cancel", func(t *testing.T) {
		svc, _, _, targets := newWorkflowFixture()

		process, err := svc.CreateProcess(context.Background(), models.ProcessApproval, creator, post, "submit", expire)
		require.NoError(t, err)

		cancelled, err := svc.CancelProcess(context.Background(), process.ID, creator)
		require.NoError(t, err)
		assert.Equal(t, models.ProcessCancelled, cancelled.Status)
		// Cancelling leaves the target untouched
		assert.Empty(t, targets.statuses)
	})

	t.Run("others may not", func(t *testing.T) {
		svc, _, _, _ := newWorkflowFixture()

		process, err := svc.CreateProcess(context.Background(), models.ProcessApproval, creator, post, "submit", expire)
		require.NoError(t, err)

		other := models.ActorRef{ID: 3, Kind: models.ActorConsumer}
		_, err = svc.CancelProcess(context.Background(), process.ID, other)
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})
}
