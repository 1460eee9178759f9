package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yeegr/singular/internal/app/models"
	"github.com/yeegr/singular/internal/pkg/apperrors"
)

// ActivityRepository handles database operations for workflow activities
type ActivityRepository struct {
	db *pgxpool.Pool
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Append adds an activity to a process with the next sequence number. The
// process row is locked while pending; appending to a terminal process
// reports ErrProcessNotPending.
func (r *ActivityRepository) Append(ctx context.Context, activity *models.Activity) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status models.ProcessStatus
	err = tx.QueryRow(ctx, "SELECT status FROM processes WHERE id = $1 FOR UPDATE", activity.ProcessID).Scan(&status)
	if err != nil {
		if isNoRows(err) {
			return fmt.Errorf("%w: id %d", apperrors.ErrProcessNotFound, activity.ProcessID)
		}
		return fmt.Errorf("error executing query: %w", err)
	}
	if status != models.ProcessPending {
		return fmt.Errorf("%w: id %d is %s", apperrors.ErrProcessNotPending, activity.ProcessID, status)
	}

	err = tx.QueryRow(ctx,
		"SELECT COALESCE(MAX(seq), 0) + 1 FROM activities WHERE process_id = $1",
		activity.ProcessID).Scan(&activity.Seq)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO activities (process_id, seq, creator_id, creator_kind, target_id, target_kind,
			action, init_status, state)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`,
		activity.ProcessID, activity.Seq, activity.CreatorID, activity.CreatorKind,
		activity.TargetID, activity.TargetKind, activity.Action, activity.InitStatus, activity.State,
	).Scan(&activity.ID, &activity.CreatedAt)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetByID retrieves a single activity
func (r *ActivityRepository) GetByID(ctx context.Context, id int64) (*models.Activity, error) {
	sql := fmt.Sprintf("SELECT %s FROM activities WHERE id = $1", joinColumns(activityColumns))

	var a models.Activity
	err := r.db.QueryRow(ctx, sql, id).Scan(
		&a.ID, &a.ProcessID, &a.Seq, &a.CreatorID, &a.CreatorKind, &a.TargetID, &a.TargetKind,
		&a.Action, &a.InitStatus, &a.State, &a.HandlerID, &a.HandlerKind, &a.AssignedStatus,
		&a.Comment, &a.ProcessedAt, &a.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("%w: id %d", apperrors.ErrActivityNotFound, id)
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	return &a, nil
}

// ActivityUpdate carries the fields a handler may set on an activity. Nil
// fields are left untouched.
type ActivityUpdate struct {
	State          *models.ActivityState
	Handler        *models.ActorRef
	AssignedStatus *models.ContentStatus
	Comment        *string
	StampProcessed bool
}

// Update merges handler fields into an activity
func (r *ActivityRepository) Update(ctx context.Context, id int64, update ActivityUpdate) error {
	query := squirrel.Update("activities").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	changed := false
	if update.State != nil {
		query = query.Set("state", *update.State)
		changed = true
	}
	if update.Handler != nil {
		query = query.Set("handler_id", update.Handler.ID).Set("handler_kind", update.Handler.Kind)
		changed = true
	}
	if update.AssignedStatus != nil {
		query = query.Set("assigned_status", *update.AssignedStatus)
		changed = true
	}
	if update.Comment != nil {
		query = query.Set("comment", *update.Comment)
		changed = true
	}
	if update.StampProcessed {
		query = query.Set("processed_at", squirrel.Expr("NOW()"))
		changed = true
	}
	if !changed {
		return nil
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	result, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: id %d", apperrors.ErrActivityNotFound, id)
	}
	return nil
}
