package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yeegr/singular/internal/app/models"
	"github.com/yeegr/singular/internal/pkg/apperrors"
)

var processColumns = []string{
	"id", "type", "creator_id", "creator_kind", "target_id", "target_kind",
	"status", "expire_at", "completed_at", "created_at", "updated_at",
}

var activityColumns = []string{
	"id", "process_id", "seq", "creator_id", "creator_kind", "target_id", "target_kind",
	"action", "init_status", "state", "handler_id", "handler_kind", "assigned_status",
	"comment", "processed_at", "created_at",
}

// ProcessRepository handles database operations for workflow processes
type ProcessRepository struct {
	db *pgxpool.Pool
}

// NewProcessRepository creates a new ProcessRepository
func NewProcessRepository(db *pgxpool.Pool) *ProcessRepository {
	return &ProcessRepository{db: db}
}

// Create inserts a process together with its first activity in one
// transaction. A process never exists without at least one activity.
func (r *ProcessRepository) Create(ctx context.Context, process *models.Process, first *models.Activity) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO processes (type, creator_id, creator_kind, target_id, target_kind, status, expire_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		process.Type, process.CreatorID, process.CreatorKind,
		process.TargetID, process.TargetKind, process.Status, process.ExpireAt,
	).Scan(&process.ID, &process.CreatedAt, &process.UpdatedAt)
	if err != nil {
		return err
	}

	first.ProcessID = process.ID
	first.Seq = 1
	err = tx.QueryRow(ctx, `
		INSERT INTO activities (process_id, seq, creator_id, creator_kind, target_id, target_kind,
			action, init_status, state)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`,
		first.ProcessID, first.Seq, first.CreatorID, first.CreatorKind,
		first.TargetID, first.TargetKind, first.Action, first.InitStatus, first.State,
	).Scan(&first.ID, &first.CreatedAt)
	if err != nil {
		return err
	}
	process.Activities = []models.Activity{*first}

	return tx.Commit(ctx)
}

// GetByID retrieves a process with its activities ordered by sequence
func (r *ProcessRepository) GetByID(ctx context.Context, id int64) (*models.Process, error) {
	sql := fmt.Sprintf("SELECT %s FROM processes WHERE id = $1", joinColumns(processColumns))

	var p models.Process
	err := r.db.QueryRow(ctx, sql, id).Scan(
		&p.ID, &p.Type, &p.CreatorID, &p.CreatorKind, &p.TargetID, &p.TargetKind,
		&p.Status, &p.ExpireAt, &p.CompletedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("%w: id %d", apperrors.ErrProcessNotFound, id)
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	rows, err := r.db.Query(ctx,
		fmt.Sprintf("SELECT %s FROM activities WHERE process_id = $1 ORDER BY seq ASC", joinColumns(activityColumns)),
		id)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(
			&a.ID, &a.ProcessID, &a.Seq, &a.CreatorID, &a.CreatorKind, &a.TargetID, &a.TargetKind,
			&a.Action, &a.InitStatus, &a.State, &a.HandlerID, &a.HandlerKind, &a.AssignedStatus,
			&a.Comment, &a.ProcessedAt, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		p.Activities = append(p.Activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &p, nil
}

// FindPendingByTarget retrieves the pending process attached to a target, if
// one exists.
func (r *ProcessRepository) FindPendingByTarget(ctx context.Context, target models.TargetRef) (*models.Process, error) {
	sql := fmt.Sprintf(`
		SELECT %s FROM processes
		WHERE target_id = $1 AND target_kind = $2 AND status = $3
		ORDER BY id DESC LIMIT 1`, joinColumns(processColumns))

	var p models.Process
	err := r.db.QueryRow(ctx, sql, target.ID, target.Kind, models.ProcessPending).Scan(
		&p.ID, &p.Type, &p.CreatorID, &p.CreatorKind, &p.TargetID, &p.TargetKind,
		&p.Status, &p.ExpireAt, &p.CompletedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("%w: no pending process for %s", apperrors.ErrProcessNotFound, target)
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	return &p, nil
}

// Finalize transitions a pending process to a terminal status and stamps its
// completion time. A process already out of pending reports
// ErrProcessFinalized, so two racing finalizations cannot both win.
func (r *ProcessRepository) Finalize(ctx context.Context, id int64, to models.ProcessStatus) error {
	result, err := r.db.Exec(ctx, `
		UPDATE processes SET status = $1, completed_at = NOW(), updated_at = NOW()
		WHERE id = $2 AND status = $3`,
		to, id, models.ProcessPending)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	if result.RowsAffected() == 0 {
		exists, err := r.exists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: id %d", apperrors.ErrProcessNotFound, id)
		}
		return fmt.Errorf("%w: id %d", apperrors.ErrProcessFinalized, id)
	}
	return nil
}

func (r *ProcessRepository) exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM processes WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error executing query: %w", err)
	}
	return exists, nil
}
