package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yeegr/singular/internal/app/models"
)

// ActionUniqueConstraint is the partial unique index enforcing at most one
// reversible action per (creator, target) pair.
const ActionUniqueConstraint = "actions_creator_target_key"

// ActionRepository handles database operations for the action ledger
type ActionRepository struct {
	db *pgxpool.Pool
}

// NewActionRepository creates a new ActionRepository
func NewActionRepository(db *pgxpool.Pool) *ActionRepository {
	return &ActionRepository{db: db}
}

// Insert appends one action record. Uniqueness for reversible kinds is
// enforced by the storage index, not checked here; the caller classifies the
// constraint violation.
func (r *ActionRepository) Insert(ctx context.Context, action *models.Action) error {
	query := squirrel.Insert("actions").
		Columns("kind", "creator_id", "creator_kind", "target_id", "target_kind").
		Values(action.Kind, action.CreatorID, action.CreatorKind, action.TargetID, action.TargetKind).
		Suffix("RETURNING id, created_at").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&action.ID, &action.CreatedAt); err != nil {
		return err
	}

	return nil
}

// Delete removes the action of the given kind for a (creator, target) pair
// and reports whether a record existed.
func (r *ActionRepository) Delete(ctx context.Context, kind models.ActionKind, creator models.ActorRef, target models.TargetRef) (bool, error) {
	query := squirrel.Delete("actions").
		Where("kind = ?", kind).
		Where("creator_id = ? AND creator_kind = ?", creator.ID, creator.Kind).
		Where("target_id = ? AND target_kind = ?", target.ID, target.Kind).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return false, fmt.Errorf("error building SQL: %w", err)
	}

	result, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("error executing query: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// Exists reports whether an action of the given kind exists for the pair.
func (r *ActionRepository) Exists(ctx context.Context, kind models.ActionKind, creator models.ActorRef, target models.TargetRef) (bool, error) {
	query := squirrel.Select("1").
		From("actions").
		Where("kind = ?", kind).
		Where("creator_id = ? AND creator_kind = ?", creator.ID, creator.Kind).
		Where("target_id = ? AND target_kind = ?", target.ID, target.Kind).
		Limit(1).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return false, fmt.Errorf("error building SQL: %w", err)
	}

	var one int
	err = r.db.QueryRow(ctx, sql, args...).Scan(&one)
	if err != nil {
		if isNoRows(err) {
			return false, nil
		}
		return false, fmt.Errorf("error executing query: %w", err)
	}

	return true, nil
}

// ListByTarget retrieves actions of one kind against a target, newest first.
func (r *ActionRepository) ListByTarget(ctx context.Context, kind models.ActionKind, target models.TargetRef, page, pageSize int) ([]models.Action, error) {
	query := squirrel.Select("id", "kind", "creator_id", "creator_kind", "target_id", "target_kind", "created_at").
		From("actions").
		Where("kind = ?", kind).
		Where("target_id = ? AND target_kind = ?", target.ID, target.Kind).
		OrderBy("id DESC").
		Limit(uint64(pageSize)).
		Offset(uint64((page - 1) * pageSize)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var actions []models.Action
	for rows.Next() {
		var a models.Action
		if err := rows.Scan(&a.ID, &a.Kind, &a.CreatorID, &a.CreatorKind, &a.TargetID, &a.TargetKind, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		actions = append(actions, a)
	}

	return actions, rows.Err()
}
