package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yeegr/singular/internal/app/models"
)

// AuditRepository handles database operations for audit entries
type AuditRepository struct {
	db *pgxpool.Pool
}

// NewAuditRepository creates a new AuditRepository
func NewAuditRepository(db *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{db: db}
}

// Insert persists an audit entry
func (r *AuditRepository) Insert(ctx context.Context, entry *models.AuditEntry) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO audit_logs (id, creator_id, creator_kind, target_id, target_kind, action, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		entry.ID, entry.CreatorID, entry.CreatorKind, entry.TargetID, entry.TargetKind,
		entry.Action, entry.UserAgent,
	).Scan(&entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	return nil
}

// ListByCreator retrieves an actor's audit entries, newest first
func (r *AuditRepository) ListByCreator(ctx context.Context, creator models.ActorRef, page, pageSize int) ([]models.AuditEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, creator_id, creator_kind, target_id, target_kind, action, user_agent, created_at
		FROM audit_logs
		WHERE creator_id = $1 AND creator_kind = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`,
		creator.ID, creator.Kind, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var entries []models.AuditEntry
	for rows.Next() {
		var e models.AuditEntry
		if err := rows.Scan(&e.ID, &e.CreatorID, &e.CreatorKind, &e.TargetID, &e.TargetKind,
			&e.Action, &e.UserAgent, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
