package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yeegr/singular/internal/app/models"
	"github.com/yeegr/singular/internal/pkg/apperrors"
)

// actorCounterColumns whitelists the creator aggregate counter columns.
var actorCounterColumns = map[models.ActorCounter]string{
	models.ActorCounterPost:    "post_count",
	models.ActorCounterEvent:   "event_count",
	models.ActorCounterComment: "comment_count",
}

// ConsumerRepository handles database operations for consumer accounts
type ConsumerRepository struct {
	db *pgxpool.Pool
}

// NewConsumerRepository creates a new ConsumerRepository
func NewConsumerRepository(db *pgxpool.Pool) *ConsumerRepository {
	return &ConsumerRepository{db: db}
}

// FindByID retrieves a consumer by ID
func (r *ConsumerRepository) FindByID(ctx context.Context, id int64) (*models.Consumer, error) {
	query := squirrel.Select("id", "handle", "status", "post_count", "event_count", "comment_count", "created_at").
		From("consumers").
		Where("id = ?", id).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var c models.Consumer
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&c.ID,
		&c.Handle,
		&c.Status,
		&c.PostCount,
		&c.EventCount,
		&c.CommentCount,
		&c.CreatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("%w: consumer %d", apperrors.ErrResourceNotFound, id)
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return &c, nil
}

// Exists reports whether an actor of the given kind exists.
func (r *ConsumerRepository) Exists(ctx context.Context, actor models.ActorRef) (bool, error) {
	table, err := actorTable(actor.Kind)
	if err != nil {
		return false, err
	}

	var one int
	err = r.db.QueryRow(ctx, fmt.Sprintf("SELECT 1 FROM %s WHERE id = $1", table), actor.ID).Scan(&one)
	if err != nil {
		if isNoRows(err) {
			return false, nil
		}
		return false, fmt.Errorf("error executing query: %w", err)
	}

	return true, nil
}

// IncrementCounter applies an atomic delta to one of the actor's aggregate
// counters. Decrements are conditional on the current value being positive so
// the counter never goes below zero.
func (r *ConsumerRepository) IncrementCounter(ctx context.Context, actor models.ActorRef, counter models.ActorCounter, delta int) error {
	col, ok := actorCounterColumns[counter]
	if !ok {
		return fmt.Errorf("%w: %q", apperrors.ErrUnknownCounter, counter)
	}

	table, err := actorTable(actor.Kind)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("UPDATE %s SET %s = %s + $1 WHERE id = $2", table, col, col)
	if delta < 0 {
		query += fmt.Sprintf(" AND %s > 0", col)
	}

	result, err := r.db.Exec(ctx, query, delta, actor.ID)
	if err != nil {
		return fmt.Errorf("error incrementing %s.%s: %w", table, col, err)
	}

	if result.RowsAffected() == 0 && delta >= 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrResourceNotFound, actor)
	}

	return nil
}

// actorTable resolves the backing table of an actor kind.
func actorTable(kind models.ActorKind) (string, error) {
	switch kind {
	case models.ActorConsumer:
		return "consumers", nil
	case models.ActorPlatform:
		return "platforms", nil
	}
	return "", fmt.Errorf("%w: %q", apperrors.ErrUnknownActorKind, kind)
}
