package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yeegr/singular/internal/app/models"
	"github.com/yeegr/singular/internal/pkg/apperrors"
)

var commentColumns = []string{
	"id", "creator_id", "creator_kind", "target_id", "target_kind",
	"parent_id", "rating", "rating_diff", "content", "created_at", "updated_at",
}

// CommentRepository handles database operations for comments
type CommentRepository struct {
	db *pgxpool.Pool
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{db: db}
}

// commentInsert builds the INSERT for a new comment. rating_diff must ride
// along with rating so later edits and removals reverse the stored value, not
// the column default.
func commentInsert(comment *models.Comment) squirrel.InsertBuilder {
	return squirrel.Insert("comments").
		Columns("creator_id", "creator_kind", "target_id", "target_kind",
			"parent_id", "rating", "rating_diff", "content").
		Values(comment.CreatorID, comment.CreatorKind, comment.TargetID, comment.TargetKind,
			comment.ParentID, comment.Rating, comment.RatingDiff, comment.Content).
		Suffix("RETURNING id, created_at, updated_at").
		PlaceholderFormat(squirrel.Dollar)
}

// Create persists a new comment
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	sql, args, err := commentInsert(comment).ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt); err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	return nil
}

// GetByID retrieves a comment by ID
func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	query := squirrel.Select(commentColumns...).
		From("comments").
		Where("id = ?", id).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var c models.Comment
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&c.ID, &c.CreatorID, &c.CreatorKind, &c.TargetID, &c.TargetKind,
		&c.ParentID, &c.Rating, &c.RatingDiff, &c.Content, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("%w: comment %d", apperrors.ErrCommentNotFound, id)
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return &c, nil
}

// Update rewrites a comment's content and rating, storing the rating diff of
// this edit. Only the creator's own comment matches.
func (r *CommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	query := squirrel.Update("comments").
		Set("content", comment.Content).
		Set("rating", comment.Rating).
		Set("rating_diff", comment.RatingDiff).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where("id = ?", comment.ID).
		Where("creator_id = ? AND creator_kind = ?", comment.CreatorID, comment.CreatorKind).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	result, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: comment %d", apperrors.ErrCommentNotFound, comment.ID)
	}

	return nil
}

// Delete removes a comment owned by the creator and returns the removed row
// so the caller can reverse its aggregate contribution.
func (r *CommentRepository) Delete(ctx context.Context, id int64, creator models.ActorRef) (*models.Comment, error) {
	query := squirrel.Delete("comments").
		Where("id = ?", id).
		Where("creator_id = ? AND creator_kind = ?", creator.ID, creator.Kind).
		Suffix("RETURNING " + joinColumns(commentColumns)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var c models.Comment
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&c.ID, &c.CreatorID, &c.CreatorKind, &c.TargetID, &c.TargetKind,
		&c.ParentID, &c.Rating, &c.RatingDiff, &c.Content, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("%w: comment %d", apperrors.ErrCommentNotFound, id)
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return &c, nil
}

// ListByTarget retrieves comments against a target, newest first.
func (r *CommentRepository) ListByTarget(ctx context.Context, target models.TargetRef, page, pageSize int) ([]models.Comment, error) {
	query := squirrel.Select(commentColumns...).
		From("comments").
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

	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(
			&c.ID, &c.CreatorID, &c.CreatorKind, &c.TargetID, &c.TargetKind,
			&c.ParentID, &c.Rating, &c.RatingDiff, &c.Content, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		comments = append(comments, c)
	}

	return comments, rows.Err()
}
