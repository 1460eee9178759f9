package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yeegr/singular/internal/app/models"
	"github.com/yeegr/singular/internal/pkg/apperrors"
)

var contentColumns = []string{
	"id", "creator_id", "creator_kind", "title", "slug", "excerpt", "body",
	"status", "comment_setting",
	"view_count", "like_count", "dislike_count", "save_count", "share_count",
	"follow_count", "download_count", "comment_count", "total_rating",
	"created_at", "updated_at",
}

// ContentRepository handles database operations for posts and events. Both
// tables share the same column surface; the kind tag selects the table.
type ContentRepository struct {
	db *pgxpool.Pool
}

// NewContentRepository creates a new ContentRepository
func NewContentRepository(db *pgxpool.Pool) *ContentRepository {
	return &ContentRepository{db: db}
}

func contentTable(kind models.TargetKind) (string, error) {
	switch kind {
	case models.TargetPost:
		return "posts", nil
	case models.TargetEvent:
		return "events", nil
	}
	return "", fmt.Errorf("%w: %q is not a content kind", apperrors.ErrUnknownTargetKind, kind)
}

func scanContent(row pgx.Row, kind models.TargetKind) (*models.Content, error) {
	var c models.Content
	c.Kind = kind
	err := row.Scan(
		&c.ID, &c.CreatorID, &c.CreatorKind, &c.Title, &c.Slug, &c.Excerpt, &c.Body,
		&c.Status, &c.CommentSetting,
		&c.ViewCount, &c.LikeCount, &c.DislikeCount, &c.SaveCount, &c.ShareCount,
		&c.FollowCount, &c.DownloadCount, &c.CommentCount, &c.TotalRating,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create persists a new content entity
func (r *ContentRepository) Create(ctx context.Context, content *models.Content) error {
	table, err := contentTable(content.Kind)
	if err != nil {
		return err
	}

	query := squirrel.Insert(table).
		Columns("creator_id", "creator_kind", "title", "slug", "excerpt", "body", "status", "comment_setting").
		Values(content.CreatorID, content.CreatorKind, content.Title, content.Slug,
			content.Excerpt, content.Body, content.Status, content.CommentSetting).
		Suffix("RETURNING id, created_at, updated_at").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&content.ID, &content.CreatedAt, &content.UpdatedAt); err != nil {
		return err
	}

	return nil
}

// GetBySlug retrieves a content entity by slug, atomically bumping its view
// counter in the same statement when the entity is approved.
func (r *ContentRepository) GetBySlug(ctx context.Context, kind models.TargetKind, slug string, countView bool) (*models.Content, error) {
	table, err := contentTable(kind)
	if err != nil {
		return nil, err
	}

	var sql string
	if countView {
		sql = fmt.Sprintf(`
			UPDATE %s SET view_count = view_count + 1
			WHERE slug = $1 AND status = $2
			RETURNING %s`, table, joinColumns(contentColumns))
	} else {
		sql = fmt.Sprintf(`
			SELECT %s FROM %s
			WHERE slug = $1 AND status = $2`, joinColumns(contentColumns), table)
	}

	content, err := scanContent(r.db.QueryRow(ctx, sql, slug, models.ContentApproved), kind)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("%w: %s %q", apperrors.ErrContentNotFound, kind, slug)
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return content, nil
}

// GetOwnedBySlug retrieves a content entity by slug regardless of status,
// restricted to its creator.
func (r *ContentRepository) GetOwnedBySlug(ctx context.Context, kind models.TargetKind, slug string, creator models.ActorRef) (*models.Content, error) {
	table, err := contentTable(kind)
	if err != nil {
		return nil, err
	}

	sql := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE slug = $1 AND creator_id = $2 AND creator_kind = $3`,
		joinColumns(contentColumns), table)

	content, err := scanContent(r.db.QueryRow(ctx, sql, slug, creator.ID, creator.Kind), kind)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("%w: %s %q", apperrors.ErrContentNotFound, kind, slug)
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return content, nil
}

// SetStatusIf transitions a content entity's status conditionally on its
// current status and reports whether the transition applied.
func (r *ContentRepository) SetStatusIf(ctx context.Context, kind models.TargetKind, id int64, from, to models.ContentStatus) (bool, error) {
	table, err := contentTable(kind)
	if err != nil {
		return false, err
	}

	result, err := r.db.Exec(ctx,
		fmt.Sprintf("UPDATE %s SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3", table),
		to, id, from)
	if err != nil {
		return false, fmt.Errorf("error executing query: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// Delete removes a content entity owned by the creator and reports whether a
// row existed.
func (r *ContentRepository) Delete(ctx context.Context, kind models.TargetKind, slug string, creator models.ActorRef) (*models.Content, error) {
	table, err := contentTable(kind)
	if err != nil {
		return nil, err
	}

	sql := fmt.Sprintf(`
		DELETE FROM %s
		WHERE slug = $1 AND creator_id = $2 AND creator_kind = $3
		RETURNING %s`, table, joinColumns(contentColumns))

	content, err := scanContent(r.db.QueryRow(ctx, sql, slug, creator.ID, creator.Kind), kind)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("%w: %s %q", apperrors.ErrContentNotFound, kind, slug)
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return content, nil
}

// List retrieves approved content entities, newest first.
func (r *ContentRepository) List(ctx context.Context, kind models.TargetKind, page, pageSize int) ([]models.Content, int64, error) {
	table, err := contentTable(kind)
	if err != nil {
		return nil, 0, err
	}

	sql := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total_count FROM %s
		WHERE status = $1
		ORDER BY id DESC
		LIMIT $2 OFFSET $3`, joinColumns(contentColumns), table)

	rows, err := r.db.Query(ctx, sql, models.ContentApproved, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var items []models.Content
	var total int64
	for rows.Next() {
		var c models.Content
		c.Kind = kind
		if err := rows.Scan(
			&c.ID, &c.CreatorID, &c.CreatorKind, &c.Title, &c.Slug, &c.Excerpt, &c.Body,
			&c.Status, &c.CommentSetting,
			&c.ViewCount, &c.LikeCount, &c.DislikeCount, &c.SaveCount, &c.ShareCount,
			&c.FollowCount, &c.DownloadCount, &c.CommentCount, &c.TotalRating,
			&c.CreatedAt, &c.UpdatedAt,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("error scanning row: %w", err)
		}
		items = append(items, c)
	}

	return items, total, rows.Err()
}
