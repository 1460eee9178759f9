package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yeegr/singular/internal/app/models"
	"github.com/yeegr/singular/internal/pkg/apperrors"
)

// TargetMeta is the slice of a target the core components need: who created
// it, where it stands, and whether comments feed its aggregates.
type TargetMeta struct {
	Ref            models.TargetRef
	CreatorID      int64
	CreatorKind    models.ActorKind
	Status         string
	CommentSetting models.CommentSetting
}

// TargetStore is the capability set a concrete target kind exposes to the
// core. One implementation exists per backing table, selected via the kind
// tag; counters are always applied as atomic deltas, never read-modify-write.
type TargetStore interface {
	FindMeta(ctx context.Context, id int64) (*TargetMeta, error)
	IncrementCounter(ctx context.Context, id int64, counter models.Counter, delta int) error
	SetStatus(ctx context.Context, id int64, status string) error
}

// TargetRegistry maps a target kind tag to its store.
type TargetRegistry struct {
	stores map[models.TargetKind]TargetStore
}

// NewTargetRegistry wires a store for every known target kind.
func NewTargetRegistry(db *pgxpool.Pool) *TargetRegistry {
	full := counterColumns()
	return &TargetRegistry{
		stores: map[models.TargetKind]TargetStore{
			models.TargetPost: &targetTable{
				db: db, kind: models.TargetPost, table: "posts",
				counters: full, hasCommentSetting: true,
			},
			models.TargetEvent: &targetTable{
				db: db, kind: models.TargetEvent, table: "events",
				counters: full, hasCommentSetting: true,
			},
			models.TargetComment: &targetTable{
				db: db, kind: models.TargetComment, table: "comments",
				counters: map[models.Counter]string{
					models.CounterLike:    "like_count",
					models.CounterDislike: "dislike_count",
				},
			},
			models.TargetActivity: &targetTable{
				db: db, kind: models.TargetActivity, table: "activities",
				statusColumn: "state",
			},
			models.TargetGroup: &targetTable{
				db: db, kind: models.TargetGroup, table: "groups",
				// The creator of a group lives on its membership row.
				metaQuery: `SELECT g.id, m.user_id, m.user_kind, g.status
					FROM groups g
					JOIN group_members m ON m.group_id = g.id AND m.is_creator
					WHERE g.id = $1`,
			},
		},
	}
}

// Store returns the store registered for the kind.
func (r *TargetRegistry) Store(kind models.TargetKind) (TargetStore, error) {
	store, ok := r.stores[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownTargetKind, kind)
	}
	return store, nil
}

// counterColumns maps the full counter surface to its columns.
func counterColumns() map[models.Counter]string {
	return map[models.Counter]string{
		models.CounterView:     "view_count",
		models.CounterLike:     "like_count",
		models.CounterDislike:  "dislike_count",
		models.CounterSave:     "save_count",
		models.CounterShare:    "share_count",
		models.CounterFollow:   "follow_count",
		models.CounterDownload: "download_count",
		models.CounterComment:  "comment_count",
		models.CounterRating:   "total_rating",
	}
}

// targetTable is the generic TargetStore over one backing table. The table
// and column names come from the registry wiring, never from callers.
type targetTable struct {
	db                *pgxpool.Pool
	kind              models.TargetKind
	table             string
	statusColumn      string
	metaQuery         string
	counters          map[models.Counter]string
	hasCommentSetting bool
}

func (t *targetTable) status() string {
	if t.statusColumn != "" {
		return t.statusColumn
	}
	return "status"
}

func (t *targetTable) FindMeta(ctx context.Context, id int64) (*TargetMeta, error) {
	query := t.metaQuery
	if query == "" {
		cols := "id, creator_id, creator_kind, " + t.status()
		if t.hasCommentSetting {
			cols += ", comment_setting"
		}
		query = fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", cols, t.table)
	}

	meta := &TargetMeta{Ref: models.TargetRef{Kind: t.kind}}
	dest := []interface{}{&meta.Ref.ID, &meta.CreatorID, &meta.CreatorKind, &meta.Status}
	if t.hasCommentSetting {
		dest = append(dest, &meta.CommentSetting)
	}

	err := t.db.QueryRow(ctx, query, id).Scan(dest...)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("%w: %s %d", apperrors.ErrResourceNotFound, t.kind, id)
		}
		return nil, fmt.Errorf("error finding %s %d: %w", t.kind, id, err)
	}

	return meta, nil
}

func (t *targetTable) IncrementCounter(ctx context.Context, id int64, counter models.Counter, delta int) error {
	col, ok := t.counters[counter]
	if !ok {
		return fmt.Errorf("%w: %q on %s", apperrors.ErrUnknownCounter, counter, t.kind)
	}

	// Plain decrements are guarded so a counter never drops below zero.
	// totalRating legitimately moves both ways by arbitrary amounts.
	guarded := delta < 0 && counter != models.CounterRating
	query := fmt.Sprintf("UPDATE %s SET %s = %s + $1 WHERE id = $2", t.table, col, col)
	if guarded {
		query += fmt.Sprintf(" AND %s > 0", col)
	}

	result, err := t.db.Exec(ctx, query, delta, id)
	if err != nil {
		return fmt.Errorf("error incrementing %s.%s: %w", t.table, col, err)
	}

	// A guarded decrement matching nothing means the guard held; that is a
	// silent no-op, not a failure.
	if result.RowsAffected() == 0 && !guarded {
		return fmt.Errorf("%w: %s %d", apperrors.ErrResourceNotFound, t.kind, id)
	}

	return nil
}

func (t *targetTable) SetStatus(ctx context.Context, id int64, status string) error {
	query := fmt.Sprintf("UPDATE %s SET %s = $1 WHERE id = $2", t.table, t.status())

	result, err := t.db.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("error setting %s.%s: %w", t.table, t.status(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s %d", apperrors.ErrResourceNotFound, t.kind, id)
	}

	return nil
}
