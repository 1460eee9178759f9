package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yeegr/singular/internal/app/models"
	"github.com/yeegr/singular/internal/pkg/apperrors"
	"github.com/yeegr/singular/internal/pkg/dberrors"
)

// GroupMemberUniqueConstraint is the unique constraint guarding one membership
// row per user per group.
const GroupMemberUniqueConstraint = "group_members_group_user_key"

var groupColumns = []string{
	"id", "title", "slug", "status", "membership", "created_at", "updated_at",
}

var memberColumns = []string{
	"id", "group_id", "user_id", "user_kind", "is_creator", "is_manager", "alias", "status", "joined_at",
}

// GroupRepository handles database operations for groups and their members
type GroupRepository struct {
	db *pgxpool.Pool
}

// NewGroupRepository creates a new GroupRepository
func NewGroupRepository(db *pgxpool.Pool) *GroupRepository {
	return &GroupRepository{db: db}
}

// Create inserts a group together with its creator's membership row. The
// creator joins as both creator and manager.
func (r *GroupRepository) Create(ctx context.Context, group *models.Group, creator models.ActorRef, alias string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO groups (title, slug, status, membership)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		group.Title, group.Slug, group.Status, group.Membership,
	).Scan(&group.ID, &group.CreatedAt, &group.UpdatedAt)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %q", apperrors.ErrSlugTaken, group.Slug)
		}
		return err
	}

	member := models.Member{
		GroupID:   group.ID,
		UserID:    creator.ID,
		UserKind:  creator.Kind,
		IsCreator: true,
		IsManager: true,
		Alias:     alias,
		Status:    "active",
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO group_members (group_id, user_id, user_kind, is_creator, is_manager, alias, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, joined_at`,
		member.GroupID, member.UserID, member.UserKind, member.IsCreator, member.IsManager, member.Alias, member.Status,
	).Scan(&member.ID, &member.JoinedAt)
	if err != nil {
		return err
	}
	group.Members = []models.Member{member}

	return tx.Commit(ctx)
}

// GetBySlug retrieves a group and all of its members
func (r *GroupRepository) GetBySlug(ctx context.Context, slug string) (*models.Group, error) {
	sql := fmt.Sprintf("SELECT %s FROM groups WHERE slug = $1", joinColumns(groupColumns))

	var g models.Group
	err := r.db.QueryRow(ctx, sql, slug).Scan(
		&g.ID, &g.Title, &g.Slug, &g.Status, &g.Membership, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("%w: %q", apperrors.ErrGroupNotFound, slug)
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	if err := r.loadMembers(ctx, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// GetByID retrieves a group and all of its members
func (r *GroupRepository) GetByID(ctx context.Context, id int64) (*models.Group, error) {
	sql := fmt.Sprintf("SELECT %s FROM groups WHERE id = $1", joinColumns(groupColumns))

	var g models.Group
	err := r.db.QueryRow(ctx, sql, id).Scan(
		&g.ID, &g.Title, &g.Slug, &g.Status, &g.Membership, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("%w: id %d", apperrors.ErrGroupNotFound, id)
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	if err := r.loadMembers(ctx, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GroupRepository) loadMembers(ctx context.Context, g *models.Group) error {
	sql := fmt.Sprintf(`
		SELECT %s FROM group_members
		WHERE group_id = $1
		ORDER BY joined_at ASC, id ASC`, joinColumns(memberColumns))

	rows, err := r.db.Query(ctx, sql, g.ID)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.ID, &m.GroupID, &m.UserID, &m.UserKind,
			&m.IsCreator, &m.IsManager, &m.Alias, &m.Status, &m.JoinedAt); err != nil {
			return fmt.Errorf("error scanning row: %w", err)
		}
		g.Members = append(g.Members, m)
	}
	return rows.Err()
}

// Update modifies a group's mutable fields
func (r *GroupRepository) Update(ctx context.Context, id int64, title string, membership models.MembershipSetting) error {
	query := squirrel.Update("groups").
		Set("title", title).
		Set("membership", membership).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
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
		return fmt.Errorf("%w: id %d", apperrors.ErrGroupNotFound, id)
	}
	return nil
}

// Delete removes a group only while its creator is the sole remaining member.
// The group row is locked first so a concurrent join cannot slip in between
// the count and the delete.
func (r *GroupRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var locked int64
	err = tx.QueryRow(ctx, "SELECT id FROM groups WHERE id = $1 FOR UPDATE", id).Scan(&locked)
	if err != nil {
		if isNoRows(err) {
			return fmt.Errorf("%w: id %d", apperrors.ErrGroupNotFound, id)
		}
		return fmt.Errorf("error executing query: %w", err)
	}

	var memberCount int
	err = tx.QueryRow(ctx, "SELECT COUNT(*) FROM group_members WHERE group_id = $1", id).Scan(&memberCount)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	if memberCount > 1 {
		return fmt.Errorf("%w: %d members remain", apperrors.ErrGroupNotEmpty, memberCount)
	}

	if _, err := tx.Exec(ctx, "DELETE FROM group_members WHERE group_id = $1", id); err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM groups WHERE id = $1", id); err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	return tx.Commit(ctx)
}

// InsertMember adds a membership row. A duplicate join maps to
// ErrAlreadyMember.
func (r *GroupRepository) InsertMember(ctx context.Context, member *models.Member) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO group_members (group_id, user_id, user_kind, is_creator, is_manager, alias, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, joined_at`,
		member.GroupID, member.UserID, member.UserKind, member.IsCreator, member.IsManager, member.Alias, member.Status,
	).Scan(&member.ID, &member.JoinedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, GroupMemberUniqueConstraint) {
			return fmt.Errorf("%w: %s in group %d", apperrors.ErrAlreadyMember, member.User(), member.GroupID)
		}
		return err
	}
	return nil
}

// FindMember retrieves a user's membership row in a group
func (r *GroupRepository) FindMember(ctx context.Context, groupID int64, user models.ActorRef) (*models.Member, error) {
	sql := fmt.Sprintf(`
		SELECT %s FROM group_members
		WHERE group_id = $1 AND user_id = $2 AND user_kind = $3`, joinColumns(memberColumns))

	var m models.Member
	err := r.db.QueryRow(ctx, sql, groupID, user.ID, user.Kind).Scan(
		&m.ID, &m.GroupID, &m.UserID, &m.UserKind,
		&m.IsCreator, &m.IsManager, &m.Alias, &m.Status, &m.JoinedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("%w: %s in group %d", apperrors.ErrNotGroupMember, user, groupID)
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	return &m, nil
}

// DeleteMember removes a non-manager membership row and reports whether a row
// was removed. Manager rows never match, so removing a manager is a silent
// zero regardless of who asks.
func (r *GroupRepository) DeleteMember(ctx context.Context, groupID int64, user models.ActorRef) (bool, error) {
	result, err := r.db.Exec(ctx, `
		DELETE FROM group_members
		WHERE group_id = $1 AND user_id = $2 AND user_kind = $3 AND is_manager = FALSE`,
		groupID, user.ID, user.Kind)
	if err != nil {
		return false, fmt.Errorf("error executing query: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// TransferManager atomically moves the manager flag from one member to
// another. Both rows must exist; the source must currently hold the flag.
func (r *GroupRepository) TransferManager(ctx context.Context, groupID int64, from, to models.ActorRef) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, `
		UPDATE group_members SET is_manager = FALSE
		WHERE group_id = $1 AND user_id = $2 AND user_kind = $3 AND is_manager = TRUE`,
		groupID, from.ID, from.Kind)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s in group %d", apperrors.ErrNotGroupManager, from, groupID)
	}

	result, err = tx.Exec(ctx, `
		UPDATE group_members SET is_manager = TRUE
		WHERE group_id = $1 AND user_id = $2 AND user_kind = $3`,
		groupID, to.ID, to.Kind)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s in group %d", apperrors.ErrCandidateNotFound, to, groupID)
	}

	return tx.Commit(ctx)
}
