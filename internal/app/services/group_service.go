package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yeegr/singular/internal/app/models"
	"github.com/yeegr/singular/internal/pkg/apperrors"
)

// GroupStore is the persistence surface groups are managed through
type GroupStore interface {
	Create(ctx context.Context, group *models.Group, creator models.ActorRef, alias string) error
	GetBySlug(ctx context.Context, slug string) (*models.Group, error)
	GetByID(ctx context.Context, id int64) (*models.Group, error)
	Update(ctx context.Context, id int64, title string, membership models.MembershipSetting) error
	Delete(ctx context.Context, id int64) error
	InsertMember(ctx context.Context, member *models.Member) error
	DeleteMember(ctx context.Context, groupID int64, user models.ActorRef) (bool, error)
	TransferManager(ctx context.Context, groupID int64, from, to models.ActorRef) error
}

// GroupService manages groups and their membership rows. Membership is the
// single source of truth for who belongs where; there is no mirror list to
// keep in step.
type GroupService struct {
	groups GroupStore
	logger zerolog.Logger
}

// NewGroupService creates a new GroupService
func NewGroupService(groups GroupStore, logger zerolog.Logger) *GroupService {
	return &GroupService{
		groups: groups,
		logger: logger,
	}
}

// CreateGroup creates a group with the caller as its creator and manager
func (s *GroupService) CreateGroup(ctx context.Context, creator models.ActorRef, title, slug string, membership models.MembershipSetting, alias string) (*models.Group, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title cannot be empty", apperrors.ErrValidationFailed)
	}
	if slug == "" {
		return nil, fmt.Errorf("%w: slug cannot be empty", apperrors.ErrValidationFailed)
	}
	if membership == "" {
		membership = models.MembershipOpen
	}
	if !membership.Valid() {
		return nil, fmt.Errorf("%w: unknown membership setting %q", apperrors.ErrValidationFailed, membership)
	}

	group := &models.Group{
		Title:      title,
		Slug:       slug,
		Status:     models.GroupActive,
		Membership: membership,
	}
	if err := s.groups.Create(ctx, group, creator, alias); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("groupId", group.ID).Str("slug", slug).Msg("Group created")
	return group, nil
}

// GetGroup retrieves a group with its members
func (s *GroupService) GetGroup(ctx context.Context, slug string) (*models.Group, error) {
	return s.groups.GetBySlug(ctx, slug)
}

// UpdateGroup modifies a group's title or membership setting. Managers only.
func (s *GroupService) UpdateGroup(ctx context.Context, slug string, actor models.ActorRef, title string, membership models.MembershipSetting) (*models.Group, error) {
	group, err := s.groups.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := s.requireManager(group, actor); err != nil {
		return nil, err
	}

	if title = strings.TrimSpace(title); title == "" {
		title = group.Title
	}
	if membership == "" {
		membership = group.Membership
	}
	if !membership.Valid() {
		return nil, fmt.Errorf("%w: unknown membership setting %q", apperrors.ErrValidationFailed, membership)
	}

	if err := s.groups.Update(ctx, group.ID, title, membership); err != nil {
		return nil, err
	}
	return s.groups.GetByID(ctx, group.ID)
}

// DeleteGroup removes a group. Only its current manager may delete it, and
// only while no other members remain.
func (s *GroupService) DeleteGroup(ctx context.Context, slug string, actor models.ActorRef) error {
	group, err := s.groups.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if err := s.requireManager(group, actor); err != nil {
		return err
	}

	return s.groups.Delete(ctx, group.ID)
}

// Join adds the caller to an open group
func (s *GroupService) Join(ctx context.Context, slug string, actor models.ActorRef, alias string) (*models.Member, error) {
	group, err := s.groups.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if group.Membership != models.MembershipOpen {
		return nil, fmt.Errorf("%w: group %q is not open for joining", apperrors.ErrPermissionDenied, slug)
	}

	member := &models.Member{
		GroupID:  group.ID,
		UserID:   actor.ID,
		UserKind: actor.Kind,
		Alias:    alias,
		Status:   "active",
	}
	if err := s.groups.InsertMember(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// AddMember adds a user to a group on another member's behalf. Managed groups
// restrict this to the manager; in an open group any current member may bring
// a candidate in.
func (s *GroupService) AddMember(ctx context.Context, slug string, actor, user models.ActorRef, alias string) (*models.Member, error) {
	group, err := s.groups.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if group.Membership == models.MembershipManaged {
		if err := s.requireManager(group, actor); err != nil {
			return nil, err
		}
	} else if group.MemberOf(actor) == nil {
		return nil, fmt.Errorf("%w: %s in group %q", apperrors.ErrNotGroupMember, actor, slug)
	}

	member := &models.Member{
		GroupID:  group.ID,
		UserID:   user.ID,
		UserKind: user.Kind,
		Alias:    alias,
		Status:   "active",
	}
	if err := s.groups.InsertMember(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// Leave removes the caller from a group. The manager cannot leave; the role
// has to be transferred first.
func (s *GroupService) Leave(ctx context.Context, slug string, actor models.ActorRef) error {
	group, err := s.groups.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}

	member := group.MemberOf(actor)
	if member == nil {
		return fmt.Errorf("%w: %s in group %q", apperrors.ErrNotGroupMember, actor, slug)
	}
	if member.IsManager {
		return fmt.Errorf("%w: transfer the manager role before leaving", apperrors.ErrCannotRemoveManager)
	}

	removed, err := s.groups.DeleteMember(ctx, group.ID, actor)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%w: %s in group %q", apperrors.ErrNotGroupMember, actor, slug)
	}
	return nil
}

// KickMember removes another member on a manager's behalf. The manager row
// itself can never be kicked.
func (s *GroupService) KickMember(ctx context.Context, slug string, actor, user models.ActorRef) error {
	group, err := s.groups.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if err := s.requireManager(group, actor); err != nil {
		return err
	}

	member := group.MemberOf(user)
	if member == nil {
		return fmt.Errorf("%w: %s in group %q", apperrors.ErrNotGroupMember, user, slug)
	}
	if member.IsManager {
		return fmt.Errorf("%w: the manager cannot be kicked", apperrors.ErrCannotRemoveManager)
	}

	removed, err := s.groups.DeleteMember(ctx, group.ID, user)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%w: %s in group %q", apperrors.ErrNotGroupMember, user, slug)
	}
	return nil
}

// TransferManager hands the manager role to another member
func (s *GroupService) TransferManager(ctx context.Context, slug string, actor, to models.ActorRef) error {
	group, err := s.groups.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if err := s.requireManager(group, actor); err != nil {
		return err
	}
	if actor == to {
		return fmt.Errorf("%w: %s already holds the manager role", apperrors.ErrBadRequest, actor)
	}

	return s.groups.TransferManager(ctx, group.ID, actor, to)
}

func (s *GroupService) requireManager(group *models.Group, actor models.ActorRef) error {
	member := group.MemberOf(actor)
	if member == nil {
		return fmt.Errorf("%w: %s in group %q", apperrors.ErrNotGroupMember, actor, group.Slug)
	}
	if !member.IsManager {
		return fmt.Errorf("%w: %s in group %q", apperrors.ErrNotGroupManager, actor, group.Slug)
	}
	return nil
}
