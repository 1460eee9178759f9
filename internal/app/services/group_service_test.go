package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeegr/singular/internal/app/models"
	"github.com/yeegr/singular/internal/pkg/apperrors"
)

type fakeGroupStore struct {
	groups       map[int64]*models.Group
	bySlug       map[string]int64
	nextGroupID  int64
	nextMemberID int64
}

func newFakeGroupStore() *fakeGroupStore {
	return &fakeGroupStore{
		groups: make(map[int64]*models.Group),
		bySlug: make(map[string]int64),
	}
}

func (f *fakeGroupStore) Create(_ context.Context, group *models.Group, creator models.ActorRef, alias string) error {
	if _, taken := f.bySlug[group.Slug]; taken {
		return fmt.Errorf("%w: %q", apperrors.ErrSlugTaken, group.Slug)
	}
	f.nextGroupID++
	f.nextMemberID++
	group.ID = f.nextGroupID
	group.Members = []models.Member{{
		ID:        f.nextMemberID,
		GroupID:   group.ID,
		UserID:    creator.ID,
		UserKind:  creator.Kind,
		IsCreator: true,
		IsManager: true,
		Alias:     alias,
		Status:    "active",
	}}
	stored := *group
	f.groups[group.ID] = &stored
	f.bySlug[group.Slug] = group.ID
	return nil
}

func (f *fakeGroupStore) GetBySlug(_ context.Context, slug string) (*models.Group, error) {
	id, ok := f.bySlug[slug]
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrGroupNotFound, slug)
	}
	copied := *f.groups[id]
	return &copied, nil
}

func (f *fakeGroupStore) GetByID(_ context.Context, id int64) (*models.Group, error) {
	group, ok := f.groups[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", apperrors.ErrGroupNotFound, id)
	}
	copied := *group
	return &copied, nil
}

func (f *fakeGroupStore) Update(_ context.Context, id int64, title string, membership models.MembershipSetting) error {
	group, ok := f.groups[id]
	if !ok {
		return fmt.Errorf("%w: id %d", apperrors.ErrGroupNotFound, id)
	}
	group.Title = title
	group.Membership = membership
	return nil
}

func (f *fakeGroupStore) Delete(_ context.Context, id int64) error {
	group, ok := f.groups[id]
	if !ok {
		return fmt.Errorf("%w: id %d", apperrors.ErrGroupNotFound, id)
	}
	if len(group.Members) > 1 {
		return fmt.Errorf("%w: %d members remain", apperrors.ErrGroupNotEmpty, len(group.Members))
	}
	delete(f.bySlug, group.Slug)
	delete(f.groups, id)
	return nil
}

func (f *fakeGroupStore) InsertMember(_ context.Context, member *models.Member) error {
	group, ok := f.groups[member.GroupID]
	if !ok {
		return fmt.Errorf("%w: id %d", apperrors.ErrGroupNotFound, member.GroupID)
	}
	if group.MemberOf(member.User()) != nil {
		return fmt.Errorf("%w: %s", apperrors.ErrAlreadyMember, member.User())
	}
	f.nextMemberID++
	member.ID = f.nextMemberID
	group.Members = append(group.Members, *member)
	return nil
}

func (f *fakeGroupStore) DeleteMember(_ context.Context, groupID int64, user models.ActorRef) (bool, error) {
	group, ok := f.groups[groupID]
	if !ok {
		return false, nil
	}
	for i, m := range group.Members {
		if m.User() == user && !m.IsManager {
			group.Members = append(group.Members[:i], group.Members[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeGroupStore) TransferManager(_ context.Context, groupID int64, from, to models.ActorRef) error {
	group, ok := f.groups[groupID]
	if !ok {
		return fmt.Errorf("%w: id %d", apperrors.ErrGroupNotFound, groupID)
	}
	var fromIdx, toIdx = -1, -1
	for i, m := range group.Members {
		if m.User() == from && m.IsManager {
			fromIdx = i
		}
		if m.User() == to {
			toIdx = i
		}
	}
	if fromIdx < 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrNotGroupManager, from)
	}
	if toIdx < 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrCandidateNotFound, to)
	}
	group.Members[fromIdx].IsManager = false
	group.Members[toIdx].IsManager = true
	return nil
}

func newGroupFixture(t *testing.T) (*GroupService, models.ActorRef, *models.Group) {
	t.Helper()
	svc := NewGroupService(newFakeGroupStore(), zerolog.Nop())
	creator := models.ActorRef{ID: 1, Kind: models.ActorConsumer}
	group, err := svc.CreateGroup(context.Background(), creator, "Gophers", "gophers", models.MembershipOpen, "lead")
	require.NoError(t, err)
	return svc, creator, group
}

func TestGroupCreate(t *testing.T) {
	svc, creator, group := newGroupFixture(t)

	t.Run("creator joins as manager", func(t *testing.T) {
		require.Len(t, group.Members, 1)
		member := group.MemberOf(creator)
		require.NotNil(t, member)
		assert.True(t, member.IsCreator)
		assert.True(t, member.IsManager)
	})

	t.Run("membership defaults to open", func(t *testing.T) {
		created, err := svc.CreateGroup(context.Background(), creator, "Rustaceans", "rustaceans", "", "")
		require.NoError(t, err)
		assert.Equal(t, models.MembershipOpen, created.Membership)
	})

	t.Run("slug collisions are reported", func(t *testing.T) {
		_, err := svc.CreateGroup(context.Background(), creator, "Gophers Again", "gophers", models.MembershipOpen, "")
		assert.ErrorIs(t, err, apperrors.ErrSlugTaken)
	})
}

func TestGroupJoinAndLeave(t *testing.T) {
	joiner := models.ActorRef{ID: 2, Kind: models.ActorConsumer}

	t.Run("anyone may join an open group once", func(t *testing.T) {
		svc, _, _ := newGroupFixture(t)

		_, err := svc.Join(context.Background(), "gophers", joiner, "newbie")
		require.NoError(t, err)

		_, err = svc.Join(context.Background(), "gophers", joiner, "newbie")
		assert.ErrorIs(t, err, apperrors.ErrAlreadyMember)
	})

	t.Run("managed groups reject self-joins", func(t *testing.T) {
		svc, creator, _ := newGroupFixture(t)
		_, err := svc.UpdateGroup(context.Background(), "gophers", creator, "", models.MembershipManaged)
		require.NoError(t, err)

		_, err = svc.Join(context.Background(), "gophers", joiner, "")
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

		// The manager can still add members directly
		_, err = svc.AddMember(context.Background(), "gophers", creator, joiner, "")
		assert.NoError(t, err)
	})

	t.Run("any member of an open group may add a candidate", func(t *testing.T) {
		svc, _, _ := newGroupFixture(t)
		_, err := svc.Join(context.Background(), "gophers", joiner, "")
		require.NoError(t, err)

		candidate := models.ActorRef{ID: 3, Kind: models.ActorConsumer}
		_, err = svc.AddMember(context.Background(), "gophers", joiner, candidate, "")
		require.NoError(t, err)

		group, err := svc.GetGroup(context.Background(), "gophers")
		require.NoError(t, err)
		assert.NotNil(t, group.MemberOf(candidate))

		// A non-member still cannot vouch for anyone
		stranger := models.ActorRef{ID: 99, Kind: models.ActorConsumer}
		_, err = svc.AddMember(context.Background(), "gophers", stranger, models.ActorRef{ID: 4, Kind: models.ActorConsumer}, "")
		assert.ErrorIs(t, err, apperrors.ErrNotGroupMember)
	})

	t.Run("managed groups keep adding behind the manager", func(t *testing.T) {
		svc, creator, _ := newGroupFixture(t)
		_, err := svc.UpdateGroup(context.Background(), "gophers", creator, "", models.MembershipManaged)
		require.NoError(t, err)
		_, err = svc.AddMember(context.Background(), "gophers", creator, joiner, "")
		require.NoError(t, err)

		candidate := models.ActorRef{ID: 3, Kind: models.ActorConsumer}
		_, err = svc.AddMember(context.Background(), "gophers", joiner, candidate, "")
		assert.ErrorIs(t, err, apperrors.ErrNotGroupManager)
	})

	t.Run("members may leave, the manager may not", func(t *testing.T) {
		svc, creator, _ := newGroupFixture(t)
		_, err := svc.Join(context.Background(), "gophers", joiner, "")
		require.NoError(t, err)

		require.NoError(t, svc.Leave(context.Background(), "gophers", joiner))
		assert.ErrorIs(t, svc.Leave(context.Background(), "gophers", joiner), apperrors.ErrNotGroupMember)
		assert.ErrorIs(t, svc.Leave(context.Background(), "gophers", creator), apperrors.ErrCannotRemoveManager)
	})
}

func TestGroupKick(t *testing.T) {
	member := models.ActorRef{ID: 2, Kind: models.ActorConsumer}

	t.Run("managers may kick regular members", func(t *testing.T) {
		svc, creator, _ := newGroupFixture(t)
		_, err := svc.Join(context.Background(), "gophers", member, "")
		require.NoError(t, err)

		require.NoError(t, svc.KickMember(context.Background(), "gophers", creator, member))
	})

	t.Run("non-managers may not kick", func(t *testing.T) {
		svc, _, _ := newGroupFixture(t)
		_, err := svc.Join(context.Background(), "gophers", member, "")
		require.NoError(t, err)

		other := models.ActorRef{ID: 3, Kind: models.ActorConsumer}
		_, err = svc.Join(context.Background(), "gophers", other, "")
		require.NoError(t, err)

		assert.ErrorIs(t, svc.KickMember(context.Background(), "gophers", other, member), apperrors.ErrNotGroupManager)
	})

	t.Run("the manager row is untouchable", func(t *testing.T) {
		svc, creator, _ := newGroupFixture(t)
		_, err := svc.Join(context.Background(), "gophers", member, "")
		require.NoError(t, err)

		assert.ErrorIs(t, svc.KickMember(context.Background(), "gophers", creator, creator), apperrors.ErrCannotRemoveManager)
	})
}

func TestGroupTransferManager(t *testing.T) {
	member := models.ActorRef{ID: 2, Kind: models.ActorConsumer}

	t.Run("hands the role to another member", func(t *testing.T) {
		svc, creator, _ := newGroupFixture(t)
		_, err := svc.Join(context.Background(), "gophers", member, "")
		require.NoError(t, err)

		require.NoError(t, svc.TransferManager(context.Background(), "gophers", creator, member))

		group, err := svc.GetGroup(context.Background(), "gophers")
		require.NoError(t, err)
		assert.False(t, group.MemberOf(creator).IsManager)
		assert.True(t, group.MemberOf(member).IsManager)

		// The old manager can leave now
		assert.NoError(t, svc.Leave(context.Background(), "gophers", creator))
	})

	t.Run("the candidate must already be a member", func(t *testing.T) {
		svc, creator, _ := newGroupFixture(t)

		stranger := models.ActorRef{ID: 99, Kind: models.ActorConsumer}
		assert.ErrorIs(t, svc.TransferManager(context.Background(), "gophers", creator, stranger), apperrors.ErrCandidateNotFound)
	})

	t.Run("self-transfer is rejected", func(t *testing.T) {
		svc, creator, _ := newGroupFixture(t)

		assert.ErrorIs(t, svc.TransferManager(context.Background(), "gophers", creator, creator), apperrors.ErrBadRequest)
	})
}

func TestGroupDelete(t *testing.T) {
	member := models.ActorRef{ID: 2, Kind: models.ActorConsumer}

	t.Run("only the manager may delete", func(t *testing.T) {
		svc, _, _ := newGroupFixture(t)
		_, err := svc.Join(context.Background(), "gophers", member, "")
		require.NoError(t, err)

		assert.ErrorIs(t, svc.DeleteGroup(context.Background(), "gophers", member), apperrors.ErrNotGroupManager)
	})

	t.Run("the manager role carries deletion after a transfer", func(t *testing.T) {
		svc, creator, _ := newGroupFixture(t)
		_, err := svc.Join(context.Background(), "gophers", member, "")
		require.NoError(t, err)

		require.NoError(t, svc.TransferManager(context.Background(), "gophers", creator, member))
		require.NoError(t, svc.Leave(context.Background(), "gophers", creator))

		require.NoError(t, svc.DeleteGroup(context.Background(), "gophers", member))

		_, err = svc.GetGroup(context.Background(), "gophers")
		assert.ErrorIs(t, err, apperrors.ErrGroupNotFound)
	})

	t.Run("a populated group refuses deletion", func(t *testing.T) {
		svc, creator, _ := newGroupFixture(t)
		_, err := svc.Join(context.Background(), "gophers", member, "")
		require.NoError(t, err)

		assert.ErrorIs(t, svc.DeleteGroup(context.Background(), "gophers", creator), apperrors.ErrGroupNotEmpty)
	})

	t.Run("an emptied group deletes cleanly", func(t *testing.T) {
		svc, creator, _ := newGroupFixture(t)
		_, err := svc.Join(context.Background(), "gophers", member, "")
		require.NoError(t, err)

		require.NoError(t, svc.Leave(context.Background(), "gophers", member))
		require.NoError(t, svc.DeleteGroup(context.Background(), "gophers", creator))

		_, err = svc.GetGroup(context.Background(), "gophers")
		assert.ErrorIs(t, err, apperrors.ErrGroupNotFound)
	})
}
