package models

import "time"

// GroupStatus is the lifecycle status of a group.
type GroupStatus string

const (
	GroupActive    GroupStatus = "active"
	GroupSuspended GroupStatus = "suspended"
)

// MembershipSetting controls who may add members to a group.
type MembershipSetting string

const (
	// MembershipOpen lets any current member add new members.
	MembershipOpen MembershipSetting = "open"
	// MembershipManaged restricts adding members to managers.
	MembershipManaged MembershipSetting = "managed"
)

// Valid reports whether the setting is a known membership setting.
func (m MembershipSetting) Valid() bool {
	return m == MembershipOpen || m == MembershipManaged
}

// Group is a user-created group. Exactly one member is the creator, set at
// creation time and immutable; at least one manager exists at all times.
type Group struct {
	ID         int64             `json:"id" db:"id"`
	Title      string            `json:"title" db:"title"`
	Slug       string            `json:"slug" db:"slug"`
	Status     GroupStatus       `json:"status" db:"status"`
	Membership MembershipSetting `json:"membership" db:"membership"`
	CreatedAt  time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time         `json:"updatedAt" db:"updated_at"`

	Members []Member `json:"members,omitempty"`
}

// MemberOf returns the member entry for the given actor, or nil when the
// actor is not on the roster.
func (g *Group) MemberOf(actor ActorRef) *Member {
	for i := range g.Members {
		if g.Members[i].UserID == actor.ID && g.Members[i].UserKind == actor.Kind {
			return &g.Members[i]
		}
	}
	return nil
}

// Member is one group roster entry. A member row belongs to exactly one
// group.
type Member struct {
	ID        int64     `json:"id" db:"id"`
	GroupID   int64     `json:"groupId" db:"group_id"`
	UserID    int64     `json:"userId" db:"user_id"`
	UserKind  ActorKind `json:"userKind" db:"user_kind"`
	IsCreator bool      `json:"isCreator" db:"is_creator"`
	IsManager bool      `json:"isManager" db:"is_manager"`
	Alias     string    `json:"alias" db:"alias"`
	Status    string    `json:"status" db:"status"`
	JoinedAt  time.Time `json:"joinedAt" db:"joined_at"`
}

// User returns the actor reference of the member.
func (m *Member) User() ActorRef {
	return ActorRef{ID: m.UserID, Kind: m.UserKind}
}
