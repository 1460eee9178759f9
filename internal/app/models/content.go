package models

import "time"

// ContentStatus is the moderation lifecycle of a content entity.
type ContentStatus string

const (
	ContentEditing   ContentStatus = "editing"
	ContentPending   ContentStatus = "pending"
	ContentApproved  ContentStatus = "approved"
	ContentRejected  ContentStatus = "rejected"
	ContentSuspended ContentStatus = "suspended"
	ContentExpired   ContentStatus = "expired"
)

// CommentSetting controls whether comments on a target feed its aggregates.
type CommentSetting string

const (
	CommentOpen     CommentSetting = "open"
	CommentClosed   CommentSetting = "closed"
	CommentDisabled CommentSetting = "disabled"
)

// Content is a post or event: a target with the full counter surface and a
// moderation status driven by the workflow engine.
type Content struct {
	ID             int64          `json:"id" db:"id"`
	Kind           TargetKind     `json:"kind" db:"-"`
	CreatorID      int64          `json:"creatorId" db:"creator_id"`
	CreatorKind    ActorKind      `json:"creatorKind" db:"creator_kind"`
	Title          string         `json:"title" db:"title"`
	Slug           string         `json:"slug" db:"slug"`
	Excerpt        string         `json:"excerpt,omitempty" db:"excerpt"`
	Body           string         `json:"content" db:"body"`
	Status         ContentStatus  `json:"status" db:"status"`
	CommentSetting CommentSetting `json:"commentSetting" db:"comment_setting"`
	CreatedAt      time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time      `json:"updatedAt" db:"updated_at"`

	CounterSurface
}

// Creator returns the actor reference of the content creator.
func (c *Content) Creator() ActorRef {
	return ActorRef{ID: c.CreatorID, Kind: c.CreatorKind}
}

// Ref returns the target reference of the content entity.
func (c *Content) Ref() TargetRef {
	return TargetRef{ID: c.ID, Kind: c.Kind}
}

// CreatorCounter returns the creator aggregate counter a content kind feeds,
// e.g. creating a post increments the creator's postCount.
func CreatorCounter(kind TargetKind) (ActorCounter, bool) {
	switch kind {
	case TargetPost:
		return ActorCounterPost, true
	case TargetEvent:
		return ActorCounterEvent, true
	}
	return "", false
}
