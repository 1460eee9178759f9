package models

import "time"

// Comment is a user comment against a target, optionally carrying a rating.
// RatingDiff records the change applied by the latest edit so the aggregator
// can adjust totalRating without re-reading history.
type Comment struct {
	ID          int64      `json:"id" db:"id"`
	CreatorID   int64      `json:"creatorId" db:"creator_id"`
	CreatorKind ActorKind  `json:"creatorKind" db:"creator_kind"`
	TargetID    int64      `json:"targetId" db:"target_id"`
	TargetKind  TargetKind `json:"targetKind" db:"target_kind"`
	ParentID    *int64     `json:"parentId,omitempty" db:"parent_id"`
	Rating      *int       `json:"rating,omitempty" db:"rating"`
	RatingDiff  int        `json:"-" db:"rating_diff"`
	Content     string     `json:"content" db:"content"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}

// Creator returns the actor reference of the comment's creator.
func (c *Comment) Creator() ActorRef {
	return ActorRef{ID: c.CreatorID, Kind: c.CreatorKind}
}

// Target returns the target reference the comment points at.
func (c *Comment) Target() TargetRef {
	return TargetRef{ID: c.TargetID, Kind: c.TargetKind}
}
