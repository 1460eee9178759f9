package models

import "time"

// AuditEntry is one fire-and-forget audit record of a user action.
type AuditEntry struct {
	ID          string      `json:"id" db:"id"`
	CreatorID   int64       `json:"creatorId" db:"creator_id"`
	CreatorKind ActorKind   `json:"creatorKind" db:"creator_kind"`
	TargetID    *int64      `json:"targetId,omitempty" db:"target_id"`
	TargetKind  *TargetKind `json:"targetKind,omitempty" db:"target_kind"`
	Action      string      `json:"action" db:"action"`
	UserAgent   string      `json:"ua,omitempty" db:"user_agent"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
}
