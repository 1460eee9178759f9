package models

import "time"

// ActionKind names one user reaction recorded by the ledger.
type ActionKind string

const (
	ActionLike     ActionKind = "like"
	ActionDislike  ActionKind = "dislike"
	ActionSave     ActionKind = "save"
	ActionFollow   ActionKind = "follow"
	ActionShare    ActionKind = "share"
	ActionDownload ActionKind = "download"
)

// Valid reports whether the kind is one of the known action kinds.
func (k ActionKind) Valid() bool {
	switch k {
	case ActionLike, ActionDislike, ActionSave, ActionFollow, ActionShare, ActionDownload:
		return true
	}
	return false
}

// Reversible reports whether the action can be retracted. Reversible kinds
// carry the at-most-one-per-(creator, target) uniqueness constraint; shares
// and downloads are repeatable.
func (k ActionKind) Reversible() bool {
	switch k {
	case ActionLike, ActionDislike, ActionSave, ActionFollow:
		return true
	}
	return false
}

// Counter returns the target counter the action kind feeds.
func (k ActionKind) Counter() (Counter, bool) {
	switch k {
	case ActionLike:
		return CounterLike, true
	case ActionDislike:
		return CounterDislike, true
	case ActionSave:
		return CounterSave, true
	case ActionFollow:
		return CounterFollow, true
	case ActionShare:
		return CounterShare, true
	case ActionDownload:
		return CounterDownload, true
	}
	return "", false
}

// Action is one ledger record: a creator performing one reaction against one
// target.
type Action struct {
	ID          int64      `json:"id" db:"id"`
	Kind        ActionKind `json:"kind" db:"kind"`
	CreatorID   int64      `json:"creatorId" db:"creator_id"`
	CreatorKind ActorKind  `json:"creatorKind" db:"creator_kind"`
	TargetID    int64      `json:"targetId" db:"target_id"`
	TargetKind  TargetKind `json:"targetKind" db:"target_kind"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
}

// Creator returns the actor reference of the action's creator.
func (a *Action) Creator() ActorRef {
	return ActorRef{ID: a.CreatorID, Kind: a.CreatorKind}
}

// Target returns the target reference the action points at.
func (a *Action) Target() TargetRef {
	return TargetRef{ID: a.TargetID, Kind: a.TargetKind}
}
