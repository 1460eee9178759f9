package models

import "time"

// ProcessType names the kind of administrative process.
type ProcessType string

const (
	ProcessApproval ProcessType = "approval"
)

// ProcessStatus is the lifecycle status of a process. Pending is the only
// non-terminal status.
type ProcessStatus string

const (
	ProcessPending   ProcessStatus = "pending"
	ProcessCancelled ProcessStatus = "cancelled"
	ProcessFinalized ProcessStatus = "finalized"
)

// ActivityState is the local lifecycle state of one activity.
type ActivityState string

const (
	ActivityReady      ActivityState = "ready"
	ActivityProcessing ActivityState = "processing"
	ActivityCompleted  ActivityState = "completed"
)

// Process is one administrative workflow instance against a target. Its
// activity list is append-only while pending and frozen once terminal.
type Process struct {
	ID          int64         `json:"id" db:"id"`
	CreatorID   int64         `json:"creatorId" db:"creator_id"`
	CreatorKind ActorKind     `json:"creatorKind" db:"creator_kind"`
	TargetID    int64         `json:"targetId" db:"target_id"`
	TargetKind  TargetKind    `json:"targetKind" db:"target_kind"`
	Type        ProcessType   `json:"type" db:"type"`
	Status      ProcessStatus `json:"status" db:"status"`
	ExpireAt    *time.Time    `json:"expireAt,omitempty" db:"expire_at"`
	CompletedAt *time.Time    `json:"completedAt,omitempty" db:"completed_at"`
	CreatedAt   time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time     `json:"updatedAt" db:"updated_at"`

	Activities []Activity `json:"activities,omitempty"`
}

// Creator returns the actor reference of the process creator.
func (p *Process) Creator() ActorRef {
	return ActorRef{ID: p.CreatorID, Kind: p.CreatorKind}
}

// Target returns the reference of the moderated target.
func (p *Process) Target() TargetRef {
	return TargetRef{ID: p.TargetID, Kind: p.TargetKind}
}

// Terminal reports whether the process has reached a terminal status.
func (p *Process) Terminal() bool {
	return p.Status == ProcessFinalized || p.Status == ProcessCancelled
}

// Activity is one unit of work within a process, separately addressable so a
// handler can act on it directly.
type Activity struct {
	ID             int64         `json:"id" db:"id"`
	ProcessID      int64         `json:"processId" db:"process_id"`
	Seq            int           `json:"seq" db:"seq"`
	CreatorID      int64         `json:"creatorId" db:"creator_id"`
	CreatorKind    ActorKind     `json:"creatorKind" db:"creator_kind"`
	TargetID       int64         `json:"targetId" db:"target_id"`
	TargetKind     TargetKind    `json:"targetKind" db:"target_kind"`
	Action         string        `json:"action" db:"action"`
	InitStatus     string        `json:"initStatus" db:"init_status"`
	State          ActivityState `json:"state" db:"state"`
	HandlerID      *int64        `json:"handlerId,omitempty" db:"handler_id"`
	HandlerKind    *ActorKind    `json:"handlerKind,omitempty" db:"handler_kind"`
	AssignedStatus *string       `json:"assignedStatus,omitempty" db:"assigned_status"`
	Comment        *string       `json:"comment,omitempty" db:"comment"`
	ProcessedAt    *time.Time    `json:"processedAt,omitempty" db:"processed_at"`
	CreatedAt      time.Time     `json:"createdAt" db:"created_at"`
}

// Handler returns the actor reference of the handler, if any.
func (a *Activity) Handler() *ActorRef {
	if a.HandlerID == nil || a.HandlerKind == nil {
		return nil
	}
	return &ActorRef{ID: *a.HandlerID, Kind: *a.HandlerKind}
}
