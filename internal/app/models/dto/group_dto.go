package dto

// CreateGroupRequest carries a new group
type CreateGroupRequest struct {
	Title      string `json:"title" binding:"required"`
	Slug       string `json:"slug" binding:"required"`
	Membership string `json:"membership,omitempty" binding:"omitempty,oneof=open managed"`
	Alias      string `json:"alias,omitempty"`
}

// UpdateGroupRequest carries edits to a group
type UpdateGroupRequest struct {
	Title      string `json:"title,omitempty"`
	Membership string `json:"membership,omitempty" binding:"omitempty,oneof=open managed"`
}

// JoinGroupRequest carries the caller's alias when joining
type JoinGroupRequest struct {
	Alias string `json:"alias,omitempty"`
}

// AddMemberRequest adds a user to a group on a manager's behalf
type AddMemberRequest struct {
	UserID   int64  `json:"userId" binding:"required"`
	UserKind string `json:"userKind" binding:"required,oneof=consumer platform"`
	Alias    string `json:"alias,omitempty"`
}

// TransferManagerRequest hands the manager role to another member
type TransferManagerRequest struct {
	UserID   int64  `json:"userId" binding:"required"`
	UserKind string `json:"userKind" binding:"required,oneof=consumer platform"`
}
