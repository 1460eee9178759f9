package dto

// AddActivityRequest appends an activity to a pending process
type AddActivityRequest struct {
	Action string `json:"action" binding:"required"`
}

// CompleteActivityRequest records a handler's verdict on an activity
type CompleteActivityRequest struct {
	Verdict string  `json:"verdict" binding:"required,oneof=approved rejected suspended"`
	Comment *string `json:"comment,omitempty"`
}

// FinalizeProcessRequest closes a process with a decided status
type FinalizeProcessRequest struct {
	Decision string `json:"decision" binding:"required,oneof=approved rejected suspended"`
}
