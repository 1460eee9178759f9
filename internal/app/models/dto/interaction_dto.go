package dto

// ActionStatusResponse reports whether the caller holds a live action on a
// target.
type ActionStatusResponse struct {
	Action string `json:"action"`
	Active bool   `json:"active"`
}

// CreateCommentRequest carries a new comment
type CreateCommentRequest struct {
	ParentID *int64 `json:"parentId,omitempty"`
	Content  string `json:"content" binding:"required"`
	Rating   *int   `json:"rating,omitempty" binding:"omitempty,min=1,max=5"`
}

// UpdateCommentRequest carries edits to an existing comment
type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required"`
	Rating  *int   `json:"rating,omitempty" binding:"omitempty,min=1,max=5"`
}

// CounterSummaryResponse is the read-side shape of a target's counters
type CounterSummaryResponse struct {
	ViewCount     int      `json:"viewCount"`
	LikeCount     int      `json:"likeCount"`
	DislikeCount  int      `json:"dislikeCount"`
	SaveCount     int      `json:"saveCount"`
	ShareCount    int      `json:"shareCount"`
	FollowCount   int      `json:"followCount"`
	DownloadCount int      `json:"downloadCount"`
	CommentCount  int      `json:"commentCount"`
	TotalRating   int      `json:"totalRating"`
	AverageRating *float64 `json:"averageRating"`
}
