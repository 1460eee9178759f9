package models

import (
	"fmt"
	"math"
)

// TargetKind discriminates the content collections a target reference
// can point to.
type TargetKind string

const (
	TargetPost     TargetKind = "post"
	TargetEvent    TargetKind = "event"
	TargetComment  TargetKind = "comment"
	TargetActivity TargetKind = "activity"
	TargetGroup    TargetKind = "group"
)

// Valid reports whether the kind is one of the known target kinds.
func (k TargetKind) Valid() bool {
	switch k {
	case TargetPost, TargetEvent, TargetComment, TargetActivity, TargetGroup:
		return true
	}
	return false
}

// TargetRef identifies a content entity across collections.
type TargetRef struct {
	ID   int64      `json:"id"`
	Kind TargetKind `json:"kind"`
}

func (r TargetRef) String() string {
	return fmt.Sprintf("%s:%d", r.Kind, r.ID)
}

// Counter names one aggregate counter on the target counter surface.
type Counter string

const (
	CounterView     Counter = "viewCount"
	CounterLike     Counter = "likeCount"
	CounterDislike  Counter = "dislikeCount"
	CounterSave     Counter = "saveCount"
	CounterShare    Counter = "shareCount"
	CounterFollow   Counter = "followCount"
	CounterDownload Counter = "downloadCount"
	CounterComment  Counter = "commentCount"
	CounterRating   Counter = "totalRating"
)

// ActorCounter names one aggregate counter on a creator's own record.
type ActorCounter string

const (
	ActorCounterPost    ActorCounter = "postCount"
	ActorCounterEvent   ActorCounter = "eventCount"
	ActorCounterComment ActorCounter = "commentCount"
)

// CounterSurface is the fixed set of aggregate counters every target
// exposes. averageRating is derived, never stored.
type CounterSurface struct {
	ViewCount     int `json:"viewCount" db:"view_count"`
	LikeCount     int `json:"likeCount" db:"like_count"`
	DislikeCount  int `json:"dislikeCount" db:"dislike_count"`
	SaveCount     int `json:"saveCount" db:"save_count"`
	ShareCount    int `json:"shareCount" db:"share_count"`
	FollowCount   int `json:"followCount" db:"follow_count"`
	DownloadCount int `json:"downloadCount" db:"download_count"`
	CommentCount  int `json:"commentCount" db:"comment_count"`
	TotalRating   int `json:"totalRating" db:"total_rating"`
}

// AverageRating derives the average comment rating, rounded to the nearest
// half point. Returns nil when the target has no rated comments.
func AverageRating(totalRating, commentCount int) *float64 {
	if commentCount <= 0 {
		return nil
	}
	avg := math.Round(float64(totalRating)/float64(commentCount)*2) / 2
	return &avg
}

// AverageRating derives the average rating from the surface counters.
func (s CounterSurface) AverageRating() *float64 {
	return AverageRating(s.TotalRating, s.CommentCount)
}
