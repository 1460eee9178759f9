package models

import (
	"fmt"
	"time"
)

// ActorKind discriminates the user collections an actor reference can point
// to. The set is open: new kinds register their own store with the registry.
type ActorKind string

const (
	ActorConsumer ActorKind = "consumer"
	ActorPlatform ActorKind = "platform"
)

// Valid reports whether the kind is one of the known actor kinds.
func (k ActorKind) Valid() bool {
	switch k {
	case ActorConsumer, ActorPlatform:
		return true
	}
	return false
}

// ActorRef identifies a user entity across collections.
type ActorRef struct {
	ID   int64     `json:"id"`
	Kind ActorKind `json:"kind"`
}

func (r ActorRef) String() string {
	return fmt.Sprintf("%s:%d", r.Kind, r.ID)
}

// Consumer is a platform user. The counter fields are maintained exclusively
// by the counter reconciler through atomic deltas; they are never written as
// part of a whole-document save.
type Consumer struct {
	ID           int64     `json:"id" db:"id"`
	Handle       string    `json:"handle" db:"handle"`
	Status       string    `json:"status" db:"status"`
	PostCount    int       `json:"postCount" db:"post_count"`
	EventCount   int       `json:"eventCount" db:"event_count"`
	CommentCount int       `json:"commentCount" db:"comment_count"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
