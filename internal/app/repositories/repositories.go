package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	ConsumerRepository *ConsumerRepository
	ActionRepository   *ActionRepository
	CommentRepository  *CommentRepository
	ContentRepository  *ContentRepository
	GroupRepository    *GroupRepository
	ProcessRepository  *ProcessRepository
	ActivityRepository *ActivityRepository
	AuditRepository    *AuditRepository
	TargetRegistry     *TargetRegistry
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		ConsumerRepository: NewConsumerRepository(db),
		ActionRepository:   NewActionRepository(db),
		CommentRepository:  NewCommentRepository(db),
		ContentRepository:  NewContentRepository(db),
		GroupRepository:    NewGroupRepository(db),
		ProcessRepository:  NewProcessRepository(db),
		ActivityRepository: NewActivityRepository(db),
		AuditRepository:    NewAuditRepository(db),
		TargetRegistry:     NewTargetRegistry(db),
	}
}
