package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/yeegr/singular/internal/app/models"
	"github.com/yeegr/singular/internal/pkg/apperrors"
)

// CommentStore is the persistence surface comments are written through
type CommentStore interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id int64) (*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id int64, creator models.ActorRef) (*models.Comment, error)
	ListByTarget(ctx context.Context, target models.TargetRef, page, pageSize int) ([]models.Comment, error)
}

// ActorCounterApplier applies deltas to an actor's own counters
type ActorCounterApplier interface {
	ApplyActorDelta(ctx context.Context, actor models.ActorRef, counter models.ActorCounter, delta int) error
}

// CommentService manages comments and the rating aggregates they feed. The
// target keeps only two running numbers, commentCount and totalRating; the
// average is derived on read. Aggregate updates ride the request but their
// failures are swallowed: a comment that persisted stays persisted even when
// the projection misses a beat.
type CommentService struct {
	comments CommentStore
	registry TargetResolver
	counters CounterApplier
	actors   ActorCounterApplier
	logger   zerolog.Logger
}

// NewCommentService creates a new CommentService
func NewCommentService(
	comments CommentStore,
	registry TargetResolver,
	counters CounterApplier,
	actors ActorCounterApplier,
	logger zerolog.Logger,
) *CommentService {
	return &CommentService{
		comments: comments,
		registry: registry,
		counters: counters,
		actors:   actors,
		logger:   logger,
	}
}

// Create adds a comment to a target. Targets carrying a comment setting only
// accept comments while the setting is open.
func (s *CommentService) Create(ctx context.Context, creator models.ActorRef, target models.TargetRef, parentID *int64, content string, rating *int) (*models.Comment, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: content cannot be empty", apperrors.ErrValidationFailed)
	}
	if rating != nil && (*rating < 1 || *rating > 5) {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", apperrors.ErrValidationFailed)
	}

	store, err := s.registry.Store(target.Kind)
	if err != nil {
		return nil, err
	}
	meta, err := store.FindMeta(ctx, target.ID)
	if err != nil {
		return nil, err
	}
	if meta.CommentSetting != "" && meta.CommentSetting != models.CommentOpen {
		return nil, fmt.Errorf("%w: comments are %s on %s", apperrors.ErrPermissionDenied, meta.CommentSetting, target)
	}

	comment := &models.Comment{
		CreatorID:   creator.ID,
		CreatorKind: creator.Kind,
		TargetID:    target.ID,
		TargetKind:  target.Kind,
		ParentID:    parentID,
		Content:     content,
		Rating:      rating,
	}
	if rating != nil {
		comment.RatingDiff = *rating
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	// Only rated comments feed the aggregates; an unrated comment must not
	// dilute the average.
	if rating != nil {
		s.applyAggregates(ctx, target, +1, comment.RatingDiff)
		s.applyCreatorDelta(ctx, creator, +1)
	}

	return comment, nil
}

// Update edits a comment's content and rating. Only the rating difference
// flows into the target's running total; the comment count is untouched.
func (s *CommentService) Update(ctx context.Context, id int64, creator models.ActorRef, content string, rating *int) (*models.Comment, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: content cannot be empty", apperrors.ErrValidationFailed)
	}
	if rating != nil && (*rating < 1 || *rating > 5) {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", apperrors.ErrValidationFailed)
	}

	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.CreatorID != creator.ID || comment.CreatorKind != creator.Kind {
		return nil, fmt.Errorf("%w: comment %d belongs to another actor", apperrors.ErrPermissionDenied, id)
	}

	newValue := 0
	if rating != nil {
		newValue = *rating
	}
	diff := newValue - comment.RatingDiff

	comment.Content = content
	comment.Rating = rating
	comment.RatingDiff = newValue
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, err
	}

	if diff != 0 {
		s.applyAggregates(ctx, comment.Target(), 0, diff)
	}

	return comment, nil
}

// Remove deletes a comment and reverses its contribution to the target's
// aggregates. Removal works regardless of the target's comment setting; only
// a rated comment has a contribution to reverse.
func (s *CommentService) Remove(ctx context.Context, id int64, creator models.ActorRef) error {
	comment, err := s.comments.Delete(ctx, id, creator)
	if err != nil {
		return err
	}

	if comment.Rating != nil {
		s.applyAggregates(ctx, comment.Target(), -1, -comment.RatingDiff)
		s.applyCreatorDelta(ctx, creator, -1)
	}

	return nil
}

// GetByID retrieves a single comment
func (s *CommentService) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	return s.comments.GetByID(ctx, id)
}

// ListByTarget retrieves a target's comments, newest first
func (s *CommentService) ListByTarget(ctx context.Context, target models.TargetRef, page, pageSize int) ([]models.Comment, error) {
	return s.comments.ListByTarget(ctx, target, page, pageSize)
}

func (s *CommentService) applyAggregates(ctx context.Context, target models.TargetRef, countDelta, ratingDelta int) {
	if countDelta != 0 {
		if err := s.counters.ApplyDelta(ctx, target, models.CounterComment, countDelta); err != nil {
			s.logger.Error().Err(err).Str("target", target.String()).Msg("Failed to adjust comment count")
		}
	}
	if ratingDelta != 0 {
		if err := s.counters.ApplyDelta(ctx, target, models.CounterRating, ratingDelta); err != nil {
			s.logger.Error().Err(err).Str("target", target.String()).Msg("Failed to adjust total rating")
		}
	}
}

func (s *CommentService) applyCreatorDelta(ctx context.Context, creator models.ActorRef, delta int) {
	if err := s.actors.ApplyActorDelta(ctx, creator, models.ActorCounterComment, delta); err != nil {
		s.logger.Error().Err(err).Str("actor", creator.String()).Msg("Failed to adjust actor comment count")
	}
}
