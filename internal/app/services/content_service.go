package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yeegr/singular/internal/app/models"
	"github.com/yeegr/singular/internal/pkg/apperrors"
	"github.com/yeegr/singular/internal/pkg/dberrors"
)

var slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// approvalWindow is how long a submitted entity waits for a decision before
// the process is considered expired.
const approvalWindow = 7 * 24 * time.Hour

// ContentStore is the persistence surface content entities are managed through
type ContentStore interface {
	Create(ctx context.Context, content *models.Content) error
	GetBySlug(ctx context.Context, kind models.TargetKind, slug string, countView bool) (*models.Content, error)
	GetOwnedBySlug(ctx context.Context, kind models.TargetKind, slug string, creator models.ActorRef) (*models.Content, error)
	SetStatusIf(ctx context.Context, kind models.TargetKind, id int64, from, to models.ContentStatus) (bool, error)
	Delete(ctx context.Context, kind models.TargetKind, slug string, creator models.ActorRef) (*models.Content, error)
	List(ctx context.Context, kind models.TargetKind, page, pageSize int) ([]models.Content, int64, error)
}

// ContentService manages posts and events through their editorial lifecycle:
// drafted in editing, submitted into an approval process, published once a
// handler approves.
type ContentService struct {
	contents ContentStore
	workflow *WorkflowService
	actors   ActorCounterApplier
	logger   zerolog.Logger
}

// NewContentService creates a new ContentService
func NewContentService(
	contents ContentStore,
	workflow *WorkflowService,
	actors ActorCounterApplier,
	logger zerolog.Logger,
) *ContentService {
	return &ContentService{
		contents: contents,
		workflow: workflow,
		actors:   actors,
		logger:   logger,
	}
}

// Create drafts a new content entity in editing status
func (s *ContentService) Create(ctx context.Context, kind models.TargetKind, creator models.ActorRef, title, slug, excerpt, body string) (*models.Content, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title cannot be empty", apperrors.ErrValidationFailed)
	}
	if !slugRegex.MatchString(slug) {
		return nil, fmt.Errorf("%w: invalid slug %q", apperrors.ErrValidationFailed, slug)
	}

	content := &models.Content{
		Kind:           kind,
		CreatorID:      creator.ID,
		CreatorKind:    creator.Kind,
		Title:          title,
		Slug:           slug,
		Excerpt:        excerpt,
		Body:           body,
		Status:         models.ContentEditing,
		CommentSetting: models.CommentOpen,
	}
	if err := s.contents.Create(ctx, content); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %q", apperrors.ErrSlugTaken, slug)
		}
		return nil, err
	}

	if counter, ok := models.CreatorCounter(kind); ok {
		if err := s.actors.ApplyActorDelta(ctx, creator, counter, +1); err != nil {
			s.logger.Error().Err(err).Str("actor", creator.String()).Msg("Failed to adjust creator content count")
		}
	}

	return content, nil
}

// Get retrieves a published content entity by slug and counts the view. The
// view bump rides the same statement as the read, so concurrent reads all
// land.
func (s *ContentService) Get(ctx context.Context, kind models.TargetKind, slug string) (*models.Content, error) {
	return s.contents.GetBySlug(ctx, kind, slug, true)
}

// GetOwned retrieves a content entity for its creator regardless of status,
// without counting a view.
func (s *ContentService) GetOwned(ctx context.Context, kind models.TargetKind, slug string, creator models.ActorRef) (*models.Content, error) {
	return s.contents.GetOwnedBySlug(ctx, kind, slug, creator)
}

// List retrieves published content entities, newest first
func (s *ContentService) List(ctx context.Context, kind models.TargetKind, page, pageSize int) ([]models.Content, int64, error) {
	return s.contents.List(ctx, kind, page, pageSize)
}

// Submit moves a draft into the approval queue and opens an approval process
// for it.
func (s *ContentService) Submit(ctx context.Context, kind models.TargetKind, slug string, creator models.ActorRef) (*models.Process, error) {
	content, err := s.contents.GetOwnedBySlug(ctx, kind, slug, creator)
	if err != nil {
		return nil, err
	}
	if content.Status != models.ContentEditing && content.Status != models.ContentRejected {
		return nil, fmt.Errorf("%w: %s %q is %s", apperrors.ErrBadRequest, kind, slug, content.Status)
	}

	applied, err := s.contents.SetStatusIf(ctx, kind, content.ID, content.Status, models.ContentPending)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, fmt.Errorf("%w: %s %q changed status underneath", apperrors.ErrConflict, kind, slug)
	}

	return s.workflow.CreateProcess(ctx, models.ProcessApproval, creator, content.Ref(), "submit", time.Now().Add(approvalWindow))
}

// Delete removes a content entity owned by the caller
func (s *ContentService) Delete(ctx context.Context, kind models.TargetKind, slug string, creator models.ActorRef) error {
	if _, err := s.contents.Delete(ctx, kind, slug, creator); err != nil {
		return err
	}

	if counter, ok := models.CreatorCounter(kind); ok {
		if err := s.actors.ApplyActorDelta(ctx, creator, counter, -1); err != nil {
			s.logger.Error().Err(err).Str("actor", creator.String()).Msg("Failed to adjust creator content count")
		}
	}
	return nil
}
