package services

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeegr/singular/internal/app/models"
	"github.com/yeegr/singular/internal/app/repositories"
	"github.com/yeegr/singular/internal/pkg/apperrors"
)

type contentKey struct {
	kind models.TargetKind
	slug string
}

type fakeContentStore struct {
	rows   map[contentKey]*models.Content
	nextID int64
}

func newFakeContentStore() *fakeContentStore {
	return &fakeContentStore{rows: make(map[contentKey]*models.Content)}
}

func (f *fakeContentStore) Create(_ context.Context, content *models.Content) error {
	key := contentKey{content.Kind, content.Slug}
	if _, ok := f.rows[key]; ok {
		return &pgconn.PgError{Code: "23505", ConstraintName: content.Slug + "_slug_key"}
	}
	f.nextID++
	content.ID = f.nextID
	stored := *content
	f.rows[key] = &stored
	return nil
}

func (f *fakeContentStore) GetBySlug(_ context.Context, kind models.TargetKind, slug string, countView bool) (*models.Content, error) {
	content, ok := f.rows[contentKey{kind, slug}]
	if !ok || content.Status != models.ContentApproved {
		return nil, fmt.Errorf("%w: %s %q", apperrors.ErrContentNotFound, kind, slug)
	}
	if countView {
		content.ViewCount++
	}
	copied := *content
	return &copied, nil
}

func (f *fakeContentStore) GetOwnedBySlug(_ context.Context, kind models.TargetKind, slug string, creator models.ActorRef) (*models.Content, error) {
	content, ok := f.rows[contentKey{kind, slug}]
	if !ok || content.Creator() != creator {
		return nil, fmt.Errorf("%w: %s %q", apperrors.ErrContentNotFound, kind, slug)
	}
	copied := *content
	return &copied, nil
}

func (f *fakeContentStore) SetStatusIf(_ context.Context, kind models.TargetKind, id int64, from, to models.ContentStatus) (bool, error) {
	for _, content := range f.rows {
		if content.Kind == kind && content.ID == id {
			if content.Status != from {
				return false, nil
			}
			content.Status = to
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeContentStore) Delete(_ context.Context, kind models.TargetKind, slug string, creator models.ActorRef) (*models.Content, error) {
	key := contentKey{kind, slug}
	content, ok := f.rows[key]
	if !ok || content.Creator() != creator {
		return nil, fmt.Errorf("%w: %s %q", apperrors.ErrContentNotFound, kind, slug)
	}
	delete(f.rows, key)
	return content, nil
}

func (f *fakeContentStore) List(_ context.Context, kind models.TargetKind, page, pageSize int) ([]models.Content, int64, error) {
	var out []models.Content
	for _, content := range f.rows {
		if content.Kind == kind && content.Status == models.ContentApproved {
			out = append(out, *content)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	total := int64(len(out))
	start := (page - 1) * pageSize
	if start >= len(out) {
		return nil, total, nil
	}
	end := start + pageSize
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func newContentFixture() (*ContentService, *fakeContentStore, *fakeCounters, *fakeProcessStore) {
	contents := newFakeContentStore()
	counters := newFakeCounters()
	processes := newFakeProcessStore()

	// The workflow registry is backed by the same content rows so
	// submissions resolve their own drafts.
	registry := &contentBackedRegistry{contents: contents}
	workflow := NewWorkflowService(processes, newFakeActivityStore(processes), registry, zerolog.Nop())

	svc := NewContentService(contents, workflow, counters, zerolog.Nop())
	return svc, contents, counters, processes
}

// contentBackedRegistry resolves post and event targets straight out of the
// fake content store.
type contentBackedRegistry struct {
	contents *fakeContentStore
}

func (r *contentBackedRegistry) Store(kind models.TargetKind) (repositories.TargetStore, error) {
	return &contentBackedStore{kind: kind, contents: r.contents}, nil
}

type contentBackedStore struct {
	kind     models.TargetKind
	contents *fakeContentStore
}

func (s *contentBackedStore) FindMeta(_ context.Context, id int64) (*repositories.TargetMeta, error) {
	for _, content := range s.contents.rows {
		if content.Kind == s.kind && content.ID == id {
			return &repositories.TargetMeta{
				Ref:            models.TargetRef{ID: id, Kind: s.kind},
				CreatorID:      content.CreatorID,
				CreatorKind:    content.CreatorKind,
				Status:         string(content.Status),
				CommentSetting: content.CommentSetting,
			}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s %d", apperrors.ErrResourceNotFound, s.kind, id)
}

func (s *contentBackedStore) IncrementCounter(_ context.Context, _ int64, _ models.Counter, _ int) error {
	return nil
}

func (s *contentBackedStore) SetStatus(_ context.Context, id int64, status string) error {
	for _, content := range s.contents.rows {
		if content.Kind == s.kind && content.ID == id {
			content.Status = models.ContentStatus(status)
			return nil
		}
	}
	return fmt.Errorf("%w: %s %d", apperrors.ErrResourceNotFound, s.kind, id)
}

func TestContentCreate(t *testing.T) {
	author := models.ActorRef{ID: 7, Kind: models.ActorConsumer}

	t.Run("drafts in editing and counts toward the creator", func(t *testing.T) {
		svc, _, counters, _ := newContentFixture()

		content, err := svc.Create(context.Background(), models.TargetPost, author, "Hello", "hello", "", "body")
		require.NoError(t, err)
		assert.Equal(t, models.ContentEditing, content.Status)
		assert.Equal(t, models.CommentOpen, content.CommentSetting)
		assert.Equal(t, 1, counters.actorDelta(models.ActorCounterPost))
	})

	t.Run("rejects malformed slugs", func(t *testing.T) {
		svc, _, _, _ := newContentFixture()

		for _, slug := range []string{"", "Hello", "hello world", "-hello", "hello-"} {
			_, err := svc.Create(context.Background(), models.TargetPost, author, "Hello", slug, "", "body")
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed, "slug %q", slug)
		}
	})

	t.Run("rejects blank titles", func(t *testing.T) {
		svc, _, _, _ := newContentFixture()

		_, err := svc.Create(context.Background(), models.TargetPost, author, "   ", "hello", "", "body")
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})

	t.Run("taken slugs collide", func(t *testing.T) {
		svc, _, _, _ := newContentFixture()

		_, err := svc.Create(context.Background(), models.TargetPost, author, "Hello", "hello", "", "body")
		require.NoError(t, err)

		_, err = svc.Create(context.Background(), models.TargetPost, author, "Hello again", "hello", "", "body")
		assert.ErrorIs(t, err, apperrors.ErrSlugTaken)
	})
}

func TestContentGet(t *testing.T) {
	author := models.ActorRef{ID: 7, Kind: models.ActorConsumer}

	t.Run("drafts are invisible to the public read", func(t *testing.T) {
		svc, _, _, _ := newContentFixture()

		_, err := svc.Create(context.Background(), models.TargetPost, author, "Hello", "hello", "", "body")
		require.NoError(t, err)

		_, err = svc.Get(context.Background(), models.TargetPost, "hello")
		assert.ErrorIs(t, err, apperrors.ErrContentNotFound)

		owned, err := svc.GetOwned(context.Background(), models.TargetPost, "hello", author)
		require.NoError(t, err)
		assert.Equal(t, models.ContentEditing, owned.Status)
	})

	t.Run("public reads count views", func(t *testing.T) {
		svc, contents, _, _ := newContentFixture()

		content, err := svc.Create(context.Background(), models.TargetPost, author, "Hello", "hello", "", "body")
		require.NoError(t, err)
		contents.rows[contentKey{models.TargetPost, "hello"}].Status = models.ContentApproved

		for i := 0; i < 3; i++ {
			_, err = svc.Get(context.Background(), models.TargetPost, "hello")
			require.NoError(t, err)
		}

		read, err := svc.Get(context.Background(), models.TargetPost, content.Slug)
		require.NoError(t, err)
		assert.Equal(t, 4, read.ViewCount)
	})
}

func TestContentSubmit(t *testing.T) {
	author := models.ActorRef{ID: 7, Kind: models.ActorConsumer}

	t.Run("moves the draft to pending and opens an approval process", func(t *testing.T) {
		svc, contents, _, processes := newContentFixture()

		content, err := svc.Create(context.Background(), models.TargetPost, author, "Hello", "hello", "", "body")
		require.NoError(t, err)

		process, err := svc.Submit(context.Background(), models.TargetPost, "hello", author)
		require.NoError(t, err)
		assert.Equal(t, models.ProcessApproval, process.Type)
		assert.Equal(t, models.ProcessPending, process.Status)
		assert.Equal(t, content.ID, process.TargetID)
		require.NotNil(t, process.ExpireAt)

		stored := contents.rows[contentKey{models.TargetPost, "hello"}]
		assert.Equal(t, models.ContentPending, stored.Status)
		assert.Len(t, processes.processes, 1)
	})

	t.Run("rejected drafts may be resubmitted", func(t *testing.T) {
		svc, contents, _, _ := newContentFixture()

		_, err := svc.Create(context.Background(), models.TargetPost, author, "Hello", "hello", "", "body")
		require.NoError(t, err)
		contents.rows[contentKey{models.TargetPost, "hello"}].Status = models.ContentRejected

		_, err = svc.Submit(context.Background(), models.TargetPost, "hello", author)
		require.NoError(t, err)
	})

	t.Run("pending and approved entities cannot be resubmitted", func(t *testing.T) {
		svc, contents, _, _ := newContentFixture()

		_, err := svc.Create(context.Background(), models.TargetPost, author, "Hello", "hello", "", "body")
		require.NoError(t, err)

		for _, status := range []models.ContentStatus{models.ContentPending, models.ContentApproved} {
			contents.rows[contentKey{models.TargetPost, "hello"}].Status = status
			_, err = svc.Submit(context.Background(), models.TargetPost, "hello", author)
			assert.ErrorIs(t, err, apperrors.ErrBadRequest, "status %s", status)
		}
	})

	t.Run("only the creator submits", func(t *testing.T) {
		svc, _, _, _ := newContentFixture()

		_, err := svc.Create(context.Background(), models.TargetPost, author, "Hello", "hello", "", "body")
		require.NoError(t, err)

		other := models.ActorRef{ID: 8, Kind: models.ActorConsumer}
		_, err = svc.Submit(context.Background(), models.TargetPost, "hello", other)
		assert.ErrorIs(t, err, apperrors.ErrContentNotFound)
	})
}

func TestContentDelete(t *testing.T) {
	author := models.ActorRef{ID: 7, Kind: models.ActorConsumer}

	t.Run("removes the row and settles the creator counter", func(t *testing.T) {
		svc, contents, counters, _ := newContentFixture()

		_, err := svc.Create(context.Background(), models.TargetPost, author, "Hello", "hello", "", "body")
		require.NoError(t, err)
		require.Equal(t, 1, counters.actorDelta(models.ActorCounterPost))

		err = svc.Delete(context.Background(), models.TargetPost, "hello", author)
		require.NoError(t, err)
		assert.Empty(t, contents.rows)
		assert.Equal(t, 0, counters.actorDelta(models.ActorCounterPost))
	})

	t.Run("strangers cannot delete", func(t *testing.T) {
		svc, _, _, _ := newContentFixture()

		_, err := svc.Create(context.Background(), models.TargetPost, author, "Hello", "hello", "", "body")
		require.NoError(t, err)

		other := models.ActorRef{ID: 8, Kind: models.ActorConsumer}
		err = svc.Delete(context.Background(), models.TargetPost, "hello", other)
		assert.ErrorIs(t, err, apperrors.ErrContentNotFound)
	})
}
