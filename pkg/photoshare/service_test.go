package photoshare_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/mediastash/photoshare/pkg/photoshare"
	"github.com/mediastash/photoshare/pkg/photoshare/repo/memory"
	memorystorage "github.com/mediastash/photoshare/pkg/photoshare/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyStore wraps a working blob store and fails selected operations.
type flakyStore struct {
	photoshare.BlobStore
	failUploads bool
	failDeletes bool
	uploads     int
	deletes     int
}

func (f *flakyStore) Upload(ctx context.Context, reader io.Reader, params photoshare.UploadParams) error {
	f.uploads++
	if f.failUploads {
		return errors.New("storage offline")
	}
	return f.BlobStore.Upload(ctx, reader, params)
}

func (f *flakyStore) Delete(ctx context.Context, urlOrKey string) error {
	f.deletes++
	if f.failDeletes {
		return errors.New("storage offline")
	}
	return f.BlobStore.Delete(ctx, urlOrKey)
}

// failingRepository wraps a working repository and fails selected operations.
type failingRepository struct {
	photoshare.Repository
	failCreatePhoto bool
	commentInserts  int
}

func (f *failingRepository) CreatePhoto(ctx context.Context, photo *photoshare.Photo) error {
	if f.failCreatePhoto {
		return errors.New("connection reset")
	}
	return f.Repository.CreatePhoto(ctx, photo)
}

func (f *failingRepository) CreateComment(ctx context.Context, comment *photoshare.Comment) error {
	f.commentInserts++
	return f.Repository.CreateComment(ctx, comment)
}

// recordingSink counts fired events and optionally fails every call.
type recordingSink struct {
	fail     bool
	created  []int64
	deleted  []int64
	comments []int64
}

func (r *recordingSink) PhotoCreated(ctx context.Context, photo *photoshare.Photo) error {
	r.created = append(r.created, photo.ID)
	if r.fail {
		return errors.New("broker down")
	}
	return nil
}

func (r *recordingSink) PhotoDeleted(ctx context.Context, photoID int64) error {
	r.deleted = append(r.deleted, photoID)
	if r.fail {
		return errors.New("broker down")
	}
	return nil
}

func (r *recordingSink) CommentAdded(ctx context.Context, comment *photoshare.Comment) error {
	r.comments = append(r.comments, comment.ID)
	if r.fail {
		return errors.New("broker down")
	}
	return nil
}

func TestServiceCreation(t *testing.T) {
	tests := []struct {
		name        string
		options     []photoshare.Option
		expectError bool
	}{
		{
			name:        "no options should fail",
			options:     []photoshare.Option{},
			expectError: true,
		},
		{
			name: "repository alone should fail",
			options: []photoshare.Option{
				photoshare.WithRepository(memory.New()),
			},
			expectError: true,
		},
		{
			name: "blob store alone should fail",
			options: []photoshare.Option{
				photoshare.WithBlobStore(memorystorage.New(memorystorage.Config{})),
			},
			expectError: true,
		},
		{
			name: "repository and blob store should succeed",
			options: []photoshare.Option{
				photoshare.WithRepository(memory.New()),
				photoshare.WithBlobStore(memorystorage.New(memorystorage.Config{})),
			},
			expectError: false,
		},
		{
			name: "full stack should succeed",
			options: []photoshare.Option{
				photoshare.WithRepository(memory.New()),
				photoshare.WithBlobStore(memorystorage.New(memorystorage.Config{})),
				photoshare.WithEventSink(photoshare.NewNoopEventSink()),
				photoshare.WithCleanupJournal(photoshare.NewMemoryJournal()),
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := photoshare.New(tt.options...)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, svc)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, svc)
			}
		})
	}
}

func setupTestService(t *testing.T) (photoshare.Service, *memory.Repository, photoshare.BlobStore) {
	t.Helper()

	repo := memory.New()
	store := memorystorage.New(memorystorage.Config{})

	svc, err := photoshare.New(
		photoshare.WithRepository(repo),
		photoshare.WithBlobStore(store),
		photoshare.WithEventSink(photoshare.NewNoopEventSink()),
	)
	require.NoError(t, err)
	require.NotNil(t, svc)

	return svc, repo, store
}

func photoRequest(title string) photoshare.CreatePhotoRequest {
	data := "fake image bytes"
	return photoshare.CreatePhotoRequest{
		Title:       title,
		Caption:     "a caption",
		Location:    "somewhere",
		FileName:    "photo.jpg",
		ContentType: "image/jpeg",
		Size:        int64(len(data)),
		Reader:      strings.NewReader(data),
	}
}

func TestCreatePhoto(t *testing.T) {
	ctx := context.Background()

	t.Run("stores image bytes and metadata", func(t *testing.T) {
		svc, _, store := setupTestService(t)

		photo, err := svc.CreatePhoto(ctx, photoRequest("Sunset"))
		require.NoError(t, err)
		require.NotNil(t, photo)

		assert.NotZero(t, photo.ID)
		assert.Equal(t, "Sunset", photo.Title)
		assert.False(t, photo.CreatedAt.IsZero())
		assert.Contains(t, photo.ImageURL, "/photos/")
		assert.True(t, strings.HasSuffix(photo.ImageURL, ".jpg"), "image URL should keep the file extension: %s", photo.ImageURL)

		// The returned URL must resolve against the store right away.
		meta, err := store.StatObject(ctx, photo.ImageURL)
		require.NoError(t, err)
		assert.Equal(t, int64(len("fake image bytes")), meta.Size)
		assert.Equal(t, "image/jpeg", meta.ContentType)
	})

	t.Run("trims whitespace fields", func(t *testing.T) {
		svc, _, _ := setupTestService(t)

		req := photoRequest("  Sunset  ")
		req.Caption = "  golden hour \n"
		req.Location = "\tLisbon "

		photo, err := svc.CreatePhoto(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "Sunset", photo.Title)
		assert.Equal(t, "golden hour", photo.Caption)
		assert.Equal(t, "Lisbon", photo.Location)
	})

	t.Run("upload failure leaves no metadata row", func(t *testing.T) {
		repo := memory.New()
		store := &flakyStore{BlobStore: memorystorage.New(memorystorage.Config{}), failUploads: true}
		svc, err := photoshare.New(
			photoshare.WithRepository(repo),
			photoshare.WithBlobStore(store),
		)
		require.NoError(t, err)

		_, err = svc.CreatePhoto(ctx, photoRequest("Sunset"))
		require.Error(t, err)
		assert.ErrorIs(t, err, photoshare.ErrUploadFailed)

		photos, err := repo.ListPhotos(ctx)
		require.NoError(t, err)
		assert.Empty(t, photos, "no row may exist after a failed upload")
	})

	t.Run("unavailable store surfaces as such", func(t *testing.T) {
		svc, err := photoshare.New(
			photoshare.WithRepository(memory.New()),
			photoshare.WithBlobStore(photoshare.NewUnavailableStore(errors.New("bad connection string"))),
		)
		require.NoError(t, err)

		_, err = svc.CreatePhoto(ctx, photoRequest("Sunset"))
		require.Error(t, err)
		assert.ErrorIs(t, err, photoshare.ErrStoreUnavailable)
		assert.NotErrorIs(t, err, photoshare.ErrUploadFailed)
	})

	t.Run("insert failure removes the uploaded blob", func(t *testing.T) {
		repo := &failingRepository{Repository: memory.New(), failCreatePhoto: true}
		store := memorystorage.New(memorystorage.Config{})
		svc, err := photoshare.New(
			photoshare.WithRepository(repo),
			photoshare.WithBlobStore(store),
		)
		require.NoError(t, err)

		_, err = svc.CreatePhoto(ctx, photoRequest("Sunset"))
		require.Error(t, err)
		assert.ErrorIs(t, err, photoshare.ErrWriteFailed)

		var photoErr *photoshare.PhotoError
		require.ErrorAs(t, err, &photoErr)
		assert.Equal(t, "create", photoErr.Op)

		objects, err := store.ListObjects(ctx)
		require.NoError(t, err)
		assert.Empty(t, objects, "compensating delete should have removed the blob")
	})

	t.Run("insert failure with failing delete journals the key", func(t *testing.T) {
		repo := &failingRepository{Repository: memory.New(), failCreatePhoto: true}
		store := &flakyStore{BlobStore: memorystorage.New(memorystorage.Config{}), failDeletes: true}
		journal := photoshare.NewMemoryJournal()
		svc, err := photoshare.New(
			photoshare.WithRepository(repo),
			photoshare.WithBlobStore(store),
			photoshare.WithCleanupJournal(journal),
		)
		require.NoError(t, err)

		_, err = svc.CreatePhoto(ctx, photoRequest("Sunset"))
		require.Error(t, err)
		assert.ErrorIs(t, err, photoshare.ErrWriteFailed)

		pending, err := journal.Pending(ctx)
		require.NoError(t, err)
		require.Len(t, pending, 1, "the orphaned key must be journaled for the reconciler")
		assert.True(t, strings.HasSuffix(pending[0], ".jpg"))
	})
}

func TestCreatePhotoValidation(t *testing.T) {
	ctx := context.Background()

	store := &flakyStore{BlobStore: memorystorage.New(memorystorage.Config{})}
	svc, err := photoshare.New(
		photoshare.WithRepository(memory.New()),
		photoshare.WithBlobStore(store),
	)
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(req *photoshare.CreatePhotoRequest)
	}{
		{
			name:   "empty title",
			mutate: func(req *photoshare.CreatePhotoRequest) { req.Title = "" },
		},
		{
			name:   "whitespace title",
			mutate: func(req *photoshare.CreatePhotoRequest) { req.Title = "   \t\n" },
		},
		{
			name:   "title too long",
			mutate: func(req *photoshare.CreatePhotoRequest) { req.Title = strings.Repeat("x", 256) },
		},
		{
			name:   "caption too long",
			mutate: func(req *photoshare.CreatePhotoRequest) { req.Caption = strings.Repeat("x", 501) },
		},
		{
			name:   "location too long",
			mutate: func(req *photoshare.CreatePhotoRequest) { req.Location = strings.Repeat("x", 256) },
		},
		{
			name:   "missing reader",
			mutate: func(req *photoshare.CreatePhotoRequest) { req.Reader = nil },
		},
		{
			name:   "zero byte file",
			mutate: func(req *photoshare.CreatePhotoRequest) { req.Size = 0 },
		},
		{
			name:   "blank file name",
			mutate: func(req *photoshare.CreatePhotoRequest) { req.FileName = "  " },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := photoRequest("Sunset")
			tt.mutate(&req)

			_, err := svc.CreatePhoto(ctx, req)
			require.Error(t, err)
			assert.ErrorIs(t, err, photoshare.ErrInvalidInput)
		})
	}

	// Validation failures must be rejected before any store I/O.
	assert.Zero(t, store.uploads, "no upload may happen for invalid input")
}

func TestDeletePhoto(t *testing.T) {
	ctx := context.Background()

	t.Run("removes row and object", func(t *testing.T) {
		svc, repo, store := setupTestService(t)

		photo, err := svc.CreatePhoto(ctx, photoRequest("Sunset"))
		require.NoError(t, err)

		require.NoError(t, svc.DeletePhoto(ctx, photo.ID))

		photos, err := repo.ListPhotos(ctx)
		require.NoError(t, err)
		assert.Empty(t, photos)

		_, err = store.StatObject(ctx, photo.ImageURL)
		assert.ErrorIs(t, err, photoshare.ErrObjectNotFound)
	})

	t.Run("cascades comments", func(t *testing.T) {
		svc, _, _ := setupTestService(t)

		photo, err := svc.CreatePhoto(ctx, photoRequest("Sunset"))
		require.NoError(t, err)
		_, err = svc.AddComment(ctx, photoshare.AddCommentRequest{PhotoID: photo.ID, CommentText: "Nice!"})
		require.NoError(t, err)

		require.NoError(t, svc.DeletePhoto(ctx, photo.ID))

		comments, err := svc.ListComments(ctx, photo.ID)
		require.NoError(t, err)
		assert.Empty(t, comments)
	})

	t.Run("unknown photo touches nothing", func(t *testing.T) {
		store := &flakyStore{BlobStore: memorystorage.New(memorystorage.Config{})}
		svc, err := photoshare.New(
			photoshare.WithRepository(memory.New()),
			photoshare.WithBlobStore(store),
		)
		require.NoError(t, err)

		err = svc.DeletePhoto(ctx, 9999)
		assert.ErrorIs(t, err, photoshare.ErrPhotoNotFound)
		assert.Zero(t, store.deletes, "no blob delete may happen for a missing photo")
	})

	t.Run("failing object store still removes the row", func(t *testing.T) {
		repo := memory.New()
		inner := memorystorage.New(memorystorage.Config{})
		store := &flakyStore{BlobStore: inner}
		journal := photoshare.NewMemoryJournal()
		svc, err := photoshare.New(
			photoshare.WithRepository(repo),
			photoshare.WithBlobStore(store),
			photoshare.WithCleanupJournal(journal),
		)
		require.NoError(t, err)

		photo, err := svc.CreatePhoto(ctx, photoRequest("Sunset"))
		require.NoError(t, err)

		store.failDeletes = true
		require.NoError(t, svc.DeletePhoto(ctx, photo.ID), "a blob delete failure must not strand the row")

		photos, err := repo.ListPhotos(ctx)
		require.NoError(t, err)
		assert.Empty(t, photos)

		pending, err := journal.Pending(ctx)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, inner.ObjectKey(photo.ImageURL), pending[0])
	})
}

func TestAddComment(t *testing.T) {
	ctx := context.Background()

	t.Run("stores trimmed text", func(t *testing.T) {
		svc, _, _ := setupTestService(t)

		photo, err := svc.CreatePhoto(ctx, photoRequest("Sunset"))
		require.NoError(t, err)

		comment, err := svc.AddComment(ctx, photoshare.AddCommentRequest{
			PhotoID:     photo.ID,
			CommentText: "  Nice shot!  ",
		})
		require.NoError(t, err)
		assert.NotZero(t, comment.ID)
		assert.Equal(t, photo.ID, comment.PhotoID)
		assert.Equal(t, "Nice shot!", comment.CommentText)
		assert.False(t, comment.CreatedAt.IsZero())
	})

	t.Run("rejects blank text before the insert", func(t *testing.T) {
		repo := &failingRepository{Repository: memory.New()}
		svc, err := photoshare.New(
			photoshare.WithRepository(repo),
			photoshare.WithBlobStore(memorystorage.New(memorystorage.Config{})),
		)
		require.NoError(t, err)

		_, err = svc.AddComment(ctx, photoshare.AddCommentRequest{PhotoID: 1, CommentText: " \t\n "})
		require.Error(t, err)
		assert.ErrorIs(t, err, photoshare.ErrInvalidInput)
		assert.Zero(t, repo.commentInserts, "blank comments must never reach the repository")
	})

	t.Run("maps missing photo to not found", func(t *testing.T) {
		svc, _, _ := setupTestService(t)

		_, err := svc.AddComment(ctx, photoshare.AddCommentRequest{PhotoID: 12345, CommentText: "hello"})
		require.Error(t, err)
		assert.ErrorIs(t, err, photoshare.ErrPhotoNotFound)
	})
}

func TestListPhotosNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	base := time.Now().UTC()

	for i, title := range []string{"oldest", "middle", "newest"} {
		photo := &photoshare.Photo{
			Title:     title,
			ImageURL:  "memory://store/photos/" + title + ".jpg",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, repo.CreatePhoto(ctx, photo))
	}

	svc, err := photoshare.New(
		photoshare.WithRepository(repo),
		photoshare.WithBlobStore(memorystorage.New(memorystorage.Config{})),
	)
	require.NoError(t, err)

	photos, err := svc.ListPhotos(ctx)
	require.NoError(t, err)
	require.Len(t, photos, 3)
	assert.Equal(t, "newest", photos[0].Title)
	assert.Equal(t, "middle", photos[1].Title)
	assert.Equal(t, "oldest", photos[2].Title)
}

func TestListCommentsNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := setupTestService(t)

	photo, err := svc.CreatePhoto(ctx, photoRequest("Sunset"))
	require.NoError(t, err)

	base := time.Now().UTC()
	for i, text := range []string{"first", "second", "third"} {
		comment := &photoshare.Comment{
			PhotoID:     photo.ID,
			CommentText: text,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.CreateComment(ctx, comment))
	}

	comments, err := svc.ListComments(ctx, photo.ID)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	assert.Equal(t, "third", comments[0].CommentText)
	assert.Equal(t, "second", comments[1].CommentText)
	assert.Equal(t, "first", comments[2].CommentText)
}

func TestEventSinkFailuresDoNotFailOperations(t *testing.T) {
	ctx := context.Background()
	sink := &recordingSink{fail: true}

	svc, err := photoshare.New(
		photoshare.WithRepository(memory.New()),
		photoshare.WithBlobStore(memorystorage.New(memorystorage.Config{})),
		photoshare.WithEventSink(sink),
	)
	require.NoError(t, err)

	photo, err := svc.CreatePhoto(ctx, photoRequest("Sunset"))
	require.NoError(t, err, "a failing event sink must not fail the create")

	_, err = svc.AddComment(ctx, photoshare.AddCommentRequest{PhotoID: photo.ID, CommentText: "Nice!"})
	require.NoError(t, err)

	require.NoError(t, svc.DeletePhoto(ctx, photo.ID))

	assert.Equal(t, []int64{photo.ID}, sink.created)
	assert.Equal(t, []int64{photo.ID}, sink.deleted)
	assert.Len(t, sink.comments, 1)
}
