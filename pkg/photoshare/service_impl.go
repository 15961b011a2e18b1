package photoshare

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mediastash/photoshare/pkg/photoshare/objectkey"
)

// service implements the Service interface
type service struct {
	repository Repository
	blobStore  BlobStore
	eventSink  EventSink
	journal    CleanupJournal
	keygen     objectkey.Generator
	logger     *slog.Logger
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the metadata repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithBlobStore sets the object storage backend for the service
func WithBlobStore(store BlobStore) Option {
	return func(s *service) {
		s.blobStore = store
	}
}

// WithEventSink sets the event sink for the service
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.eventSink = sink
	}
}

// WithCleanupJournal sets the journal that records failed blob deletes
func WithCleanupJournal(journal CleanupJournal) Option {
	return func(s *service) {
		s.journal = journal
	}
}

// WithObjectKeyGenerator sets the object key generation strategy
func WithObjectKeyGenerator(gen objectkey.Generator) Option {
	return func(s *service) {
		s.keygen = gen
	}
}

// WithLogger sets the logger for the service
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.blobStore == nil {
		return nil, fmt.Errorf("blob store is required")
	}
	if s.keygen == nil {
		s.keygen = objectkey.NewUUIDGenerator()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s, nil
}

// Photo operations

func (s *service) CreatePhoto(ctx context.Context, req CreatePhotoRequest) (*Photo, error) {
	if err := validateCreatePhoto(&req); err != nil {
		return nil, err
	}

	// Image bytes go to the object store first. A failure past this point
	// can orphan a blob but never leaves a row pointing at missing bytes.
	key := s.keygen.GenerateKey(req.FileName)
	params := UploadParams{ObjectKey: key, ContentType: req.ContentType, Size: req.Size}
	if err := s.blobStore.Upload(ctx, req.Reader, params); err != nil {
		if errors.Is(err, ErrStoreUnavailable) {
			return nil, fmt.Errorf("upload image: %w", err)
		}
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	photo := &Photo{
		Title:    strings.TrimSpace(req.Title),
		Caption:  strings.TrimSpace(req.Caption),
		Location: strings.TrimSpace(req.Location),
		ImageURL: s.blobStore.ObjectURL(key),
	}
	if err := s.repository.CreatePhoto(ctx, photo); err != nil {
		// The blob is already stored; try to take it back out. If that
		// fails too the reconciler picks it up from the journal.
		s.cleanupObject(ctx, key)
		return nil, &PhotoError{Op: "create", Err: fmt.Errorf("%w: %w", ErrWriteFailed, err)}
	}

	if s.eventSink != nil {
		if err := s.eventSink.PhotoCreated(ctx, photo); err != nil {
			s.logger.Error("Photo created event failed", "photo_id", photo.ID, "err", err)
		}
	}

	return photo, nil
}

func (s *service) ListPhotos(ctx context.Context) ([]*Photo, error) {
	photos, err := s.repository.ListPhotos(ctx)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	return photos, nil
}

func (s *service) DeletePhoto(ctx context.Context, id int64) error {
	imageURL, err := s.repository.GetPhotoImageURL(ctx, id)
	if err != nil {
		if errors.Is(err, ErrPhotoNotFound) {
			return err
		}
		return &PhotoError{PhotoID: id, Op: "delete", Err: err}
	}

	// Blob delete is best effort: a storage failure must not strand the row.
	if imageURL != "" {
		s.cleanupObject(ctx, imageURL)
	}

	rows, err := s.repository.DeletePhoto(ctx, id)
	if err != nil {
		return &PhotoError{PhotoID: id, Op: "delete", Err: err}
	}
	if rows == 0 {
		// Row vanished between the lookup and the delete.
		return ErrPhotoNotFound
	}

	if s.eventSink != nil {
		if err := s.eventSink.PhotoDeleted(ctx, id); err != nil {
			s.logger.Error("Photo deleted event failed", "photo_id", id, "err", err)
		}
	}

	return nil
}

// Comment operations

func (s *service) AddComment(ctx context.Context, req AddCommentRequest) (*Comment, error) {
	text := strings.TrimSpace(req.CommentText)
	if text == "" {
		return nil, fmt.Errorf("%w: comment text is required", ErrInvalidInput)
	}

	comment := &Comment{
		PhotoID:     req.PhotoID,
		CommentText: text,
	}
	if err := s.repository.CreateComment(ctx, comment); err != nil {
		if errors.Is(err, ErrForeignKeyViolation) {
			return nil, fmt.Errorf("add comment: %w", ErrPhotoNotFound)
		}
		return nil, &CommentError{PhotoID: req.PhotoID, Op: "add", Err: err}
	}

	if s.eventSink != nil {
		if err := s.eventSink.CommentAdded(ctx, comment); err != nil {
			s.logger.Error("Comment added event failed", "photo_id", comment.PhotoID, "err", err)
		}
	}

	return comment, nil
}

func (s *service) ListComments(ctx context.Context, photoID int64) ([]*Comment, error) {
	comments, err := s.repository.ListComments(ctx, photoID)
	if err != nil {
		return nil, fmt.Errorf("list comments for photo %d: %w", photoID, err)
	}
	return comments, nil
}

// cleanupObject deletes an object without failing the surrounding operation.
// When the delete itself fails the key is journaled for the reconciler.
func (s *service) cleanupObject(ctx context.Context, urlOrKey string) {
	err := s.blobStore.Delete(ctx, urlOrKey)
	if err == nil {
		return
	}

	key := s.blobStore.ObjectKey(urlOrKey)
	s.logger.Error("Blob delete failed, leaving object to the reconciler", "key", key, "err", err)
	if s.journal != nil {
		if jerr := s.journal.Record(ctx, key); jerr != nil {
			s.logger.Error("Cleanup journal write failed", "key", key, "err", jerr)
		}
	}
}

func validateCreatePhoto(req *CreatePhotoRequest) error {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if len(title) > MaxTitleLen {
		return fmt.Errorf("%w: title exceeds %d characters", ErrInvalidInput, MaxTitleLen)
	}
	if len(strings.TrimSpace(req.Caption)) > MaxCaptionLen {
		return fmt.Errorf("%w: caption exceeds %d characters", ErrInvalidInput, MaxCaptionLen)
	}
	if len(strings.TrimSpace(req.Location)) > MaxLocationLen {
		return fmt.Errorf("%w: location exceeds %d characters", ErrInvalidInput, MaxLocationLen)
	}
	if req.Reader == nil || req.Size <= 0 {
		return fmt.Errorf("%w: image file is required", ErrInvalidInput)
	}
	if strings.TrimSpace(req.FileName) == "" {
		return fmt.Errorf("%w: image file name is required", ErrInvalidInput)
	}
	return nil
}
