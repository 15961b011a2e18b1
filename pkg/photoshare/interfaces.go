package photoshare

import (
	"context"
	"io"
	"time"
)

// BlobStore defines the interface for object storage backends. Implementations
// hold one container (bucket) fixed at construction time.
type BlobStore interface {
	// Upload streams the image bytes to the given object key
	Upload(ctx context.Context, reader io.Reader, params UploadParams) error

	// Delete removes an object by key or full URL. Deleting an object that
	// does not exist is success (delete-if-exists).
	Delete(ctx context.Context, urlOrKey string) error

	// ObjectURL returns the stable public URL for an object key
	ObjectURL(objectKey string) string

	// ObjectKey recovers the object key from a URL by scanning for the
	// container path segment; input without the segment is returned as-is
	ObjectKey(urlOrKey string) string

	// StatObject retrieves metadata for an object, ErrObjectNotFound when missing
	StatObject(ctx context.Context, urlOrKey string) (*ObjectMeta, error)

	// ListObjects enumerates every object in the container
	ListObjects(ctx context.Context) ([]ObjectMeta, error)
}

// Repository defines the interface for photo and comment persistence
type Repository interface {
	// Photo operations
	CreatePhoto(ctx context.Context, photo *Photo) error
	ListPhotos(ctx context.Context) ([]*Photo, error)
	// GetPhotoImageURL returns the stored image URL for a photo,
	// ErrPhotoNotFound when the row does not exist
	GetPhotoImageURL(ctx context.Context, id int64) (string, error)
	// DeletePhoto removes the row and its comments, returning the number
	// of photo rows affected. Zero rows is not an error here.
	DeletePhoto(ctx context.Context, id int64) (int64, error)
	// ListImageURLs returns the image URL of every stored photo
	ListImageURLs(ctx context.Context) ([]string, error)

	// Comment operations
	// CreateComment inserts a comment, ErrForeignKeyViolation when the
	// referenced photo does not exist
	CreateComment(ctx context.Context, comment *Comment) error
	ListComments(ctx context.Context, photoID int64) ([]*Comment, error)
}

// EventSink defines the interface for event handling. Sink failures are
// logged by the service and never fail the operation that fired them.
type EventSink interface {
	// PhotoCreated is fired after a photo row is stored
	PhotoCreated(ctx context.Context, photo *Photo) error

	// PhotoDeleted is fired after a photo row is removed
	PhotoDeleted(ctx context.Context, photoID int64) error

	// CommentAdded is fired after a comment row is stored
	CommentAdded(ctx context.Context, comment *Comment) error
}

// CleanupJournal records object keys whose best-effort delete failed so the
// reconciler can retry them later.
type CleanupJournal interface {
	// Record remembers a key that still needs deleting
	Record(ctx context.Context, objectKey string) error

	// Pending returns the recorded keys
	Pending(ctx context.Context) ([]string, error)

	// Remove forgets a key once its object is gone
	Remove(ctx context.Context, objectKey string) error
}

// ObjectMeta contains metadata about an object in storage
type ObjectMeta struct {
	Key         string
	Size        int64
	ContentType string
	UpdatedAt   time.Time
	ETag        string
}

// UploadParams contains parameters for uploading an object. Size is the
// exact byte length of the stream; backends that upload in sized parts
// rely on it.
type UploadParams struct {
	ObjectKey   string
	ContentType string
	Size        int64
}
