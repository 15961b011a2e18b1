package photoshare

import (
	"context"
)

// Service coordinates the object store and the metadata store for photo
// operations. Write ordering is fixed: image bytes go to the object store
// before the metadata row is inserted, so a failure between the two leaves
// an orphaned blob, never a row pointing at missing bytes.
type Service interface {
	// Photo operations
	CreatePhoto(ctx context.Context, req CreatePhotoRequest) (*Photo, error)
	ListPhotos(ctx context.Context) ([]*Photo, error)
	DeletePhoto(ctx context.Context, id int64) error

	// Comment operations
	AddComment(ctx context.Context, req AddCommentRequest) (*Comment, error)
	ListComments(ctx context.Context, photoID int64) ([]*Comment, error)
}
