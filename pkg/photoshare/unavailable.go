package photoshare

import (
	"context"
	"fmt"
	"io"
)

// UnavailableStore is a BlobStore whose backing client could not be
// initialized. Every method fails with ErrStoreUnavailable carrying the
// construction error, so a misconfigured object store degrades uploads to
// per-request failures instead of keeping the process from starting.
type UnavailableStore struct {
	reason error
}

// NewUnavailableStore creates a blob store stub that reports the given
// construction failure on every call.
func NewUnavailableStore(reason error) *UnavailableStore {
	return &UnavailableStore{reason: reason}
}

func (u *UnavailableStore) err() error {
	if u.reason != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, u.reason)
	}
	return ErrStoreUnavailable
}

func (u *UnavailableStore) Upload(ctx context.Context, reader io.Reader, params UploadParams) error {
	return u.err()
}

func (u *UnavailableStore) Delete(ctx context.Context, urlOrKey string) error {
	return u.err()
}

// ObjectURL has no endpoint to build against and returns an empty URL.
func (u *UnavailableStore) ObjectURL(objectKey string) string {
	return ""
}

func (u *UnavailableStore) ObjectKey(urlOrKey string) string {
	return urlOrKey
}

func (u *UnavailableStore) StatObject(ctx context.Context, urlOrKey string) (*ObjectMeta, error) {
	return nil, u.err()
}

func (u *UnavailableStore) ListObjects(ctx context.Context) ([]ObjectMeta, error) {
	return nil, u.err()
}
