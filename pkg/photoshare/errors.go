package photoshare

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrPhotoNotFound indicates a photo was not found
	ErrPhotoNotFound = errors.New("photo not found")

	// ErrObjectNotFound indicates a stored object was not found
	ErrObjectNotFound = errors.New("object not found")

	// ErrInvalidInput indicates caller-supplied data failed validation
	ErrInvalidInput = errors.New("invalid input")

	// ErrUploadFailed indicates the image bytes could not be written to the
	// object store; no metadata row exists for the attempt
	ErrUploadFailed = errors.New("image upload failed")

	// ErrWriteFailed indicates the metadata insert failed after the image
	// bytes were already stored
	ErrWriteFailed = errors.New("metadata write failed")

	// ErrStoreUnavailable indicates the object store client was never
	// initialized or cannot be reached
	ErrStoreUnavailable = errors.New("object store unavailable")

	// ErrForeignKeyViolation indicates an insert referenced a photo row
	// that does not exist
	ErrForeignKeyViolation = errors.New("referenced photo does not exist")
)

// PhotoError represents an error related to photo operations
type PhotoError struct {
	PhotoID int64
	Op      string
	Err     error
}

func (e *PhotoError) Error() string {
	return fmt.Sprintf("photo operation %s failed for photo %d: %v", e.Op, e.PhotoID, e.Err)
}

func (e *PhotoError) Unwrap() error {
	return e.Err
}

// CommentError represents an error related to comment operations
type CommentError struct {
	PhotoID int64
	Op      string
	Err     error
}

func (e *CommentError) Error() string {
	return fmt.Sprintf("comment operation %s failed for photo %d: %v", e.Op, e.PhotoID, e.Err)
}

func (e *CommentError) Unwrap() error {
	return e.Err
}

// StorageError represents an error related to storage operations
type StorageError struct {
	Backend string
	Key     string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s on backend %s: %v", e.Op, e.Key, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
