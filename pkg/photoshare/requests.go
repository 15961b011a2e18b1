package photoshare

import "io"

// Request DTOs

// CreatePhotoRequest contains parameters for creating a photo. Reader
// streams the image bytes; FileName supplies the extension for the stored
// object key.
type CreatePhotoRequest struct {
	Title       string
	Caption     string
	Location    string
	FileName    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// AddCommentRequest contains parameters for commenting on a photo.
type AddCommentRequest struct {
	PhotoID     int64
	CommentText string
}
