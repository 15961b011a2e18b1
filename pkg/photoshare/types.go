package photoshare

import "time"

// Field limits enforced before any store I/O. They mirror the column
// widths of the photos table.
const (
	MaxTitleLen    = 255
	MaxCaptionLen  = 500
	MaxLocationLen = 255
)

// DefaultContainer is the object store container (bucket) images live in
// unless configured otherwise.
const DefaultContainer = "photos"

// Photo represents a shared photo: a metadata row plus the public URL of
// the image bytes held by the object store.
type Photo struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Caption   string    `json:"caption,omitempty"`
	Location  string    `json:"location,omitempty"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment represents a comment attached to a photo. Comments are removed
// with their photo (ON DELETE CASCADE).
type Comment struct {
	ID          int64     `json:"id"`
	PhotoID     int64     `json:"photo_id"`
	CommentText string    `json:"comment_text"`
	CreatedAt   time.Time `json:"created_at"`
}
