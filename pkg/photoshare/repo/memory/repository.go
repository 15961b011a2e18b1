package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mediastash/photoshare/pkg/photoshare"
)

// Repository implements photoshare.Repository using in-memory storage
type Repository struct {
	mu            sync.RWMutex
	photos        map[int64]*photoshare.Photo
	comments      map[int64]*photoshare.Comment
	nextPhotoID   int64
	nextCommentID int64
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		photos:   make(map[int64]*photoshare.Photo),
		comments: make(map[int64]*photoshare.Comment),
	}
}

// Photo operations

func (r *Repository) CreatePhoto(ctx context.Context, photo *photoshare.Photo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextPhotoID++
	photo.ID = r.nextPhotoID
	if photo.CreatedAt.IsZero() {
		photo.CreatedAt = time.Now().UTC()
	}

	// Keep a copy to avoid external modifications
	photoCopy := *photo
	r.photos[photo.ID] = &photoCopy

	return nil
}

func (r *Repository) ListPhotos(ctx context.Context) ([]*photoshare.Photo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	photos := make([]*photoshare.Photo, 0, len(r.photos))
	for _, photo := range r.photos {
		photoCopy := *photo
		photos = append(photos, &photoCopy)
	}

	// Newest first, id as the tiebreak for equal timestamps
	sort.Slice(photos, func(i, j int) bool {
		if photos[i].CreatedAt.Equal(photos[j].CreatedAt) {
			return photos[i].ID > photos[j].ID
		}
		return photos[i].CreatedAt.After(photos[j].CreatedAt)
	})

	return photos, nil
}

func (r *Repository) GetPhotoImageURL(ctx context.Context, id int64) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	photo, exists := r.photos[id]
	if !exists {
		return "", photoshare.ErrPhotoNotFound
	}

	return photo.ImageURL, nil
}

func (r *Repository) DeletePhoto(ctx context.Context, id int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.photos[id]; !exists {
		return 0, nil
	}

	delete(r.photos, id)

	// Comments cascade with their photo
	for commentID, comment := range r.comments {
		if comment.PhotoID == id {
			delete(r.comments, commentID)
		}
	}

	return 1, nil
}

func (r *Repository) ListImageURLs(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	urls := make([]string, 0, len(r.photos))
	for _, photo := range r.photos {
		urls = append(urls, photo.ImageURL)
	}

	return urls, nil
}

// Comment operations

func (r *Repository) CreateComment(ctx context.Context, comment *photoshare.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.photos[comment.PhotoID]; !exists {
		return photoshare.ErrForeignKeyViolation
	}

	r.nextCommentID++
	comment.ID = r.nextCommentID
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}

	commentCopy := *comment
	r.comments[comment.ID] = &commentCopy

	return nil
}

func (r *Repository) ListComments(ctx context.Context, photoID int64) ([]*photoshare.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	comments := []*photoshare.Comment{}
	for _, comment := range r.comments {
		if comment.PhotoID == photoID {
			commentCopy := *comment
			comments = append(comments, &commentCopy)
		}
	}

	sort.Slice(comments, func(i, j int) bool {
		if comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].ID > comments[j].ID
		}
		return comments[i].CreatedAt.After(comments[j].CreatedAt)
	})

	return comments, nil
}
