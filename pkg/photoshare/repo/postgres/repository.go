package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mediastash/photoshare/pkg/photoshare"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements photoshare.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// EnsureSchema creates the photos and comments tables when they do not
// exist yet. Comments ride on the photo row: deleting a photo cascades.
func EnsureSchema(ctx context.Context, db DBTX) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS photos (
			id         BIGSERIAL PRIMARY KEY,
			title      VARCHAR(255) NOT NULL,
			caption    VARCHAR(500),
			location   VARCHAR(255),
			image_url  TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT (now() AT TIME ZONE 'utc')
		)`,
		`CREATE TABLE IF NOT EXISTS comments (
			id           BIGSERIAL PRIMARY KEY,
			photo_id     BIGINT NOT NULL REFERENCES photos(id) ON DELETE CASCADE,
			comment_text TEXT NOT NULL,
			created_at   TIMESTAMP NOT NULL DEFAULT (now() AT TIME ZONE 'utc')
		)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_photo_id ON comments(photo_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

// handlePgError translates driver errors into domain errors. This is the
// only place Postgres error codes are inspected; everything above the
// repository works with the typed errors.
func (r *Repository) handlePgError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503": // foreign_key_violation
			return fmt.Errorf("%w: %s", photoshare.ErrForeignKeyViolation, pgErr.Message)
		case "23502": // not_null_violation
			return fmt.Errorf("%w: required field %s is missing", photoshare.ErrInvalidInput, pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return photoshare.ErrPhotoNotFound
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

// Photo operations

func (r *Repository) CreatePhoto(ctx context.Context, photo *photoshare.Photo) error {
	query := `
		INSERT INTO photos (title, caption, location, image_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query,
		photo.Title, nullable(photo.Caption), nullable(photo.Location), photo.ImageURL).
		Scan(&photo.ID, &photo.CreatedAt)
	if err != nil {
		return r.handlePgError("create photo", err)
	}

	return nil
}

func (r *Repository) ListPhotos(ctx context.Context) ([]*photoshare.Photo, error) {
	query := `
		SELECT id, title, caption, location, image_url, created_at
		FROM photos
		ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, r.handlePgError("list photos", err)
	}
	defer rows.Close()

	var photos []*photoshare.Photo
	for rows.Next() {
		var photo photoshare.Photo
		var caption, location *string
		if err := rows.Scan(&photo.ID, &photo.Title, &caption, &location,
			&photo.ImageURL, &photo.CreatedAt); err != nil {
			return nil, r.handlePgError("list photos", err)
		}
		photo.Caption = deref(caption)
		photo.Location = deref(location)
		photos = append(photos, &photo)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePgError("list photos", err)
	}

	return photos, nil
}

func (r *Repository) GetPhotoImageURL(ctx context.Context, id int64) (string, error) {
	query := `SELECT image_url FROM photos WHERE id = $1`

	var imageURL string
	err := r.db.QueryRow(ctx, query, id).Scan(&imageURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", photoshare.ErrPhotoNotFound
		}
		return "", r.handlePgError("get photo image url", err)
	}

	return imageURL, nil
}

func (r *Repository) DeletePhoto(ctx context.Context, id int64) (int64, error) {
	// Comments go with the photo through ON DELETE CASCADE.
	tag, err := r.db.Exec(ctx, `DELETE FROM photos WHERE id = $1`, id)
	if err != nil {
		return 0, r.handlePgError("delete photo", err)
	}

	return tag.RowsAffected(), nil
}

func (r *Repository) ListImageURLs(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT image_url FROM photos`)
	if err != nil {
		return nil, r.handlePgError("list image urls", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, r.handlePgError("list image urls", err)
		}
		urls = append(urls, url)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePgError("list image urls", err)
	}

	return urls, nil
}

// Comment operations

func (r *Repository) CreateComment(ctx context.Context, comment *photoshare.Comment) error {
	query := `
		INSERT INTO comments (photo_id, comment_text)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query, comment.PhotoID, comment.CommentText).
		Scan(&comment.ID, &comment.CreatedAt)
	if err != nil {
		return r.handlePgError("create comment", err)
	}

	return nil
}

func (r *Repository) ListComments(ctx context.Context, photoID int64) ([]*photoshare.Comment, error) {
	query := `
		SELECT id, photo_id, comment_text, created_at
		FROM comments
		WHERE photo_id = $1
		ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, query, photoID)
	if err != nil {
		return nil, r.handlePgError("list comments", err)
	}
	defer rows.Close()

	comments := []*photoshare.Comment{}
	for rows.Next() {
		var comment photoshare.Comment
		if err := rows.Scan(&comment.ID, &comment.PhotoID,
			&comment.CommentText, &comment.CreatedAt); err != nil {
			return nil, r.handlePgError("list comments", err)
		}
		comments = append(comments, &comment)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePgError("list comments", err)
	}

	return comments, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
