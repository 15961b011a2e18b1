package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/mediastash/photoshare/pkg/photoshare"
)

// DefaultMaxUploadBytes caps multipart upload bodies unless configured otherwise.
const DefaultMaxUploadBytes = 32 << 20 // 32 MiB

// multipartMemory is how much of a parsed form is held in memory before
// spilling to temp files.
const multipartMemory = 10 << 20 // 10 MiB

// PhotosHandler handles the photo sharing API endpoints
type PhotosHandler struct {
	service        photoshare.Service
	maxUploadBytes int64
}

// NewPhotosHandler creates a handler for the photos API. maxUploadBytes
// bounds multipart request bodies; zero selects DefaultMaxUploadBytes.
func NewPhotosHandler(service photoshare.Service, maxUploadBytes int64) *PhotosHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &PhotosHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the router for the photos endpoints
func (h *PhotosHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListPhotos)
	r.Post("/", h.CreatePhoto)
	r.Delete("/{photoID}", h.DeletePhoto)
	r.Get("/{photoID}/comments", h.ListComments)
	r.Post("/{photoID}/comments", h.AddComment)
	return r
}

// AddCommentRequest represents the JSON body for commenting on a photo
type AddCommentRequest struct {
	CommentText string `json:"comment_text"`
}

// DeletePhotoResponse confirms which photo row was removed
type DeletePhotoResponse struct {
	Deleted int64 `json:"deleted"`
}

// ListPhotos returns every photo, newest first
func (h *PhotosHandler) ListPhotos(w http.ResponseWriter, r *http.Request) {
	photos, err := h.service.ListPhotos(r.Context())
	if err != nil {
		h.renderError(w, r, err, "Failed to list photos")
		return
	}
	if photos == nil {
		photos = []*photoshare.Photo{}
	}

	render.JSON(w, r, photos)
}

// CreatePhoto accepts a multipart form (title, caption, location, image)
// and stores the image bytes before the metadata row
func (h *PhotosHandler) CreatePhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "Image file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	req := photoshare.CreatePhotoRequest{
		Title:       r.FormValue("title"),
		Caption:     r.FormValue("caption"),
		Location:    r.FormValue("location"),
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Reader:      file,
	}

	photo, err := h.service.CreatePhoto(r.Context(), req)
	if err != nil {
		h.renderError(w, r, err, "Failed to create photo")
		return
	}

	slog.Info("Photo created", "photo_id", photo.ID, "title", photo.Title)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, photo)
}

// DeletePhoto removes a photo row and best-effort deletes its image
func (h *PhotosHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	photoID, err := parsePhotoID(r)
	if err != nil {
		http.Error(w, "Invalid photo ID", http.StatusBadRequest)
		return
	}

	if err := h.service.DeletePhoto(r.Context(), photoID); err != nil {
		h.renderError(w, r, err, "Failed to delete photo")
		return
	}

	slog.Info("Photo deleted", "photo_id", photoID)
	render.JSON(w, r, DeletePhotoResponse{Deleted: photoID})
}

// AddComment attaches a comment to a photo
func (h *PhotosHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	photoID, err := parsePhotoID(r)
	if err != nil {
		http.Error(w, "Invalid photo ID", http.StatusBadRequest)
		return
	}

	var req AddCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode request body", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	comment, err := h.service.AddComment(r.Context(), photoshare.AddCommentRequest{
		PhotoID:     photoID,
		CommentText: req.CommentText,
	})
	if err != nil {
		h.renderError(w, r, err, "Failed to add comment")
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, comment)
}

// ListComments returns the comments of a photo, newest first
func (h *PhotosHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	photoID, err := parsePhotoID(r)
	if err != nil {
		http.Error(w, "Invalid photo ID", http.StatusBadRequest)
		return
	}

	comments, err := h.service.ListComments(r.Context(), photoID)
	if err != nil {
		h.renderError(w, r, err, "Failed to list comments")
		return
	}
	if comments == nil {
		comments = []*photoshare.Comment{}
	}

	render.JSON(w, r, comments)
}

// renderError maps domain errors onto status codes. Validation problems are
// the caller's fault, missing photos are 404, everything else is a 500 with
// the cause logged but not leaked.
func (h *PhotosHandler) renderError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	switch {
	case errors.Is(err, photoshare.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, photoshare.ErrPhotoNotFound):
		http.Error(w, "Photo not found", http.StatusNotFound)
	default:
		slog.Error(msg, "error", err)
		http.Error(w, msg, http.StatusInternalServerError)
	}
}

func parsePhotoID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "photoID"), 10, 64)
}
