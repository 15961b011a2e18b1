package memory

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/mediastash/photoshare/pkg/photoshare"
)

// Backend is an in-memory implementation of the photoshare.BlobStore interface
type Backend struct {
	mu        sync.RWMutex
	container string
	urlPrefix string
	objects   map[string][]byte
	meta      map[string]photoshare.ObjectMeta
}

// Config options for the in-memory backend
type Config struct {
	Container string // Container name used in object URLs; defaults to photoshare.DefaultContainer
	URLPrefix string // Scheme and host part of object URLs
}

// New creates a new in-memory storage backend
func New(config Config) photoshare.BlobStore {
	if config.Container == "" {
		config.Container = photoshare.DefaultContainer
	}
	if config.URLPrefix == "" {
		config.URLPrefix = "memory://store"
	}
	return &Backend{
		container: config.Container,
		urlPrefix: strings.TrimRight(config.URLPrefix, "/"),
		objects:   make(map[string][]byte),
		meta:      make(map[string]photoshare.ObjectMeta),
	}
}

// Upload stores the stream under the object key
func (b *Backend) Upload(ctx context.Context, reader io.Reader, params photoshare.UploadParams) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	contentType := params.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[params.ObjectKey] = data
	b.meta[params.ObjectKey] = photoshare.ObjectMeta{
		Key:         params.ObjectKey,
		Size:        int64(len(data)),
		ContentType: contentType,
		UpdatedAt:   time.Now().UTC(),
	}
	return nil
}

// Delete removes an object. Missing objects are not an error.
func (b *Backend) Delete(ctx context.Context, urlOrKey string) error {
	key := b.ObjectKey(urlOrKey)

	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.objects, key)
	delete(b.meta, key)
	return nil
}

// ObjectURL returns the stable URL for an object key
func (b *Backend) ObjectURL(objectKey string) string {
	return b.urlPrefix + "/" + b.container + "/" + objectKey
}

// ObjectKey recovers the key from a URL built by ObjectURL
func (b *Backend) ObjectKey(urlOrKey string) string {
	return photoshare.ObjectKeyFromURL(urlOrKey, b.container)
}

// StatObject retrieves metadata for a stored object
func (b *Backend) StatObject(ctx context.Context, urlOrKey string) (*photoshare.ObjectMeta, error) {
	key := b.ObjectKey(urlOrKey)

	b.mu.RLock()
	defer b.mu.RUnlock()

	meta, exists := b.meta[key]
	if !exists {
		return nil, photoshare.ErrObjectNotFound
	}
	copied := meta
	return &copied, nil
}

// ListObjects enumerates every stored object
func (b *Backend) ListObjects(ctx context.Context) ([]photoshare.ObjectMeta, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	metas := make([]photoshare.ObjectMeta, 0, len(b.meta))
	for _, meta := range b.meta {
		metas = append(metas, meta)
	}
	return metas, nil
}
