package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/mediastash/photoshare/pkg/photoshare"
)

// Backend is a filesystem implementation of the photoshare.BlobStore
// interface, intended for development and tests. Objects live as plain
// files under BaseDir and are addressed as {URLPrefix}/{container}/{key}.
type Backend struct {
	baseDir   string
	container string
	urlPrefix string
}

// Config options for the filesystem backend
type Config struct {
	BaseDir   string // Base directory for storing files
	Container string // Container name used in object URLs; defaults to photoshare.DefaultContainer
	URLPrefix string // Scheme and host part of object URLs, e.g. http://localhost:4000
}

// New creates a new filesystem storage backend
func New(config Config) (photoshare.BlobStore, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}
	if config.Container == "" {
		config.Container = photoshare.DefaultContainer
	}
	if config.URLPrefix == "" {
		config.URLPrefix = "file://" + config.BaseDir
	}

	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &Backend{
		baseDir:   config.BaseDir,
		container: config.Container,
		urlPrefix: strings.TrimRight(config.URLPrefix, "/"),
	}, nil
}

// Upload writes the stream to a file under the base directory
func (b *Backend) Upload(ctx context.Context, reader io.Reader, params photoshare.UploadParams) error {
	filePath, err := b.filePath(params.ObjectKey)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// Delete removes the backing file. A missing file is not an error.
func (b *Backend) Delete(ctx context.Context, urlOrKey string) error {
	filePath, err := b.filePath(b.ObjectKey(urlOrKey))
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
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
	filePath, err := b.filePath(key)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil, photoshare.ErrObjectNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return &photoshare.ObjectMeta{
		Key:         key,
		Size:        info.Size(),
		ContentType: detectContentType(filePath),
		UpdatedAt:   info.ModTime(),
	}, nil
}

// ListObjects walks the base directory and reports every stored file
func (b *Backend) ListObjects(ctx context.Context) ([]photoshare.ObjectMeta, error) {
	var metas []photoshare.ObjectMeta
	err := filepath.WalkDir(b.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(b.baseDir, path)
		if err != nil {
			return err
		}
		metas = append(metas, photoshare.ObjectMeta{
			Key:       filepath.ToSlash(rel),
			Size:      info.Size(),
			UpdatedAt: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk base directory: %w", err)
	}
	return metas, nil
}

// filePath resolves an object key inside the base directory and rejects
// keys that would escape it.
func (b *Backend) filePath(objectKey string) (string, error) {
	if objectKey == "" {
		return "", errors.New("object key is required")
	}
	cleaned := filepath.Clean(filepath.FromSlash(objectKey))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid object key: %s", objectKey)
	}
	return filepath.Join(b.baseDir, cleaned), nil
}

func detectContentType(filePath string) string {
	contentType := "application/octet-stream"
	if file, err := os.Open(filePath); err == nil {
		defer file.Close()
		buffer := make([]byte, 512)
		if n, err := file.Read(buffer); err == nil {
			contentType = http.DetectContentType(buffer[:n])
		}
	}
	return contentType
}
