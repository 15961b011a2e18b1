package minio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/mediastash/photoshare/pkg/photoshare"
)

// Config options for the MinIO backend
type Config struct {
	Endpoint        string // host:port of the MinIO server
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Bucket          string // Bucket (container) name

	// PublicURLPrefix overrides the scheme and host of object URLs; the
	// bucket path segment is always kept so keys stay recoverable.
	PublicURLPrefix string

	CreateBucketIfNotExist bool
}

// Backend is a MinIO implementation of the photoshare.BlobStore interface,
// using the native MinIO SDK instead of the AWS one.
type Backend struct {
	client    *minio.Client
	bucket    string
	urlPrefix string
}

// New creates a new MinIO storage backend
func New(config Config) (photoshare.BlobStore, error) {
	if config.Endpoint == "" {
		return nil, errors.New("endpoint is required")
	}
	if config.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}

	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKeyID, config.SecretAccessKey, ""),
		Secure: config.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	if config.CreateBucketIfNotExist {
		ctx := context.Background()
		exists, err := client.BucketExists(ctx, config.Bucket)
		if err != nil {
			return nil, fmt.Errorf("failed to check bucket: %w", err)
		}
		if !exists {
			if err := client.MakeBucket(ctx, config.Bucket, minio.MakeBucketOptions{}); err != nil {
				return nil, fmt.Errorf("failed to create bucket: %w", err)
			}
		}
	}

	urlPrefix := config.PublicURLPrefix
	if urlPrefix == "" {
		scheme := "http"
		if config.UseSSL {
			scheme = "https"
		}
		urlPrefix = scheme + "://" + config.Endpoint
	}

	return &Backend{
		client:    client,
		bucket:    config.Bucket,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
	}, nil
}

// Upload stores the image bytes under the object key
func (b *Backend) Upload(ctx context.Context, reader io.Reader, params photoshare.UploadParams) error {
	size := params.Size
	if size <= 0 {
		// Unknown length; the SDK falls back to multipart streaming.
		size = -1
	}

	_, err := b.client.PutObject(ctx, b.bucket, params.ObjectKey, reader, size, minio.PutObjectOptions{
		ContentType: params.ContentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload to minio: %w", err)
	}
	return nil
}

// Delete removes an object. MinIO treats removal of a missing key as
// success, keeping the delete idempotent.
func (b *Backend) Delete(ctx context.Context, urlOrKey string) error {
	key := b.ObjectKey(urlOrKey)

	err := b.client.RemoveObject(ctx, b.bucket, key, minio.RemoveObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil
		}
		return fmt.Errorf("failed to delete from minio: %w", err)
	}
	return nil
}

// ObjectURL returns the stable public URL for an object key
func (b *Backend) ObjectURL(objectKey string) string {
	return b.urlPrefix + "/" + b.bucket + "/" + objectKey
}

// ObjectKey recovers the key from a URL built by ObjectURL
func (b *Backend) ObjectKey(urlOrKey string) string {
	return photoshare.ObjectKeyFromURL(urlOrKey, b.bucket)
}

// StatObject retrieves metadata for a stored object
func (b *Backend) StatObject(ctx context.Context, urlOrKey string) (*photoshare.ObjectMeta, error) {
	key := b.ObjectKey(urlOrKey)

	info, err := b.client.StatObject(ctx, b.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, photoshare.ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to stat minio object: %w", err)
	}

	return &photoshare.ObjectMeta{
		Key:         key,
		Size:        info.Size,
		ContentType: info.ContentType,
		UpdatedAt:   info.LastModified,
		ETag:        strings.Trim(info.ETag, "\""),
	}, nil
}

// ListObjects enumerates every object in the bucket
func (b *Backend) ListObjects(ctx context.Context) ([]photoshare.ObjectMeta, error) {
	var metas []photoshare.ObjectMeta

	for info := range b.client.ListObjects(ctx, b.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if info.Err != nil {
			return nil, fmt.Errorf("failed to list bucket: %w", info.Err)
		}
		metas = append(metas, photoshare.ObjectMeta{
			Key:         info.Key,
			Size:        info.Size,
			ContentType: info.ContentType,
			UpdatedAt:   info.LastModified,
			ETag:        strings.Trim(info.ETag, "\""),
		})
	}

	return metas, nil
}
