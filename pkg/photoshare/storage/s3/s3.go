package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/mediastash/photoshare/pkg/photoshare"
)

// Config options for the S3 backend
type Config struct {
	Region          string // AWS region
	Bucket          string // S3 bucket (container) name
	AccessKeyID     string // AWS access key ID
	SecretAccessKey string // AWS secret access key
	Endpoint        string // Optional custom endpoint for S3-compatible services
	UsePathStyle    bool   // Use path-style addressing (default: false)

	// PublicURLPrefix overrides the scheme and host of object URLs, for
	// deployments serving the bucket through a CDN or reverse proxy. The
	// bucket path segment is always kept so keys stay recoverable from URLs.
	PublicURLPrefix string

	// Server-side encryption options
	EnableSSE    bool   // Enable server-side encryption
	SSEAlgorithm string // SSE algorithm (AES256 or aws:kms)
	SSEKMSKeyID  string // Optional KMS key ID for aws:kms algorithm

	// MinIO/S3-compatible service options
	CreateBucketIfNotExist bool // Create bucket if it doesn't exist
}

// Backend is an S3-compatible implementation of the photoshare.BlobStore interface
type Backend struct {
	client    *s3.Client
	bucket    string
	urlPrefix string
	config    Config
}

// New creates a new S3-compatible storage backend
func New(config Config) (photoshare.BlobStore, error) {
	if config.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}

	if config.Region == "" {
		config.Region = "us-east-1"
	}

	// Set up AWS config
	var awsCfg aws.Config
	var err error

	if config.AccessKeyID != "" && config.SecretAccessKey != "" {
		// Use provided credentials
		awsCfg, err = awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(config.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				config.AccessKeyID,
				config.SecretAccessKey,
				"",
			)),
		)
	} else {
		// Use default credential chain
		awsCfg, err = awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(config.Region),
		)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Configure S3 client options
	var s3Options []func(*s3.Options)

	// Custom endpoint for S3-compatible services (MinIO, etc.)
	if config.Endpoint != "" {
		s3Options = append(s3Options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(config.Endpoint)
			o.UsePathStyle = config.UsePathStyle
		})
	}

	client := s3.NewFromConfig(awsCfg, s3Options...)

	backend := &Backend{
		client:    client,
		bucket:    config.Bucket,
		urlPrefix: publicURLPrefix(config),
		config:    config,
	}

	// Create bucket if requested
	if config.CreateBucketIfNotExist {
		if err := backend.createBucketIfNotExists(context.Background()); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return backend, nil
}

// publicURLPrefix picks the host part of object URLs. Object URLs are
// always path style (.../{bucket}/{key}) so ObjectKey can recover the key
// by scanning for the bucket segment.
func publicURLPrefix(config Config) string {
	if config.PublicURLPrefix != "" {
		return strings.TrimRight(config.PublicURLPrefix, "/")
	}
	if config.Endpoint != "" {
		return strings.TrimRight(config.Endpoint, "/")
	}
	return fmt.Sprintf("https://s3.%s.amazonaws.com", config.Region)
}

// createBucketIfNotExists creates the bucket if it doesn't exist
func (b *Backend) createBucketIfNotExists(ctx context.Context) error {
	// Check if bucket exists
	_, err := b.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(b.bucket),
	})

	if err == nil {
		// Bucket exists
		return nil
	}

	// Check if error indicates bucket doesn't exist (handle multiple error types for MinIO compatibility)
	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket

	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) &&
		!strings.Contains(err.Error(), "BadRequest") &&
		!strings.Contains(err.Error(), "NoSuchBucket") {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	// Create bucket
	createInput := &s3.CreateBucketInput{
		Bucket: aws.String(b.bucket),
	}

	// Add location constraint for regions other than us-east-1
	if b.config.Region != "us-east-1" {
		createInput.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(b.config.Region),
		}
	}

	_, err = b.client.CreateBucket(ctx, createInput)
	if err != nil {
		// Handle bucket already exists gracefully
		if strings.Contains(err.Error(), "BucketAlreadyExists") ||
			strings.Contains(err.Error(), "BucketAlreadyOwnedByYou") {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	return nil
}

// Upload uploads the image bytes to S3
func (b *Backend) Upload(ctx context.Context, reader io.Reader, params photoshare.UploadParams) error {
	uploader := manager.NewUploader(b.client)

	input := &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(params.ObjectKey),
		Body:   reader,
	}
	if params.ContentType != "" {
		input.ContentType = aws.String(params.ContentType)
	}

	// Add server-side encryption if enabled
	if b.config.EnableSSE {
		switch b.config.SSEAlgorithm {
		case "AES256":
			input.ServerSideEncryption = types.ServerSideEncryptionAes256
		case "aws:kms":
			input.ServerSideEncryption = types.ServerSideEncryptionAwsKms
			if b.config.SSEKMSKeyID != "" {
				input.SSEKMSKeyId = aws.String(b.config.SSEKMSKeyID)
			}
		}
	}

	if _, err := uploader.Upload(ctx, input); err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}

	return nil
}

// Delete removes an object. S3 reports success for missing keys, so the
// delete is idempotent without extra checks.
func (b *Backend) Delete(ctx context.Context, urlOrKey string) error {
	key := b.ObjectKey(urlOrKey)

	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to delete from S3: %w", err)
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

// StatObject retrieves metadata for an object in S3
func (b *Backend) StatObject(ctx context.Context, urlOrKey string) (*photoshare.ObjectMeta, error) {
	key := b.ObjectKey(urlOrKey)

	result, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, photoshare.ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to get object metadata: %w", err)
	}

	meta := &photoshare.ObjectMeta{
		Key:         key,
		ContentType: "application/octet-stream",
	}
	if result.ContentType != nil {
		meta.ContentType = *result.ContentType
	}
	if result.ContentLength != nil {
		meta.Size = *result.ContentLength
	}
	if result.LastModified != nil {
		meta.UpdatedAt = *result.LastModified
	}
	if result.ETag != nil {
		meta.ETag = strings.Trim(*result.ETag, "\"")
	}

	return meta, nil
}

// ListObjects enumerates the bucket, following continuation tokens
func (b *Backend) ListObjects(ctx context.Context) ([]photoshare.ObjectMeta, error) {
	var metas []photoshare.ObjectMeta

	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(b.bucket),
	}
	for {
		result, err := b.client.ListObjectsV2(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to list bucket: %w", err)
		}

		for _, obj := range result.Contents {
			meta := photoshare.ObjectMeta{}
			if obj.Key != nil {
				meta.Key = *obj.Key
			}
			if obj.Size != nil {
				meta.Size = *obj.Size
			}
			if obj.LastModified != nil {
				meta.UpdatedAt = *obj.LastModified
			}
			if obj.ETag != nil {
				meta.ETag = strings.Trim(*obj.ETag, "\"")
			}
			metas = append(metas, meta)
		}

		if result.IsTruncated == nil || !*result.IsTruncated {
			break
		}
		input.ContinuationToken = result.NextContinuationToken
	}

	return metas, nil
}

// isNotFound reports whether err says the object does not exist. MinIO and
// AWS disagree on the exact error shape, so both the typed errors and the
// generic API error code are checked.
func isNotFound(err error) bool {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}
