package objectstore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"time"

	"yt-audio-clipper/domain/distribution"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// DefaultPresignExpiry is how long a shared clip link stays valid
const DefaultPresignExpiry = 7 * 24 * time.Hour

// DefaultKeyPrefix mirrors the public output subdirectory
const DefaultKeyPrefix = "temp_audio"

// bucketAPI is the subset of *minio.Client used for uploads
type bucketAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
}

// Config holds the connection settings for an S3-compatible store
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// Store implements distribution.Uploader against a MinIO bucket
type Store struct {
	api       bucketAPI
	bucket    string
	region    string
	keyPrefix string
	expiry    time.Duration
}

// Option is a functional option for configuring Store
type Option func(*Store)

// WithKeyPrefix sets the object key prefix
func WithKeyPrefix(prefix string) Option {
	return func(s *Store) {
		s.keyPrefix = prefix
	}
}

// WithPresignExpiry sets how long returned URLs stay valid
func WithPresignExpiry(d time.Duration) Option {
	return func(s *Store) {
		s.expiry = d
	}
}

// withAPI sets a custom bucket API (for testing)
func withAPI(api bucketAPI) Option {
	return func(s *Store) {
		s.api = api
	}
}

// New creates a Store connected to the configured endpoint
func New(cfg Config, opts ...Option) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("minio bucket is not configured")
	}

	s := &Store{
		bucket:    cfg.Bucket,
		region:    cfg.Region,
		keyPrefix: DefaultKeyPrefix,
		expiry:    DefaultPresignExpiry,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.api == nil {
		if cfg.Endpoint == "" {
			return nil, errors.New("minio endpoint is not configured")
		}
		client, err := minio.New(cfg.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
			Secure: cfg.UseSSL,
			Region: cfg.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create minio client: %w", err)
		}
		s.api = client
	}

	return s, nil
}

// Upload implements distribution.Uploader
func (s *Store) Upload(ctx context.Context, req distribution.UploadRequest) (*distribution.UploadResult, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}

	key := path.Join(s.keyPrefix, req.FileName)
	info, err := s.api.FPutObject(ctx, s.bucket, key, req.LocalPath, minio.PutObjectOptions{
		ContentType: req.MimeType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload object %s: %w", key, err)
	}

	link, err := s.api.PresignedGetObject(ctx, s.bucket, key, s.expiry, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to presign object %s: %w", key, err)
	}

	return &distribution.UploadResult{
		Target:   "minio",
		ID:       key,
		FileName: req.FileName,
		URL:      link.String(),
		Size:     info.Size,
	}, nil
}

// ensureBucket creates the bucket when it does not exist yet
func (s *Store) ensureBucket(ctx context.Context) error {
	exists, err := s.api.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.api.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Ensure Store implements distribution.Uploader
var _ distribution.Uploader = (*Store)(nil)
