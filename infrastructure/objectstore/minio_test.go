package objectstore

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"yt-audio-clipper/domain/distribution"

	"github.com/minio/minio-go/v7"
)

type mockBucketAPI struct {
	exists      bool
	created     []string
	putKey      string
	putPath     string
	putOpts     minio.PutObjectOptions
	presignedIn time.Duration

	existsErr  error
	makeErr    error
	putErr     error
	presignErr error
}

func (m *mockBucketAPI) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	return m.exists, m.existsErr
}

func (m *mockBucketAPI) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	if m.makeErr != nil {
		return m.makeErr
	}
	m.created = append(m.created, bucketName+"@"+opts.Region)
	return nil
}

func (m *mockBucketAPI) FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if m.putErr != nil {
		return minio.UploadInfo{}, m.putErr
	}
	m.putKey = objectName
	m.putPath = filePath
	m.putOpts = opts
	return minio.UploadInfo{Bucket: bucketName, Key: objectName, Size: 2048}, nil
}

func (m *mockBucketAPI) PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error) {
	if m.presignErr != nil {
		return nil, m.presignErr
	}
	m.presignedIn = expires
	return url.Parse("http://localhost:9000/" + bucketName + "/" + objectName + "?X-Amz-Signature=abc")
}

func request() distribution.UploadRequest {
	return distribution.UploadRequest{
		LocalPath: "/srv/public/temp_audio/Song_1.0_2.0.mp3",
		FileName:  "Song_1.0_2.0.mp3",
		MimeType:  distribution.MimeTypeMP3,
	}
}

func TestStore_Upload(t *testing.T) {
	api := &mockBucketAPI{}
	store, err := New(Config{Bucket: "clips", Region: "us-east-1"}, withAPI(api))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	result, err := store.Upload(context.Background(), request())
	if err != nil {
		t.Fatalf("Upload() error: %v", err)
	}

	if len(api.created) != 1 || api.created[0] != "clips@us-east-1" {
		t.Errorf("expected bucket creation, got %v", api.created)
	}
	if api.putKey != "temp_audio/Song_1.0_2.0.mp3" {
		t.Errorf("object key = %q", api.putKey)
	}
	if api.putPath != "/srv/public/temp_audio/Song_1.0_2.0.mp3" {
		t.Errorf("file path = %q", api.putPath)
	}
	if api.putOpts.ContentType != "audio/mpeg" {
		t.Errorf("content type = %q", api.putOpts.ContentType)
	}
	if api.presignedIn != DefaultPresignExpiry {
		t.Errorf("expiry = %v", api.presignedIn)
	}
	if result.Target != "minio" || result.ID != "temp_audio/Song_1.0_2.0.mp3" || result.Size != 2048 {
		t.Errorf("unexpected result: %+v", result)
	}
	if !strings.HasPrefix(result.URL, "http://localhost:9000/clips/temp_audio/") {
		t.Errorf("URL = %q", result.URL)
	}
}

func TestStore_Upload_ExistingBucketAndOptions(t *testing.T) {
	api := &mockBucketAPI{exists: true}
	store, _ := New(Config{Bucket: "clips"}, withAPI(api), WithKeyPrefix("shared"), WithPresignExpiry(time.Hour))

	if _, err := store.Upload(context.Background(), request()); err != nil {
		t.Fatalf("Upload() error: %v", err)
	}
	if len(api.created) != 0 {
		t.Errorf("expected no bucket creation, got %v", api.created)
	}
	if api.putKey != "shared/Song_1.0_2.0.mp3" {
		t.Errorf("object key = %q", api.putKey)
	}
	if api.presignedIn != time.Hour {
		t.Errorf("expiry = %v", api.presignedIn)
	}
}

func TestStore_Upload_Errors(t *testing.T) {
	tests := []struct {
		name        string
		api         *mockBucketAPI
		errContains string
	}{
		{"bucket check fails", &mockBucketAPI{existsErr: errors.New("unreachable")}, "failed to check bucket clips"},
		{"bucket create fails", &mockBucketAPI{makeErr: errors.New("denied")}, "failed to create bucket clips"},
		{"put fails", &mockBucketAPI{exists: true, putErr: errors.New("disk full")}, "failed to upload object temp_audio/Song_1.0_2.0.mp3"},
		{"presign fails", &mockBucketAPI{exists: true, presignErr: errors.New("bad key")}, "failed to presign object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _ := New(Config{Bucket: "clips"}, withAPI(tt.api))
			_, err := store.Upload(context.Background(), request())
			if err == nil || !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("Upload() error = %v, want error containing %q", err, tt.errContains)
			}
		})
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name        string
		cfg         Config
		errContains string
	}{
		{"missing bucket", Config{Endpoint: "localhost:9000"}, "bucket is not configured"},
		{"missing endpoint", Config{Bucket: "clips"}, "endpoint is not configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			if err == nil || !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("New() error = %v, want error containing %q", err, tt.errContains)
			}
		})
	}
}

func TestNew_RealClient(t *testing.T) {
	store, err := New(Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b", Bucket: "clips"})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if _, ok := store.api.(*minio.Client); !ok {
		t.Errorf("expected *minio.Client, got %T", store.api)
	}
}
