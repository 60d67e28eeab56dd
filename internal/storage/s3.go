package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/unibrain/backend/internal/config"
	"github.com/unibrain/backend/internal/models"
)

// ObjectAPI is the subset of the S3 client the store needs.
type ObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Uploader puts one object.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Store implements Store on an S3-compatible bucket. Metadata stays in
// memory like LocalStore; only the bytes live in the bucket.
type S3Store struct {
	mu       sync.RWMutex
	api      ObjectAPI
	uploader Uploader
	bucket   string
	prefix   string
	files    map[string]*models.FileInfo
}

// NewS3Store builds an S3 client from cfg.
func NewS3Store(ctx context.Context, cfg config.S3Config) (*S3Store, error) {
	var opts []func(*awsconfig.LoadOptions) error
	opts = append(opts, awsconfig.WithRegion(cfg.Region))

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	client := s3.NewFromConfig(awsCfg, s3Opts...)
	return NewS3StoreWithClient(client, manager.NewUploader(client), cfg.Bucket, cfg.Prefix), nil
}

// NewS3StoreWithClient wires an existing client, mainly for tests.
func NewS3StoreWithClient(api ObjectAPI, uploader Uploader, bucket, prefix string) *S3Store {
	return &S3Store{
		api:      api,
		uploader: uploader,
		bucket:   bucket,
		prefix:   prefix,
		files:    make(map[string]*models.FileInfo),
	}
}

func (s *S3Store) key(id string) string {
	return s.prefix + id
}

// Save buffers r to hash it, then uploads it.
func (s *S3Store) Save(ctx context.Context, name string, r io.Reader) (*models.FileInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	return s.SaveBytes(ctx, name, data)
}

// SaveBytes uploads data under a fresh id.
func (s *S3Store) SaveBytes(ctx context.Context, name string, data []byte) (*models.FileInfo, error) {
	id := uuid.New().String()
	contentType := ContentTypeFor(name)

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(id)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 upload: %w", err)
	}

	sum := sha256.Sum256(data)
	info := &models.FileInfo{
		ID:          id,
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(data)),
		SHA256:      hex.EncodeToString(sum[:]),
		UploadedAt:  time.Now(),
		Status:      "uploaded",
	}

	s.mu.Lock()
	s.files[id] = info
	s.mu.Unlock()

	return info, nil
}

// Get retrieves file metadata by ID.
func (s *S3Store) Get(id string) (*models.FileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, ok := s.files[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return info, nil
}

// Open streams the object body.
func (s *S3Store) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	if _, err := s.Get(id); err != nil {
		return nil, err
	}
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 download: %w", err)
	}
	return out.Body, nil
}

// List returns the most recent files.
func (s *S3Store) List(limit int) ([]*models.FileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return recent(s.files, limit), nil
}

// Delete removes the object and its metadata.
func (s *S3Store) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}

	_, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		return fmt.Errorf("s3 delete: %w", err)
	}

	s.mu.Lock()
	delete(s.files, id)
	s.mu.Unlock()
	return nil
}
