package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"melodify/config"
	"melodify/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// publicReadPolicy lets anonymous clients GET objects, which public URLs rely on.
const publicReadPolicy = `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`

// BucketStats 存储桶统计信息
type BucketStats struct {
	TotalObjects int64
	TotalSize    int64
	LastModified time.Time
}

// ObjectInfo 文件信息
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
	ContentType  string
	ETag         string
}

// MinioStore implements ObjectStore on MinIO or any S3-compatible service.
type MinioStore struct {
	client     *minio.Client
	region     string
	publicBase string
}

// NewMinioStore creates the client. It does not contact the server.
func NewMinioStore(cfg *config.Config) (*MinioStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}
	return &MinioStore{
		client:     client,
		region:     cfg.MinioRegion,
		publicBase: strings.TrimRight(cfg.StoragePublicURL, "/"),
	}, nil
}

// Upload writes in.Body under in.Bucket/in.Key.
func (s *MinioStore) Upload(ctx context.Context, in UploadInput) error {
	if !in.Upsert {
		_, err := s.client.StatObject(ctx, in.Bucket, in.Key, minio.StatObjectOptions{})
		if err == nil {
			return fmt.Errorf("%s/%s: %w", in.Bucket, in.Key, ErrObjectExists)
		}
		if minio.ToErrorResponse(err).Code != "NoSuchKey" {
			return fmt.Errorf("failed to stat object %s/%s: %w", in.Bucket, in.Key, err)
		}
	}

	_, err := s.client.PutObject(ctx, in.Bucket, in.Key, bytes.NewReader(in.Body), int64(len(in.Body)), minio.PutObjectOptions{
		ContentType: in.ContentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s/%s: %w", in.Bucket, in.Key, err)
	}
	return nil
}

// PublicURL joins the public base, bucket and escaped key.
func (s *MinioStore) PublicURL(bucket, key string) string {
	return s.publicBase + "/" + url.PathEscape(bucket) + "/" + url.PathEscape(key)
}

// EnsureBuckets creates any missing bucket and makes it publicly readable.
func (s *MinioStore) EnsureBuckets(ctx context.Context, buckets ...string) error {
	for _, bucket := range buckets {
		exists, err := s.client.BucketExists(ctx, bucket)
		if err != nil {
			return fmt.Errorf("failed to check bucket %s: %w", bucket, err)
		}
		if !exists {
			if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
			logger.Info("Created bucket", logger.String("bucket", bucket))
		}
		if err := s.client.SetBucketPolicy(ctx, bucket, fmt.Sprintf(publicReadPolicy, bucket)); err != nil {
			return fmt.Errorf("failed to set public policy on %s: %w", bucket, err)
		}
	}
	return nil
}

// ListObjects 列出存储桶中的对象及统计信息
func (s *MinioStore) ListObjects(ctx context.Context, bucket, prefix string) ([]ObjectInfo, *BucketStats, error) {
	stats := &BucketStats{}
	var objects []ObjectInfo

	for object := range s.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if object.Err != nil {
			return nil, nil, fmt.Errorf("failed to list objects in %s: %w", bucket, object.Err)
		}
		stats.TotalObjects++
		stats.TotalSize += object.Size
		if object.LastModified.After(stats.LastModified) {
			stats.LastModified = object.LastModified
		}
		objects = append(objects, ObjectInfo{
			Key:          object.Key,
			Size:         object.Size,
			LastModified: object.LastModified,
			ContentType:  object.ContentType,
			ETag:         object.ETag,
		})
	}
	return objects, stats, nil
}

// FormatStats renders stats the way the minio command prints them.
func FormatStats(bucket string, stats *BucketStats) string {
	return fmt.Sprintf("bucket=%s objects=%d size=%s last_modified=%s",
		bucket, stats.TotalObjects, formatSize(stats.TotalSize), stats.LastModified.Format(time.RFC3339))
}
