package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrObjectExists is returned by Upload when Upsert is false and the key is taken.
var ErrObjectExists = errors.New("object already exists")

// UploadInput describes one object write.
type UploadInput struct {
	Bucket      string
	Key         string
	Body        []byte
	ContentType string
	// Upsert overwrites an existing object with the same key.
	Upsert bool
}

// ObjectStore is the object-storage contract used by the upload handlers.
type ObjectStore interface {
	Upload(ctx context.Context, in UploadInput) error
	// PublicURL returns the unauthenticated URL of bucket/key.
	PublicURL(bucket, key string) string
}

// formatSize 格式化文件大小
func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
