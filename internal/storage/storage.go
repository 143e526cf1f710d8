package storage

import "context"

// ObjectInfo represents metadata for a stored object.
type ObjectInfo struct {
	Key         string
	Size        int64
	ContentType string
}

// ObjectStorage captures the minimal bucket operations the gallery needs.
type ObjectStorage interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	GetObject(ctx context.Context, key string) ([]byte, ObjectInfo, error)
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
}
