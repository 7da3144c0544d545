// Package storage provides the object storage client used for photo binaries.
package storage

import (
	"context"
	"io"
)

// ObjectStorage abstracts the blob store photos are uploaded to.
type ObjectStorage interface {
	// Put uploads body under key with the given content type. Objects are
	// publicly readable once stored.
	Put(ctx context.Context, key, contentType string, body io.Reader) error
}
