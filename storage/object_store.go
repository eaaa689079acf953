package storage

import (
	"context"
	"io"
)

// ObjectStore keeps archived documents in a bucket that is readable over HTTP.
type ObjectStore interface {
	// Put writes body under key, replacing any previous object.
	Put(ctx context.Context, key, contentType string, body io.Reader) (*StoredObject, error)
	// URL is the public address of key, or "" when the store has no public base.
	URL(key string) string
}

// StoredObject describes a finished Put.
type StoredObject struct {
	Key  string
	URL  string
	ETag string // без кавычек
}
