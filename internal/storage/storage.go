package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"
)

// Package storage archives raw authority payloads in an S3-compatible object
// store. Implementations stream; nothing touches local disk.

// ContentTypeJSON is the content type of every archived raw document.
const ContentTypeJSON = "application/json"

// Object metadata keys attached to archived documents.
const (
	MetaUUID       = "eta-uuid"
	MetaInternalID = "eta-internal-id"
)

// ErrEmptyObject is returned when there is no payload to archive.
var ErrEmptyObject = errors.New("storage: empty object")

// PutObjectOptions describe an upload. Size is -1 when unknown.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is the object store used for the raw document archive.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get streams an object together with its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// PresignGet returns a time-limited download URL that needs no credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// PutJSON archives a raw JSON document under key with its exact size.
func PutJSON(ctx context.Context, s Storage, key string, payload []byte, meta map[string]string) (ObjectInfo, error) {
	if len(payload) == 0 {
		return ObjectInfo{}, ErrEmptyObject
	}
	return s.Put(ctx, key, bytes.NewReader(payload), PutObjectOptions{
		Size:        int64(len(payload)),
		ContentType: ContentTypeJSON,
		Metadata:    meta,
	})
}
