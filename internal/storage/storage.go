package storage

import (
	"context"
	"time"
)

// Package storage contains the object store gateway for S3-compatible
// backends. The gateway issues time-limited presigned URLs; file bytes never
// flow through the application server.

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
}

// Storage is the object store gateway. Each presigned URL grants exactly one
// operation (PUT or GET) on exactly one key for a bounded time window.
type Storage interface {
	// PresignPut returns a time-limited URL authorizing a single PUT of the
	// given content type under key.
	PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (string, error)

	// PresignGet returns a time-limited URL authorizing a single GET of key.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)

	// Stat probes for the object's existence and returns its info.
	// Used to verify that a client-driven upload actually happened before
	// metadata is written.
	Stat(ctx context.Context, key string) (ObjectInfo, error)

	// Remove deletes an object by key.
	Remove(ctx context.Context, key string) error

	// ObjectURL returns the canonical, non-presigned URL of a key, built
	// from the configured endpoint and bucket. It is stored alongside the
	// key at confirmation time; the key is never re-derived from it.
	ObjectURL(key string) string
}
