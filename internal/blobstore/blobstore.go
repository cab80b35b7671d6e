// Package blobstore abstracts binary attachment storage (sample images).
// Metadata stays in Postgres; only the bytes live here, addressed by an
// opaque storage key.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no blob exists for the given key.
var ErrNotFound = errors.New("blob not found")

// Store is the attachment storage interface.
type Store interface {
	// Upload stores the blob under key, replacing any previous content.
	Upload(ctx context.Context, key, contentType string, r io.Reader) error
	// Open returns the blob content and its content type. The caller closes
	// the reader. Returns ErrNotFound for a missing key.
	Open(ctx context.Context, key string) (io.ReadCloser, string, error)
	// Exists reports whether a blob is stored under key.
	Exists(ctx context.Context, key string) (bool, error)
	// Delete removes the blob. Deleting a missing key is a no-op.
	Delete(ctx context.Context, key string) error
	// URL returns a URL from which the blob can be fetched directly,
	// valid for at least the given duration.
	URL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// NewStorageKey returns a fresh storage key, sharded by date so buckets stay
// listable.
func NewStorageKey() string {
	d := time.Now().UTC()
	return fmt.Sprintf("samples/%d/%02d/%02d/%s", d.Year(), d.Month(), d.Day(), uuid.New())
}
