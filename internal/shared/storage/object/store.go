package object

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
	"unicode"
)

var (
	// ErrNotFound indicates the storage key does not exist in the backing store.
	ErrNotFound = errors.New("object not found")
	// ErrInvalidKey indicates the storage key contains characters the backing
	// namespace cannot accept.
	ErrInvalidKey = errors.New("invalid storage key")
	// ErrUnavailable indicates a transient backing-store failure. Callers decide
	// whether to retry; the adapter never does.
	ErrUnavailable = errors.New("object store unavailable")
)

// SignedURL is a time-limited read capability for a single storage key.
type SignedURL struct {
	URL       string
	ExpiresAt time.Time
}

// PresignOptions controls signed-URL issuance. When AttachmentName is set the
// URL forces an attachment download under that file name; otherwise the
// content renders inline.
type PresignOptions struct {
	TTL            time.Duration
	AttachmentName string
}

// Store defines the contract for saving, retrieving, and signing binary objects.
type Store interface {
	Put(ctx context.Context, storageKey string, contentType string, r io.Reader) (sizeBytes int64, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, storageKey string) error
	Stat(ctx context.Context, storageKey string) (bool, error)
	PresignGet(ctx context.Context, storageKey string, opts PresignOptions) (SignedURL, error)
}

// keyDenylist holds characters illegal across the supported backing
// namespaces (filesystem paths and URL-embedded object keys).
const keyDenylist = `\/:*?"<>|#%&`

// ValidateKey rejects keys that are empty or contain denylisted, control, or
// whitespace characters. Adapters call this before touching the backing store.
func ValidateKey(key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	for _, r := range key {
		if strings.ContainsRune(keyDenylist, r) || unicode.IsControl(r) || unicode.IsSpace(r) {
			return ErrInvalidKey
		}
	}
	return nil
}
