// Package tokens mints time-limited signed access URLs for stored documents
// and coordinates the persisted token state on the owning metadata record.
package tokens

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates the document record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrTTLOutOfRange indicates a caller-supplied validity duration outside
	// the [MinTTL, MaxTTL] bound. Rejected before any I/O.
	ErrTTLOutOfRange = errors.New("ttl out of range")
)

const (
	// MinTTL and MaxTTL bound caller-supplied validity durations, inclusive.
	MinTTL = time.Hour
	MaxTTL = 24 * time.Hour

	// DefaultAccessTTL and DefaultShareTTL are the operator defaults minted
	// during upload. They are policy, not caller input, and so are not bound
	// by [MinTTL, MaxTTL].
	DefaultAccessTTL = 4 * time.Hour
	DefaultShareTTL  = 7 * 24 * time.Hour

	// DownloadTTL is the fixed validity of transient download links.
	DownloadTTL = time.Hour
)

// AccessToken is a short-lived signed URL that downloads the document bytes
// with attachment semantics. Its value and expiry are persisted on the record.
type AccessToken struct {
	URL       string
	ExpiresAt time.Time
}

// ShareLink is an independently-lived signed URL for inline viewing. It is
// derived on demand and never persisted; AccessToken and ShareLink stay
// distinct types so one persisted field can never serve two capability kinds.
type ShareLink struct {
	URL       string
	ExpiresAt time.Time
}

// Grant is the coherent pair produced by one issuance.
type Grant struct {
	Access AccessToken
	Share  ShareLink
}

// Record is the slice of document state the engine needs: where the bytes
// live and what name a download should save as.
type Record struct {
	ID         int64
	StorageKey string
	FileName   string
}
