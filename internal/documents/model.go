package documents

import "time"

// Document is the durable metadata record for one stored document. The bytes
// live in the object store under StorageKey; the record tracks naming,
// classification, counters, and the current access-token state.
type Document struct {
	ID             int64
	Name           string
	FileType       string
	StorageKey     string
	FileName       string
	UploadedAt     time.Time
	LastModifiedAt time.Time
	DownloadCount  int64
	// AccessToken is "" until a token is first issued; never NULL in storage.
	AccessToken          string
	AccessTokenExpiresAt *time.Time
	// PreviewBytes is a legacy column: scanned for old rows, never written.
	PreviewBytes []byte
}
