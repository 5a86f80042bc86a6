package tokens

import (
	"context"
	"fmt"
	"time"

	"docvault-backend/internal/shared/metrics"
	"docvault-backend/internal/shared/storage/object"
)

// Signer is the signed-URL capability of the blob store. Every URL this
// package hands out is minted through this single path.
type Signer interface {
	PresignGet(ctx context.Context, storageKey string, opts object.PresignOptions) (object.SignedURL, error)
}

// RecordStore is the narrow persistence port the engine needs: look up a
// record and save its access-token state. The share link is never saved.
type RecordStore interface {
	Find(ctx context.Context, id int64) (Record, error)
	SaveToken(ctx context.Context, id int64, token string, expiresAt time.Time) error
}

// Issuer mints (access token, share link) pairs for document records and
// persists the access-token state. It holds no locks and caches nothing;
// every call re-mints both URLs.
type Issuer struct {
	Signer  Signer
	Records RecordStore
	Now     func() time.Time
}

// IssueAccessToken mints a fresh grant for the document with the given id.
// Both TTLs must be within [MinTTL, MaxTTL] inclusive; violations are
// rejected with ErrTTLOutOfRange before any lookup, signing, or write.
func (i *Issuer) IssueAccessToken(ctx context.Context, id int64, accessTTL, shareTTL time.Duration) (Grant, error) {
	if err := validateTTL(accessTTL); err != nil {
		return Grant{}, err
	}
	if err := validateTTL(shareTTL); err != nil {
		return Grant{}, err
	}

	rec, err := i.Records.Find(ctx, id)
	if err != nil {
		return Grant{}, err
	}
	return i.IssueForRecord(ctx, rec, accessTTL, shareTTL)
}

// IssueForRecord mints and persists a grant for an already-loaded record
// without bounding the TTLs. It backs IssueAccessToken and the upload path,
// whose operator defaults exceed the caller-facing bound.
func (i *Issuer) IssueForRecord(ctx context.Context, rec Record, accessTTL, shareTTL time.Duration) (Grant, error) {
	now := i.now()

	accessURL, err := i.Signer.PresignGet(ctx, rec.StorageKey, object.PresignOptions{
		TTL:            accessTTL,
		AttachmentName: rec.FileName,
	})
	if err != nil {
		return Grant{}, fmt.Errorf("sign access token id=%d: %w", rec.ID, err)
	}

	shareURL, err := i.Signer.PresignGet(ctx, rec.StorageKey, object.PresignOptions{
		TTL: shareTTL,
	})
	if err != nil {
		return Grant{}, fmt.Errorf("sign share link id=%d: %w", rec.ID, err)
	}

	grant := Grant{
		Access: AccessToken{URL: accessURL.URL, ExpiresAt: now.Add(accessTTL)},
		Share:  ShareLink{URL: shareURL.URL, ExpiresAt: now.Add(shareTTL)},
	}

	if err := i.Records.SaveToken(ctx, rec.ID, grant.Access.URL, grant.Access.ExpiresAt); err != nil {
		return Grant{}, fmt.Errorf("save token id=%d: %w", rec.ID, err)
	}

	metrics.TokensIssued.WithLabelValues("access").Inc()
	metrics.TokensIssued.WithLabelValues("share").Inc()
	return grant, nil
}

// DownloadURL mints a transient attachment URL for an already-loaded record
// through the same signing path, without touching persisted token state.
func (i *Issuer) DownloadURL(ctx context.Context, rec Record, ttl time.Duration) (object.SignedURL, error) {
	signed, err := i.Signer.PresignGet(ctx, rec.StorageKey, object.PresignOptions{
		TTL:            ttl,
		AttachmentName: rec.FileName,
	})
	if err != nil {
		return object.SignedURL{}, fmt.Errorf("sign download url id=%d: %w", rec.ID, err)
	}
	signed.ExpiresAt = i.now().Add(ttl)
	metrics.TokensIssued.WithLabelValues("download").Inc()
	return signed, nil
}

func (i *Issuer) now() time.Time {
	if i.Now != nil {
		return i.Now().UTC()
	}
	return time.Now().UTC()
}

func validateTTL(ttl time.Duration) error {
	if ttl < MinTTL || ttl > MaxTTL {
		return fmt.Errorf("%w: %s not in [%s, %s]", ErrTTLOutOfRange, ttl, MinTTL, MaxTTL)
	}
	return nil
}
