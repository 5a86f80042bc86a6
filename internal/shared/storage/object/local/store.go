package local

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"docvault-backend/internal/shared/storage/object"
)

// SignedPathPrefix is the route under which locally signed URLs dereference.
const SignedPathPrefix = "/files/signed/"

// Store implements object.Store using the local filesystem. Signed URLs are
// HMAC-SHA256 over (key, expiry, disposition) with a process-wide secret so
// the dev backend round-trips the same way S3 presigned URLs do.
type Store struct {
	baseDir string
	secret  []byte
	now     func() time.Time
}

// New creates a local object store rooted at baseDir, signing URLs with secret.
func New(baseDir, secret string) *Store {
	return &Store{
		baseDir: baseDir,
		secret:  []byte(secret),
		now:     time.Now,
	}
}

// Put writes the reader contents to disk at storageKey, overwriting any
// existing file.
func (s *Store) Put(ctx context.Context, storageKey string, contentType string, r io.Reader) (int64, error) {
	if err := object.ValidateKey(storageKey); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if err := os.MkdirAll(s.baseDir, 0o755); err != nil {
		return 0, fmt.Errorf("%w: mkdir: %v", object.ErrUnavailable, err)
	}

	fullPath := filepath.Join(s.baseDir, storageKey)
	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fmt.Errorf("%w: open file: %v", object.ErrUnavailable, err)
	}
	defer f.Close()

	written, err := io.Copy(f, r)
	if err != nil {
		return 0, fmt.Errorf("%w: write body: %v", object.ErrUnavailable, err)
	}
	_ = contentType
	return written, nil
}

// Open opens a stored object for reading.
func (s *Store) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	if err := object.ValidateKey(storageKey); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.baseDir, storageKey))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: key=%s", object.ErrNotFound, storageKey)
		}
		return nil, fmt.Errorf("%w: open: %v", object.ErrUnavailable, err)
	}
	return f, nil
}

// Delete removes the object at storageKey. An absent key is success.
func (s *Store) Delete(ctx context.Context, storageKey string) error {
	if err := object.ValidateKey(storageKey); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(s.baseDir, storageKey)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: remove: %v", object.ErrUnavailable, err)
	}
	return nil
}

// Stat reports whether an object exists at storageKey.
func (s *Store) Stat(ctx context.Context, storageKey string) (bool, error) {
	if err := object.ValidateKey(storageKey); err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	if _, err := os.Stat(filepath.Join(s.baseDir, storageKey)); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: stat: %v", object.ErrUnavailable, err)
	}
	return true, nil
}

// PresignGet issues a relative signed URL for storageKey, valid for opts.TTL.
// The URL is served by the /files/signed route, which verifies the signature
// via VerifySignedQuery before streaming the bytes.
func (s *Store) PresignGet(ctx context.Context, storageKey string, opts object.PresignOptions) (object.SignedURL, error) {
	if err := object.ValidateKey(storageKey); err != nil {
		return object.SignedURL{}, err
	}
	if err := ctx.Err(); err != nil {
		return object.SignedURL{}, err
	}

	expiresAt := s.now().UTC().Add(opts.TTL)
	sig := s.sign(storageKey, expiresAt.Unix(), opts.AttachmentName)

	q := url.Values{}
	q.Set("exp", strconv.FormatInt(expiresAt.Unix(), 10))
	if opts.AttachmentName != "" {
		q.Set("dl", opts.AttachmentName)
	}
	q.Set("sig", sig)

	return object.SignedURL{
		URL:       SignedPathPrefix + url.PathEscape(storageKey) + "?" + q.Encode(),
		ExpiresAt: expiresAt,
	}, nil
}

// VerifySignedQuery checks the signature and expiry of a signed-URL query for
// storageKey. It returns the attachment file name ("" for inline) when valid.
func (s *Store) VerifySignedQuery(storageKey string, query url.Values) (string, error) {
	exp, err := strconv.ParseInt(query.Get("exp"), 10, 64)
	if err != nil {
		return "", fmt.Errorf("signed url: bad expiry")
	}
	attachment := query.Get("dl")

	want := s.sign(storageKey, exp, attachment)
	if !hmac.Equal([]byte(want), []byte(query.Get("sig"))) {
		return "", fmt.Errorf("signed url: bad signature")
	}
	if s.now().UTC().After(time.Unix(exp, 0).UTC()) {
		return "", fmt.Errorf("signed url: expired")
	}
	return attachment, nil
}

func (s *Store) sign(storageKey string, expUnix int64, attachment string) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s\n%d\n%s", storageKey, expUnix, attachment)
	return hex.EncodeToString(mac.Sum(nil))
}

var _ object.Store = (*Store)(nil)
