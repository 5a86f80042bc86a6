package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"docvault-backend/internal/shared/storage/object"
)

// Store implements object.Store using Amazon S3. Presigned GET URLs are the
// SAS-style signed access tokens: signing is a local computation over the
// process credentials, no round-trip to S3.
type Store struct {
	client   *s3.Client
	presign  *s3.PresignClient
	bucket   string
	prefix   string
	kmsKeyID string
}

// New creates a new S3-backed object store.
func New(ctx context.Context, region, bucket, prefix, kmsKeyID string) (object.Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return &Store{
		client:   client,
		presign:  s3.NewPresignClient(client),
		bucket:   bucket,
		prefix:   normalizePrefix(prefix),
		kmsKeyID: strings.TrimSpace(kmsKeyID),
	}, nil
}

// Put uploads the reader contents under storageKey, overwriting any existing
// object at that key.
func (s *Store) Put(ctx context.Context, storageKey string, contentType string, r io.Reader) (int64, error) {
	if err := object.ValidateKey(storageKey); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	objectKey := applyPrefix(s.prefix, storageKey)
	counter := &countingReader{r: r}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		Body:        counter,
		ContentType: aws.String(contentType),
	}
	if s.kmsKeyID != "" {
		input.ServerSideEncryption = s3types.ServerSideEncryptionAwsKms
		input.SSEKMSKeyId = aws.String(s.kmsKeyID)
	} else {
		input.ServerSideEncryption = s3types.ServerSideEncryptionAes256
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return 0, fmt.Errorf("%w: s3 put object bucket=%s key=%s: %v", object.ErrUnavailable, s.bucket, objectKey, err)
	}
	return counter.n, nil
}

// Open downloads a stored object for reading.
func (s *Store) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	objectKey := applyPrefix(s.prefix, storageKey)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("%w: key=%s", object.ErrNotFound, storageKey)
		}
		return nil, fmt.Errorf("%w: s3 get object bucket=%s key=%s: %v", object.ErrUnavailable, s.bucket, objectKey, err)
	}
	return out.Body, nil
}

// Delete removes the object at storageKey. S3 treats deleting an absent key
// as success, which matches the idempotent contract.
func (s *Store) Delete(ctx context.Context, storageKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	objectKey := applyPrefix(s.prefix, storageKey)
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	}); err != nil {
		return fmt.Errorf("%w: s3 delete object bucket=%s key=%s: %v", object.ErrUnavailable, s.bucket, objectKey, err)
	}
	return nil
}

// Stat reports whether an object exists at storageKey.
func (s *Store) Stat(ctx context.Context, storageKey string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	objectKey := applyPrefix(s.prefix, storageKey)
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		var notFound *s3types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("%w: s3 head object bucket=%s key=%s: %v", object.ErrUnavailable, s.bucket, objectKey, err)
	}
	return true, nil
}

// PresignGet issues a signed read URL for storageKey, valid for opts.TTL.
func (s *Store) PresignGet(ctx context.Context, storageKey string, opts object.PresignOptions) (object.SignedURL, error) {
	if err := ctx.Err(); err != nil {
		return object.SignedURL{}, err
	}

	objectKey := applyPrefix(s.prefix, storageKey)
	input := &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	}
	if opts.AttachmentName != "" {
		input.ResponseContentDisposition = aws.String(attachmentDisposition(opts.AttachmentName))
	}

	expiresAt := time.Now().UTC().Add(opts.TTL)
	out, err := s.presign.PresignGetObject(ctx, input, func(po *s3.PresignOptions) {
		po.Expires = opts.TTL
	})
	if err != nil {
		return object.SignedURL{}, fmt.Errorf("s3 presign get bucket=%s key=%s: %w", s.bucket, objectKey, err)
	}
	return object.SignedURL{URL: out.URL, ExpiresAt: expiresAt}, nil
}

func attachmentDisposition(fileName string) string {
	// Quotes and control characters would corrupt the header value.
	clean := strings.Map(func(r rune) rune {
		if r == '"' || r < 0x20 {
			return -1
		}
		return r
	}, fileName)
	return fmt.Sprintf("attachment; filename=%q", clean)
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func normalizePrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), "/")
}

func applyPrefix(prefix, key string) string {
	cleanPrefix := strings.Trim(prefix, "/")
	cleanKey := strings.TrimLeft(key, "/")
	if cleanPrefix == "" {
		return cleanKey
	}
	if cleanKey == "" {
		return cleanPrefix
	}
	return cleanPrefix + "/" + cleanKey
}

var _ object.Store = (*Store)(nil)
