package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"docvault-backend/internal/preview"
	"docvault-backend/internal/shared/metrics"
	"docvault-backend/internal/shared/storage/object"
	"docvault-backend/internal/shared/telemetry"
	"docvault-backend/internal/shared/util"
	"docvault-backend/internal/tokens"
)

// TokenIssuer is the capability-issuance port: every signed URL the service
// hands out is minted through it, with one TTL/disposition policy per path.
type TokenIssuer interface {
	IssueAccessToken(ctx context.Context, id int64, accessTTL, shareTTL time.Duration) (tokens.Grant, error)
	IssueForRecord(ctx context.Context, rec tokens.Record, accessTTL, shareTTL time.Duration) (tokens.Grant, error)
	DownloadURL(ctx context.Context, rec tokens.Record, ttl time.Duration) (object.SignedURL, error)
}

// PreviewPayload is the rendered preview for a document.
type PreviewPayload struct {
	Bytes []byte
	MIME  string
}

// Service orchestrates document state across the object store, the metadata
// repo, and the token engine. All correctness under concurrency comes from
// the collaborators; the service holds no shared mutable state.
type Service struct {
	Store     object.Store
	Repo      Repo
	Tokens    TokenIssuer
	Converter preview.Converter
}

// Upload stores the document bytes and creates its metadata record. The blob
// write happens first so a failed write never produces a row; every later
// failure compensates by deleting what was already created.
func (s *Service) Upload(ctx context.Context, name, originalFileName string, r io.Reader) (Document, error) {
	if strings.TrimSpace(originalFileName) == "" {
		return Document{}, fmt.Errorf("%w: file name required", ErrInvalidInput)
	}

	var first [1]byte
	n, err := io.ReadFull(r, first[:])
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return Document{}, fmt.Errorf("read upload: %w", err)
	}
	if n == 0 {
		return Document{}, ErrEmptyUpload
	}
	body := io.MultiReader(bytes.NewReader(first[:n]), r)

	ext := util.SanitizeKeyComponent(strings.ToLower(filepath.Ext(originalFileName)))
	storageKey := uuid.NewString() + ext
	fileType := ClassifyFileType(originalFileName)
	now := time.Now().UTC()

	if _, err := s.Store.Put(ctx, storageKey, fileType, body); err != nil {
		return Document{}, fmt.Errorf("%w: store bytes key=%s: %v", ErrUploadFailed, storageKey, err)
	}

	doc := Document{
		Name:           name,
		FileType:       fileType,
		StorageKey:     storageKey,
		FileName:       originalFileName,
		UploadedAt:     now,
		LastModifiedAt: now,
		AccessToken:    "",
	}

	id, err := s.Repo.Create(ctx, doc)
	if err != nil {
		if delErr := s.Store.Delete(ctx, storageKey); delErr != nil {
			telemetry.Error("upload.compensate.blob", map[string]any{"key": storageKey, "err": delErr.Error()})
		}
		return Document{}, fmt.Errorf("%w: create record key=%s: %v", ErrUploadFailed, storageKey, err)
	}
	doc.ID = id

	grant, err := s.Tokens.IssueForRecord(ctx, recordOf(doc), tokens.DefaultAccessTTL, tokens.DefaultShareTTL)
	if err != nil {
		if _, delErr := s.Repo.Delete(ctx, id); delErr != nil {
			telemetry.Error("upload.compensate.record", map[string]any{"id": id, "err": delErr.Error()})
		}
		if delErr := s.Store.Delete(ctx, storageKey); delErr != nil {
			telemetry.Error("upload.compensate.blob", map[string]any{"key": storageKey, "err": delErr.Error()})
		}
		return Document{}, fmt.Errorf("%w: issue token id=%d: %v", ErrUploadFailed, id, err)
	}

	doc.AccessToken = grant.Access.URL
	exp := grant.Access.ExpiresAt
	doc.AccessTokenExpiresAt = &exp

	metrics.UploadsTotal.Inc()
	return doc, nil
}

// Get returns a document record by id.
func (s *Service) Get(ctx context.Context, id int64) (Document, error) {
	return s.Repo.GetByID(ctx, id)
}

// List returns document records newest-first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Document, error) {
	return s.Repo.List(ctx, limit, offset)
}

// Rename updates the display name.
func (s *Service) Rename(ctx context.Context, id int64, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name required", ErrInvalidInput)
	}
	return s.Repo.UpdateName(ctx, id, name)
}

// Delete removes the document bytes and then the metadata record. Deleting
// an absent document is success; the whole operation is idempotent. A failed
// blob delete aborts before the row delete so the record never points at
// bytes that cannot be reclaimed.
func (s *Service) Delete(ctx context.Context, id int64) error {
	doc, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return fmt.Errorf("load document id=%d: %w", id, err)
	}

	if doc.StorageKey != "" {
		if err := s.Store.Delete(ctx, doc.StorageKey); err != nil {
			return fmt.Errorf("delete blob id=%d key=%s: %w", id, doc.StorageKey, err)
		}
	}
	if _, err := s.Repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete record id=%d: %w", id, err)
	}
	metrics.DeletesTotal.Inc()
	return nil
}

// Download opens the document bytes for streaming and increments the
// download counter.
func (s *Service) Download(ctx context.Context, id int64) (io.ReadCloser, Document, error) {
	doc, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, Document{}, err
	}

	rc, err := s.Store.Open(ctx, doc.StorageKey)
	if err != nil {
		return nil, Document{}, fmt.Errorf("open blob id=%d key=%s: %w", id, doc.StorageKey, err)
	}

	if _, err := s.Repo.IncrementDownloadCount(ctx, id); err != nil {
		rc.Close()
		return nil, Document{}, fmt.Errorf("increment download count id=%d: %w", id, err)
	}
	metrics.DownloadsTotal.Inc()
	return rc, doc, nil
}

// Preview renders a preview for whitelisted file types. PDFs rasterize to a
// first-page PNG via the conversion collaborator; other whitelisted types
// return the raw bytes under their stored MIME type.
func (s *Service) Preview(ctx context.Context, id int64) (PreviewPayload, error) {
	doc, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return PreviewPayload{}, err
	}
	if _, ok := previewableTypes[doc.FileType]; !ok {
		return PreviewPayload{}, fmt.Errorf("%w: %s", ErrUnsupportedPreview, doc.FileType)
	}

	rc, err := s.Store.Open(ctx, doc.StorageKey)
	if err != nil {
		return PreviewPayload{}, fmt.Errorf("open blob id=%d key=%s: %w", id, doc.StorageKey, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return PreviewPayload{}, fmt.Errorf("read blob id=%d: %w", id, err)
	}

	if doc.FileType == "application/pdf" {
		rendered, err := s.Converter.Convert(ctx, data, doc.FileType)
		if err != nil {
			return PreviewPayload{}, fmt.Errorf("preview id=%d: %w", id, err)
		}
		return PreviewPayload{Bytes: rendered, MIME: "image/png"}, nil
	}
	return PreviewPayload{Bytes: data, MIME: doc.FileType}, nil
}

// DownloadLink mints a transient signed download URL with the fixed TTL.
func (s *Service) DownloadLink(ctx context.Context, id int64) (object.SignedURL, error) {
	doc, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return object.SignedURL{}, err
	}
	return s.Tokens.DownloadURL(ctx, recordOf(doc), tokens.DownloadTTL)
}

// ShareLink mints a fresh access-token/share-link pair with caller-supplied
// validities in whole hours, each bounded to [1, 24].
func (s *Service) ShareLink(ctx context.Context, id int64, validForHours, shareExpiresInHours int) (tokens.Grant, error) {
	if validForHours < 1 || validForHours > 24 {
		return tokens.Grant{}, fmt.Errorf("%w: validForHours must be in [1, 24]", ErrInvalidInput)
	}
	if shareExpiresInHours < 1 || shareExpiresInHours > 24 {
		return tokens.Grant{}, fmt.Errorf("%w: shareLinkExpiresInHours must be in [1, 24]", ErrInvalidInput)
	}

	grant, err := s.Tokens.IssueAccessToken(ctx, id,
		time.Duration(validForHours)*time.Hour,
		time.Duration(shareExpiresInHours)*time.Hour,
	)
	if err != nil {
		switch {
		case errors.Is(err, tokens.ErrNotFound):
			return tokens.Grant{}, ErrNotFound
		case errors.Is(err, tokens.ErrTTLOutOfRange):
			return tokens.Grant{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return tokens.Grant{}, err
	}
	return grant, nil
}

// DownloadCount returns the current counter, or -1 when the id is absent.
func (s *Service) DownloadCount(ctx context.Context, id int64) (int64, error) {
	doc, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return -1, nil
		}
		return 0, err
	}
	return doc.DownloadCount, nil
}

// IncrementDownloadCount bumps the counter, returning the new value or -1
// when the id is absent.
func (s *Service) IncrementDownloadCount(ctx context.Context, id int64) (int64, error) {
	return s.Repo.IncrementDownloadCount(ctx, id)
}
