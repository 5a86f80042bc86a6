package documents

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"docvault-backend/internal/preview"
	"docvault-backend/internal/shared/storage/object"
	"docvault-backend/internal/tokens"
)

// memStore is an in-memory object.Store with failure switches and call
// counters for observing the upload saga.
type memStore struct {
	mu           sync.Mutex
	objects      map[string][]byte
	putErr       error
	putCalls     int
	presignErr   error
	presignCalls int
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (m *memStore) Put(ctx context.Context, key, contentType string, r io.Reader) (int64, error) {
	if err := object.ValidateKey(key); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putCalls++
	if m.putErr != nil {
		return 0, m.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	m.objects[key] = data
	return int64(len(data)), nil
}

func (m *memStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, object.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memStore) Stat(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok, nil
}

func (m *memStore) PresignGet(ctx context.Context, key string, opts object.PresignOptions) (object.SignedURL, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.presignCalls++
	if m.presignErr != nil {
		return object.SignedURL{}, m.presignErr
	}
	return object.SignedURL{URL: "mem://" + key + "?dl=" + opts.AttachmentName}, nil
}

var _ object.Store = (*memStore)(nil)

type failConverter struct{ err error }

func (f failConverter) Convert(ctx context.Context, data []byte, sourceFormat string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("rendered-png"), nil
}

func serviceNow() time.Time {
	return time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
}

func newTestService(store *memStore) (*Service, *MemoryRepo) {
	repo := NewMemoryRepo()
	issuer := &tokens.Issuer{
		Signer:  store,
		Records: RecordSource{Repo: repo},
		Now:     serviceNow,
	}
	svc := &Service{
		Store:     store,
		Repo:      repo,
		Tokens:    issuer,
		Converter: failConverter{},
	}
	return svc, repo
}

func TestUploadStoresBytesAndIssuesToken(t *testing.T) {
	store := newMemStore()
	svc, repo := newTestService(store)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "Quarterly report", "Report Final.PDF", strings.NewReader("pdf bytes"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if doc.FileType != "application/pdf" {
		t.Fatalf("file type = %q, want application/pdf", doc.FileType)
	}
	if !strings.HasSuffix(doc.StorageKey, ".pdf") {
		t.Fatalf("storage key should keep the extension: %q", doc.StorageKey)
	}
	if err := object.ValidateKey(doc.StorageKey); err != nil {
		t.Fatalf("storage key must be valid for the namespace: %v", err)
	}

	data, ok := store.objects[doc.StorageKey]
	if !ok || string(data) != "pdf bytes" {
		t.Fatalf("expected bytes stored under %q", doc.StorageKey)
	}

	stored, err := repo.GetByID(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.AccessToken == "" || stored.AccessTokenExpiresAt == nil {
		t.Fatalf("token state not persisted: %+v", stored)
	}
	if want := serviceNow().Add(tokens.DefaultAccessTTL); !stored.AccessTokenExpiresAt.Equal(want) {
		t.Fatalf("token expiry = %s, want %s", stored.AccessTokenExpiresAt, want)
	}
	if stored.DownloadCount != 0 {
		t.Fatalf("fresh document should have count 0, got %d", stored.DownloadCount)
	}
}

func TestUploadRejectsEmptyContentBeforeIO(t *testing.T) {
	store := newMemStore()
	svc, repo := newTestService(store)

	_, err := svc.Upload(context.Background(), "", "a.txt", strings.NewReader(""))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if store.putCalls != 0 {
		t.Fatalf("empty upload must not reach the store")
	}
	if docs, _ := repo.List(context.Background(), 10, 0); len(docs) != 0 {
		t.Fatalf("empty upload must not create records")
	}
}

func TestUploadBlobFailureCreatesNoRecord(t *testing.T) {
	store := newMemStore()
	store.putErr = errors.New("s3 down")
	svc, repo := newTestService(store)

	_, err := svc.Upload(context.Background(), "", "a.pdf", strings.NewReader("x"))
	if !errors.Is(err, ErrUploadFailed) {
		t.Fatalf("expected ErrUploadFailed, got %v", err)
	}
	if docs, _ := repo.List(context.Background(), 10, 0); len(docs) != 0 {
		t.Fatalf("failed blob write must never produce a metadata row")
	}
}

func TestUploadTokenFailureCompensates(t *testing.T) {
	store := newMemStore()
	store.presignErr = errors.New("signer down")
	svc, repo := newTestService(store)

	_, err := svc.Upload(context.Background(), "", "a.pdf", strings.NewReader("x"))
	if !errors.Is(err, ErrUploadFailed) {
		t.Fatalf("expected ErrUploadFailed, got %v", err)
	}
	if docs, _ := repo.List(context.Background(), 10, 0); len(docs) != 0 {
		t.Fatalf("orphan metadata row survived a failed upload")
	}
	if len(store.objects) != 0 {
		t.Fatalf("orphan blob survived a failed upload")
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := newMemStore()
	svc, _ := newTestService(store)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "", "a.pdf", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if err := svc.Delete(ctx, doc.ID); err != nil {
		t.Fatalf("first Delete: %v", err)
	}
	if err := svc.Delete(ctx, doc.ID); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if len(store.objects) != 0 {
		t.Fatalf("blob not removed")
	}
	if _, err := svc.Get(ctx, doc.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestDownloadStreamsBytesAndIncrementsCounter(t *testing.T) {
	store := newMemStore()
	svc, _ := newTestService(store)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "", "a.txt", strings.NewReader("0123456789"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if doc.ID != 1 {
		t.Fatalf("expected first id 1, got %d", doc.ID)
	}
	if doc.FileType != "application/octet-stream" {
		t.Fatalf("file type = %q, want application/octet-stream", doc.FileType)
	}

	count, err := svc.DownloadCount(ctx, doc.ID)
	if err != nil || count != 0 {
		t.Fatalf("DownloadCount before = (%d, %v), want (0, nil)", count, err)
	}

	rc, got, err := svc.Download(ctx, doc.ID)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "0123456789" {
		t.Fatalf("downloaded bytes = %q", data)
	}
	if got.FileName != "a.txt" {
		t.Fatalf("file name = %q", got.FileName)
	}

	count, err = svc.DownloadCount(ctx, doc.ID)
	if err != nil || count != 1 {
		t.Fatalf("DownloadCount after = (%d, %v), want (1, nil)", count, err)
	}
}

func TestDownloadCountAbsentIDSentinel(t *testing.T) {
	svc, _ := newTestService(newMemStore())

	count, err := svc.DownloadCount(context.Background(), 999)
	if err != nil || count != -1 {
		t.Fatalf("DownloadCount = (%d, %v), want (-1, nil)", count, err)
	}
}

func TestDownloadLinkDereferencesToUploadedContent(t *testing.T) {
	store := newMemStore()
	svc, _ := newTestService(store)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "", "a.pdf", strings.NewReader("round trip"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	signed, err := svc.DownloadLink(ctx, doc.ID)
	if err != nil {
		t.Fatalf("DownloadLink: %v", err)
	}

	key := strings.TrimPrefix(signed.URL, "mem://")
	key = key[:strings.Index(key, "?")]
	rc, err := store.Open(ctx, key)
	if err != nil {
		t.Fatalf("dereference signed url: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "round trip" {
		t.Fatalf("dereferenced bytes = %q", data)
	}
}

func TestShareLinkInvalidHoursPerformsNoIO(t *testing.T) {
	store := newMemStore()
	svc, _ := newTestService(store)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "", "a.pdf", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	before := store.presignCalls

	for _, pair := range [][2]int{{0, 5}, {25, 5}, {5, 0}, {5, 25}, {-1, 1}} {
		if _, err := svc.ShareLink(ctx, doc.ID, pair[0], pair[1]); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("ShareLink(%d, %d): expected ErrInvalidInput, got %v", pair[0], pair[1], err)
		}
	}
	if store.presignCalls != before {
		t.Fatalf("invalid hours must not reach the signer")
	}
}

func TestShareLinkMissingDocument(t *testing.T) {
	svc, _ := newTestService(newMemStore())

	_, err := svc.ShareLink(context.Background(), 999, 1, 1)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestShareLinkMintsIndependentExpiries(t *testing.T) {
	store := newMemStore()
	svc, _ := newTestService(store)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "", "a.pdf", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	grant, err := svc.ShareLink(ctx, doc.ID, 4, 24)
	if err != nil {
		t.Fatalf("ShareLink: %v", err)
	}
	if want := serviceNow().Add(4 * time.Hour); !grant.Access.ExpiresAt.Equal(want) {
		t.Fatalf("access expiry = %s, want %s", grant.Access.ExpiresAt, want)
	}
	if want := serviceNow().Add(24 * time.Hour); !grant.Share.ExpiresAt.Equal(want) {
		t.Fatalf("share expiry = %s, want %s", grant.Share.ExpiresAt, want)
	}
}

func TestPreviewUnsupportedType(t *testing.T) {
	svc, _ := newTestService(newMemStore())
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "", "notes.xyz", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	_, err = svc.Preview(ctx, doc.ID)
	if !errors.Is(err, ErrUnsupportedPreview) {
		t.Fatalf("expected ErrUnsupportedPreview, got %v", err)
	}
}

func TestPreviewPDFRendersThroughConverter(t *testing.T) {
	store := newMemStore()
	svc, _ := newTestService(store)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "", "a.pdf", strings.NewReader("pdf bytes"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	payload, err := svc.Preview(ctx, doc.ID)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if payload.MIME != "image/png" {
		t.Fatalf("pdf preview mime = %q, want image/png", payload.MIME)
	}
	if string(payload.Bytes) != "rendered-png" {
		t.Fatalf("pdf preview bytes = %q", payload.Bytes)
	}
}

func TestPreviewImagePassthrough(t *testing.T) {
	store := newMemStore()
	svc, _ := newTestService(store)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "", "chart.png", strings.NewReader("png bytes"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	payload, err := svc.Preview(ctx, doc.ID)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if payload.MIME != "image/png" || string(payload.Bytes) != "png bytes" {
		t.Fatalf("image preview = (%q, %q)", payload.MIME, payload.Bytes)
	}
}

func TestPreviewConversionFailureLeavesDocumentIntact(t *testing.T) {
	store := newMemStore()
	svc, repo := newTestService(store)
	svc.Converter = failConverter{err: preview.ErrConversionFailed}
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "", "a.pdf", strings.NewReader("pdf bytes"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	_, err = svc.Preview(ctx, doc.ID)
	if !errors.Is(err, preview.ErrConversionFailed) {
		t.Fatalf("expected ErrConversionFailed, got %v", err)
	}
	if _, err := repo.GetByID(ctx, doc.ID); err != nil {
		t.Fatalf("document should survive a failed preview: %v", err)
	}
}

func TestRenameValidatesAndUpdates(t *testing.T) {
	store := newMemStore()
	svc, repo := newTestService(store)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "old", "a.pdf", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if err := svc.Rename(ctx, doc.ID, " "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank name, got %v", err)
	}
	if err := svc.Rename(ctx, doc.ID, "new name"); err != nil {
		t.Fatalf("Rename: %v", err)
	}

	stored, err := repo.GetByID(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Name != "new name" {
		t.Fatalf("name = %q, want %q", stored.Name, "new name")
	}
}
