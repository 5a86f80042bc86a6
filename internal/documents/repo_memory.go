package documents

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo. Atomicity of the
// increment and partial updates is provided by the mutex.
type MemoryRepo struct {
	mu     sync.RWMutex
	nextID int64
	data   map[int64]Document
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		nextID: 1,
		data:   make(map[int64]Document),
	}
}

// Create stores a new document record and returns the generated id.
func (r *MemoryRepo) Create(ctx context.Context, doc Document) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc.ID = r.nextID
	r.nextID++
	r.data[doc.ID] = doc
	return doc.ID, nil
}

// GetByID returns a document record by id.
func (r *MemoryRepo) GetByID(ctx context.Context, id int64) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.data[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

// List returns document records newest-first, honoring limit/offset.
func (r *MemoryRepo) List(ctx context.Context, limit, offset int) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	r.mu.RLock()
	docs := make([]Document, 0, len(r.data))
	for _, doc := range r.data {
		docs = append(docs, doc)
	}
	r.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].UploadedAt.Equal(docs[j].UploadedAt) {
			return docs[i].UploadedAt.After(docs[j].UploadedAt)
		}
		return docs[i].ID > docs[j].ID
	})

	if offset >= len(docs) {
		return []Document{}, nil
	}
	end := len(docs)
	if offset+limit < end {
		end = offset + limit
	}
	return docs[offset:end], nil
}

// Delete removes a document record. An absent id is success.
func (r *MemoryRepo) Delete(ctx context.Context, id int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return 0, nil
	}
	delete(r.data, id)
	return 1, nil
}

// IncrementDownloadCount bumps the counter atomically, returning the new
// value or -1 when the id is absent.
func (r *MemoryRepo) IncrementDownloadCount(ctx context.Context, id int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.data[id]
	if !ok {
		return -1, nil
	}
	doc.DownloadCount++
	doc.LastModifiedAt = time.Now().UTC()
	r.data[id] = doc
	return doc.DownloadCount, nil
}

// UpdateTokenFields stores new access-token state for a record.
func (r *MemoryRepo) UpdateTokenFields(ctx context.Context, id int64, token string, expiresAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.data[id]
	if !ok {
		return ErrNotFound
	}
	exp := expiresAt.UTC()
	doc.AccessToken = token
	doc.AccessTokenExpiresAt = &exp
	doc.LastModifiedAt = time.Now().UTC()
	r.data[id] = doc
	return nil
}

// UpdateName stores a new display name for a record.
func (r *MemoryRepo) UpdateName(ctx context.Context, id int64, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.data[id]
	if !ok {
		return ErrNotFound
	}
	doc.Name = name
	doc.LastModifiedAt = time.Now().UTC()
	r.data[id] = doc
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
