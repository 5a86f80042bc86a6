package documents

import (
	"context"
	"time"
)

// Repo defines persistence operations for document records. The two partial
// updates and the increment are the atomicity seams the token engine and
// orchestrator rely on; neither holds in-process locks.
type Repo interface {
	Create(ctx context.Context, doc Document) (int64, error)
	GetByID(ctx context.Context, id int64) (Document, error)
	List(ctx context.Context, limit, offset int) ([]Document, error)
	// Delete is idempotent: an absent row is success. Returns rows removed.
	Delete(ctx context.Context, id int64) (int64, error)
	// IncrementDownloadCount atomically bumps the counter and returns the new
	// value, or -1 when the id is absent (a sentinel, not an error).
	IncrementDownloadCount(ctx context.Context, id int64) (int64, error)
	// UpdateTokenFields touches only the token columns so a concurrent rename
	// is never clobbered.
	UpdateTokenFields(ctx context.Context, id int64, token string, expiresAt time.Time) error
	// UpdateName touches only the display name.
	UpdateName(ctx context.Context, id int64, name string) error
}
