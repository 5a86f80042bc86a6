package documents

import (
	"context"
	"errors"
	"time"

	"docvault-backend/internal/tokens"
)

// RecordSource adapts a documents Repo to the token engine's RecordStore
// port, translating sentinels across the package boundary.
type RecordSource struct {
	Repo Repo
}

func (a RecordSource) Find(ctx context.Context, id int64) (tokens.Record, error) {
	doc, err := a.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return tokens.Record{}, tokens.ErrNotFound
		}
		return tokens.Record{}, err
	}
	return recordOf(doc), nil
}

func (a RecordSource) SaveToken(ctx context.Context, id int64, token string, expiresAt time.Time) error {
	err := a.Repo.UpdateTokenFields(ctx, id, token, expiresAt)
	if errors.Is(err, ErrNotFound) {
		return tokens.ErrNotFound
	}
	return err
}

func recordOf(doc Document) tokens.Record {
	return tokens.Record{
		ID:         doc.ID,
		StorageKey: doc.StorageKey,
		FileName:   doc.FileName,
	}
}

var _ tokens.RecordStore = RecordSource{}
