package documents

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres. Atomicity of the increment and the
// partial updates comes from single-statement row-level locking.
type PGRepo struct {
	DB *sql.DB
}

const documentColumns = `id, name, file_type, storage_key, file_name, uploaded_at, last_modified_at, download_count, access_token, access_token_expires_at, preview_bytes`

// Create inserts a new document record and returns the generated id.
func (r *PGRepo) Create(ctx context.Context, doc Document) (int64, error) {
	const query = `
INSERT INTO documents (
    name,
    file_type,
    storage_key,
    file_name,
    uploaded_at,
    last_modified_at,
    download_count,
    access_token,
    access_token_expires_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id`

	var name sql.NullString
	if doc.Name != "" {
		name = sql.NullString{String: doc.Name, Valid: true}
	}
	var fileType sql.NullString
	if doc.FileType != "" {
		fileType = sql.NullString{String: doc.FileType, Valid: true}
	}
	var expiresAt sql.NullTime
	if doc.AccessTokenExpiresAt != nil {
		expiresAt = sql.NullTime{Time: doc.AccessTokenExpiresAt.UTC(), Valid: true}
	}

	var id int64
	err := r.DB.QueryRowContext(
		ctx,
		query,
		name,
		fileType,
		doc.StorageKey,
		doc.FileName,
		doc.UploadedAt,
		doc.LastModifiedAt,
		doc.DownloadCount,
		doc.AccessToken,
		expiresAt,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetByID fetches a document record by id.
func (r *PGRepo) GetByID(ctx context.Context, id int64) (Document, error) {
	const query = `
SELECT ` + documentColumns + `
FROM documents
WHERE id = $1
LIMIT 1`

	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// List returns document records ordered newest-first.
func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]Document, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT ` + documentColumns + `
FROM documents
ORDER BY uploaded_at DESC, id DESC
LIMIT $1 OFFSET $2`

	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// Delete removes a document record. An absent id is success.
func (r *PGRepo) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	removed, _ := res.RowsAffected()
	return removed, nil
}

// IncrementDownloadCount atomically bumps the counter, returning the new
// value or -1 when the id is absent.
func (r *PGRepo) IncrementDownloadCount(ctx context.Context, id int64) (int64, error) {
	const query = `
UPDATE documents
SET download_count = download_count + 1, last_modified_at = $2
WHERE id = $1
RETURNING download_count`

	var count int64
	err := r.DB.QueryRowContext(ctx, query, id, time.Now().UTC()).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return -1, nil
		}
		return 0, err
	}
	return count, nil
}

// UpdateTokenFields stores new access-token state, touching only the token
// columns and the modification timestamp.
func (r *PGRepo) UpdateTokenFields(ctx context.Context, id int64, token string, expiresAt time.Time) error {
	const query = `
UPDATE documents
SET access_token = $2, access_token_expires_at = $3, last_modified_at = $4
WHERE id = $1`

	res, err := r.DB.ExecContext(ctx, query, id, token, expiresAt.UTC(), time.Now().UTC())
	if err != nil {
		return err
	}
	if updated, _ := res.RowsAffected(); updated == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateName stores a new display name, touching only the name column and
// the modification timestamp.
func (r *PGRepo) UpdateName(ctx context.Context, id int64, name string) error {
	const query = `
UPDATE documents
SET name = $2, last_modified_at = $3
WHERE id = $1`

	res, err := r.DB.ExecContext(ctx, query, id, name, time.Now().UTC())
	if err != nil {
		return err
	}
	if updated, _ := res.RowsAffected(); updated == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var name sql.NullString
	var fileType sql.NullString
	var expiresAt sql.NullTime
	var previewBytes []byte
	if err := row.Scan(
		&doc.ID,
		&name,
		&fileType,
		&doc.StorageKey,
		&doc.FileName,
		&doc.UploadedAt,
		&doc.LastModifiedAt,
		&doc.DownloadCount,
		&doc.AccessToken,
		&expiresAt,
		&previewBytes,
	); err != nil {
		return Document{}, err
	}
	if name.Valid {
		doc.Name = name.String
	}
	if fileType.Valid {
		doc.FileType = fileType.String
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		doc.AccessTokenExpiresAt = &t
	}
	doc.PreviewBytes = previewBytes
	return doc, nil
}

var _ Repo = (*PGRepo)(nil)
