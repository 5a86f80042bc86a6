package documents

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyUpload matches ErrInvalidInput: rejected before any I/O.
	ErrEmptyUpload = fmt.Errorf("%w: empty upload", ErrInvalidInput)

	// ErrUnsupportedPreview indicates the file type is outside the preview
	// whitelist.
	ErrUnsupportedPreview = errors.New("preview not supported for file type")

	// ErrUploadFailed wraps the underlying cause when the upload sequence
	// fails after validation. Compensation removes any partial state first.
	ErrUploadFailed = errors.New("upload failed")
)
