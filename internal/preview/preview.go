package preview

import (
	"context"
	"errors"
)

// ErrConversionFailed indicates the rasterizer could not render the input.
// The document itself is unharmed; callers surface "preview unavailable".
var ErrConversionFailed = errors.New("preview conversion failed")

// Converter renders a document's first page to an image. The orchestrator
// treats implementations as opaque collaborators.
type Converter interface {
	Convert(ctx context.Context, data []byte, sourceFormat string) ([]byte, error)
}
