package preview

import (
	"bytes"
	"context"
	"fmt"
	"image/png"

	"github.com/gen2brain/go-fitz"
)

// Fitz renders page one of a PDF to PNG using MuPDF.
type Fitz struct{}

// Convert rasterizes the first page of data. sourceFormat is advisory; fitz
// sniffs the container itself.
func (Fitz) Convert(ctx context.Context, data []byte, sourceFormat string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrConversionFailed, sourceFormat, err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, fmt.Errorf("%w: document has no pages", ErrConversionFailed)
	}

	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("%w: render page 1: %v", ErrConversionFailed, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: encode png: %v", ErrConversionFailed, err)
	}
	return buf.Bytes(), nil
}

var _ Converter = Fitz{}
