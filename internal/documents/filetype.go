package documents

import (
	"path/filepath"
	"strings"
)

// Classification is by extension only, never by content sniffing.
var fileTypesByExtension = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
}

// ClassifyFileType maps a file name to its MIME type by extension,
// case-insensitively. Unknown extensions classify as octet-stream.
func ClassifyFileType(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if mime, ok := fileTypesByExtension[ext]; ok {
		return mime
	}
	return "application/octet-stream"
}

// previewableTypes is the fixed whitelist for the preview path.
var previewableTypes = map[string]struct{}{
	"application/pdf": {},
	"image/png":       {},
	"image/jpeg":      {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         {},
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": {},
}
