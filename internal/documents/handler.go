package documents

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"docvault-backend/internal/preview"
	"docvault-backend/internal/shared/server/respond"
	"docvault-backend/internal/shared/storage/object"
)

const maxUploadSize = 25 << 20 // 25MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/documents", h.list)
	rg.POST("/documents", h.upload)
	rg.GET("/documents/:id", h.get)
	rg.PATCH("/documents/:id", h.rename)
	rg.DELETE("/documents/:id", h.remove)
	rg.GET("/documents/:id/download", h.download)
	rg.GET("/documents/:id/download-count", h.downloadCount)
	rg.GET("/documents/:id/download-link", h.downloadLink)
	rg.GET("/documents/:id/share-link", h.shareLink)
	rg.GET("/documents/:id/preview", h.preview)
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	name := c.PostForm("name")

	doc, err := h.Svc.Upload(c.Request.Context(), name, fileHeader.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to upload document", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, toResponse(doc))
}

func (h *Handler) list(c *gin.Context) {
	limit := 20
	offset := 0

	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}

	docs, err := h.Svc.List(c.Request.Context(), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list documents", nil)
		return
	}

	resp := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, toResponse(doc))
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) get(c *gin.Context) {
	id, ok := documentID(c)
	if !ok {
		return
	}

	doc, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch document", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(doc))
}

type renameRequest struct {
	Name string `json:"name"`
}

func (h *Handler) rename(c *gin.Context) {
	id, ok := documentID(c)
	if !ok {
		return
	}

	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	if err := h.Svc.Rename(c.Request.Context(), id, req.Name); err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to rename document", nil)
		}
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) remove(c *gin.Context) {
	id, ok := documentID(c)
	if !ok {
		return
	}

	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete document", nil)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) download(c *gin.Context) {
	id, ok := documentID(c)
	if !ok {
		return
	}

	rc, doc, err := h.Svc.Download(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound), errors.Is(err, object.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to download document", nil)
		}
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	c.Header("Content-Type", doc.FileType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		// Headers are already written; nothing left to surface.
		_ = c.Error(err)
	}
}

func (h *Handler) downloadCount(c *gin.Context) {
	id, ok := documentID(c)
	if !ok {
		return
	}

	count, err := h.Svc.DownloadCount(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch download count", nil)
		return
	}
	if count < 0 {
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"count": count})
}

func (h *Handler) downloadLink(c *gin.Context) {
	id, ok := documentID(c)
	if !ok {
		return
	}

	signed, err := h.Svc.DownloadLink(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to issue download link", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, toLinkResponse(signed))
}

func (h *Handler) shareLink(c *gin.Context) {
	id, ok := documentID(c)
	if !ok {
		return
	}

	validFor, err := hoursQuery(c, "validForHours")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}
	shareExpires, err := hoursQuery(c, "shareLinkExpiresInHours")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}

	grant, err := h.Svc.ShareLink(c.Request.Context(), id, validFor, shareExpires)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to issue share link", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, toGrantResponse(grant))
}

func (h *Handler) preview(c *gin.Context) {
	id, ok := documentID(c)
	if !ok {
		return
	}

	payload, err := h.Svc.Preview(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		case errors.Is(err, ErrUnsupportedPreview):
			respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_preview", "preview not supported for this file type", nil)
		case errors.Is(err, preview.ErrConversionFailed):
			respond.Error(c, http.StatusBadGateway, "preview_unavailable", "preview unavailable", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to render preview", nil)
		}
		return
	}
	c.Data(http.StatusOK, payload.MIME, payload.Bytes)
}

func documentID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid document id", nil)
		return 0, false
	}
	return id, true
}

func hoursQuery(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return val, nil
}
