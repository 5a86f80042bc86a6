// Package files serves locally signed URLs. It is the dev-backend
// counterpart of dereferencing an S3 presigned URL against AWS.
package files

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"docvault-backend/internal/documents"
	"docvault-backend/internal/shared/server/respond"
	"docvault-backend/internal/shared/storage/object"
	localstore "docvault-backend/internal/shared/storage/object/local"
)

// Handler verifies locally signed URLs and streams the object bytes.
type Handler struct {
	Store *localstore.Store
}

// NewHandler constructs a Handler over a local store.
func NewHandler(store *localstore.Store) *Handler {
	return &Handler{Store: store}
}

// RegisterRoutes attaches the signed-URL dereference route to the engine.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET(strings.TrimSuffix(localstore.SignedPathPrefix, "/")+"/*key", h.serve)
}

func (h *Handler) serve(c *gin.Context) {
	raw := strings.TrimPrefix(c.Param("key"), "/")
	key, err := url.PathUnescape(raw)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid storage key", nil)
		return
	}

	attachment, err := h.Store.VerifySignedQuery(key, c.Request.URL.Query())
	if err != nil {
		respond.Error(c, http.StatusForbidden, "invalid_signature", "signed url rejected", nil)
		return
	}

	rc, err := h.Store.Open(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "object not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to open object", nil)
		return
	}
	defer rc.Close()

	if attachment != "" {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachment))
	}
	c.Header("Content-Type", documents.ClassifyFileType(key))
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		_ = c.Error(err)
	}
}
