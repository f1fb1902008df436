package upload

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aisupport/faq-service/internal/config"
	"github.com/aisupport/faq-service/internal/ingest"
	registrystore "github.com/aisupport/faq-service/internal/registry/store"
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

// MountRoutes mounts the document upload route.
func MountRoutes(r *gin.Engine, pipeline *ingest.Pipeline, cfg *config.Config) {
	r.POST("/api/upload", func(c *gin.Context) {
		uploadDocument(c, pipeline, cfg)
	})
}

func uploadDocument(c *gin.Context, pipeline *ingest.Pipeline, cfg *config.Config) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "file is required"})
		return
	}
	defer file.Close()

	// Read one byte past the cap to distinguish at-limit from over-limit.
	content, err := io.ReadAll(io.LimitReader(file, cfg.UploadMaxSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "failed to read uploaded file"})
		return
	}
	if int64(len(content)) > cfg.UploadMaxSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"ok":    false,
			"error": fmt.Sprintf("file exceeds maximum size of %d bytes", cfg.UploadMaxSize),
		})
		return
	}

	if err := pipeline.Ingest(c.Request.Context(), header.Filename, content); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func handleError(c *gin.Context, err error) {
	var validation *registrystore.ValidationError
	var decode *ingest.DecodeError

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "code": "validation_error", "error": err.Error()})
	case errors.As(err, &decode):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "code": "decode_error", "error": err.Error()})
	default:
		log.Error("Upload failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal server error"})
	}
}
