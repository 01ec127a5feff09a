package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/prudhivi99/guitar-store/internal/service"
)

// Uploader stores objects and hands out their URLs.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	PresignGet(ctx context.Context, key string) (string, error)
}

type UploadHandler struct {
	store    Uploader
	maxBytes int64
}

func NewUploadHandler(store Uploader, maxBytes int64) *UploadHandler {
	return &UploadHandler{store: store, maxBytes: maxBytes}
}

// Upload accepts a single image in the "file" form field.
func (h *UploadHandler) Upload(c *gin.Context) {
	// Leave room for the multipart framing around the file itself.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+64<<10)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			_ = c.Error(h.tooLarge())
			return
		}
		_ = c.Error(&service.ValidationError{Message: "No file uploaded"})
		return
	}
	if fh.Size > h.maxBytes {
		_ = c.Error(h.tooLarge())
		return
	}

	contentType := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		_ = c.Error(&service.ValidationError{Message: "Only image files are allowed!"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		_ = c.Error(fmt.Errorf("opening upload: %w", err))
		return
	}
	defer f.Close()

	key := uuid.NewString() + "-" + filepath.Base(fh.Filename)
	url, err := h.store.Upload(c.Request.Context(), key, contentType, f, fh.Size)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"url":     url,
		"message": "File uploaded successfully",
	})
}

// Presign returns a time-limited download link for an uploaded object.
func (h *UploadHandler) Presign(c *gin.Context) {
	url, err := h.store.PresignGet(c.Request.Context(), c.Param("key"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (h *UploadHandler) tooLarge() error {
	return &service.ValidationError{
		Field:   "file",
		Message: fmt.Sprintf("file exceeds the %d byte limit", h.maxBytes),
	}
}
