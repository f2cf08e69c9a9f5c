package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"cakeshop/internal/media"
	"cakeshop/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// UploadHandler proxies image uploads to the media store. Validation happens
// before any upstream call; every outcome is a JSON envelope.
type UploadHandler struct {
	uploader media.Uploader
	logger   *zap.Logger
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(uploader media.Uploader, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		uploader: uploader,
		logger:   logger,
	}
}

// RegisterRoutes registers the upload route behind the admin gate
func (h *UploadHandler) RegisterRoutes(r chi.Router, adminOnly func(http.Handler) http.Handler) {
	r.With(adminOnly).Post("/api/upload", h.Upload)
}

// Upload accepts a single multipart "file" field and returns the stored URL
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if !h.uploader.Configured() {
		h.logger.Error("Upload requested but media storage is not configured")
		middleware.RespondWithError(w, http.StatusInternalServerError, "media storage is not configured")
		return
	}

	// Cap the multipart parse slightly above the file limit so an oversized
	// file is reported as such rather than as a parse failure.
	r.Body = http.MaxBytesReader(w, r.Body, media.MaxFileSize+1024*1024)
	if err := r.ParseMultipartForm(media.MaxFileSize); err != nil {
		h.logger.Debug("Multipart parse failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "failed to read upload data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		middleware.RespondWithError(w, http.StatusBadRequest, "file must be an image")
		return
	}

	if header.Size > media.MaxFileSize {
		middleware.RespondWithError(w, http.StatusBadRequest,
			fmt.Sprintf("file size must be under 10MB, got %.2fMB", float64(header.Size)/1024/1024))
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, media.MaxFileSize))
	if err != nil {
		h.logger.Error("Failed to read upload", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "failed to read upload data")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), media.UploadTimeout)
	defer cancel()

	url, err := h.uploader.Upload(ctx, header.Filename, data)
	if err != nil {
		h.logger.Error("Media upload failed", zap.Error(err))
		if err == media.ErrNotConfigured {
			middleware.RespondWithError(w, http.StatusInternalServerError, "media storage is not configured")
			return
		}
		if ctx.Err() == context.DeadlineExceeded {
			middleware.RespondWithError(w, http.StatusGatewayTimeout, "upload timed out")
			return
		}
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to upload image")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"url":     url,
	})
}
