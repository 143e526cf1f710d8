package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/lumapix/gallery/internal/gallery"
)

type GalleryHandler struct {
	service *gallery.Service
}

func NewGalleryHandler(service *gallery.Service) *GalleryHandler {
	return &GalleryHandler{service: service}
}

// Index renders the gallery page listing every stored image with its metadata.
func (h *GalleryHandler) Index(c *gin.Context) {
	entries, err := h.service.Entries(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list gallery")
		c.String(http.StatusInternalServerError, "Error listing images")
		return
	}

	log.Info().Int("count", len(entries)).Msg("gallery rendered")
	c.HTML(http.StatusOK, "gallery", gin.H{"Entries": entries})
}

// ServeImage streams a stored image's bytes. Any fetch failure is reported
// as not found; the underlying reason is not distinguished.
func (h *GalleryHandler) ServeImage(c *gin.Context) {
	name := c.Param("name")

	data, _, err := h.service.Fetch(c.Request.Context(), name)
	if err != nil {
		log.Error().Err(err).Str("image", name).Msg("failed to load image")
		c.String(http.StatusNotFound, "Error loading image: %s", name)
		return
	}

	c.Data(http.StatusOK, "image/jpeg", data)
}

// Upload accepts a multipart file, stores it, runs the metadata pipeline
// synchronously, and redirects back to the gallery.
func (h *GalleryHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("form_file")
	if err != nil {
		log.Error().Err(err).Msg("no file found in upload request")
		c.String(http.StatusBadRequest, "No file uploaded")
		return
	}
	if file.Filename == "" {
		log.Error().Msg("upload request carried an empty filename")
		c.String(http.StatusBadRequest, "No selected file")
		return
	}

	src, err := file.Open()
	if err != nil {
		log.Error().Err(err).Str("filename", file.Filename).Msg("failed to open uploaded file")
		c.String(http.StatusBadRequest, "Error reading uploaded file")
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		log.Error().Err(err).Str("filename", file.Filename).Msg("failed to read uploaded file")
		c.String(http.StatusBadRequest, "Error reading uploaded file")
		return
	}

	contentType := mimetype.Detect(data).String()
	if err := h.service.Upload(c.Request.Context(), file.Filename, data, contentType); err != nil {
		log.Error().Err(err).Str("filename", file.Filename).Msg("failed to store uploaded file")
		c.String(http.StatusInternalServerError, "Error storing file")
		return
	}

	c.Redirect(http.StatusFound, "/")
}

// Download streams a stored object as an attachment with its recorded
// content type, defaulting to a generic binary type.
func (h *GalleryHandler) Download(c *gin.Context) {
	name := c.Param("name")

	data, info, err := h.service.Fetch(c.Request.Context(), name)
	if err != nil {
		log.Error().Err(err).Str("file", name).Msg("failed to retrieve file")
		c.String(http.StatusInternalServerError, "Error retrieving file")
		return
	}

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", name))
	c.Data(http.StatusOK, contentType, data)
}
