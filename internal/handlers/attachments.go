package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	v1 "github.com/proofpanel/docvault/api/v1"
	"github.com/proofpanel/docvault/internal/models"
	srvErrors "github.com/proofpanel/docvault/pkg/errors"
)

// UploadAttachments ingests the files of a multipart form
// (POST /attachments)
func (h *Handler) UploadAttachments(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form required"})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files submitted"})
		return
	}

	submitted := make([]*models.UploadTask, 0, len(files))
	for _, file := range files {
		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file " + file.Filename})
			return
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file " + file.Filename})
			return
		}
		submitted = append(submitted, h.uploadSrv.Submit(file.Filename, data))
	}

	h.uploadSrv.ProcessQueued(c.Request.Context())

	states := h.uploadSrv.TaskStates(submitted)
	results := make([]v1.UploadResult, 0, len(states))
	for i := range states {
		results = append(results, v1.NewUploadResultFromTask(&states[i]))
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// ListAttachments returns the stored attachment metadata, newest first
// (GET /attachments)
func (h *Handler) ListAttachments(c *gin.Context) {
	records, err := h.uploadSrv.Records(c.Request.Context())
	if err != nil {
		writeAttachmentError(c, "failed to list attachments", err)
		return
	}

	attachments := make([]v1.Attachment, 0, len(records))
	for _, record := range records {
		attachments = append(attachments, v1.NewAttachmentFromModel(record))
	}
	c.JSON(http.StatusOK, gin.H{"attachments": attachments})
}

// GetAttachmentThumbnail serves the thumbnail raster of one attachment
// (GET /attachments/:part/thumbnail)
func (h *Handler) GetAttachmentThumbnail(c *gin.Context) {
	partName := c.Param("part")

	records, err := h.uploadSrv.Records(c.Request.Context())
	if err != nil {
		writeAttachmentError(c, "failed to list attachments", err)
		return
	}
	for i := range records {
		if records[i].XmlPartName != partName {
			continue
		}
		thumb, err := h.uploadSrv.Thumbnail(c.Request.Context(), &records[i])
		if err != nil {
			writeAttachmentError(c, "failed to produce thumbnail", err)
			return
		}
		c.Data(http.StatusOK, thumb.MimeType, thumb.Image)
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "no such attachment"})
}

// GetAttachmentContent serves an attachment's raw payload bytes
// (GET /attachments/:part/content)
func (h *Handler) GetAttachmentContent(c *gin.Context) {
	data, err := h.uploadSrv.Content(c.Request.Context(), c.Param("part"))
	if err != nil {
		if srvErrors.IsNoContent(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no such attachment"})
			return
		}
		writeAttachmentError(c, "failed to load attachment", err)
		return
	}
	c.Data(http.StatusOK, "application/octet-stream", data)
}

// DeleteAttachment removes an attachment's payload part and metadata row
// (DELETE /attachments/:part)
func (h *Handler) DeleteAttachment(c *gin.Context) {
	if err := h.uploadSrv.DeleteUpload(c.Request.Context(), c.Param("part")); err != nil {
		writeAttachmentError(c, "failed to delete attachment", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func writeAttachmentError(c *gin.Context, msg string, err error) {
	switch {
	case srvErrors.IsHostUnavailable(err):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case srvErrors.IsRenderFailure(err) || srvErrors.IsNoContent(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		zap.S().Named("attachment_handler").Errorw(msg, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}
