package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/proofpanel/docvault/internal/services"
)

type Handler struct {
	databaseSrv *services.DatabaseService
	uploadSrv   *services.UploadService
}

func New(databaseSrv *services.DatabaseService, uploadSrv *services.UploadService) *Handler {
	return &Handler{
		databaseSrv: databaseSrv,
		uploadSrv:   uploadSrv,
	}
}

// RegisterRoutes mounts every handler under the given group.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/query", h.RunQuery)
	r.POST("/database/seed", h.SeedDatabase)
	r.GET("/database/state", h.GetDatabaseState)
	r.DELETE("/database", h.DeleteDatabase)

	r.POST("/attachments", h.UploadAttachments)
	r.GET("/attachments", h.ListAttachments)
	r.GET("/attachments/:part/thumbnail", h.GetAttachmentThumbnail)
	r.GET("/attachments/:part/content", h.GetAttachmentContent)
	r.DELETE("/attachments/:part", h.DeleteAttachment)
}
