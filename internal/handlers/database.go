package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	v1 "github.com/proofpanel/docvault/api/v1"
	srvErrors "github.com/proofpanel/docvault/pkg/errors"
)

// RunQuery executes one SQL statement against the embedded database
// (POST /query)
func (h *Handler) RunQuery(c *gin.Context) {
	var req v1.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sql is required"})
		return
	}

	rs, err := h.databaseSrv.RunQuery(c.Request.Context(), req.Sql)
	if err != nil {
		writeDatabaseError(c, "failed to run query", err)
		return
	}
	c.JSON(http.StatusOK, v1.NewQueryResponse(rs))
}

// SeedDatabase runs a seed script and persists the result
// (POST /database/seed)
func (h *Handler) SeedDatabase(c *gin.Context) {
	var req v1.SeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sql is required"})
		return
	}

	if err := h.databaseSrv.Seed(c.Request.Context(), req.Sql); err != nil {
		writeDatabaseError(c, "failed to seed database", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetDatabaseState reports schema state against the required table set
// (GET /database/state)
func (h *Handler) GetDatabaseState(c *gin.Context) {
	state, err := h.databaseSrv.State(c.Request.Context())
	if err != nil {
		writeDatabaseError(c, "failed to read database state", err)
		return
	}
	c.JSON(http.StatusOK, v1.NewDatabaseState(state))
}

// DeleteDatabase removes the embedded database and its snapshot part
// (DELETE /database)
func (h *Handler) DeleteDatabase(c *gin.Context) {
	if err := h.databaseSrv.Delete(c.Request.Context()); err != nil {
		writeDatabaseError(c, "failed to delete database", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func writeDatabaseError(c *gin.Context, msg string, err error) {
	switch {
	case srvErrors.IsQueryFailure(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case srvErrors.IsHostUnavailable(err):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		zap.S().Named("database_handler").Errorw(msg, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}
