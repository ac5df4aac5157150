// Package v1 defines the HTTP API types and their model mappers.
package v1

import (
	"github.com/proofpanel/docvault/internal/engine"
	"github.com/proofpanel/docvault/internal/models"
)

// QueryRequest is the body of POST /query.
type QueryRequest struct {
	Sql string `json:"sql" binding:"required"`
}

// QueryResponse carries one statement's result set.
type QueryResponse struct {
	Columns []string `json:"columns"`
	Values  [][]any  `json:"values"`
}

func NewQueryResponse(rs *engine.ResultSet) QueryResponse {
	resp := QueryResponse{Columns: rs.Columns, Values: rs.Values}
	if resp.Columns == nil {
		resp.Columns = []string{}
	}
	if resp.Values == nil {
		resp.Values = [][]any{}
	}
	return resp
}

// SeedRequest is the body of POST /database/seed.
type SeedRequest struct {
	Sql string `json:"sql" binding:"required"`
}

// DatabaseState reports schema state against the required table set.
type DatabaseState struct {
	HasDatabase   bool     `json:"hasDatabase"`
	HasData       bool     `json:"hasData"`
	MissingTables []string `json:"missingTables"`
}

func NewDatabaseState(m *models.DatabaseState) DatabaseState {
	state := DatabaseState{
		HasDatabase:   m.HasDatabase,
		HasData:       m.HasData,
		MissingTables: m.MissingTables,
	}
	if state.MissingTables == nil {
		state.MissingTables = []string{}
	}
	return state
}

// Attachment is one stored file's metadata. The payload and thumbnail bytes
// are served by their own endpoints.
type Attachment struct {
	FileName          string `json:"fileName"`
	XmlPartName       string `json:"xmlPartName"`
	RawFileSize       int64  `json:"rawFileSize"`
	HasThumbnail      bool   `json:"hasThumbnail"`
	ThumbnailMimeType string `json:"thumbnailMimeType"`
	CreatedUtc        string `json:"createdUtc"`
}

func NewAttachmentFromModel(record models.DataFileRecord) Attachment {
	return Attachment{
		FileName:          record.FileName,
		XmlPartName:       record.XmlPartName,
		RawFileSize:       record.RawFileSize,
		HasThumbnail:      record.HasThumbnail(),
		ThumbnailMimeType: record.ThumbnailMimeType,
		CreatedUtc:        record.CreatedUtc,
	}
}

// UploadResult reports the outcome of one upload task.
type UploadResult struct {
	FileName    string `json:"fileName"`
	Status      string `json:"status"`
	Progress    int    `json:"progress"`
	XmlPartName string `json:"xmlPartName,omitempty"`
}

func NewUploadResultFromTask(task *models.UploadTask) UploadResult {
	return UploadResult{
		FileName:    task.FileName,
		Status:      string(task.Status),
		Progress:    task.Progress,
		XmlPartName: task.XmlPartName,
	}
}
