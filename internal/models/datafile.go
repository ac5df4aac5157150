package models

// DefaultThumbnailMimeType is the mime type recorded when a thumbnail is
// stored without an explicit type.
const DefaultThumbnailMimeType = "image/png"

// DataFileRecord is one row of the DataFiles table: the metadata companion of
// an attachment part. FileName is unique per row; XmlPartName references the
// part holding the payload.
type DataFileRecord struct {
	FileName          string
	XmlPartName       string
	RawFileSize       int64
	ThumbnailPng      []byte
	ThumbnailWidth    *int
	ThumbnailHeight   *int
	ThumbnailMimeType string
	CreatedUtc        string
}

// HasThumbnail reports whether a raster was persisted with the record.
// Records written before thumbnail support have none and are rendered on
// demand instead.
func (r *DataFileRecord) HasThumbnail() bool {
	return len(r.ThumbnailPng) > 0
}

// DatabaseState summarizes schema introspection against a required table set.
type DatabaseState struct {
	HasDatabase   bool
	HasData       bool
	MissingTables []string
}
