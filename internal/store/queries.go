package store

// Part tags
const (
	// SnapshotTag marks the single part holding the serialized database image.
	SnapshotTag = "proofPanelData"

	// AttachmentTagPrefix prefixes every generated attachment part name.
	AttachmentTagPrefix = "dataFile-"
)

// DataFiles queries
const (
	queryCreateDataFilesTable = `
		CREATE TABLE IF NOT EXISTS DataFiles (
			FileName TEXT UNIQUE NOT NULL,
			XmlPartName TEXT NOT NULL,
			RawFileSize INTEGER NOT NULL CHECK (RawFileSize >= 0),
			ThumbnailPng BLOB NULL,
			ThumbnailWidth INTEGER NULL CHECK (ThumbnailWidth IS NULL OR ThumbnailWidth > 0),
			ThumbnailHeight INTEGER NULL CHECK (ThumbnailHeight IS NULL OR ThumbnailHeight > 0),
			ThumbnailMimeType TEXT NOT NULL DEFAULT 'image/png',
			CreatedUtc TEXT NOT NULL
		)`

	queryCreateDataFilesPartNameIndex = `
		CREATE UNIQUE INDEX IF NOT EXISTS idx_datafiles_part_name
		ON DataFiles (XmlPartName)`

	queryUpsertDataFile = `
		INSERT INTO DataFiles (FileName, XmlPartName, RawFileSize, ThumbnailPng,
			ThumbnailWidth, ThumbnailHeight, ThumbnailMimeType, CreatedUtc)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (FileName) DO UPDATE SET
			XmlPartName = EXCLUDED.XmlPartName,
			RawFileSize = EXCLUDED.RawFileSize,
			ThumbnailPng = EXCLUDED.ThumbnailPng,
			ThumbnailWidth = EXCLUDED.ThumbnailWidth,
			ThumbnailHeight = EXCLUDED.ThumbnailHeight,
			ThumbnailMimeType = EXCLUDED.ThumbnailMimeType,
			CreatedUtc = EXCLUDED.CreatedUtc`

	queryDeleteDataFileByPartName = `DELETE FROM DataFiles WHERE XmlPartName = ?`
)

// Schema introspection queries
const (
	queryListUserTables = `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name`

	queryDataFilesTableExists = `
		SELECT count(*) FROM sqlite_master
		WHERE type = 'table' AND name = 'DataFiles'`
)
