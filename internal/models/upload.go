package models

// UploadStatus tracks an upload task through the pipeline.
type UploadStatus string

const (
	// UploadStatusQueued - waiting to be processed, or re-offerable after a failure
	UploadStatusQueued UploadStatus = "Queued"
	// UploadStatusInProgress - one of the pipeline checkpoints is executing
	UploadStatusInProgress UploadStatus = "In Progress"
	// UploadStatusComplete - payload part and metadata row both written
	UploadStatusComplete UploadStatus = "Complete"
)

// UploadTask is the transient, in-memory state of one file in an upload
// batch. Source holds the raw file bytes until the part is written.
type UploadTask struct {
	FileName    string
	Source      []byte
	Status      UploadStatus
	Progress    int
	RawFileSize int64
	XmlPartName string
	CreatedUtc  string
	Deleting    bool
}

// NewUploadTask creates a queued task for one file.
func NewUploadTask(fileName string, source []byte) *UploadTask {
	return &UploadTask{
		FileName: fileName,
		Source:   source,
		Status:   UploadStatusQueued,
	}
}

// Thumbnail is a gallery entry: either the raster stored with the metadata
// row or one rendered on demand for records predating thumbnail support.
type Thumbnail struct {
	FileName    string
	XmlPartName string
	CreatedUtc  string
	Image       []byte
	MimeType    string
	Width       int
	Height      int
}

// PageImage is one rendered page of an opened attachment.
type PageImage struct {
	PageNumber int
	Image      []byte
	MimeType   string
	Width      int
	Height     int
}

// AttachmentView is a fully rendered attachment for foreground viewing.
type AttachmentView struct {
	FileName    string
	XmlPartName string
	Pages       []PageImage
}
