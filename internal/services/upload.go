package services

import (
	"context"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/proofpanel/docvault/internal/models"
	"github.com/proofpanel/docvault/internal/render"
	"github.com/proofpanel/docvault/internal/store"
	srvErrors "github.com/proofpanel/docvault/pkg/errors"
	"github.com/proofpanel/docvault/pkg/xmlcodec"
)

const (
	uploadSteps = 6

	thumbnailTargetWidth = 260
	thumbnailMaxScale    = 1.5

	pageTargetWidth = 1100
	pageMaxScale    = 2.0
)

// UploadService owns the upload task list and the ingestion pipeline.
type UploadService struct {
	store    *store.Store
	renderer render.Renderer
	log      *zap.SugaredLogger

	// mu guards the task list and holds for a whole pipeline run, so
	// concurrent callers cannot interleave the one-task-at-a-time batches.
	mu    sync.Mutex
	tasks []*models.UploadTask
}

func NewUploadService(st *store.Store, renderer render.Renderer) *UploadService {
	return &UploadService{
		store:    st,
		renderer: renderer,
		log:      zap.S().Named("upload_service"),
	}
}

// Submit queues one file for ingestion and returns its task.
func (s *UploadService) Submit(fileName string, source []byte) *models.UploadTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	task := models.NewUploadTask(fileName, source)
	s.tasks = append(s.tasks, task)
	return task
}

// Tasks returns a snapshot of the task list. The task pointers stay live;
// TaskStates gives value copies consistent with the pipeline.
func (s *UploadService) Tasks() []*models.UploadTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.UploadTask(nil), s.tasks...)
}

// TaskStates copies each task's current state under the same lock the
// pipeline mutates them under.
func (s *UploadService) TaskStates(tasks []*models.UploadTask) []models.UploadTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	states := make([]models.UploadTask, 0, len(tasks))
	for _, task := range tasks {
		states = append(states, *task)
	}
	return states
}

// ProcessQueued runs every queued task strictly one at a time. A failed task
// is logged, reverted to Queued at progress 0 for manual retry, and never
// aborts the rest of the batch.
func (s *UploadService) ProcessQueued(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, task := range s.tasks {
		if task.Status != models.UploadStatusQueued {
			continue
		}
		if err := s.processTask(ctx, task); err != nil {
			s.log.Errorw("upload failed", "file", task.FileName, "error", err)
			task.Status = models.UploadStatusQueued
			task.Progress = 0
		}
	}
}

func (s *UploadService) processTask(ctx context.Context, task *models.UploadTask) error {
	step := 0
	checkpoint := func() {
		step++
		task.Progress = int(math.Round(float64(step) / uploadSteps * 100))
	}

	// 1: validate
	if len(task.Source) == 0 {
		return srvErrors.NewNoContentError(task.FileName)
	}
	task.Status = models.UploadStatusInProgress
	task.RawFileSize = int64(len(task.Source))
	checkpoint()

	// 2: thumbnail
	thumb, err := s.renderThumbnail(ctx, task.Source)
	if err != nil {
		return err
	}
	checkpoint()

	// 3: encode
	payload := xmlcodec.ToBase64(task.Source)
	checkpoint()

	// 4: payload part
	partName, createdUtc, err := s.store.Attachments().SavePayload(ctx, task.FileName, payload)
	if err != nil {
		return err
	}
	task.XmlPartName = partName
	task.CreatedUtc = createdUtc
	checkpoint()

	// 5: metadata row, only after the part is confirmed
	record := &models.DataFileRecord{
		FileName:          task.FileName,
		XmlPartName:       partName,
		RawFileSize:       task.RawFileSize,
		ThumbnailPng:      thumb.Bytes,
		ThumbnailWidth:    &thumb.Width,
		ThumbnailHeight:   &thumb.Height,
		ThumbnailMimeType: thumb.MimeType,
		CreatedUtc:        createdUtc,
	}
	if err := s.store.Attachments().RecordMetadata(ctx, record); err != nil {
		return err
	}
	checkpoint()

	// 6: complete; the source bytes are no longer needed
	task.Source = nil
	task.Status = models.UploadStatusComplete
	checkpoint()
	return nil
}

func (s *UploadService) renderThumbnail(ctx context.Context, doc []byte) (*render.Raster, error) {
	width, _, err := s.renderer.PageDimensions(ctx, doc, 1)
	if err != nil {
		return nil, err
	}
	scale := render.ScaleFor(width, thumbnailTargetWidth, thumbnailMaxScale)
	return s.renderer.RenderPage(ctx, doc, 1, scale)
}

// Thumbnail returns the gallery entry for one record: the stored raster when
// present, otherwise an on-demand render of the payload's first page. The
// on-demand render is for this call only and is not written back.
func (s *UploadService) Thumbnail(ctx context.Context, record *models.DataFileRecord) (*models.Thumbnail, error) {
	thumb := &models.Thumbnail{
		FileName:    record.FileName,
		XmlPartName: record.XmlPartName,
		CreatedUtc:  record.CreatedUtc,
	}

	if record.HasThumbnail() {
		thumb.Image = record.ThumbnailPng
		thumb.MimeType = record.ThumbnailMimeType
		if record.ThumbnailWidth != nil {
			thumb.Width = *record.ThumbnailWidth
		}
		if record.ThumbnailHeight != nil {
			thumb.Height = *record.ThumbnailHeight
		}
		return thumb, nil
	}

	raw, err := s.loadPayloadBytes(ctx, record.XmlPartName, record.FileName)
	if err != nil {
		return nil, err
	}
	raster, err := s.renderThumbnail(ctx, raw)
	if err != nil {
		return nil, err
	}

	thumb.Image = raster.Bytes
	thumb.MimeType = raster.MimeType
	thumb.Width = raster.Width
	thumb.Height = raster.Height
	return thumb, nil
}

// Thumbnails populates the gallery. A record whose thumbnail cannot be
// produced is skipped and logged; one bad file must not blank the gallery.
func (s *UploadService) Thumbnails(ctx context.Context) ([]models.Thumbnail, error) {
	records, err := s.store.Attachments().ListRecords(ctx)
	if err != nil {
		return nil, err
	}

	thumbs := make([]models.Thumbnail, 0, len(records))
	for i := range records {
		thumb, err := s.Thumbnail(ctx, &records[i])
		if err != nil {
			s.log.Warnw("skipping gallery entry", "file", records[i].FileName, "error", err)
			continue
		}
		thumbs = append(thumbs, *thumb)
	}
	return thumbs, nil
}

// OpenAttachment renders every page of the attachment for foreground
// viewing. onProgress, when non-nil, observes the blended download/render
// percentage.
func (s *UploadService) OpenAttachment(ctx context.Context, partName string, onProgress func(int)) (*models.AttachmentView, error) {
	report := func(download, rendered int) {
		if onProgress != nil {
			onProgress(BlendProgress(download, rendered))
		}
	}

	raw, err := s.loadPayloadBytes(ctx, partName, partName)
	if err != nil {
		return nil, err
	}

	download := 0
	count, err := s.renderer.PageCount(ctx, raw, func(loaded, total int64) {
		if total > 0 {
			download = int(float64(loaded) / float64(total) * 100)
		}
		report(download, 0)
	})
	if err != nil {
		return nil, err
	}
	download = 100

	view := &models.AttachmentView{XmlPartName: partName}
	if records, err := s.store.Attachments().ListRecords(ctx); err == nil {
		for _, record := range records {
			if record.XmlPartName == partName {
				view.FileName = record.FileName
				break
			}
		}
	}

	for page := 1; page <= count; page++ {
		width, _, err := s.renderer.PageDimensions(ctx, raw, page)
		if err != nil {
			return nil, err
		}
		scale := render.ScaleFor(width, pageTargetWidth, pageMaxScale)
		raster, err := s.renderer.RenderPage(ctx, raw, page, scale)
		if err != nil {
			return nil, err
		}
		view.Pages = append(view.Pages, models.PageImage{
			PageNumber: page,
			Image:      raster.Bytes,
			MimeType:   raster.MimeType,
			Width:      raster.Width,
			Height:     raster.Height,
		})
		report(download, page*100/count)
	}
	return view, nil
}

// Records lists the persisted attachment metadata rows.
func (s *UploadService) Records(ctx context.Context) ([]models.DataFileRecord, error) {
	return s.store.Attachments().ListRecords(ctx)
}

// Content returns an attachment's raw payload bytes.
func (s *UploadService) Content(ctx context.Context, partName string) ([]byte, error) {
	return s.loadPayloadBytes(ctx, partName, partName)
}

// DeleteUpload removes the payload part and metadata row. The task, when
// present, is flagged while the delete runs, dropped from the list on
// success, and restored to Complete on failure.
func (s *UploadService) DeleteUpload(ctx context.Context, partName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task := s.findTask(partName)
	if task != nil {
		task.Deleting = true
	}

	if err := s.store.Attachments().DeletePayloadAndRecord(ctx, partName); err != nil {
		if task != nil {
			task.Deleting = false
			task.Status = models.UploadStatusComplete
			task.Progress = 100
		}
		return err
	}

	s.removeTask(partName)
	return nil
}

// SyncFromDatabase merges persisted DataFiles rows into the task list:
// persisted rows appear as Complete tasks, in-flight tasks are preserved.
func (s *UploadService) SyncFromDatabase(ctx context.Context) error {
	records, err := s.store.Attachments().ListRecords(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	byPart := make(map[string]*models.UploadTask)
	for _, task := range s.tasks {
		if task.XmlPartName != "" {
			byPart[task.XmlPartName] = task
		}
	}

	for _, record := range records {
		if task, ok := byPart[record.XmlPartName]; ok {
			task.Status = models.UploadStatusComplete
			task.Progress = 100
			continue
		}
		s.tasks = append(s.tasks, &models.UploadTask{
			FileName:    record.FileName,
			Status:      models.UploadStatusComplete,
			Progress:    100,
			RawFileSize: record.RawFileSize,
			XmlPartName: record.XmlPartName,
			CreatedUtc:  record.CreatedUtc,
		})
	}
	return nil
}

// findTask and removeTask expect mu to be held.
func (s *UploadService) findTask(partName string) *models.UploadTask {
	for _, task := range s.tasks {
		if task.XmlPartName == partName {
			return task
		}
	}
	return nil
}

func (s *UploadService) removeTask(partName string) {
	kept := s.tasks[:0]
	for _, task := range s.tasks {
		if task.XmlPartName != partName {
			kept = append(kept, task)
		}
	}
	s.tasks = kept
}

func (s *UploadService) loadPayloadBytes(ctx context.Context, partName, fileName string) ([]byte, error) {
	body, found, err := s.store.Attachments().LoadPayload(ctx, partName)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, srvErrors.NewNoContentError(fileName)
	}
	return xmlcodec.FromBase64(body)
}

// BlendProgress merges payload-download and page-render progress into one
// percentage: min of the two once rendering has started. Until the first
// page renders, the reported value stays strictly below the download figure
// and never exceeds 99, so the display cannot hit 100% prematurely.
func BlendProgress(download, rendered int) int {
	if rendered <= 0 {
		capped := download - 1
		if capped > 99 {
			capped = 99
		}
		if capped < 0 {
			capped = 0
		}
		return capped
	}
	if download < rendered {
		return download
	}
	return rendered
}
