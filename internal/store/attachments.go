package store

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/proofpanel/docvault/internal/hostdoc"
	"github.com/proofpanel/docvault/internal/models"
	"github.com/proofpanel/docvault/pkg/xmlcodec"
)

// AttachmentStore persists uploaded payloads as standalone parts and mirrors
// their metadata into the DataFiles table. Payload parts are independent of
// the snapshot, so their writes interleave freely with unrelated reads.
type AttachmentStore struct {
	db      *DatabaseStore
	adapter *hostdoc.Adapter
	log     *zap.SugaredLogger
}

func NewAttachmentStore(db *DatabaseStore, adapter *hostdoc.Adapter) *AttachmentStore {
	return &AttachmentStore{
		db:      db,
		adapter: adapter,
		log:     zap.S().Named("attachment_store"),
	}
}

// EnsureSchema creates the DataFiles table and its part-name index when
// absent. Safe to call before every operation; only an actual creation
// triggers a snapshot save.
func (a *AttachmentStore) EnsureSchema(ctx context.Context) error {
	if err := a.db.LoadOrCreate(ctx); err != nil {
		return err
	}

	rs, err := a.db.engine.Query(ctx, queryDataFilesTableExists)
	if err != nil {
		return err
	}
	existed := len(rs.Values) == 1 && asInt64(rs.Values[0][0]) > 0

	if err := a.db.engine.Run(ctx, queryCreateDataFilesTable); err != nil {
		return err
	}
	if err := a.db.engine.Run(ctx, queryCreateDataFilesPartNameIndex); err != nil {
		return err
	}
	if existed {
		return nil
	}
	return a.db.Save(ctx)
}

var nonAlphanumericRe = regexp.MustCompile(`[^a-z0-9]+`)

// GeneratePartName derives an attachment tag from fileName: extension
// stripped, lower-cased, runs of non-alphanumerics collapsed to one dash,
// plus a short random disambiguator. Collisions are negligible, not
// impossible.
func GeneratePartName(fileName string) string {
	base := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	base = strings.ToLower(base)
	base = nonAlphanumericRe.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-")
	if base == "" {
		base = "file"
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return AttachmentTagPrefix + base + "-" + suffix
}

// SavePayload writes one base64 payload as a new part, wrapped with the
// original file name and creation timestamp as attributes.
func (a *AttachmentStore) SavePayload(ctx context.Context, fileName, base64Payload string) (string, string, error) {
	partName := GeneratePartName(fileName)
	createdUtc := time.Now().UTC().Format(time.RFC3339)

	fragment := xmlcodec.WrapFragment(partName, []xmlcodec.Attribute{
		{Name: "fileName", Value: fileName},
		{Name: "createdUtc", Value: createdUtc},
	}, base64Payload)

	if err := a.adapter.AddPart(ctx, fragment); err != nil {
		return "", "", err
	}
	return partName, createdUtc, nil
}

// RecordMetadata upserts the DataFiles row for record and persists the
// snapshot synchronously. Callers must have written the payload part first: a
// row never references a part that does not exist yet.
func (a *AttachmentStore) RecordMetadata(ctx context.Context, record *models.DataFileRecord) error {
	if err := a.EnsureSchema(ctx); err != nil {
		return err
	}

	mimeType := record.ThumbnailMimeType
	if mimeType == "" {
		mimeType = models.DefaultThumbnailMimeType
	}

	err := a.db.engine.Run(ctx, queryUpsertDataFile,
		record.FileName,
		record.XmlPartName,
		record.RawFileSize,
		record.ThumbnailPng,
		record.ThumbnailWidth,
		record.ThumbnailHeight,
		mimeType,
		record.CreatedUtc,
	)
	if err != nil {
		return err
	}
	return a.db.Save(ctx)
}

// DeletePayloadAndRecord removes the payload part, tolerating absence, then
// deletes the metadata row by part name and persists. The two deletes are not
// atomic; a failure in between surfaces to the caller as a recoverable
// inconsistency.
func (a *AttachmentStore) DeletePayloadAndRecord(ctx context.Context, partName string) error {
	if err := a.EnsureSchema(ctx); err != nil {
		return err
	}

	removed, err := a.adapter.DeletePartByTagPrefix(ctx, partName)
	if err != nil {
		return err
	}
	if !removed {
		a.log.Infow("payload part already absent", "part", partName)
	}

	if err := a.db.engine.Run(ctx, queryDeleteDataFileByPartName, partName); err != nil {
		return err
	}
	return a.db.Save(ctx)
}

// dataFileColumns is the scan order shared by list queries.
var dataFileColumns = []string{
	"FileName", "XmlPartName", "RawFileSize", "ThumbnailPng",
	"ThumbnailWidth", "ThumbnailHeight", "ThumbnailMimeType", "CreatedUtc",
}

// ListOption narrows or reorders a list query.
type ListOption func(sq.SelectBuilder) sq.SelectBuilder

// WithFileName filters the listing to one file name.
func WithFileName(fileName string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Where(sq.Eq{"FileName": fileName})
	}
}

// ListRecords returns DataFiles rows, newest first. Query failures yield an
// empty list: listing backs best-effort UI population and must not fail it.
func (a *AttachmentStore) ListRecords(ctx context.Context, opts ...ListOption) ([]models.DataFileRecord, error) {
	if err := a.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	builder := sq.Select(dataFileColumns...).
		From("DataFiles").
		OrderBy("CreatedUtc DESC")
	for _, opt := range opts {
		builder = opt(builder)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rs, err := a.db.engine.Query(ctx, query, args...)
	if err != nil {
		a.log.Errorw("failed to list attachment records", "error", err)
		return []models.DataFileRecord{}, nil
	}

	records := make([]models.DataFileRecord, 0, len(rs.Values))
	for _, row := range rs.Values {
		records = append(records, rowToDataFileRecord(row))
	}
	return records, nil
}

// LoadPayload returns the base64 body of the part matching partName, or
// absence when no part or no extractable body exists. Absence is not an
// error; callers decide whether it is fatal.
func (a *AttachmentStore) LoadPayload(ctx context.Context, partName string) (string, bool, error) {
	part, found, err := a.adapter.FindPartByTagPrefix(ctx, partName)
	if err != nil {
		return "", false, err
	}
	if !found {
		return "", false, nil
	}

	// the tag scan only matches plaintext fragments, so unlike the snapshot
	// path there is no double-encoded form to salvage here
	body, ok := xmlcodec.ExtractBody(part.XML(), partName)
	if !ok {
		return "", false, nil
	}
	return body, true, nil
}

func rowToDataFileRecord(row []any) models.DataFileRecord {
	return models.DataFileRecord{
		FileName:          asString(row[0]),
		XmlPartName:       asString(row[1]),
		RawFileSize:       asInt64(row[2]),
		ThumbnailPng:      asBytes(row[3]),
		ThumbnailWidth:    asIntPtr(row[4]),
		ThumbnailHeight:   asIntPtr(row[5]),
		ThumbnailMimeType: asString(row[6]),
		CreatedUtc:        asString(row[7]),
	}
}

// The driver hands back string, int64, []byte or nil depending on declared
// column affinity.

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return ""
	}
}

func asInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case float64:
		return int64(t)
	default:
		return 0
	}
}

func asBytes(v any) []byte {
	if b, ok := v.([]byte); ok && len(b) > 0 {
		return b
	}
	return nil
}

func asIntPtr(v any) *int {
	if v == nil {
		return nil
	}
	n := int(asInt64(v))
	if n == 0 {
		return nil
	}
	return &n
}
