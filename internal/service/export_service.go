package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"erpdesk/internal/config"
	"erpdesk/internal/csvexport"
	"erpdesk/internal/domain"
	"erpdesk/internal/port"
	"erpdesk/internal/xlsxexport"
)

// exportPageSize is how many documents are fetched per query while exporting.
const exportPageSize = 500

// ExportFormat selects the register file type.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)

// ContentType returns the MIME type for the format.
func (f ExportFormat) ContentType() string {
	if f == ExportXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// ParseExportFormat maps a query value to a format. Empty means CSV.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(s) {
	case "", ExportCSV:
		return ExportCSV, nil
	case ExportXLSX:
		return ExportXLSX, nil
	}
	return "", fmt.Errorf("%w: unsupported format %q", domain.ErrExportFailed, s)
}

// ExportResult points at an uploaded register.
type ExportResult struct {
	Filename  string    `json:"filename"`
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Documents int       `json:"documents"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ExportService renders the document register.
type ExportService interface {
	// Write renders the register for the filter straight into w.
	Write(ctx context.Context, tenantID uuid.UUID, filter port.DocumentFilter, format ExportFormat, w io.Writer) (int, error)
	// Publish renders the register, stores it in object storage and returns a
	// time-limited download link.
	Publish(ctx context.Context, tenantID uuid.UUID, filter port.DocumentFilter, format ExportFormat) (*ExportResult, error)
}

type exportService struct {
	docRepo port.DocumentRepository
	storage port.ObjectStorage
	cfg     config.S3Config
	now     func() time.Time
	log     zerolog.Logger
}

// NewExportService creates a new ExportService implementation. storage may
// be nil, in which case Publish fails with ErrExportFailed.
func NewExportService(docRepo port.DocumentRepository, storage port.ObjectStorage, cfg config.S3Config, log zerolog.Logger) ExportService {
	return &exportService{docRepo: docRepo, storage: storage, cfg: cfg, now: time.Now, log: log}
}

// collect pages through every document matching filter.
func (s *exportService) collect(ctx context.Context, tenantID uuid.UUID, filter port.DocumentFilter) ([]domain.Document, error) {
	var all []domain.Document
	for offset := 0; ; offset += exportPageSize {
		page, total, err := s.docRepo.List(ctx, tenantID, filter, offset, exportPageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < exportPageSize || len(all) >= total {
			return all, nil
		}
	}
}

func (s *exportService) Write(ctx context.Context, tenantID uuid.UUID, filter port.DocumentFilter, format ExportFormat, w io.Writer) (int, error) {
	docs, err := s.collect(ctx, tenantID, filter)
	if err != nil {
		return 0, err
	}

	switch format {
	case ExportXLSX:
		if err := xlsxexport.Write(w, docs); err != nil {
			return 0, fmt.Errorf("%w: %v", domain.ErrExportFailed, err)
		}
	default:
		if _, err := w.Write(csvexport.BOM); err != nil {
			return 0, err
		}
		cw := csvexport.NewWriter(w)
		if err := cw.WriteHeader(); err != nil {
			return 0, err
		}
		if err := cw.WriteDocuments(docs); err != nil {
			return 0, err
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return 0, fmt.Errorf("%w: %v", domain.ErrExportFailed, err)
		}
	}
	return len(docs), nil
}

func (s *exportService) Publish(ctx context.Context, tenantID uuid.UUID, filter port.DocumentFilter, format ExportFormat) (*ExportResult, error) {
	if s.storage == nil || s.cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: object storage is not configured", domain.ErrExportFailed)
	}

	var buf bytes.Buffer
	n, err := s.Write(ctx, tenantID, filter, format, &buf)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	name := "register"
	if filter.Kind != "" {
		name = string(filter.Kind) + "_register"
	}
	filename := csvexport.BuildFilename(name, string(format), now)
	key := path.Join(s.cfg.ExportPrefix, tenantID.String(), now.Format("20060102T150405"), filename)

	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:             s.cfg.Bucket,
		Key:                key,
		Body:               &buf,
		ContentType:        format.ContentType(),
		ContentDisposition: fmt.Sprintf(`attachment; filename="%s"`, filename),
		Size:               int64(buf.Len()),
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExportFailed, err)
	}

	expiry := s.cfg.PresignExpiry
	if expiry <= 0 {
		expiry = 3600
	}
	url, err := s.storage.GetPresignedURL(ctx, s.cfg.Bucket, key, expiry)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExportFailed, err)
	}

	s.log.Info().
		Str("tenant_id", tenantID.String()).
		Str("key", key).
		Int("documents", n).
		Msg("exportService.Publish: register uploaded")

	return &ExportResult{
		Filename:  filename,
		Key:       key,
		URL:       url,
		Documents: n,
		ExpiresAt: now.Add(time.Duration(expiry) * time.Second),
	}, nil
}
