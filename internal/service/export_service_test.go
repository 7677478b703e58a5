package service_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"erpdesk/internal/config"
	"erpdesk/internal/csvexport"
	"erpdesk/internal/domain"
	"erpdesk/internal/port"
	"erpdesk/internal/service"
	"erpdesk/mocks"
)

func TestExportService_Write_CSV(t *testing.T) {
	docRepo := new(mocks.MockDocumentRepo)
	svc := service.NewExportService(docRepo, nil, config.S3Config{}, zerolog.Nop())
	tenantID := uuid.New()
	filter := port.DocumentFilter{Kind: domain.KindEInvoice}

	docRepo.On("List", mock.Anything, tenantID, filter, 0, 500).Return([]domain.Document{
		*storedDoc(tenantID, domain.KindEInvoice, domain.StatusGenerated),
		*storedDoc(tenantID, domain.KindEInvoice, domain.StatusDraft),
	}, 2, nil)

	var buf bytes.Buffer
	n, err := svc.Write(context.Background(), tenantID, filter, service.ExportCSV, &buf)

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.True(t, bytes.HasPrefix(buf.Bytes(), csvexport.BOM))

	rows, err := csv.NewReader(bytes.NewReader(buf.Bytes()[len(csvexport.BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Code", rows[0][0])
	assert.Equal(t, "generated", rows[1][3])
}

func TestExportService_Publish(t *testing.T) {
	docRepo := new(mocks.MockDocumentRepo)
	storage := new(mocks.MockObjectStorage)
	cfg := config.S3Config{Bucket: "exports", ExportPrefix: "registers", PresignExpiry: 600}
	svc := service.NewExportService(docRepo, storage, cfg, zerolog.Nop())
	tenantID := uuid.New()

	docRepo.On("List", mock.Anything, tenantID, port.DocumentFilter{}, 0, 500).Return([]domain.Document{}, 0, nil)
	storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.Bucket == "exports" &&
			strings.HasPrefix(in.Key, "registers/"+tenantID.String()+"/") &&
			strings.HasSuffix(in.Key, ".xlsx") &&
			strings.Contains(in.ContentDisposition, "register_")
	})).Return(&port.UploadOutput{}, nil)
	storage.On("GetPresignedURL", mock.Anything, "exports", mock.Anything, int64(600)).Return("https://s3/x", nil)

	res, err := svc.Publish(context.Background(), tenantID, port.DocumentFilter{}, service.ExportXLSX)

	require.NoError(t, err)
	assert.Equal(t, "https://s3/x", res.URL)
	assert.Equal(t, 0, res.Documents)
	storage.AssertExpectations(t)
}

func TestExportService_Publish_NoStorage(t *testing.T) {
	svc := service.NewExportService(new(mocks.MockDocumentRepo), nil, config.S3Config{}, zerolog.Nop())

	_, err := svc.Publish(context.Background(), uuid.New(), port.DocumentFilter{}, service.ExportCSV)

	assert.ErrorIs(t, err, domain.ErrExportFailed)
}

func TestParseExportFormat(t *testing.T) {
	f, err := service.ParseExportFormat("")
	require.NoError(t, err)
	assert.Equal(t, service.ExportCSV, f)

	f, err = service.ParseExportFormat("xlsx")
	require.NoError(t, err)
	assert.Equal(t, service.ExportXLSX, f)

	_, err = service.ParseExportFormat("pdf")
	assert.ErrorIs(t, err, domain.ErrExportFailed)
}
