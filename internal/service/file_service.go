package service

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/clinic-kit/medapp/internal/config"
	"github.com/clinic-kit/medapp/internal/domain"
	"github.com/clinic-kit/medapp/internal/events"
	"github.com/clinic-kit/medapp/internal/repository"
	"github.com/clinic-kit/medapp/internal/storage"
	apperrors "github.com/clinic-kit/medapp/pkg/util"
)

const (
	defaultContentType = "application/octet-stream"
	// maxFileNameBytes matches patient_files.file_name.
	maxFileNameBytes = 255
)

// FileUpload is one uploaded file as received from the client.
type FileUpload struct {
	FileName    string
	ContentType string
	Content     io.Reader
}

// PatientFileService stores and serves files attached to patients.
type PatientFileService struct {
	store      repository.Store
	blobs      storage.BlobStore
	dispatcher events.Dispatcher
	maxBytes   int64
	logger     *zap.Logger
}

// NewPatientFileService constructs the service.
func NewPatientFileService(cfg config.Config, deps Dependencies) *PatientFileService {
	maxBytes := cfg.Storage.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = config.DefaultMaxUploadBytes
	}
	return &PatientFileService{
		store:      deps.Store,
		blobs:      deps.Blobs,
		dispatcher: deps.Dispatcher,
		maxBytes:   maxBytes,
		logger:     deps.logger(),
	}
}

// Upload attaches a file to the patient. uploadedBy is the staff member
// acting on the request, or nil when the requester has no staff record.
func (s *PatientFileService) Upload(ctx context.Context, patientID int64, upload FileUpload, uploadedBy *int64) (*domain.PatientFile, error) {
	if upload.Content == nil {
		return nil, apperrors.NewFieldValidationError(map[string]string{"file": "this field is required"})
	}
	if _, err := s.store.Repos().Patients.GetByID(ctx, patientID); err != nil {
		return nil, mapStoreError(err, "patient", patientID)
	}

	key := storage.NewPatientFileKey(upload.FileName)
	written, err := s.blobs.Save(ctx, key, io.LimitReader(upload.Content, s.maxBytes+1))
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	switch {
	case written == 0:
		s.removeBlob(ctx, key)
		return nil, apperrors.NewFieldValidationError(map[string]string{"file": "the submitted file is empty"})
	case written > s.maxBytes:
		s.removeBlob(ctx, key)
		return nil, apperrors.NewFieldValidationError(map[string]string{"file": "file exceeds the upload size limit"})
	}

	file := &domain.PatientFile{
		PatientID:   patientID,
		StorageKey:  key,
		FileName:    displayName(upload.FileName),
		ContentType: upload.ContentType,
		SizeBytes:   written,
		UploadedBy:  uploadedBy,
	}
	if file.ContentType == "" {
		file.ContentType = defaultContentType
	}
	err = s.store.Repos().Files.Create(ctx, file)
	if errors.Is(err, repository.ErrUploaderNotFound) {
		// The uploader's staff record was deleted mid-request; keep the file unattributed.
		s.logger.Warn("uploader no longer exists; storing file without uploader",
			zap.Int64("patient_id", patientID),
			zap.Int64p("uploaded_by", uploadedBy))
		file.UploadedBy = nil
		err = s.store.Repos().Files.Create(ctx, file)
	}
	if err != nil {
		s.removeBlob(ctx, key)
		return nil, mapStoreError(err, "patient", patientID)
	}

	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:     events.EventPatientFileUploaded,
		EntityID: file.ID,
		Payload: events.PatientFileUploadedPayload{
			PatientID:  patientID,
			FileName:   file.FileName,
			SizeBytes:  file.SizeBytes,
			UploadedBy: file.UploadedBy,
		},
	})
	return file, nil
}

// Download returns the file record and a stream of its bytes. The caller
// closes the stream.
func (s *PatientFileService) Download(ctx context.Context, fileID int64) (*domain.PatientFile, io.ReadCloser, error) {
	file, err := s.store.Repos().Files.GetByID(ctx, fileID)
	if err != nil {
		return nil, nil, mapStoreError(err, "patient file", fileID)
	}
	content, err := s.blobs.Open(ctx, file.StorageKey)
	if err != nil {
		level := s.logger.Error
		if errors.Is(err, storage.ErrBlobNotFound) {
			level = s.logger.Warn
		}
		level("patient file blob unreadable",
			zap.Int64("file_id", fileID),
			zap.String("storage_key", file.StorageKey),
			zap.Error(err))
		return nil, nil, apperrors.NewStorageUnavailable(err)
	}
	return file, content, nil
}

func (s *PatientFileService) removeBlob(ctx context.Context, key string) {
	if err := s.blobs.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrBlobNotFound) {
		s.logger.Warn("failed to remove blob", zap.String("storage_key", key), zap.Error(err))
	}
}

func displayName(name string) string {
	name = strings.ToValidUTF8(name, "_")
	name = strings.TrimSpace(path.Base(strings.ReplaceAll(name, "\\", "/")))
	if name == "" || name == "." || name == "/" {
		return "upload"
	}
	if len(name) <= maxFileNameBytes {
		return name
	}
	ext := path.Ext(name)
	if len(ext) > 16 {
		ext = ""
	}
	return truncateUTF8(strings.TrimSuffix(name, ext), maxFileNameBytes-len(ext)) + ext
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
