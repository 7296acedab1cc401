package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinic-kit/medapp/internal/domain"
	"github.com/clinic-kit/medapp/internal/events"
	"github.com/clinic-kit/medapp/internal/repository"
	apperrors "github.com/clinic-kit/medapp/pkg/util"
)

func stringReader(s string) io.Reader { return strings.NewReader(s) }

func TestUpload_StoresRecordAndBytes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	staff, _ := f.createStaff(t, "Ada", "")
	patient := f.createPatient(t, "Jo", 40)

	before := time.Now().UTC()
	file, err := f.files.Upload(ctx, patient.ID, FileUpload{
		FileName:    `C:\scans\x-ray 1.png`,
		ContentType: "image/png",
		Content:     stringReader("pixels"),
	}, &staff.ID)
	require.NoError(t, err)

	assert.Equal(t, "x-ray 1.png", file.FileName)
	assert.Equal(t, "image/png", file.ContentType)
	assert.EqualValues(t, 6, file.SizeBytes)
	assert.True(t, strings.HasPrefix(file.StorageKey, "patient_files/"))
	assert.False(t, file.UploadedAt.Before(before))
	require.NotNil(t, file.UploadedBy)
	assert.Equal(t, staff.ID, *file.UploadedBy)

	record, content, err := f.files.Download(ctx, file.ID)
	require.NoError(t, err)
	defer content.Close()
	body, err := io.ReadAll(content)
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(body))
	assert.Equal(t, file.UploadedAt, record.UploadedAt)

	assert.Contains(t, f.events.types(), events.EventPatientFileUploaded)
}

func TestUpload_WithoutStaffIdentity(t *testing.T) {
	f := newFixture(t)
	patient := f.createPatient(t, "Jo", 40)

	file, err := f.files.Upload(context.Background(), patient.ID, FileUpload{FileName: "a.bin", Content: stringReader("a")}, nil)
	require.NoError(t, err)
	assert.Nil(t, file.UploadedBy)
	assert.Equal(t, "application/octet-stream", file.ContentType)
}

func TestUpload_DeletedPatient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	patient := f.createPatient(t, "Jo", 40)
	require.NoError(t, f.patients.DeletePatient(ctx, patient.ID))

	_, err := f.files.Upload(ctx, patient.ID, FileUpload{FileName: "a.txt", Content: stringReader("a")}, nil)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
	assert.Equal(t, 0, f.blobs.Len())
}

func TestUpload_RejectsEmptyAndOversized(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	patient := f.createPatient(t, "Jo", 40)

	_, err := f.files.Upload(ctx, patient.ID, FileUpload{FileName: "empty.txt", Content: stringReader("")}, nil)
	assert.Equal(t, "the submitted file is empty", fieldErrors(t, err)["file"])

	_, err = f.files.Upload(ctx, patient.ID, FileUpload{FileName: "big.bin", Content: stringReader(strings.Repeat("b", 1025))}, nil)
	assert.Equal(t, "file exceeds the upload size limit", fieldErrors(t, err)["file"])

	_, err = f.files.Upload(ctx, patient.ID, FileUpload{FileName: "none"}, nil)
	assert.Equal(t, "this field is required", fieldErrors(t, err)["file"])

	assert.Equal(t, 0, f.blobs.Len())
}

// deletingFiles removes the patient right before the insert, as a concurrent delete would.
type deletingFiles struct {
	repository.PatientFileRepository
	store repository.Store
}

func (d deletingFiles) Create(ctx context.Context, file *domain.PatientFile) error {
	if err := d.store.Repos().Patients.Delete(ctx, file.PatientID); err != nil {
		return err
	}
	return d.PatientFileRepository.Create(ctx, file)
}

type filesOverride struct {
	repository.Store
	wrap func(repository.PatientFileRepository) repository.PatientFileRepository
}

func (o filesOverride) Repos() repository.Repositories {
	repos := o.Store.Repos()
	repos.Files = o.wrap(repos.Files)
	return repos
}

func TestUpload_PatientDeletedBeforeInsert(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	patient := f.createPatient(t, "Jo", 40)
	store := filesOverride{Store: f.store, wrap: func(inner repository.PatientFileRepository) repository.PatientFileRepository {
		return deletingFiles{PatientFileRepository: inner, store: f.store}
	}}
	files := NewPatientFileService(f.cfg, Dependencies{Store: store, Blobs: f.blobs})

	_, err := files.Upload(ctx, patient.ID, FileUpload{FileName: "a.txt", Content: stringReader("a")}, nil)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, apperrors.CodeNotFound, domainErr.Code)
	assert.Equal(t, "patient not found", domainErr.Message)
	assert.Equal(t, 0, f.blobs.Len())
}

func TestUpload_UnknownUploaderIsDropped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	patient := f.createPatient(t, "Jo", 40)
	ghost := int64(4242)

	file, err := f.files.Upload(ctx, patient.ID, FileUpload{FileName: "a.txt", Content: stringReader("a")}, &ghost)
	require.NoError(t, err)
	assert.Nil(t, file.UploadedBy)

	stored, err := f.store.Repos().Files.GetByID(ctx, file.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.UploadedBy)
	assert.Equal(t, 1, f.blobs.Len())
}

func TestDisplayName(t *testing.T) {
	long := strings.Repeat("é", 200) + ".pdf"
	cases := map[string]string{
		`C:\scans\x-ray 1.png`: "x-ray 1.png",
		"  ":                   "upload",
		"scan\xff.png":         "scan_.png",
		long:                   strings.Repeat("é", 125) + ".pdf",
	}
	for input, want := range cases {
		got := displayName(input)
		assert.Equal(t, want, got, "input %q", input)
		assert.LessOrEqual(t, len(got), maxFileNameBytes)
		assert.True(t, utf8.ValidString(got))
	}

	noExt := displayName(strings.Repeat("ab", 200))
	assert.Len(t, noExt, maxFileNameBytes)
}

func TestDownload_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.files.Download(ctx, 1)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	patient := f.createPatient(t, "Jo", 40)
	file, err := f.files.Upload(ctx, patient.ID, FileUpload{FileName: "a.txt", Content: stringReader("a")}, nil)
	require.NoError(t, err)
	require.NoError(t, f.blobs.Delete(ctx, file.StorageKey))

	_, _, err = f.files.Download(ctx, file.ID)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, apperrors.CodeStorageUnavailable, domainErr.Code)
	assert.Equal(t, "could not open file", domainErr.Message)
}

func TestFileRecordSurvivesPatientEdit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	patient := f.createPatient(t, "Jo", 40)
	file, err := f.files.Upload(ctx, patient.ID, FileUpload{FileName: "a.txt", Content: stringReader("a")}, nil)
	require.NoError(t, err)

	_, err = f.patients.EditPatient(ctx, patient.ID, PatientInput{Name: "Jo", Age: intPtr(41), Gender: domain.GenderMale})
	require.NoError(t, err)

	stored, err := f.store.Repos().Files.GetByID(ctx, file.ID)
	require.NoError(t, err)
	assert.Equal(t, file.UploadedAt, stored.UploadedAt)
}
