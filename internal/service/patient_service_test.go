package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinic-kit/medapp/internal/domain"
	apperrors "github.com/clinic-kit/medapp/pkg/util"
)

func TestCreatePatient_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	staff, _ := f.createStaff(t, "Ada", "")

	cases := []struct {
		name  string
		input PatientInput
		field string
		msg   string
	}{
		{"missing name", PatientInput{Age: intPtr(3), Gender: domain.GenderMale}, "name", "this field is required"},
		{"missing age", PatientInput{Name: "Jo", Gender: domain.GenderMale}, "age", "this field is required"},
		{"negative age", PatientInput{Name: "Jo", Age: intPtr(-1), Gender: domain.GenderMale}, "age", "must be 0 or greater"},
		{"missing gender", PatientInput{Name: "Jo", Age: intPtr(3)}, "gender", "this field is required"},
		{"unknown gender", PatientInput{Name: "Jo", Age: intPtr(3), Gender: "Other"}, "gender", "must be one of: Male, Female"},
		{"long name", PatientInput{Name: strings.Repeat("x", 101), Age: intPtr(3), Gender: domain.GenderMale}, "name", "must be at most 100 characters"},
		{
			"unknown staff",
			PatientInput{Name: "Jo", Age: intPtr(3), Gender: domain.GenderMale, AssignedTo: []int64{staff.ID, 9001}},
			"assigned_to",
			"unknown staff member ids: 9001",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.patients.CreatePatient(ctx, tc.input)
			assert.Equal(t, tc.msg, fieldErrors(t, err)[tc.field])
		})
	}

	patients, err := f.patients.ListPatients(ctx)
	require.NoError(t, err)
	assert.Empty(t, patients)
}

func TestCreatePatient_AssignsStaff(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, _ := f.createStaff(t, "Zara", "")
	b, _ := f.createStaff(t, "Bea", "")

	patient := f.createPatient(t, "Jo", 40, a.ID, b.ID, a.ID)
	assert.Equal(t, 40, patient.Age)

	detail, err := f.patients.GetPatientDetail(ctx, patient.ID)
	require.NoError(t, err)
	require.Len(t, detail.Staff, 2)
	assert.Equal(t, "Bea", detail.Staff[0].Name)
	assert.Equal(t, "Zara", detail.Staff[1].Name)
	assert.Empty(t, detail.Files)
}

func TestEditPatient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	staff, _ := f.createStaff(t, "Ada", "")
	patient := f.createPatient(t, "Jo", 40, staff.ID)
	_, err := f.files.Upload(ctx, patient.ID, FileUpload{FileName: "x.txt", Content: stringReader("x")}, nil)
	require.NoError(t, err)

	edited, err := f.patients.EditPatient(ctx, patient.ID, PatientInput{
		Name:           "Jo",
		Age:            intPtr(41),
		Gender:         domain.GenderFemale,
		MedicalHistory: "asthma",
	})
	require.NoError(t, err)
	assert.Equal(t, 41, edited.Age)

	detail, err := f.patients.GetPatientDetail(ctx, patient.ID)
	require.NoError(t, err)
	assert.Equal(t, 41, detail.Patient.Age)
	assert.Equal(t, "asthma", detail.Patient.MedicalHistory)
	assert.Len(t, detail.Staff, 1, "omitted assigned_to keeps assignments")
	assert.Len(t, detail.Files, 1)

	_, err = f.patients.EditPatient(ctx, patient.ID, PatientInput{
		Name:       "Jo",
		Age:        intPtr(41),
		Gender:     domain.GenderFemale,
		AssignedTo: []int64{},
	})
	require.NoError(t, err)
	detail, err = f.patients.GetPatientDetail(ctx, patient.ID)
	require.NoError(t, err)
	assert.Empty(t, detail.Staff)
}

func TestEditPatient_InvalidLeavesRecordUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	patient := f.createPatient(t, "Jo", 40)

	_, err := f.patients.EditPatient(ctx, patient.ID, PatientInput{Name: "Jo", Age: intPtr(-5), Gender: domain.GenderFemale})
	fieldErrors(t, err)

	stored, err := f.store.Repos().Patients.GetByID(ctx, patient.ID)
	require.NoError(t, err)
	assert.Equal(t, 40, stored.Age)
}

func TestEditPatient_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.patients.EditPatient(context.Background(), 77, PatientInput{})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestDeletePatient_RemovesFilesAndBlobs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	patient := f.createPatient(t, "Jo", 40)
	file, err := f.files.Upload(ctx, patient.ID, FileUpload{FileName: "scan.pdf", Content: stringReader("%PDF")}, nil)
	require.NoError(t, err)
	require.Equal(t, 1, f.blobs.Len())

	require.NoError(t, f.patients.DeletePatient(ctx, patient.ID))
	assert.Equal(t, 0, f.blobs.Len())

	_, _, err = f.files.Download(ctx, file.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
	_, err = f.patients.GetPatientDetail(ctx, patient.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
	assert.True(t, apperrors.IsCode(f.patients.DeletePatient(ctx, patient.ID), apperrors.CodeNotFound))
}

func TestListPatients_SortedByName(t *testing.T) {
	f := newFixture(t)
	f.createPatient(t, "Zed", 1)
	f.createPatient(t, "Amy", 2)

	patients, err := f.patients.ListPatients(context.Background())
	require.NoError(t, err)
	require.Len(t, patients, 2)
	assert.Equal(t, "Amy", patients[0].Name)
}
