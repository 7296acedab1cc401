package domain

import "time"

// Gender enumerates the accepted patient genders.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// Valid reports whether g is one of the enumerated values.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale:
		return true
	}
	return false
}

// Patient is a person under the clinic's care.
type Patient struct {
	ID             int64
	Name           string
	Age            int
	Gender         Gender
	MedicalHistory string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
