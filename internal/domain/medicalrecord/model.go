package medicalrecord

import (
	"github.com/safetynet/safetynet/internal/platform/apierror"
)

// MedicalRecord holds the birthdate and medical history of a person. It is
// matched to a person by name only and may exist without one.
type MedicalRecord struct {
	FirstName   string   `json:"firstName" yaml:"firstName"`
	LastName    string   `json:"lastName" yaml:"lastName"`
	Birthdate   string   `json:"birthdate" yaml:"birthdate"`
	Medications []string `json:"medications" yaml:"medications"`
	Allergies   []string `json:"allergies" yaml:"allergies"`
}

// Identity is the natural key of a MedicalRecord, compared exactly.
type Identity struct {
	FirstName string `json:"firstName" query:"firstName"`
	LastName  string `json:"lastName" query:"lastName"`
}

func (m MedicalRecord) Identity() Identity {
	return Identity{FirstName: m.FirstName, LastName: m.LastName}
}

func (id Identity) Validate() error {
	var v apierror.Validator
	v.NotBlank("firstName", id.FirstName, "firstname cannot be blank")
	v.NotBlank("lastName", id.LastName, "lastname cannot be blank")
	return v.Err()
}

// Validate checks required fields. The birthdate format is checked by the
// service, which knows the configured pattern.
func (m *MedicalRecord) Validate() error {
	var v apierror.Validator
	v.NotBlank("firstName", m.FirstName, "firstname cannot be blank")
	v.NotBlank("lastName", m.LastName, "lastname cannot be blank")
	v.NotBlank("birthdate", m.Birthdate, "birthdate cannot be blank")
	return v.Err()
}

// clone copies the list fields and turns nil lists into empty ones so they
// encode as [].
func clone(m MedicalRecord) MedicalRecord {
	m.Medications = append([]string{}, m.Medications...)
	m.Allergies = append([]string{}, m.Allergies...)
	return m
}
