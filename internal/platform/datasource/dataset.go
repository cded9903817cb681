// Package datasource loads the initial persons, fire stations and medical
// records from a bulk source and installs them into the repositories.
package datasource

import (
	"context"
	"errors"
	"fmt"

	"github.com/safetynet/safetynet/internal/domain/firestation"
	"github.com/safetynet/safetynet/internal/domain/medicalrecord"
	"github.com/safetynet/safetynet/internal/domain/person"
)

// Collection names used in bulk files and in RecordError.
const (
	CollectionPersons        = "persons"
	CollectionFireStations   = "firestations"
	CollectionMedicalRecords = "medicalrecords"
)

// Dataset is the decoded content of a bulk source. Problems lists records
// that could not be decoded or lacked their identity; they are not part of
// the three slices.
type Dataset struct {
	Persons        []person.Person
	FireStations   []firestation.FireStation
	MedicalRecords []medicalrecord.MedicalRecord
	Problems       []RecordError

	// source positions of the decoded records, parallel to the slices above
	personsAt, stationsAt, recordsAt []int
}

// Source produces a Dataset.
type Source interface {
	Load(ctx context.Context) (*Dataset, error)
	// Describe names the source in logs.
	Describe() string
}

// RecordError identifies one rejected record.
type RecordError struct {
	Collection string
	Index      int
	Err        error
}

func (e RecordError) Error() string {
	return fmt.Sprintf("%s[%d]: %v", e.Collection, e.Index, e.Err)
}

func (e RecordError) Unwrap() error { return e.Err }

// Err joins every problem, or returns nil when the dataset is clean.
func (d *Dataset) Err() error {
	errs := make([]error, len(d.Problems))
	for i, p := range d.Problems {
		errs[i] = p
	}
	return errors.Join(errs...)
}

// rawRecord decodes one undecoded record into v.
type rawRecord func(v any) error

// decodeRecords decodes every raw record of a collection into T and checks
// it with validate. Failures are appended to problems and the record is
// dropped.
func decodeRecords[T any](collection string, raws []rawRecord, validate func(*T) error, problems *[]RecordError) ([]T, []int) {
	out := make([]T, 0, len(raws))
	at := make([]int, 0, len(raws))
	for i, raw := range raws {
		var v T
		if err := raw(&v); err != nil {
			*problems = append(*problems, RecordError{Collection: collection, Index: i, Err: err})
			continue
		}
		if err := validate(&v); err != nil {
			*problems = append(*problems, RecordError{Collection: collection, Index: i, Err: err})
			continue
		}
		out = append(out, v)
		at = append(at, i)
	}
	return out, at
}

// Bulk records only need an identity. Birthdates are kept as found so the
// views can report them.
func validatePerson(p *person.Person) error {
	return p.Identity().Validate()
}

func validateFireStation(f *firestation.FireStation) error {
	return f.Validate()
}

func validateMedicalRecord(m *medicalrecord.MedicalRecord) error {
	return m.Identity().Validate()
}

func newDataset(persons, stations, records []rawRecord) *Dataset {
	d := &Dataset{}
	d.Persons, d.personsAt = decodeRecords(CollectionPersons, persons, validatePerson, &d.Problems)
	d.FireStations, d.stationsAt = decodeRecords(CollectionFireStations, stations, validateFireStation, &d.Problems)
	d.MedicalRecords, d.recordsAt = decodeRecords(CollectionMedicalRecords, records, validateMedicalRecord, &d.Problems)
	return d
}

// sourceIndex maps position i of a decoded slice back to the source.
func sourceIndex(at []int, i int) int {
	if i < len(at) {
		return at[i]
	}
	return i
}
