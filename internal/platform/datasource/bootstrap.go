package datasource

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/safetynet/safetynet/internal/domain/firestation"
	"github.com/safetynet/safetynet/internal/domain/medicalrecord"
	"github.com/safetynet/safetynet/internal/domain/person"
)

// Stores are the repositories a bootstrap fills.
type Stores struct {
	Persons        person.Repository
	FireStations   firestation.Repository
	MedicalRecords medicalrecord.Repository
}

// LoadReport summarizes a bootstrap.
type LoadReport struct {
	Source         string
	Persons        int
	FireStations   int
	MedicalRecords int
	Skipped        []RecordError
	// SourceErr is set when the source could not be read at all; the
	// stores are then empty.
	SourceErr error
}

// Bootstrap replaces the content of stores with what src yields. It never
// fails: when the source is unreadable the stores are emptied and the
// service starts without data. Malformed records and records repeating an
// earlier identity are skipped and logged.
func Bootstrap(ctx context.Context, src Source, stores Stores, logger zerolog.Logger) *LoadReport {
	report := &LoadReport{Source: src.Describe()}

	ds, err := src.Load(ctx)
	if err != nil {
		logger.Error().Err(err).Str("source", report.Source).Msg("bulk data unavailable, starting empty")
		report.SourceErr = err
		ds = &Dataset{}
	}
	report.Skipped = append(report.Skipped, ds.Problems...)

	rejected, err := stores.Persons.Replace(ctx, ds.Persons)
	if err != nil {
		report.SourceErr = fmt.Errorf("replace persons: %w", err)
	}
	report.Skipped = append(report.Skipped, rejectedRecords(CollectionPersons, rejected, ds.personsAt)...)
	report.Persons = len(ds.Persons) - len(rejected)

	rejected, err = stores.FireStations.Replace(ctx, ds.FireStations)
	if err != nil {
		report.SourceErr = fmt.Errorf("replace fire stations: %w", err)
	}
	report.Skipped = append(report.Skipped, rejectedRecords(CollectionFireStations, rejected, ds.stationsAt)...)
	report.FireStations = len(ds.FireStations) - len(rejected)

	rejected, err = stores.MedicalRecords.Replace(ctx, ds.MedicalRecords)
	if err != nil {
		report.SourceErr = fmt.Errorf("replace medical records: %w", err)
	}
	report.Skipped = append(report.Skipped, rejectedRecords(CollectionMedicalRecords, rejected, ds.recordsAt)...)
	report.MedicalRecords = len(ds.MedicalRecords) - len(rejected)

	for _, skipped := range report.Skipped {
		logger.Warn().
			Str("collection", skipped.Collection).
			Int("index", skipped.Index).
			Err(skipped.Err).
			Msg("skipped bulk record")
	}
	logger.Info().
		Str("source", report.Source).
		Int("persons", report.Persons).
		Int("fire_stations", report.FireStations).
		Int("medical_records", report.MedicalRecords).
		Int("skipped", len(report.Skipped)).
		Msg("bulk data loaded")

	return report
}

// rejectedRecords turns the positions refused by a Replace into record
// errors carrying source positions, in source order.
func rejectedRecords(collection string, rejected map[int]error, at []int) []RecordError {
	out := make([]RecordError, 0, len(rejected))
	for i, err := range rejected {
		out = append(out, RecordError{Collection: collection, Index: sourceIndex(at, i), Err: err})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Index < out[b].Index })
	return out
}
