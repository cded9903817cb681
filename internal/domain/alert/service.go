// Package alert derives the dispatch views that join persons, fire stations
// and medical records.
package alert

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/safetynet/safetynet/internal/domain/firestation"
	"github.com/safetynet/safetynet/internal/domain/medicalrecord"
	"github.com/safetynet/safetynet/internal/domain/person"
	"github.com/safetynet/safetynet/internal/platform/agecalc"
	"github.com/safetynet/safetynet/internal/platform/memstore"
)

// ErrNoChildren means an address has no resident classified as a child,
// including when it has no residents at all.
var ErrNoChildren = errors.New("no children at address")

type PersonFinder interface {
	FindByAddress(ctx context.Context, address string) ([]*person.Person, error)
}

type StationFinder interface {
	FindByStationNumber(ctx context.Context, station int) ([]*firestation.FireStation, error)
}

type RecordFinder interface {
	FindByID(ctx context.Context, id medicalrecord.Identity) (*medicalrecord.MedicalRecord, error)
}

type Service struct {
	persons  PersonFinder
	stations StationFinder
	records  RecordFinder
	ages     *agecalc.Calculator
	adultAge int
	logger   zerolog.Logger
}

func NewService(persons PersonFinder, stations StationFinder, records RecordFinder, ages *agecalc.Calculator, adultAge int, logger zerolog.Logger) *Service {
	return &Service{
		persons:  persons,
		stations: stations,
		records:  records,
		ages:     ages,
		adultAge: adultAge,
		logger:   logger,
	}
}

// CoverageByStation lists every person living at an address served by
// station and counts adults and children among them. An address listed
// twice contributes its residents twice. A person without a medical record
// counts as an adult; one whose birthdate cannot be parsed counts as a child.
func (s *Service) CoverageByStation(ctx context.Context, station int) (*StationCoverage, error) {
	stations, err := s.stations.FindByStationNumber(ctx, station)
	if err != nil {
		return nil, fmt.Errorf("find stations %d: %w", station, err)
	}

	out := &StationCoverage{Persons: []PersonSummary{}}
	asOf := s.ages.Now()
	for _, st := range stations {
		residents, err := s.persons.FindByAddress(ctx, st.Address)
		if err != nil {
			return nil, fmt.Errorf("find persons at %q: %w", st.Address, err)
		}
		for _, p := range residents {
			adult, err := s.isAdult(ctx, p, asOf)
			if err != nil {
				return nil, err
			}
			if adult {
				out.AdultCount++
			} else {
				out.ChildCount++
			}
			out.Persons = append(out.Persons, PersonSummary{
				FirstName: p.FirstName,
				LastName:  p.LastName,
				Address:   p.Address,
				Phone:     p.Phone,
			})
		}
	}
	return out, nil
}

func (s *Service) isAdult(ctx context.Context, p *person.Person, asOf time.Time) (bool, error) {
	rec, err := s.records.FindByID(ctx, medicalrecord.Identity{FirstName: p.FirstName, LastName: p.LastName})
	if errors.Is(err, memstore.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("find medical record: %w", err)
	}
	adult, err := s.ages.IsAdult(rec.Birthdate, asOf, s.adultAge)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("first_name", p.FirstName).
			Str("last_name", p.LastName).
			Msg("unreadable birthdate, counting as child")
		return false, nil
	}
	return adult, nil
}

// HouseholdAtAddress classifies the residents of address that have a medical
// record. Residents aged at most the adult threshold are children. It
// returns ErrNoChildren when no resident is a child, and
// agecalc.ErrInvalidDateFormat when a stored birthdate cannot be parsed.
func (s *Service) HouseholdAtAddress(ctx context.Context, address string) (*HouseholdAlert, error) {
	residents, err := s.persons.FindByAddress(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("find persons at %q: %w", address, err)
	}

	out := &HouseholdAlert{Children: []ChildSummary{}, OtherMembers: []MemberSummary{}}
	asOf := s.ages.Now()
	for _, p := range residents {
		rec, err := s.records.FindByID(ctx, medicalrecord.Identity{FirstName: p.FirstName, LastName: p.LastName})
		if errors.Is(err, memstore.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("find medical record: %w", err)
		}
		age, err := s.ages.Age(rec.Birthdate, asOf)
		if err != nil {
			return nil, fmt.Errorf("birthdate of %s %s: %w", p.FirstName, p.LastName, err)
		}
		if age <= s.adultAge {
			out.Children = append(out.Children, ChildSummary{FirstName: p.FirstName, LastName: p.LastName, Age: age})
		} else {
			out.OtherMembers = append(out.OtherMembers, MemberSummary{FirstName: p.FirstName, LastName: p.LastName})
		}
	}
	if len(out.Children) == 0 {
		return nil, ErrNoChildren
	}
	return out, nil
}
