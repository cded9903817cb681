package medicalrecord

import (
	"context"
	"errors"
	"fmt"

	"github.com/safetynet/safetynet/internal/platform/agecalc"
	"github.com/safetynet/safetynet/internal/platform/memstore"
)

type Service struct {
	repo Repository
	ages *agecalc.Calculator
}

// NewService returns a Service that checks birthdates against the pattern
// of ages before storing them.
func NewService(repo Repository, ages *agecalc.Calculator) *Service {
	return &Service{repo: repo, ages: ages}
}

func (s *Service) GetMedicalRecord(ctx context.Context, id Identity) (*MedicalRecord, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, describe(err, id)
	}
	return m, nil
}

func (s *Service) CreateMedicalRecord(ctx context.Context, m *MedicalRecord) error {
	if err := s.ages.Validate(m.Birthdate); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return describe(err, m.Identity())
	}
	return nil
}

func (s *Service) UpdateMedicalRecord(ctx context.Context, m *MedicalRecord) error {
	if err := s.ages.Validate(m.Birthdate); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, m); err != nil {
		return describe(err, m.Identity())
	}
	return nil
}

func (s *Service) DeleteMedicalRecord(ctx context.Context, id Identity) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return describe(err, id)
	}
	return nil
}

func (s *Service) ListMedicalRecords(ctx context.Context) ([]*MedicalRecord, error) {
	return s.repo.List(ctx)
}

func describe(err error, id Identity) error {
	switch {
	case errors.Is(err, memstore.ErrAlreadyExists):
		return fmt.Errorf("%w: medical record for first name [%s] and last name [%s]", memstore.ErrAlreadyExists, id.FirstName, id.LastName)
	case errors.Is(err, memstore.ErrNotFound):
		return fmt.Errorf("%w: medical record for first name [%s] and last name [%s]", memstore.ErrNotFound, id.FirstName, id.LastName)
	}
	return err
}
