package firestation

import (
	"context"
	"errors"
	"fmt"

	"github.com/safetynet/safetynet/internal/platform/memstore"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetFireStation(ctx context.Context, address string) (*FireStation, error) {
	f, err := s.repo.FindByAddress(ctx, address)
	if err != nil {
		return nil, describe(err, address)
	}
	return f, nil
}

func (s *Service) CreateFireStation(ctx context.Context, f *FireStation) error {
	if err := s.repo.Create(ctx, f); err != nil {
		return describe(err, f.Address)
	}
	return nil
}

// UpdateFireStation reassigns the address of f to f's station number.
func (s *Service) UpdateFireStation(ctx context.Context, f *FireStation) error {
	if err := s.repo.Update(ctx, f); err != nil {
		return describe(err, f.Address)
	}
	return nil
}

func (s *Service) DeleteFireStation(ctx context.Context, address string) error {
	if err := s.repo.DeleteByAddress(ctx, address); err != nil {
		return describe(err, address)
	}
	return nil
}

func (s *Service) ListByStationNumber(ctx context.Context, station int) ([]*FireStation, error) {
	return s.repo.FindByStationNumber(ctx, station)
}

func (s *Service) ListFireStations(ctx context.Context) ([]*FireStation, error) {
	return s.repo.List(ctx)
}

func describe(err error, address string) error {
	switch {
	case errors.Is(err, memstore.ErrAlreadyExists):
		return fmt.Errorf("%w: fire station with address [%s]", memstore.ErrAlreadyExists, address)
	case errors.Is(err, memstore.ErrNotFound):
		return fmt.Errorf("%w: fire station with address [%s]", memstore.ErrNotFound, address)
	}
	return err
}
