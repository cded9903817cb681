package person

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

func (s *Service) GetPerson(ctx context.Context, id Identity) (*Person, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, describe(err, id)
	}
	return p, nil
}

func (s *Service) CreatePerson(ctx context.Context, p *Person) error {
	if err := s.repo.Create(ctx, p); err != nil {
		return describe(err, p.Identity())
	}
	return nil
}

// UpdatePerson replaces every field of the person sharing p's identity.
func (s *Service) UpdatePerson(ctx context.Context, p *Person) error {
	if err := s.repo.Update(ctx, p); err != nil {
		return describe(err, p.Identity())
	}
	return nil
}

func (s *Service) DeletePerson(ctx context.Context, id Identity) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return describe(err, id)
	}
	return nil
}

func (s *Service) ListPersons(ctx context.Context) ([]*Person, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListPersonsByAddress(ctx context.Context, address string) ([]*Person, error) {
	return s.repo.FindByAddress(ctx, address)
}

func describe(err error, id Identity) error {
	switch {
	case errors.Is(err, memstore.ErrAlreadyExists):
		return fmt.Errorf("%w: person with first name [%s] and last name [%s]", memstore.ErrAlreadyExists, id.FirstName, id.LastName)
	case errors.Is(err, memstore.ErrNotFound):
		return fmt.Errorf("%w: person with first name [%s] and last name [%s]", memstore.ErrNotFound, id.FirstName, id.LastName)
	}
	return err
}
