package person

import (
	"context"
	"strings"

	"github.com/safetynet/safetynet/internal/platform/memstore"
)

type memoryRepo struct {
	store *memstore.Store[Identity, Person]
}

// NewMemoryRepo returns an empty in-memory Repository.
func NewMemoryRepo() Repository {
	return &memoryRepo{store: memstore.New(Person.Identity)}
}

func (r *memoryRepo) FindByID(_ context.Context, id Identity) (*Person, error) {
	p, ok := r.store.FindByID(id)
	if !ok {
		return nil, memstore.ErrNotFound
	}
	return &p, nil
}

func (r *memoryRepo) ExistsByID(_ context.Context, id Identity) (bool, error) {
	return r.store.ExistsByID(id), nil
}

func (r *memoryRepo) Create(_ context.Context, p *Person) error {
	return r.store.Insert(*p)
}

func (r *memoryRepo) Update(_ context.Context, p *Person) error {
	return r.store.Update(*p)
}

func (r *memoryRepo) Delete(_ context.Context, id Identity) error {
	return r.store.Delete(id)
}

// FindByAddress matches addresses case-insensitively.
func (r *memoryRepo) FindByAddress(_ context.Context, address string) ([]*Person, error) {
	return toPtrs(r.store.Filter(func(p Person) bool {
		return strings.EqualFold(p.Address, address)
	})), nil
}

func (r *memoryRepo) List(_ context.Context) ([]*Person, error) {
	return toPtrs(r.store.All()), nil
}

func (r *memoryRepo) Count(_ context.Context) (int, error) {
	return r.store.Len(), nil
}

func (r *memoryRepo) Replace(_ context.Context, persons []Person) (map[int]error, error) {
	return r.store.Reset(persons), nil
}

func toPtrs(ps []Person) []*Person {
	out := make([]*Person, len(ps))
	for i := range ps {
		out[i] = &ps[i]
	}
	return out
}
