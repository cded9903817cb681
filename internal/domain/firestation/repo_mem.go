package firestation

import (
	"context"

	"github.com/safetynet/safetynet/internal/platform/memstore"
)

type memoryRepo struct {
	store *memstore.Store[AddressKey, FireStation]
}

// NewMemoryRepo returns an empty in-memory Repository. One address maps to
// at most one station record.
func NewMemoryRepo() Repository {
	return &memoryRepo{store: memstore.New(FireStation.Key)}
}

func (r *memoryRepo) FindByAddress(_ context.Context, address string) (*FireStation, error) {
	f, ok := r.store.FindByID(KeyFor(address))
	if !ok {
		return nil, memstore.ErrNotFound
	}
	return &f, nil
}

func (r *memoryRepo) ExistsByAddress(_ context.Context, address string) (bool, error) {
	return r.store.ExistsByID(KeyFor(address)), nil
}

func (r *memoryRepo) Create(_ context.Context, f *FireStation) error {
	return r.store.Insert(*f)
}

func (r *memoryRepo) Update(_ context.Context, f *FireStation) error {
	return r.store.Update(*f)
}

func (r *memoryRepo) DeleteByAddress(_ context.Context, address string) error {
	return r.store.Delete(KeyFor(address))
}

func (r *memoryRepo) FindByStationNumber(_ context.Context, station int) ([]*FireStation, error) {
	return toPtrs(r.store.Filter(func(f FireStation) bool {
		return int(f.Station) == station
	})), nil
}

func (r *memoryRepo) List(_ context.Context) ([]*FireStation, error) {
	return toPtrs(r.store.All()), nil
}

func (r *memoryRepo) Count(_ context.Context) (int, error) {
	return r.store.Len(), nil
}

func (r *memoryRepo) Replace(_ context.Context, stations []FireStation) (map[int]error, error) {
	return r.store.Reset(stations), nil
}

func toPtrs(fs []FireStation) []*FireStation {
	out := make([]*FireStation, len(fs))
	for i := range fs {
		out[i] = &fs[i]
	}
	return out
}
