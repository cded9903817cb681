package medicalrecord

import (
	"context"

	"github.com/safetynet/safetynet/internal/platform/memstore"
)

type memoryRepo struct {
	store *memstore.Store[Identity, MedicalRecord]
}

// NewMemoryRepo returns an empty in-memory Repository. Stored records never
// share their medication or allergy slices with callers.
func NewMemoryRepo() Repository {
	return &memoryRepo{
		store: memstore.New(MedicalRecord.Identity, memstore.WithClone[Identity](clone)),
	}
}

func (r *memoryRepo) FindByID(_ context.Context, id Identity) (*MedicalRecord, error) {
	m, ok := r.store.FindByID(id)
	if !ok {
		return nil, memstore.ErrNotFound
	}
	return &m, nil
}

func (r *memoryRepo) ExistsByID(_ context.Context, id Identity) (bool, error) {
	return r.store.ExistsByID(id), nil
}

func (r *memoryRepo) Create(_ context.Context, m *MedicalRecord) error {
	return r.store.Insert(*m)
}

func (r *memoryRepo) Update(_ context.Context, m *MedicalRecord) error {
	return r.store.Update(*m)
}

func (r *memoryRepo) Delete(_ context.Context, id Identity) error {
	return r.store.Delete(id)
}

func (r *memoryRepo) List(_ context.Context) ([]*MedicalRecord, error) {
	all := r.store.All()
	out := make([]*MedicalRecord, len(all))
	for i := range all {
		out[i] = &all[i]
	}
	return out, nil
}

func (r *memoryRepo) Count(_ context.Context) (int, error) {
	return r.store.Len(), nil
}

func (r *memoryRepo) Replace(_ context.Context, records []MedicalRecord) (map[int]error, error) {
	return r.store.Reset(records), nil
}
