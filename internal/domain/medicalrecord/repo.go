package medicalrecord

import (
	"context"
)

type Repository interface {
	FindByID(ctx context.Context, id Identity) (*MedicalRecord, error)
	ExistsByID(ctx context.Context, id Identity) (bool, error)
	Create(ctx context.Context, m *MedicalRecord) error
	Update(ctx context.Context, m *MedicalRecord) error
	Delete(ctx context.Context, id Identity) error
	List(ctx context.Context) ([]*MedicalRecord, error)
	Count(ctx context.Context) (int, error)
	Replace(ctx context.Context, records []MedicalRecord) (map[int]error, error)
}
