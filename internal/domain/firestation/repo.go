package firestation

import (
	"context"
)

type Repository interface {
	FindByAddress(ctx context.Context, address string) (*FireStation, error)
	ExistsByAddress(ctx context.Context, address string) (bool, error)
	Create(ctx context.Context, f *FireStation) error
	Update(ctx context.Context, f *FireStation) error
	DeleteByAddress(ctx context.Context, address string) error
	FindByStationNumber(ctx context.Context, station int) ([]*FireStation, error)
	List(ctx context.Context) ([]*FireStation, error)
	Count(ctx context.Context) (int, error)
	Replace(ctx context.Context, stations []FireStation) (map[int]error, error)
}
