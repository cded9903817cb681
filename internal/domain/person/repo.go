package person

import (
	"context"
)

type Repository interface {
	FindByID(ctx context.Context, id Identity) (*Person, error)
	ExistsByID(ctx context.Context, id Identity) (bool, error)
	Create(ctx context.Context, p *Person) error
	Update(ctx context.Context, p *Person) error
	Delete(ctx context.Context, id Identity) error
	FindByAddress(ctx context.Context, address string) ([]*Person, error)
	List(ctx context.Context) ([]*Person, error)
	Count(ctx context.Context) (int, error)
	// Replace swaps the whole collection, returning the positions of
	// records that repeated an identity and were skipped.
	Replace(ctx context.Context, persons []Person) (map[int]error, error)
}
