package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByMRN(ctx context.Context, mrn string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	// Search matches mrn or name case-insensitively; empty search lists all.
	Search(ctx context.Context, search string, limit, offset int) ([]*Patient, int, error)
	Statistics(ctx context.Context) (*Statistics, error)
}
