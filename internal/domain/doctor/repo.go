package doctor

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	// Search matches name case-insensitively; empty search lists all.
	Search(ctx context.Context, search string, limit, offset int) ([]*Doctor, int, error)
	Stats(ctx context.Context) (*Stats, error)
}

// DepartmentChecker verifies a department reference exists. Satisfied by the
// admin department repository.
type DepartmentChecker interface {
	DepartmentExists(ctx context.Context, id uuid.UUID) (bool, error)
}
