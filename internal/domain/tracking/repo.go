package tracking

import (
	"context"
)

type Repository interface {
	Insert(ctx context.Context, m *Movement) error
	// Report returns movements of the given type inside the date range,
	// optionally narrowed by department and doctor.
	Report(ctx context.Context, p ReportParams) ([]*Movement, error)
}
