package batch

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, b *BatchRequest) error
	// GetByID loads the batch with its children and derived counts.
	GetByID(ctx context.Context, id uuid.UUID) (*BatchRequest, error)
	// List filters by status (empty string means all) and matches search
	// case-insensitively against batch_number and requester_name.
	List(ctx context.Context, status, search string, limit, offset int) ([]*BatchRequest, int, error)
	UpdateBatch(ctx context.Context, b *BatchRequest) error
	UpdateRequest(ctx context.Context, r *CaseNoteRequest) error
	// NextBatchNumber allocates the next display code for today.
	NextBatchNumber(ctx context.Context) (string, error)
}

// PatientChecker verifies patient references when a batch is created.
type PatientChecker interface {
	PatientExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// MovementRecorder receives an "in" movement for each case note confirmed
// received during verification. Implemented by the tracking service.
type MovementRecorder interface {
	CaseNoteReceived(ctx context.Context, patientID uuid.UUID, actor, details string) error
}

// TxRunner wraps a function in a database transaction. Tests substitute a
// pass-through.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error
