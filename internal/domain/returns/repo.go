package returns

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, n *ReturnedCaseNote) error
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*ReturnedCaseNote, error)
	Update(ctx context.Context, n *ReturnedCaseNote) error
	// ListPending returns all notes still awaiting verification.
	ListPending(ctx context.Context) ([]*ReturnedCaseNote, error)
}

// MovementRecorder receives an "in" movement for each verified return.
type MovementRecorder interface {
	CaseNoteReturnVerified(ctx context.Context, patientID, departmentID uuid.UUID, doctorID *uuid.UUID, actor, details string) error
}

type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error
