package opening

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, o *OpenedCaseNote) error
	GetByID(ctx context.Context, id uuid.UUID) (*OpenedCaseNote, error)
	Update(ctx context.Context, o *OpenedCaseNote) error
	// ListActive returns notes still out of filing.
	ListActive(ctx context.Context, limit, offset int) ([]*OpenedCaseNote, int, error)
}

// RefChecker validates references on open. Satisfied by the pg repository.
type RefChecker interface {
	PatientExists(ctx context.Context, id uuid.UUID) (bool, error)
	DepartmentExists(ctx context.Context, id uuid.UUID) (bool, error)
	LocationExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// MovementRecorder receives an "out" movement on open and an "in" movement
// when the note comes back.
type MovementRecorder interface {
	CaseNoteTakenOut(ctx context.Context, patientID, departmentID uuid.UUID, doctorID *uuid.UUID, actor, details string) error
	CaseNoteBroughtBack(ctx context.Context, patientID, departmentID uuid.UUID, doctorID *uuid.UUID, actor, details string) error
}

// TxRunner runs fn inside a database transaction.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error
