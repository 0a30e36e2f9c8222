package opening

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrAlreadyReturned is returned when a note in the returned state is
// returned again; the opened -> returned transition is terminal.
var ErrAlreadyReturned = errors.New("case note has already been returned")

type Service struct {
	repo     Repository
	refs     RefChecker
	recorder MovementRecorder
	inTx     TxRunner
}

// NewService creates the opening service. recorder may be nil (movements are
// then not recorded); inTx may be nil (operations run without a transaction).
func NewService(repo Repository, refs RefChecker, recorder MovementRecorder, inTx TxRunner) *Service {
	if inTx == nil {
		inTx = func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(ctx)
		}
	}
	return &Service{repo: repo, refs: refs, recorder: recorder, inTx: inTx}
}

// Open records a case note leaving filing and emits an "out" movement.
func (s *Service) Open(ctx context.Context, openedBy uuid.UUID, actorName string, req OpenRequest) (*OpenedCaseNote, error) {
	if !ValidUserTypes[req.UserType] {
		return nil, fmt.Errorf("invalid user_type %q", req.UserType)
	}
	if err := s.checkRef(ctx, "patient", req.PatientID, s.refs.PatientExists); err != nil {
		return nil, err
	}
	if err := s.checkRef(ctx, "department", req.DepartmentID, s.refs.DepartmentExists); err != nil {
		return nil, err
	}
	if err := s.checkRef(ctx, "location", req.LocationID, s.refs.LocationExists); err != nil {
		return nil, err
	}

	o := &OpenedCaseNote{
		PatientID:    req.PatientID,
		DepartmentID: req.DepartmentID,
		LocationID:   req.LocationID,
		DoctorID:     req.DoctorID,
		UserType:     req.UserType,
		Remarks:      strings.TrimSpace(req.Remarks),
		Status:       StatusOpened,
		OpenedBy:     openedBy,
		OpenedAt:     time.Now(),
	}
	err := s.inTx(ctx, func(ctx context.Context) error {
		if s.recorder != nil {
			detail := fmt.Sprintf("taken out by %s", o.UserType)
			if err := s.recorder.CaseNoteTakenOut(ctx, o.PatientID, o.DepartmentID, o.DoctorID, actorName, detail); err != nil {
				return fmt.Errorf("record movement: %w", err)
			}
		}
		return s.repo.Create(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) ListActive(ctx context.Context, limit, offset int) ([]*OpenedCaseNote, int, error) {
	return s.repo.ListActive(ctx, limit, offset)
}

// Return marks a note as back in filing. The transition is terminal; a note
// already returned cannot be returned again.
func (s *Service) Return(ctx context.Context, id uuid.UUID, actorName string) (*OpenedCaseNote, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("opened case note not found")
	}
	if o.Status == StatusReturned {
		return nil, ErrAlreadyReturned
	}

	now := time.Now()
	o.Status = StatusReturned
	o.ReturnedAt = &now
	err = s.inTx(ctx, func(ctx context.Context) error {
		if s.recorder != nil {
			if err := s.recorder.CaseNoteBroughtBack(ctx, o.PatientID, o.DepartmentID, o.DoctorID, actorName, "return received"); err != nil {
				return fmt.Errorf("record movement: %w", err)
			}
		}
		return s.repo.Update(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) checkRef(ctx context.Context, kind string, id uuid.UUID, check func(context.Context, uuid.UUID) (bool, error)) error {
	if id == uuid.Nil {
		return fmt.Errorf("%s_id is required", kind)
	}
	ok, err := check(ctx, id)
	if err != nil {
		return fmt.Errorf("check %s: %w", kind, err)
	}
	if !ok {
		return fmt.Errorf("%s %s does not exist", kind, id)
	}
	return nil
}
