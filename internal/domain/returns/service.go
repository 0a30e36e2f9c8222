package returns

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo     Repository
	recorder MovementRecorder
	inTx     TxRunner
}

func NewService(repo Repository, recorder MovementRecorder, inTx TxRunner) *Service {
	if inTx == nil {
		inTx = func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(ctx)
		}
	}
	return &Service{repo: repo, recorder: recorder, inTx: inTx}
}

// Submit registers a returned case note pending verification.
func (s *Service) Submit(ctx context.Context, returnedBy uuid.UUID, returnedByName string, req SubmitRequest) (*ReturnedCaseNote, error) {
	if req.PatientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	if req.DepartmentID == uuid.Nil {
		return nil, fmt.Errorf("department_id is required")
	}

	n := &ReturnedCaseNote{
		PatientID:      req.PatientID,
		DepartmentID:   req.DepartmentID,
		DoctorID:       req.DoctorID,
		ReturnedAt:     time.Now(),
		ReturnedByID:   returnedBy,
		ReturnedByName: returnedByName,
		ReturnNotes:    strings.TrimSpace(req.ReturnNotes),
		Status:         StatusPendingVerification,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// Submissions groups pending notes by the user who returned them. The group
// timestamp is the latest return in the group; ordering is newest first.
func (s *Service) Submissions(ctx context.Context) ([]*Submission, error) {
	notes, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, err
	}

	byUser := make(map[uuid.UUID]*Submission)
	for _, n := range notes {
		sub, ok := byUser[n.ReturnedByID]
		if !ok {
			sub = &Submission{
				ReturnedByID:   n.ReturnedByID,
				ReturnedByName: n.ReturnedByName,
				ReturnedAt:     n.ReturnedAt,
			}
			byUser[n.ReturnedByID] = sub
		}
		if n.ReturnedAt.After(sub.ReturnedAt) {
			sub.ReturnedAt = n.ReturnedAt
		}
		sub.CaseNotes = append(sub.CaseNotes, n)
		sub.TotalCount++
	}

	subs := make([]*Submission, 0, len(byUser))
	for _, sub := range byUser {
		subs = append(subs, sub)
	}
	sort.Slice(subs, func(i, j int) bool {
		return subs[i].ReturnedAt.After(subs[j].ReturnedAt)
	})
	return subs, nil
}

// Verify applies a verify or reject decision to the selected notes only;
// unselected notes in the same submission stay pending. Rejection requires a
// reason. Returns the refreshed submission set.
func (s *Service) Verify(ctx context.Context, verifier uuid.UUID, verifierName string, req VerifyRequest) ([]*Submission, error) {
	if len(req.CaseNoteIDs) == 0 {
		return nil, fmt.Errorf("case_note_ids is required")
	}

	var target string
	switch req.Action {
	case ActionVerify:
		target = StatusVerified
		if strings.TrimSpace(req.RejectionReason) != "" {
			return nil, fmt.Errorf("rejection_reason is only valid when rejecting")
		}
	case ActionReject:
		target = StatusRejected
		if strings.TrimSpace(req.RejectionReason) == "" {
			return nil, fmt.Errorf("rejection_reason is required when rejecting")
		}
	default:
		return nil, fmt.Errorf("action must be verify or reject")
	}

	// The same id may be submitted twice (double-tapped checkbox); collapse
	// duplicates before the lookup so the count check stays honest.
	ids := make([]uuid.UUID, 0, len(req.CaseNoteIDs))
	seen := make(map[uuid.UUID]bool, len(req.CaseNoteIDs))
	for _, id := range req.CaseNoteIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}

	err := s.inTx(ctx, func(ctx context.Context) error {
		notes, err := s.repo.GetByIDs(ctx, ids)
		if err != nil {
			return err
		}
		if len(notes) != len(ids) {
			return fmt.Errorf("one or more case notes not found")
		}

		now := time.Now()
		for _, n := range notes {
			if n.Status != StatusPendingVerification {
				return fmt.Errorf("case note %s is not pending verification", n.ID)
			}
			n.Status = target
			n.VerifiedBy = &verifier
			n.VerifiedAt = &now
			n.VerificationNotes = strings.TrimSpace(req.VerificationNotes)
			n.RejectionReason = strings.TrimSpace(req.RejectionReason)

			// Record the movement before persisting the decision so both
			// roll back together if either fails.
			if target == StatusVerified && s.recorder != nil {
				detail := fmt.Sprintf("return by %s verified", n.ReturnedByName)
				err := s.recorder.CaseNoteReturnVerified(ctx, n.PatientID, n.DepartmentID, n.DoctorID, verifierName, detail)
				if err != nil {
					return fmt.Errorf("record movement: %w", err)
				}
			}
			if err := s.repo.Update(ctx, n); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Submissions(ctx)
}
