package batch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotVerifiable   = errors.New("batch is not eligible for verification")
	ErrAlreadyReviewed = errors.New("case note request has already been reviewed")
)

type Service struct {
	repo     Repository
	patients PatientChecker
	recorder MovementRecorder
	inTx     TxRunner
}

// NewService creates the batch service. recorder may be nil (movements are
// then not recorded); inTx may be nil (operations run without a transaction).
func NewService(repo Repository, patients PatientChecker, recorder MovementRecorder, inTx TxRunner) *Service {
	if inTx == nil {
		inTx = func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(ctx)
		}
	}
	return &Service{repo: repo, patients: patients, recorder: recorder, inTx: inTx}
}

// Create opens a batch of pending case-note requests, one per patient.
func (s *Service) Create(ctx context.Context, requestedBy uuid.UUID, requesterName string, req CreateRequest) (*BatchRequest, error) {
	if len(req.PatientIDs) == 0 {
		return nil, fmt.Errorf("at least one patient is required")
	}

	seen := make(map[uuid.UUID]bool, len(req.PatientIDs))
	for _, pid := range req.PatientIDs {
		if seen[pid] {
			return nil, fmt.Errorf("duplicate patient %s in batch", pid)
		}
		seen[pid] = true

		ok, err := s.patients.PatientExists(ctx, pid)
		if err != nil {
			return nil, fmt.Errorf("check patient: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("patient %s does not exist", pid)
		}
	}

	var b *BatchRequest
	err := s.inTx(ctx, func(ctx context.Context) error {
		number, err := s.repo.NextBatchNumber(ctx)
		if err != nil {
			return fmt.Errorf("allocate batch number: %w", err)
		}

		b = &BatchRequest{
			BatchNumber:   number,
			Status:        StatusPending,
			RequestedBy:   requestedBy,
			RequesterName: requesterName,
		}
		for _, pid := range req.PatientIDs {
			b.Requests = append(b.Requests, &CaseNoteRequest{
				PatientID: pid,
				Status:    StatusPending,
			})
		}
		return s.repo.Create(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	b.Recount()
	return b, nil
}

// List returns batches matching the status filter and search term. Status
// "all" (or empty) bypasses the filter.
func (s *Service) List(ctx context.Context, status, search string, limit, offset int) ([]*BatchRequest, int, error) {
	if status == "all" {
		status = ""
	}
	return s.repo.List(ctx, status, strings.TrimSpace(search), limit, offset)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*BatchRequest, error) {
	return s.repo.GetByID(ctx, id)
}

// Review approves or rejects a single case-note request and rolls the batch
// status up from its children.
func (s *Service) Review(ctx context.Context, batchID, requestID, reviewer uuid.UUID, req ReviewRequest) (*BatchRequest, error) {
	if req.Action != StatusApproved && req.Action != "approve" &&
		req.Action != StatusRejected && req.Action != "reject" {
		return nil, fmt.Errorf("action must be approve or reject")
	}
	target := StatusApproved
	if req.Action == "reject" || req.Action == StatusRejected {
		target = StatusRejected
	}

	var b *BatchRequest
	err := s.inTx(ctx, func(ctx context.Context) error {
		var err error
		b, err = s.repo.GetByID(ctx, batchID)
		if err != nil {
			return fmt.Errorf("batch not found")
		}

		var child *CaseNoteRequest
		for _, r := range b.Requests {
			if r.ID == requestID {
				child = r
				break
			}
		}
		if child == nil {
			return fmt.Errorf("case note request not found in batch")
		}
		if child.Status != StatusPending {
			return ErrAlreadyReviewed
		}

		now := time.Now()
		child.Status = target
		child.ReviewedBy = &reviewer
		child.ReviewedAt = &now
		child.Remarks = strings.TrimSpace(req.Remarks)
		if err := s.repo.UpdateRequest(ctx, child); err != nil {
			return err
		}

		b.Recount()
		return s.repo.UpdateBatch(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Verify confirms physical receipt of approved case notes. Only ids in the
// request are touched; when every approved note has been received the batch
// is marked verified. Each newly received note records an "in" movement.
func (s *Service) Verify(ctx context.Context, batchID, verifier uuid.UUID, verifierName string, req VerifyRequest) (*BatchRequest, error) {
	if len(req.ReceivedIDs) == 0 {
		return nil, fmt.Errorf("received_ids is required")
	}

	var b *BatchRequest
	var received []*CaseNoteRequest
	err := s.inTx(ctx, func(ctx context.Context) error {
		var err error
		b, err = s.repo.GetByID(ctx, batchID)
		if err != nil {
			return fmt.Errorf("batch not found")
		}
		if !b.CanVerify() {
			return ErrNotVerifiable
		}

		byID := make(map[uuid.UUID]*CaseNoteRequest, len(b.Requests))
		for _, r := range b.Requests {
			byID[r.ID] = r
		}

		now := time.Now()
		for _, id := range req.ReceivedIDs {
			child, ok := byID[id]
			if !ok {
				return fmt.Errorf("case note request %s not found in batch", id)
			}
			if child.Status != StatusApproved {
				return fmt.Errorf("case note request %s is not approved", id)
			}
			if child.Received {
				continue
			}
			child.Received = true
			child.ReceivedAt = &now
			if err := s.repo.UpdateRequest(ctx, child); err != nil {
				return err
			}
			received = append(received, child)
		}

		receivedCount := 0
		for _, r := range b.Requests {
			if r.Received {
				receivedCount++
			}
		}
		if receivedCount > b.ApprovedCount {
			return fmt.Errorf("received count exceeds approved count")
		}

		b.ReceivedCount = receivedCount
		if notes := strings.TrimSpace(req.VerificationNotes); notes != "" {
			b.VerificationNotes = notes
		}
		if b.ReceivedCount == b.ApprovedCount {
			b.IsVerified = true
			b.VerifiedAt = &now
			b.VerifiedBy = &verifier
		}

		// Movements are written in the same transaction so a failure here
		// rolls the receipt back with it.
		if s.recorder != nil {
			for _, child := range received {
				detail := fmt.Sprintf("received via batch %s", b.BatchNumber)
				if err := s.recorder.CaseNoteReceived(ctx, child.PatientID, verifierName, detail); err != nil {
					return fmt.Errorf("record movement: %w", err)
				}
			}
		}
		return s.repo.UpdateBatch(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}
