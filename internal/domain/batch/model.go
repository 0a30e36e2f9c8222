package batch

import (
	"time"

	"github.com/google/uuid"
)

// Batch statuses. A batch's status is always derived from its children.
const (
	StatusPending           = "pending"
	StatusApproved          = "approved"
	StatusRejected          = "rejected"
	StatusPartiallyApproved = "partially_approved"
)

// BatchRequest groups case-note requests raised together by one requester.
// The count fields are recomputed from the children on every load and write,
// never stored independently.
type BatchRequest struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	BatchNumber       string     `db:"batch_number" json:"batch_number"`
	Status            string     `db:"status" json:"status"`
	RequestedBy       uuid.UUID  `db:"requested_by" json:"requested_by"`
	RequesterName     string     `db:"requester_name" json:"requester_name"`
	IsVerified        bool       `db:"is_verified" json:"is_verified"`
	ReceivedCount     int        `db:"received_count" json:"received_count"`
	VerifiedAt        *time.Time `db:"verified_at" json:"verified_at,omitempty"`
	VerifiedBy        *uuid.UUID `db:"verified_by" json:"verified_by,omitempty"`
	VerificationNotes string     `db:"verification_notes" json:"verification_notes,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`

	Requests []*CaseNoteRequest `db:"-" json:"requests,omitempty"`

	RequestsCount int `db:"-" json:"requests_count"`
	ApprovedCount int `db:"-" json:"approved_count"`
	RejectedCount int `db:"-" json:"rejected_count"`
	PendingCount  int `db:"-" json:"pending_count"`
}

// CaseNoteRequest is a single patient's case note inside a batch.
type CaseNoteRequest struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	BatchID     uuid.UUID  `db:"batch_id" json:"batch_id"`
	PatientID   uuid.UUID  `db:"patient_id" json:"patient_id"`
	PatientMRN  string     `db:"patient_mrn" json:"patient_mrn"`
	PatientName string     `db:"patient_name" json:"patient_name"`
	Status      string     `db:"status" json:"status"`
	Received    bool       `db:"received" json:"received"`
	ReceivedAt  *time.Time `db:"received_at" json:"received_at,omitempty"`
	ReviewedBy  *uuid.UUID `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time `db:"reviewed_at" json:"reviewed_at,omitempty"`
	Remarks     string     `db:"remarks" json:"remarks,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// Recount derives the count fields and batch status from the children.
// approved + rejected + pending always equals requests_count.
func (b *BatchRequest) Recount() {
	b.RequestsCount = len(b.Requests)
	b.ApprovedCount, b.RejectedCount, b.PendingCount = 0, 0, 0
	for _, r := range b.Requests {
		switch r.Status {
		case StatusApproved:
			b.ApprovedCount++
		case StatusRejected:
			b.RejectedCount++
		default:
			b.PendingCount++
		}
	}
	b.Status = b.rollupStatus()
}

func (b *BatchRequest) rollupStatus() string {
	if b.RequestsCount == 0 || b.PendingCount > 0 {
		return StatusPending
	}
	switch {
	case b.ApprovedCount == b.RequestsCount:
		return StatusApproved
	case b.RejectedCount == b.RequestsCount:
		return StatusRejected
	default:
		return StatusPartiallyApproved
	}
}

// Progress is the percentage of children that have been reviewed. A batch
// with no children reports 0, not NaN.
func (b *BatchRequest) Progress() float64 {
	if b.RequestsCount == 0 {
		return 0
	}
	return float64(b.ApprovedCount+b.RejectedCount) / float64(b.RequestsCount) * 100
}

// CanVerify reports whether the receipt verification workflow may start.
func (b *BatchRequest) CanVerify() bool {
	return b.Status == StatusApproved && !b.IsVerified && b.ApprovedCount > 0
}

type CreateRequest struct {
	PatientIDs []uuid.UUID `json:"patient_ids"`
}

type ReviewRequest struct {
	Action  string `json:"action"` // approve | reject
	Remarks string `json:"remarks"`
}

type VerifyRequest struct {
	ReceivedIDs       []uuid.UUID `json:"received_ids"`
	VerificationNotes string      `json:"verification_notes"`
}
