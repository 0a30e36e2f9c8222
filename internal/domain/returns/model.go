package returns

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPendingVerification = "pending_verification"
	StatusVerified            = "verified"
	StatusRejected            = "rejected"
)

const (
	ActionVerify = "verify"
	ActionReject = "reject"
)

// ReturnedCaseNote is a case note handed back by ward staff, awaiting
// verification by medical records.
type ReturnedCaseNote struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	PatientID         uuid.UUID  `db:"patient_id" json:"patient_id"`
	PatientMRN        string     `db:"patient_mrn" json:"patient_mrn"`
	PatientName       string     `db:"patient_name" json:"patient_name"`
	DepartmentID      uuid.UUID  `db:"department_id" json:"department_id"`
	DoctorID          *uuid.UUID `db:"doctor_id" json:"doctor_id,omitempty"`
	ReturnedAt        time.Time  `db:"returned_at" json:"returned_at"`
	ReturnedByID      uuid.UUID  `db:"returned_by_id" json:"returned_by_id"`
	ReturnedByName    string     `db:"returned_by_name" json:"returned_by_name"`
	ReturnNotes       string     `db:"return_notes" json:"return_notes,omitempty"`
	Status            string     `db:"status" json:"status"`
	VerifiedBy        *uuid.UUID `db:"verified_by" json:"verified_by,omitempty"`
	VerifiedAt        *time.Time `db:"verified_at" json:"verified_at,omitempty"`
	VerificationNotes string     `db:"verification_notes" json:"verification_notes,omitempty"`
	RejectionReason   string     `db:"rejection_reason" json:"rejection_reason,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

// Submission groups a user's pending returned notes into one reviewable unit.
// Grouping is done server-side so every client sees the same shape.
type Submission struct {
	ReturnedByID   uuid.UUID           `json:"returned_by_id"`
	ReturnedByName string              `json:"returned_by_name"`
	ReturnedAt     time.Time           `json:"returned_at"`
	TotalCount     int                 `json:"total_count"`
	CaseNotes      []*ReturnedCaseNote `json:"case_notes"`
}

type SubmitRequest struct {
	PatientID    uuid.UUID  `json:"patient_id"`
	DepartmentID uuid.UUID  `json:"department_id"`
	DoctorID     *uuid.UUID `json:"doctor_id,omitempty"`
	ReturnNotes  string     `json:"return_notes"`
}

type VerifyRequest struct {
	CaseNoteIDs       []uuid.UUID `json:"case_note_ids"`
	Action            string      `json:"action"`
	VerificationNotes string      `json:"verification_notes"`
	RejectionReason   string      `json:"rejection_reason"`
}
