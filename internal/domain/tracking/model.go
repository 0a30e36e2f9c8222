package tracking

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Movement types. Each report type selects its own column set.
const (
	TypeIn      = "in"
	TypeOut     = "out"
	TypeFilling = "filling"
)

var validTypes = map[string]bool{
	TypeIn:      true,
	TypeOut:     true,
	TypeFilling: true,
}

// Movement is one physical event in a case note's life: coming back to
// filing (in), leaving it (out), or a loose-sheet filling registration.
type Movement struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	PatientID      uuid.UUID  `db:"patient_id" json:"patient_id"`
	PatientMRN     string     `db:"patient_mrn" json:"patient_mrn"`
	PatientName    string     `db:"patient_name" json:"patient_name"`
	MovementType   string     `db:"movement_type" json:"movement_type"`
	DepartmentID   *uuid.UUID `db:"department_id" json:"department_id,omitempty"`
	DepartmentName string     `db:"department_name" json:"department_name,omitempty"`
	DoctorID       *uuid.UUID `db:"doctor_id" json:"doctor_id,omitempty"`
	DoctorName     string     `db:"doctor_name" json:"doctor_name,omitempty"`
	Actor          string     `db:"actor" json:"actor"`
	OccurredAt     time.Time  `db:"occurred_at" json:"occurred_at"`
	Details        string     `db:"details" json:"details,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// ReportParams filters the tracking report. Both dates are required; the
// doctor filter does not apply to "in" movements.
type ReportParams struct {
	Type         string
	StartDate    time.Time
	EndDate      time.Time
	DepartmentID *uuid.UUID
	DoctorID     *uuid.UUID
}

// Validate checks the report type and date presence.
func (p *ReportParams) Validate() error {
	if !validTypes[p.Type] {
		return fmt.Errorf("type must be one of in, out, filling")
	}
	if p.StartDate.IsZero() || p.EndDate.IsZero() {
		return fmt.Errorf("start_date and end_date are required")
	}
	return nil
}

// Clamp guarantees start <= end. Moving the start past the end drags the end
// forward; moving the end before the start drags the start back.
func (p *ReportParams) Clamp(changed string) {
	if !p.StartDate.After(p.EndDate) {
		return
	}
	if changed == "end_date" {
		p.StartDate = p.EndDate
	} else {
		p.EndDate = p.StartDate
	}
}

type FillingRequest struct {
	PatientID    uuid.UUID  `json:"patient_id"`
	DepartmentID uuid.UUID  `json:"department_id"`
	DoctorID     *uuid.UUID `json:"doctor_id,omitempty"`
	Details      string     `json:"details"`
}
