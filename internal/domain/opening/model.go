package opening

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusOpened   = "opened"
	StatusReturned = "returned"
)

// ValidUserTypes enumerates who may take a case note out.
var ValidUserTypes = map[string]bool{
	"ot_staff":      true,
	"ed_staff":      true,
	"medical_staff": true,
	"icu_staff":     true,
}

// OpenedCaseNote tracks a physical case note that has left filing. Remarks
// carries the free-text name of the staff member holding it.
type OpenedCaseNote struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	PatientID    uuid.UUID  `db:"patient_id" json:"patient_id"`
	PatientMRN   string     `db:"patient_mrn" json:"patient_mrn"`
	PatientName  string     `db:"patient_name" json:"patient_name"`
	DepartmentID uuid.UUID  `db:"department_id" json:"department_id"`
	LocationID   uuid.UUID  `db:"location_id" json:"location_id"`
	DoctorID     *uuid.UUID `db:"doctor_id" json:"doctor_id,omitempty"`
	UserType     string     `db:"user_type" json:"user_type"`
	Remarks      string     `db:"remarks" json:"remarks,omitempty"`
	Status       string     `db:"status" json:"status"`
	OpenedBy     uuid.UUID  `db:"opened_by" json:"opened_by"`
	OpenedAt     time.Time  `db:"opened_at" json:"opened_at"`
	ReturnedAt   *time.Time `db:"returned_at" json:"returned_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

type OpenRequest struct {
	PatientID    uuid.UUID  `json:"patient_id"`
	DepartmentID uuid.UUID  `json:"department_id"`
	LocationID   uuid.UUID  `json:"location_id"`
	DoctorID     *uuid.UUID `json:"doctor_id,omitempty"`
	UserType     string     `json:"user_type"`
	Remarks      string     `json:"remarks"`
}
