package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient is a registry entry for a person whose case notes are tracked.
// MRN is the hospital's medical record number and is unique.
type Patient struct {
	ID        uuid.UUID `db:"id" json:"id"`
	MRN       string    `db:"mrn" json:"mrn"`
	Name      string    `db:"name" json:"name"`
	NRIC      string    `db:"nric" json:"nric"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Statistics is always computed from the table, never maintained as counters.
type Statistics struct {
	Total             int `json:"total"`
	Active            int `json:"active"`
	Inactive          int `json:"inactive"`
	WithOpenCaseNotes int `json:"with_open_case_notes"`
}

type CreateRequest struct {
	MRN    string `json:"mrn"`
	Name   string `json:"name"`
	NRIC   string `json:"nric"`
	Active *bool  `json:"active,omitempty"`
}
