package doctor

import (
	"time"

	"github.com/google/uuid"
)

type Doctor struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	DepartmentID uuid.UUID `db:"department_id" json:"department_id"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Stats is aggregated from the table on every call, never incremented.
type Stats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

type UpsertRequest struct {
	Name         string    `json:"name"`
	DepartmentID uuid.UUID `json:"department_id"`
}

type StatusRequest struct {
	IsActive bool `json:"is_active"`
}
