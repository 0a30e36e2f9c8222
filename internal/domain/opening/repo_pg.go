package opening

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/casetrack/casetrack/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

// NewRepo returns an opened-case-note repository. The value also satisfies
// RefChecker.
func NewRepo(pool *pgxpool.Pool) *repoPG {
	return &repoPG{pool: pool}
}

type queryable interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const openedColumns = `o.id, o.patient_id, p.mrn, p.name, o.department_id, o.location_id,
	o.doctor_id, o.user_type, o.remarks, o.status, o.opened_by, o.opened_at, o.returned_at,
	o.created_at, o.updated_at`

func (r *repoPG) Create(ctx context.Context, o *OpenedCaseNote) error {
	o.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO opened_case_note
			(id, patient_id, department_id, location_id, doctor_id,
			 user_type, remarks, status, opened_by, opened_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		o.ID, o.PatientID, o.DepartmentID, o.LocationID, o.DoctorID,
		o.UserType, o.Remarks, o.Status, o.OpenedBy, o.OpenedAt,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*OpenedCaseNote, error) {
	var o OpenedCaseNote
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT `+openedColumns+`
		FROM opened_case_note o
		JOIN patient p ON p.id = o.patient_id
		WHERE o.id = $1`, id).
		Scan(
			&o.ID, &o.PatientID, &o.PatientMRN, &o.PatientName, &o.DepartmentID, &o.LocationID,
			&o.DoctorID, &o.UserType, &o.Remarks, &o.Status, &o.OpenedBy, &o.OpenedAt, &o.ReturnedAt,
			&o.CreatedAt, &o.UpdatedAt,
		)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repoPG) Update(ctx context.Context, o *OpenedCaseNote) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE opened_case_note SET
			status = $2, returned_at = $3, remarks = $4, updated_at = NOW()
		WHERE id = $1`,
		o.ID, o.Status, o.ReturnedAt, o.Remarks,
	)
	return err
}

func (r *repoPG) ListActive(ctx context.Context, limit, offset int) ([]*OpenedCaseNote, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM opened_case_note WHERE status = $1`, StatusOpened).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+openedColumns+`
		FROM opened_case_note o
		JOIN patient p ON p.id = o.patient_id
		WHERE o.status = $1
		ORDER BY o.opened_at DESC
		LIMIT $2 OFFSET $3`, StatusOpened, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var notes []*OpenedCaseNote
	for rows.Next() {
		var o OpenedCaseNote
		err := rows.Scan(
			&o.ID, &o.PatientID, &o.PatientMRN, &o.PatientName, &o.DepartmentID, &o.LocationID,
			&o.DoctorID, &o.UserType, &o.Remarks, &o.Status, &o.OpenedBy, &o.OpenedAt, &o.ReturnedAt,
			&o.CreatedAt, &o.UpdatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		notes = append(notes, &o)
	}
	return notes, total, rows.Err()
}

func (r *repoPG) PatientExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM patient WHERE id = $1 AND active)`, id)
}

func (r *repoPG) DepartmentExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM department WHERE id = $1 AND active)`, id)
}

func (r *repoPG) LocationExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM location WHERE id = $1 AND active)`, id)
}

func (r *repoPG) exists(ctx context.Context, query string, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, query, id).Scan(&exists)
	return exists, err
}
