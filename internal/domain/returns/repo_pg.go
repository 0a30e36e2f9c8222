package returns

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

func NewRepo(pool *pgxpool.Pool) Repository {
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

const returnedColumns = `n.id, n.patient_id, p.mrn, p.name, n.department_id, n.doctor_id,
	n.returned_at, n.returned_by_id, n.returned_by_name, n.return_notes, n.status,
	n.verified_by, n.verified_at, n.verification_notes, n.rejection_reason,
	n.created_at, n.updated_at`

func (r *repoPG) Create(ctx context.Context, n *ReturnedCaseNote) error {
	n.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO returned_case_note
			(id, patient_id, department_id, doctor_id, returned_at,
			 returned_by_id, returned_by_name, return_notes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		n.ID, n.PatientID, n.DepartmentID, n.DoctorID, n.ReturnedAt,
		n.ReturnedByID, n.ReturnedByName, n.ReturnNotes, n.Status,
	)
	return err
}

func (r *repoPG) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*ReturnedCaseNote, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+returnedColumns+`
		FROM returned_case_note n
		JOIN patient p ON p.id = n.patient_id
		WHERE n.id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAll(rows)
}

func (r *repoPG) Update(ctx context.Context, n *ReturnedCaseNote) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE returned_case_note SET
			status = $2, verified_by = $3, verified_at = $4,
			verification_notes = $5, rejection_reason = $6, updated_at = NOW()
		WHERE id = $1`,
		n.ID, n.Status, n.VerifiedBy, n.VerifiedAt, n.VerificationNotes, n.RejectionReason,
	)
	return err
}

func (r *repoPG) ListPending(ctx context.Context) ([]*ReturnedCaseNote, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+returnedColumns+`
		FROM returned_case_note n
		JOIN patient p ON p.id = n.patient_id
		WHERE n.status = $1
		ORDER BY n.returned_at DESC`, StatusPendingVerification)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAll(rows)
}

func scanAll(rows pgx.Rows) ([]*ReturnedCaseNote, error) {
	var notes []*ReturnedCaseNote
	for rows.Next() {
		var n ReturnedCaseNote
		err := rows.Scan(
			&n.ID, &n.PatientID, &n.PatientMRN, &n.PatientName, &n.DepartmentID, &n.DoctorID,
			&n.ReturnedAt, &n.ReturnedByID, &n.ReturnedByName, &n.ReturnNotes, &n.Status,
			&n.VerifiedBy, &n.VerifiedAt, &n.VerificationNotes, &n.RejectionReason,
			&n.CreatedAt, &n.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		notes = append(notes, &n)
	}
	return notes, rows.Err()
}
