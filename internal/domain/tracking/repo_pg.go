package tracking

import (
	"context"
	"fmt"

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

func (r *repoPG) Insert(ctx context.Context, m *Movement) error {
	m.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO case_note_movement
			(id, patient_id, movement_type, department_id, doctor_id, actor, occurred_at, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID, m.PatientID, m.MovementType, m.DepartmentID, m.DoctorID, m.Actor, m.OccurredAt, m.Details,
	)
	return err
}

func (r *repoPG) Report(ctx context.Context, p ReportParams) ([]*Movement, error) {
	query := `
		SELECT m.id, m.patient_id, pa.mrn, pa.name, m.movement_type,
			m.department_id, COALESCE(d.name, ''), m.doctor_id, COALESCE(doc.name, ''),
			m.actor, m.occurred_at, m.details, m.created_at
		FROM case_note_movement m
		JOIN patient pa ON pa.id = m.patient_id
		LEFT JOIN department d ON d.id = m.department_id
		LEFT JOIN doctor doc ON doc.id = m.doctor_id
		WHERE m.movement_type = $1
		  AND m.occurred_at >= $2
		  AND m.occurred_at < $3`
	args := []interface{}{p.Type, p.StartDate, p.EndDate.AddDate(0, 0, 1)}

	if p.DepartmentID != nil {
		args = append(args, *p.DepartmentID)
		query += fmt.Sprintf(` AND m.department_id = $%d`, len(args))
	}
	if p.DoctorID != nil {
		args = append(args, *p.DoctorID)
		query += fmt.Sprintf(` AND m.doctor_id = $%d`, len(args))
	}
	query += ` ORDER BY m.occurred_at DESC`

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movements []*Movement
	for rows.Next() {
		var m Movement
		err := rows.Scan(
			&m.ID, &m.PatientID, &m.PatientMRN, &m.PatientName, &m.MovementType,
			&m.DepartmentID, &m.DepartmentName, &m.DoctorID, &m.DoctorName,
			&m.Actor, &m.OccurredAt, &m.Details, &m.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		movements = append(movements, &m)
	}
	return movements, rows.Err()
}
