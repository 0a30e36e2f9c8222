package admin

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/casetrack/casetrack/internal/platform/db"
)

type queryable interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func conn(ctx context.Context, pool *pgxpool.Pool) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}

// -- Departments --

type departmentRepoPG struct {
	pool *pgxpool.Pool
}

func NewDepartmentRepo(pool *pgxpool.Pool) DepartmentRepository {
	return &departmentRepoPG{pool: pool}
}

func (r *departmentRepoPG) Create(ctx context.Context, d *Department) error {
	d.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO department (id, name, code, active)
		VALUES ($1, $2, $3, $4)`,
		d.ID, d.Name, d.Code, d.Active,
	)
	return err
}

func (r *departmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Department, error) {
	var d Department
	err := conn(ctx, r.pool).QueryRow(ctx, `
		SELECT id, name, code, active, created_at, updated_at
		FROM department WHERE id = $1`, id).
		Scan(&d.ID, &d.Name, &d.Code, &d.Active, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *departmentRepoPG) Update(ctx context.Context, d *Department) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE department SET name = $2, code = $3, active = $4, updated_at = NOW()
		WHERE id = $1`,
		d.ID, d.Name, d.Code, d.Active,
	)
	return err
}

func (r *departmentRepoPG) List(ctx context.Context, activeOnly bool) ([]*Department, error) {
	query := `SELECT id, name, code, active, created_at, updated_at FROM department`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY name`

	rows, err := conn(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var departments []*Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Code, &d.Active, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		departments = append(departments, &d)
	}
	return departments, rows.Err()
}

// -- Locations --

type locationRepoPG struct {
	pool *pgxpool.Pool
}

func NewLocationRepo(pool *pgxpool.Pool) LocationRepository {
	return &locationRepoPG{pool: pool}
}

func (r *locationRepoPG) Create(ctx context.Context, l *Location) error {
	l.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO location (id, name, description, active)
		VALUES ($1, $2, $3, $4)`,
		l.ID, l.Name, l.Description, l.Active,
	)
	return err
}

func (r *locationRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Location, error) {
	var l Location
	err := conn(ctx, r.pool).QueryRow(ctx, `
		SELECT id, name, description, active, created_at, updated_at
		FROM location WHERE id = $1`, id).
		Scan(&l.ID, &l.Name, &l.Description, &l.Active, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *locationRepoPG) Update(ctx context.Context, l *Location) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE location SET name = $2, description = $3, active = $4, updated_at = NOW()
		WHERE id = $1`,
		l.ID, l.Name, l.Description, l.Active,
	)
	return err
}

func (r *locationRepoPG) List(ctx context.Context, activeOnly bool) ([]*Location, error) {
	query := `SELECT id, name, description, active, created_at, updated_at FROM location`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY name`

	rows, err := conn(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []*Location
	for rows.Next() {
		var l Location
		if err := rows.Scan(&l.ID, &l.Name, &l.Description, &l.Active, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		locations = append(locations, &l)
	}
	return locations, rows.Err()
}
