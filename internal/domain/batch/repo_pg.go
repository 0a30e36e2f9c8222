package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/casetrack/casetrack/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

// NewRepo returns a batch repository. The value also satisfies PatientChecker.
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

const batchColumns = `b.id, b.batch_number, b.status, b.requested_by, b.requester_name,
	b.is_verified, b.received_count, b.verified_at, b.verified_by, b.verification_notes,
	b.created_at, b.updated_at`

func (r *repoPG) Create(ctx context.Context, b *BatchRequest) error {
	b.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO batch_request (id, batch_number, status, requested_by, requester_name)
		VALUES ($1, $2, $3, $4, $5)`,
		b.ID, b.BatchNumber, b.Status, b.RequestedBy, b.RequesterName,
	)
	if err != nil {
		return err
	}

	for _, req := range b.Requests {
		req.ID = uuid.New()
		req.BatchID = b.ID
		_, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO case_note_request (id, batch_id, patient_id, status)
			VALUES ($1, $2, $3, $4)`,
			req.ID, req.BatchID, req.PatientID, req.Status,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*BatchRequest, error) {
	b, err := r.scanBatch(r.conn(ctx).QueryRow(ctx,
		`SELECT `+batchColumns+` FROM batch_request b WHERE b.id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadRequests(ctx, b); err != nil {
		return nil, err
	}
	b.Recount()
	return b, nil
}

func (r *repoPG) List(ctx context.Context, status, search string, limit, offset int) ([]*BatchRequest, int, error) {
	where := `WHERE 1=1`
	args := []interface{}{}
	if status != "" {
		args = append(args, status)
		where += fmt.Sprintf(` AND b.status = $%d`, len(args))
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		where += fmt.Sprintf(` AND (b.batch_number ILIKE $%d OR b.requester_name ILIKE $%d)`, len(args), len(args))
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM batch_request b `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT `+batchColumns+` FROM batch_request b %s
		ORDER BY b.created_at DESC LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var batches []*BatchRequest
	for rows.Next() {
		b, err := r.scanBatchRows(rows)
		if err != nil {
			return nil, 0, err
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for _, b := range batches {
		if err := r.loadRequests(ctx, b); err != nil {
			return nil, 0, err
		}
		b.Recount()
	}
	return batches, total, nil
}

func (r *repoPG) UpdateBatch(ctx context.Context, b *BatchRequest) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE batch_request SET
			status = $2, is_verified = $3, received_count = $4,
			verified_at = $5, verified_by = $6, verification_notes = $7,
			updated_at = NOW()
		WHERE id = $1`,
		b.ID, b.Status, b.IsVerified, b.ReceivedCount,
		b.VerifiedAt, b.VerifiedBy, b.VerificationNotes,
	)
	return err
}

func (r *repoPG) UpdateRequest(ctx context.Context, req *CaseNoteRequest) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE case_note_request SET
			status = $2, received = $3, received_at = $4,
			reviewed_by = $5, reviewed_at = $6, remarks = $7,
			updated_at = NOW()
		WHERE id = $1`,
		req.ID, req.Status, req.Received, req.ReceivedAt,
		req.ReviewedBy, req.ReviewedAt, req.Remarks,
	)
	return err
}

// NextBatchNumber produces BR-<yyyymmdd>-<seq>, sequenced per day. The
// counter row is bumped atomically so concurrent creates never collide on
// the unique batch_number.
func (r *repoPG) NextBatchNumber(ctx context.Context) (string, error) {
	var seq int
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO batch_number_counter (day, seq)
		VALUES (CURRENT_DATE, 1)
		ON CONFLICT (day) DO UPDATE SET seq = batch_number_counter.seq + 1
		RETURNING seq`).Scan(&seq)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("BR-%s-%03d", time.Now().Format("20060102"), seq), nil
}

func (r *repoPG) PatientExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM patient WHERE id = $1 AND active)`, id).Scan(&exists)
	return exists, err
}

func (r *repoPG) loadRequests(ctx context.Context, b *BatchRequest) error {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT r.id, r.batch_id, r.patient_id, p.mrn, p.name, r.status, r.received,
			r.received_at, r.reviewed_by, r.reviewed_at, r.remarks, r.created_at, r.updated_at
		FROM case_note_request r
		JOIN patient p ON p.id = r.patient_id
		WHERE r.batch_id = $1
		ORDER BY r.created_at`, b.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	b.Requests = nil
	for rows.Next() {
		var req CaseNoteRequest
		err := rows.Scan(
			&req.ID, &req.BatchID, &req.PatientID, &req.PatientMRN, &req.PatientName,
			&req.Status, &req.Received, &req.ReceivedAt, &req.ReviewedBy, &req.ReviewedAt,
			&req.Remarks, &req.CreatedAt, &req.UpdatedAt,
		)
		if err != nil {
			return err
		}
		b.Requests = append(b.Requests, &req)
	}
	return rows.Err()
}

func (r *repoPG) scanBatch(row pgx.Row) (*BatchRequest, error) {
	var b BatchRequest
	err := row.Scan(
		&b.ID, &b.BatchNumber, &b.Status, &b.RequestedBy, &b.RequesterName,
		&b.IsVerified, &b.ReceivedCount, &b.VerifiedAt, &b.VerifiedBy, &b.VerificationNotes,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repoPG) scanBatchRows(rows pgx.Rows) (*BatchRequest, error) {
	var b BatchRequest
	err := rows.Scan(
		&b.ID, &b.BatchNumber, &b.Status, &b.RequestedBy, &b.RequesterName,
		&b.IsVerified, &b.ReceivedCount, &b.VerifiedAt, &b.VerifiedBy, &b.VerificationNotes,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
