package patientimport

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medloop/medloop/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type jobRepoPG struct{ pool *pgxpool.Pool }

func NewJobRepoPG(pool *pgxpool.Pool) JobRepository {
	return &jobRepoPG{pool: pool}
}

func (r *jobRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const jobCols = `id, tenant_id, record_count, error_count, warning_count,
	suggestion_count, duplicate_count, score, valid, created_at`

func (r *jobRepoPG) scanRow(row pgx.Row) (*ImportJob, error) {
	var j ImportJob
	err := row.Scan(&j.ID, &j.TenantID, &j.RecordCount, &j.ErrorCount, &j.WarningCount,
		&j.SuggestionCount, &j.DuplicateCount, &j.Score, &j.Valid, &j.CreatedAt)
	return &j, err
}

func (r *jobRepoPG) Create(ctx context.Context, job *ImportJob) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO import_jobs (id, tenant_id, record_count, error_count, warning_count,
			suggestion_count, duplicate_count, score, valid)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		job.ID, job.TenantID, job.RecordCount, job.ErrorCount, job.WarningCount,
		job.SuggestionCount, job.DuplicateCount, job.Score, job.Valid)
	return err
}

func (r *jobRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*ImportJob, error) {
	return r.scanRow(r.conn(ctx).QueryRow(ctx, `SELECT `+jobCols+` FROM import_jobs WHERE id = $1`, id))
}

func (r *jobRepoPG) List(ctx context.Context, limit, offset int) ([]*ImportJob, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM import_jobs`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+jobCols+` FROM import_jobs ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*ImportJob
	for rows.Next() {
		j, err := r.scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, j)
	}
	return items, total, nil
}
