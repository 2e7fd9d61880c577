package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/2sn/starfit-server/internal/common"
	"github.com/2sn/starfit-server/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type JobRepository interface {
	CreateJob(ctx context.Context, tx *sql.Tx, job *model.Job) error
	GetJobByID(ctx context.Context, id string) (*model.Job, error)
	UpdateJobStatus(ctx context.Context, tx *sql.Tx, jobID string, status string, lastError *string) error
	IncrementJobAttempts(ctx context.Context, tx *sql.Tx, jobID string) error
	ListRecentJobs(ctx context.Context, limit int) ([]*model.Job, error)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// pick runs statements in tx when one is given.
func pick(db *sql.DB, tx *sql.Tx) execer {
	if tx != nil {
		return tx
	}
	return db
}

type pgJobRepository struct {
	db *sql.DB
}

func NewPgJobRepository(db *sql.DB) JobRepository {
	return &pgJobRepository{db: db}
}

func (r *pgJobRepository) CreateJob(ctx context.Context, tx *sql.Tx, job *model.Job) error {
	query := `INSERT INTO starfit_jobs (id, start_time, algorithm, email, status, payload)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING created_at, updated_at`
	var row *sql.Row
	if tx != nil {
		row = tx.QueryRowContext(ctx, query, job.ID, job.StartTime, job.Algorithm, job.Email, job.Status, []byte(job.Payload))
	} else {
		row = r.db.QueryRowContext(ctx, query, job.ID, job.StartTime, job.Algorithm, job.Email, job.Status, []byte(job.Payload))
	}
	if err := row.Scan(&job.CreatedAt, &job.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("job %s already exists: %w", job.ID, common.ErrConflict)
		}
		return fmt.Errorf("pgJobRepository.CreateJob: %w", err)
	}
	return nil
}

const jobColumns = `id, start_time, algorithm, email, status, payload, attempts, last_error, created_at, updated_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(s scanner) (*model.Job, error) {
	job := &model.Job{}
	var payload []byte
	var lastError sql.NullString
	if err := s.Scan(&job.ID, &job.StartTime, &job.Algorithm, &job.Email, &job.Status, &payload,
		&job.Attempts, &lastError, &job.CreatedAt, &job.UpdatedAt); err != nil {
		return nil, err
	}
	job.Payload = payload
	if lastError.Valid {
		job.LastError = &lastError.String
	}
	return job, nil
}

func (r *pgJobRepository) GetJobByID(ctx context.Context, id string) (*model.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM starfit_jobs WHERE id = $1`
	job, err := scanJob(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgJobRepository.GetJobByID: %w", err)
	}
	return job, nil
}

func (r *pgJobRepository) UpdateJobStatus(ctx context.Context, tx *sql.Tx, jobID string, status string, lastError *string) error {
	query := `UPDATE starfit_jobs SET status = $2, last_error = $3, updated_at = CURRENT_TIMESTAMP WHERE id = $1`
	res, err := pick(r.db, tx).ExecContext(ctx, query, jobID, status, lastError)
	if err != nil {
		return fmt.Errorf("pgJobRepository.UpdateJobStatus: %w", err)
	}
	return expectOneRow(res)
}

func (r *pgJobRepository) IncrementJobAttempts(ctx context.Context, tx *sql.Tx, jobID string) error {
	query := `UPDATE starfit_jobs SET attempts = attempts + 1, updated_at = CURRENT_TIMESTAMP WHERE id = $1`
	res, err := pick(r.db, tx).ExecContext(ctx, query, jobID)
	if err != nil {
		return fmt.Errorf("pgJobRepository.IncrementJobAttempts: %w", err)
	}
	return expectOneRow(res)
}

func (r *pgJobRepository) ListRecentJobs(ctx context.Context, limit int) ([]*model.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM starfit_jobs ORDER BY created_at DESC LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("pgJobRepository.ListRecentJobs: %w", err)
	}
	defer rows.Close()

	var jobs []*model.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("pgJobRepository.ListRecentJobs: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
