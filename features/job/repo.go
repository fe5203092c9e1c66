package job

import (
	"context"
	"database/sql"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Create(ctx context.Context, url string, attempts int) (string, error) {
	var id string
	query := `INSERT INTO jobs (url, attempts) VALUES ($1, $2) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, url, attempts).Scan(&id)
	return id, err
}

func (r *PostgresRepo) UpdateStage(ctx context.Context, id, stage string) error {
	query := `UPDATE jobs SET stage = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, stage)
	return err
}

func (r *PostgresRepo) MarkFailed(ctx context.Context, id, errMsg string) error {
	query := `UPDATE jobs SET stage = 'failed', error = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, errMsg)
	return err
}

func (r *PostgresRepo) List(ctx context.Context, limit int) ([]Job, error) {
	query := `SELECT id, url, stage, attempts, error, created_at, updated_at FROM jobs ORDER BY created_at DESC LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var j Job
		if err := rows.Scan(&j.ID, &j.URL, &j.Stage, &j.Attempts, &j.Error, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, err
		}
		if j.Error.Valid {
			j.ErrorMessage = j.Error.String
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (*Job, error) {
	j := &Job{}
	query := `SELECT id, url, stage, attempts, error, created_at, updated_at FROM jobs WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&j.ID, &j.URL, &j.Stage, &j.Attempts, &j.Error, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if j.Error.Valid {
		j.ErrorMessage = j.Error.String
	}
	return j, nil
}

func (r *PostgresRepo) Count(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM jobs`
	err := r.db.QueryRowContext(ctx, query).Scan(&count)
	return count, err
}
