package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Bhasvanth-Dev9380/ad-generator/internal/domain"
)

// JobRepositoryPG implements domain.JobRepository.
type JobRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewJobRepository creates a new job repository backed by PostgreSQL.
func NewJobRepository(pool *pgxpool.Pool) *JobRepositoryPG {
	return &JobRepositoryPG{pool: pool}
}

// Create inserts a new creative job record.
func (r *JobRepositoryPG) Create(ctx context.Context, job *domain.CreativeJob) error {
	query := `
INSERT INTO creative_jobs (doc_id, user_email, status, description, size)
VALUES ($1, $2, $3, $4, $5);
`
	_, err := r.pool.Exec(ctx, query,
		job.DocID,
		job.UserEmail,
		job.Status,
		job.Description,
		job.Size,
	)
	return err
}

// Complete marks a job completed and writes the success fields.
func (r *JobRepositoryPG) Complete(ctx context.Context, docID string, result domain.CreativeResult) error {
	query := `
UPDATE creative_jobs
SET status = $2,
    final_product_image_url = $3,
    product_image_url = $4,
    image_to_video_prompt = $5,
    updated_at = NOW()
WHERE doc_id = $1;
`
	tag, err := r.pool.Exec(ctx, query,
		docID,
		domain.JobStatusCompleted,
		result.FinalProductImageURL,
		result.ProductImageURL,
		result.ImageToVideoPrompt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a job record. Used by failure cleanup; deleting an
// already-deleted job is not an error.
func (r *JobRepositoryPG) Delete(ctx context.Context, docID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM creative_jobs WHERE doc_id = $1;`, docID)
	return err
}

// GetByDocID fetches a job by its identifier.
func (r *JobRepositoryPG) GetByDocID(ctx context.Context, docID string) (*domain.CreativeJob, error) {
	query := `
SELECT doc_id, user_email, status, description, size,
       COALESCE(final_product_image_url, ''),
       COALESCE(product_image_url, ''),
       COALESCE(image_to_video_prompt, ''),
       created_at, updated_at
FROM creative_jobs
WHERE doc_id = $1;
`
	row := r.pool.QueryRow(ctx, query, docID)
	var job domain.CreativeJob
	if err := row.Scan(
		&job.DocID,
		&job.UserEmail,
		&job.Status,
		&job.Description,
		&job.Size,
		&job.FinalProductImageURL,
		&job.ProductImageURL,
		&job.ImageToVideoPrompt,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

var _ domain.JobRepository = (*JobRepositoryPG)(nil)
