package domain

import "context"

// UserRepository defines access methods for users.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// JobRepository defines persistence for creative jobs.
type JobRepository interface {
	Create(ctx context.Context, job *CreativeJob) error
	Complete(ctx context.Context, docID string, result CreativeResult) error
	Delete(ctx context.Context, docID string) error
	GetByDocID(ctx context.Context, docID string) (*CreativeJob, error)
}
