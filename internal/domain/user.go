package domain

import "time"

// User represents a registered account. The pipeline only confirms the
// account exists before creating a job; the remaining fields are carried
// for the status endpoint and future authorization decisions.
type User struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
}
