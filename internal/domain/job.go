package domain

import (
	"strconv"
	"time"
)

// JobStatus enumerates creative job lifecycle states. There is no failed
// state: a job that fails is deleted rather than retained.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusCompleted JobStatus = "completed"
)

// CreativeJob tracks one generation request from intake to publishing.
type CreativeJob struct {
	DocID                string
	UserEmail            string
	Status               JobStatus
	Description          string
	Size                 string
	FinalProductImageURL string
	ProductImageURL      string
	ImageToVideoPrompt   string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// CreativeResult carries the success fields written when a job completes.
type CreativeResult struct {
	FinalProductImageURL string
	ProductImageURL      string
	ImageToVideoPrompt   string
}

// NewDocID derives a job document identifier from the creation timestamp.
// Concurrent submissions are not deduplicated; millisecond keys keep
// collisions unlikely without coordinating across requests.
func NewDocID(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}
