package model

import (
	"encoding/json"
	"time"
)

const (
	JobStatusQueued    = "Queued"
	JobStatusRunning   = "Running" // worker holds the run lock
	JobStatusCompleted = "Completed"
	JobStatusFailed    = "Failed"
	JobStatusMailed    = "Mailed" // results delivered to the submitter
)

// Job is the persisted record of an emailed (queued) fitting job.
type Job struct {
	ID        string          `json:"id"`
	StartTime string          `json:"start_time"`
	Algorithm Algorithm       `json:"algorithm"`
	Email     string          `json:"email"`
	Status    string          `json:"status"`
	Payload   json.RawMessage `json:"-"` // the JobConfig
	Attempts  int             `json:"attempts"`
	LastError *string         `json:"last_error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Config decodes the JobConfig stored with the job.
func (j *Job) Config() (*JobConfig, error) {
	var cfg JobConfig
	if err := json.Unmarshal(j.Payload, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// JobInfo is shown on job failure pages.
type JobInfo struct {
	Status         string
	Error          string
	StarfitVersion string
}
