package model

import "time"

// JobStatus represents the current state of a reconciliation job run.
type JobStatus string

const (
	JobStatusRunning  JobStatus = "running"
	JobStatusComplete JobStatus = "complete"
	JobStatusFailed   JobStatus = "failed"
)

// JobRun is one execution of a named job, persisted to the run-log store so
// operators can audit what each timer tick actually did.
type JobRun struct {
	ID        string     `json:"id"`
	Job       string     `json:"job"`
	Status    JobStatus  `json:"status"`
	Result    *JobResult `json:"result,omitempty"`
	StartedAt time.Time  `json:"started_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// JobResult summarizes the outcome of a job run.
type JobResult struct {
	ShipmentsRead    int    `json:"shipments_read"`
	InvoicesRead     int    `json:"invoices_read"`
	PrimaryMatches   int    `json:"primary_matches"`
	SecondaryMatches int    `json:"secondary_matches"`
	RowsUpdated      int    `json:"rows_updated"`
	RowsAppended     int    `json:"rows_appended"`
	RowsSkipped      int    `json:"rows_skipped"`
	Divergences      int    `json:"divergences"`
	Error            string `json:"error,omitempty"`
}
