package model

import "time"

// RunStatus represents the state of a recorded merge run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// RunInput describes the exports a merge run consumed.
type RunInput struct {
	GooglePath  string `json:"google_path"`
	ICloudPath  string `json:"icloud_path,omitempty"`
	GoogleCount int    `json:"google_count"`
	ICloudCount int    `json:"icloud_count"`
}

// RunResult holds the outcome of a completed merge run.
type RunResult struct {
	TotalBefore  int    `json:"total_before"`
	TotalAfter   int    `json:"total_after"`
	GroupsMerged int    `json:"groups_merged"`
	MasterPath   string `json:"master_path"`
	LogPath      string `json:"log_path"`
	Error        string `json:"error,omitempty"`
}

// MergeRun is one recorded invocation of the merge pipeline.
type MergeRun struct {
	ID        string     `json:"id"`
	Input     RunInput   `json:"input"`
	Status    RunStatus  `json:"status"`
	Result    *RunResult `json:"result,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
