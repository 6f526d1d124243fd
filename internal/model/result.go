package model

// Task outcome statuses as written to the result CSV. Solver verdicts are
// mapped onto these: unsat → verified, sat → falsified.
const (
	StatusVerified  = "verified"
	StatusFalsified = "falsified"
	StatusUnknown   = "unknown"
	StatusTimeout   = "timed_out"
	StatusError     = "error"
)

// TaskResult is one parsed array-task outcome.
type TaskResult struct {
	Set      string  `json:"set"`
	TaskDir  string  `json:"task_dir"` // relative to the set's working directory
	Model    string  `json:"model"`
	Property string  `json:"property"`
	Status   string  `json:"status"`
	Seconds  float64 `json:"seconds"` // wall time from the measurement report
	TimedOut bool    `json:"timed_out"`
}

// SetSummary aggregates the task results of one benchmark set.
type SetSummary struct {
	Set         string  `json:"set"`
	Tasks       int     `json:"tasks"`
	Verified    int     `json:"verified"`
	Falsified   int     `json:"falsified"`
	Unknown     int     `json:"unknown"`
	TimedOut    int     `json:"timed_out"`
	Errors      int     `json:"errors"`
	MeanSeconds float64 `json:"mean_seconds"`
}
