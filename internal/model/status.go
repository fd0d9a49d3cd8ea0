package model

// JobStatus represents the status of a conversion job
type JobStatus string

const (
	// JobStatusPending means the job is created but not started
	JobStatusPending JobStatus = "Pending"

	// JobStatusRunning means files are being converted
	JobStatusRunning JobStatus = "Running"

	// JobStatusStopping means a stop was requested and the job is winding down
	JobStatusStopping JobStatus = "Stopping"

	// JobStatusStopped means the job was stopped by user
	JobStatusStopped JobStatus = "Stopped"

	// JobStatusCompleted means a deliverable was produced
	JobStatusCompleted JobStatus = "Completed"

	// JobStatusError means the job failed without a deliverable
	JobStatusError JobStatus = "Error"
)

// String returns the string representation of JobStatus
func (js JobStatus) String() string {
	return string(js)
}

// IsActive returns true if the job is in an active state
func (js JobStatus) IsActive() bool {
	return js == JobStatusRunning || js == JobStatusStopping
}

// IsFinished returns true if the job is in a finished state (completed, stopped, or error)
func (js JobStatus) IsFinished() bool {
	return js == JobStatusCompleted || js == JobStatusStopped || js == JobStatusError
}
