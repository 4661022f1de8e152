package models

import "time"

// DeploymentStatus is the lifecycle state of a pipeline deployment
type DeploymentStatus string

const (
	StatusRunning         DeploymentStatus = "running"
	StatusSuccess         DeploymentStatus = "success"
	StatusFailed          DeploymentStatus = "failed"
	StatusPendingApproval DeploymentStatus = "pending_approval"
)

// Terminal reports whether the status admits no further transitions
func (s DeploymentStatus) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// Valid reports whether s is one of the known lifecycle states
func (s DeploymentStatus) Valid() bool {
	switch s {
	case StatusRunning, StatusSuccess, StatusFailed, StatusPendingApproval:
		return true
	}
	return false
}

// DataSource identifies where deployment records came from
type DataSource string

const (
	SourceLive DataSource = "live"
	SourceDemo DataSource = "demo"
)

// Deployment represents one tracked execution of a deployment pipeline
type Deployment struct {
	PipelineID       string           `json:"pipeline_id"`
	PipelineName     string           `json:"pipeline_name"`
	Status           DeploymentStatus `json:"status"`
	Environment      string           `json:"environment"` // dev, staging, production
	StackName        string           `json:"stack_name"`
	CommitHash       string           `json:"commit_hash"`
	CommitMessage    string           `json:"commit_message"`
	Author           string           `json:"author"`
	TriggeredAt      time.Time        `json:"triggered_at"`
	CompletedAt      *time.Time       `json:"completed_at,omitempty"`
	ApprovalRequired bool             `json:"approval_required"`
	RejectionReason  string           `json:"rejection_reason,omitempty"`
	ChangeSetURL     string           `json:"change_set_url,omitempty"`
	PipelineURL      string           `json:"pipeline_url,omitempty"`
}

// Duration returns the elapsed time between trigger and completion,
// or zero if the deployment has not completed
func (d Deployment) Duration() time.Duration {
	if d.CompletedAt == nil {
		return 0
	}
	return d.CompletedAt.Sub(d.TriggeredAt)
}

// WaitingFor returns how long the deployment has been awaiting approval
func (d Deployment) WaitingFor(now time.Time) time.Duration {
	if d.Status != StatusPendingApproval {
		return 0
	}
	return now.Sub(d.TriggeredAt)
}

// TriggerResult is returned by the CI/CD provider when a pipeline is started
type TriggerResult struct {
	PipelineID  string `json:"pipeline_id"`
	PipelineURL string `json:"pipeline_url"`
}
