package deploy

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cloudops/cloud-console-tool/internal/models"
)

// Provider is the CI/CD system the registry reads deployment descriptors
// from and forwards approval decisions to. Implementations do their own
// timeouts; the registry only wraps their failures with context.
type Provider interface {
	// Source distinguishes live provider data from illustrative records
	Source() models.DataSource

	ListRecent(ctx context.Context, limit int) ([]models.Deployment, error)
	Approve(ctx context.Context, pipelineID string) error
	Reject(ctx context.Context, pipelineID, reason string) error
	Trigger(ctx context.Context, repo, branch, environment string, parameters map[string]string) (models.TriggerResult, error)
}

// DemoProvider serves a fixed set of illustrative deployment records for
// use when no provider credential is configured. Callers can tell it
// apart from live data through Source.
type DemoProvider struct {
	now func() time.Time
}

// NewDemoProvider creates a demo provider
func NewDemoProvider() *DemoProvider {
	return &DemoProvider{now: time.Now}
}

// Source reports that records are illustrative
func (p *DemoProvider) Source() models.DataSource {
	return models.SourceDemo
}

// ListRecent returns the fixed demo records, newest first
func (p *DemoProvider) ListRecent(_ context.Context, limit int) ([]models.Deployment, error) {
	now := p.now()
	completed := func(d time.Duration) *time.Time {
		t := now.Add(-d)
		return &t
	}

	deployments := []models.Deployment{
		{
			PipelineID:    "GHA-1236",
			PipelineName:  "Deploy Infrastructure",
			Status:        models.StatusRunning,
			Environment:   "staging",
			StackName:     "staging-app-stack",
			CommitHash:    "def5678",
			CommitMessage: "Add production RDS with read replicas",
			Author:        "Jane Smith",
			TriggeredAt:   now.Add(-10 * time.Minute),
			PipelineURL:   "https://github.com/org/repo/actions/runs/1236",
		},
		{
			PipelineID:       "GHA-1235",
			PipelineName:     "Deploy Infrastructure",
			Status:           models.StatusPendingApproval,
			Environment:      "production",
			StackName:        "prod-rds-stack",
			CommitHash:       "def5678",
			CommitMessage:    "Add production RDS with read replicas",
			Author:           "Jane Smith",
			TriggeredAt:      now.Add(-30 * time.Minute),
			ApprovalRequired: true,
			ChangeSetURL:     "https://github.com/org/repo/pull/456",
			PipelineURL:      "https://github.com/org/repo/actions/runs/1235",
		},
		{
			PipelineID:    "GHA-1233",
			PipelineName:  "Deploy Infrastructure",
			Status:        models.StatusSuccess,
			Environment:   "staging",
			StackName:     "staging-rds-stack",
			CommitHash:    "def5678",
			CommitMessage: "Add production RDS with read replicas",
			Author:        "Jane Smith",
			TriggeredAt:   now.Add(-45 * time.Minute),
			CompletedAt:   completed(38 * time.Minute),
			PipelineURL:   "https://github.com/org/repo/actions/runs/1233",
		},
		{
			PipelineID:    "GHA-1232",
			PipelineName:  "Deploy Infrastructure",
			Status:        models.StatusSuccess,
			Environment:   "dev",
			StackName:     "dev-rds-stack",
			CommitHash:    "def5678",
			CommitMessage: "Add production RDS with read replicas",
			Author:        "Jane Smith",
			TriggeredAt:   now.Add(-1 * time.Hour),
			CompletedAt:   completed(52 * time.Minute),
			PipelineURL:   "https://github.com/org/repo/actions/runs/1232",
		},
		{
			PipelineID:    "GHA-1234",
			PipelineName:  "Deploy Infrastructure",
			Status:        models.StatusSuccess,
			Environment:   "production",
			StackName:     "prod-vpc-stack",
			CommitHash:    "abc1234",
			CommitMessage: "Add production VPC with 3 AZs",
			Author:        "John Doe",
			TriggeredAt:   now.Add(-2 * time.Hour),
			CompletedAt:   completed(105 * time.Minute),
			PipelineURL:   "https://github.com/org/repo/actions/runs/1234",
		},
		{
			PipelineID:    "GHA-1231",
			PipelineName:  "Deploy Infrastructure",
			Status:        models.StatusFailed,
			Environment:   "dev",
			StackName:     "dev-lambda-stack",
			CommitHash:    "9fe2c1a",
			CommitMessage: "Refactor lambda handlers",
			Author:        "John Doe",
			TriggeredAt:   now.Add(-3 * time.Hour),
			CompletedAt:   completed(170 * time.Minute),
			PipelineURL:   "https://github.com/org/repo/actions/runs/1231",
		},
	}

	if limit > 0 && limit < len(deployments) {
		deployments = deployments[:limit]
	}
	return deployments, nil
}

// Approve accepts any approval locally; the registry enforces state
func (p *DemoProvider) Approve(_ context.Context, _ string) error {
	return nil
}

// Reject accepts any rejection locally; the registry enforces state
func (p *DemoProvider) Reject(_ context.Context, _, _ string) error {
	return nil
}

// Trigger fabricates a local pipeline id and URL
func (p *DemoProvider) Trigger(_ context.Context, repo, _, _ string, _ map[string]string) (models.TriggerResult, error) {
	id := "LOCAL-" + uuid.NewString()[:8]
	return models.TriggerResult{
		PipelineID:  id,
		PipelineURL: fmt.Sprintf("https://github.com/%s/actions/runs/%s", repo, id),
	}, nil
}
