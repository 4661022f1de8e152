package deploy

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/codepipeline"
	"github.com/aws/aws-sdk-go-v2/service/codepipeline/types"

	"github.com/cloudops/cloud-console-tool/internal/errors"
	"github.com/cloudops/cloud-console-tool/internal/models"
)

// CodePipelineAPI is the subset of the CodePipeline client the provider
// uses; narrowed for testability
type CodePipelineAPI interface {
	ListPipelineExecutions(ctx context.Context, params *codepipeline.ListPipelineExecutionsInput, optFns ...func(*codepipeline.Options)) (*codepipeline.ListPipelineExecutionsOutput, error)
	GetPipelineState(ctx context.Context, params *codepipeline.GetPipelineStateInput, optFns ...func(*codepipeline.Options)) (*codepipeline.GetPipelineStateOutput, error)
	PutApprovalResult(ctx context.Context, params *codepipeline.PutApprovalResultInput, optFns ...func(*codepipeline.Options)) (*codepipeline.PutApprovalResultOutput, error)
	StartPipelineExecution(ctx context.Context, params *codepipeline.StartPipelineExecutionInput, optFns ...func(*codepipeline.Options)) (*codepipeline.StartPipelineExecutionOutput, error)
}

// CodePipelineProvider reads deployment descriptors from AWS CodePipeline
// and forwards approvals to manual-approval actions. One provider serves
// one named pipeline; the environment is carried in pipeline variables.
type CodePipelineProvider struct {
	client       CodePipelineAPI
	pipelineName string
	region       string
}

// NewCodePipelineProvider creates a provider for the named pipeline
func NewCodePipelineProvider(client CodePipelineAPI, pipelineName, region string) *CodePipelineProvider {
	return &CodePipelineProvider{client: client, pipelineName: pipelineName, region: region}
}

// Source reports that records come from the live control plane
func (p *CodePipelineProvider) Source() models.DataSource {
	return models.SourceLive
}

// ListRecent maps recent pipeline executions to deployment records
func (p *CodePipelineProvider) ListRecent(ctx context.Context, limit int) ([]models.Deployment, error) {
	input := &codepipeline.ListPipelineExecutionsInput{
		PipelineName: awssdk.String(p.pipelineName),
	}
	if limit > 0 {
		input.MaxResults = awssdk.Int32(int32(limit))
	}

	output, err := p.client.ListPipelineExecutions(ctx, input)
	if err != nil {
		return nil, errors.WrapCollaborator("list_recent", p.pipelineName, err)
	}

	var deployments []models.Deployment
	for _, summary := range output.PipelineExecutionSummaries {
		deployments = append(deployments, p.convertExecution(summary))
	}
	return deployments, nil
}

func (p *CodePipelineProvider) convertExecution(summary types.PipelineExecutionSummary) models.Deployment {
	d := models.Deployment{
		PipelineName: p.pipelineName,
		Environment:  "production",
	}

	if summary.PipelineExecutionId != nil {
		d.PipelineID = *summary.PipelineExecutionId
		d.PipelineURL = fmt.Sprintf(
			"https://%s.console.aws.amazon.com/codesuite/codepipeline/pipelines/%s/executions/%s",
			p.region, p.pipelineName, d.PipelineID)
	}
	if summary.StartTime != nil {
		d.TriggeredAt = *summary.StartTime
	}
	if summary.LastUpdateTime != nil && statusTerminal(summary.Status) {
		t := *summary.LastUpdateTime
		d.CompletedAt = &t
	}

	switch summary.Status {
	case types.PipelineExecutionStatusSucceeded:
		d.Status = models.StatusSuccess
	case types.PipelineExecutionStatusFailed,
		types.PipelineExecutionStatusCancelled,
		types.PipelineExecutionStatusStopped,
		types.PipelineExecutionStatusSuperseded:
		d.Status = models.StatusFailed
	case types.PipelineExecutionStatusStopping:
		d.Status = models.StatusRunning
	default:
		d.Status = models.StatusRunning
	}

	for _, rev := range summary.SourceRevisions {
		if rev.RevisionId != nil {
			d.CommitHash = shortHash(*rev.RevisionId)
		}
		if rev.RevisionSummary != nil {
			d.CommitMessage = *rev.RevisionSummary
		}
		break
	}

	if summary.Trigger != nil && summary.Trigger.TriggerDetail != nil {
		d.Author = *summary.Trigger.TriggerDetail
	}

	return d
}

func statusTerminal(status types.PipelineExecutionStatus) bool {
	switch status {
	case types.PipelineExecutionStatusSucceeded,
		types.PipelineExecutionStatusFailed,
		types.PipelineExecutionStatusCancelled,
		types.PipelineExecutionStatusStopped,
		types.PipelineExecutionStatusSuperseded:
		return true
	}
	return false
}

func shortHash(revision string) string {
	if len(revision) > 7 {
		return revision[:7]
	}
	return revision
}

// Approve resolves the pending manual-approval action for the execution
// and submits an approved result
func (p *CodePipelineProvider) Approve(ctx context.Context, pipelineID string) error {
	return p.putApprovalResult(ctx, pipelineID, types.ApprovalStatusApproved, "Approved from cloud-console")
}

// Reject submits a rejected approval result carrying the reason
func (p *CodePipelineProvider) Reject(ctx context.Context, pipelineID, reason string) error {
	return p.putApprovalResult(ctx, pipelineID, types.ApprovalStatusRejected, reason)
}

func (p *CodePipelineProvider) putApprovalResult(ctx context.Context, pipelineID string, status types.ApprovalStatus, summary string) error {
	state, err := p.client.GetPipelineState(ctx, &codepipeline.GetPipelineStateInput{
		Name: awssdk.String(p.pipelineName),
	})
	if err != nil {
		return errors.WrapCollaborator("get_pipeline_state", p.pipelineName, err)
	}

	for _, stage := range state.StageStates {
		if stage.LatestExecution == nil || stage.LatestExecution.PipelineExecutionId == nil ||
			*stage.LatestExecution.PipelineExecutionId != pipelineID {
			continue
		}
		for _, action := range stage.ActionStates {
			if action.LatestExecution == nil || action.LatestExecution.Token == nil {
				continue
			}
			_, err := p.client.PutApprovalResult(ctx, &codepipeline.PutApprovalResultInput{
				PipelineName: awssdk.String(p.pipelineName),
				StageName:    stage.StageName,
				ActionName:   action.ActionName,
				Token:        action.LatestExecution.Token,
				Result: &types.ApprovalResult{
					Status:  status,
					Summary: awssdk.String(summary),
				},
			})
			if err != nil {
				return errors.WrapCollaborator("put_approval_result", pipelineID, err)
			}
			return nil
		}
	}

	return errors.NewNotFoundError("approval action for execution", pipelineID)
}

// Trigger starts a new execution of the pipeline. Branch, environment and
// parameters become pipeline variables.
func (p *CodePipelineProvider) Trigger(ctx context.Context, _, branch, environment string, parameters map[string]string) (models.TriggerResult, error) {
	variables := []types.PipelineVariable{
		{Name: awssdk.String("Branch"), Value: awssdk.String(branch)},
		{Name: awssdk.String("Environment"), Value: awssdk.String(environment)},
	}
	for name, value := range parameters {
		variables = append(variables, types.PipelineVariable{
			Name:  awssdk.String(name),
			Value: awssdk.String(value),
		})
	}

	output, err := p.client.StartPipelineExecution(ctx, &codepipeline.StartPipelineExecutionInput{
		Name:      awssdk.String(p.pipelineName),
		Variables: variables,
	})
	if err != nil {
		return models.TriggerResult{}, errors.WrapCollaborator("trigger", p.pipelineName, err)
	}

	result := models.TriggerResult{}
	if output.PipelineExecutionId != nil {
		result.PipelineID = *output.PipelineExecutionId
		result.PipelineURL = fmt.Sprintf(
			"https://%s.console.aws.amazon.com/codesuite/codepipeline/pipelines/%s/executions/%s",
			p.region, p.pipelineName, result.PipelineID)
	}
	return result, nil
}
