package stacks

import (
	"context"
	"sort"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cfntypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"

	"github.com/cloudops/cloud-console-tool/internal/errors"
	"github.com/cloudops/cloud-console-tool/internal/models"
	"github.com/cloudops/cloud-console-tool/internal/resultcache"
	"github.com/cloudops/cloud-console-tool/internal/session"
)

// CloudFormationAPI is the subset of the CloudFormation client the stack
// manager uses
type CloudFormationAPI interface {
	DescribeStacks(ctx context.Context, params *cloudformation.DescribeStacksInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error)
	DescribeStackEvents(ctx context.Context, params *cloudformation.DescribeStackEventsInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeStackEventsOutput, error)
	DeleteStack(ctx context.Context, params *cloudformation.DeleteStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DeleteStackOutput, error)
	DetectStackDrift(ctx context.Context, params *cloudformation.DetectStackDriftInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DetectStackDriftOutput, error)
}

// Manager exposes CloudFormation stack operations. Reads go through the
// result cache; mutations invalidate the affected account's listing.
type Manager struct {
	cache      *resultcache.Cache
	ttlSeconds int
}

// NewManager creates a stack manager over the given result cache
func NewManager(cache *resultcache.Cache, ttlSeconds int) *Manager {
	if ttlSeconds <= 0 {
		ttlSeconds = 300
	}
	return &Manager{cache: cache, ttlSeconds: ttlSeconds}
}

// List returns the stacks in the handle's account and region, optionally
// filtered to a status
func (m *Manager) List(ctx context.Context, handle *session.Handle, statusFilter string) ([]models.Stack, error) {
	key := resultcache.NewKey("stacks", handle.AccountID, handle.Region)

	stacks, err := resultcache.GetOrLoad(m.cache, key, m.ttl(), func() ([]models.Stack, error) {
		return loadStacks(ctx, handle.Client.CloudFormation)
	})
	if err != nil {
		return nil, err
	}

	if statusFilter == "" {
		return stacks, nil
	}
	var filtered []models.Stack
	for _, stack := range stacks {
		if stack.Status == statusFilter {
			filtered = append(filtered, stack)
		}
	}
	return filtered, nil
}

// Describe returns detail for one stack
func (m *Manager) Describe(ctx context.Context, handle *session.Handle, stackName string) (models.Stack, error) {
	output, err := handle.Client.CloudFormation.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{
		StackName: awssdk.String(stackName),
	})
	if err != nil {
		return models.Stack{}, errors.WrapCollaborator("describe_stack", stackName, err)
	}
	if len(output.Stacks) == 0 {
		return models.Stack{}, errors.NewNotFoundError("stack", stackName)
	}
	return convertStack(output.Stacks[0]), nil
}

// Events returns a stack's most recent events, newest first
func (m *Manager) Events(ctx context.Context, handle *session.Handle, stackName string, limit int) ([]models.StackEvent, error) {
	output, err := handle.Client.CloudFormation.DescribeStackEvents(ctx, &cloudformation.DescribeStackEventsInput{
		StackName: awssdk.String(stackName),
	})
	if err != nil {
		return nil, errors.WrapCollaborator("describe_stack_events", stackName, err)
	}

	var events []models.StackEvent
	for _, event := range output.StackEvents {
		e := models.StackEvent{Status: string(event.ResourceStatus)}
		if event.Timestamp != nil {
			e.Timestamp = *event.Timestamp
		}
		if event.LogicalResourceId != nil {
			e.LogicalID = *event.LogicalResourceId
		}
		if event.ResourceType != nil {
			e.ResourceType = *event.ResourceType
		}
		if event.ResourceStatusReason != nil {
			e.Reason = *event.ResourceStatusReason
		}
		events = append(events, e)
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})
	if limit > 0 && limit < len(events) {
		events = events[:limit]
	}
	return events, nil
}

// Delete removes a stack and invalidates the cached listing for the
// handle's account and region
func (m *Manager) Delete(ctx context.Context, handle *session.Handle, stackName string) error {
	_, err := handle.Client.CloudFormation.DeleteStack(ctx, &cloudformation.DeleteStackInput{
		StackName: awssdk.String(stackName),
	})
	if err != nil {
		return errors.WrapCollaborator("delete_stack", stackName, err)
	}

	m.cache.Invalidate(resultcache.NewKey("stacks", handle.AccountID, handle.Region))
	return nil
}

// DetectDrift starts drift detection for a stack and returns the
// detection id
func (m *Manager) DetectDrift(ctx context.Context, handle *session.Handle, stackName string) (string, error) {
	output, err := handle.Client.CloudFormation.DetectStackDrift(ctx, &cloudformation.DetectStackDriftInput{
		StackName: awssdk.String(stackName),
	})
	if err != nil {
		return "", errors.WrapCollaborator("detect_stack_drift", stackName, err)
	}
	if output.StackDriftDetectionId == nil {
		return "", errors.NewInternalError("drift detection returned no id", nil)
	}
	return *output.StackDriftDetectionId, nil
}

// Refresh drops the cached stack listing for the handle's account and region
func (m *Manager) Refresh(handle *session.Handle) {
	m.cache.Invalidate(resultcache.NewKey("stacks", handle.AccountID, handle.Region))
}

func (m *Manager) ttl() time.Duration {
	return time.Duration(m.ttlSeconds) * time.Second
}

func loadStacks(ctx context.Context, client CloudFormationAPI) ([]models.Stack, error) {
	var stacks []models.Stack

	var nextToken *string
	for {
		output, err := client.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{NextToken: nextToken})
		if err != nil {
			return nil, errors.WrapCollaborator("describe_stacks", "cloudformation", err)
		}
		for _, stack := range output.Stacks {
			stacks = append(stacks, convertStack(stack))
		}
		if output.NextToken == nil {
			break
		}
		nextToken = output.NextToken
	}

	sort.Slice(stacks, func(i, j int) bool {
		return stacks[i].StackName < stacks[j].StackName
	})
	return stacks, nil
}

func convertStack(stack cfntypes.Stack) models.Stack {
	m := models.Stack{Status: string(stack.StackStatus)}
	if stack.StackId != nil {
		m.StackID = *stack.StackId
	}
	if stack.StackName != nil {
		m.StackName = *stack.StackName
	}
	if stack.CreationTime != nil {
		m.CreatedAt = *stack.CreationTime
	}
	if stack.LastUpdatedTime != nil {
		m.UpdatedAt = stack.LastUpdatedTime
	}
	if stack.Description != nil {
		m.Description = *stack.Description
	}
	return m
}
