package deploy

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cloudops/cloud-console-tool/internal/errors"
	"github.com/cloudops/cloud-console-tool/internal/logger"
	"github.com/cloudops/cloud-console-tool/internal/models"
)

// ApprovalPolicy supplies the per-environment default for whether a
// triggered deployment must pass the approval gate
type ApprovalPolicy interface {
	RequiredFor(environment string) bool
}

// Filter narrows List results. Empty fields match everything.
type Filter struct {
	Environment string
	Status      models.DeploymentStatus
}

// Order is the sort direction for List
type Order int

const (
	// NewestFirst orders by trigger time descending (default)
	NewestFirst Order = iota
	// OldestFirst orders by trigger time ascending
	OldestFirst
)

// CommitGroup is the promotion history of one change: every deployment
// sharing a commit hash, ordered by trigger time ascending
type CommitGroup struct {
	CommitHash  string
	Deployments []models.Deployment
}

// Registry is the source of truth for deployment records and the only
// place their lifecycle states are mutated. All mutations go through the
// transition guards; a failed guard leaves the record untouched.
type Registry struct {
	mu          sync.Mutex
	provider    Provider
	policy      ApprovalPolicy
	store       *Store
	deployments map[string]*models.Deployment
	now         func() time.Time
}

// NewRegistry creates a registry over the given provider. The store may
// be nil for a purely in-memory registry (tests).
func NewRegistry(provider Provider, policy ApprovalPolicy, store *Store) *Registry {
	r := &Registry{
		provider:    provider,
		policy:      policy,
		store:       store,
		deployments: make(map[string]*models.Deployment),
		now:         time.Now,
	}

	if store != nil {
		persisted, err := store.Load()
		if err != nil {
			logger.GetLogger().Warn("Failed to load deployment registry", zap.Error(err))
		}
		for _, d := range persisted {
			record := d
			r.deployments[d.PipelineID] = &record
		}
	}
	return r
}

// Source reports whether the backing provider serves live or demo data
func (r *Registry) Source() models.DataSource {
	return r.provider.Source()
}

// Refresh pulls recent deployment descriptors from the provider into the
// registry. Tracked records keep their local approval gating; the one
// provider fact applied to them is a terminal outcome for a running
// deployment, since completion happens outside this process.
func (r *Registry) Refresh(ctx context.Context, limit int) error {
	recent, err := r.provider.ListRecent(ctx, limit)
	if err != nil {
		return errors.WrapCollaborator("refresh", "deployment registry", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	added, completed := 0, 0
	for _, d := range recent {
		if existing, ok := r.deployments[d.PipelineID]; ok {
			if existing.Status == models.StatusRunning && d.Status.Terminal() {
				existing.Status = d.Status
				if d.CompletedAt != nil {
					existing.CompletedAt = d.CompletedAt
				} else {
					now := r.now()
					existing.CompletedAt = &now
				}
				completed++
			}
			continue
		}
		record := d
		r.deployments[d.PipelineID] = &record
		added++
	}
	if added > 0 || completed > 0 {
		r.persistLocked()
	}

	logger.GetLogger().Debug("Registry refreshed",
		zap.Int("fetched", len(recent)), zap.Int("added", added),
		zap.Int("completed", completed))
	return nil
}

// Get returns a copy of the deployment with the given pipeline id
func (r *Registry) Get(pipelineID string) (models.Deployment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.deployments[pipelineID]
	if !ok {
		return models.Deployment{}, errors.NewNotFoundError("deployment", pipelineID)
	}
	return *d, nil
}

// Approve moves a pending deployment into running. Approving anything not
// in pending_approval fails without mutating the record; double approval
// is rejected, not silently accepted.
func (r *Registry) Approve(ctx context.Context, pipelineID string) (models.Deployment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.deployments[pipelineID]
	if !ok {
		return models.Deployment{}, errors.NewNotFoundError("deployment", pipelineID)
	}
	if d.Status != models.StatusPendingApproval {
		return models.Deployment{}, errors.NewInvalidStateTransitionError(pipelineID, string(d.Status), "approve")
	}

	if err := r.provider.Approve(ctx, pipelineID); err != nil {
		return models.Deployment{}, errors.WrapCollaborator("approve", pipelineID, err)
	}

	d.Status = models.StatusRunning
	r.persistLocked()
	logger.GetLogger().Info("Deployment approved", zap.String("pipeline", pipelineID))
	return *d, nil
}

// Reject moves a pending deployment into failed. The reason is mandatory
// and recorded on the deployment for the audit trail.
func (r *Registry) Reject(ctx context.Context, pipelineID, reason string) (models.Deployment, error) {
	if strings.TrimSpace(reason) == "" {
		return models.Deployment{}, errors.NewInvalidParametersError("rejection reason must not be empty", nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.deployments[pipelineID]
	if !ok {
		return models.Deployment{}, errors.NewNotFoundError("deployment", pipelineID)
	}
	if d.Status != models.StatusPendingApproval {
		return models.Deployment{}, errors.NewInvalidStateTransitionError(pipelineID, string(d.Status), "reject")
	}

	if err := r.provider.Reject(ctx, pipelineID, reason); err != nil {
		return models.Deployment{}, errors.WrapCollaborator("reject", pipelineID, err)
	}

	now := r.now()
	d.Status = models.StatusFailed
	d.RejectionReason = reason
	d.CompletedAt = &now
	r.persistLocked()
	logger.GetLogger().Info("Deployment rejected",
		zap.String("pipeline", pipelineID), zap.String("reason", reason))
	return *d, nil
}

// Complete records an external completion event for a running deployment
func (r *Registry) Complete(pipelineID string, succeeded bool) (models.Deployment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.deployments[pipelineID]
	if !ok {
		return models.Deployment{}, errors.NewNotFoundError("deployment", pipelineID)
	}
	if d.Status != models.StatusRunning {
		return models.Deployment{}, errors.NewInvalidStateTransitionError(pipelineID, string(d.Status), "complete")
	}

	now := r.now()
	if succeeded {
		d.Status = models.StatusSuccess
	} else {
		d.Status = models.StatusFailed
	}
	d.CompletedAt = &now
	r.persistLocked()
	return *d, nil
}

// TriggerInput carries everything needed to start a pipeline
type TriggerInput struct {
	Repository  string
	Branch      string
	Environment string
	StackName   string
	Parameters  map[string]string
	// RequireApproval overrides the environment policy when non-nil
	RequireApproval *bool
}

// Trigger starts a pipeline through the provider and creates the tracking
// record. Input is validated before the provider is called so a malformed
// trigger creates no state anywhere.
func (r *Registry) Trigger(ctx context.Context, input TriggerInput) (models.Deployment, error) {
	if err := validateTriggerInput(input); err != nil {
		return models.Deployment{}, err
	}

	requireApproval := r.policy != nil && r.policy.RequiredFor(input.Environment)
	if input.RequireApproval != nil {
		requireApproval = *input.RequireApproval
	}

	result, err := r.provider.Trigger(ctx, input.Repository, input.Branch, input.Environment, input.Parameters)
	if err != nil {
		return models.Deployment{}, errors.WrapCollaborator("trigger", input.Repository, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	status := models.StatusRunning
	if requireApproval {
		status = models.StatusPendingApproval
	}

	d := &models.Deployment{
		PipelineID:       result.PipelineID,
		PipelineName:     "Deploy " + input.Repository,
		Status:           status,
		Environment:      input.Environment,
		StackName:        input.StackName,
		TriggeredAt:      r.now(),
		ApprovalRequired: requireApproval,
		PipelineURL:      result.PipelineURL,
	}
	r.deployments[d.PipelineID] = d
	r.persistLocked()

	logger.GetLogger().Info("Pipeline triggered",
		zap.String("pipeline", d.PipelineID),
		zap.String("environment", input.Environment),
		zap.Bool("approval_required", requireApproval))
	return *d, nil
}

func validateTriggerInput(input TriggerInput) error {
	if strings.TrimSpace(input.Repository) == "" {
		return errors.NewInvalidParametersError("repository is required", nil)
	}
	if strings.TrimSpace(input.Branch) == "" {
		return errors.NewInvalidParametersError("branch is required", nil)
	}
	if strings.TrimSpace(input.Environment) == "" {
		return errors.NewInvalidParametersError("environment is required", nil)
	}
	for key := range input.Parameters {
		if strings.TrimSpace(key) == "" {
			return errors.NewInvalidParametersError("parameter keys must not be empty", nil)
		}
	}
	return nil
}

// List returns deployments matching the filter, sorted by trigger time.
// Equal trigger times are broken by pipeline id ascending so the ordering
// is deterministic.
func (r *Registry) List(filter Filter, order Order) []models.Deployment {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []models.Deployment
	for _, d := range r.deployments {
		if filter.Environment != "" && d.Environment != filter.Environment {
			continue
		}
		if filter.Status != "" && d.Status != filter.Status {
			continue
		}
		result = append(result, *d)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].TriggeredAt.Equal(result[j].TriggeredAt) {
			return result[i].PipelineID < result[j].PipelineID
		}
		if order == OldestFirst {
			return result[i].TriggeredAt.Before(result[j].TriggeredAt)
		}
		return result[i].TriggeredAt.After(result[j].TriggeredAt)
	})
	return result
}

// Pending returns deployments awaiting approval, newest first
func (r *Registry) Pending() []models.Deployment {
	return r.List(Filter{Status: models.StatusPendingApproval}, NewestFirst)
}

// GroupByCommit groups deployments by commit hash for promotion-history
// views. Groups are ordered by their most recent trigger descending;
// within a group deployments run oldest first, the order the change was
// promoted through environments.
func (r *Registry) GroupByCommit() []CommitGroup {
	all := r.List(Filter{}, OldestFirst)

	index := make(map[string]int)
	var groups []CommitGroup
	for _, d := range all {
		if d.CommitHash == "" {
			continue
		}
		i, ok := index[d.CommitHash]
		if !ok {
			i = len(groups)
			index[d.CommitHash] = i
			groups = append(groups, CommitGroup{CommitHash: d.CommitHash})
		}
		groups[i].Deployments = append(groups[i].Deployments, d)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		di := groups[i].Deployments
		dj := groups[j].Deployments
		return di[len(di)-1].TriggeredAt.After(dj[len(dj)-1].TriggeredAt)
	})
	return groups
}

// persistLocked writes the registry through the store; failures are
// logged, not returned, since the in-memory state is already correct
func (r *Registry) persistLocked() {
	if r.store == nil {
		return
	}
	all := make([]models.Deployment, 0, len(r.deployments))
	for _, d := range r.deployments {
		all = append(all, *d)
	}
	if err := r.store.Save(all); err != nil {
		logger.GetLogger().Warn("Failed to persist deployment registry", zap.Error(err))
	}
}
