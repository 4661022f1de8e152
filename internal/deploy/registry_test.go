package deploy

import (
	"context"
	"testing"
	"time"

	"github.com/cloudops/cloud-console-tool/internal/errors"
	"github.com/cloudops/cloud-console-tool/internal/models"
)

type fakeProvider struct {
	recent       []models.Deployment
	approveCalls int
	rejectCalls  int
	triggerCalls int
	triggerErr   error
	nextID       string
}

func (p *fakeProvider) Source() models.DataSource { return models.SourceDemo }

func (p *fakeProvider) ListRecent(_ context.Context, limit int) ([]models.Deployment, error) {
	if limit > 0 && limit < len(p.recent) {
		return p.recent[:limit], nil
	}
	return p.recent, nil
}

func (p *fakeProvider) Approve(_ context.Context, _ string) error {
	p.approveCalls++
	return nil
}

func (p *fakeProvider) Reject(_ context.Context, _, _ string) error {
	p.rejectCalls++
	return nil
}

func (p *fakeProvider) Trigger(_ context.Context, _, _, _ string, _ map[string]string) (models.TriggerResult, error) {
	p.triggerCalls++
	if p.triggerErr != nil {
		return models.TriggerResult{}, p.triggerErr
	}
	id := p.nextID
	if id == "" {
		id = "RUN-1"
	}
	return models.TriggerResult{PipelineID: id}, nil
}

type fakePolicy struct {
	required map[string]bool
}

func (p fakePolicy) RequiredFor(environment string) bool {
	return p.required[environment]
}

func productionPolicy() fakePolicy {
	return fakePolicy{required: map[string]bool{"production": true}}
}

func newTestRegistry(provider Provider) *Registry {
	return NewRegistry(provider, productionPolicy(), nil)
}

func seedRegistry(t *testing.T, r *Registry, deployments ...models.Deployment) {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range deployments {
		record := d
		r.deployments[d.PipelineID] = &record
	}
}

func at(hour int) time.Time {
	return time.Date(2026, 8, 1, hour, 0, 0, 0, time.UTC)
}

func TestRegistry_Approve_PendingBecomesRunning(t *testing.T) {
	provider := &fakeProvider{}
	r := newTestRegistry(provider)
	seedRegistry(t, r, models.Deployment{
		PipelineID:  "GHA-1",
		Status:      models.StatusPendingApproval,
		Environment: "production",
		TriggeredAt: at(10),
	})

	d, err := r.Approve(context.Background(), "GHA-1")
	if err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if d.Status != models.StatusRunning {
		t.Errorf("Approve() status = %s, want running", d.Status)
	}
	if provider.approveCalls != 1 {
		t.Errorf("provider approve calls = %d, want 1", provider.approveCalls)
	}
}

func TestRegistry_Approve_InvalidStates(t *testing.T) {
	tests := []struct {
		name   string
		status models.DeploymentStatus
	}{
		{name: "running", status: models.StatusRunning},
		{name: "success", status: models.StatusSuccess},
		{name: "failed", status: models.StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRegistry(&fakeProvider{})
			seedRegistry(t, r, models.Deployment{
				PipelineID:  "GHA-1",
				Status:      tt.status,
				TriggeredAt: at(10),
			})

			_, err := r.Approve(context.Background(), "GHA-1")
			if !errors.IsType(err, errors.ErrorTypeInvalidState) {
				t.Errorf("Approve() error = %v, want invalid state transition", err)
			}

			d, _ := r.Get("GHA-1")
			if d.Status != tt.status {
				t.Errorf("status mutated to %s on failed approve", d.Status)
			}
		})
	}
}

func TestRegistry_Approve_DoubleApprovalFails(t *testing.T) {
	r := newTestRegistry(&fakeProvider{})
	seedRegistry(t, r, models.Deployment{
		PipelineID:  "GHA-1",
		Status:      models.StatusPendingApproval,
		TriggeredAt: at(10),
	})

	if _, err := r.Approve(context.Background(), "GHA-1"); err != nil {
		t.Fatalf("first Approve() error = %v", err)
	}
	_, err := r.Approve(context.Background(), "GHA-1")
	if !errors.IsType(err, errors.ErrorTypeInvalidState) {
		t.Errorf("second Approve() error = %v, want invalid state transition", err)
	}
}

func TestRegistry_Approve_UnknownPipeline(t *testing.T) {
	r := newTestRegistry(&fakeProvider{})

	_, err := r.Approve(context.Background(), "GHA-404")
	if !errors.IsType(err, errors.ErrorTypeNotFound) {
		t.Errorf("Approve() error = %v, want not found", err)
	}
}

func TestRegistry_Reject(t *testing.T) {
	tests := []struct {
		name     string
		status   models.DeploymentStatus
		reason   string
		wantErr  errors.ErrorType
		wantDone bool
	}{
		{
			name:     "pending with reason",
			status:   models.StatusPendingApproval,
			reason:   "schema change not reviewed",
			wantDone: true,
		},
		{
			name:    "empty reason",
			status:  models.StatusPendingApproval,
			reason:  "",
			wantErr: errors.ErrorTypeInvalidParams,
		},
		{
			name:    "whitespace reason",
			status:  models.StatusPendingApproval,
			reason:  "   ",
			wantErr: errors.ErrorTypeInvalidParams,
		},
		{
			name:    "running deployment",
			status:  models.StatusRunning,
			reason:  "too late",
			wantErr: errors.ErrorTypeInvalidState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRegistry(&fakeProvider{})
			seedRegistry(t, r, models.Deployment{
				PipelineID:  "GHA-1",
				Status:      tt.status,
				TriggeredAt: at(10),
			})

			d, err := r.Reject(context.Background(), "GHA-1", tt.reason)
			if tt.wantErr != "" {
				if !errors.IsType(err, tt.wantErr) {
					t.Errorf("Reject() error = %v, want %s", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Reject() error = %v", err)
			}
			if d.Status != models.StatusFailed {
				t.Errorf("Reject() status = %s, want failed", d.Status)
			}
			if d.RejectionReason != tt.reason {
				t.Errorf("Reject() reason = %q, want %q", d.RejectionReason, tt.reason)
			}
			if d.CompletedAt == nil {
				t.Error("Reject() left CompletedAt unset")
			}
		})
	}
}

func TestRegistry_Complete(t *testing.T) {
	tests := []struct {
		name       string
		status     models.DeploymentStatus
		succeeded  bool
		wantStatus models.DeploymentStatus
		wantErr    bool
	}{
		{name: "running to success", status: models.StatusRunning, succeeded: true, wantStatus: models.StatusSuccess},
		{name: "running to failed", status: models.StatusRunning, succeeded: false, wantStatus: models.StatusFailed},
		{name: "pending cannot complete", status: models.StatusPendingApproval, succeeded: true, wantErr: true},
		{name: "success is terminal", status: models.StatusSuccess, succeeded: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRegistry(&fakeProvider{})
			seedRegistry(t, r, models.Deployment{
				PipelineID:  "GHA-1",
				Status:      tt.status,
				TriggeredAt: at(10),
			})

			d, err := r.Complete("GHA-1", tt.succeeded)
			if tt.wantErr {
				if !errors.IsType(err, errors.ErrorTypeInvalidState) {
					t.Errorf("Complete() error = %v, want invalid state transition", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Complete() error = %v", err)
			}
			if d.Status != tt.wantStatus {
				t.Errorf("Complete() status = %s, want %s", d.Status, tt.wantStatus)
			}
			if d.CompletedAt == nil {
				t.Error("Complete() left CompletedAt unset")
			}
		})
	}
}

func TestRegistry_Trigger_ApprovalPolicy(t *testing.T) {
	boolPtr := func(v bool) *bool { return &v }

	tests := []struct {
		name        string
		environment string
		override    *bool
		wantStatus  models.DeploymentStatus
	}{
		{name: "production defaults to approval", environment: "production", wantStatus: models.StatusPendingApproval},
		{name: "dev defaults to no approval", environment: "dev", wantStatus: models.StatusRunning},
		{name: "dev with approval forced", environment: "dev", override: boolPtr(true), wantStatus: models.StatusPendingApproval},
		{name: "production with approval waived", environment: "production", override: boolPtr(false), wantStatus: models.StatusRunning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRegistry(&fakeProvider{nextID: "RUN-7"})

			d, err := r.Trigger(context.Background(), TriggerInput{
				Repository:      "org/infra",
				Branch:          "main",
				Environment:     tt.environment,
				RequireApproval: tt.override,
			})
			if err != nil {
				t.Fatalf("Trigger() error = %v", err)
			}
			if d.Status != tt.wantStatus {
				t.Errorf("Trigger() status = %s, want %s", d.Status, tt.wantStatus)
			}
			if d.ApprovalRequired != (tt.wantStatus == models.StatusPendingApproval) {
				t.Errorf("Trigger() ApprovalRequired = %t, inconsistent with status %s", d.ApprovalRequired, d.Status)
			}
		})
	}
}

func TestRegistry_Trigger_InvalidInputCreatesNothing(t *testing.T) {
	provider := &fakeProvider{}
	r := newTestRegistry(provider)

	tests := []struct {
		name  string
		input TriggerInput
	}{
		{name: "missing repository", input: TriggerInput{Branch: "main", Environment: "dev"}},
		{name: "missing branch", input: TriggerInput{Repository: "org/infra", Environment: "dev"}},
		{name: "missing environment", input: TriggerInput{Repository: "org/infra", Branch: "main"}},
		{name: "empty parameter key", input: TriggerInput{
			Repository: "org/infra", Branch: "main", Environment: "dev",
			Parameters: map[string]string{" ": "v"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Trigger(context.Background(), tt.input)
			if !errors.IsType(err, errors.ErrorTypeInvalidParams) {
				t.Errorf("Trigger() error = %v, want invalid parameters", err)
			}
		})
	}

	if provider.triggerCalls != 0 {
		t.Errorf("provider trigger calls = %d, want 0 for invalid input", provider.triggerCalls)
	}
	if len(r.List(Filter{}, NewestFirst)) != 0 {
		t.Error("invalid trigger left a record in the registry")
	}
}

func TestRegistry_Trigger_LifecycleEndToEnd(t *testing.T) {
	r := newTestRegistry(&fakeProvider{nextID: "RUN-9"})

	d, err := r.Trigger(context.Background(), TriggerInput{
		Repository:  "org/infra",
		Branch:      "main",
		Environment: "production",
		Parameters:  map[string]string{"InstanceType": "t3.large"},
	})
	if err != nil {
		t.Fatalf("Trigger() error = %v", err)
	}
	if d.Status != models.StatusPendingApproval {
		t.Fatalf("Trigger() status = %s, want pending_approval", d.Status)
	}

	if _, err := r.Approve(context.Background(), d.PipelineID); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	final, err := r.Complete(d.PipelineID, true)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if final.Status != models.StatusSuccess {
		t.Errorf("final status = %s, want success", final.Status)
	}

	listed := r.List(Filter{Environment: "production", Status: models.StatusSuccess}, NewestFirst)
	if len(listed) != 1 || listed[0].PipelineID != d.PipelineID {
		t.Errorf("List() = %v, want the completed deployment", listed)
	}
}

func TestRegistry_List_Ordering(t *testing.T) {
	r := newTestRegistry(&fakeProvider{})
	seedRegistry(t, r,
		models.Deployment{PipelineID: "GHA-2", Status: models.StatusSuccess, TriggeredAt: at(10)},
		models.Deployment{PipelineID: "GHA-1", Status: models.StatusSuccess, TriggeredAt: at(12)},
		models.Deployment{PipelineID: "GHA-3", Status: models.StatusSuccess, TriggeredAt: at(8)},
	)

	newest := r.List(Filter{}, NewestFirst)
	wantNewest := []string{"GHA-1", "GHA-2", "GHA-3"}
	for i, want := range wantNewest {
		if newest[i].PipelineID != want {
			t.Errorf("List(NewestFirst)[%d] = %s, want %s", i, newest[i].PipelineID, want)
		}
	}

	oldest := r.List(Filter{}, OldestFirst)
	wantOldest := []string{"GHA-3", "GHA-2", "GHA-1"}
	for i, want := range wantOldest {
		if oldest[i].PipelineID != want {
			t.Errorf("List(OldestFirst)[%d] = %s, want %s", i, oldest[i].PipelineID, want)
		}
	}
}

func TestRegistry_List_TieBreakBySmallerPipelineID(t *testing.T) {
	r := newTestRegistry(&fakeProvider{})
	seedRegistry(t, r,
		models.Deployment{PipelineID: "GHA-9", Status: models.StatusSuccess, TriggeredAt: at(10)},
		models.Deployment{PipelineID: "GHA-1", Status: models.StatusSuccess, TriggeredAt: at(10)},
		models.Deployment{PipelineID: "GHA-5", Status: models.StatusSuccess, TriggeredAt: at(10)},
	)

	want := []string{"GHA-1", "GHA-5", "GHA-9"}
	for _, order := range []Order{NewestFirst, OldestFirst} {
		got := r.List(Filter{}, order)
		for i, id := range want {
			if got[i].PipelineID != id {
				t.Errorf("List(order=%d)[%d] = %s, want %s", order, i, got[i].PipelineID, id)
			}
		}
	}
}

func TestRegistry_List_Filters(t *testing.T) {
	r := newTestRegistry(&fakeProvider{})
	seedRegistry(t, r,
		models.Deployment{PipelineID: "GHA-1", Status: models.StatusSuccess, Environment: "dev", TriggeredAt: at(8)},
		models.Deployment{PipelineID: "GHA-2", Status: models.StatusFailed, Environment: "dev", TriggeredAt: at(9)},
		models.Deployment{PipelineID: "GHA-3", Status: models.StatusSuccess, Environment: "production", TriggeredAt: at(10)},
	)

	devOnly := r.List(Filter{Environment: "dev"}, NewestFirst)
	if len(devOnly) != 2 {
		t.Errorf("List(dev) returned %d, want 2", len(devOnly))
	}

	devSuccess := r.List(Filter{Environment: "dev", Status: models.StatusSuccess}, NewestFirst)
	if len(devSuccess) != 1 || devSuccess[0].PipelineID != "GHA-1" {
		t.Errorf("List(dev, success) = %v, want GHA-1", devSuccess)
	}
}

func TestRegistry_Pending(t *testing.T) {
	r := newTestRegistry(&fakeProvider{})
	seedRegistry(t, r,
		models.Deployment{PipelineID: "GHA-1", Status: models.StatusRunning, TriggeredAt: at(8)},
		models.Deployment{PipelineID: "GHA-2", Status: models.StatusPendingApproval, TriggeredAt: at(9)},
		models.Deployment{PipelineID: "GHA-3", Status: models.StatusPendingApproval, TriggeredAt: at(10)},
	)

	pending := r.Pending()
	if len(pending) != 2 {
		t.Fatalf("Pending() returned %d, want 2", len(pending))
	}
	if pending[0].PipelineID != "GHA-3" {
		t.Errorf("Pending()[0] = %s, want GHA-3 (newest first)", pending[0].PipelineID)
	}
}

func TestRegistry_GroupByCommit(t *testing.T) {
	r := newTestRegistry(&fakeProvider{})
	seedRegistry(t, r,
		models.Deployment{PipelineID: "GHA-1", Status: models.StatusSuccess, Environment: "dev", CommitHash: "def5678", TriggeredAt: at(8)},
		models.Deployment{PipelineID: "GHA-2", Status: models.StatusSuccess, Environment: "staging", CommitHash: "def5678", TriggeredAt: at(9)},
		models.Deployment{PipelineID: "GHA-3", Status: models.StatusPendingApproval, Environment: "production", CommitHash: "def5678", TriggeredAt: at(10)},
		models.Deployment{PipelineID: "GHA-4", Status: models.StatusSuccess, Environment: "production", CommitHash: "abc1234", TriggeredAt: at(6)},
	)

	groups := r.GroupByCommit()
	if len(groups) != 2 {
		t.Fatalf("GroupByCommit() returned %d groups, want 2", len(groups))
	}

	// Most recently active commit first
	if groups[0].CommitHash != "def5678" {
		t.Errorf("groups[0] = %s, want def5678", groups[0].CommitHash)
	}

	// Promotion order within the group: dev, staging, production
	wantEnvs := []string{"dev", "staging", "production"}
	for i, want := range wantEnvs {
		if groups[0].Deployments[i].Environment != want {
			t.Errorf("group def5678 deployment[%d] env = %s, want %s", i, groups[0].Deployments[i].Environment, want)
		}
	}
}

func TestRegistry_Refresh_KeepsLocalState(t *testing.T) {
	provider := &fakeProvider{recent: []models.Deployment{
		{PipelineID: "GHA-1", Status: models.StatusPendingApproval, TriggeredAt: at(9)},
		{PipelineID: "GHA-2", Status: models.StatusRunning, TriggeredAt: at(10)},
	}}
	r := newTestRegistry(provider)

	if err := r.Refresh(context.Background(), 0); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	if _, err := r.Approve(context.Background(), "GHA-1"); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	// A second refresh must not overwrite the approved state
	if err := r.Refresh(context.Background(), 0); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	d, err := r.Get("GHA-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if d.Status != models.StatusRunning {
		t.Errorf("status after refresh = %s, want running", d.Status)
	}
}

func TestRegistry_Refresh_AppliesExternalCompletion(t *testing.T) {
	completedAt := at(11)
	provider := &fakeProvider{recent: []models.Deployment{
		{PipelineID: "GHA-1", Status: models.StatusPendingApproval, TriggeredAt: at(9)},
	}}
	r := newTestRegistry(provider)

	if err := r.Refresh(context.Background(), 0); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if _, err := r.Approve(context.Background(), "GHA-1"); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	// The pipeline finishes on the provider side; the next refresh must
	// carry the terminal outcome onto the running record.
	provider.recent = []models.Deployment{
		{PipelineID: "GHA-1", Status: models.StatusSuccess, TriggeredAt: at(9), CompletedAt: &completedAt},
	}
	if err := r.Refresh(context.Background(), 0); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	d, err := r.Get("GHA-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if d.Status != models.StatusSuccess {
		t.Errorf("status after refresh = %s, want success", d.Status)
	}
	if d.CompletedAt == nil || !d.CompletedAt.Equal(completedAt) {
		t.Errorf("CompletedAt after refresh = %v, want %v", d.CompletedAt, completedAt)
	}
}

func TestRegistry_Refresh_NeverCompletesPendingApproval(t *testing.T) {
	provider := &fakeProvider{recent: []models.Deployment{
		{PipelineID: "GHA-1", Status: models.StatusPendingApproval, TriggeredAt: at(9)},
	}}
	r := newTestRegistry(provider)

	if err := r.Refresh(context.Background(), 0); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	// A terminal status from the provider must not bypass the local gate
	provider.recent = []models.Deployment{
		{PipelineID: "GHA-1", Status: models.StatusSuccess, TriggeredAt: at(9)},
	}
	if err := r.Refresh(context.Background(), 0); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	d, err := r.Get("GHA-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if d.Status != models.StatusPendingApproval {
		t.Errorf("status after refresh = %s, want pending_approval", d.Status)
	}
}

func TestDemoProvider_Records(t *testing.T) {
	provider := NewDemoProvider()

	if provider.Source() != models.SourceDemo {
		t.Errorf("Source() = %s, want demo", provider.Source())
	}

	deployments, err := provider.ListRecent(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(deployments) != 6 {
		t.Fatalf("ListRecent() returned %d records, want 6", len(deployments))
	}

	var pending int
	for _, d := range deployments {
		if !d.Status.Valid() {
			t.Errorf("deployment %s has invalid status %s", d.PipelineID, d.Status)
		}
		if d.Status == models.StatusPendingApproval {
			pending++
			if !d.ApprovalRequired {
				t.Errorf("pending deployment %s not marked approval-required", d.PipelineID)
			}
		}
	}
	if pending != 1 {
		t.Errorf("demo data has %d pending deployments, want 1", pending)
	}
}

func TestStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	// Missing file is an empty registry
	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("Load() on missing file = %d records, want 0", len(loaded))
	}

	saved := []models.Deployment{
		{PipelineID: "GHA-1", Status: models.StatusSuccess, Environment: "dev", TriggeredAt: at(8)},
		{PipelineID: "GHA-2", Status: models.StatusPendingApproval, Environment: "production", TriggeredAt: at(9)},
	}
	if err := store.Save(saved); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err = store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("Load() = %d records, want 2", len(loaded))
	}

	byID := make(map[string]models.Deployment)
	for _, d := range loaded {
		byID[d.PipelineID] = d
	}
	if byID["GHA-2"].Status != models.StatusPendingApproval {
		t.Errorf("loaded GHA-2 status = %s, want pending_approval", byID["GHA-2"].Status)
	}
}
