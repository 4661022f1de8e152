package utils

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/cloudops/cloud-console-tool/internal/models"
)

func testDeployments() []models.Deployment {
	triggered := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	completed := triggered.Add(9 * time.Minute)
	return []models.Deployment{
		{
			PipelineID:  "GHA-1235",
			Environment: "production",
			Status:      models.StatusPendingApproval,
			CommitHash:  "def5678",
			Author:      "Jane Smith",
			TriggeredAt: triggered,
		},
		{
			PipelineID:  "GHA-1232",
			Environment: "dev",
			Status:      models.StatusSuccess,
			CommitHash:  "def5678",
			Author:      "Jane Smith",
			TriggeredAt: triggered.Add(-time.Hour),
			CompletedAt: &completed,
		},
	}
}

func TestFormatter_FormatDeployments_Table(t *testing.T) {
	SetColorOutput(false)
	defer SetColorOutput(true)

	var buf bytes.Buffer
	formatter := NewFormatter("table")
	if err := formatter.FormatDeployments(testDeployments(), &buf); err != nil {
		t.Fatalf("FormatDeployments() error = %v", err)
	}

	output := buf.String()
	for _, want := range []string{"PIPELINE ID", "GHA-1235", "pending_approval", "def5678", "Jane Smith"} {
		if !strings.Contains(output, want) {
			t.Errorf("table output missing %q:\n%s", want, output)
		}
	}
}

func TestFormatter_FormatDeployments_JSON(t *testing.T) {
	var buf bytes.Buffer
	formatter := NewFormatter("json")
	if err := formatter.FormatDeployments(testDeployments(), &buf); err != nil {
		t.Fatalf("FormatDeployments() error = %v", err)
	}

	var decoded []models.Deployment
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 2 {
		t.Errorf("decoded %d deployments, want 2", len(decoded))
	}
	if decoded[0].PipelineID != "GHA-1235" {
		t.Errorf("decoded[0].PipelineID = %s, want GHA-1235", decoded[0].PipelineID)
	}
}

func TestFormatter_FormatDeployments_CSV(t *testing.T) {
	var buf bytes.Buffer
	formatter := NewFormatter("csv")
	if err := formatter.FormatDeployments(testDeployments(), &buf); err != nil {
		t.Fatalf("FormatDeployments() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("CSV has %d lines, want 3 (header + 2 rows)", len(lines))
	}
	if !strings.HasPrefix(lines[0], "PipelineID,") {
		t.Errorf("CSV header = %q", lines[0])
	}
}

func TestFormatter_UnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	formatter := NewFormatter("yaml")
	if err := formatter.FormatDeployments(testDeployments(), &buf); err == nil {
		t.Error("FormatDeployments() expected error for unsupported format")
	}
}

func TestFormatter_FormatInstances_Table(t *testing.T) {
	SetColorOutput(false)
	defer SetColorOutput(true)

	instances := []models.Instance{
		{
			InstanceID:   "i-0abc",
			Name:         "web-1",
			State:        "running",
			InstanceType: "t3.medium",
			Environment:  "production",
			Application:  "web",
			PrivateIP:    "10.0.1.5",
		},
	}

	var buf bytes.Buffer
	formatter := NewFormatter("table")
	if err := formatter.FormatInstances(instances, &buf); err != nil {
		t.Fatalf("FormatInstances() error = %v", err)
	}

	output := buf.String()
	for _, want := range []string{"i-0abc", "web-1", "running", "t3.medium", "10.0.1.5"} {
		if !strings.Contains(output, want) {
			t.Errorf("table output missing %q:\n%s", want, output)
		}
	}
}

func TestStatusColorText_NoColor(t *testing.T) {
	SetColorOutput(false)
	defer SetColorOutput(true)

	if got := StatusColorText(models.StatusSuccess); got != "success" {
		t.Errorf("StatusColorText() = %q, want plain text with colors off", got)
	}
}

func TestColorize(t *testing.T) {
	SetColorOutput(true)
	colored := Colorize(Green, "ok")
	if !strings.HasPrefix(colored, Green) || !strings.HasSuffix(colored, Reset) {
		t.Errorf("Colorize() = %q, want wrapped in color codes", colored)
	}

	SetColorOutput(false)
	defer SetColorOutput(true)
	if got := Colorize(Green, "ok"); got != "ok" {
		t.Errorf("Colorize() with colors off = %q, want ok", got)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "N/A"},
		{45 * time.Second, "45s"},
		{9*time.Minute + 30*time.Second, "9m30s"},
		{2*time.Hour + 5*time.Minute, "2h5m"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
