package utils

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/cloudops/cloud-console-tool/internal/models"
)

// Formatter handles different output formats
type Formatter struct {
	format string
}

// NewFormatter creates a new formatter instance
func NewFormatter(format string) *Formatter {
	return &Formatter{format: format}
}

// FormatDeployments formats deployment records according to the specified format
func (f *Formatter) FormatDeployments(deployments []models.Deployment, w io.Writer) error {
	switch f.format {
	case "json":
		return formatJSON(deployments, w)
	case "csv":
		return f.formatDeploymentsCSV(deployments, w)
	case "table":
		return f.formatDeploymentsTable(deployments, w)
	default:
		return fmt.Errorf("unsupported format: %s", f.format)
	}
}

func (f *Formatter) formatDeploymentsTable(deployments []models.Deployment, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer func() {
		_ = tw.Flush()
	}()

	if _, err := fmt.Fprintln(tw, "PIPELINE ID\tENVIRONMENT\tSTATUS\tCOMMIT\tAUTHOR\tTRIGGERED\tDURATION"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(tw, "-----------\t-----------\t------\t------\t------\t---------\t--------"); err != nil {
		return err
	}

	for _, d := range deployments {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			d.PipelineID,
			d.Environment,
			StatusColorText(d.Status),
			d.CommitHash,
			d.Author,
			d.TriggeredAt.Local().Format("2006-01-02 15:04-0700"),
			formatDuration(d.Duration()),
		); err != nil {
			return err
		}
	}

	return nil
}

func (f *Formatter) formatDeploymentsCSV(deployments []models.Deployment, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{
		"PipelineID", "Environment", "Status", "Commit", "Author",
		"TriggeredAt", "CompletedAt", "RejectionReason",
	}); err != nil {
		return err
	}

	for _, d := range deployments {
		completed := ""
		if d.CompletedAt != nil {
			completed = d.CompletedAt.Local().Format("2006-01-02 15:04:05-0700")
		}
		record := []string{
			d.PipelineID,
			d.Environment,
			string(d.Status),
			d.CommitHash,
			d.Author,
			d.TriggeredAt.Local().Format("2006-01-02 15:04:05-0700"),
			completed,
			d.RejectionReason,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return nil
}

// FormatInstances formats instance rows according to the specified format
func (f *Formatter) FormatInstances(instances []models.Instance, w io.Writer) error {
	switch f.format {
	case "json":
		return formatJSON(instances, w)
	case "csv":
		return f.formatInstancesCSV(instances, w)
	case "table":
		return f.formatInstancesTable(instances, w)
	default:
		return fmt.Errorf("unsupported format: %s", f.format)
	}
}

func (f *Formatter) formatInstancesTable(instances []models.Instance, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer func() {
		_ = tw.Flush()
	}()

	if _, err := fmt.Fprintln(tw, "INSTANCE ID\tNAME\tSTATE\tTYPE\tENVIRONMENT\tAPPLICATION\tPRIVATE IP"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(tw, "-----------\t----\t-----\t----\t-----------\t-----------\t----------"); err != nil {
		return err
	}

	for _, instance := range instances {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			instance.InstanceID,
			instance.Name,
			instanceStateColorText(instance.State),
			instance.InstanceType,
			instance.Environment,
			instance.Application,
			instance.PrivateIP,
		); err != nil {
			return err
		}
	}

	return nil
}

func (f *Formatter) formatInstancesCSV(instances []models.Instance, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{
		"InstanceID", "Name", "State", "Type", "Environment",
		"Application", "Owner", "AvailabilityZone", "PrivateIP", "PublicIP",
	}); err != nil {
		return err
	}

	for _, instance := range instances {
		record := []string{
			instance.InstanceID,
			instance.Name,
			instance.State,
			instance.InstanceType,
			instance.Environment,
			instance.Application,
			instance.Owner,
			instance.AvailabilityZone,
			instance.PrivateIP,
			instance.PublicIP,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return nil
}

// FormatStacks formats stack rows according to the specified format
func (f *Formatter) FormatStacks(stacks []models.Stack, w io.Writer) error {
	switch f.format {
	case "json":
		return formatJSON(stacks, w)
	case "csv":
		return f.formatStacksCSV(stacks, w)
	case "table":
		return f.formatStacksTable(stacks, w)
	default:
		return fmt.Errorf("unsupported format: %s", f.format)
	}
}

func (f *Formatter) formatStacksTable(stacks []models.Stack, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer func() {
		_ = tw.Flush()
	}()

	if _, err := fmt.Fprintln(tw, "STACK NAME\tSTATUS\tCREATED\tUPDATED"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(tw, "----------\t------\t-------\t-------"); err != nil {
		return err
	}

	for _, stack := range stacks {
		updated := "N/A"
		if stack.UpdatedAt != nil {
			updated = stack.UpdatedAt.Local().Format("2006-01-02 15:04-0700")
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			stack.StackName,
			stack.Status,
			stack.CreatedAt.Local().Format("2006-01-02 15:04-0700"),
			updated,
		); err != nil {
			return err
		}
	}

	return nil
}

func (f *Formatter) formatStacksCSV(stacks []models.Stack, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"StackName", "Status", "Created", "Updated"}); err != nil {
		return err
	}

	for _, stack := range stacks {
		updated := ""
		if stack.UpdatedAt != nil {
			updated = stack.UpdatedAt.Local().Format("2006-01-02 15:04:05-0700")
		}
		record := []string{
			stack.StackName,
			stack.Status,
			stack.CreatedAt.Local().Format("2006-01-02 15:04:05-0700"),
			updated,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return nil
}

// FormatBuckets formats bucket rows as a table (json/csv via generic path)
func (f *Formatter) FormatBuckets(buckets []models.Bucket, w io.Writer) error {
	switch f.format {
	case "json":
		return formatJSON(buckets, w)
	case "csv":
		writer := csv.NewWriter(w)
		defer writer.Flush()
		if err := writer.Write([]string{"Name", "Created"}); err != nil {
			return err
		}
		for _, bucket := range buckets {
			if err := writer.Write([]string{bucket.Name, bucket.CreatedAt.Local().Format("2006-01-02 15:04:05-0700")}); err != nil {
				return err
			}
		}
		return nil
	case "table":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		defer func() {
			_ = tw.Flush()
		}()
		if _, err := fmt.Fprintln(tw, "BUCKET NAME\tCREATED"); err != nil {
			return err
		}
		for _, bucket := range buckets {
			if _, err := fmt.Fprintf(tw, "%s\t%s\n",
				bucket.Name, bucket.CreatedAt.Local().Format("2006-01-02 15:04-0700")); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", f.format)
	}
}

// FormatDatabases formats database rows according to the specified format
func (f *Formatter) FormatDatabases(databases []models.Database, w io.Writer) error {
	switch f.format {
	case "json":
		return formatJSON(databases, w)
	case "csv":
		writer := csv.NewWriter(w)
		defer writer.Flush()
		if err := writer.Write([]string{"Identifier", "Engine", "Version", "Class", "Status", "MultiAZ", "Encrypted", "StorageGB"}); err != nil {
			return err
		}
		for _, db := range databases {
			record := []string{
				db.Identifier, db.Engine, db.EngineVersion, db.Class, db.Status,
				strconv.FormatBool(db.MultiAZ), strconv.FormatBool(db.Encrypted),
				strconv.Itoa(int(db.StorageGB)),
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
		return nil
	case "table":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		defer func() {
			_ = tw.Flush()
		}()
		if _, err := fmt.Fprintln(tw, "IDENTIFIER\tENGINE\tCLASS\tSTATUS\tMULTI-AZ\tENCRYPTED\tSTORAGE"); err != nil {
			return err
		}
		for _, db := range databases {
			if _, err := fmt.Fprintf(tw, "%s\t%s %s\t%s\t%s\t%t\t%t\t%dGB\n",
				db.Identifier, db.Engine, db.EngineVersion, db.Class, db.Status,
				db.MultiAZ, db.Encrypted, db.StorageGB); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", f.format)
	}
}

func formatJSON(v interface{}, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// StatusColorText returns colored deployment status text
func StatusColorText(status models.DeploymentStatus) string {
	switch status {
	case models.StatusSuccess:
		return Success(string(status))
	case models.StatusFailed:
		return Error(string(status))
	case models.StatusPendingApproval:
		return Warning(string(status))
	case models.StatusRunning:
		return Info(string(status))
	default:
		return string(status)
	}
}

func instanceStateColorText(state string) string {
	switch state {
	case "running":
		return Success(state)
	case "stopped", "terminated":
		return Error(state)
	case "pending", "stopping", "shutting-down":
		return Warning(state)
	default:
		return state
	}
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "N/A"
	}
	d = d.Round(time.Second)
	if d >= time.Hour {
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
	if d >= time.Minute {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%ds", int(d.Seconds()))
}
